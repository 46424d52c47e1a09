//go:build !darwin && !linux

package out

func soundCommands() [][]string { return nil }
