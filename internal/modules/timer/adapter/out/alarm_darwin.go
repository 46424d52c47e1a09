//go:build darwin

package out

func soundCommands() [][]string {
	return [][]string{
		{"afplay", "/System/Library/Sounds/Glass.aiff"},
		{"afplay", "/System/Library/Sounds/Tink.aiff"},
	}
}
