//go:build linux

package out

func soundCommands() [][]string {
	return [][]string{
		{"paplay", "/usr/share/sounds/freedesktop/stereo/complete.oga"},
		{"aplay", "-q", "/usr/share/sounds/alsa/Front_Center.wav"},
	}
}
