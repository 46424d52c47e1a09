package out

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	timerout "studytracker/internal/modules/timer/port/out"
)

// SoundAlarm plays a system sound, falling back to the terminal bell.
type SoundAlarm struct {
	bell io.Writer
}

func NewSoundAlarm() timerout.Alarm {
	return &SoundAlarm{bell: os.Stderr}
}

func (a *SoundAlarm) Ring() error {
	for _, argv := range soundCommands() {
		if _, err := exec.LookPath(argv[0]); err != nil {
			continue
		}
		cmd := exec.Command(argv[0], argv[1:]...)
		if err := cmd.Start(); err == nil {
			go func() { _ = cmd.Wait() }()
			return nil
		}
	}
	return a.terminalBell()
}

func (a *SoundAlarm) terminalBell() error {
	if _, err := fmt.Fprint(a.bell, "\a"); err != nil {
		return fmt.Errorf("ring terminal bell: %w", err)
	}
	return nil
}

type NoopAlarm struct{}

func (NoopAlarm) Ring() error { return nil }
