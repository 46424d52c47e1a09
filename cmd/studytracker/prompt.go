package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"

	"studytracker/internal/bootstrap"
)

type startChoice struct {
	SubjectID int64
	Minutes   float64
}

// promptStart asks for a subject and a duration. minutes pre-fills the
// duration when the flag was given.
func promptStart(ctx context.Context, app *bootstrap.App, minutes float64) (startChoice, error) {
	subjects, err := app.SubjectCLI.List(ctx, false)
	if err != nil {
		return startChoice{}, err
	}
	if len(subjects) == 0 {
		return startChoice{}, fmt.Errorf("no subjects; add one with `studytracker subject add <name>`")
	}

	options := make([]huh.Option[int64], 0, len(subjects))
	for _, s := range subjects {
		options = append(options, huh.NewOption(s.Name, s.ID))
	}
	choice := startChoice{SubjectID: subjects[0].ID}
	if last, err := app.SessionCLI.LastStart(ctx); err == nil && last.Available {
		choice.SubjectID = last.SubjectID
	}

	if minutes == 0 {
		minutes = float64(app.Config.DefaultMinutes)
	}
	rawMinutes := strconv.FormatFloat(minutes, 'f', -1, 64)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().
				Title("Subject").
				Options(options...).
				Value(&choice.SubjectID),
			huh.NewInput().
				Title("Minutes").
				Description(fmt.Sprintf("presets: %v", app.Config.Presets)).
				Value(&rawMinutes).
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(s, 64)
					if err != nil || v < 1 {
						return fmt.Errorf("enter at least 1 minute")
					}
					return nil
				}),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return startChoice{}, err
	}
	choice.Minutes, err = strconv.ParseFloat(rawMinutes, 64)
	if err != nil {
		return startChoice{}, fmt.Errorf("minutes: %w", err)
	}
	return choice, nil
}
