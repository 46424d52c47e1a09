package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/spf13/cobra"

	"studytracker/internal/bootstrap"
	backupdto "studytracker/internal/modules/backup/dto"
	sessiondto "studytracker/internal/modules/session/dto"
	statsdto "studytracker/internal/modules/stats/dto"
	subjectdto "studytracker/internal/modules/subject/dto"
	timerdto "studytracker/internal/modules/timer/dto"
	"studytracker/internal/platform/config"
	apperrors "studytracker/internal/platform/errors"
	"studytracker/internal/platform/logging"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags config.Overrides

	root := &cobra.Command{
		Use:           "studytracker",
		Short:         "Track study time per subject with a countdown timer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.DataDir, "data-dir", "", "data directory (default $XDG_DATA_HOME/studytracker)")
	root.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "config file (default <data-dir>/config.yaml)")
	root.PersistentFlags().StringVar(&flags.DBPath, "db", "", "database file (default <data-dir>/study.db)")
	root.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "write JSON debug logs")
	root.PersistentFlags().StringVar(&flags.DebugFile, "debug-file", "", "debug log file path")

	root.AddCommand(newTUICmd(&flags))
	root.AddCommand(newSubjectCmd(&flags))
	root.AddCommand(newSessionCmd(&flags))
	root.AddCommand(newStatsCmd(&flags))
	root.AddCommand(newResetCmd(&flags))
	root.AddCommand(newBackupCmd(&flags))
	root.AddCommand(newConfigCmd(&flags))
	return root
}

// loadApp resolves configuration, starts logging and wires the modules. The
// returned func releases everything loadApp opened.
func loadApp(ctx context.Context, flags *config.Overrides) (*bootstrap.App, func(), error) {
	cfg, err := config.NewLoader(nil).Load(*flags)
	if err != nil {
		return nil, nil, err
	}
	logger, logCloser, err := logging.New(logging.Options{
		Debug:    cfg.Log.Debug,
		File:     cfg.Log.File,
		MaxFiles: cfg.Log.MaxFiles,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		_ = logCloser.Close()
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		_ = logCloser.Close()
		return nil, nil, err
	}
	return app, func() {
		_ = app.Close()
		_ = logCloser.Close()
	}, nil
}

func newTUICmd(flags *config.Overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, release, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer release()
			return bootstrap.RunTUI(app)
		},
	}
}

// ─── subject ─────────────────────────────────────────────────────────────────

func newSubjectCmd(flags *config.Overrides) *cobra.Command {
	subject := &cobra.Command{Use: "subject", Short: "Manage subjects"}

	subject.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a subject",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, release, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer release()
			out, err := app.SubjectCLI.Add(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %s (#%d)\n", out.Name, out.ID)
			return nil
		},
	})

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List subjects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, release, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer release()
			subjects, err := app.SubjectCLI.List(cmd.Context(), all)
			if err != nil {
				return err
			}
			if len(subjects) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no subjects")
				return nil
			}
			for _, s := range subjects {
				line := fmt.Sprintf("%d\t%s", s.ID, s.Name)
				if s.Archived {
					line += "\tarchived"
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&all, "all", false, "include archived subjects")

	subject.AddCommand(list)
	subject.AddCommand(&cobra.Command{
		Use:   "rename <id|name> <new name>",
		Short: "Rename a subject",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, release, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer release()
			target, err := resolveSubject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			out, err := app.SubjectCLI.Rename(cmd.Context(), target.ID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %s\n", target.Name, out.Name)
			return nil
		},
	})

	var policy string
	del := &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, release, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer release()
			target, err := resolveSubject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			out, err := app.SubjectCLI.Delete(cmd.Context(), target.ID, policy)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s policy=%s sessions_deleted=%d\n", out.Name, out.Policy, out.SessionsDeleted)
			return nil
		},
	}
	del.Flags().StringVar(&policy, "policy", "", "keep|cascade|archive (default from config)")
	subject.AddCommand(del)
	return subject
}

// resolveSubject accepts a numeric id or an exact subject name.
func resolveSubject(ctx context.Context, app *bootstrap.App, ref string) (subjectdto.SubjectOutput, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return app.SubjectCLI.Get(ctx, id)
	}
	return app.SubjectCLI.FindByName(ctx, ref)
}

// ─── session ─────────────────────────────────────────────────────────────────

func newSessionCmd(flags *config.Overrides) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Study session lifecycle"}

	var subjectRef string
	var minutes float64
	var watch bool
	start := &cobra.Command{
		Use:   "start",
		Short: "Start a countdown session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, release, err := loadApp(ctx, flags)
			if err != nil {
				return err
			}
			defer release()

			var subjectID int64
			if subjectRef == "" {
				choice, err := promptStart(ctx, app, minutes)
				if err != nil {
					return err
				}
				subjectID, minutes = choice.SubjectID, choice.Minutes
			} else {
				target, err := resolveSubject(ctx, app, subjectRef)
				if err != nil {
					return err
				}
				subjectID = target.ID
			}
			if minutes == 0 {
				minutes = float64(app.Config.DefaultMinutes)
			}

			if !watch {
				out, err := app.SessionCLI.Start(ctx, subjectID, minutes)
				if err != nil {
					return err
				}
				printStarted(cmd.OutOrStdout(), out)
				return nil
			}
			events := app.TimerCLI.Watch(16)
			state, err := app.TimerCLI.Begin(ctx, subjectID, minutes)
			if err != nil {
				return err
			}
			return watchCountdown(ctx, cmd.OutOrStdout(), app, events, state)
		},
	}
	start.Flags().StringVar(&subjectRef, "subject", "", "subject id or name (prompted when omitted)")
	start.Flags().Float64Var(&minutes, "minutes", 0, "planned minutes (default from config)")
	start.Flags().BoolVar(&watch, "watch", false, "stay in the foreground until the countdown ends")
	session.AddCommand(start)

	session.AddCommand(&cobra.Command{
		Use:   "end",
		Short: "End the active session now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, release, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer release()
			out, err := app.SessionCLI.End(cmd.Context())
			if err != nil {
				return err
			}
			printEnded(cmd.OutOrStdout(), out)
			return nil
		},
	})

	session.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, release, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer release()
			out, err := app.SessionCLI.GetActive(cmd.Context())
			if errors.Is(err, apperrors.ErrNoActiveSession) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no active session")
				last, lerr := app.SessionCLI.LastStart(cmd.Context())
				if lerr == nil && last.Available {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "last start: %s, %d min\n", last.SubjectName, last.Minutes)
				}
				return nil
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "active: %s (#%d) started=%s ends=%s\n",
				out.SubjectName, out.ID, out.StartTime.Format("15:04:05"), out.PlannedEndTime.Format("15:04:05"))
			return nil
		},
	})

	var repeatWatch bool
	repeat := &cobra.Command{
		Use:   "repeat",
		Short: "Start again with the last subject and minutes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, release, err := loadApp(ctx, flags)
			if err != nil {
				return err
			}
			defer release()
			if !repeatWatch {
				out, err := app.SessionCLI.Repeat(ctx)
				if err != nil {
					return err
				}
				printStarted(cmd.OutOrStdout(), out)
				return nil
			}
			events := app.TimerCLI.Watch(16)
			state, err := app.TimerCLI.Repeat(ctx)
			if err != nil {
				return err
			}
			return watchCountdown(ctx, cmd.OutOrStdout(), app, events, state)
		},
	}
	repeat.Flags().BoolVar(&repeatWatch, "watch", false, "stay in the foreground until the countdown ends")
	session.AddCommand(repeat)

	session.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Follow the active countdown until it ends",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, release, err := loadApp(ctx, flags)
			if err != nil {
				return err
			}
			defer release()
			events := app.TimerCLI.Watch(16)
			state, err := app.TimerCLI.Resume(ctx)
			if err != nil {
				return err
			}
			return watchCountdown(ctx, cmd.OutOrStdout(), app, events, state)
		},
	})

	session.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, release, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer release()
			sessions, err := app.SessionCLI.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range sessions {
				duration := "active"
				if s.DurationMin != nil {
					duration = fmt.Sprintf("%d min", *s.DurationMin)
				}
				name := s.SubjectName
				if name == "" {
					name = fmt.Sprintf("(deleted #%d)", s.SubjectID)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%s\n",
					s.ID, s.StartDay, s.StartTime.Format("15:04"), name, duration)
			}
			return nil
		},
	})
	return session
}

// watchCountdown renders ticks until the countdown ends. An interrupt
// detaches without ending the session.
func watchCountdown(ctx context.Context, w io.Writer, app *bootstrap.App, events <-chan timerdto.Event, state timerdto.StateOutput) error {
	if !state.Running {
		select {
		case ev := <-events:
			return printTerminal(w, ev)
		default:
		}
		_, _ = fmt.Fprintln(w, "no active session")
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))
	_, _ = fmt.Fprintf(w, "%s until %s\n", state.Countdown.SubjectName, state.Countdown.PlannedEndTime.Format("15:04"))
	render := func(p timerdto.ProgressOutput) {
		_, _ = fmt.Fprintf(w, "\r%s  %s", bar.ViewAs(p.Fraction), p.Remaining)
	}
	render(state.Progress)

	final, err := app.TimerCLI.Wait(ctx, events, func(ev timerdto.Event) { render(ev.Progress) })
	_, _ = fmt.Fprintln(w)
	if errors.Is(err, context.Canceled) {
		app.TimerCLI.Detach()
		_, _ = fmt.Fprintln(w, "detached; the session keeps running")
		return nil
	}
	if err != nil {
		return err
	}
	return printTerminal(w, final)
}

func printTerminal(w io.Writer, ev timerdto.Event) error {
	switch ev.Kind {
	case timerdto.EventCompleted:
		_, _ = fmt.Fprintf(w, "completed: %s, %d min\n", ev.Completion.SubjectName, ev.Completion.DurationMin)
	case timerdto.EventStopped:
		_, _ = fmt.Fprintln(w, "session ended")
	case timerdto.EventError:
		return ev.Err
	}
	return nil
}

func printStarted(w io.Writer, out sessiondto.SessionOutput) {
	_, _ = fmt.Fprintf(w, "session started: %s (#%d) %d min, ends %s\n",
		out.SubjectName, out.ID, out.PlannedMinutes, out.PlannedEndTime.Format("15:04"))
}

func printEnded(w io.Writer, out sessiondto.SessionOutput) {
	duration := 0
	if out.DurationMin != nil {
		duration = *out.DurationMin
	}
	_, _ = fmt.Fprintf(w, "session ended: %s, %d min\n", out.SubjectName, duration)
}

// ─── stats ───────────────────────────────────────────────────────────────────

func newStatsCmd(flags *config.Overrides) *cobra.Command {
	var archived bool
	stats := &cobra.Command{Use: "stats", Short: "Study time per subject"}
	stats.PersistentFlags().BoolVar(&archived, "archived", false, "include archived subjects")

	report := func(run func(ctx context.Context, app *bootstrap.App, args []string) (statsdto.ReportOutput, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			app, release, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer release()
			out, err := run(cmd.Context(), app, args)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), out)
			return nil
		}
	}

	stats.AddCommand(&cobra.Command{
		Use:   "today",
		Short: "Minutes studied today",
		RunE: report(func(ctx context.Context, app *bootstrap.App, _ []string) (statsdto.ReportOutput, error) {
			return app.StatsCLI.Today(ctx, archived)
		}),
	})
	stats.AddCommand(&cobra.Command{
		Use:   "total",
		Short: "Minutes studied overall",
		RunE: report(func(ctx context.Context, app *bootstrap.App, _ []string) (statsdto.ReportOutput, error) {
			return app.StatsCLI.Total(ctx, archived)
		}),
	})
	stats.AddCommand(&cobra.Command{
		Use:   "day <YYYY-MM-DD>",
		Short: "Minutes studied on one day",
		Args:  cobra.ExactArgs(1),
		RunE: report(func(ctx context.Context, app *bootstrap.App, args []string) (statsdto.ReportOutput, error) {
			return app.StatsCLI.ByDay(ctx, args[0], archived)
		}),
	})
	return stats
}

func printReport(w io.Writer, out statsdto.ReportOutput) {
	heading := string(out.Scope)
	if out.Day != "" {
		heading += " " + out.Day
	}
	_, _ = fmt.Fprintln(w, heading)
	for _, row := range out.Rows {
		name := row.Name
		if row.Archived {
			name += " (archived)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%d min\t%.1f h\n", name, row.Minutes, float64(row.Minutes)/60)
	}
	_, _ = fmt.Fprintf(w, "total\t%d min\t%.1f h\n", out.TotalMinutes, out.TotalHours)
}

// ─── reset ───────────────────────────────────────────────────────────────────

func newResetCmd(flags *config.Overrides) *cobra.Command {
	reset := &cobra.Command{Use: "reset", Short: "Delete recorded sessions"}

	run := func(scope string, fn func(ctx context.Context, app *bootstrap.App, args []string) (sessiondto.ResetOutput, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			app, release, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer release()
			out, err := fn(cmd.Context(), app, args)
			if err != nil {
				return err
			}
			if out.EndedActive {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "ended the running session first")
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reset %s: %d sessions deleted\n", scope, out.Deleted)
			return nil
		}
	}

	reset.AddCommand(&cobra.Command{
		Use:   "today",
		Short: "Delete sessions started today",
		RunE: run("today", func(ctx context.Context, app *bootstrap.App, _ []string) (sessiondto.ResetOutput, error) {
			return app.SessionCLI.ResetToday(ctx)
		}),
	})
	reset.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "Delete every session",
		RunE: run("all", func(ctx context.Context, app *bootstrap.App, _ []string) (sessiondto.ResetOutput, error) {
			return app.SessionCLI.ResetAll(ctx)
		}),
	})
	reset.AddCommand(&cobra.Command{
		Use:   "subject <id|name>",
		Short: "Delete every session of one subject",
		Args:  cobra.ExactArgs(1),
		RunE: run("subject", func(ctx context.Context, app *bootstrap.App, args []string) (sessiondto.ResetOutput, error) {
			target, err := resolveSubject(ctx, app, args[0])
			if err != nil {
				return sessiondto.ResetOutput{}, err
			}
			return app.SessionCLI.ResetSubject(ctx, target.ID)
		}),
	})
	return reset
}

// ─── backup ──────────────────────────────────────────────────────────────────

func newBackupCmd(flags *config.Overrides) *cobra.Command {
	backup := &cobra.Command{Use: "backup", Short: "Export or import all data as JSON"}

	backup.AddCommand(&cobra.Command{
		Use:   "export [path]",
		Short: "Write a backup file (a directory gets the dated default name)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, release, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer release()
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			if path == "-" {
				out, err := app.BackupCLI.Export(cmd.Context())
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out.Payload)
				return err
			}
			written, out, err := app.BackupCLI.ExportTo(cmd.Context(), path)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d subjects, %d sessions to %s\n", out.Subjects, out.Sessions, written)
			return nil
		},
	})

	backup.AddCommand(&cobra.Command{
		Use:   "import <path>",
		Short: "Replace all data with a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, release, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer release()
			var out backupdto.ImportOutput
			if args[0] == "-" {
				var payload []byte
				if payload, err = io.ReadAll(cmd.InOrStdin()); err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				out, err = app.BackupCLI.Import(cmd.Context(), payload)
			} else {
				out, err = app.BackupCLI.ImportFrom(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d subjects, %d sessions\n", out.Subjects, out.Sessions)
			return nil
		},
	})
	return backup
}

// ─── config ──────────────────────────────────────────────────────────────────

func newConfigCmd(flags *config.Overrides) *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Inspect or write the config file"}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewLoader(nil).Load(*flags)
			if err != nil {
				return err
			}
			path := config.ConfigPath(cfg, *flags)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := cfg.SaveToFile(path); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cfgCmd.AddCommand(initCmd)
	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewLoader(nil).Load(*flags)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "data_dir: %s\ndb_path: %s\ndefault_subject: %s\ndefault_minutes: %d\npresets: %v\ndelete_policy: %s\nalarm: %t\ntimezone: %s\n",
				cfg.DataDir, cfg.DBPath, cfg.DefaultSubject, cfg.DefaultMinutes, cfg.Presets, cfg.DeletePolicy, cfg.Alarm, cfg.Timezone)
			return nil
		},
	})
	return cfgCmd
}
