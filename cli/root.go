// Package cli is the cobra command tree. Without a subcommand it starts the
// interactive planner; subcommands edit and print the same stored zone list.
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/philtim/timeplanner/calendar"
	"github.com/philtim/timeplanner/config"
	"github.com/philtim/timeplanner/geonames"
	"github.com/philtim/timeplanner/logging"
	"github.com/philtim/timeplanner/state"
	"github.com/philtim/timeplanner/storage"
	"github.com/philtim/timeplanner/tui"
)

// App carries the global flags and the dependencies commands share
type App struct {
	ConfigPath string
	At         string
	Open       string

	// Detect names the default zone when nothing is stored
	Detect state.Detector
	// Copy writes to the clipboard
	Copy func(string) error
	// Now is the current time
	Now func() time.Time

	cfg *config.Config
	log *logging.Logger
}

// NewRootCmd builds the timeplanner command tree
func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{
		Detect: config.DetectZone,
		Copy:   clipboard.WriteAll,
		Now:    time.Now,
	})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "timeplanner",
		Short:        "Plan one moment across many timezones",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive planner
  timeplanner

  # Open a link someone shared
  timeplanner --open "https://timeplanner.app/?at=2024-01-01T10:00:00Z&zones=UTC,Asia/Kolkata"

  # Scriptable commands
  timeplanner add Asia/Kolkata America/New_York
  timeplanner at Asia/Kolkata 09:30 PM
  timeplanner calendar --copy
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd.Name() == "timeplanner")
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Config file (default $TIMEPLANNER_CONFIG or ~/.config/timeplanner.yaml)")
	cmd.PersistentFlags().StringVar(&app.At, "at", "", "Instant to plan, RFC3339 (default: now)")
	cmd.Flags().StringVar(&app.Open, "open", "", "Start from a share link")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newReverseCmd(app))
	cmd.AddCommand(newSortCmd(app))
	cmd.AddCommand(newUndoCmd(app))
	cmd.AddCommand(newRedoCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newAtCmd(app))
	cmd.AddCommand(newDateCmd(app))
	cmd.AddCommand(newCalendarCmd(app))
	cmd.AddCommand(newShareCmd(app))
	cmd.AddCommand(newZonesCmd(app))

	return cmd
}

// setup loads the configuration and builds the logger. The interactive
// program only logs to a file since stderr belongs to the terminal UI.
func (app *App) setup(interactive bool) error {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return err
	}
	app.cfg = cfg

	log, err := logging.New(cfg.LogOptions(!interactive))
	if err != nil {
		return err
	}
	app.log = log
	return nil
}

// instant parses --at; the zero time means "now"
func (app *App) instant() (time.Time, error) {
	if app.At == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, app.At)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q, expected RFC3339 like 2024-01-01T10:00:00Z: %w", app.At, err)
	}
	return t.UTC(), nil
}

// openSession opens the configured storage and loads the session. When the
// backend cannot be opened the session runs on memory only. A live session
// follows the wall clock until the instant is edited.
func (app *App) openSession(ctx context.Context, live bool) (*state.Session, error) {
	at, err := app.instant()
	if err != nil {
		return nil, err
	}

	opts, err := app.cfg.StorageOptions()
	if err != nil {
		return nil, err
	}
	kv, err := storage.Open(ctx, opts)
	if err != nil {
		app.log.WithError(err).Warnw("storage unavailable, changes will not be saved", "backend", opts.Backend)
		kv = storage.NewMemory()
	}

	if at.IsZero() && !live {
		at = app.Now()
	}

	return state.Open(ctx, storage.NewBridge(kv, app.log), state.Options{
		Detect: app.Detect,
		Log:    app.log,
		Now:    at,
		Dark:   app.cfg.IsDark(app.Now()),
	}), nil
}

// zoneDatabase lists the known zones and, when enabled, loads cached city
// names. Interactive use may download them in the background.
func (app *App) zoneDatabase(async bool) *geonames.Database {
	db := geonames.NewDatabase(geonames.ListZoneIDs())
	if !app.cfg.GeoNames.Enabled {
		db.Disable()
		return db
	}
	cachePath, err := geonames.DefaultCachePath()
	if err != nil {
		app.log.WithError(err).Warnw("no cache directory for city names")
		db.Disable()
		return db
	}
	if async {
		db.LoadAsync(cachePath, true)
		return db
	}
	if err := db.Load(cachePath, false); err != nil {
		app.log.WithError(err).Debugw("city names unavailable, searching zone names only")
		db.Disable()
	}
	return db
}

func (app *App) event() calendar.Event {
	d, err := app.cfg.EventDuration()
	if err != nil {
		d = calendar.DefaultDuration
	}
	return calendar.Event{
		Title:    app.cfg.Calendar.Title,
		Duration: d,
		Footer:   app.cfg.Calendar.Footer,
	}
}

func runTUI(ctx context.Context, app *App) error {
	session, err := app.openSession(ctx, app.At == "")
	if err != nil {
		return err
	}
	defer session.Close()

	if app.Open != "" {
		if err := seedFromShareLink(ctx, session, app.Open); err != nil {
			return err
		}
	}

	return tui.Run(ctx, tui.Options{
		Session:       session,
		Zones:         app.zoneDatabase(true),
		Log:           app.log,
		Event:         app.event(),
		ShareBaseURL:  app.cfg.Share.BaseURL,
		TerminalTheme: app.cfg.Theme == config.ThemeTerminal,
	})
}

// seedFromShareLink adds the link's zones (as undoable edits) and moves the
// instant to the shared one
func seedFromShareLink(ctx context.Context, session *state.Session, link string) error {
	at, zones, err := calendar.ParseShareLink(link)
	if err != nil {
		return err
	}
	for _, zone := range zones {
		session.Dispatch(ctx, state.AddZone{Zone: zone})
	}
	session.Dispatch(ctx, state.SetInstant{At: at})
	return nil
}
