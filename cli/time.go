package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/philtim/timeplanner/calendar"
	"github.com/philtim/timeplanner/state"
)

func newAtCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "at <zone> <hh:mm AM/PM>",
		Short: "Show every zone when it is the given time in one zone",
		Example: strings.TrimSpace(`
  timeplanner at Asia/Kolkata 09:30 PM
  timeplanner --at 2024-03-10T12:00:00Z at America/New_York "07:00 am"
`),
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer session.Close()

			zone := args[0]
			text := strings.Join(args[1:], " ")
			if out := session.Dispatch(cmd.Context(), state.TypeTime{Zone: zone, Text: text}); out.Rejected {
				return fmt.Errorf("invalid time %q in %s, use hh:mm AM/PM (e.g. 09:30 PM)", text, zone)
			}

			st := session.State()
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", st.Instant.Time().Format(time.RFC3339))
			printZones(cmd.OutOrStdout(), st.Zones, st.Instant.Time())
			return nil
		},
	}
}

func newDateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "date <zone> <YYYY-MM-DD>",
		Short: "Move the instant to another date in one zone, keeping its time of day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := time.Parse(time.DateOnly, args[1])
			if err != nil {
				return fmt.Errorf("invalid date %q, use YYYY-MM-DD", args[1])
			}

			session, err := app.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer session.Close()

			action := state.SetDate{Zone: args[0], Year: day.Year(), Month: day.Month(), Day: day.Day()}
			if out := session.Dispatch(cmd.Context(), action); out.Rejected {
				return fmt.Errorf("unknown timezone %q", args[0])
			}

			st := session.State()
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", st.Instant.Time().Format(time.RFC3339))
			printZones(cmd.OutOrStdout(), st.Zones, st.Instant.Time())
			return nil
		},
	}
}

// newLinkCmd prints (and optionally copies) a link built from the session
func newLinkCmd(app *App, use, short, what string, build func(state.State) string) *cobra.Command {
	var copyLink bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer session.Close()

			link := build(session.State())
			fmt.Fprintln(cmd.OutOrStdout(), link)
			if copyLink {
				if err := app.Copy(link); err != nil {
					return fmt.Errorf("failed to copy %s: %w", what, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Copied %s to clipboard\n", what)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&copyLink, "copy", false, "Also copy the link to the clipboard")
	return cmd
}

func newCalendarCmd(app *App) *cobra.Command {
	return newLinkCmd(app, "calendar", "Print a Google Calendar link for the instant", "calendar link",
		func(st state.State) string {
			ev := app.event()
			ev.Start = st.Instant.Time()
			ev.Zones = st.Zones
			return calendar.EventURL(ev)
		})
}

func newShareCmd(app *App) *cobra.Command {
	return newLinkCmd(app, "share", "Print a link that reopens this plan", "share link",
		func(st state.State) string {
			return calendar.ShareLink(app.cfg.Share.BaseURL, st.Instant.Time(), st.Zones)
		})
}

func newZonesCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "zones <query>",
		Short: "Search timezone ids and city names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db := app.zoneDatabase(false)
			matches := db.Search(strings.Join(args, " "), limit)
			if len(matches) == 0 {
				return fmt.Errorf("no timezone matches %q", strings.Join(args, " "))
			}
			for _, m := range matches {
				fmt.Fprintln(cmd.OutOrStdout(), m.Label)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of results (0: no limit)")
	return cmd
}
