package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/philtim/timeplanner/clock"
	"github.com/philtim/timeplanner/state"
	"github.com/philtim/timeplanner/zonelist"
)

// printZones prints one line per zone: position, id, time and date
func printZones(w io.Writer, zones zonelist.List, instant time.Time) {
	if len(zones) == 0 {
		fmt.Fprintln(w, "No timezones. Add one with: timeplanner add <zone>")
		return
	}
	width := 0
	for _, zone := range zones {
		width = max(width, len(zone))
	}
	for i, zone := range zones {
		clk, err := clock.New(zone)
		if err != nil {
			fmt.Fprintf(w, "%2d  %-*s  (unknown timezone)\n", i+1, width, zone)
			continue
		}
		fmt.Fprintf(w, "%2d  %-*s  %s  %s\n", i+1, width, zone, clk.FormatTime(instant), clk.FormatDateWithOffset(instant))
	}
}

// position parses a 1-based list position
func position(arg string, n int) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid position %q", arg)
	}
	if i < 1 || i > n {
		return 0, fmt.Errorf("no zone at position %d (list has %d)", i, n)
	}
	return i - 1, nil
}

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the instant in every listed zone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer session.Close()

			st := session.State()
			printZones(cmd.OutOrStdout(), st.Zones, st.Instant.Time())
			return nil
		},
	}
}

func newAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <zone>...",
		Short: "Append zones to the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, zone := range args {
				if _, err := time.LoadLocation(zone); err != nil || zone == "" || zone == "Local" {
					return fmt.Errorf("unknown timezone %q", zone)
				}
			}

			session, err := app.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer session.Close()

			for _, zone := range args {
				if !session.Dispatch(cmd.Context(), state.AddZone{Zone: zone}).ListChanged {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s is already in the list\n", zone)
				}
			}
			st := session.State()
			printZones(cmd.OutOrStdout(), st.Zones, st.Instant.Time())
			return nil
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <position|zone>",
		Short: "Remove a zone by position (as shown by list) or by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer session.Close()

			zones := session.State().Zones
			index := zones.IndexOf(args[0])
			if index < 0 {
				if index, err = position(args[0], len(zones)); err != nil {
					return err
				}
			}
			session.Dispatch(cmd.Context(), state.RemoveZone{Index: index})

			st := session.State()
			printZones(cmd.OutOrStdout(), st.Zones, st.Instant.Time())
			return nil
		},
	}
}

func newMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move a zone to another position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer session.Close()

			n := len(session.State().Zones)
			from, err := position(args[0], n)
			if err != nil {
				return err
			}
			to, err := position(args[1], n)
			if err != nil {
				return err
			}
			session.Dispatch(cmd.Context(), state.ReorderZone{From: from, To: to})

			st := session.State()
			printZones(cmd.OutOrStdout(), st.Zones, st.Instant.Time())
			return nil
		},
	}
}

// newListEditCmd builds a command that applies a single argument-less edit
func newListEditCmd(app *App, use, short string, action state.Action, rejected string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer session.Close()

			if out := session.Dispatch(cmd.Context(), action); out.Rejected {
				return errors.New(rejected)
			}
			st := session.State()
			printZones(cmd.OutOrStdout(), st.Zones, st.Instant.Time())
			return nil
		},
	}
}

func newReverseCmd(app *App) *cobra.Command {
	return newListEditCmd(app, "reverse", "Reverse the zone order", state.ReverseZones{}, "")
}

func newSortCmd(app *App) *cobra.Command {
	return newListEditCmd(app, "sort", "Order zones west to east by UTC offset", state.SortZones{}, "")
}

func newUndoCmd(app *App) *cobra.Command {
	return newListEditCmd(app, "undo", "Undo the last zone list change", state.Undo{}, "nothing to undo")
}

func newRedoCmd(app *App) *cobra.Command {
	return newListEditCmd(app, "redo", "Redo the last undone change", state.Redo{}, "nothing to redo")
}

func newHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show undo and redo snapshots around the current list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer session.Close()

			st := session.State()
			timeline := st.History.Timeline(st.Zones)
			current := len(st.History.History)
			w := cmd.OutOrStdout()
			for i, snap := range timeline {
				marker := " "
				if i == current {
					marker = "*"
				}
				fmt.Fprintf(w, "%s %+3d  [%s]\n", marker, i-current, strings.Join(snap, ", "))
			}
			return nil
		},
	}
}
