// Package state owns the application state: the shared instant, the zone
// list and its history. All changes go through Reduce, a pure function of
// (State, Action); Session wraps it with loading and persistence.
package state

import (
	"time"

	"github.com/philtim/timeplanner/clock"
	"github.com/philtim/timeplanner/editor"
	"github.com/philtim/timeplanner/history"
	"github.com/philtim/timeplanner/storage"
	"github.com/philtim/timeplanner/zonelist"
)

// State is one immutable version of the application state. Reduce never
// modifies the slices of a State it is given.
type State struct {
	Instant clock.Instant
	Zones   zonelist.List
	History history.Tracker
	// Live means the instant follows the wall clock until the user edits it
	Live bool
	Dark bool
}

// Snapshot returns the persisted part of the state
func (s State) Snapshot() storage.Snapshot {
	return storage.Snapshot{
		Zones:   s.Zones.Clone(),
		History: s.History.History,
		Future:  s.History.Future,
	}
}

// Outcome describes what a reduced action did
type Outcome struct {
	ListChanged    bool
	InstantChanged bool
	// Rejected is set when an edit intent was refused: unparsable typed
	// time, a slider move past midnight, an unknown zone, or nothing to
	// undo/redo.
	Rejected bool
}

// Action is an edit intent emitted by a view and consumed by Reduce
type Action interface {
	action()
}

type (
	AddZone      struct{ Zone string }
	RemoveZone   struct{ Index int }
	ReorderZone  struct{ From, To int }
	ReverseZones struct{}
	// SortZones orders the list west to east by current UTC offset
	SortZones struct{}
	Undo      struct{}
	Redo      struct{}

	SetInstant struct{ At time.Time }
	MoveSlider struct {
		Zone  string
		Index int
	}
	TypeTime struct {
		Zone string
		Text string
	}
	SetDate struct {
		Zone  string
		Year  int
		Month time.Month
		Day   int
	}
	ShiftDays struct {
		Zone string
		Days int
	}
	Tick       struct{ Now time.Time }
	ResetToNow struct{ Now time.Time }

	ToggleTheme struct{}
)

func (AddZone) action()      {}
func (RemoveZone) action()   {}
func (ReorderZone) action()  {}
func (ReverseZones) action() {}
func (SortZones) action()    {}
func (Undo) action()         {}
func (Redo) action()         {}
func (SetInstant) action()   {}
func (MoveSlider) action()   {}
func (TypeTime) action()     {}
func (SetDate) action()      {}
func (ShiftDays) action()    {}
func (Tick) action()         {}
func (ResetToNow) action()   {}
func (ToggleTheme) action()  {}

// Reduce applies a to s and returns the new state
func Reduce(s State, a Action) (State, Outcome) {
	switch a := a.(type) {
	case AddZone:
		return mutate(s, zonelist.Add(s.Zones, a.Zone))
	case RemoveZone:
		return mutate(s, zonelist.Remove(s.Zones, a.Index))
	case ReorderZone:
		return mutate(s, zonelist.Reorder(s.Zones, a.From, a.To))
	case ReverseZones:
		return mutate(s, zonelist.Reverse(s.Zones))
	case SortZones:
		return mutate(s, clock.SortByUTCOffset(s.Zones, s.Instant.Time()))

	case Undo:
		tracker, restored, ok := s.History.Undo(s.Zones)
		if !ok {
			return s, Outcome{Rejected: true}
		}
		s.History, s.Zones = tracker, restored
		return s, Outcome{ListChanged: true}
	case Redo:
		tracker, restored, ok := s.History.Redo(s.Zones)
		if !ok {
			return s, Outcome{Rejected: true}
		}
		s.History, s.Zones = tracker, restored
		return s, Outcome{ListChanged: true}

	case SetInstant:
		return setInstant(s, a.At)
	case MoveSlider:
		loc, err := time.LoadLocation(a.Zone)
		if err != nil {
			return s, Outcome{Rejected: true}
		}
		next, ok := editor.ApplySliderDelta(s.Instant.Time(), loc, a.Index)
		if !ok {
			return s, Outcome{Rejected: true}
		}
		return setInstant(s, next)
	case TypeTime:
		loc, err := time.LoadLocation(a.Zone)
		if err != nil {
			return s, Outcome{Rejected: true}
		}
		next, ok := editor.ApplyTypedTime(a.Text, s.Instant.Time(), loc)
		if !ok {
			return s, Outcome{Rejected: true}
		}
		return setInstant(s, next)
	case SetDate:
		loc, err := time.LoadLocation(a.Zone)
		if err != nil {
			return s, Outcome{Rejected: true}
		}
		return setInstant(s, editor.SetDate(s.Instant.Time(), loc, a.Year, a.Month, a.Day))
	case ShiftDays:
		loc, err := time.LoadLocation(a.Zone)
		if err != nil {
			return s, Outcome{Rejected: true}
		}
		return setInstant(s, editor.ShiftDays(s.Instant.Time(), loc, a.Days))
	case Tick:
		if !s.Live {
			return s, Outcome{}
		}
		s.Instant.Set(a.Now)
		return s, Outcome{InstantChanged: true}
	case ResetToNow:
		s.Instant.Set(a.Now)
		s.Live = true
		return s, Outcome{InstantChanged: true}

	case ToggleTheme:
		s.Dark = !s.Dark
		return s, Outcome{}
	}
	return s, Outcome{}
}

// mutate installs next as the zone list, committing the old list to history.
// A mutation that leaves the list unchanged records nothing.
func mutate(s State, next zonelist.List) (State, Outcome) {
	if next.Equal(s.Zones) {
		return s, Outcome{}
	}
	s.History = s.History.Commit(s.Zones)
	s.Zones = next
	return s, Outcome{ListChanged: true}
}

func setInstant(s State, t time.Time) (State, Outcome) {
	s.Instant.Set(t)
	s.Live = false
	return s, Outcome{InstantChanged: true}
}
