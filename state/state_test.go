package state

import (
	"testing"
	"time"

	"github.com/philtim/timeplanner/clock"
	"github.com/philtim/timeplanner/zonelist"
)

func newState(zones ...string) State {
	return State{
		Instant: clock.At(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)),
		Zones:   zonelist.List(zones),
	}
}

func TestReduceScenario(t *testing.T) {
	s := newState("Asia/Kolkata")

	s, out := Reduce(s, AddZone{Zone: "America/New_York"})
	if !out.ListChanged {
		t.Fatalf("add should change the list")
	}
	if !s.Zones.Equal(zonelist.List{"Asia/Kolkata", "America/New_York"}) {
		t.Fatalf("zones = %v", s.Zones)
	}
	if len(s.History.History) != 1 || !s.History.History[0].Equal(zonelist.List{"Asia/Kolkata"}) {
		t.Fatalf("history = %v", s.History.History)
	}

	s, _ = Reduce(s, ReverseZones{})
	if !s.Zones.Equal(zonelist.List{"America/New_York", "Asia/Kolkata"}) {
		t.Fatalf("zones after reverse = %v", s.Zones)
	}
	if !s.History.History[1].Equal(zonelist.List{"Asia/Kolkata", "America/New_York"}) {
		t.Fatalf("history after reverse = %v", s.History.History)
	}

	s, _ = Reduce(s, Undo{})
	if !s.Zones.Equal(zonelist.List{"Asia/Kolkata", "America/New_York"}) {
		t.Fatalf("zones after undo = %v", s.Zones)
	}
	if len(s.History.Future) != 1 || !s.History.Future[0].Equal(zonelist.List{"America/New_York", "Asia/Kolkata"}) {
		t.Fatalf("future after undo = %v", s.History.Future)
	}

	s, _ = Reduce(s, Redo{})
	if !s.Zones.Equal(zonelist.List{"America/New_York", "Asia/Kolkata"}) {
		t.Fatalf("zones after redo = %v", s.Zones)
	}
	if len(s.History.Future) != 0 {
		t.Fatalf("future after redo = %v", s.History.Future)
	}
}

func TestReduceNoopMutationsDoNotCommit(t *testing.T) {
	s := newState("Asia/Kolkata", "UTC")

	actions := []Action{
		AddZone{Zone: "UTC"},
		RemoveZone{Index: 7},
		ReorderZone{From: 0, To: zonelist.NoDestination},
		ReorderZone{From: 1, To: 1},
	}
	for _, a := range actions {
		next, out := Reduce(s, a)
		if out.ListChanged || next.History.CanUndo() {
			t.Fatalf("%T %+v should not commit", a, a)
		}
	}
}

func TestReduceEditAfterUndoClearsFuture(t *testing.T) {
	s := newState("Asia/Kolkata")
	s, _ = Reduce(s, AddZone{Zone: "UTC"})
	s, _ = Reduce(s, AddZone{Zone: "Europe/Paris"})
	s, _ = Reduce(s, Undo{})
	if !s.History.CanRedo() {
		t.Fatalf("expected a redo state")
	}
	s, _ = Reduce(s, RemoveZone{Index: 0})
	if s.History.CanRedo() {
		t.Fatalf("direct mutation must clear future, got %v", s.History.Future)
	}
}

func TestReduceUndoRedoEmpty(t *testing.T) {
	s := newState("UTC")
	if _, out := Reduce(s, Undo{}); !out.Rejected || out.ListChanged {
		t.Fatalf("undo with empty history: %+v", out)
	}
	if _, out := Reduce(s, Redo{}); !out.Rejected || out.ListChanged {
		t.Fatalf("redo with empty future: %+v", out)
	}
}

func TestReduceDoesNotAliasPreviousState(t *testing.T) {
	before := newState("Asia/Kolkata", "UTC")
	after, _ := Reduce(before, ReverseZones{})
	after.Zones[0] = "Mutated/Zone"
	if before.Zones[0] != "Asia/Kolkata" || before.Zones[1] != "UTC" {
		t.Fatalf("previous state changed: %v", before.Zones)
	}
	if after.History.History[0][0] != "Asia/Kolkata" {
		t.Fatalf("history snapshot changed: %v", after.History.History[0])
	}
}

func TestReduceSortZones(t *testing.T) {
	s := newState("Asia/Kolkata", "America/New_York", "UTC")
	s, out := Reduce(s, SortZones{})
	if !out.ListChanged {
		t.Fatalf("sort should change the list")
	}
	if !s.Zones.Equal(zonelist.List{"America/New_York", "UTC", "Asia/Kolkata"}) {
		t.Fatalf("sorted = %v", s.Zones)
	}
	if !s.History.CanUndo() {
		t.Fatalf("sort should be undoable")
	}
}

func TestReduceTypeTime(t *testing.T) {
	s := newState("Asia/Kolkata")
	s.Live = true

	next, out := Reduce(s, TypeTime{Zone: "Asia/Kolkata", Text: "nine-ish"})
	if !out.Rejected || out.InstantChanged {
		t.Fatalf("invalid text: %+v", out)
	}
	if !next.Instant.Equal(s.Instant) || !next.Live {
		t.Fatalf("invalid text must leave the instant alone")
	}

	next, out = Reduce(s, TypeTime{Zone: "Asia/Kolkata", Text: "09:00 PM"})
	if !out.InstantChanged || next.Live {
		t.Fatalf("valid text: %+v live=%v", out, next.Live)
	}
	want := time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)
	if !next.Instant.Time().Equal(want) {
		t.Fatalf("instant = %v, want %v", next.Instant.Time(), want)
	}
	if next.History.CanUndo() {
		t.Fatalf("instant edits are not versioned")
	}
}

func TestReduceMoveSlider(t *testing.T) {
	s := newState("Asia/Kolkata")
	// 23:45 IST
	s.Instant = clock.At(time.Date(2024, 1, 1, 18, 15, 0, 0, time.UTC))

	if _, out := Reduce(s, MoveSlider{Zone: "Asia/Kolkata", Index: 96}); !out.Rejected {
		t.Fatalf("moving to 24:00 must be rejected")
	}
	next, out := Reduce(s, MoveSlider{Zone: "Asia/Kolkata", Index: 0})
	if out.Rejected {
		t.Fatalf("moving to 00:00 of the same day should be accepted")
	}
	want := time.Date(2023, 12, 31, 18, 30, 0, 0, time.UTC)
	if !next.Instant.Time().Equal(want) {
		t.Fatalf("instant = %v, want %v", next.Instant.Time(), want)
	}

	if _, out := Reduce(s, MoveSlider{Zone: "Not/AZone", Index: 4}); !out.Rejected {
		t.Fatalf("unknown zone must be rejected")
	}
}

func TestReduceDates(t *testing.T) {
	s := newState("Asia/Kolkata")

	next, _ := Reduce(s, ShiftDays{Zone: "Asia/Kolkata", Days: 1})
	if got := next.Instant.Time(); !got.Equal(time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("shift = %v", got)
	}
	next, _ = Reduce(s, SetDate{Zone: "Asia/Kolkata", Year: 2024, Month: time.March, Day: 5})
	if got := next.Instant.Time(); !got.Equal(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("set date = %v", got)
	}
}

func TestReduceLiveTicks(t *testing.T) {
	s := newState("UTC")
	later := time.Date(2024, 1, 1, 10, 0, 1, 0, time.UTC)

	next, out := Reduce(s, Tick{Now: later})
	if out.InstantChanged || !next.Instant.Equal(s.Instant) {
		t.Fatalf("tick must not move a frozen instant")
	}

	next, _ = Reduce(s, ResetToNow{Now: later})
	if !next.Live {
		t.Fatalf("reset should go live")
	}
	evenLater := later.Add(time.Minute)
	next, out = Reduce(next, Tick{Now: evenLater})
	if !out.InstantChanged || !next.Instant.Time().Equal(evenLater) {
		t.Fatalf("live tick should follow the clock: %v", next.Instant.Time())
	}

	next, _ = Reduce(next, SetInstant{At: later})
	if next.Live {
		t.Fatalf("an explicit edit freezes the instant")
	}
}

func TestReduceToggleTheme(t *testing.T) {
	s := newState()
	s, _ = Reduce(s, ToggleTheme{})
	if !s.Dark {
		t.Fatalf("expected dark")
	}
	s, _ = Reduce(s, ToggleTheme{})
	if s.Dark {
		t.Fatalf("expected light")
	}
}
