package state

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/philtim/timeplanner/storage"
	"github.com/philtim/timeplanner/zonelist"
)

var fixedNow = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

type readOnlyKV struct {
	*storage.Memory
	writes int
}

func (r *readOnlyKV) Set(context.Context, string, []byte) error {
	r.writes++
	return errors.New("read-only")
}

func readJSON(t *testing.T, kv storage.KV, key string, dst interface{}) {
	t.Helper()
	raw, err := kv.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("decode %s: %v", key, err)
	}
}

func TestOpenUsesStoredZones(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	_ = kv.Set(ctx, storage.KeyTimezones, []byte(`["Asia/Kolkata","UTC"]`))
	_ = kv.Set(ctx, storage.KeyHistory, []byte(`[["Asia/Kolkata"]]`))

	detected := false
	s := Open(ctx, storage.NewBridge(kv, nil), Options{
		Now:    fixedNow,
		Detect: func() (string, error) { detected = true; return "Europe/Paris", nil },
	})

	st := s.State()
	if !st.Zones.Equal(zonelist.List{"Asia/Kolkata", "UTC"}) {
		t.Fatalf("zones = %v", st.Zones)
	}
	if detected {
		t.Fatalf("detector should not run when zones are stored")
	}
	if !st.History.CanUndo() || st.History.CanRedo() {
		t.Fatalf("history = %+v", st.History)
	}
	if !st.Instant.Time().Equal(fixedNow) || st.Live {
		t.Fatalf("instant = %v live=%v", st.Instant.Time(), st.Live)
	}
}

func TestOpenFallsBackToDetectedZone(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	_ = kv.Set(ctx, storage.KeyTimezones, []byte(`[]`))

	s := Open(ctx, storage.NewBridge(kv, nil), Options{
		Detect: func() (string, error) { return "Europe/Paris", nil },
	})
	if !s.State().Zones.Equal(zonelist.List{"Europe/Paris"}) {
		t.Fatalf("zones = %v", s.State().Zones)
	}
	if !s.State().Live {
		t.Fatalf("a session opened at the current time should be live")
	}

	var stored []string
	readJSON(t, kv, storage.KeyTimezones, &stored)
	if len(stored) != 1 || stored[0] != "Europe/Paris" {
		t.Fatalf("stored = %v", stored)
	}
}

func TestOpenDetectionFailureStartsEmpty(t *testing.T) {
	s := Open(context.Background(), storage.NewBridge(storage.NewMemory(), nil), Options{
		Now:    fixedNow,
		Detect: func() (string, error) { return "", errors.New("no idea") },
	})
	if s.State().Zones == nil || len(s.State().Zones) != 0 {
		t.Fatalf("zones = %#v", s.State().Zones)
	}
}

// Storage must reflect the state after each mutation, including when two
// mutations happen back to back with no read in between.
func TestDispatchPersistsPostMutationState(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	_ = kv.Set(ctx, storage.KeyTimezones, []byte(`["Asia/Kolkata"]`))
	s := Open(ctx, storage.NewBridge(kv, nil), Options{Now: fixedNow})

	s.Dispatch(ctx, AddZone{Zone: "America/New_York"})
	s.Dispatch(ctx, ReverseZones{})

	check := func(step string) {
		t.Helper()
		st := s.State()
		var zones []string
		var hist, fut [][]string
		readJSON(t, kv, storage.KeyTimezones, &zones)
		readJSON(t, kv, storage.KeyHistory, &hist)
		readJSON(t, kv, storage.KeyFuture, &fut)

		if !zonelist.List(zones).Equal(st.Zones) {
			t.Fatalf("%s: stored zones %v, memory %v", step, zones, st.Zones)
		}
		if len(hist) != len(st.History.History) {
			t.Fatalf("%s: stored history %v, memory %v", step, hist, st.History.History)
		}
		for i := range hist {
			if !zonelist.List(hist[i]).Equal(st.History.History[i]) {
				t.Fatalf("%s: history[%d] %v vs %v", step, i, hist[i], st.History.History[i])
			}
		}
		if len(fut) != len(st.History.Future) {
			t.Fatalf("%s: stored future %v, memory %v", step, fut, st.History.Future)
		}
		for i := range fut {
			if !zonelist.List(fut[i]).Equal(st.History.Future[i]) {
				t.Fatalf("%s: future[%d] %v vs %v", step, i, fut[i], st.History.Future[i])
			}
		}
	}

	check("after add+reverse")
	s.Dispatch(ctx, Undo{})
	s.Dispatch(ctx, Undo{})
	check("after two undos")
	s.Dispatch(ctx, Redo{})
	check("after redo")
	s.Dispatch(ctx, RemoveZone{Index: 0})
	check("after remove")

	reopened := Open(ctx, storage.NewBridge(kv, nil), Options{Now: fixedNow})
	if !reopened.State().Zones.Equal(s.State().Zones) {
		t.Fatalf("reopened zones %v, want %v", reopened.State().Zones, s.State().Zones)
	}
}

func TestDispatchSurvivesWriteFailure(t *testing.T) {
	ctx := context.Background()
	kv := &readOnlyKV{Memory: storage.NewMemory()}
	s := Open(ctx, storage.NewBridge(kv, nil), Options{Now: fixedNow})

	out := s.Dispatch(ctx, AddZone{Zone: "UTC"})
	if !out.ListChanged {
		t.Fatalf("mutation should apply in memory")
	}
	if !s.State().Zones.Equal(zonelist.List{"UTC"}) {
		t.Fatalf("zones = %v", s.State().Zones)
	}
	if kv.writes == 0 {
		t.Fatalf("expected a write attempt")
	}
}

func TestDispatchInstantEditsDoNotPersist(t *testing.T) {
	ctx := context.Background()
	kv := &readOnlyKV{Memory: storage.NewMemory()}
	_ = kv.Memory.Set(ctx, storage.KeyTimezones, []byte(`["UTC"]`))
	s := Open(ctx, storage.NewBridge(kv, nil), Options{Now: fixedNow})

	s.Dispatch(ctx, TypeTime{Zone: "UTC", Text: "04:00 PM"})
	s.Dispatch(ctx, MoveSlider{Zone: "UTC", Index: 10})
	if kv.writes != 0 {
		t.Fatalf("instant edits wrote to storage %d times", kv.writes)
	}
}
