package state

import (
	"context"
	"time"

	"github.com/philtim/timeplanner/clock"
	"github.com/philtim/timeplanner/history"
	"github.com/philtim/timeplanner/logging"
	"github.com/philtim/timeplanner/storage"
	"github.com/philtim/timeplanner/zonelist"
)

// Detector guesses the user's zone when nothing is stored
type Detector func() (string, error)

// Options configures a Session
type Options struct {
	Detect Detector
	Log    *logging.Logger
	// Now is the initial instant; zero means time.Now()
	Now  time.Time
	Dark bool
}

// Session is the single owner of the application state. It is not safe for
// concurrent use; events are dispatched one at a time.
type Session struct {
	bridge *storage.Bridge
	log    *logging.Logger
	state  State
}

// Open loads the stored zone list and history. When no zones are stored the
// detected zone is used; when detection fails as well the list starts empty.
func Open(ctx context.Context, bridge *storage.Bridge, opts Options) *Session {
	log := opts.Log
	if log == nil {
		log = logging.Nop()
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	snap := bridge.Load(ctx)

	s := &Session{
		bridge: bridge,
		log:    log,
		state: State{
			Instant: clock.At(now),
			Zones:   snap.Zones,
			History: history.New(snap.History, snap.Future),
			Live:    opts.Now.IsZero(),
			Dark:    opts.Dark,
		},
	}

	if len(s.state.Zones) == 0 {
		s.state.Zones = zonelist.List{}
		if opts.Detect != nil {
			zone, err := opts.Detect()
			if err != nil {
				log.WithError(err).Warnw("could not detect a default timezone")
			} else if zone != "" {
				s.state.Zones = zonelist.List{zone}
				s.persist(ctx)
			}
		}
	}

	return s
}

// State returns the current state. Callers must not modify its slices.
func (s *Session) State() State {
	return s.state
}

// Dispatch reduces a into the current state and persists the zone list and
// history when they changed. Persistence failures are logged, never returned.
func (s *Session) Dispatch(ctx context.Context, a Action) Outcome {
	next, out := Reduce(s.state, a)
	s.state = next
	if out.ListChanged {
		s.persist(ctx)
	}
	return out
}

// persist writes the state as it is now, after the mutation
func (s *Session) persist(ctx context.Context) {
	if err := s.bridge.Save(ctx, s.state.Snapshot()); err != nil {
		s.log.WithError(err).Warnw("failed to persist zone list", "zones", len(s.state.Zones))
	}
}

// Close releases the storage backend
func (s *Session) Close() error {
	return s.bridge.Close()
}
