package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/philtim/timeplanner/logging"
	"github.com/philtim/timeplanner/zonelist"
)

// Fixed keys, shared with every backend
const (
	KeyTimezones = "timezones"
	KeyHistory   = "history"
	KeyFuture    = "future"
)

// Snapshot is everything that survives a restart. The shared instant is not
// part of it; it starts at "now" on every launch.
type Snapshot struct {
	Zones   zonelist.List
	History []zonelist.List
	Future  []zonelist.List
}

// Bridge loads and saves snapshots through a KV store
type Bridge struct {
	kv  KV
	log *logging.Logger
}

// NewBridge creates a bridge over kv
func NewBridge(kv KV, log *logging.Logger) *Bridge {
	if log == nil {
		log = logging.Nop()
	}
	return &Bridge{kv: kv, log: log}
}

// Load reads the stored snapshot. It never fails: missing or malformed
// values load as empty and the problem is logged.
func (b *Bridge) Load(ctx context.Context) Snapshot {
	var snap Snapshot

	var zones []string
	if b.read(ctx, KeyTimezones, &zones) {
		snap.Zones = zonelist.Dedupe(zones)
	}

	var history, future [][]string
	if b.read(ctx, KeyHistory, &history) {
		snap.History = toLists(history)
	}
	if b.read(ctx, KeyFuture, &future) {
		snap.Future = toLists(future)
	}

	if snap.History == nil {
		snap.History = []zonelist.List{}
	}
	if snap.Future == nil {
		snap.Future = []zonelist.List{}
	}
	return snap
}

// Save writes all three keys. Every key is attempted even if an earlier one
// fails; the joined error is returned for logging by the caller.
func (b *Bridge) Save(ctx context.Context, snap Snapshot) error {
	zones := snap.Zones
	if zones == nil {
		zones = zonelist.List{}
	}
	history := snap.History
	if history == nil {
		history = []zonelist.List{}
	}
	future := snap.Future
	if future == nil {
		future = []zonelist.List{}
	}

	return errors.Join(
		b.write(ctx, KeyTimezones, zones),
		b.write(ctx, KeyHistory, history),
		b.write(ctx, KeyFuture, future),
	)
}

// Close releases the underlying store
func (b *Bridge) Close() error {
	return b.kv.Close()
}

func (b *Bridge) read(ctx context.Context, key string, dst interface{}) bool {
	raw, err := b.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false
	}
	if err != nil {
		b.log.WithError(err).Warnw("failed to read stored state, treating as empty", "key", key)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		b.log.WithError(err).Warnw("malformed stored state, treating as empty", "key", key)
		return false
	}
	return true
}

func (b *Bridge) write(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	if err := b.kv.Set(ctx, key, raw); err != nil {
		return err
	}
	return nil
}

func toLists(in [][]string) []zonelist.List {
	out := make([]zonelist.List, 0, len(in))
	for _, l := range in {
		out = append(out, zonelist.Dedupe(l))
	}
	return out
}
