package editor

import (
	"fmt"
	"time"

	"github.com/philtim/timeplanner/clock"
)

// Field is the typed-time input of one zone. It keeps whatever the user
// typed, even when invalid, until the text is committed or re-synced.
type Field struct {
	Zone        string
	Text        string
	Invalid     bool
	Suggestions []string

	loc *time.Location
}

// NewField creates a field for zone showing instant
func NewField(zone string, instant time.Time) (*Field, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone '%s': %w", zone, err)
	}
	f := &Field{Zone: zone, loc: loc}
	f.Sync(instant)
	return f, nil
}

// Location returns the field's timezone
func (f *Field) Location() *time.Location {
	return f.loc
}

// Sync re-renders the text from the shared instant and clears the invalid flag
func (f *Field) Sync(instant time.Time) {
	f.Text = instant.In(f.loc).Format(clock.TimeLayout)
	f.Invalid = false
	f.Suggestions = nil
}

// Focus shows the full suggestion list
func (f *Field) Focus() {
	f.Suggestions = Suggest("")
}

// Type replaces the raw text and recomputes the suggestions from scratch
func (f *Field) Type(text string) {
	f.Text = text
	f.Suggestions = Suggest(text)
}

// Commit validates the raw text. On success it returns the new instant; on
// failure the field is flagged invalid, keeps its text, and instant is
// returned unchanged.
func (f *Field) Commit(instant time.Time) (time.Time, bool) {
	f.Suggestions = nil
	next, ok := ApplyTypedTime(f.Text, instant, f.loc)
	f.Invalid = !ok
	return next, ok
}

// Pick applies the i-th suggestion
func (f *Field) Pick(i int, instant time.Time) (time.Time, bool) {
	if i < 0 || i >= len(f.Suggestions) {
		return instant, false
	}
	f.Text = f.Suggestions[i]
	return f.Commit(instant)
}
