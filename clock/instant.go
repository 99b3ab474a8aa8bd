package clock

import "time"

// Instant is the single shared point in time every clock is a view of
type Instant struct {
	t time.Time
}

// Now returns an Instant at the current time
func Now() Instant {
	return At(time.Now())
}

// At returns an Instant for t, normalized to UTC
func At(t time.Time) Instant {
	return Instant{t: t.UTC()}
}

// Time returns the instant as a UTC time.Time
func (i Instant) Time() time.Time {
	return i.t
}

// Set replaces the instant unconditionally. It is the only mutator.
func (i *Instant) Set(t time.Time) {
	i.t = t.UTC()
}

// Equal reports whether both instants denote the same moment
func (i Instant) Equal(other Instant) bool {
	return i.t.Equal(other.t)
}
