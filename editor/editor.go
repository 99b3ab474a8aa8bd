// Package editor maps between the shared instant and one zone's wall-clock
// time: slider positions, typed "hh:mm AM/PM" text and half-hour suggestions.
package editor

import (
	"strings"
	"time"

	"github.com/philtim/timeplanner/clock"
)

const (
	// SliderMax is the last slider position (24:00, which is never accepted
	// because it belongs to the next day)
	SliderMax = 96
	// SliderStep is the time covered by one slider position
	SliderStep = 15 * time.Minute
)

// SliderIndex returns the slider position of instant in loc: the number of
// whole quarter hours past local midnight.
func SliderIndex(instant time.Time, loc *time.Location) int {
	local := instant.In(loc)
	return local.Hour()*4 + local.Minute()/15
}

// ApplySliderDelta reinterprets index as quarter hours past local midnight
// of the zone's current day. index is clamped to [0, SliderMax]. The result
// is rejected (ok == false, instant returned unchanged) when it would land on
// a different local date.
func ApplySliderDelta(instant time.Time, loc *time.Location, index int) (time.Time, bool) {
	if index < 0 {
		index = 0
	}
	if index > SliderMax {
		index = SliderMax
	}

	local := instant.In(loc)
	midnight := startOfDay(local)
	next := midnight.Add(time.Duration(index) * SliderStep)

	if !sameDay(next.In(loc), local) {
		return instant, false
	}
	return next.UTC(), true
}

// ParseTime parses text strictly against "hh:mm AM/PM". The meridiem may be
// lower case; the hour must be two digits in 01..12.
func ParseTime(text string) (hour, minute int, ok bool) {
	t, err := time.Parse(clock.TimeLayout, strings.ToUpper(text))
	if err != nil {
		return 0, 0, false
	}
	if strings.HasPrefix(text, "00") {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}

// ApplyTypedTime sets the wall-clock hour and minute of instant in loc from
// text, keeping the zone's calendar date and the instant's seconds. An
// unparsable text leaves the instant untouched and reports ok == false.
func ApplyTypedTime(text string, instant time.Time, loc *time.Location) (time.Time, bool) {
	hour, minute, ok := ParseTime(text)
	if !ok {
		return instant, false
	}
	local := instant.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, local.Second(), local.Nanosecond(), loc)

	// A repeated wall time (DST fall-back) resolves to its first occurrence;
	// prefer the occurrence with the instant's current offset.
	_, offNext := next.Zone()
	_, offLocal := local.Zone()
	if offNext != offLocal {
		alt := next.Add(time.Duration(offNext-offLocal) * time.Second)
		if a := alt.In(loc); a.Hour() == hour && a.Minute() == minute && sameDay(a, local) {
			next = alt
		}
	}
	return next.UTC(), true
}

// Suggest returns every half-hour time of day, formatted as "hh:mm AM/PM",
// that starts with partial. The list is rebuilt on every call.
func Suggest(partial string) []string {
	var out []string
	base := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 48; i++ {
		option := base.Add(time.Duration(i) * 30 * time.Minute).Format(clock.TimeLayout)
		if strings.HasPrefix(option, partial) {
			out = append(out, option)
		}
	}
	return out
}

// SetDate moves instant to the given calendar date in loc, keeping the
// wall-clock time of day.
func SetDate(instant time.Time, loc *time.Location, year int, month time.Month, day int) time.Time {
	local := instant.In(loc)
	return time.Date(year, month, day, local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), loc).UTC()
}

// ShiftDays moves instant by n calendar days in loc, keeping the wall-clock
// time of day.
func ShiftDays(instant time.Time, loc *time.Location, n int) time.Time {
	return instant.In(loc).AddDate(0, 0, n).UTC()
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
