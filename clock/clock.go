package clock

import (
	"fmt"
	"sort"
	"time"
)

const (
	// TimeLayout is the 12-hour wall-clock layout shown and accepted by the editors
	TimeLayout = "03:04 PM"
	// DateLayout is the calendar date layout shown under each clock
	DateLayout = "Mon, Jan 2 2006"
)

// Clock projects the shared instant into a single timezone
type Clock struct {
	Zone     string
	Location *time.Location
}

// New creates a new Clock instance
func New(zone string) (*Clock, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone '%s': %w", zone, err)
	}

	return &Clock{
		Zone:     zone,
		Location: loc,
	}, nil
}

// Project returns the instant as wall-clock time in the clock's timezone
func (c *Clock) Project(instant time.Time) time.Time {
	return instant.In(c.Location)
}

// FormatTime returns the time in 12-hour format (hh:mm AM/PM)
func (c *Clock) FormatTime(instant time.Time) string {
	return c.Project(instant).Format(TimeLayout)
}

// FormatDate returns the date as "Mon, Jan 2 2006"
func (c *Clock) FormatDate(instant time.Time) string {
	return c.Project(instant).Format(DateLayout)
}

// FormatUTCOffset returns the UTC offset in ±HH:MM format
func (c *Clock) FormatUTCOffset(instant time.Time) string {
	offset := c.UTCOffset(instant)

	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}

	hours := offset / 3600
	minutes := (offset % 3600) / 60

	return fmt.Sprintf("UTC%s%02d:%02d", sign, hours, minutes)
}

// FormatDateWithOffset returns the date and UTC offset
// Format: "Mon, Jan 2 2006 - UTC±HH:MM"
func (c *Clock) FormatDateWithOffset(instant time.Time) string {
	return fmt.Sprintf("%s - %s", c.FormatDate(instant), c.FormatUTCOffset(instant))
}

// UTCOffset returns the UTC offset in seconds at the given instant
func (c *Clock) UTCOffset(instant time.Time) int {
	_, offset := c.Project(instant).Zone()
	return offset
}

// SortByUTCOffset returns the zones ordered by their UTC offset at the given
// instant (west to east). Zones that fail to load keep their relative order at
// the end.
func SortByUTCOffset(zones []string, instant time.Time) []string {
	type entry struct {
		zone   string
		offset int
		ok     bool
	}

	entries := make([]entry, 0, len(zones))
	for _, z := range zones {
		clk, err := New(z)
		if err != nil {
			entries = append(entries, entry{zone: z})
			continue
		}
		entries = append(entries, entry{zone: z, offset: clk.UTCOffset(instant), ok: true})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ok != entries[j].ok {
			return entries[i].ok
		}
		return entries[i].offset < entries[j].offset
	})

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.zone
	}
	return out
}
