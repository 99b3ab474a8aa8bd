package calendar

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/philtim/timeplanner/clock"
)

const (
	// EventEditURL is the Google Calendar endpoint for a pre-filled new event
	EventEditURL = "https://calendar.google.com/calendar/u/0/r/eventedit"
	// DateLayout is the Google Calendar dates format (UTC)
	DateLayout = "20060102T150405Z"

	DefaultTitle    = "Scheduled Meet"
	DefaultDuration = 2 * time.Hour
	DefaultFooter   = "Scheduled with timeplanner"
	DefaultShareURL = "https://timeplanner.app/"
)

// ErrInvalidShareLink is returned when a share link cannot be decoded
var ErrInvalidShareLink = errors.New("invalid share link")

// Event describes a calendar event built from the current plan
type Event struct {
	Start    time.Time
	Duration time.Duration
	Title    string
	Zones    []string
	Footer   string
}

// Details lists the instant as seen in each zone, one line per zone.
// Zones that cannot be loaded are skipped.
func Details(instant time.Time, zones []string) string {
	lines := make([]string, 0, len(zones))
	for _, zone := range zones {
		c, err := clock.New(zone)
		if err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s %s", zone, c.FormatTime(instant), c.FormatDate(instant)))
	}
	return strings.Join(lines, "\n")
}

// EventURL builds the Google Calendar link for ev. Empty fields fall back
// to the defaults.
func EventURL(ev Event) string {
	title := ev.Title
	if title == "" {
		title = DefaultTitle
	}
	duration := ev.Duration
	if duration <= 0 {
		duration = DefaultDuration
	}
	footer := ev.Footer
	if footer == "" {
		footer = DefaultFooter
	}

	start := ev.Start.UTC()
	end := start.Add(duration)
	details := Details(start, ev.Zones) + "\n\n" + footer

	var b strings.Builder
	b.WriteString(EventEditURL)
	b.WriteString("?dates=")
	b.WriteString(start.Format(DateLayout) + "/" + end.Format(DateLayout))
	b.WriteString("&text=")
	b.WriteString(url.QueryEscape(title))
	b.WriteString("&details=")
	b.WriteString(url.QueryEscape(details))
	b.WriteString("&location=&sf=true&output=xml")
	return b.String()
}

// ShareLink encodes the zones and instant into a link under base
func ShareLink(base string, instant time.Time, zones []string) string {
	if base == "" {
		base = DefaultShareURL
	}
	q := url.Values{}
	q.Set("at", instant.UTC().Format(time.RFC3339))
	q.Set("zones", strings.Join(zones, ","))

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Encode()
}

// ParseShareLink decodes a link made by ShareLink. Every zone must be a
// loadable IANA identifier.
func ParseShareLink(link string) (time.Time, []string, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("%w: %v", ErrInvalidShareLink, err)
	}
	q := u.Query()

	at := q.Get("at")
	if at == "" {
		return time.Time{}, nil, fmt.Errorf("%w: missing instant", ErrInvalidShareLink)
	}
	instant, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("%w: bad instant %q", ErrInvalidShareLink, at)
	}

	zones := []string{}
	if raw := q.Get("zones"); raw != "" {
		for _, zone := range strings.Split(raw, ",") {
			zone = strings.TrimSpace(zone)
			if zone == "" {
				continue
			}
			if _, err := time.LoadLocation(zone); err != nil {
				return time.Time{}, nil, fmt.Errorf("%w: unknown zone %q", ErrInvalidShareLink, zone)
			}
			zones = append(zones, zone)
		}
	}
	return instant.UTC(), zones, nil
}
