package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// System locations consulted by DetectZone
var (
	localtimePath = "/etc/localtime"
	timezonePath  = "/etc/timezone"
)

// DetectZone returns the system's IANA timezone name. It checks $TZ, the
// /etc/localtime symlink, /etc/timezone and finally time.Local. Candidates
// that time.LoadLocation rejects are skipped.
func DetectZone() (string, error) {
	candidates := []string{strings.TrimPrefix(os.Getenv("TZ"), ":")}

	if target, err := os.Readlink(localtimePath); err == nil {
		candidates = append(candidates, zoneFromPath(target))
	}

	if data, err := os.ReadFile(timezonePath); err == nil {
		candidates = append(candidates, strings.TrimSpace(string(data)))
	}

	if name := time.Local.String(); name != "Local" {
		candidates = append(candidates, name)
	}

	for _, zone := range candidates {
		if zone == "" || zone == "Local" || filepath.IsAbs(zone) {
			continue
		}
		if _, err := time.LoadLocation(zone); err == nil {
			return zone, nil
		}
	}
	return "", ErrNoZone
}

// zoneFromPath extracts "Area/City" from a path like
// /usr/share/zoneinfo/Area/City
func zoneFromPath(path string) string {
	path = filepath.ToSlash(path)
	if i := strings.Index(path, "zoneinfo/"); i >= 0 {
		return path[i+len("zoneinfo/"):]
	}
	return ""
}
