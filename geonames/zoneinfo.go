package geonames

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// zoneinfoDirs are the usual locations of the system tz database
var zoneinfoDirs = []string{
	"/usr/share/zoneinfo",
	"/usr/lib/zoneinfo",
	"/usr/share/lib/zoneinfo",
	"/etc/zoneinfo",
}

// fallbackZones is used when no tz database can be listed
var fallbackZones = []string{
	"UTC",
	"America/New_York",
	"America/Chicago",
	"America/Denver",
	"America/Los_Angeles",
	"America/Toronto",
	"America/Vancouver",
	"America/Sao_Paulo",
	"America/Mexico_City",
	"Europe/London",
	"Europe/Paris",
	"Europe/Berlin",
	"Europe/Rome",
	"Europe/Madrid",
	"Europe/Amsterdam",
	"Europe/Stockholm",
	"Europe/Helsinki",
	"Europe/Moscow",
	"Africa/Cairo",
	"Africa/Lagos",
	"Africa/Johannesburg",
	"Asia/Dubai",
	"Asia/Kolkata",
	"Asia/Kathmandu",
	"Asia/Singapore",
	"Asia/Shanghai",
	"Asia/Hong_Kong",
	"Asia/Seoul",
	"Asia/Tokyo",
	"Australia/Adelaide",
	"Australia/Sydney",
	"Australia/Melbourne",
	"Pacific/Auckland",
	"Pacific/Honolulu",
}

// ListZoneIDs returns every IANA zone identifier found in the system tz
// database, sorted. It checks $ZONEINFO, the usual system directories and
// finally the zoneinfo.zip shipped with Go, and falls back to a built-in
// list of common zones.
func ListZoneIDs() []string {
	var sources []string
	if z := os.Getenv("ZONEINFO"); z != "" {
		sources = append(sources, z)
	}
	sources = append(sources, zoneinfoDirs...)
	sources = append(sources, filepath.Join(runtime.GOROOT(), "lib", "time", "zoneinfo.zip"))

	for _, src := range sources {
		var zones []string
		if strings.HasSuffix(src, ".zip") {
			zones = listZip(src)
		} else {
			zones = listDir(src)
		}
		if len(zones) > 0 {
			sort.Strings(zones)
			return zones
		}
	}

	return append([]string(nil), fallbackZones...)
}

// listDir walks a zoneinfo directory and keeps TZif files with zone-like names
func listDir(root string) []string {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil
	}

	var zones []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel == "posix" || rel == "right" {
				return filepath.SkipDir
			}
			return nil
		}
		if !isZoneName(rel) || !isTZif(path) {
			return nil
		}
		zones = append(zones, rel)
		return nil
	})
	return zones
}

// listZip lists the entries of a zoneinfo.zip archive
func listZip(path string) []string {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil
	}
	defer r.Close()

	var zones []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isZoneName(f.Name) {
			continue
		}
		zones = append(zones, f.Name)
	}
	return zones
}

// isZoneName filters out tz database support files (zone.tab, leapseconds,
// posixrules, ...) and legacy trees
func isZoneName(name string) bool {
	if name == "" || strings.Contains(name, ".") {
		return false
	}
	if c := name[0]; c < 'A' || c > 'Z' {
		return false
	}
	if strings.HasPrefix(name, "posix/") || strings.HasPrefix(name, "right/") || strings.HasPrefix(name, "SystemV/") {
		return false
	}
	return name != "Factory"
}

func isTZif(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		return false
	}
	return string(magic) == "TZif"
}
