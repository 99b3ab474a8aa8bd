package geonames

import (
	"archive/zip"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func geonamesLine(name, country, tz string) string {
	fields := make([]string, 19)
	fields[0] = "1"
	fields[1] = name
	fields[8] = country
	fields[17] = tz
	return strings.Join(fields, "\t")
}

func writeCities(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), CacheFileName)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFileSkipsShortAndZoneless(t *testing.T) {
	path := writeCities(t,
		geonamesLine("Pune", "IN", "Asia/Kolkata"),
		"too\tshort",
		geonamesLine("Nowhere", "XX", ""),
		geonamesLine("Berlin", "DE", "Europe/Berlin"),
	)
	cities, err := parseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []City{
		{Name: "Pune", CountryCode: "IN", Timezone: "Asia/Kolkata"},
		{Name: "Berlin", CountryCode: "DE", Timezone: "Europe/Berlin"},
	}
	if !reflect.DeepEqual(cities, want) {
		t.Fatalf("got %+v", cities)
	}
}

func TestSearchZonesBeforeCities(t *testing.T) {
	db := NewDatabase([]string{"America/New_York", "Asia/Kolkata", "Europe/Berlin", "Europe/Paris"})
	path := writeCities(t,
		geonamesLine("Parisville", "US", "America/New_York"),
		geonamesLine("Paris", "FR", "Europe/Paris"),
		geonamesLine("Kolkata", "IN", "Asia/Kolkata"),
		geonamesLine("Pune", "IN", "Asia/Kolkata"),
	)
	if err := db.load(path, false); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !db.IsReady() {
		t.Fatalf("expected ready")
	}

	got := db.Search("paris", 10)
	if len(got) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got[0].Zone != "Europe/Paris" || got[0].Label != "Europe/Paris" {
		t.Fatalf("zone id match should come first: %+v", got)
	}
	if got[1].Zone != "America/New_York" || !strings.Contains(got[1].Label, "Parisville") {
		t.Fatalf("city alias expected second: %+v", got)
	}

	got = db.Search("pune", 10)
	if len(got) != 1 || got[0].Zone != "Asia/Kolkata" {
		t.Fatalf("city search: %+v", got)
	}

	got = db.Search("new york", 10)
	if len(got) != 1 || got[0].Zone != "America/New_York" {
		t.Fatalf("underscore as space: %+v", got)
	}
}

func TestSearchLimitsAndShortQueries(t *testing.T) {
	db := NewDatabase([]string{"Europe/Berlin", "Europe/Paris", "Europe/Rome", "Asia/Tokyo"})
	db.Disable()

	if got := db.Search("", 10); len(got) != 0 {
		t.Fatalf("empty query: %+v", got)
	}
	if got := db.Search("EUROPE", 2); len(got) != 2 {
		t.Fatalf("limit not applied: %+v", got)
	}
	if got := db.Search("europe", 0); len(got) != 3 {
		t.Fatalf("no limit: %+v", got)
	}
	if got := db.Search("o", 0); len(got) != 4 {
		t.Fatalf("single letter matches zone ids: %+v", got)
	}
}

func TestLoadWithoutCacheAndNoDownload(t *testing.T) {
	db := NewDatabase(nil)
	err := db.load(filepath.Join(t.TempDir(), "missing.txt"), false)
	if err == nil {
		t.Fatalf("expected error")
	}
	if db.IsReady() {
		t.Fatalf("should not be ready")
	}
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "cities.zip")

	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create(CacheFileName)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(geonamesLine("Pune", "IN", "Asia/Kolkata"))); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	target := filepath.Join(dir, "out.txt")
	if err := extractFile(zipPath, CacheFileName, target); err != nil {
		t.Fatalf("extract: %v", err)
	}
	cities, err := parseFile(target)
	if err != nil || len(cities) != 1 {
		t.Fatalf("parsed %+v, %v", cities, err)
	}

	if err := extractFile(zipPath, "other.txt", target); err == nil {
		t.Fatalf("expected missing entry error")
	}
}

func TestAllZoneIDsIsACopy(t *testing.T) {
	db := NewDatabase([]string{"UTC"})
	ids := db.AllZoneIDs()
	ids[0] = "Mutated"
	if db.AllZoneIDs()[0] != "UTC" {
		t.Fatalf("AllZoneIDs exposed internal slice")
	}
}
