package geonames

import (
	"archive/zip"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeZoneFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestListDir(t *testing.T) {
	root := t.TempDir()
	writeZoneFile(t, root, "Europe/Berlin", "TZif2 data")
	writeZoneFile(t, root, "America/Argentina/Salta", "TZif2 data")
	writeZoneFile(t, root, "UTC", "TZif2 data")
	writeZoneFile(t, root, "zone.tab", "# table")
	writeZoneFile(t, root, "iso3166.tab", "# table")
	writeZoneFile(t, root, "posix/Europe/Berlin", "TZif2 data")
	writeZoneFile(t, root, "right/UTC", "TZif2 data")
	writeZoneFile(t, root, "Broken/Zone", "not a tz file")

	got := listDir(root)
	want := map[string]bool{"Europe/Berlin": true, "America/Argentina/Salta": true, "UTC": true}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for _, z := range got {
		if !want[z] {
			t.Fatalf("unexpected zone %q in %v", z, got)
		}
	}
}

func TestListZoneIDsHonoursZONEINFO(t *testing.T) {
	root := t.TempDir()
	writeZoneFile(t, root, "Europe/Berlin", "TZif2")
	writeZoneFile(t, root, "Asia/Kolkata", "TZif2")
	t.Setenv("ZONEINFO", root)

	got := ListZoneIDs()
	if !reflect.DeepEqual(got, []string{"Asia/Kolkata", "Europe/Berlin"}) {
		t.Fatalf("got %v", got)
	}
}

func TestListZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zoneinfo.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for _, name := range []string{"Asia/Tokyo", "Europe/Paris", "zone1970.tab", "Factory"} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = w.Write([]byte("TZif"))
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	got := listZip(path)
	if !reflect.DeepEqual(got, []string{"Asia/Tokyo", "Europe/Paris"}) {
		t.Fatalf("got %v", got)
	}
}

func TestIsZoneName(t *testing.T) {
	tests := map[string]bool{
		"Europe/Berlin": true,
		"EST5EDT":       true,
		"zone.tab":      false,
		"posixrules":    false,
		"leapseconds":   false,
		"Factory":       false,
		"SystemV/AST4":  false,
		"posix/Etc/UTC": false,
		"":              false,
	}
	for name, want := range tests {
		if got := isZoneName(name); got != want {
			t.Fatalf("isZoneName(%q) = %v, want %v", name, got, want)
		}
	}
}
