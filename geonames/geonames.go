package geonames

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// GeoNamesURL is the download URL for cities with 15000+ population
	GeoNamesURL = "http://download.geonames.org/export/dump/cities15000.zip"
	// CacheFileName is the name of the cached cities file
	CacheFileName = "cities15000.txt"
	// MinCityQuery is the shortest query that is matched against city names
	MinCityQuery = 3
	// DownloadTimeout bounds the GeoNames download
	DownloadTimeout = 2 * time.Minute
)

// City represents a city from the GeoNames database
type City struct {
	Name        string
	CountryCode string
	Timezone    string
}

// Match is one search result: a zone and how it was found
type Match struct {
	Zone  string
	Label string
}

// Database is the zone name source. Zone identifiers are available right
// away; GeoNames cities are loaded in the background and used as aliases.
type Database struct {
	zones  []string
	cities []City
	ready  bool
	err    error
	mu     sync.RWMutex
}

// NewDatabase creates a database over the given zone identifiers
func NewDatabase(zones []string) *Database {
	return &Database{
		zones:  append([]string(nil), zones...),
		cities: []City{},
		ready:  false,
	}
}

// AllZoneIDs returns every known zone identifier
func (db *Database) AllZoneIDs() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return append([]string(nil), db.zones...)
}

// LoadAsync loads the GeoNames cities asynchronously. The cache file at
// cachePath is downloaded first if missing and download is true.
func (db *Database) LoadAsync(cachePath string, download bool) {
	go func() {
		_ = db.Load(cachePath, download)
	}()
}

// Load loads the GeoNames cities synchronously
func (db *Database) Load(cachePath string, download bool) error {
	err := db.load(cachePath, download)
	if err != nil {
		db.mu.Lock()
		db.err = err
		db.mu.Unlock()
	}
	return err
}

// Disable marks the city data as ready without loading anything; searches
// then only match zone identifiers
func (db *Database) Disable() {
	db.mu.Lock()
	db.ready = true
	db.mu.Unlock()
}

// load downloads (if needed) and loads the GeoNames cities
func (db *Database) load(cachePath string, download bool) error {
	if _, err := os.Stat(cachePath); os.IsNotExist(err) {
		if !download {
			return fmt.Errorf("no GeoNames data at %s", cachePath)
		}
		if err := downloadAndExtract(cachePath); err != nil {
			return fmt.Errorf("failed to download GeoNames data: %w", err)
		}
	}

	cities, err := parseFile(cachePath)
	if err != nil {
		return fmt.Errorf("failed to parse GeoNames data: %w", err)
	}

	db.mu.Lock()
	db.cities = cities
	db.ready = true
	db.mu.Unlock()

	return nil
}

// IsReady returns whether the city data is loaded
func (db *Database) IsReady() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.ready
}

// GetError returns any error that occurred during loading
func (db *Database) GetError() error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.err
}

// Search returns zones matching query, at most maxResults of them (no limit
// when maxResults <= 0). Zone identifiers containing the query come first,
// ignoring case and treating '_' as a space; then zones of cities whose name
// matches, exact matches before prefix and substring ones. Each zone appears
// once.
func (db *Database) Search(query string, maxResults int) []Match {
	db.mu.RLock()
	defer db.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []Match{}
	}

	seen := make(map[string]bool)
	var results []Match
	full := func() bool {
		return maxResults > 0 && len(results) >= maxResults
	}
	add := func(m Match) {
		if seen[m.Zone] || full() {
			return
		}
		seen[m.Zone] = true
		results = append(results, m)
	}

	for _, zone := range db.zones {
		lower := strings.ToLower(zone)
		if strings.Contains(lower, query) || strings.Contains(strings.ReplaceAll(lower, "_", " "), query) {
			add(Match{Zone: zone, Label: zone})
		}
		if full() {
			return results
		}
	}

	if !db.ready || len(query) < MinCityQuery {
		return nonNil(results)
	}

	// exact, prefix, substring
	var tiers [3][]City
	for _, city := range db.cities {
		name := strings.ToLower(city.Name)
		switch {
		case name == query:
			tiers[0] = append(tiers[0], city)
		case strings.HasPrefix(name, query):
			tiers[1] = append(tiers[1], city)
		case strings.Contains(name, query):
			tiers[2] = append(tiers[2], city)
		}
	}

	for _, tier := range tiers {
		for _, city := range tier {
			add(Match{
				Zone:  city.Timezone,
				Label: fmt.Sprintf("%s, %s (%s)", city.Name, city.CountryCode, city.Timezone),
			})
			if full() {
				return results
			}
		}
	}

	return nonNil(results)
}

func nonNil(m []Match) []Match {
	if m == nil {
		return []Match{}
	}
	return m
}

// DefaultCachePath returns the path to the cache file
func DefaultCachePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	cacheDir := filepath.Join(homeDir, ".cache", "timeplanner")
	return filepath.Join(cacheDir, CacheFileName), nil
}

// downloadAndExtract fetches the GeoNames archive and unpacks the cities
// file to targetPath. Nothing is left at targetPath on failure.
func downloadAndExtract(targetPath string) error {
	cacheDir := filepath.Dir(targetPath)
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	archive, err := os.CreateTemp(cacheDir, "cities-*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(archive.Name())

	err = downloadTo(archive, GeoNamesURL)
	if cerr := archive.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}

	if err := extractFile(archive.Name(), CacheFileName, targetPath); err != nil {
		return fmt.Errorf("failed to extract file: %w", err)
	}
	return nil
}

var httpClient = &http.Client{Timeout: DownloadTimeout}

func downloadTo(w io.Writer, url string) error {
	resp, err := httpClient.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// extractFile copies fileName out of the zip archive to targetPath through
// a temporary file in the same directory
func extractFile(zipPath, fileName, targetPath string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	f, err := r.Open(fileName)
	if err != nil {
		return fmt.Errorf("file %s not found in zip archive", fileName)
	}
	defer f.Close()

	tmp, err := os.CreateTemp(filepath.Dir(targetPath), filepath.Base(targetPath)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, f); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), targetPath)
}

// parseFile reads a GeoNames dump: tab separated, name in column 2, country
// code in column 9, timezone in column 18. Rows without a timezone are
// skipped.
func parseFile(path string) ([]City, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cities []City
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 18 || fields[17] == "" {
			continue
		}
		cities = append(cities, City{
			Name:        fields[1],
			CountryCode: fields[8],
			Timezone:    fields[17],
		})
	}
	return cities, scanner.Err()
}
