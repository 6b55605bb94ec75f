// Package cache persists the last successfully fetched dataset in a single
// file slot with a freshness window. A stale entry is ignored, not deleted,
// so a later total fetch failure can still fall back to something.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"DividendDash/internal/model"
)

// Store is a file-backed single-slot cache. There is only ever one logical
// caller at a time; no locking.
type Store struct {
	Path     string
	Duration time.Duration

	now func() time.Time
}

// NewStore creates a store persisting to path with the given freshness window.
func NewStore(path string, duration time.Duration) *Store {
	return &Store{Path: path, Duration: duration, now: time.Now}
}

// Fingerprint derives the cache key for a ticker list. The list is trimmed,
// upper-cased, sorted and deduplicated first, so equivalent portfolios share
// a slot and a changed portfolio invalidates the old one.
func Fingerprint(tickers []string) string {
	cleaned := make([]string, 0, len(tickers))
	seen := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		cleaned = append(cleaned, t)
	}
	sort.Strings(cleaned)
	sum := sha256.Sum256([]byte(strings.Join(cleaned, ",")))
	return hex.EncodeToString(sum[:])
}

// Read returns the cached entry for key, or false if the slot is missing,
// unreadable, written for a different ticker set, or stale.
func (s *Store) Read(key string) (*model.CacheEntry, bool) {
	entry, ok := s.load()
	if !ok || entry.Key != key {
		return nil, false
	}
	if s.now().Sub(entry.Timestamp) >= s.Duration {
		return nil, false
	}
	return entry, true
}

// Write overwrites the slot with data timestamped now.
func (s *Store) Write(key string, data []model.StockRecord) error {
	entry := model.CacheEntry{Key: key, Data: data, Timestamp: s.now()}
	raw, err := json.MarshalIndent(&entry, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.Path, raw, 0644)
}

// TimeRemaining returns how long the entry for key stays fresh. The second
// return is false when no valid entry exists or the window has lapsed.
func (s *Store) TimeRemaining(key string) (time.Duration, bool) {
	entry, ok := s.load()
	if !ok || entry.Key != key {
		return 0, false
	}
	remaining := s.Duration - s.now().Sub(entry.Timestamp)
	if remaining <= 0 {
		return 0, false
	}
	return remaining, true
}

// Clear removes the slot unconditionally.
func (s *Store) Clear() error {
	err := os.Remove(s.Path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// load reads the slot regardless of freshness. A corrupt payload is treated
// as cache-absent, never as a fatal error.
func (s *Store) load() (*model.CacheEntry, bool) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, false
	}
	var entry model.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false
	}
	if entry.Timestamp.IsZero() {
		return nil, false
	}
	return &entry, true
}
