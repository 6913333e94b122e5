package facet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joescharf/insights/internal/session"
)

// ErrNotFound is returned by Get for identities with no cached entry.
var ErrNotFound = errors.New("facet not cached")

// Cache is a directory of one JSON file per analyzed session, keyed by the
// identity token. Entries are written atomically (temp file + rename) with
// owner-only permissions and are never updated in place: invalidation is
// deletion, via Remove or Clear, and is an explicit destructive operation.
//
// Concurrent workers within one run each write a distinct key, so no
// cross-worker locking is needed; atomicity is per entry.
type Cache struct {
	dir string
}

// NewCache opens (creating if needed) a facet cache rooted at dir.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) entryPath(id session.Identity) string {
	return filepath.Join(c.dir, id.Token()+".json")
}

// Has reports whether an entry exists for the identity.
func (c *Cache) Has(id session.Identity) bool {
	_, err := os.Stat(c.entryPath(id))
	return err == nil
}

// Get reads the cached facet for the identity. Returns ErrNotFound when no
// entry exists.
func (c *Cache) Get(id session.Identity) (*Facet, error) {
	data, err := os.ReadFile(c.entryPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read cache entry: %w", err)
	}
	var f Facet
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode cache entry %s: %w", id.Token(), err)
	}
	return &f, nil
}

// Put persists a facet for the identity. The write is atomic with respect to
// crash or concurrent process termination: the entry is staged in a temp
// file, then renamed into place, so a reader never observes a partial entry.
func (c *Cache) Put(id session.Identity, f *Facet) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode facet: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, id.Token()+".tmp-*")
	if err != nil {
		return fmt.Errorf("stage cache entry: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close cache entry: %w", err)
	}
	if err := os.Rename(tmpName, c.entryPath(id)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish cache entry: %w", err)
	}
	return nil
}

// Remove deletes one entry. Missing entries are not an error.
func (c *Cache) Remove(id session.Identity) error {
	err := os.Remove(c.entryPath(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cache entry: %w", err)
	}
	return nil
}

// Clear deletes every entry. Destructive: every cleared session becomes
// eligible for re-analysis on the next run.
func (c *Cache) Clear() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("read cache directory: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return removed, fmt.Errorf("remove %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}

// Count returns the number of cached entries, plus how many were produced by
// a model other than current. Stale-model entries are still served; the
// split exists for reporting.
func (c *Cache) Count(current string) (total, staleModel int, err error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read cache directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		total++
		if current == "" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(c.dir, e.Name()))
		if err != nil {
			continue
		}
		var f Facet
		if err := json.Unmarshal(data, &f); err != nil {
			continue
		}
		if f.Model != "" && f.Model != current {
			staleModel++
		}
	}
	return total, staleModel, nil
}
