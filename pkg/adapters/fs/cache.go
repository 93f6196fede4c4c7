package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/quill/pkg/core"
)

const indexVersion = 1

// indexEntry is the parsed front matter of one post, valid while the file's
// mtime is unchanged.
type indexEntry struct {
	ID           string           `json:"id"`
	FrontMatter  core.FrontMatter `json:"front_matter"`
	LastModified time.Time        `json:"last_modified"`
}

// index is the persistent cache state.
type index struct {
	Version int                    `json:"version"`
	Entries map[string]*indexEntry `json:"entries"` // keyed by relative path, e.g. "2023/set.md"
}

// cache avoids reparsing unchanged posts when listing.
// It lives in {root}/{systemDir}/index.json.
type cache struct {
	mu    sync.RWMutex
	path  string
	index index
	dirty bool
}

func newCache(root, systemDir string) *cache {
	return &cache{
		path: filepath.Join(root, systemDir, "index.json"),
		index: index{
			Version: indexVersion,
			Entries: make(map[string]*indexEntry),
		},
	}
}

// Load reads the index from disk. A missing, corrupted, or outdated index
// starts empty.
func (c *cache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	var loaded index
	if err := json.Unmarshal(data, &loaded); err != nil || loaded.Version != indexVersion || loaded.Entries == nil {
		c.index.Entries = make(map[string]*indexEntry)
		return nil
	}
	c.index = loaded
	c.dirty = false
	return nil
}

// Save persists the index if it changed since the last Load or Save.
func (c *cache) Save() error {
	c.mu.RLock()
	if !c.dirty {
		c.mu.RUnlock()
		return nil
	}
	data, err := json.MarshalIndent(c.index, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := atomicWrite(c.path, data, 0644); err != nil {
		return err
	}

	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()
	return nil
}

// Get returns the entry for relPath if it is still fresh.
func (c *cache) Get(relPath string, mtime time.Time) (*indexEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.index.Entries[relPath]
	if !ok || !entry.LastModified.Equal(mtime) {
		return nil, false
	}
	return entry, true
}

func (c *cache) Set(relPath string, entry *indexEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index.Entries[relPath] = entry
	c.dirty = true
}

func (c *cache) Delete(relPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.index.Entries[relPath]; ok {
		delete(c.index.Entries, relPath)
		c.dirty = true
	}
}

// Prune drops entries whose files were not seen during a full walk.
func (c *cache) Prune(keep map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for p := range c.index.Entries {
		if !keep[p] {
			delete(c.index.Entries, p)
			c.dirty = true
		}
	}
}

func (c *cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.index.Entries)
}
