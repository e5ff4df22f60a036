package library

import (
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

type pageKey struct {
	path    string
	size    int64
	modTime int64
}

// PageCache remembers image-entry counts of archives that were read
// successfully, keyed by path, size and modification time. A rescan of an
// unchanged archive then needs no file handle at all.
type PageCache struct {
	entries *lru.Cache[pageKey, int]
}

// NewPageCache returns a cache holding up to size archives, or nil when
// size is not positive. A nil *PageCache is valid and never hits.
func NewPageCache(size int) (*PageCache, error) {
	if size <= 0 {
		return nil, nil
	}
	entries, err := lru.New[pageKey, int](size)
	if err != nil {
		return nil, err
	}
	return &PageCache{entries: entries}, nil
}

func keyFor(path string, info os.FileInfo) pageKey {
	return pageKey{path: path, size: info.Size(), modTime: info.ModTime().UnixNano()}
}

// Get returns the cached count for the file as described by info.
func (c *PageCache) Get(path string, info os.FileInfo) (int, bool) {
	if c == nil {
		return 0, false
	}
	return c.entries.Get(keyFor(path, info))
}

// Add stores a count for the file as described by info.
func (c *PageCache) Add(path string, info os.FileInfo, count int) {
	if c == nil {
		return
	}
	c.entries.Add(keyFor(path, info), count)
}

// Len reports how many archives are cached.
func (c *PageCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
