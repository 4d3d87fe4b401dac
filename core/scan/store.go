package scan

import (
	"fmt"
	"os"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultContentCacheSize bounds the number of file contents held at
// once during an invocation.
const DefaultContentCacheSize = 256

// ContentStore reads files on demand and keeps a bounded cache for the
// duration of one invocation. Nothing persists across runs; a fresh
// store starts empty.
type ContentStore struct {
	cache *lru.Cache[string, []byte]
}

// NewContentStore creates a store holding at most size entries.
func NewContentStore(size int) *ContentStore {
	if size <= 0 {
		size = DefaultContentCacheSize
	}
	cache, _ := lru.New[string, []byte](size)
	return &ContentStore{cache: cache}
}

// Read returns a file's content, serving repeat reads from the cache.
// Content must be valid UTF-8; binary files read as errors so callers
// skip them like any other unreadable file.
func (cs *ContentStore) Read(path string) ([]byte, error) {
	if content, ok := cs.cache.Get(path); ok {
		return content, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("file %s is not valid UTF-8", path)
	}

	cs.cache.Add(path, content)
	return content, nil
}

// Len reports the number of cached entries.
func (cs *ContentStore) Len() int {
	return cs.cache.Len()
}
