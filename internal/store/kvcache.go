package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// KV is the local durable cache contract: string keys to string values,
// absence signalled by the second return.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// FileCache is a file-per-key KV store scoped to a base directory. It backs
// the anonymous favorites ledger and the local-only plan persister.
type FileCache struct {
	mu       sync.Mutex
	basePath string
}

// NewFileCache creates a FileCache and ensures the base directory exists.
func NewFileCache(basePath string) (*FileCache, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", basePath, err)
	}
	return &FileCache{basePath: basePath}, nil
}

// sanitizeKey makes the key safe for filenames. Unsafe bytes are hex-escaped
// rather than collapsed, so distinct keys can never map to the same file.
func sanitizeKey(key string) string {
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '_', c == '-', c == '.':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02x", c)
		}
	}
	return b.String()
}

func (c *FileCache) pathFor(key string) string {
	return filepath.Join(c.basePath, sanitizeKey(key)+".json")
}

// Get returns the stored value for key, or false when the key is absent.
func (c *FileCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Set stores the value for key, replacing any previous value.
func (c *FileCache) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.WriteFile(c.pathFor(key), []byte(value), 0644); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}
