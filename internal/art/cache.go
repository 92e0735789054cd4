package art

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Cache keeps the art record in memory for the lifetime of the process and
// reloads it whenever the file's modification time or size changes.
type Cache struct {
	path string

	mu      sync.Mutex
	record  Record
	modTime time.Time
	size    int64
}

func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Get returns the current record, reading the file only when it changed
// since the previous call.
func (c *Cache) Get() (Record, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		return nil, fmt.Errorf("art record: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.record != nil && info.ModTime().Equal(c.modTime) && info.Size() == c.size {
		return c.record, nil
	}

	r, err := LoadRecord(c.path)
	if err != nil {
		return nil, err
	}

	c.record = r
	c.modTime = info.ModTime()
	c.size = info.Size()

	return r, nil
}

// Invalidate forces the next Get to read the file.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.record = nil
	c.mu.Unlock()
}
