// Package catalog persists the character name -> gallery page mapping and
// decides when it has to be scraped again.
package catalog

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/brogergvhs/pgrwall/internal/util"
)

// Catalog maps a character name to its gallery page URL.
type Catalog map[string]string

var ErrNoCatalog = errors.New("no persisted catalog")

type Store struct {
	Path string
}

func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads the persisted catalog. It returns ErrNoCatalog when the file
// does not exist yet.
func (s *Store) Load() (Catalog, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoCatalog
	}
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var c Catalog
	if err := gob.NewDecoder(f).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", s.Path, err)
	}
	if c == nil {
		c = Catalog{}
	}

	return c, nil
}

// Save replaces the persisted catalog with c.
func (s *Store) Save(c Catalog) error {
	return util.WriteFileAtomic(s.Path, func(w io.Writer) error {
		return gob.NewEncoder(w).Encode(c)
	})
}
