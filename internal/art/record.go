// Package art builds and persists the art record: for every character, the
// coatings found on its gallery page and their full resolution image URLs.
package art

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/brogergvhs/pgrwall/internal/util"
)

// Record maps character name -> coating name -> image URL.
type Record map[string]map[string]string

// Coatings returns the coatings of character and whether it is known.
func (r Record) Coatings(character string) (map[string]string, bool) {
	c, ok := r[character]
	return c, ok
}

// URL looks up a single coating.
func (r Record) URL(character, coating string) (string, bool) {
	c, ok := r[character]
	if !ok {
		return "", false
	}
	u, ok := c[coating]
	return u, ok
}

// SaveRecord writes r as indented JSON, replacing any previous file.
func SaveRecord(path string, r Record) error {
	return util.WriteFileAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		enc.SetEscapeHTML(false)
		return enc.Encode(r)
	})
}

func LoadRecord(path string) (Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read art record: %w", err)
	}

	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode art record %s: %w", path, err)
	}
	if r == nil {
		r = Record{}
	}

	return r, nil
}
