// Package gamedata loads the static game-data documents: the item
// catalog, forge recipes, and corpse drop tables.
package gamedata

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/skyforge/skycalc/internal/domain"
)

const (
	catalogDoc  = "items.json"
	forgeDoc    = "forge_recipes.json"
	corpseDoc   = "corpse_drops.json"
	gemstoneDoc = "gemstones.json"
)

// Tables holds every static document, read-only after load.
type Tables struct {
	Catalog      []domain.CatalogEntry
	ForgeRecipes []domain.ForgeRecipe
	Corpses      []domain.CorpseType
	Gemstones    []string
}

// Loader reads the documents from the first candidate directory that
// has them, falling back to an embedded filesystem. Loading is lazy and
// memoized: the first Load does the work, later calls are no-ops
// returning the same tables.
type Loader struct {
	dirs     []string
	fallback fs.FS

	once   sync.Once
	tables Tables
	err    error
}

// NewLoader builds a loader probing dirs in order, with fallback as the
// final candidate (may be nil).
func NewLoader(dirs []string, fallback fs.FS) *Loader {
	return &Loader{dirs: dirs, fallback: fallback}
}

// Load reads all documents once and returns the memoized tables.
func (l *Loader) Load() (Tables, error) {
	l.once.Do(func() {
		l.tables, l.err = l.read()
	})
	return l.tables, l.err
}

func (l *Loader) read() (Tables, error) {
	var t Tables
	if err := l.readDoc(catalogDoc, &t.Catalog); err != nil {
		return Tables{}, err
	}
	if err := l.readDoc(forgeDoc, &t.ForgeRecipes); err != nil {
		return Tables{}, err
	}
	if err := l.readDoc(corpseDoc, &t.Corpses); err != nil {
		return Tables{}, err
	}
	if err := l.readDoc(gemstoneDoc, &t.Gemstones); err != nil {
		return Tables{}, err
	}
	return t, nil
}

// readDoc probes each candidate location in order; the first readable
// document wins, no merging.
func (l *Loader) readDoc(name string, dest any) error {
	for _, dir := range l.dirs {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if err := json.Unmarshal(raw, dest); err != nil {
			return fmt.Errorf("parsing %s from %s: %w", name, dir, err)
		}
		return nil
	}

	if l.fallback != nil {
		raw, err := fs.ReadFile(l.fallback, name)
		if err == nil {
			if err := json.Unmarshal(raw, dest); err != nil {
				return fmt.Errorf("parsing embedded %s: %w", name, err)
			}
			return nil
		}
	}

	return fmt.Errorf("game data document %s not found in %v", name, l.dirs)
}

// Corpse returns the named corpse type from the loaded tables.
func (t Tables) Corpse(name string) (domain.CorpseType, bool) {
	for _, c := range t.Corpses {
		if c.Name == name {
			return c, true
		}
	}
	return domain.CorpseType{}, false
}
