// Package catalog serves the static, versioned poem collection.
// The data set is embedded at build time and can be replaced with a file on disk;
// it is never mutated at runtime.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"tng-poetry-backend/internal/models"
)

//go:embed poems.yaml
var embeddedPoems []byte

// ErrPoemNotFound is returned when a poem id is not part of the catalog.
var ErrPoemNotFound = errors.New("poem not found")

// FilterAll matches every theme or category.
const FilterAll = "all"

type document struct {
	Version int           `yaml:"version"`
	Poems   []models.Poem `yaml:"poems"`
}

// Catalog is a read-only, in-memory poem collection.
// It is safe for concurrent use because nothing mutates it after Load.
type Catalog struct {
	version int
	poems   []models.Poem
	byID    map[string]int
}

// LoadEmbedded returns the catalog compiled into the binary.
func LoadEmbedded() (*Catalog, error) {
	return Parse(embeddedPoems)
}

// Load reads the catalog from path, or the embedded data set when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return LoadEmbedded()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read poem catalog '%s': %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode poem catalog: %w", err)
	}

	c := &Catalog{
		version: doc.Version,
		poems:   make([]models.Poem, 0, len(doc.Poems)),
		byID:    make(map[string]int, len(doc.Poems)),
	}
	for i, p := range doc.Poems {
		if p.ID == "" {
			return nil, fmt.Errorf("poem at index %d has no id", i)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate poem id '%s'", p.ID)
		}
		if !p.Category.Valid() {
			return nil, fmt.Errorf("poem '%s' has unknown category '%s'", p.ID, p.Category)
		}
		if !p.Theme.Valid() {
			return nil, fmt.Errorf("poem '%s' has unknown theme '%s'", p.ID, p.Theme)
		}
		c.byID[p.ID] = len(c.poems)
		c.poems = append(c.poems, p)
	}
	return c, nil
}

// Version is the data set version declared by the catalog document.
func (c *Catalog) Version() int { return c.version }

// Len returns the number of poems.
func (c *Catalog) Len() int { return len(c.poems) }

// GetPoem returns a copy of the poem with the given id.
func (c *Catalog) GetPoem(id string) (models.Poem, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Poem{}, fmt.Errorf("%w: id '%s'", ErrPoemNotFound, id)
	}
	return clonePoem(c.poems[i]), nil
}

// Exists reports whether id names a poem in the catalog.
func (c *Catalog) Exists(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// ListPoems returns the poems matching filter in catalog order.
// Search is a case-insensitive substring match over both titles and the description.
func (c *Catalog) ListPoems(filter models.PoemFilter) []models.Poem {
	term := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]models.Poem, 0, len(c.poems))
	for _, p := range c.poems {
		if !matchesEnum(filter.Theme, string(p.Theme)) || !matchesEnum(filter.Category, string(p.Category)) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(p.TitleTamil), term) &&
			!strings.Contains(strings.ToLower(p.TitleEnglish), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		out = append(out, clonePoem(p))
	}
	return out
}

func matchesEnum(want, have string) bool {
	return want == "" || want == FilterAll || want == have
}

func clonePoem(p models.Poem) models.Poem {
	p.Tags = append([]string(nil), p.Tags...)
	return p
}
