// Package catalog holds the static list of hotspots a game is played against.
//
// A Catalog is built once at startup and never mutated; sessions receive it
// by value and read it concurrently.
package catalog

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/spotcheck/internal/domain/model"
)

// Stage bounds in percent.
const (
	stageMin = 0.0
	stageMax = 100.0
)

// defaultHotspots are the ten defects on the bundled TV app mock.
var defaultHotspots = []model.Hotspot{ //nolint:gochecknoglobals // immutable seed data, copied on use
	{ID: 1, X: 25.9, Y: 10.5, W: 7.8, H: 5.6},   // "HOMEE" typo
	{ID: 2, X: 41.5, Y: 10.5, W: 13.9, H: 5.1},  // duplicate "MOVIES"
	{ID: 3, X: 69.9, Y: 10.6, W: 5.6, H: 5.0},   // "MYL" abbreviation
	{ID: 4, X: 44.3, Y: 17.2, W: 29.7, H: 40.0}, // image misaligned
	{ID: 5, X: 9.4, Y: 35.0, W: 22.0, H: 7.3},   // "THE MATRX" typo
	{ID: 6, X: 10.0, Y: 48.0, W: 26.5, H: 5.0},  // garbled description
	{ID: 7, X: 9.5, Y: 53.5, W: 6.0, H: 5.0},    // "PLAY" glitch
	{ID: 8, X: 9.5, Y: 64.5, W: 14.0, H: 4.0},   // "NEW & TRENDING" cut off
	{ID: 9, X: 42.0, Y: 72.0, W: 16.5, H: 17.5}, // gap in rail
	{ID: 10, X: 90.5, Y: 72.0, W: 8.0, H: 18.5}, // empty thumbnail slot
}

// Catalog is an ordered, validated set of hotspots.
type Catalog struct {
	hotspots []model.Hotspot
	debug    bool
}

// fileCatalog mirrors the YAML layout of a catalog file.
type fileCatalog struct {
	Debug    bool            `koanf:"debug"`
	Hotspots []model.Hotspot `koanf:"hotspots"`
}

// New validates hotspots and returns a Catalog holding a private copy.
func New(hotspots []model.Hotspot, debug bool) (Catalog, error) {
	if len(hotspots) == 0 {
		return Catalog{}, ErrEmptyCatalog
	}
	seen := make(map[int]struct{}, len(hotspots))
	for _, h := range hotspots {
		if _, dup := seen[h.ID]; dup {
			return Catalog{}, fmt.Errorf("%w: %d", ErrDuplicateID, h.ID)
		}
		seen[h.ID] = struct{}{}
		if !inStage(h) {
			return Catalog{}, fmt.Errorf("%w: %d", ErrOutOfBounds, h.ID)
		}
	}
	cp := make([]model.Hotspot, len(hotspots))
	copy(cp, hotspots)
	return Catalog{hotspots: cp, debug: debug}, nil
}

// Default returns the built-in ten-hotspot catalog.
func Default() Catalog {
	c, err := New(defaultHotspots, false)
	if err != nil {
		panic(err) // seed data is static
	}
	return c
}

// Load reads a YAML catalog file. An empty path yields Default with the
// given debug flag.
func Load(_ context.Context, path string, debug bool) (Catalog, error) {
	if path == "" {
		c := Default()
		c.debug = debug
		return c, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Catalog{}, fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}
	var fc fileCatalog
	if err := k.UnmarshalWithConf("", &fc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Catalog{}, fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}
	return New(fc.Hotspots, fc.Debug || debug)
}

// Hotspots returns the hotspots in catalog order. The slice is a copy.
func (c Catalog) Hotspots() []model.Hotspot {
	cp := make([]model.Hotspot, len(c.hotspots))
	copy(cp, c.hotspots)
	return cp
}

// Size is the number of distinct hotspots a session can be credited for.
func (c Catalog) Size() int { return len(c.hotspots) }

// Debug reports whether presentation should outline the hotspots.
func (c Catalog) Debug() bool { return c.debug }

// ByID looks a hotspot up by id.
func (c Catalog) ByID(id int) (model.Hotspot, bool) {
	for _, h := range c.hotspots {
		if h.ID == id {
			return h, true
		}
	}
	return model.Hotspot{}, false
}

func inStage(h model.Hotspot) bool {
	if h.X < stageMin || h.Y < stageMin || h.W < 0 || h.H < 0 {
		return false
	}
	return h.X+h.W <= stageMax && h.Y+h.H <= stageMax
}
