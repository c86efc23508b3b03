package data

import (
	"fmt"
	"os"
	"sort"

	"github.com/hauntess/server/internal/schema"
	"gopkg.in/yaml.v3"
)

// FogBlock is a fogparams_t as written in content files.
type FogBlock struct {
	Enable     bool    `yaml:"enable"`
	Color      []int   `yaml:"color"` // r, g, b[, a]
	Start      float32 `yaml:"start"`
	End        float32 `yaml:"end"`
	MaxDensity float32 `yaml:"max_density"`
	Exponent   float32 `yaml:"exponent"`
}

// Params converts the block to schema form. Missing alpha means opaque.
func (b *FogBlock) Params() schema.FogParams {
	c := schema.Color{A: 255}
	if len(b.Color) > 0 {
		c.R = uint8(b.Color[0])
	}
	if len(b.Color) > 1 {
		c.G = uint8(b.Color[1])
	}
	if len(b.Color) > 2 {
		c.B = uint8(b.Color[2])
	}
	if len(b.Color) > 3 {
		c.A = uint8(b.Color[3])
	}
	return schema.FogParams{
		Enable:       b.Enable,
		ColorPrimary: c,
		Start:        b.Start,
		End:          b.End,
		MaxDensity:   b.MaxDensity,
		Exponent:     b.Exponent,
	}
}

func (b *FogBlock) validate() error {
	if b == nil {
		return nil
	}
	if len(b.Color) > 4 {
		return fmt.Errorf("color has %d channels, want at most 4", len(b.Color))
	}
	for i, v := range b.Color {
		if v < 0 || v > 255 {
			return fmt.Errorf("color channel %d = %d outside 0..255", i, v)
		}
	}
	return nil
}

// EntityEntry is one map-placed entity.
type EntityEntry struct {
	Designer string    `yaml:"designer"`
	Name     string    `yaml:"name"`
	Disabled bool      `yaml:"disabled"`
	Fog      *FogBlock `yaml:"fog"` // env_fog_controller only
}

// MapEntry is one loadable content generation.
type MapEntry struct {
	Name     string        `yaml:"name"`
	SkyFog   *FogBlock     `yaml:"sky_fog"` // initial pawn skybox fog
	Entities []EntityEntry `yaml:"entities"`
}

// DefaultSkyFog returns the skybox fog a freshly spawned pawn starts with.
func (m *MapEntry) DefaultSkyFog() schema.FogParams {
	if m.SkyFog == nil {
		return schema.FogParams{}
	}
	return m.SkyFog.Params()
}

// ContentTable provides lookup of map content by name.
type ContentTable struct {
	maps  map[string]*MapEntry
	names []string
}

// LoadContentTable loads maps.yaml.
func LoadContentTable(path string) (*ContentTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content list: %w", err)
	}
	t, err := ParseContentTable(raw)
	if err != nil {
		return nil, fmt.Errorf("parse content list %s: %w", path, err)
	}
	return t, nil
}

// ParseContentTable decodes a YAML list of maps.
func ParseContentTable(raw []byte) (*ContentTable, error) {
	var entries []MapEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	t := &ContentTable{
		maps: make(map[string]*MapEntry, len(entries)),
	}
	for i := range entries {
		e := &entries[i]
		if e.Name == "" {
			return nil, fmt.Errorf("map #%d has no name", i)
		}
		if _, dup := t.maps[e.Name]; dup {
			return nil, fmt.Errorf("duplicate map %q", e.Name)
		}
		if err := e.SkyFog.validate(); err != nil {
			return nil, fmt.Errorf("map %q sky_fog: %w", e.Name, err)
		}
		for j, ent := range e.Entities {
			if ent.Designer == "" {
				return nil, fmt.Errorf("map %q entity #%d has no designer", e.Name, j)
			}
			if err := ent.Fog.validate(); err != nil {
				return nil, fmt.Errorf("map %q entity #%d fog: %w", e.Name, j, err)
			}
		}
		t.maps[e.Name] = e
		t.names = append(t.names, e.Name)
	}
	sort.Strings(t.names)
	return t, nil
}

// Get returns the named map, or nil if none.
func (t *ContentTable) Get(name string) *MapEntry {
	return t.maps[name]
}

// Names returns every map name, sorted.
func (t *ContentTable) Names() []string {
	return t.names
}

// Count returns the total number of maps loaded.
func (t *ContentTable) Count() int {
	return len(t.maps)
}
