package engine

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Terrain is the fixed terrain type of a province. It never changes after
// map load.
type Terrain string

const (
	TerrainPlains   Terrain = "Plains"
	TerrainForest   Terrain = "Forest"
	TerrainMountain Terrain = "Mountain"
	TerrainCoast    Terrain = "Coast"
	TerrainRiver    Terrain = "River"
)

// ProvinceDef is the immutable, map-wide definition of a province: its
// identity and terrain. Mutable per-game state (owner, units, buildings)
// lives on Province in state.go.
type ProvinceDef struct {
	ID       string
	Name     string
	Terrain  Terrain
	Adjacent []string
}

// HomeSite is a player's starting pair of provinces on the tournament map.
type HomeSite struct {
	Capital string
	Second  string
}

// WorldMap is the fixed tournament topology: 24 named provinces with a
// symmetric adjacency graph, four home sites, and a set of unowned core
// provinces.
type WorldMap struct {
	Provinces     map[string]ProvinceDef
	order         []string // province ids, sorted, used for stable iteration
	CoreProvinces []string
	Homes         []HomeSite
}

//go:embed mapdata/map.yaml
var mapYAML []byte

type mapFixture struct {
	Provinces []struct {
		ID       string   `yaml:"id"`
		Name     string   `yaml:"name"`
		Terrain  string   `yaml:"terrain"`
		Adjacent []string `yaml:"adjacent"`
	} `yaml:"provinces"`
	CoreProvinces []string `yaml:"core_provinces"`
	HomeProvinces []struct {
		Player  int    `yaml:"player"`
		Capital string `yaml:"capital"`
		Second  string `yaml:"second"`
	} `yaml:"home_provinces"`
}

var terrainByFixtureName = map[string]Terrain{
	"plains":   TerrainPlains,
	"forest":   TerrainForest,
	"mountain": TerrainMountain,
	"coast":    TerrainCoast,
	"river":    TerrainRiver,
}

// TournamentMap is the single fixed 24-province map used by every game.
// It is parsed once from the embedded fixture and never mutated.
var TournamentMap = mustLoadMap(mapYAML)

func mustLoadMap(raw []byte) *WorldMap {
	m, err := loadMap(raw)
	if err != nil {
		panic(fmt.Sprintf("engine: failed to load tournament map: %v", err))
	}
	if err := m.validate(); err != nil {
		panic(fmt.Sprintf("engine: tournament map invalid: %v", err))
	}
	return m
}

func loadMap(raw []byte) (*WorldMap, error) {
	var fx mapFixture
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return nil, fmt.Errorf("parse map fixture: %w", err)
	}

	m := &WorldMap{
		Provinces:     make(map[string]ProvinceDef, len(fx.Provinces)),
		CoreProvinces: fx.CoreProvinces,
	}
	for _, p := range fx.Provinces {
		terrain, ok := terrainByFixtureName[p.Terrain]
		if !ok {
			return nil, fmt.Errorf("province %s: unknown terrain %q", p.ID, p.Terrain)
		}
		m.Provinces[p.ID] = ProvinceDef{
			ID:       p.ID,
			Name:     p.Name,
			Terrain:  terrain,
			Adjacent: append([]string(nil), p.Adjacent...),
		}
		m.order = append(m.order, p.ID)
	}
	sort.Strings(m.order)

	homes := make([]HomeSite, len(fx.HomeProvinces))
	for _, h := range fx.HomeProvinces {
		homes[h.Player] = HomeSite{Capital: h.Capital, Second: h.Second}
	}
	m.Homes = homes

	return m, nil
}

// validate checks the invariants the resolver relies on: symmetric
// adjacency and a self-consistent edge list.
func (m *WorldMap) validate() error {
	for id, p := range m.Provinces {
		for _, adj := range p.Adjacent {
			other, ok := m.Provinces[adj]
			if !ok {
				return fmt.Errorf("province %s adjacent to unknown province %s", id, adj)
			}
			if !containsString(other.Adjacent, id) {
				return fmt.Errorf("adjacency not symmetric: %s -> %s but not %s -> %s", id, adj, adj, id)
			}
		}
	}
	return nil
}

// ProvinceIDs returns all province ids in a stable (sorted) order, the
// iteration order the resolver uses for combat and projection.
func (m *WorldMap) ProvinceIDs() []string {
	return m.order
}

// Adjacent reports whether b is adjacent to a.
func (m *WorldMap) Adjacent(a, b string) bool {
	p, ok := m.Provinces[a]
	if !ok {
		return false
	}
	return containsString(p.Adjacent, b)
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
