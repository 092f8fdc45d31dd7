package engine

// Resources is the three-commodity economy: food, iron, gold. Zero value is
// the empty wallet.
type Resources struct {
	Food int
	Iron int
	Gold int
}

// Add returns the componentwise sum, clamped to zero per component — the
// resolver never lets a player's wallet go negative.
func (r Resources) Add(d Resources) Resources {
	return Resources{
		Food: clampNonNegative(r.Food + d.Food),
		Iron: clampNonNegative(r.Iron + d.Iron),
		Gold: clampNonNegative(r.Gold + d.Gold),
	}
}

// Sub subtracts d from r without clamping; callers check Affords first.
func (r Resources) Sub(d Resources) Resources {
	return Resources{Food: r.Food - d.Food, Iron: r.Iron - d.Iron, Gold: r.Gold - d.Gold}
}

// ScaleFrac scales every component by num/den using integer (floor)
// division per component, matching the civ discount and route-income math.
func (r Resources) ScaleFrac(num, den int) Resources {
	return Resources{
		Food: (r.Food * num) / den,
		Iron: (r.Iron * num) / den,
		Gold: (r.Gold * num) / den,
	}
}

// Affords reports whether r has at least cost in every component.
func (r Resources) Affords(cost Resources) bool {
	return r.Food >= cost.Food && r.Iron >= cost.Iron && r.Gold >= cost.Gold
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// UnitType is a tagged unit class. Civ-unique variants use the literal
// string name of their unique unit (e.g. "Huscarl") rather than a value
// from this const block; callers that need to know whether a type is a
// known base type should check isBaseUnitType.
type UnitType string

const (
	UnitMilitia  UnitType = "Militia"
	UnitInfantry UnitType = "Infantry"
	UnitArchers  UnitType = "Archers"
	UnitCavalry  UnitType = "Cavalry"
	UnitSiege    UnitType = "Siege"
	UnitKnights  UnitType = "Knights"
	UnitScout    UnitType = "Scout"
)

// UnitStats describes a unit type's fixed characteristics.
type UnitStats struct {
	Cost     Resources
	Strength int
	Speed    int
	MinAge   int
}

// UnitStatsTable is the authoritative lookup for base unit types (§6
// UNIT_STATS). Civ-unique types are looked up separately via
// CivProfile.UniqueUnit.
var UnitStatsTable = map[UnitType]UnitStats{
	UnitMilitia:  {Cost: Resources{Food: 1, Iron: 0, Gold: 0}, Strength: 1, Speed: 1, MinAge: 1},
	UnitInfantry: {Cost: Resources{Food: 1, Iron: 1, Gold: 0}, Strength: 3, Speed: 1, MinAge: 1},
	UnitArchers:  {Cost: Resources{Food: 1, Iron: 0, Gold: 1}, Strength: 2, Speed: 1, MinAge: 2},
	UnitCavalry:  {Cost: Resources{Food: 2, Iron: 1, Gold: 0}, Strength: 3, Speed: 2, MinAge: 2},
	UnitSiege:    {Cost: Resources{Food: 0, Iron: 2, Gold: 2}, Strength: 1, Speed: 1, MinAge: 3},
	UnitKnights:  {Cost: Resources{Food: 2, Iron: 2, Gold: 1}, Strength: 5, Speed: 2, MinAge: 3},
	UnitScout:    {Cost: Resources{Food: 0, Iron: 0, Gold: 1}, Strength: 0, Speed: 3, MinAge: 1},
}

func isBaseUnitType(t UnitType) bool {
	_, ok := UnitStatsTable[t]
	return ok
}

// Triangle encodes the rock-paper-scissors combat bonus: Infantry beats
// Cavalry, Cavalry beats Archers, Archers beat Infantry, +2 each arrow.
var Triangle = map[UnitType]UnitType{
	UnitInfantry: UnitCavalry,
	UnitCavalry:  UnitArchers,
	UnitArchers:  UnitInfantry,
}

const triangleBonus = 2

// BuildingType is a tagged building class; at most one per type per
// province.
type BuildingType string

const (
	BuildingFarm       BuildingType = "Farm"
	BuildingMine       BuildingType = "Mine"
	BuildingMarket     BuildingType = "Market"
	BuildingBarracks   BuildingType = "Barracks"
	BuildingFortress   BuildingType = "Fortress"
	BuildingTradePost  BuildingType = "TradePost"
	BuildingWatchtower BuildingType = "Watchtower"
)

// BuildingStats describes a building type's fixed cost and prerequisite.
type BuildingStats struct {
	Cost   Resources
	MinAge int
}

// BuildingStatsTable is the authoritative lookup (§6 BUILDING_STATS).
var BuildingStatsTable = map[BuildingType]BuildingStats{
	BuildingFarm:       {Cost: Resources{Food: 2, Iron: 0, Gold: 0}, MinAge: 1},
	BuildingMine:       {Cost: Resources{Food: 0, Iron: 2, Gold: 0}, MinAge: 1},
	BuildingMarket:     {Cost: Resources{Food: 0, Iron: 0, Gold: 3}, MinAge: 1},
	BuildingBarracks:   {Cost: Resources{Food: 0, Iron: 2, Gold: 0}, MinAge: 1},
	BuildingFortress:   {Cost: Resources{Food: 0, Iron: 3, Gold: 2}, MinAge: 2},
	BuildingTradePost:  {Cost: Resources{Food: 0, Iron: 0, Gold: 2}, MinAge: 2},
	BuildingWatchtower: {Cost: Resources{Food: 0, Iron: 1, Gold: 1}, MinAge: 2},
}

// TerrainDefenseTable is the province defense bonus added to the owning
// side's effective strength during combat (§6 TERRAIN_DEFENSE).
var TerrainDefenseTable = map[Terrain]int{
	TerrainPlains:   0,
	TerrainForest:   1,
	TerrainMountain: 3,
	TerrainCoast:    0,
	TerrainRiver:    1,
}

// TerrainResourcesTable is the base per-turn production of a province by
// terrain, before buildings/tech/civ modifiers (§6 TERRAIN_RESOURCES).
var TerrainResourcesTable = map[Terrain]Resources{
	TerrainPlains:   {Food: 3, Iron: 0, Gold: 1},
	TerrainForest:   {Food: 2, Iron: 1, Gold: 0},
	TerrainMountain: {Food: 0, Iron: 3, Gold: 1},
	TerrainCoast:    {Food: 2, Iron: 0, Gold: 2},
	TerrainRiver:    {Food: 2, Iron: 1, Gold: 1},
}

// AgeUpCostTable gives the cost to advance to a given age (keyed by the
// destination age, 2 or 3).
var AgeUpCostTable = map[int]Resources{
	2: {Food: 10, Iron: 8, Gold: 5},
	3: {Food: 15, Iron: 12, Gold: 10},
}

// StartingResources is every player's wallet at game creation.
var StartingResources = Resources{Food: 10, Iron: 5, Gold: 5}

// DefaultMaxTurns is the year limit used when a game is created without an
// explicit override.
const DefaultMaxTurns = 40

// Unit is a single military unit, stored by id in the game's flat unit
// table (Game.Units). Provinces reference units by id only — there are no
// back-references.
type Unit struct {
	ID       string
	Type     UnitType
	Owner    int
	Province string
	Veteran  int
}

const maxVeterancy = 2

// Strength is the unit's base combat strength plus veterancy, before any
// situational bonuses (tactics/triangle/terrain) are applied.
func (u *Unit) Strength(profile CivProfile) int {
	base := baseUnitStrength(u.Type, profile)
	return base + u.Veteran
}

func baseUnitStrength(t UnitType, profile CivProfile) int {
	if stats, ok := UnitStatsTable[t]; ok {
		return stats.Strength
	}
	if uu := profile.UniqueUnit(); uu != nil && uu.Type == t {
		return uu.Strength
	}
	return 0
}

// Building is a completed or pending construction in a province. The
// engine never models multi-turn construction, so Done is always true once
// a Building exists in a province's building set.
type Building struct {
	Type BuildingType
	Done bool
}
