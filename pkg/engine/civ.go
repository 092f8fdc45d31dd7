package engine

// Civ identifies a player's faction. Modifiers are applied during
// resolution by querying a CivProfile rather than branching on this value
// throughout the resolver.
type Civ string

const (
	CivIronborn    Civ = "Ironborn"
	CivVerdanti    Civ = "Verdanti"
	CivTidecallers Civ = "Tidecallers"
	CivAshwalkers  Civ = "Ashwalkers"
)

// UniqueUnitDef describes a civ's unique unit, selected in build orders via
// {type: "unique"} per §9's design note.
type UniqueUnitDef struct {
	Type     UnitType
	Cost     Resources
	Strength int
	MinAge   int
}

// uniqueUnits is the unique-unit catalog, one per civ. Stats are carried
// over from the prototype's civ definitions (Huscarl/Herbalist/
// Corsair/Sage) with production hooks wired into ProvinceProduction below.
var uniqueUnits = map[Civ]UniqueUnitDef{
	CivIronborn:    {Type: "Huscarl", Cost: Resources{Food: 2, Iron: 2, Gold: 1}, Strength: 6, MinAge: 2},
	CivVerdanti:    {Type: "Herbalist", Cost: Resources{Food: 1, Iron: 0, Gold: 1}, Strength: 1, MinAge: 2},
	CivTidecallers: {Type: "Corsair", Cost: Resources{Food: 1, Iron: 1, Gold: 1}, Strength: 3, MinAge: 2},
	CivAshwalkers:  {Type: "Sage", Cost: Resources{Food: 1, Iron: 0, Gold: 2}, Strength: 1, MinAge: 2},
}

// CivProfile is a faction's modifier kit, queried by the resolver at each
// relevant site instead of branching on civ name (§9 design note).
type CivProfile struct {
	civ Civ
}

// ProfileFor returns the modifier kit for a civ.
func ProfileFor(civ Civ) CivProfile {
	return CivProfile{civ: civ}
}

func (p CivProfile) Civ() Civ { return p.civ }

// UniqueUnit returns this civ's unique unit definition.
func (p CivProfile) UniqueUnit() *UniqueUnitDef {
	if d, ok := uniqueUnits[p.civ]; ok {
		return &d
	}
	return nil
}

// UnitCostModifier applies the Ironborn iron discount to a unit's build
// cost, floored at zero.
func (p CivProfile) UnitCostModifier(cost Resources) Resources {
	if p.civ != CivIronborn {
		return cost
	}
	discounted := cost
	discounted.Iron = clampNonNegative(discounted.Iron - 1)
	return discounted
}

// TechCostModifier applies the Ashwalker tech/age-up discount
// (componentwise floor(cost * 3/4)).
func (p CivProfile) TechCostModifier(cost Resources) Resources {
	if p.civ != CivAshwalkers {
		return cost
	}
	return cost.ScaleFrac(3, 4)
}

// TradeIncomeModifier applies the Tidecaller trade-income multiplier
// (floor(income * 3/2)).
func (p CivProfile) TradeIncomeModifier(income int) int {
	if p.civ != CivTidecallers {
		return income
	}
	return (income * 3) / 2
}

// ProvinceProduction returns this civ's flat and unique-unit production
// bonuses for one owned province. unitTypesPresent lists the type of every
// unit stationed there (duplicates included, one entry per unit).
func (p CivProfile) ProvinceProduction(unitTypesPresent []UnitType) Resources {
	var bonus Resources
	if p.civ == CivVerdanti {
		bonus.Food++
	}
	uu := p.UniqueUnit()
	if uu == nil {
		return bonus
	}
	for _, t := range unitTypesPresent {
		if t != uu.Type {
			continue
		}
		switch p.civ {
		case CivAshwalkers: // Sage: +1 to all resources
			bonus.Food++
			bonus.Iron++
			bonus.Gold++
		case CivVerdanti: // Herbalist: +2 food
			bonus.Food += 2
		}
	}
	return bonus
}

// CombatGoldBonus returns the Tidecaller gold reward for a combat victory,
// 1 gold per enemy unit killed.
func (p CivProfile) CombatGoldBonus(enemyUnitsKilled int) int {
	if p.civ != CivTidecallers {
		return 0
	}
	return enemyUnitsKilled
}

// NeutralizesTriangleFrom reports whether this civ's unique unit is immune
// to the triangle bonus an attacking unit of attackerType would otherwise
// receive. Only the Ironborn Huscarl has this property (immune to the
// archer triangle bonus).
func (p CivProfile) NeutralizesTriangleFrom(defenderType UnitType, attackerType UnitType) bool {
	uu := p.UniqueUnit()
	if uu == nil || defenderType != uu.Type {
		return false
	}
	return p.civ == CivIronborn && attackerType == UnitArchers
}
