package engine

import (
	"fmt"
	"sort"
)

// CombatInput is everything ResolveCombat needs to decide one province's
// fight, collected up front so combat is a pure function of
// (province, unit-set-per-owner, defender-flags) per the design note in
// §9 — no reaching back into shared province/unit tables mid-resolution.
type CombatInput struct {
	Province      string
	Terrain       Terrain
	FortressCount int // completed Fortress buildings, 0 or 1
	PriorOwner    int // NoOwner if the province was unclaimed
	UnitsByOwner  map[int][]*Unit
	ProfileOf     func(owner int) CivProfile
	HasTech       func(owner int, tech TechID) bool
}

// CombatResult is the outcome of one province's combat: who won, who died,
// and the veterancy/gold side effects the caller must still apply to the
// game state (ResolveCombat itself never mutates Game).
type CombatResult struct {
	Province             string
	Winner               int
	StrengthByOwner       map[int]int
	UnitsLost            map[int][]string // owner -> unit ids that died
	SurvivingWinnerUnits []string         // unit ids that should gain veterancy
	EnemyUnitsKilled     int              // total losing units destroyed, for Tidecaller gold
	Event                string
}

// ResolveCombat decides the outcome of combat in one province among ≥2
// owners. Returns nil if fewer than two distinct owners have units there
// (no combat).
func ResolveCombat(in CombatInput) *CombatResult {
	owners := make([]int, 0, len(in.UnitsByOwner))
	for owner, units := range in.UnitsByOwner {
		if len(units) > 0 {
			owners = append(owners, owner)
		}
	}
	if len(owners) < 2 {
		return nil
	}
	sort.Ints(owners)

	enemyTypesByOwner := make(map[int]map[UnitType]bool, len(owners))
	for _, owner := range owners {
		enemyTypesByOwner[owner] = make(map[UnitType]bool)
		for _, other := range owners {
			if other == owner {
				continue
			}
			for _, u := range in.UnitsByOwner[other] {
				enemyTypesByOwner[owner][u.Type] = true
			}
		}
	}

	strength := make(map[int]int, len(owners))
	for _, owner := range owners {
		profile := in.ProfileOf(owner)
		total := 0
		hasTactics := in.HasTech(owner, TechTactics)
		hasBlitz := in.HasTech(owner, TechBlitz)
		hasSiegeCraft := in.HasTech(owner, TechSiegeCraft)
		for _, u := range in.UnitsByOwner[owner] {
			s := u.Strength(profile)
			if hasTactics {
				s++
			}
			if hasBlitz && (u.Type == UnitCavalry || u.Type == UnitScout) {
				s++
			}
			for enemyType := range enemyTypesByOwner[owner] {
				if Triangle[u.Type] != enemyType {
					continue
				}
				if profile.NeutralizesTriangleFrom(u.Type, enemyType) {
					continue
				}
				s += triangleBonus
			}
			s += terrainUnitBonus(u.Type, in.Terrain)
			if hasSiegeCraft && u.Type == UnitSiege && in.FortressCount > 0 {
				s += 3
			}
			total += s
		}

		if owner == in.PriorOwner {
			total += TerrainDefenseTable[in.Terrain] + 3*in.FortressCount
			if in.HasTech(owner, TechFortification) {
				total++
			}
		} else if in.Terrain == TerrainRiver {
			total = clampNonNegative(total - len(in.UnitsByOwner[owner]))
		}
		strength[owner] = total
	}

	winner := selectCombatWinner(owners, strength, in.PriorOwner)

	result := &CombatResult{
		Province:       in.Province,
		Winner:         winner,
		StrengthByOwner: strength,
		UnitsLost:      make(map[int][]string, len(owners)),
	}

	losingStrength := 0
	for _, owner := range owners {
		if owner == winner {
			continue
		}
		losingStrength += strength[owner]
		for _, u := range in.UnitsByOwner[owner] {
			result.UnitsLost[owner] = append(result.UnitsLost[owner], u.ID)
			result.EnemyUnitsKilled++
		}
	}

	winnerUnits := append([]*Unit(nil), in.UnitsByOwner[winner]...)
	sort.SliceStable(winnerUnits, func(i, j int) bool {
		return winnerUnits[i].Strength(in.ProfileOf(winner)) < winnerUnits[j].Strength(in.ProfileOf(winner))
	})
	casualties := losingStrength / 4
	if casualties > len(winnerUnits)-1 {
		casualties = len(winnerUnits) - 1
	}
	for i := 0; i < casualties; i++ {
		result.UnitsLost[winner] = append(result.UnitsLost[winner], winnerUnits[i].ID)
	}
	for i := casualties; i < len(winnerUnits); i++ {
		result.SurvivingWinnerUnits = append(result.SurvivingWinnerUnits, winnerUnits[i].ID)
	}

	totalLost := 0
	for _, ids := range result.UnitsLost {
		totalLost += len(ids)
	}
	result.Event = fmt.Sprintf(
		"Battle at %s: player %d wins (strength %d) over %d other side(s), %d units lost",
		in.Province, winner, strength[winner], len(owners)-1, totalLost,
	)
	return result
}

func terrainUnitBonus(t UnitType, terrain Terrain) int {
	switch {
	case t == UnitCavalry && terrain == TerrainPlains:
		return 1
	case t == UnitArchers && terrain == TerrainForest:
		return 1
	default:
		return 0
	}
}

// selectCombatWinner picks the highest-strength side; ties favor the
// current province owner if present, else the lexicographically smallest
// player id.
func selectCombatWinner(owners []int, strength map[int]int, priorOwner int) int {
	best := owners[0]
	for _, owner := range owners[1:] {
		if strength[owner] > strength[best] {
			best = owner
			continue
		}
		if strength[owner] == strength[best] {
			best = breakCombatTie(best, owner, priorOwner)
		}
	}
	return best
}

func breakCombatTie(a, b, priorOwner int) int {
	if a == priorOwner {
		return a
	}
	if b == priorOwner {
		return b
	}
	if a < b {
		return a
	}
	return b
}
