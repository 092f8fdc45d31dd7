package engine

// TechID identifies one of the nine researchable technologies, plus the
// reserved "age_up" pseudo-tech accepted in research orders.
type TechID string

const (
	TechAgriculture   TechID = "Agriculture"
	TechMining        TechID = "Mining"
	TechMasonry       TechID = "Masonry"
	TechTactics       TechID = "Tactics"
	TechCommerce      TechID = "Commerce"
	TechBlitz         TechID = "Blitz"
	TechFortification TechID = "Fortification"
	TechSiegeCraft    TechID = "SiegeCraft"
	TechDiplomacy     TechID = "Diplomacy"

	// AgeUpTech is the sentinel research target that advances a player's age
	// instead of granting a tech.
	AgeUpTech TechID = "age_up"
)

// techAgeGroup assigns each tech to one of the three age groups a player
// may hold at most one tech from. Age-group assignment is not specified by
// name in the source material; this grouping keeps each age's techs
// thematically aligned with what unlocks that age (Bronze: foundational
// economy, Iron: military, Steel: late-game specialization).
var techAgeGroup = map[TechID]int{
	TechAgriculture: 1,
	TechMining:      1,
	TechMasonry:     1,

	TechTactics:  2,
	TechCommerce: 2,
	TechBlitz:    2,

	TechFortification: 3,
	TechSiegeCraft:    3,
	TechDiplomacy:     3,
}

// techMinAge is the player age required to research a tech.
var techMinAge = map[TechID]int{
	TechAgriculture:   1,
	TechMining:        1,
	TechMasonry:       1,
	TechTactics:       2,
	TechCommerce:      2,
	TechBlitz:         2,
	TechFortification: 3,
	TechSiegeCraft:    3,
	TechDiplomacy:     3,
}

// IsValidTech reports whether id names one of the nine researchable techs
// (excluding the age_up sentinel).
func IsValidTech(id TechID) bool {
	_, ok := techAgeGroup[id]
	return ok
}

// AgeGroup returns the age group (1-3) a tech belongs to.
func AgeGroup(id TechID) int {
	return techAgeGroup[id]
}

// MinAge returns the player age required to research a tech.
func MinAge(id TechID) int {
	return techMinAge[id]
}
