package engine

import "fmt"

// NoOwner marks a province or treaty party as unowned/absent.
const NoOwner = -1

// Province is the mutable per-game state of a map province: ownership,
// the units stationed there, and completed/pending buildings. Identity
// fields (terrain, adjacency) live on the immutable ProvinceDef in map.go
// and are looked up through the game's WorldMap.
type Province struct {
	ID        string
	Owner     int // NoOwner if unclaimed
	UnitIDs   []string
	Buildings map[BuildingType]*Building
}

func newProvince(id string) *Province {
	return &Province{ID: id, Owner: NoOwner, Buildings: make(map[BuildingType]*Building)}
}

// HasBuilding reports whether a completed building of the given type
// exists in this province.
func (p *Province) HasBuilding(t BuildingType) bool {
	b, ok := p.Buildings[t]
	return ok && b.Done
}

// Player is one of the four seats in a game.
type Player struct {
	ID            int
	Civ           Civ
	Age           int
	Resources     Resources
	Techs         map[TechID]bool
	Alive         bool
	Score         int
	IsBot         bool
	BotDifficulty string
}

func (p *Player) profile() CivProfile { return ProfileFor(p.Civ) }

// HeldTechInGroup reports whether the player already holds any tech in the
// given age group.
func (p *Player) HeldTechInGroup(group int) bool {
	for t := range p.Techs {
		if AgeGroup(t) == group {
			return true
		}
	}
	return false
}

// TradeRoute links two TradePost provinces. It persists across ownership
// changes per spec §9 (open question frozen: no auto-deletion).
type TradeRoute struct {
	ID      string
	From    string
	To      string
	Owner   int
	Partner *int // nil if no distinct partner
}

// DiplomacyMessage is one entry in the append-only message ledger.
type DiplomacyMessage struct {
	Sender    int
	Recipient string // player id as string, or "public"
	Content   string
	Turn      int
	IsPublic  bool
}

// TreatyProposal is a pending offer from Proposer to Target. Exactly one
// of Accepted/Rejected may become true; once either is set the proposal is
// terminal.
type TreatyProposal struct {
	ID           string
	Proposer     int
	Target       int
	Type         TreatyType
	TurnProposed int
	Accepted     bool
	Rejected     bool
}

func (p *TreatyProposal) Terminal() bool { return p.Accepted || p.Rejected }

// Treaty is an active or broken agreement between two players.
type Treaty struct {
	ID          string
	Type        TreatyType
	Parties     [2]int
	TurnCreated int
	BrokenBy    *int
	TurnBroken  int
}

// Active reports whether the treaty has not been broken.
func (t *Treaty) Active() bool { return t.BrokenBy == nil }

// HasParty reports whether player p is one of the treaty's two parties.
func (t *Treaty) HasParty(p int) bool { return t.Parties[0] == p || t.Parties[1] == p }

// Game is the full authoritative state of one match: the province/unit
// tables, players, diplomacy ledger, and lifecycle counters. It is
// mutated exclusively by Resolve (resolve.go) given one OrderSet per live
// player.
type Game struct {
	ID       string
	Map      *WorldMap
	Provinces map[string]*Province
	Units    map[string]*Unit
	Players  []*Player

	TradeRoutes []*TradeRoute
	Messages    []*DiplomacyMessage
	Proposals   []*TreatyProposal
	Treaties    []*Treaty
	TrustPenalty map[int]int

	Turn     int
	Winner   *int
	MaxTurns int

	unitSeq     int
	treatySeq   int
	proposalSeq int
}

// NewGameOptions configures game creation.
type NewGameOptions struct {
	NumPlayers int
	Civs       []Civ // len must equal NumPlayers; defaults rotate through the four civs
	MaxTurns   int   // defaults to DefaultMaxTurns
}

// defaultCivRotation is used when civs aren't specified explicitly.
var defaultCivRotation = []Civ{CivIronborn, CivVerdanti, CivTidecallers, CivAshwalkers}

// NewGame creates a fresh game on the fixed tournament map: each player
// gets two starting provinces (capital + second home site), starting
// units, and starting resources per §3's Lifecycle.
func NewGame(id string, opts NewGameOptions) (*Game, error) {
	if opts.NumPlayers < 1 || opts.NumPlayers > 4 {
		return nil, fmt.Errorf("engine: num_players must be 1-4, got %d", opts.NumPlayers)
	}
	civs := opts.Civs
	if civs == nil {
		civs = defaultCivRotation[:opts.NumPlayers]
	}
	if len(civs) != opts.NumPlayers {
		return nil, fmt.Errorf("engine: civs length %d does not match num_players %d", len(civs), opts.NumPlayers)
	}
	maxTurns := opts.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	g := &Game{
		ID:           id,
		Map:          TournamentMap,
		Provinces:    make(map[string]*Province, len(TournamentMap.Provinces)),
		Units:        make(map[string]*Unit),
		TrustPenalty: make(map[int]int),
		MaxTurns:     maxTurns,
		Winner:       nil,
	}

	for pid := range TournamentMap.Provinces {
		g.Provinces[pid] = newProvince(pid)
	}

	for i := 0; i < opts.NumPlayers; i++ {
		player := &Player{
			ID:        i,
			Civ:       civs[i],
			Age:       1,
			Resources: StartingResources,
			Techs:     make(map[TechID]bool),
			Alive:     true,
		}
		g.Players = append(g.Players, player)

		home := TournamentMap.Homes[i]
		g.claimHomeSite(player, home)
	}

	return g, nil
}

func (g *Game) claimHomeSite(player *Player, home HomeSite) {
	capital := g.Provinces[home.Capital]
	capital.Owner = player.ID
	for _, t := range []UnitType{UnitMilitia, UnitInfantry, UnitScout} {
		g.spawnUnit(player.ID, t, capital.ID)
	}

	second := g.Provinces[home.Second]
	second.Owner = player.ID
	g.spawnUnit(player.ID, UnitMilitia, second.ID)
}

// spawnUnit creates a new unit with a fresh monotonic id
// ("{player}_{type}_{n}" per §4.3 P3) and places it in province.
func (g *Game) spawnUnit(owner int, t UnitType, province string) *Unit {
	g.unitSeq++
	u := &Unit{
		ID:       fmt.Sprintf("%d_%s_%d", owner, t, g.unitSeq),
		Type:     t,
		Owner:    owner,
		Province: province,
		Veteran:  0,
	}
	g.Units[u.ID] = u
	g.Provinces[province].UnitIDs = append(g.Provinces[province].UnitIDs, u.ID)
	return u
}

// removeUnit deletes a unit from both the flat table and its province's
// list.
func (g *Game) removeUnit(id string) {
	u, ok := g.Units[id]
	if !ok {
		return
	}
	prov := g.Provinces[u.Province]
	prov.UnitIDs = removeString(prov.UnitIDs, id)
	delete(g.Units, id)
}

func removeString(ss []string, target string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

func (g *Game) nextTreatyID() string {
	g.treatySeq++
	return fmt.Sprintf("treaty_%d", g.treatySeq)
}

func (g *Game) nextProposalID() string {
	g.proposalSeq++
	return fmt.Sprintf("proposal_%d", g.proposalSeq)
}

// Player looks up a player by id, or nil if out of range.
func (g *Game) Player(id int) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// UnitsIn returns the units stationed in a province.
func (g *Game) UnitsIn(provinceID string) []*Unit {
	prov := g.Provinces[provinceID]
	if prov == nil {
		return nil
	}
	units := make([]*Unit, 0, len(prov.UnitIDs))
	for _, id := range prov.UnitIDs {
		if u, ok := g.Units[id]; ok {
			units = append(units, u)
		}
	}
	return units
}

// ProvincesOwnedBy counts the provinces currently owned by player id.
func (g *Game) ProvincesOwnedBy(id int) int {
	count := 0
	for _, p := range g.Provinces {
		if p.Owner == id {
			count++
		}
	}
	return count
}
