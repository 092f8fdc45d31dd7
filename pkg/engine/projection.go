package engine

import (
	"sort"
	"strconv"
)

// OwnedProvinceView is the full-detail view of a province a player owns.
type OwnedProvinceView struct {
	ID         string
	Name       string
	Terrain    Terrain
	Owner      int
	Adjacent   []string
	Buildings  []BuildingType
	UnitsByType map[UnitType]int
	Production Resources
}

// VisibleProvinceView is the partial view of a province a player can see
// but does not own: terrain, owner, adjacency, and an aggregate unit
// count only — no type breakdown, no buildings. This is the boundary the
// fog-of-war contract must never cross.
type VisibleProvinceView struct {
	ID        string
	Name      string
	Terrain   Terrain
	Owner     int // NoOwner if unclaimed
	Adjacent  []string
	UnitCount int
}

// PlayerView is the complete per-player projection returned by /state.
type PlayerView struct {
	PlayerID     int
	Turn         int
	Winner       *int
	Owned        map[string]*OwnedProvinceView
	Visible      map[string]*VisibleProvinceView
	Fog          []string
	Messages     []*DiplomacyMessage
	Proposals    []*TreatyProposal
	Treaties     []*Treaty
	TrustPenalty map[int]int
}

// ViewFor builds the fog-of-war projection for player p per §4.2: full
// detail of owned provinces, partial detail of adjacent-or-watchtower
// provinces, bare ids for everything else.
func (g *Game) ViewFor(p int) *PlayerView {
	owned := make(map[string]bool)
	for id, prov := range g.Provinces {
		if prov.Owner == p {
			owned[id] = true
		}
	}

	visible := make(map[string]bool)
	for id := range owned {
		for _, adj := range g.Map.Provinces[id].Adjacent {
			if !owned[adj] {
				visible[adj] = true
			}
		}
		if g.Provinces[id].HasBuilding(BuildingWatchtower) {
			for _, adj := range g.Map.Provinces[id].Adjacent {
				for _, adj2 := range g.Map.Provinces[adj].Adjacent {
					if !owned[adj2] {
						visible[adj2] = true
					}
				}
			}
		}
	}

	view := &PlayerView{
		PlayerID: p,
		Turn:     g.Turn,
		Winner:   g.Winner,
		Owned:    make(map[string]*OwnedProvinceView, len(owned)),
		Visible:  make(map[string]*VisibleProvinceView, len(visible)),
	}

	for id := range owned {
		view.Owned[id] = g.ownedView(id)
	}
	for id := range visible {
		view.Visible[id] = g.visibleView(id)
	}
	for _, id := range g.Map.ProvinceIDs() {
		if owned[id] || visible[id] {
			continue
		}
		view.Fog = append(view.Fog, id)
	}
	sort.Strings(view.Fog)

	view.Messages = g.messagesVisibleTo(p)
	view.Proposals = g.proposalsVisibleTo(p)
	view.Treaties = g.treatiesVisibleTo(p)
	view.TrustPenalty = cloneTrustPenalty(g.TrustPenalty)

	return view
}

func (g *Game) ownedView(id string) *OwnedProvinceView {
	def := g.Map.Provinces[id]
	prov := g.Provinces[id]

	byType := make(map[UnitType]int)
	var unitTypes []UnitType
	for _, uid := range prov.UnitIDs {
		u := g.Units[uid]
		byType[u.Type]++
		unitTypes = append(unitTypes, u.Type)
	}

	var buildings []BuildingType
	for t, b := range prov.Buildings {
		if b.Done {
			buildings = append(buildings, t)
		}
	}
	sort.Slice(buildings, func(i, j int) bool { return buildings[i] < buildings[j] })

	production := TerrainResourcesTable[def.Terrain]
	if prov.HasBuilding(BuildingFarm) {
		production.Food += 2
	}
	if prov.HasBuilding(BuildingMine) {
		production.Iron += 2
	}
	if prov.HasBuilding(BuildingMarket) {
		production.Gold += 2
	}
	if player := g.Player(prov.Owner); player != nil {
		bonus := player.profile().ProvinceProduction(unitTypes)
		production.Food += bonus.Food
		production.Iron += bonus.Iron
		production.Gold += bonus.Gold
	}

	return &OwnedProvinceView{
		ID:          id,
		Name:        def.Name,
		Terrain:     def.Terrain,
		Owner:       prov.Owner,
		Adjacent:    def.Adjacent,
		Buildings:   buildings,
		UnitsByType: byType,
		Production:  production,
	}
}

func (g *Game) visibleView(id string) *VisibleProvinceView {
	def := g.Map.Provinces[id]
	prov := g.Provinces[id]
	return &VisibleProvinceView{
		ID:        id,
		Name:      def.Name,
		Terrain:   def.Terrain,
		Owner:     prov.Owner,
		Adjacent:  def.Adjacent,
		UnitCount: len(prov.UnitIDs),
	}
}

func (g *Game) messagesVisibleTo(p int) []*DiplomacyMessage {
	var out []*DiplomacyMessage
	pidStr := playerIDString(p)
	for _, m := range g.Messages {
		if m.Turn != g.Turn {
			continue
		}
		if m.IsPublic || m.Sender == p || m.Recipient == pidStr {
			out = append(out, m)
		}
	}
	return out
}

func (g *Game) proposalsVisibleTo(p int) []*TreatyProposal {
	var out []*TreatyProposal
	for _, prop := range g.Proposals {
		if prop.Target == p && !prop.Terminal() {
			out = append(out, prop)
		}
	}
	return out
}

func (g *Game) treatiesVisibleTo(p int) []*Treaty {
	var out []*Treaty
	for _, t := range g.Treaties {
		if t.Active() && t.HasParty(p) {
			out = append(out, t)
		}
	}
	return out
}

func cloneTrustPenalty(m map[int]int) map[int]int {
	out := make(map[int]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func playerIDString(p int) string {
	return strconv.Itoa(p)
}

// FullStateView is the unrestricted view used by spectators and replay:
// every province with full detail, every player's resources/techs/age.
type FullStateView struct {
	Turn        int
	Winner      *int
	Provinces   map[string]*OwnedProvinceView
	Players     []*Player
	Units       map[string]*Unit
	TradeRoutes []*TradeRoute
}

// FullState builds the spectator/replay view: every province at full
// detail regardless of ownership, plus raw unit and trade-route state so
// the view is sufficient to reconstruct a Game (recovery.go) without
// replaying every turn.
func (g *Game) FullState() *FullStateView {
	view := &FullStateView{
		Turn:        g.Turn,
		Winner:      g.Winner,
		Provinces:   make(map[string]*OwnedProvinceView, len(g.Provinces)),
		Players:     g.Players,
		Units:       g.Units,
		TradeRoutes: g.TradeRoutes,
	}
	for id := range g.Provinces {
		view.Provinces[id] = g.ownedView(id)
	}
	return view
}
