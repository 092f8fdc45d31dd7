package engine

import (
	"fmt"
	"sort"
	"strconv"
)

// TurnResult summarizes one call to Resolve: the events emitted by every
// phase, a structured record of each combat, resource income per player,
// players eliminated this turn, and the winner if one was just decided.
type TurnResult struct {
	Turn         int
	Events       []string
	Combats      []*CombatResult
	Income       map[int]Resources
	Eliminations []int
	Winner       *int
}

// Resolve advances the game by one turn given one OrderSet per live
// player. Phases run in the fixed P0..P7 order; players within a phase are
// iterated in ascending id order, and a player's own orders are applied in
// submission order — both per §4.3/§5. Resolve is pure CPU: it never
// performs I/O and must not be called concurrently on the same Game.
func Resolve(g *Game, orders map[int]OrderSet) *TurnResult {
	g.Turn++
	result := &TurnResult{Turn: g.Turn, Income: make(map[int]Resources)}

	g.resolveDiplomacy(orders, result)
	g.resolveResearch(orders, result)
	g.resolveMovementAndCombat(orders, result)
	g.resolveBuilds(orders, result)
	g.resolveTradeRoutes(orders, result)
	g.resolveResourceCollection(result)
	g.resolveEliminations(result)
	g.resolveVictory(result)

	return result
}

func (g *Game) livePlayerIDs() []int {
	var ids []int
	for _, p := range g.Players {
		if p.Alive {
			ids = append(ids, p.ID)
		}
	}
	sort.Ints(ids)
	return ids
}

func (g *Game) emit(result *TurnResult, format string, args ...any) {
	result.Events = append(result.Events, fmt.Sprintf(format, args...))
}

// ---- P0: Diplomacy application ----

func (g *Game) resolveDiplomacy(orders map[int]OrderSet, result *TurnResult) {
	for _, pid := range g.livePlayerIDs() {
		order := orders[pid].Diplomacy
		if order == nil {
			continue
		}
		for _, m := range order.Messages {
			g.Messages = append(g.Messages, &DiplomacyMessage{
				Sender:    pid,
				Recipient: m.To,
				Content:   m.Content,
				Turn:      g.Turn,
				IsPublic:  m.To == "public",
			})
		}
		for _, prop := range order.Proposals {
			target, err := parsePlayerID(prop.Target)
			if err != nil {
				continue
			}
			tp := &TreatyProposal{
				ID:           g.nextProposalID(),
				Proposer:     pid,
				Target:       target,
				Type:         prop.Type,
				TurnProposed: g.Turn,
			}
			g.Proposals = append(g.Proposals, tp)
		}
		for _, id := range order.AcceptTreaties {
			g.acceptProposal(pid, id, result)
		}
		for _, id := range order.RejectTreaties {
			g.rejectProposal(pid, id)
		}
		for _, id := range order.BreakTreaties {
			g.breakTreaty(pid, id, result)
		}
	}
}

func parsePlayerID(s string) (int, error) {
	return strconv.Atoi(s)
}

func (g *Game) findProposal(id string) *TreatyProposal {
	for _, p := range g.Proposals {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *Game) acceptProposal(pid int, id string, result *TurnResult) {
	p := g.findProposal(id)
	if p == nil || p.Target != pid || p.Terminal() {
		return
	}
	p.Accepted = true
	treaty := &Treaty{
		ID:          g.nextTreatyID(),
		Type:        p.Type,
		Parties:     [2]int{p.Proposer, p.Target},
		TurnCreated: g.Turn,
	}
	g.Treaties = append(g.Treaties, treaty)
	g.emit(result, "treaty %s formed between player %d and player %d", treaty.Type, p.Proposer, p.Target)
}

func (g *Game) rejectProposal(pid int, id string) {
	p := g.findProposal(id)
	if p == nil || p.Target != pid || p.Terminal() {
		return
	}
	p.Rejected = true
}

func (g *Game) findTreaty(id string) *Treaty {
	for _, t := range g.Treaties {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (g *Game) breakTreaty(pid int, id string, result *TurnResult) {
	t := g.findTreaty(id)
	if t == nil || !t.HasParty(pid) || !t.Active() {
		return
	}
	breaker := pid
	t.BrokenBy = &breaker
	t.TurnBroken = g.Turn
	g.TrustPenalty[pid]++
	g.emit(result, "player %d broke treaty %s", pid, t.ID)
}

// ---- P1: Research & age-up ----

func (g *Game) resolveResearch(orders map[int]OrderSet, result *TurnResult) {
	for _, pid := range g.livePlayerIDs() {
		order := orders[pid].Research
		if order == nil {
			continue
		}
		player := g.Player(pid)
		profile := player.profile()

		if order.Tech == AgeUpTech {
			if player.Age >= 3 {
				continue
			}
			cost := profile.TechCostModifier(AgeUpCostTable[player.Age+1])
			if !player.Resources.Affords(cost) {
				continue
			}
			player.Resources = player.Resources.Sub(cost)
			player.Age++
			g.emit(result, "player %d advanced to age %d", pid, player.Age)
			continue
		}

		if !IsValidTech(order.Tech) {
			continue
		}
		if player.Age < MinAge(order.Tech) {
			continue
		}
		if player.Techs[order.Tech] {
			continue
		}
		if player.HeldTechInGroup(AgeGroup(order.Tech)) {
			continue
		}
		// tech costs reuse the age-up cost table's shape but scaled down;
		// a flat per-tech cost isn't given in the fixed tables, so techs
		// cost half (floored per component) of the player's *current*
		// age-up price (the age-3 price once at age 3), discounted the same
		// way, reflecting that research competes with age-up for the same
		// wallet.
		cost := profile.TechCostModifier(baseTechCost(player.Age))
		if !player.Resources.Affords(cost) {
			continue
		}
		player.Resources = player.Resources.Sub(cost)
		player.Techs[order.Tech] = true
		g.emit(result, "player %d researched %s", pid, order.Tech)
	}
}

func baseTechCost(age int) Resources {
	if cost, ok := AgeUpCostTable[age+1]; ok {
		return cost.ScaleFrac(1, 2)
	}
	return AgeUpCostTable[3].ScaleFrac(1, 2)
}

// ---- P2: Movement & combat ----

func (g *Game) resolveMovementAndCombat(orders map[int]OrderSet, result *TurnResult) {
	for _, pid := range g.livePlayerIDs() {
		for _, mv := range orders[pid].Moves {
			g.applyMove(pid, mv)
		}
	}

	for _, provinceID := range g.Map.ProvinceIDs() {
		cr := g.resolveProvinceCombat(provinceID)
		if cr == nil {
			continue
		}
		result.Combats = append(result.Combats, cr)
		g.applyCombatResult(cr)
		g.emit(result, "%s", cr.Event)
	}
}

func (g *Game) applyMove(pid int, mv MoveOrder) {
	u, ok := g.Units[mv.UnitID]
	if !ok || u.Owner != pid {
		return
	}
	if !g.Map.Adjacent(u.Province, mv.Target) {
		return
	}
	from := g.Provinces[u.Province]
	from.UnitIDs = removeString(from.UnitIDs, u.ID)
	to := g.Provinces[mv.Target]
	to.UnitIDs = append(to.UnitIDs, u.ID)
	u.Province = mv.Target
}

func (g *Game) resolveProvinceCombat(provinceID string) *CombatResult {
	prov := g.Provinces[provinceID]
	unitsByOwner := make(map[int][]*Unit)
	for _, id := range prov.UnitIDs {
		u := g.Units[id]
		unitsByOwner[u.Owner] = append(unitsByOwner[u.Owner], u)
	}
	fortressCount := 0
	if prov.HasBuilding(BuildingFortress) {
		fortressCount = 1
	}
	terrain := g.Map.Provinces[provinceID].Terrain
	return ResolveCombat(CombatInput{
		Province:      provinceID,
		Terrain:       terrain,
		FortressCount: fortressCount,
		PriorOwner:    prov.Owner,
		UnitsByOwner:  unitsByOwner,
		ProfileOf:     func(owner int) CivProfile { return g.Player(owner).profile() },
		HasTech:       func(owner int, tech TechID) bool { return g.Player(owner).Techs[tech] },
	})
}

func (g *Game) applyCombatResult(cr *CombatResult) {
	for _, ids := range cr.UnitsLost {
		for _, id := range ids {
			g.removeUnit(id)
		}
	}
	for _, id := range cr.SurvivingWinnerUnits {
		if u, ok := g.Units[id]; ok && u.Veteran < maxVeterancy {
			u.Veteran++
		}
	}
	g.Provinces[cr.Province].Owner = cr.Winner
	if bonus := g.Player(cr.Winner).profile().CombatGoldBonus(cr.EnemyUnitsKilled); bonus > 0 {
		g.Player(cr.Winner).Resources.Gold += bonus
	}
}

// ---- P3: Builds ----

func (g *Game) resolveBuilds(orders map[int]OrderSet, result *TurnResult) {
	for _, pid := range g.livePlayerIDs() {
		player := g.Player(pid)
		profile := player.profile()
		for _, order := range orders[pid].BuildUnits {
			g.applyBuildUnit(player, profile, order, result)
		}
		for _, order := range orders[pid].BuildBuildings {
			g.applyBuildBuilding(player, order, result)
		}
	}
}

func (g *Game) applyBuildUnit(player *Player, profile CivProfile, order BuildUnitOrder, result *TurnResult) {
	prov := g.Provinces[order.Province]
	if prov == nil || prov.Owner != player.ID {
		return
	}

	unitType := order.Type
	var baseCost Resources
	var minAge int
	if unitType == "unique" {
		uu := profile.UniqueUnit()
		if uu == nil {
			return
		}
		unitType = uu.Type
		baseCost = uu.Cost
		minAge = uu.MinAge
	} else {
		stats, ok := UnitStatsTable[unitType]
		if !ok {
			return
		}
		baseCost = stats.Cost
		minAge = stats.MinAge
	}
	if player.Age < minAge {
		return
	}

	cost := profile.UnitCostModifier(baseCost)
	if prov.HasBuilding(BuildingBarracks) {
		cost.Food = clampNonNegative(cost.Food - 1)
	}
	if !player.Resources.Affords(cost) {
		return
	}
	player.Resources = player.Resources.Sub(cost)
	u := g.spawnUnit(player.ID, unitType, prov.ID)
	g.emit(result, "player %d built %s in %s", player.ID, u.Type, prov.ID)
}

func (g *Game) applyBuildBuilding(player *Player, order BuildBuildingOrder, result *TurnResult) {
	prov := g.Provinces[order.Province]
	if prov == nil || prov.Owner != player.ID {
		return
	}
	if _, exists := prov.Buildings[order.Type]; exists {
		return
	}
	stats, ok := BuildingStatsTable[order.Type]
	if !ok || player.Age < stats.MinAge {
		return
	}
	cost := stats.Cost
	if player.Techs[TechMasonry] {
		cost.Gold = clampNonNegative(cost.Gold - 1)
	}
	if !player.Resources.Affords(cost) {
		return
	}
	player.Resources = player.Resources.Sub(cost)
	prov.Buildings[order.Type] = &Building{Type: order.Type, Done: true}
	g.emit(result, "player %d completed %s in %s", player.ID, order.Type, prov.ID)
}

// ---- P4: Trade routes ----

func (g *Game) resolveTradeRoutes(orders map[int]OrderSet, result *TurnResult) {
	for _, pid := range g.livePlayerIDs() {
		for _, order := range orders[pid].TradeRoutes {
			g.applyTradeRoute(pid, order, result)
		}
	}
}

func (g *Game) applyTradeRoute(pid int, order TradeRouteOrder, result *TurnResult) {
	from := g.Provinces[order.From]
	to := g.Provinces[order.To]
	if from == nil || to == nil || from.Owner != pid {
		return
	}
	if !from.HasBuilding(BuildingTradePost) || !to.HasBuilding(BuildingTradePost) {
		return
	}
	for _, r := range g.TradeRoutes {
		if r.From == order.From && r.To == order.To {
			return
		}
	}
	route := &TradeRoute{ID: fmt.Sprintf("route_%d", len(g.TradeRoutes)+1), From: order.From, To: order.To, Owner: pid}
	if to.Owner != NoOwner && to.Owner != pid {
		partner := to.Owner
		route.Partner = &partner
	}
	g.TradeRoutes = append(g.TradeRoutes, route)
	g.emit(result, "player %d opened trade route %s -> %s", pid, order.From, order.To)
}

// ---- P5: Resource collection ----

func (g *Game) resolveResourceCollection(result *TurnResult) {
	for _, pid := range g.livePlayerIDs() {
		player := g.Player(pid)
		profile := player.profile()
		delta := Resources{}

		for provID, prov := range g.Provinces {
			if prov.Owner != pid {
				continue
			}
			terrain := g.Map.Provinces[provID].Terrain
			delta = Resources{Food: delta.Food + TerrainResourcesTable[terrain].Food, Iron: delta.Iron + TerrainResourcesTable[terrain].Iron, Gold: delta.Gold + TerrainResourcesTable[terrain].Gold}

			if prov.HasBuilding(BuildingFarm) {
				delta.Food += 2
				if player.Techs[TechAgriculture] {
					delta.Food++
				}
			}
			if prov.HasBuilding(BuildingMine) {
				delta.Iron += 2
				if player.Techs[TechMining] {
					delta.Iron++
				}
			}
			if prov.HasBuilding(BuildingMarket) {
				delta.Gold += 2
				if player.Techs[TechCommerce] {
					delta.Gold += 2
				}
			}

			var unitTypes []UnitType
			for _, id := range prov.UnitIDs {
				u := g.Units[id]
				unitTypes = append(unitTypes, u.Type)
				if u.Type != UnitMilitia && u.Type != UnitScout {
					delta.Food--
				}
			}
			bonus := profile.ProvinceProduction(unitTypes)
			delta.Food += bonus.Food
			delta.Iron += bonus.Iron
			delta.Gold += bonus.Gold
		}

		if player.Techs[TechDiplomacy] {
			for _, t := range g.Treaties {
				if t.Active() && t.HasParty(pid) {
					delta.Gold += 2
				}
			}
		}

		delta.Gold += g.tradeRouteIncome(pid, profile)

		player.Resources = player.Resources.Add(delta)
		result.Income[pid] = delta
	}
}

// tradeRouteIncome computes this player's total income from trade routes
// they own or partner in, per §4.3 P5's raid-halving / partner-split rule.
func (g *Game) tradeRouteIncome(pid int, profile CivProfile) int {
	total := 0
	for _, r := range g.TradeRoutes {
		isOwner := r.Owner == pid
		isPartner := r.Partner != nil && *r.Partner == pid
		if !isOwner && !isPartner {
			continue
		}
		base := g.shortestPathHops(r.From, r.To)
		if g.routeRaided(r) {
			base /= 2
		}
		base = profile.TradeIncomeModifier(base)
		if r.Partner != nil {
			total += base / 2
		} else if isOwner {
			total += base
		}
	}
	return total
}

// routeRaided reports whether any intermediate province on the route's
// shortest path contains a unit owned by neither the route's owner nor its
// partner.
func (g *Game) routeRaided(r *TradeRoute) bool {
	path := g.shortestPath(r.From, r.To)
	if len(path) <= 2 {
		return false
	}
	for _, provID := range path[1 : len(path)-1] {
		for _, id := range g.Provinces[provID].UnitIDs {
			owner := g.Units[id].Owner
			if owner != r.Owner && !(r.Partner != nil && owner == *r.Partner) {
				return true
			}
		}
	}
	return false
}

func (g *Game) shortestPathHops(from, to string) int {
	path := g.shortestPath(from, to)
	if path == nil {
		return 0
	}
	return len(path) - 1
}

// shortestPath runs BFS over the fixed map topology; province adjacency
// never changes mid-game so this is always well-defined on the tournament
// map.
func (g *Game) shortestPath(from, to string) []string {
	if from == to {
		return []string{from}
	}
	visited := map[string]bool{from: true}
	prev := map[string]string{}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.Map.Provinces[cur].Adjacent {
			if visited[next] {
				continue
			}
			visited[next] = true
			prev[next] = cur
			if next == to {
				return reconstructPath(prev, from, to)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

func reconstructPath(prev map[string]string, from, to string) []string {
	path := []string{to}
	cur := to
	for cur != from {
		cur = prev[cur]
		path = append([]string{cur}, path...)
	}
	return path
}

// ---- P6: Eliminations ----

func (g *Game) resolveEliminations(result *TurnResult) {
	for _, pid := range g.livePlayerIDs() {
		player := g.Player(pid)
		if g.ProvincesOwnedBy(pid) > 0 {
			continue
		}
		hasUnits := false
		for _, u := range g.Units {
			if u.Owner == pid {
				hasUnits = true
				break
			}
		}
		if hasUnits {
			continue
		}
		player.Alive = false
		result.Eliminations = append(result.Eliminations, pid)
		g.emit(result, "player %d eliminated", pid)
	}
}

// ---- P7: Victory check ----

const (
	dominationProvinceThreshold = 15
	goldVictoryThreshold         = 100
	totalProvinces               = 24
)

func (g *Game) resolveVictory(result *TurnResult) {
	alive := g.livePlayerIDs()

	if len(alive) == 1 {
		g.declareWinner(alive[0], result)
		return
	}

	for _, pid := range alive {
		if g.ProvincesOwnedBy(pid) >= dominationProvinceThreshold {
			g.declareWinner(pid, result)
			return
		}
	}

	for _, pid := range alive {
		player := g.Player(pid)
		if player.Resources.Gold >= goldVictoryThreshold && g.ProvincesOwnedBy(pid) >= 1 {
			g.declareWinner(pid, result)
			return
		}
	}

	if g.Turn >= g.MaxTurns {
		g.declareWinner(g.scoreWinner(alive), result)
		return
	}
}

func (g *Game) scoreWinner(alive []int) int {
	best := alive[0]
	bestScore := -1
	for _, pid := range alive {
		player := g.Player(pid)
		unitCount := 0
		for _, u := range g.Units {
			if u.Owner == pid {
				unitCount++
			}
		}
		score := 3*g.ProvincesOwnedBy(pid) + unitCount + player.Resources.Gold/5 + 5*len(player.Techs) + 10*player.Age
		player.Score = score
		if score > bestScore || (score == bestScore && pid < best) {
			best = pid
			bestScore = score
		}
	}
	return best
}

func (g *Game) declareWinner(pid int, result *TurnResult) {
	winner := pid
	g.Winner = &winner
	result.Winner = &winner
	g.emit(result, "player %d wins the game", pid)
}
