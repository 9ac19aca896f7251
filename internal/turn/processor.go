package turn

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/lab1702/starweb/internal/config"
	"github.com/lab1702/starweb/internal/delta"
	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
	"github.com/lab1702/starweb/internal/gamestate"
	"github.com/lab1702/starweb/internal/mechanics"
	"github.com/lab1702/starweb/internal/order"
	"github.com/lab1702/starweb/internal/visibility"
)

// Processor runs §4.6's thirteen ordered phases over one turn's queued
// orders. It holds no game state of its own beyond the configured
// mechanic knobs; everything it touches lives in the gamestate.State
// passed to Process.
type Processor struct {
	bus        *eventbus.Bus
	deltas     *delta.Engine
	rng        *rand.Rand
	costs      mechanics.BuildCosts
	production mechanics.ProductionParams
	captureCfg map[string]config.CharacterConfig
	log        zerolog.Logger

	// pendingKills carries robot-migration organic kills from phaseMigration
	// into phaseFire's accumulator bookkeeping, since migration runs before
	// the accFor closure's Berserker kill counters are consulted.
	pendingKills map[string]int

	// pendingMartyrs carries robot-migration martyr credits (convert
	// population killed on landing, §4.11 Apostle "+1 per martyr") from
	// phaseMigration into phaseFire for the same reason as pendingKills.
	pendingMartyrs map[string]int
}

// NewProcessor builds a Processor reading its tunables from cfg
// (§6.4's characters.* block) and publishing through bus.
func NewProcessor(cfg *config.Schema, bus *eventbus.Bus, deltas *delta.Engine, rng *rand.Rand, log zerolog.Logger) *Processor {
	return &Processor{
		bus:        bus,
		deltas:     deltas,
		rng:        rng,
		costs:      mechanics.DefaultBuildCosts(),
		production: mechanics.ProductionParams{MetalPerMine: 1, GrowthRate: 0.1},
		captureCfg: cfg.Characters,
		log:        log,
	}
}

// Result is everything the engine needs after a turn resolves: the
// per-player delta to send (possibly empty, in which case the Sender
// omits the frame per §4.9), and the winning player's name if the
// scoring phase produced one.
type Result struct {
	Deltas  map[string]delta.Delta
	Winner  string
	RolledBack bool
}

func (p *Processor) cargoCapacity(player *entities.Player, ships int) int {
	multiplier := 0.0
	if cc, ok := p.captureCfg[string(player.CharacterType)]; ok {
		multiplier = cc.CargoCapacityMultiplier
	}
	return mechanics.CargoPerShip(player.CharacterType, multiplier) * ships
}

func (p *Processor) pirateCaptureRatio() float64 {
	if cc, ok := p.captureCfg[string(entities.Pirate)]; ok && cc.CaptureRatio > 0 {
		return cc.CaptureRatio
	}
	return 3.0
}

func (p *Processor) plunderTakeFraction() float64 {
	if cc, ok := p.captureCfg[string(entities.Pirate)]; ok && cc.PlunderFraction > 0 {
		return cc.PlunderFraction
	}
	return 0.5
}

// Process runs every phase of §4.6 over s's currently queued orders, in
// deterministic (player-name ascending, order-index ascending) order
// within each phase. On an InvariantError from any phase, the whole
// turn is rolled back to the snapshot taken before phase 1, the
// buffered events for this turn are discarded, and Process returns with
// RolledBack set — the caller is expected to broadcast a visible notice
// (§7).
func (p *Processor) Process(s *gamestate.State) (*Result, error) {
	pristine := s.Clone()

	touched := make(visibility.TouchedThisTurn)
	acc := make(map[string]*mechanics.TurnAccumulator)
	accFor := func(name string) *mechanics.TurnAccumulator {
		a, ok := acc[name]
		if !ok {
			a = &mechanics.TurnAccumulator{}
			acc[name] = a
		}
		return a
	}

	phases := []func(){
		func() { p.phaseDiplomacy(s) },
		func() { p.phaseGifts(s) },
		func() { p.phaseShipTransfers(s) },
		func() { p.phaseBuilds(s) },
		func() { p.phaseCargo(s, accFor) },
		func() { p.phaseMigration(s, touched) },
		func() { p.phaseFire(s, accFor) },
		func() { p.phaseMovement(s, touched) },
		func() { p.phasePBBDrop(s, accFor) },
		func() { p.phaseProduction(s) },
		func() { p.phaseOwnership(s) },
	}

	for _, phase := range phases {
		phase()
		if err := s.CheckInvariants(); err != nil {
			p.log.Error().Err(err).Int("turn", s.Turn).Msg("turn rolled back on invariant violation")
			s.Restore(pristine)
			p.bus.Discard()
			return &Result{RolledBack: true}, err
		}
	}

	p.applyJihadBonus(s, acc)
	for _, name := range s.SortedPlayerNames() {
		mechanics.ApplyScoring(s, s.Players[name], s.Turn, *accFor(name))
	}
	winner := mechanics.CheckVictory(s, s.TargetScore)

	if err := s.CheckInvariants(); err != nil {
		p.log.Error().Err(err).Int("turn", s.Turn).Msg("turn rolled back on invariant violation during scoring")
		s.Restore(pristine)
		p.bus.Discard()
		return &Result{RolledBack: true}, err
	}

	result := p.phaseVisibilityAndBroadcast(s, touched, winner)
	p.bus.Publish(eventbus.Event{Kind: eventbus.TurnProcessed, Payload: eventbus.TurnProcessedPayload{Turn: s.Turn}})
	p.bus.Flush()
	s.ResetPerTurnFlags()
	return result, nil
}

// phaseDiplomacy is §4.6 phase 1: apply queued DeclareRelation orders,
// plus the world-scoped NotPeace declaration that clears AtPeace on the
// declaring player's fleets present there.
func (p *Processor) phaseDiplomacy(s *gamestate.State) {
	for _, name := range s.SortedPlayerNames() {
		pl := s.Players[name]
		for _, o := range order.For(pl).ByKind(entities.OrderDeclareRelation) {
			if pl.Relations == nil {
				pl.Relations = make(map[string]entities.RelationKind)
			}
			target, ok := s.PlayerByCI(o.PlayerArg)
			if !ok {
				continue
			}
			if o.Unally {
				delete(pl.Relations, target.Name)
				continue
			}
			pl.Relations[target.Name] = o.Relation
		}
		for _, o := range order.For(pl).ByKind(entities.OrderNotPeace) {
			for _, f := range s.FleetsAt(o.World) {
				if f.Owner == pl.Name {
					f.AtPeace = false
				}
			}
		}
	}
}

// phaseGifts is §4.6 phase 2: transfer fleet/world ownership. Homeworld
// and self-target exclusion were already enforced by the validator.
func (p *Processor) phaseGifts(s *gamestate.State) {
	for _, name := range s.SortedPlayerNames() {
		pl := s.Players[name]
		for _, o := range order.For(pl).ByKind(entities.OrderGiftFleet) {
			f, ok := s.Fleets[o.Fleet]
			target, targetOK := s.PlayerByCI(o.PlayerArg)
			if !ok || !targetOK || f.Owner != pl.Name {
				continue
			}
			f.Owner = target.Name
		}
		for _, o := range order.For(pl).ByKind(entities.OrderGiftWorld) {
			w, ok := s.Worlds[o.World]
			target, targetOK := s.PlayerByCI(o.PlayerArg)
			if !ok || !targetOK || w.Owner != pl.Name || w.Key == pl.Name {
				continue
			}
			w.Owner = target.Name
		}
		for _, o := range order.For(pl).ByKind(entities.OrderTransferArtifact) {
			p.applyTransferArtifact(s, o)
		}
		// ViewArtifact is validated and queued like any other order (so it
		// shows up in the per-player order history) and has nothing to
		// resolve at turn time; the router replies only with the usual
		// "order queued" acknowledgement, not the artifact's detail.
	}
}

// applyTransferArtifact moves an artifact between whichever
// fleet/world pair the order names, following the carrier wherever it
// currently is rather than trusting stale IDs from validation time.
func (p *Processor) applyTransferArtifact(s *gamestate.State, o entities.Order) {
	if _, ok := s.Artifacts[o.ArtifactID]; !ok {
		return
	}

	var fromOwner string
	var removeFromSrc func()
	if o.Fleet != 0 {
		f, ok := s.Fleets[o.Fleet]
		if !ok || !f.Artifacts[o.ArtifactID] {
			return
		}
		fromOwner = f.Owner
		removeFromSrc = func() { delete(f.Artifacts, o.ArtifactID) }
	} else {
		w, ok := s.Worlds[o.World]
		if !ok || !w.Artifacts[o.ArtifactID] {
			return
		}
		fromOwner = w.Owner
		removeFromSrc = func() { delete(w.Artifacts, o.ArtifactID) }
	}

	var toOwner string
	var addToDst func()
	if o.Fleet2 != 0 {
		f, ok := s.Fleets[o.Fleet2]
		if !ok {
			return
		}
		toOwner = f.Owner
		addToDst = func() {
			if f.Artifacts == nil {
				f.Artifacts = make(map[int]bool)
			}
			f.Artifacts[o.ArtifactID] = true
		}
	} else {
		w, ok := s.Worlds[o.World2]
		if !ok {
			return
		}
		toOwner = w.Owner
		addToDst = func() {
			if w.Artifacts == nil {
				w.Artifacts = make(map[int]bool)
			}
			w.Artifacts[o.ArtifactID] = true
		}
	}

	mechanics.TransferArtifact(p.bus, o.ArtifactID, fromOwner, toOwner, removeFromSrc, addToDst)
}

// phaseShipTransfers is §4.6 phase 3: ship transfers between fleets, or
// between a fleet and a world's defensive garrison.
func (p *Processor) phaseShipTransfers(s *gamestate.State) {
	for _, name := range s.SortedPlayerNames() {
		pl := s.Players[name]
		for _, o := range order.For(pl).ByKind(entities.OrderTransferShips) {
			src, ok := s.Fleets[o.Fleet]
			if !ok || src.Owner != pl.Name || src.Ships <= 0 {
				continue
			}
			n := o.Count
			if n > src.Ships {
				n = src.Ships
			}
			if n <= 0 {
				continue
			}

			if o.Target == entities.FireI || o.Target == entities.FireP {
				w, ok := s.Worlds[src.World]
				if !ok {
					continue
				}
				if o.Target == entities.FireI {
					w.IShips += n
				} else {
					w.PShips += n
				}
				src.Ships -= n
				mechanics.JettisonCargo(p.bus, src, -1)
				continue
			}

			dst, ok := s.Fleets[o.Fleet2]
			if !ok || dst.World != src.World {
				continue
			}
			capacity := p.cargoCapacity(pl, dst.Ships+n)
			if dst.Owner != entities.NeutralOwner {
				if owner, ownerOK := s.Players[dst.Owner]; ownerOK {
					capacity = p.cargoCapacity(owner, dst.Ships+n)
				}
			}
			mechanics.TransferShips(p.bus, src, &dst.Ships, &dst.Cargo, capacity, n)
			if dst.Owner == entities.NeutralOwner {
				dst.Owner = pl.Name
				dst.World = src.World
			}
		}
	}
}

// phaseBuilds is §4.6 phase 4.
func (p *Processor) phaseBuilds(s *gamestate.State) {
	for _, name := range s.SortedPlayerNames() {
		pl := s.Players[name]
		isEB := pl.CharacterType == entities.EmpireBuilder
		for _, o := range order.For(pl).ByKind(entities.OrderBuildIShips) {
			if w, ok := s.Worlds[o.World]; ok {
				mechanics.BuildIShips(p.bus, p.costs, w, pl.Name, o.Count)
			}
		}
		for _, o := range order.For(pl).ByKind(entities.OrderBuildPShips) {
			if w, ok := s.Worlds[o.World]; ok {
				mechanics.BuildPShips(p.bus, p.costs, w, pl.Name, o.Count)
			}
		}
		for _, o := range order.For(pl).ByKind(entities.OrderBuildToFleet) {
			w, wok := s.Worlds[o.World]
			f, fok := s.Fleets[o.Fleet]
			if wok && fok {
				mechanics.BuildToFleet(p.bus, p.costs, w, f, o.Count)
			}
		}
		for _, o := range order.For(pl).ByKind(entities.OrderBuildIndustry) {
			if w, ok := s.Worlds[o.World]; ok {
				mechanics.BuildIndustry(p.bus, p.costs, w, isEB, o.Count)
			}
		}
		for _, o := range order.For(pl).ByKind(entities.OrderBuildLimit) {
			if w, ok := s.Worlds[o.World]; ok {
				mechanics.BuildLimit(p.bus, p.costs, w, isEB, o.Count)
			}
		}
		for _, o := range order.For(pl).ByKind(entities.OrderBuildRobots) {
			if w, ok := s.Worlds[o.World]; ok && pl.CharacterType == entities.Berserker {
				mechanics.BuildRobots(p.bus, p.costs, w, o.Count)
			}
		}
		for _, o := range order.For(pl).ByKind(entities.OrderBuildPBB) {
			if f, ok := s.Fleets[o.Fleet]; ok && f.Owner == pl.Name {
				mechanics.BuildPBB(f)
			}
		}
		for _, o := range order.For(pl).ByKind(entities.OrderScrapShips) {
			if o.Fleet != 0 {
				f, ok := s.Fleets[o.Fleet]
				if !ok || f.Owner != pl.Name {
					continue
				}
				w := s.Worlds[f.World]
				mechanics.ScrapFleetShips(p.costs, w, f, o.Count)
				continue
			}
			w, ok := s.Worlds[o.World]
			if !ok || w.Owner != pl.Name {
				continue
			}
			mechanics.ScrapWorldShips(p.costs, w, o.Count)
		}
	}
}

// phaseCargo is §4.6 phase 5.
func (p *Processor) phaseCargo(s *gamestate.State, accFor func(string) *mechanics.TurnAccumulator) {
	for _, name := range s.SortedPlayerNames() {
		pl := s.Players[name]
		for _, o := range order.For(pl).ByKind(entities.OrderLoadCargo) {
			f, ok := s.Fleets[o.Fleet]
			if !ok || f.Owner != pl.Name {
				continue
			}
			w, ok := s.Worlds[f.World]
			if !ok {
				continue
			}
			capacity := p.cargoCapacity(pl, f.Ships)
			mechanics.LoadCargo(w, f, capacity, o.Count)
		}
		for _, o := range order.For(pl).ByKind(entities.OrderUnloadCargo) {
			f, ok := s.Fleets[o.Fleet]
			if !ok || f.Owner != pl.Name {
				continue
			}
			w, ok := s.Worlds[f.World]
			if !ok {
				continue
			}
			mechanics.UnloadCargo(w, f, o.Count)
		}
		for _, o := range order.For(pl).ByKind(entities.OrderJettisonCargo) {
			f, ok := s.Fleets[o.Fleet]
			if !ok || f.Owner != pl.Name {
				continue
			}
			mechanics.JettisonCargo(p.bus, f, o.Count)
		}
		for _, o := range order.For(pl).ByKind(entities.OrderUnloadConsumerGoods) {
			f, ok := s.Fleets[o.Fleet]
			if !ok || f.Owner != pl.Name {
				continue
			}
			w, ok := s.Worlds[f.World]
			if !ok || w.Owner == pl.Name || w.Owner == entities.NeutralOwner {
				continue
			}
			delivered := mechanics.UnloadConsumerGoods(w, f, o.Count)
			if delivered <= 0 || pl.CharacterType != entities.Merchant {
				continue
			}
			acc := accFor(pl.Name)
			acc.MetalUnloaded += delivered
			key := "consumer_goods:" + w.Key
			if w.Key == "" {
				key = "consumer_goods:world"
			}
			if pl.PerTurnCounters == nil {
				pl.PerTurnCounters = make(map[string]int)
			}
			pl.PerTurnCounters[key]++
			acc.ConsumerGoodsScore += mechanics.ConsumerGoodsScore(pl.PerTurnCounters[key])
		}
	}
}

// phaseMigration is §4.6 phase 6.
func (p *Processor) phaseMigration(s *gamestate.State, touched visibility.TouchedThisTurn) {
	for _, name := range s.SortedPlayerNames() {
		pl := s.Players[name]
		for _, kind := range []entities.OrderKind{entities.OrderMigrate, entities.OrderMigrateConverts} {
			for _, o := range order.For(pl).ByKind(kind) {
				src, srcOK := s.Worlds[o.World]
				dst, dstOK := s.Worlds[o.World2]
				if !srcOK || !dstOK || src.Owner != pl.Name {
					continue
				}
				affordable := min(o.Count, src.Industry, src.Metal)
				if affordable <= 0 {
					continue
				}
				var moved int
				switch {
				case kind == entities.OrderMigrateConverts:
					moved = mechanics.ApplyConvertMigration(src, dst, affordable)
				case src.PopulationType == entities.PopulationRobot:
					destWasConvert := dst.PopulationType == entities.PopulationConvert
					destOwner := dst.Owner
					var killed int
					moved, killed = mechanics.ApplyRobotMigration(src, dst, affordable)
					if pl.CharacterType == entities.Berserker {
						p.berserkerKill(pl.Name, killed)
					}
					if killed > 0 && destWasConvert && destOwner != pl.Name {
						if owner, ok := s.Players[destOwner]; ok && owner.CharacterType == entities.Apostle {
							p.creditMartyr(destOwner, killed)
						}
					}
				default:
					moved = mechanics.ApplyHumanMigration(src, dst, affordable)
				}
				if moved <= 0 {
					continue
				}
				src.Industry -= moved
				src.Metal -= moved
				if touched[pl.Name] == nil {
					touched[pl.Name] = make(map[int]bool)
				}
				touched[pl.Name][dst.ID] = true
			}
		}
	}
}

func (p *Processor) berserkerKill(player string, n int) {
	// Recorded through the same accumulator map the fire phase uses;
	// Process does not pass accFor to phaseMigration, so migration-caused
	// kills are held here and folded in by phaseFire instead of
	// duplicating accumulator plumbing through phaseMigration's signature.
	if p.pendingKills == nil {
		p.pendingKills = make(map[string]int)
	}
	p.pendingKills[player] += n
}

// creditMartyr records convert population killed on a world owned by an
// Apostle, folded into that Apostle's accumulator once phaseFire runs
// (see pendingMartyrs).
func (p *Processor) creditMartyr(owner string, n int) {
	if p.pendingMartyrs == nil {
		p.pendingMartyrs = make(map[string]int)
	}
	p.pendingMartyrs[owner] += n
}

// phaseFire is §4.6 phase 7.
func (p *Processor) phaseFire(s *gamestate.State, accFor func(string) *mechanics.TurnAccumulator) {
	for player, n := range p.pendingKills {
		accFor(player).PopulationKilled += n
	}
	p.pendingKills = nil
	for player, n := range p.pendingMartyrs {
		accFor(player).Martyrs += n
	}
	p.pendingMartyrs = nil

	for _, name := range s.SortedPlayerNames() {
		pl := s.Players[name]
		for _, o := range order.For(pl).ByKind(entities.OrderAmbush) {
			if f, ok := s.Fleets[o.Fleet]; ok && f.Owner == pl.Name {
				f.IsAmbushing = true
			}
		}
		for _, o := range order.For(pl).ByKind(entities.OrderNoAmbush) {
			for _, f := range s.Fleets {
				if f.Owner != pl.Name {
					continue
				}
				if o.World == 0 {
					f.NoAmbushGlobal = true
					continue
				}
				if f.NoAmbushWorlds == nil {
					f.NoAmbushWorlds = make(map[int]bool)
				}
				f.NoAmbushWorlds[o.World] = true
			}
		}
	}

	hitThisTurn := make(map[int]bool)

	// shipsBeforeFire snapshots every fleet's ship count before any
	// OrderFireAtFleet order in this phase mutates state, so two mutual
	// orders (each fleet firing at the other) each resolve off the
	// pre-phase count instead of one order's damage compounding into the
	// other's computed attacker strength.
	shipsBeforeFire := make(map[int]int, len(s.Fleets))
	for id, f := range s.Fleets {
		shipsBeforeFire[id] = f.Ships
	}

	for _, name := range s.SortedPlayerNames() {
		pl := s.Players[name]
		for _, o := range order.For(pl).ByKind(entities.OrderFireAtFleet) {
			attacker, ok1 := s.Fleets[o.Fleet]
			defender, ok2 := s.Fleets[o.Fleet2]
			if !ok1 || !ok2 || attacker.Owner != pl.Name || shipsBeforeFire[attacker.ID] <= 0 {
				continue
			}
			beforeShips := defender.Ships
			mechanics.FireAtFleet(p.bus, attacker.World, attacker, defender, shipsBeforeFire[attacker.ID], false)
			hitThisTurn[defender.ID] = true
			p.recordKillScoring(accFor, pl, defender.Owner, beforeShips-defender.Ships, 0)
		}
		for _, o := range order.For(pl).ByKind(entities.OrderFireAtTarget) {
			attacker, ok := s.Fleets[o.Fleet]
			if !ok || attacker.Owner != pl.Name || attacker.Ships <= 0 {
				continue
			}
			w, ok := s.Worlds[attacker.World]
			if !ok {
				continue
			}
			beforePop := w.Population
			wasConvert := w.PopulationType == entities.PopulationConvert
			worldOwner := w.Owner
			mechanics.FireAtWorldTarget(p.bus, s, attacker, w, o.Target)
			popKilled := beforePop - w.Population
			p.recordKillScoring(accFor, pl, w.Owner, 0, popKilled)
			if popKilled > 0 && wasConvert && worldOwner != pl.Name {
				if owner, ok := s.Players[worldOwner]; ok && owner.CharacterType == entities.Apostle {
					accFor(worldOwner).Martyrs += popKilled
				}
			}
		}
		for _, o := range order.For(pl).ByKind(entities.OrderRobotAttack) {
			if pl.CharacterType != entities.Berserker {
				continue
			}
			f, fok := s.Fleets[o.Fleet]
			w, wok := s.Worlds[o.World]
			if !fok || !wok || f.Owner != pl.Name {
				continue
			}
			wasConvert := w.PopulationType == entities.PopulationConvert
			worldOwner := w.Owner
			killed := mechanics.RobotAttack(p.bus, f, w)
			accFor(pl.Name).PopulationKilled += killed
			if killed > 0 && wasConvert && worldOwner != pl.Name {
				if owner, ok := s.Players[worldOwner]; ok && owner.CharacterType == entities.Apostle {
					accFor(worldOwner).Martyrs += killed
				}
			}
		}
		for _, o := range order.For(pl).ByKind(entities.OrderPlunder) {
			if pl.CharacterType != entities.Pirate {
				continue
			}
			f, fok := s.Fleets[o.Fleet]
			w, wok := s.Worlds[o.World]
			if !fok || !wok || f.Owner != pl.Name {
				continue
			}
			key := fmt.Sprintf("plunder:%d", w.ID)
			if pl.PerTurnCounters == nil {
				pl.PerTurnCounters = make(map[string]int)
			}
			_, n := mechanics.Plunder(p.bus, w, pl, p.plunderTakeFraction(), pl.PerTurnCounters, key)
			accFor(pl.Name).PlunderScore += mechanics.PlunderScore(n)
		}
	}

	for _, name := range s.SortedPlayerNames() {
		pl := s.Players[name]
		for _, o := range order.For(pl).ByKind(entities.OrderConditionalFire) {
			f, ok := s.Fleets[o.Fleet]
			if !ok || f.Owner != pl.Name || !hitThisTurn[f.ID] {
				continue
			}
			if o.Fleet2 != 0 {
				if target, ok := s.Fleets[o.Fleet2]; ok {
					mechanics.FireAtFleet(p.bus, f.World, f, target, f.Ships, false)
				}
				continue
			}
			if w, ok := s.Worlds[f.World]; ok {
				mechanics.FireAtWorldTarget(p.bus, s, f, w, o.Target)
			}
		}
	}
}

// recordKillScoring folds a combat outcome into the attacker's
// accumulator (§4.11's Berserker "+2 per enemy ship destroyed"/"+2 per
// population killed") and into the jihad bonus counter (SPEC_FULL.md
// §C) when the attacker has declared jihad against defenderOwner.
func (p *Processor) recordKillScoring(accFor func(string) *mechanics.TurnAccumulator, attacker *entities.Player, defenderOwner string, shipsKilled, popKilled int) {
	if attacker.CharacterType == entities.Berserker {
		acc := accFor(attacker.Name)
		acc.EnemyShipsDestroyed += shipsKilled
		acc.PopulationKilled += popKilled
	}
	if (shipsKilled > 0 || popKilled > 0) && attacker.Relations[defenderOwner] == entities.RelationJihad {
		accFor(attacker.Name).JihadKillsAgainstTarget += shipsKilled + popKilled
	}
}

// phaseMovement is §4.6 phase 8.
func (p *Processor) phaseMovement(s *gamestate.State, touched visibility.TouchedThisTurn) {
	for _, name := range s.SortedPlayerNames() {
		pl := s.Players[name]
		for _, o := range order.For(pl).ByKind(entities.OrderMove) {
			f, ok := s.Fleets[o.Fleet]
			if !ok || f.Owner != pl.Name {
				continue
			}
			f.PendingMovePath = o.Path
			mechanics.ApplyMovement(p.bus, s, p.rng, f)
		}
		for _, o := range order.For(pl).ByKind(entities.OrderProbe) {
			f, ok := s.Fleets[o.Fleet]
			if !ok || f.Owner != pl.Name {
				continue
			}
			w, ok := s.Worlds[f.World]
			if !ok {
				continue
			}
			if touched[pl.Name] == nil {
				touched[pl.Name] = make(map[int]bool)
			}
			for _, id := range mechanics.Probe(w) {
				touched[pl.Name][id] = true
			}
		}
	}
}

// phasePBBDrop is §4.6 phase 9.
func (p *Processor) phasePBBDrop(s *gamestate.State, accFor func(string) *mechanics.TurnAccumulator) {
	for _, name := range s.SortedPlayerNames() {
		pl := s.Players[name]
		for _, o := range order.For(pl).ByKind(entities.OrderDropPBB) {
			f, ok := s.Fleets[o.Fleet]
			if !ok || f.Owner != pl.Name || !f.HasPBB {
				continue
			}
			w, ok := s.Worlds[f.World]
			if !ok || w.Key != "" {
				continue
			}
			mechanics.DropPBB(p.bus, s, f, w)
			if pl.CharacterType == entities.Berserker {
				accFor(pl.Name).PBBDropped++
			}
		}
	}
}

// phaseProduction is §4.6 phase 10.
func (p *Processor) phaseProduction(s *gamestate.State) {
	for _, w := range s.Worlds {
		mechanics.ApplyProduction(p.bus, p.production, w)
	}
}

// phaseOwnership is §4.6 phase 11.
func (p *Processor) phaseOwnership(s *gamestate.State) {
	ratio := p.pirateCaptureRatio()
	for _, w := range s.Worlds {
		mechanics.ResolveOwnership(p.bus, s, ratio, w)
	}
}

// applyJihadBonus is a no-op hook kept for symmetry with the phase list;
// the jihad bonus is folded directly into recordKillScoring during the
// fire phase so it survives rollback along with the rest of that
// phase's mutations.
func (p *Processor) applyJihadBonus(*gamestate.State, map[string]*mechanics.TurnAccumulator) {}

// phaseVisibilityAndBroadcast is §4.6 phase 13: compute each player's
// current view, diff it against their remembered digest, and snapshot
// what's now visible for next turn's "remembered" worlds.
func (p *Processor) phaseVisibilityAndBroadcast(s *gamestate.State, touched visibility.TouchedThisTurn, winner string) *Result {
	deltas := make(map[string]delta.Delta, len(s.Players))
	for _, name := range s.SortedPlayerNames() {
		pl := s.Players[name]
		view := visibility.Compute(s, name, touched)
		visibleIDs := visibility.VisibleWorldIDs(s, name, touched)
		visibleSet := make(map[int]bool, len(visibleIDs))
		for _, id := range visibleIDs {
			visibleSet[id] = true
		}
		visibility.SnapshotKnownWorlds(s, pl, visibleSet)

		scalars := map[string]any{
			"score":          pl.Score,
			"turn":           s.Turn,
			"ready":          pl.Ready,
			"character_type": string(pl.CharacterType),
		}
		deltas[name] = p.deltas.Compute(view, scalars)
	}
	return &Result{Deltas: deltas, Winner: winner}
}
