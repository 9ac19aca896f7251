package mechanics

import (
	"math/rand"

	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
	"github.com/lab1702/starweb/internal/gamestate"
)

// Probe implements the Probe order: a stationary sensor sweep of the
// fleet's current world and every directly connected neighbor,
// returning the world IDs the owner should see as touched this turn
// without the fleet actually moving.
func Probe(w *entities.World) []int {
	ids := make([]int, 0, len(w.Neighbors)+1)
	ids = append(ids, w.ID)
	for n := range w.Neighbors {
		ids = append(ids, n)
	}
	return ids
}

// ApplyMovement walks fleet's PendingMovePath hop by hop (§4.6 phase 8).
// At each hop: a black hole destroys ships/cargo and relocates the
// fleet's artifacts to a freshly respawned key at a random
// non-black-hole world (§8 scenario 6); an ambusher waiting at the next
// world truncates the remaining path there, after resolving combat via
// FireAtFleet with ambush=true; otherwise the fleet relocates and is
// marked Moved. An at-peace fleet can neither trigger nor be stopped by
// an ambush (§4.6 phase 8).
func ApplyMovement(bus *eventbus.Bus, s *gamestate.State, rng *rand.Rand, fleet *entities.Fleet) {
	path := fleet.PendingMovePath
	fleet.PendingMovePath = nil
	if fleet.Ships <= 0 {
		return
	}

	for _, next := range path {
		w, ok := s.Worlds[next]
		if !ok {
			break
		}

		if w.IsBlackHole {
			destroyAtBlackHole(bus, s, rng, fleet, w)
			return
		}

		if !fleet.AtPeace {
			if ambusher := findTriggeringAmbush(s, fleet, w); ambusher != nil {
				FireAtFleet(bus, w.ID, ambusher, fleet, ambusher.Ships, true)
				fleet.World = w.ID
				fleet.Moved = true
				ambusher.IsAmbushing = false
				return
			}
		}

		fleet.World = w.ID
		fleet.Moved = true
	}

	if len(path) > 0 {
		bus.Publish(eventbus.Event{
			Kind: eventbus.FleetMoved,
			Payload: eventbus.FleetMovedPayload{
				FleetID: fleet.ID, Owner: fleet.Owner,
				From: path[0], To: fleet.World,
			},
			Observers: []string{fleet.Owner},
		})
	}
}

// findTriggeringAmbush returns an enemy fleet at w with an active Ambush
// order whose no-ambush scope does not exclude w, or nil if none
// applies. Ambush never triggers against an at-peace mover (checked by
// the caller) nor does an ambusher with NoAmbushGlobal or w in
// NoAmbushWorlds trigger (§4.6 phase 8, NoAmbush order semantics).
func findTriggeringAmbush(s *gamestate.State, mover *entities.Fleet, w *entities.World) *entities.Fleet {
	for _, f := range s.FleetsAt(w.ID) {
		if f.Owner == mover.Owner || !f.IsAmbushing || f.AtPeace {
			continue
		}
		if f.NoAmbushGlobal || f.NoAmbushWorlds[w.ID] {
			continue
		}
		return f
	}
	return nil
}

// destroyAtBlackHole implements §4.6 phase 8 + §3's black-hole
// invariant: ships and cargo are destroyed, artifacts are preserved by
// relocating the fleet's key to a freshly chosen non-black-hole world
// with zeroed ships/cargo (§8 scenario 6).
func destroyAtBlackHole(bus *eventbus.Bus, s *gamestate.State, rng *rand.Rand, fleet *entities.Fleet, hole *entities.World) {
	shipsLost := fleet.Ships
	cargoLost := fleet.Cargo

	var candidates []int
	for id, w := range s.Worlds {
		if !w.IsBlackHole {
			candidates = append(candidates, id)
		}
	}
	respawn := hole.ID
	if len(candidates) > 0 {
		respawn = candidates[rng.Intn(len(candidates))]
	}

	// Ownership of the key survives a black hole; only ships, cargo, and
	// per-turn combat flags are zeroed (§8 scenario 6: "F1's key
	// respawned", still Alice's fleet).
	fleet.HasPBB = false
	fleet.IsAmbushing = false
	fleet.ConditionalFireTarget = nil
	s.RespawnKeyAt(fleet.ID, respawn)

	bus.Publish(eventbus.Event{
		Kind: eventbus.BlackHoleDestruction,
		Payload: eventbus.BlackHoleDestructionPayload{
			FleetID: fleet.ID, Owner: fleet.Owner, BlackHole: hole.ID,
			RespawnedAt: respawn, ShipsLost: shipsLost, CargoLost: cargoLost,
		},
		Observers: []string{fleet.Owner},
	})
}
