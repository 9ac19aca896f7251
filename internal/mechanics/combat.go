// Package mechanics implements the step bodies of §4.6's phases:
// combat, movement+ambush, production, ownership resolution, cargo,
// builds, artifacts, plunder, conversion, robots, and PBB drops. Each
// function mutates gamestate.State directly and publishes events through
// an eventbus.Bus; none of them hold a lock themselves — the caller
// (turn.Processor) runs entirely inside the engine goroutine.
package mechanics

import (
	"math"

	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
	"github.com/lab1702/starweb/internal/gamestate"
)

// ceilHalf computes ceil(ships/2), the casualty formula for fleet-vs-
// fleet combat (§4.6 phase 7, §8 scenario 3).
func ceilHalf(ships int) int {
	return int(math.Ceil(float64(ships) / 2))
}

// clampNonNegative returns 0 for any negative input, the "ships clamp at
// 0" rule of §4.6 phase 7.
func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// FireAtFleet resolves one attacker's shot at defender (§4.6 phase 7, §8
// scenario 3): one-directional damage to the defender only, ceil(attacker's
// ships / 2). attackerShips is a caller-supplied snapshot of the attacker's
// ship count rather than attacker.Ships itself, so two mutual FireAtFleet
// orders queued against each other this phase each resolve off the
// pre-phase count instead of one order's damage compounding into the
// other's. Ambush instead bases damage on the defender's own ship count,
// doubled, and the attacker takes no casualties from this call; callers
// pass ambush=true only when attacker is a pre-declared, untriggered
// ambusher at this world intercepting an arriving fleet (§4.6 phase 8
// calls this path, not phase 7 directly).
func FireAtFleet(bus *eventbus.Bus, world int, attacker, defender *entities.Fleet, attackerShips int, ambush bool) {
	damage := ceilHalf(attackerShips)
	if ambush {
		damage = 2 * ceilHalf(defender.Ships)
	}

	defender.Ships = clampNonNegative(defender.Ships - damage)

	bus.Publish(eventbus.Event{
		Kind: eventbus.Combat,
		Payload: eventbus.CombatPayload{
			World: world, AttackerFleet: attacker.ID, AttackerOwner: attacker.Owner,
			DefenderFleet: defender.ID, DefenderOwner: defender.Owner,
			AttackerCasualties: 0, DefenderCasualties: damage,
			Target: "fleet", Ambush: ambush,
		},
		Observers: []string{attacker.Owner, defender.Owner},
	})
}

// FireAtWorldTarget resolves a FireAtTarget order (§4.6 phase 7): shots
// first hit the named defensive garrison (PShips for target P, IShips
// for target I), with any remainder applying to the stated target
// (population/industry, or all homeworld fleets for H, or convert
// population for C).
func FireAtWorldTarget(bus *eventbus.Bus, s *gamestate.State, attacker *entities.Fleet, world *entities.World, target entities.FireTarget) {
	shots := attacker.Ships
	var casualties int

	switch target {
	case entities.FireP:
		hit := min(shots, world.PShips)
		world.PShips -= hit
		shots -= hit
		casualties = hit
		if shots > 0 {
			popLoss := min(shots, world.Population)
			world.Population -= popLoss
			casualties += popLoss
		}
	case entities.FireI:
		hit := min(shots, world.IShips)
		world.IShips -= hit
		shots -= hit
		casualties = hit
		if shots > 0 {
			indLoss := min(shots, world.Industry)
			world.Industry -= indLoss
			casualties += indLoss
		}
	case entities.FireH:
		for _, f := range s.FleetsAt(world.ID) {
			if f.World == world.ID && world.Key != "" {
				loss := min(f.Ships, shots)
				f.Ships -= loss
				shots -= loss
				casualties += loss
				if shots <= 0 {
					break
				}
			}
		}
	case entities.FireC:
		if world.PopulationType == entities.PopulationConvert {
			loss := min(shots, world.Population)
			world.Population -= loss
			casualties = loss
		}
	}

	bus.Publish(eventbus.Event{
		Kind: eventbus.Combat,
		Payload: eventbus.CombatPayload{
			World: world.ID, AttackerFleet: attacker.ID, AttackerOwner: attacker.Owner,
			AttackerCasualties: 0, DefenderCasualties: casualties,
			Target: string(target),
		},
		Observers: []string{attacker.Owner, world.Owner},
	})
}
