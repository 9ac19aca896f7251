package mechanics

import (
	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
)

// CargoPerShip returns the per-ship cargo capacity multiplier for a
// character type (§3 Fleet.cargo capacity rule). Values mirror a
// reasonable default table; ConfigSchema may override per character via
// characters.<Name>.cargo_capacity_multiplier.
func CargoPerShip(c entities.CharacterType, configured float64) int {
	if configured > 0 {
		return int(configured)
	}
	if c == entities.Merchant {
		return 3
	}
	return 2
}

// LoadCargo loads population from a world into a fleet's cargo hold,
// capped by min(free_capacity, world_population) (§4.6 phase 5).
func LoadCargo(w *entities.World, f *entities.Fleet, capacity, want int) int {
	free := capacity - f.Cargo
	n := min(free, w.Population)
	if want >= 0 && want < n {
		n = want
	}
	if n <= 0 {
		return 0
	}
	w.Population -= n
	f.Cargo += n
	return n
}

// UnloadCargo unloads cargo onto a world, capped by limit - population
// (§4.6 phase 5).
func UnloadCargo(w *entities.World, f *entities.Fleet, want int) int {
	room := w.Limit - w.Population
	n := min(room, f.Cargo)
	if want >= 0 && want < n {
		n = want
	}
	if n <= 0 {
		return 0
	}
	f.Cargo -= n
	w.Population += n
	return n
}

// JettisonCargo discards cargo overboard with no destination, used both
// for direct JettisonCargo orders and for the excess left over after a
// ship-transfer's capacity shrinks (§4.6 phase 3).
func JettisonCargo(bus *eventbus.Bus, f *entities.Fleet, want int) int {
	n := f.Cargo
	if want >= 0 && want < n {
		n = want
	}
	if n <= 0 {
		return 0
	}
	f.Cargo -= n
	bus.Publish(eventbus.Event{
		Kind:    eventbus.CargoJettisoned,
		Payload: eventbus.CargoJettisonedPayload{FleetID: f.ID, Owner: f.Owner, Amount: n},
		Observers: []string{f.Owner},
	})
	return n
}

// UnloadConsumerGoods delivers metal-as-consumer-goods cargo to another
// player's world, capped by target_industry*2 (§4.6 phase 5). Returns
// the amount delivered; Merchant scoring consumes this via scoring.go.
func UnloadConsumerGoods(w *entities.World, f *entities.Fleet, want int) int {
	cap := w.Industry * 2
	n := min(cap, f.Cargo)
	if want >= 0 && want < n {
		n = want
	}
	if n <= 0 {
		return 0
	}
	f.Cargo -= n
	w.Metal += n
	return n
}

// ConsumerGoodsScoreTable is §4.11's Merchant consumer-goods ladder:
// 10/8/5/3/1 for the 1st..5th delivery to a given recipient world over
// game history, 0 thereafter.
var ConsumerGoodsScoreTable = []int{10, 8, 5, 3, 1}

// ConsumerGoodsScore returns the ladder value for the nth delivery to a
// world (1-indexed); 0 once n exceeds the table.
func ConsumerGoodsScore(n int) int {
	if n < 1 || n > len(ConsumerGoodsScoreTable) {
		return 0
	}
	return ConsumerGoodsScoreTable[n-1]
}

// TransferShips moves ships between two fleets (or a fleet and a world's
// garrison), moving cargo proportionally and jettisoning any excess that
// doesn't fit the destination's capacity (§4.6 phase 3).
//
//	transferred_cargo = floor(src_cargo * ships_transferred / src_ships)
func TransferShips(bus *eventbus.Bus, src *entities.Fleet, dstShips *int, dstCargo *int, dstCapacity int, shipsTransferred int) {
	if src.Ships <= 0 || shipsTransferred <= 0 {
		return
	}
	if shipsTransferred > src.Ships {
		shipsTransferred = src.Ships
	}
	cargoMoved := (src.Cargo * shipsTransferred) / src.Ships

	src.Ships -= shipsTransferred
	src.Cargo -= cargoMoved
	*dstShips += shipsTransferred
	*dstCargo += cargoMoved

	if *dstCargo > dstCapacity {
		excess := *dstCargo - dstCapacity
		*dstCargo = dstCapacity
		if excess > 0 {
			bus.Publish(eventbus.Event{
				Kind:    eventbus.CargoJettisoned,
				Payload: eventbus.CargoJettisonedPayload{Amount: excess},
			})
		}
	}
}
