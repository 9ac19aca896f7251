package mechanics

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
)

func TestFireAtFleetDamagesDefenderOnly(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	attacker := &entities.Fleet{ID: 1, Owner: "Alice", Ships: 10}
	defender := &entities.Fleet{ID: 2, Owner: "Bob", Ships: 7}

	FireAtFleet(bus, 1, attacker, defender, attacker.Ships, false)

	if attacker.Ships != 10 {
		t.Fatalf("attacker ships = %d, want 10 (one-directional fire leaves attacker untouched)", attacker.Ships)
	}
	if defender.Ships != 2 { // 7 - ceil(10/2)=5
		t.Fatalf("defender ships = %d, want 2", defender.Ships)
	}
}

func TestFireAtFleetClampsDefenderAtZero(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	attacker := &entities.Fleet{ID: 1, Owner: "Alice", Ships: 20}
	defender := &entities.Fleet{ID: 2, Owner: "Bob", Ships: 1}

	FireAtFleet(bus, 1, attacker, defender, attacker.Ships, false)

	if defender.Ships != 0 {
		t.Fatalf("defender ships = %d, want 0 (clamped)", defender.Ships)
	}
}

func TestFireAtFleetAmbushUsesDefendersOwnShipCount(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	attacker := &entities.Fleet{ID: 1, Owner: "Bob", Ships: 8} // ambusher
	defender := &entities.Fleet{ID: 2, Owner: "Alice", Ships: 10} // arriving mover

	FireAtFleet(bus, 1, attacker, defender, attacker.Ships, true)

	if attacker.Ships != 8 {
		t.Fatalf("ambushing attacker should take no casualties, got %d", attacker.Ships)
	}
	if defender.Ships != 0 { // 10 - 2*ceil(10/2) = 0
		t.Fatalf("defender ships = %d, want 0", defender.Ships)
	}
}

func TestFireAtWorldTargetIHitsDefenseThenIndustry(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	attacker := &entities.Fleet{ID: 1, Owner: "Alice", Ships: 15}
	world := &entities.World{ID: 1, Owner: "Bob", IShips: 10, Industry: 20}

	FireAtWorldTarget(bus, nil, attacker, world, entities.FireI)

	if world.IShips != 0 {
		t.Fatalf("IShips = %d, want 0", world.IShips)
	}
	if world.Industry != 15 { // 20 - (15-10)
		t.Fatalf("Industry = %d, want 15", world.Industry)
	}
}

func TestFireAtWorldTargetPStopsAtDefenseWhenShotsInsufficient(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	attacker := &entities.Fleet{ID: 1, Owner: "Alice", Ships: 3}
	world := &entities.World{ID: 1, Owner: "Bob", PShips: 10, Population: 100}

	FireAtWorldTarget(bus, nil, attacker, world, entities.FireP)

	if world.PShips != 7 {
		t.Fatalf("PShips = %d, want 7", world.PShips)
	}
	if world.Population != 100 {
		t.Fatalf("Population should be untouched, got %d", world.Population)
	}
}
