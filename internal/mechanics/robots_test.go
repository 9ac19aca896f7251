package mechanics

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
)

func TestRobotAttackKillsPopulationOneForOne(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	f := &entities.Fleet{ID: 1, Owner: "Zed", Ships: 5}
	w := &entities.World{ID: 1, Owner: "Bob", Population: 20}

	killed := RobotAttack(bus, f, w)

	if killed != 5 || w.Population != 15 {
		t.Fatalf("got killed=%d Population=%d, want 5,15", killed, w.Population)
	}
}

func TestRobotAttackSparesRobotWorlds(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	f := &entities.Fleet{ID: 1, Owner: "Zed", Ships: 5}
	w := &entities.World{ID: 1, Owner: "Bob", Population: 20, PopulationType: entities.PopulationRobot}

	killed := RobotAttack(bus, f, w)

	if killed != 0 || w.Population != 20 {
		t.Fatalf("got killed=%d Population=%d, want 0,20", killed, w.Population)
	}
}

func TestRobotAttackCapsAtAvailablePopulation(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	f := &entities.Fleet{ID: 1, Owner: "Zed", Ships: 50}
	w := &entities.World{ID: 1, Owner: "Bob", Population: 3}

	killed := RobotAttack(bus, f, w)

	if killed != 3 || w.Population != 0 {
		t.Fatalf("got killed=%d Population=%d, want 3,0", killed, w.Population)
	}
}
