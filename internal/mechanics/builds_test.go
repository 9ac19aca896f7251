package mechanics

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
)

func TestBuildIShipsCapsOnScarcestResource(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	costs := DefaultBuildCosts()
	w := &entities.World{ID: 1, Owner: "Alice", Industry: 100, Metal: 5, Population: 100}

	BuildIShips(bus, costs, w, "Alice", 20)

	if w.IShips != 5 {
		t.Fatalf("IShips = %d, want 5 (capped by metal)", w.IShips)
	}
	if w.Metal != 0 {
		t.Fatalf("Metal = %d, want 0", w.Metal)
	}
}

func TestBuildIShipsClaimsNeutralWorld(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	costs := DefaultBuildCosts()
	w := &entities.World{ID: 1, Owner: entities.NeutralOwner, Industry: 10, Metal: 10, Population: 10}

	BuildIShips(bus, costs, w, "Alice", 5)

	if w.Owner != "Alice" {
		t.Fatalf("Owner = %q, want Alice after building on neutral world", w.Owner)
	}
}

func TestBuildIndustryAppliesEmpireBuilderDiscount(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	costs := DefaultBuildCosts()

	regular := &entities.World{ID: 1, Owner: "Bob", Industry: 100, Metal: 100, Population: 100}
	BuildIndustry(bus, costs, regular, false, 1)

	eb := &entities.World{ID: 2, Owner: "Alice", Industry: 100, Metal: 100, Population: 100}
	BuildIndustry(bus, costs, eb, true, 1)

	regularSpent := 100 - regular.Metal
	ebSpent := 100 - eb.Metal
	if ebSpent >= regularSpent {
		t.Fatalf("empire builder spent %d metal, want less than regular's %d", ebSpent, regularSpent)
	}
}

func TestBuildToFleetTransfersOwnershipAndLocation(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	costs := DefaultBuildCosts()
	w := &entities.World{ID: 5, Owner: "Alice", Industry: 10, Metal: 10, Population: 10}
	f := &entities.Fleet{ID: 3, Owner: entities.NeutralOwner, World: 0, Ships: 0}

	BuildToFleet(bus, costs, w, f, 5)

	if f.Owner != "Alice" || f.World != 5 || f.Ships != 5 {
		t.Fatalf("got %+v", f)
	}
}

func TestBuildRobotsYieldsDoublePopulationAndSetsType(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	costs := DefaultBuildCosts()
	w := &entities.World{ID: 1, Owner: "Zed", Industry: 10, Metal: 10}

	BuildRobots(bus, costs, w, 10)

	if w.Population != 20 {
		t.Fatalf("Population = %d, want 20 (2x yield)", w.Population)
	}
	if w.PopulationType != entities.PopulationRobot {
		t.Fatal("world should become a robot population after BuildRobots")
	}
}

func TestDropPBBNeutralizesWorldAndConsumesPBB(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	f := &entities.Fleet{ID: 1, Owner: "Alice", HasPBB: true}
	w := &entities.World{ID: 1, Owner: "Bob", Population: 100, Industry: 50, Mines: 10}

	DropPBB(bus, nil, f, w)

	if f.HasPBB {
		t.Fatal("PBB should be consumed")
	}
	if w.Population != 0 || w.Industry != 0 || w.Mines != 0 || w.Owner != entities.NeutralOwner {
		t.Fatalf("got %+v", w)
	}
}

func TestScrapFleetShipsRefundsHalfMetal(t *testing.T) {
	costs := DefaultBuildCosts()
	w := &entities.World{ID: 1, Metal: 0}
	f := &entities.Fleet{ID: 1, Ships: 10}

	n := ScrapFleetShips(costs, w, f, 4)

	if n != 4 || f.Ships != 6 {
		t.Fatalf("got n=%d Ships=%d, want 4,6", n, f.Ships)
	}
	if w.Metal != 2 {
		t.Fatalf("Metal refund = %d, want 2", w.Metal)
	}
}

func TestScrapFleetShipsZeroMeansWholeFleet(t *testing.T) {
	costs := DefaultBuildCosts()
	f := &entities.Fleet{ID: 1, Ships: 7}

	n := ScrapFleetShips(costs, nil, f, 0)

	if n != 7 || f.Ships != 0 {
		t.Fatalf("got n=%d Ships=%d, want 7,0", n, f.Ships)
	}
}

func TestScrapWorldShipsPrefersIShipsBeforePShips(t *testing.T) {
	costs := DefaultBuildCosts()
	w := &entities.World{ID: 1, IShips: 3, PShips: 5}

	n := ScrapWorldShips(costs, w, 6)

	if n != 6 {
		t.Fatalf("n = %d, want 6", n)
	}
	if w.IShips != 0 || w.PShips != 2 {
		t.Fatalf("got IShips=%d PShips=%d, want 0,2", w.IShips, w.PShips)
	}
}
