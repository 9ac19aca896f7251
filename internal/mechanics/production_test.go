package mechanics

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
)

func TestApplyProductionSkipsNeutralWorlds(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	w := &entities.World{ID: 1, Owner: entities.NeutralOwner, Industry: 10, Mines: 5, Population: 50, Limit: 100}

	ApplyProduction(bus, ProductionParams{MetalPerMine: 2, GrowthRate: 0.1}, w)

	if w.Metal != 0 || w.Population != 50 {
		t.Fatalf("neutral world should not produce, got Metal=%d Population=%d", w.Metal, w.Population)
	}
}

func TestApplyProductionAccruesMetalFromEffectiveMines(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	w := &entities.World{ID: 1, Owner: "Alice", Industry: 10, Mines: 20, Population: 50, Limit: 100}

	ApplyProduction(bus, ProductionParams{MetalPerMine: 3, GrowthRate: 0}, w)

	// effective_industry = min(10,50) = 10; effective_mines = min(20,10) = 10
	if w.Metal != 30 {
		t.Fatalf("Metal = %d, want 30", w.Metal)
	}
}

func TestApplyProductionGrowsPopulationTowardLimit(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	w := &entities.World{ID: 1, Owner: "Alice", Industry: 0, Mines: 0, Population: 50, Limit: 100}

	ApplyProduction(bus, ProductionParams{MetalPerMine: 0, GrowthRate: 0.5}, w)

	if w.Population != 75 {
		t.Fatalf("Population = %d, want 75", w.Population)
	}
}

func TestApplyProductionNeverExceedsLimit(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	w := &entities.World{ID: 1, Owner: "Alice", Industry: 0, Mines: 0, Population: 98, Limit: 100}

	ApplyProduction(bus, ProductionParams{MetalPerMine: 0, GrowthRate: 0.9}, w)

	if w.Population > w.Limit {
		t.Fatalf("Population = %d exceeds Limit = %d", w.Population, w.Limit)
	}
}
