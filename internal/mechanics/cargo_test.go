package mechanics

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
)

func TestCargoPerShipUsesConfiguredValueWhenPositive(t *testing.T) {
	if got := CargoPerShip(entities.Merchant, 7.0); got != 7 {
		t.Fatalf("got %d, want 7", got)
	}
}

func TestCargoPerShipDefaultsByCharacter(t *testing.T) {
	if got := CargoPerShip(entities.Merchant, 0); got != 3 {
		t.Fatalf("Merchant default = %d, want 3", got)
	}
	if got := CargoPerShip(entities.EmpireBuilder, 0); got != 2 {
		t.Fatalf("default = %d, want 2", got)
	}
}

func TestLoadCargoCapsByFreeCapacityAndPopulation(t *testing.T) {
	w := &entities.World{Population: 5}
	f := &entities.Fleet{Cargo: 8}

	n := LoadCargo(w, f, 10, -1)
	if n != 2 { // free = 10-8=2, population=5, min=2
		t.Fatalf("n = %d, want 2", n)
	}
	if w.Population != 3 || f.Cargo != 10 {
		t.Fatalf("got Population=%d Cargo=%d", w.Population, f.Cargo)
	}
}

func TestUnloadCargoCapsByWorldRoom(t *testing.T) {
	w := &entities.World{Population: 95, Limit: 100}
	f := &entities.Fleet{Cargo: 20}

	n := UnloadCargo(w, f, -1)
	if n != 5 {
		t.Fatalf("n = %d, want 5", n)
	}
	if w.Population != 100 || f.Cargo != 15 {
		t.Fatalf("got Population=%d Cargo=%d", w.Population, f.Cargo)
	}
}

func TestJettisonCargoDiscardsWithoutDestination(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	f := &entities.Fleet{ID: 1, Owner: "Alice", Cargo: 10}

	n := JettisonCargo(bus, f, 4)
	if n != 4 || f.Cargo != 6 {
		t.Fatalf("got n=%d Cargo=%d, want 4,6", n, f.Cargo)
	}
}

func TestUnloadConsumerGoodsCapsByDoubleIndustry(t *testing.T) {
	w := &entities.World{Industry: 3}
	f := &entities.Fleet{Cargo: 20}

	n := UnloadConsumerGoods(w, f, -1)
	if n != 6 {
		t.Fatalf("n = %d, want 6 (industry*2)", n)
	}
	if w.Metal != 6 || f.Cargo != 14 {
		t.Fatalf("got Metal=%d Cargo=%d", w.Metal, f.Cargo)
	}
}

func TestConsumerGoodsScoreLadder(t *testing.T) {
	cases := []struct{ n, want int }{{1, 10}, {2, 8}, {5, 1}, {6, 0}}
	for _, c := range cases {
		if got := ConsumerGoodsScore(c.n); got != c.want {
			t.Fatalf("ConsumerGoodsScore(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestTransferShipsMovesShipsAndProportionalCargo(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	src := &entities.Fleet{Ships: 10, Cargo: 10}
	dstShips, dstCargo := 0, 0

	TransferShips(bus, src, &dstShips, &dstCargo, 100, 4)

	if src.Ships != 6 || src.Cargo != 6 {
		t.Fatalf("src = %+v", src)
	}
	if dstShips != 4 || dstCargo != 4 {
		t.Fatalf("got dstShips=%d dstCargo=%d", dstShips, dstCargo)
	}
}

func TestTransferShipsJettisonsCargoExceedingDestinationCapacity(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	src := &entities.Fleet{Ships: 10, Cargo: 10}
	dstShips, dstCargo := 0, 5

	TransferShips(bus, src, &dstShips, &dstCargo, 8, 10)

	if dstCargo != 8 {
		t.Fatalf("dstCargo = %d, want capped at 8", dstCargo)
	}
}
