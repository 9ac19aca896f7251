package mechanics

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lab1702/starweb/internal/config"
	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
	"github.com/lab1702/starweb/internal/gamestate"
)

func newMovementState() *gamestate.State {
	cfg := config.Default()
	s := gamestate.New(cfg, zerolog.Nop())
	s.Worlds[1] = &entities.World{ID: 1, Neighbors: map[int]bool{2: true}, Artifacts: map[int]bool{}}
	s.Worlds[2] = &entities.World{ID: 2, Neighbors: map[int]bool{1: true, 3: true}, Artifacts: map[int]bool{}}
	s.Worlds[3] = &entities.World{ID: 3, Neighbors: map[int]bool{2: true}, Artifacts: map[int]bool{}}
	return s
}

func TestProbeReturnsSelfAndNeighbors(t *testing.T) {
	w := &entities.World{ID: 2, Neighbors: map[int]bool{1: true, 3: true}}
	ids := Probe(w)
	if len(ids) != 3 {
		t.Fatalf("got %v, want 3 ids", ids)
	}
}

func TestApplyMovementRelocatesFleetAlongPath(t *testing.T) {
	s := newMovementState()
	bus := eventbus.New(zerolog.Nop())
	fleet := &entities.Fleet{ID: 1, Owner: "Alice", World: 1, Ships: 5, PendingMovePath: []int{2, 3}}

	ApplyMovement(bus, s, rand.New(rand.NewSource(1)), fleet)

	if fleet.World != 3 || !fleet.Moved {
		t.Fatalf("got World=%d Moved=%v, want World=3 Moved=true", fleet.World, fleet.Moved)
	}
	if fleet.PendingMovePath != nil {
		t.Fatal("PendingMovePath should be cleared after movement")
	}
}

func TestApplyMovementDestroysFleetAtBlackHoleButPreservesKey(t *testing.T) {
	s := newMovementState()
	s.Worlds[2].IsBlackHole = true
	bus := eventbus.New(zerolog.Nop())
	fleet := &entities.Fleet{ID: 1, Owner: "Alice", World: 1, Ships: 5, Cargo: 3, Artifacts: map[int]bool{9: true}, PendingMovePath: []int{2}}

	ApplyMovement(bus, s, rand.New(rand.NewSource(2)), fleet)

	if fleet.Ships != 0 || fleet.Cargo != 0 {
		t.Fatalf("got Ships=%d Cargo=%d, want both 0", fleet.Ships, fleet.Cargo)
	}
	if fleet.Owner != "Alice" {
		t.Fatal("ownership of the key must survive a black hole")
	}
	if !fleet.Artifacts[9] {
		t.Fatal("artifacts must be preserved through a black hole")
	}
	if s.Worlds[fleet.World].IsBlackHole {
		t.Fatal("fleet must not respawn on a black hole")
	}
}

func TestApplyMovementAmbushTruncatesPathAndFires(t *testing.T) {
	s := newMovementState()
	bus := eventbus.New(zerolog.Nop())
	ambusher := &entities.Fleet{ID: 2, Owner: "Bob", World: 2, Ships: 8, IsAmbushing: true}
	s.Fleets[2] = ambusher
	mover := &entities.Fleet{ID: 1, Owner: "Alice", World: 1, Ships: 10, PendingMovePath: []int{2, 3}}

	ApplyMovement(bus, s, rand.New(rand.NewSource(3)), mover)

	if mover.World != 2 {
		t.Fatalf("path should truncate at the ambush world, got World=%d", mover.World)
	}
	if mover.Ships != 0 { // 10 - 2*ceil(10/2) = 0, matches §8 scenario 2
		t.Fatalf("mover ships = %d, want 0 after ambush", mover.Ships)
	}
	if ambusher.IsAmbushing {
		t.Fatal("ambusher's IsAmbushing flag should clear after triggering")
	}
}

func TestApplyMovementAtPeaceFleetIgnoresAmbush(t *testing.T) {
	s := newMovementState()
	bus := eventbus.New(zerolog.Nop())
	ambusher := &entities.Fleet{ID: 2, Owner: "Bob", World: 2, Ships: 10, IsAmbushing: true}
	s.Fleets[2] = ambusher
	mover := &entities.Fleet{ID: 1, Owner: "Alice", World: 1, Ships: 6, AtPeace: true, PendingMovePath: []int{2, 3}}

	ApplyMovement(bus, s, rand.New(rand.NewSource(4)), mover)

	if mover.World != 3 {
		t.Fatalf("at-peace fleet should pass through to the end of its path, got World=%d", mover.World)
	}
	if mover.Ships != 6 {
		t.Fatalf("at-peace fleet should take no casualties, got Ships=%d", mover.Ships)
	}
}
