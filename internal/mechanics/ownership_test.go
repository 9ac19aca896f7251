package mechanics

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/lab1702/starweb/internal/config"
	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
	"github.com/lab1702/starweb/internal/gamestate"
)

func newOwnershipState() *gamestate.State {
	cfg := config.Default()
	return gamestate.New(cfg, zerolog.Nop())
}

func TestResolveOwnershipRevertsToNeutralWhenPopulationGone(t *testing.T) {
	s := newOwnershipState()
	bus := eventbus.New(zerolog.Nop())
	w := &entities.World{ID: 1, Owner: "Alice", Population: 0}

	ResolveOwnership(bus, s, 2.0, w)

	if w.Owner != entities.NeutralOwner {
		t.Fatalf("Owner = %q, want neutral", w.Owner)
	}
}

func TestResolveOwnershipNeutralWorldCapturedByUndefendedPresence(t *testing.T) {
	s := newOwnershipState()
	s.Fleets[1] = &entities.Fleet{ID: 1, Owner: "Alice", World: 1, Ships: 5}
	bus := eventbus.New(zerolog.Nop())
	w := &entities.World{ID: 1, Owner: entities.NeutralOwner, Population: 10}

	ResolveOwnership(bus, s, 2.0, w)

	if w.Owner != "Alice" {
		t.Fatalf("Owner = %q, want Alice", w.Owner)
	}
}

func TestResolveOwnershipNeutralWorldNotCapturedWhileDefended(t *testing.T) {
	s := newOwnershipState()
	s.Fleets[1] = &entities.Fleet{ID: 1, Owner: "Alice", World: 1, Ships: 5}
	bus := eventbus.New(zerolog.Nop())
	w := &entities.World{ID: 1, Owner: entities.NeutralOwner, Population: 10, IShips: 1}

	ResolveOwnership(bus, s, 2.0, w)

	if w.Owner != entities.NeutralOwner {
		t.Fatalf("Owner = %q, want still neutral while defenses stand", w.Owner)
	}
}

func TestResolveOwnershipPirateAutoCapturesAtRatio(t *testing.T) {
	s := newOwnershipState()
	s.Players["Carol"] = &entities.Player{Name: "Carol", CharacterType: entities.Pirate}
	s.Fleets[1] = &entities.Fleet{ID: 1, Owner: "Alice", World: 1, Ships: 2}
	s.Fleets[2] = &entities.Fleet{ID: 2, Owner: "Carol", World: 1, Ships: 20}
	bus := eventbus.New(zerolog.Nop())
	w := &entities.World{ID: 1, Owner: "Alice", Population: 10}

	ResolveOwnership(bus, s, 2.0, w)

	if w.Owner != "Carol" {
		t.Fatalf("Owner = %q, want Carol (pirate auto-capture)", w.Owner)
	}
}

func TestResolveOwnershipDoesNotFlipWhileOwnerFleetsPresent(t *testing.T) {
	s := newOwnershipState()
	s.Fleets[1] = &entities.Fleet{ID: 1, Owner: "Alice", World: 1, Ships: 5}
	bus := eventbus.New(zerolog.Nop())
	w := &entities.World{ID: 1, Owner: "Alice", Population: 10}

	ResolveOwnership(bus, s, 2.0, w)

	if w.Owner != "Alice" {
		t.Fatalf("Owner = %q, want unchanged Alice", w.Owner)
	}
}

func TestResolveOwnershipCapturesEmptyFleetsCoLocatedWithHostiles(t *testing.T) {
	s := newOwnershipState()
	s.Fleets[1] = &entities.Fleet{ID: 1, Owner: "Alice", World: 1, Ships: 0}
	s.Fleets[2] = &entities.Fleet{ID: 2, Owner: "Bob", World: 1, Ships: 5}
	bus := eventbus.New(zerolog.Nop())
	w := &entities.World{ID: 1, Owner: "Alice", Population: 10}

	ResolveOwnership(bus, s, 2.0, w)

	if s.Fleets[1].Owner != "Bob" {
		t.Fatalf("empty fleet Owner = %q, want captured by Bob", s.Fleets[1].Owner)
	}
}
