package turn

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lab1702/starweb/internal/config"
	"github.com/lab1702/starweb/internal/delta"
	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
	"github.com/lab1702/starweb/internal/gamestate"
	"github.com/lab1702/starweb/internal/order"
)

func newProcessorFixture() (*Processor, *gamestate.State) {
	cfg := config.Default()
	s := gamestate.New(cfg, zerolog.Nop())
	s.Turn = 1
	s.TargetScore = 1_000_000

	s.Worlds[1] = &entities.World{ID: 1, Owner: "Alice", Key: "Alice", Population: 100, Industry: 50, Metal: 50, Limit: 500, Neighbors: map[int]bool{2: true}, Artifacts: map[int]bool{}}
	s.Worlds[2] = &entities.World{ID: 2, Owner: entities.NeutralOwner, Population: 10, Limit: 100, Neighbors: map[int]bool{1: true}, Artifacts: map[int]bool{}}

	s.Fleets[1] = &entities.Fleet{ID: 1, Owner: "Alice", World: 1, Ships: 5, Artifacts: map[int]bool{}}

	s.Players["Alice"] = &entities.Player{Name: "Alice", CharacterType: entities.EmpireBuilder, HomeWorld: 1, Relations: map[string]entities.RelationKind{}, KnownWorlds: map[int]entities.WorldSnapshot{}, PerTurnCounters: map[string]int{}}

	bus := eventbus.New(zerolog.Nop())
	deltas := delta.New()
	rng := rand.New(rand.NewSource(1))
	return NewProcessor(cfg, bus, deltas, rng, zerolog.Nop()), s
}

func TestProcessMovesFleetAndProducesDelta(t *testing.T) {
	p, s := newProcessorFixture()
	order.For(s.Players["Alice"]).Append(entities.Order{Kind: entities.OrderMove, Fleet: 1, Path: []int{2}})

	result, err := p.Process(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RolledBack {
		t.Fatal("turn should not roll back for a valid move")
	}
	if s.Fleets[1].World != 2 {
		t.Fatalf("fleet World = %d, want 2", s.Fleets[1].World)
	}
	if _, ok := result.Deltas["Alice"]; !ok {
		t.Fatal("expected a delta entry for Alice")
	}
}

func TestProcessBuildConsumesResourcesAndClaimsNeutralWorld(t *testing.T) {
	p, s := newProcessorFixture()
	s.Worlds[2].Industry = 10
	s.Worlds[2].Metal = 10
	s.Worlds[2].Population = 10
	s.Fleets[1].World = 2
	s.Fleets[1].Owner = entities.NeutralOwner

	order.For(s.Players["Alice"]).Append(entities.Order{Kind: entities.OrderBuildIShips, World: 2, Count: 5})

	if _, err := p.Process(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Worlds[2].Owner != "Alice" {
		t.Fatalf("world 2 Owner = %q, want Alice after building ships there", s.Worlds[2].Owner)
	}
	if s.Worlds[2].IShips != 5 {
		t.Fatalf("IShips = %d, want 5", s.Worlds[2].IShips)
	}
}

func TestProcessAdvancesEmpireBuilderScore(t *testing.T) {
	p, s := newProcessorFixture()

	if _, err := p.Process(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	alice := s.Players["Alice"]
	if alice.Score <= 0 {
		t.Fatalf("Score = %d, want positive growth from owned population/industry", alice.Score)
	}
}

func TestProcessResetsPerTurnFlagsAfterRun(t *testing.T) {
	p, s := newProcessorFixture()
	s.Players["Alice"].Ready = true
	order.For(s.Players["Alice"]).Append(entities.Order{Kind: entities.OrderMove, Fleet: 1, Path: []int{2}})

	if _, err := p.Process(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Players["Alice"].Ready {
		t.Fatal("Ready should reset to false after a turn resolves")
	}
	if s.Players["Alice"].Orders != nil {
		t.Fatal("queued orders should clear after a turn resolves")
	}
}

func TestProcessFireAtConvertWorldCreditsOwningApostleMartyr(t *testing.T) {
	p, s := newProcessorFixture()
	s.Worlds[2].Owner = "Carol"
	s.Worlds[2].PopulationType = entities.PopulationConvert
	s.Worlds[2].Population = 10
	s.Fleets[1].World = 2
	s.Players["Carol"] = &entities.Player{Name: "Carol", CharacterType: entities.Apostle, HomeWorld: 2, Relations: map[string]entities.RelationKind{}, KnownWorlds: map[int]entities.WorldSnapshot{}, PerTurnCounters: map[string]int{}}

	order.For(s.Players["Alice"]).Append(entities.Order{Kind: entities.OrderFireAtTarget, Fleet: 1, Target: entities.FireC})

	if _, err := p.Process(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	carol := s.Players["Carol"]
	found := false
	for _, e := range carol.ScoreLedger {
		if e.Reason == "apostle_martyrs" {
			found = true
			if e.Delta <= 0 {
				t.Fatalf("apostle_martyrs delta = %d, want positive", e.Delta)
			}
		}
	}
	if !found {
		t.Fatal("expected a martyr credit on Carol's ledger after her convert population was killed by another player")
	}
}

func TestProcessDeclareRelationRecordsRelationBeforeRollback(t *testing.T) {
	p, s := newProcessorFixture()
	s.Players["Bob"] = &entities.Player{Name: "Bob", CharacterType: entities.Pirate, Relations: map[string]entities.RelationKind{}, KnownWorlds: map[int]entities.WorldSnapshot{}, PerTurnCounters: map[string]int{}}
	order.For(s.Players["Alice"]).Append(entities.Order{Kind: entities.OrderDeclareRelation, Relation: entities.RelationAlly, PlayerArg: "Bob"})

	if _, err := p.Process(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Players["Alice"].Relations["Bob"] != entities.RelationAlly {
		t.Fatalf("got %+v, want Ally relation recorded", s.Players["Alice"].Relations)
	}
}
