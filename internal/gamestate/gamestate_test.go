package gamestate

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lab1702/starweb/internal/config"
	"github.com/lab1702/starweb/internal/entities"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	cfg := config.Default()
	s := New(cfg, zerolog.Nop())
	s.InitMap(1, 20)
	return s
}

func TestInitMapConnectsEveryWorld(t *testing.T) {
	s := newTestState(t)
	seen := map[int]bool{}
	var stack []int
	for id := range s.Worlds {
		stack = append(stack, id)
		break
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		for n := range s.Worlds[id].Neighbors {
			if !seen[n] {
				stack = append(stack, n)
			}
		}
	}
	if len(seen) != len(s.Worlds) {
		t.Fatalf("reached %d of %d worlds, graph is not connected", len(seen), len(s.Worlds))
	}
}

func TestInitMapRespectsConnectionBounds(t *testing.T) {
	s := newTestState(t)
	min := s.Config.Worlds.MinConnections
	max := s.Config.Worlds.MaxConnections
	for id, w := range s.Worlds {
		if len(w.Neighbors) < min || len(w.Neighbors) > max {
			t.Fatalf("world %d has %d neighbors, want [%d,%d]", id, len(w.Neighbors), min, max)
		}
	}
}

func TestAllocateHomeworldAvoidsBlackHoleAdjacency(t *testing.T) {
	s := newTestState(t)
	rng := rand.New(rand.NewSource(2))
	id := s.AllocateHomeworld(rng, "Alice")
	if id == 0 {
		t.Fatal("expected a homeworld to be allocated")
	}
	if adjacentToBlackHole(s, id) {
		t.Fatalf("homeworld %d is adjacent to a black hole", id)
	}
	if s.Worlds[id].Key != "Alice" {
		t.Fatalf("homeworld %d not keyed to Alice", id)
	}
}

func TestAllocateHomeworldKeepsTwoHopSeparation(t *testing.T) {
	s := newTestState(t)
	rng := rand.New(rand.NewSource(3))
	first := s.AllocateHomeworld(rng, "Alice")
	second := s.AllocateHomeworld(rng, "Bob")
	if first == 0 || second == 0 {
		t.Fatal("expected both homeworlds to be allocated")
	}
	if s.Worlds[first].Neighbors[second] {
		t.Fatalf("homeworlds %d and %d are adjacent", first, second)
	}
}

func TestPlaceArtifactsSkipsExcessWithWarning(t *testing.T) {
	s := newTestState(t)
	rng := rand.New(rand.NewSource(4))
	defs := make([]entities.Artifact, len(s.Worlds)+5)
	for i := range defs {
		defs[i] = entities.Artifact{ID: i + 1, Name: "thing"}
	}
	warning := s.PlaceArtifacts(rng, defs)
	if warning == "" {
		t.Fatal("expected a warning when artifacts exceed eligible worlds")
	}
}

func TestPlaceArtifactsNeverOnHomeworlds(t *testing.T) {
	s := newTestState(t)
	rng := rand.New(rand.NewSource(5))
	s.AllocateHomeworld(rng, "Alice")
	defs := []entities.Artifact{{ID: 1, Name: "thing"}}
	s.PlaceArtifacts(rng, defs)
	for id, w := range s.Worlds {
		if w.Key != "" && w.Artifacts[1] {
			t.Fatalf("artifact placed on homeworld %d", id)
		}
	}
}

func TestCheckInvariantsRejectsNegativeResource(t *testing.T) {
	s := newTestState(t)
	for _, w := range s.Worlds {
		w.Population = -1
		break
	}
	if err := s.CheckInvariants(); err == nil {
		t.Fatal("expected invariant violation for negative population")
	}
}

func TestCheckInvariantsRejectsPopulationOverLimit(t *testing.T) {
	s := newTestState(t)
	for _, w := range s.Worlds {
		w.Limit = 10
		w.Population = 20
		break
	}
	if err := s.CheckInvariants(); err == nil {
		t.Fatal("expected invariant violation for population exceeding limit")
	}
}

func TestCheckInvariantsRejectsDuplicateArtifact(t *testing.T) {
	s := newTestState(t)
	s.Artifacts[1] = &entities.Artifact{ID: 1, Name: "dup"}
	var w1, w2 *entities.World
	for _, w := range s.Worlds {
		if w1 == nil {
			w1 = w
		} else if w2 == nil {
			w2 = w
			break
		}
	}
	w1.Artifacts[1] = true
	w2.Artifacts[1] = true
	if err := s.CheckInvariants(); err == nil {
		t.Fatal("expected invariant violation for artifact present in two locations")
	}
}

func TestCheckInvariantsRejectsDoubleExclusiveOrder(t *testing.T) {
	s := newTestState(t)
	s.Players["Alice"] = &entities.Player{Name: "Alice", Orders: []entities.Order{
		{Kind: entities.OrderMove, Fleet: 1, Path: []int{2}},
		{Kind: entities.OrderFireAtTarget, Fleet: 1, Target: entities.FireI},
	}}
	if err := s.CheckInvariants(); err == nil {
		t.Fatal("expected invariant violation for two exclusive orders on the same fleet")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestState(t)
	rng := rand.New(rand.NewSource(6))
	hw := s.AllocateHomeworld(rng, "Alice")
	s.Players["Alice"] = &entities.Player{
		Name: "Alice", CharacterType: entities.EmpireBuilder, HomeWorld: hw,
		Relations: map[string]entities.RelationKind{"Bob": entities.RelationAlly},
		ScoreLedger: []entities.ScoreEntry{{Turn: 1, Reason: "conquest", Delta: 100}},
	}
	s.Fleets[1].Owner = "Alice"
	s.Fleets[1].World = hw
	s.Fleets[1].Ships = 5

	snap := s.Export()

	restored := New(s.Config, zerolog.Nop())
	restored.Import(snap)

	if restored.Turn != s.Turn || restored.RNGSeed != s.RNGSeed {
		if restored.Turn != s.Turn {
			t.Fatalf("Turn = %d, want %d", restored.Turn, s.Turn)
		}
	}
	if len(restored.Worlds) != len(s.Worlds) {
		t.Fatalf("Worlds count = %d, want %d", len(restored.Worlds), len(s.Worlds))
	}
	rp, ok := restored.Players["Alice"]
	if !ok {
		t.Fatal("expected Alice to round-trip")
	}
	if rp.HomeWorld != hw || rp.Relations["Bob"] != entities.RelationAlly {
		t.Fatalf("got %+v", rp)
	}
	if len(rp.ScoreLedger) != 1 || rp.ScoreLedger[0].Delta != 100 {
		t.Fatalf("score ledger = %+v", rp.ScoreLedger)
	}
	if rp.Connected {
		t.Fatal("a restored player must start disconnected")
	}
	rf, ok := restored.Fleets[1]
	if !ok || rf.Owner != "Alice" || rf.Ships != 5 {
		t.Fatalf("got %+v", rf)
	}
}

func TestSortedPlayerNamesIsAscending(t *testing.T) {
	s := newTestState(t)
	s.Players["Bob"] = &entities.Player{Name: "Bob"}
	s.Players["Alice"] = &entities.Player{Name: "Alice"}
	s.Players["Carol"] = &entities.Player{Name: "Carol"}

	names := s.SortedPlayerNames()
	want := []string{"Alice", "Bob", "Carol"}
	for i, w := range want {
		if names[i] != w {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}

func TestPlayerByCIMatchesIgnoringCase(t *testing.T) {
	s := newTestState(t)
	s.Players["Alice"] = &entities.Player{Name: "Alice"}

	p, ok := s.PlayerByCI("aLiCe")
	if !ok || p.Name != "Alice" {
		t.Fatalf("got %+v, ok=%v", p, ok)
	}

	if _, ok := s.PlayerByCI("Mallory"); ok {
		t.Fatal("expected no match for a name that was never registered")
	}
}

func TestReclaimFleetResetsFieldsButKeepsArtifacts(t *testing.T) {
	s := newTestState(t)
	f := s.Fleets[1]
	f.Owner = "Alice"
	f.Ships = 5
	f.Cargo = 3
	f.HasPBB = true
	f.Artifacts[9] = true

	s.ReclaimFleet(1)

	if f.Owner != entities.NeutralOwner || f.Ships != 0 || f.Cargo != 0 || f.HasPBB {
		t.Fatalf("got %+v", f)
	}
	if !f.Artifacts[9] {
		t.Fatal("artifacts must survive reclamation")
	}
}

func TestResetPerTurnFlagsClearsOrdersAndReady(t *testing.T) {
	s := newTestState(t)
	s.Players["Alice"] = &entities.Player{Name: "Alice", Ready: true, Orders: []entities.Order{{Kind: entities.OrderMove}}}
	s.Fleets[1].Moved = true
	s.Fleets[1].IsAmbushing = true

	s.ResetPerTurnFlags()

	if s.Players["Alice"].Ready || s.Players["Alice"].Orders != nil {
		t.Fatalf("got %+v", s.Players["Alice"])
	}
	if s.Fleets[1].Moved || s.Fleets[1].IsAmbushing {
		t.Fatalf("got %+v", s.Fleets[1])
	}
}
