package mechanics

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
)

func TestPlunderTakesConfiguredFractionAndTracksCount(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	w := &entities.World{ID: 1, Metal: 100}
	p := &entities.Player{Name: "Carol"}
	counters := map[string]int{}

	metal, n := Plunder(bus, w, p, 0.5, counters, "world:1")
	if metal != 50 || n != 1 {
		t.Fatalf("got metal=%d n=%d, want 50,1", metal, n)
	}
	if w.Metal != 50 {
		t.Fatalf("world metal = %d, want 50 remaining", w.Metal)
	}

	metal2, n2 := Plunder(bus, w, p, 0.5, counters, "world:1")
	if n2 != 2 {
		t.Fatalf("n2 = %d, want 2", n2)
	}
	if metal2 != 25 {
		t.Fatalf("metal2 = %d, want 25", metal2)
	}
}

func TestPlunderScoreLadder(t *testing.T) {
	cases := []struct {
		n    int
		want int
	}{
		{1, 50}, {2, 40}, {3, 30}, {4, 20}, {5, 10}, {6, 0}, {0, 0},
	}
	for _, c := range cases {
		if got := PlunderScore(c.n); got != c.want {
			t.Fatalf("PlunderScore(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}
