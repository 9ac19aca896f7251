// Package visibility computes each player's fog-of-war projection for the
// current turn (§4.8): which worlds they see fully, which they remember,
// and which fleets and artifacts are visible given that.
package visibility

import (
	"sort"

	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/gamestate"
)

// View is one player's projection of the world this turn.
type View struct {
	Player  string
	Turn    int
	Worlds  map[int]WorldView
	Fleets  map[int]entities.Fleet
}

// WorldView is a world as a specific player currently perceives it: full
// detail if visible this turn, or the last remembered snapshot with the
// turn it was taken.
type WorldView struct {
	World        entities.World
	Visible      bool
	TurnLastSeen int
}

// TouchedThisTurn records which worlds a migration order touched for a
// player this turn (§4.6 phase 6 grants visibility of the destination),
// supplementing ownership/presence as a visibility source.
type TouchedThisTurn map[string]map[int]bool

// Compute builds player's View for the current turn. touched carries any
// migration-touched worlds accumulated during phase processing.
func Compute(s *gamestate.State, player string, touched TouchedThisTurn) View {
	p := s.Players[player]
	view := View{Player: player, Turn: s.Turn, Worlds: make(map[int]WorldView), Fleets: make(map[int]entities.Fleet)}
	if p == nil {
		return view
	}

	visibleWorlds := visibleWorldSet(s, p, touched[player])

	for id, w := range s.Worlds {
		if visibleWorlds[id] {
			view.Worlds[id] = WorldView{World: redactForVisible(*w), Visible: true, TurnLastSeen: s.Turn}
			continue
		}
		if snap, ok := p.KnownWorlds[id]; ok {
			view.Worlds[id] = WorldView{World: redactForRemembered(snap.World), Visible: false, TurnLastSeen: snap.TurnLastSeen}
		}
	}

	for id, f := range s.Fleets {
		if f.Ships == 0 {
			continue
		}
		if f.Owner == player {
			view.Fleets[id] = *f
			continue
		}
		if visibleWorlds[f.World] {
			view.Fleets[id] = *f
		}
	}
	return view
}

// visibleWorldSet implements §4.8's first paragraph: P owns it, P has a
// fleet there, or a migration from P touched it this turn.
func visibleWorldSet(s *gamestate.State, p *entities.Player, touchedByPlayer map[int]bool) map[int]bool {
	visible := make(map[int]bool)
	for id, w := range s.Worlds {
		if w.Owner == p.Name {
			visible[id] = true
		}
	}
	for _, f := range s.Fleets {
		if f.Owner == p.Name && f.Ships > 0 && f.World != entities.NoWorld {
			visible[f.World] = true
		}
	}
	for id := range touchedByPlayer {
		visible[id] = true
	}
	return visible
}

// redactForVisible returns the world attributes visible to any observer
// standing on or owning it: everything, including the artifact list
// (§4.8: "Artifact IDs on a world are listed only when the world is
// visible to P").
func redactForVisible(w entities.World) entities.World {
	return w
}

// redactForRemembered returns a previously-visible snapshot unchanged;
// callers already stored only the attributes that were visible at the
// time it was captured.
func redactForRemembered(w entities.World) entities.World {
	return w
}

// SnapshotKnownWorlds updates p.KnownWorlds for every world currently
// visible to p, called once per turn after Compute so the next turn's
// "remembered" worlds reflect this turn's full view. Must run before
// s.Turn advances to the next value.
func SnapshotKnownWorlds(s *gamestate.State, p *entities.Player, visibleWorlds map[int]bool) {
	if p.KnownWorlds == nil {
		p.KnownWorlds = make(map[int]entities.WorldSnapshot)
	}
	for id := range visibleWorlds {
		p.KnownWorlds[id] = entities.WorldSnapshot{World: *s.Worlds[id], TurnLastSeen: s.Turn}
	}
}

// VisibleWorldIDs returns the sorted IDs of worlds currently visible to
// player (not merely remembered), a helper for callers needing just the
// set rather than the full View.
func VisibleWorldIDs(s *gamestate.State, player string, touched TouchedThisTurn) []int {
	p := s.Players[player]
	if p == nil {
		return nil
	}
	set := visibleWorldSet(s, p, touched[player])
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
