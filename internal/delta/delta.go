// Package delta computes the minimal per-player change records the
// Sender streams after a turn (§4.9): which worlds/fleets changed or
// disappeared from view, and the handful of per-player scalars the caller
// passes in (the processor sends score, turn, ready and character type).
// Each player's last-sent state is remembered as a blake3
// digest per entity, cheap to recompute every turn and collision-safe
// enough to decide "did this change" without keeping the full previous
// projection around.
package delta

import (
	"encoding/json"
	"sort"

	"lukechampine.com/blake3"

	"github.com/lab1702/starweb/internal/visibility"
)

// Delta is the wire-adjacent change set for one player (§6.1's "delta"
// frame payload). Encoding to JSON is the Sender's job; this package
// only decides what belongs in it.
type Delta struct {
	ChangedWorlds map[int]visibility.WorldView
	RemovedWorlds []int
	ChangedFleets []int // fleet IDs; caller resolves full records from the View
	RemovedFleets []int
	ScalarChanges map[string]any
}

// Empty reports whether a Delta carries no changes at all, in which case
// the Sender omits the frame entirely (§4.9).
func (d Delta) Empty() bool {
	return len(d.ChangedWorlds) == 0 && len(d.RemovedWorlds) == 0 &&
		len(d.ChangedFleets) == 0 && len(d.RemovedFleets) == 0 && len(d.ScalarChanges) == 0
}

// digest is the per-entity remembered state for one player: a
// world/fleet id mapped to the blake3 hash of its last-sent encoding.
type digest struct {
	Worlds  map[int][32]byte
	Fleets  map[int][32]byte
	Scalars map[string]any
}

// Engine holds every player's last-sent digest (§3's last_state_digest,
// §4.9). Not safe for concurrent use; owned by the single engine
// goroutine like gamestate.State.
type Engine struct {
	last map[string]*digest
}

// New creates an Engine with no remembered state; every player's first
// computed delta will be a full population of ChangedWorlds/Fleets.
func New() *Engine {
	return &Engine{last: make(map[string]*digest)}
}

func hashOf(v any) [32]byte {
	b, _ := json.Marshal(v)
	return blake3.Sum256(b)
}

// Compute diffs view against the player's remembered digest, updates the
// remembered digest to match, and returns the resulting Delta. scalars
// carries the current values of the small broadcast-level fields (score,
// turn, ready, etc.) the caller wants tracked for change.
func (e *Engine) Compute(view visibility.View, scalars map[string]any) Delta {
	prev, ok := e.last[view.Player]
	if !ok {
		prev = &digest{Worlds: map[int][32]byte{}, Fleets: map[int][32]byte{}, Scalars: map[string]any{}}
	}
	next := &digest{Worlds: make(map[int][32]byte), Fleets: make(map[int][32]byte), Scalars: make(map[string]any)}

	out := Delta{ChangedWorlds: make(map[int]visibility.WorldView), ScalarChanges: make(map[string]any)}

	for id, wv := range view.Worlds {
		h := hashOf(wv)
		next.Worlds[id] = h
		if old, existed := prev.Worlds[id]; !existed || old != h {
			out.ChangedWorlds[id] = wv
		}
	}
	for id := range prev.Worlds {
		if _, stillPresent := view.Worlds[id]; !stillPresent {
			out.RemovedWorlds = append(out.RemovedWorlds, id)
		}
	}
	sort.Ints(out.RemovedWorlds)

	var changedFleetIDs []int
	for id, f := range view.Fleets {
		h := hashOf(f)
		next.Fleets[id] = h
		if old, existed := prev.Fleets[id]; !existed || old != h {
			changedFleetIDs = append(changedFleetIDs, id)
		}
	}
	sort.Ints(changedFleetIDs)
	out.ChangedFleets = changedFleetIDs

	for id := range prev.Fleets {
		if _, stillPresent := view.Fleets[id]; !stillPresent {
			out.RemovedFleets = append(out.RemovedFleets, id)
		}
	}
	sort.Ints(out.RemovedFleets)

	for k, v := range scalars {
		next.Scalars[k] = v
		if old, existed := prev.Scalars[k]; !existed || old != v {
			out.ScalarChanges[k] = v
		}
	}

	e.last[view.Player] = next
	if out.Empty() {
		return out
	}
	return out
}

// Forget drops a player's remembered digest, so their next computed
// delta is a full repopulation. Used on reconnect, where the client has
// no prior projection to diff against.
func (e *Engine) Forget(player string) {
	delete(e.last, player)
}
