// Package order implements CommandValidator and OrderQueue (§4.3, §4.4):
// turning a shape-only entities.Order into a semantically-checked one
// against current GameState, and the per-player queue that holds them
// until turn resolution.
package order

import (
	"github.com/lab1702/starweb/internal/entities"
)

// Queue is a thin wrapper over a player's Orders slice enforcing §4.4's
// exclusivity rule and supporting cancel-by-index. GameState already
// holds the backing slice (entities.Player.Orders); Queue operates on it
// in place so snapshots stay consistent without a second data structure.
type Queue struct {
	player *entities.Player
}

// For returns a Queue bound to player.
func For(player *entities.Player) Queue {
	return Queue{player: player}
}

// Append adds a validated, normalized order to the player's queue.
// Exclusivity must already have been checked by Validate; Append does
// not re-check it.
func (q Queue) Append(o entities.Order) {
	q.player.Orders = append(q.player.Orders, o)
}

// CancelByIndex removes the order at the given 1-based index (as shown
// in the queued-order list sent to the client), returning false if the
// index is out of range.
func (q Queue) CancelByIndex(idx int) bool {
	i := idx - 1
	if i < 0 || i >= len(q.player.Orders) {
		return false
	}
	q.player.Orders = append(q.player.Orders[:i], q.player.Orders[i+1:]...)
	return true
}

// ByKind returns the subset of queued orders of the given kind, in queue
// order — the iterate-by-type operation §4.4 names, used by phase code
// that only cares about one order kind at a time.
func (q Queue) ByKind(kind entities.OrderKind) []entities.Order {
	var out []entities.Order
	for _, o := range q.player.Orders {
		if o.Kind == kind {
			out = append(out, o)
		}
	}
	return out
}

// exclusiveKind returns whether kind participates in §4.4's "at most one
// of Move/FireAt*/Ambush/ConditionalFire per fleet" rule. ConditionalFire
// is explicitly exclusive with Move but may coexist with an Ambush order
// on a *different* fleet — exclusivity is scoped per-fleet already, so no
// extra bookkeeping is needed here beyond treating all four kinds as
// mutually exclusive for a given Fleet operand.
func exclusiveKind(k entities.OrderKind) bool {
	switch k {
	case entities.OrderMove, entities.OrderFireAtFleet, entities.OrderFireAtTarget,
		entities.OrderAmbush, entities.OrderConditionalFire:
		return true
	default:
		return false
	}
}

// HasExclusiveOrder reports whether fleetID already holds an exclusive
// order in the queue, used by Validate before appending a new one.
func (q Queue) HasExclusiveOrder(fleetID int) bool {
	for _, o := range q.player.Orders {
		if exclusiveKind(o.Kind) && o.Fleet == fleetID {
			return true
		}
	}
	return false
}
