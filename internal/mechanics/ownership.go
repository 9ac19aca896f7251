package mechanics

import (
	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
	"github.com/lab1702/starweb/internal/gamestate"
)

// ResolveOwnership implements §4.6 phase 11 for one world: a world
// becomes owned by a player with non-at-peace fleets present when the
// world has no hostile defenses and positive population; a
// zero-population world reverts to neutral; losing all defenses alone
// does not flip ownership while the owner still has fleets present;
// empty fleets co-located with hostile forces are captured; Pirates
// auto-capture at a configurable ship ratio.
func ResolveOwnership(bus *eventbus.Bus, s *gamestate.State, pirateCaptureRatio float64, w *entities.World) {
	if w.Population <= 0 {
		if w.Owner != entities.NeutralOwner {
			prev := w.Owner
			w.Owner = entities.NeutralOwner
			bus.Publish(eventbus.Event{Kind: eventbus.WorldCaptured, Payload: eventbus.WorldCapturedPayload{World: w.ID, PreviousOwner: prev, NewOwner: entities.NeutralOwner, Reason: "ownership_resolution"}})
		}
		return
	}

	present := s.FleetsAt(w.ID)
	byOwner := make(map[string]int)
	nonPeaceByOwner := make(map[string]bool)
	for _, f := range present {
		byOwner[f.Owner] += f.Ships
		if !f.AtPeace {
			nonPeaceByOwner[f.Owner] = true
		}
	}

	hasHostileDefense := w.IShips > 0 || w.PShips > 0

	if w.Owner == entities.NeutralOwner {
		for owner := range nonPeaceByOwner {
			if owner == entities.NeutralOwner || hasHostileDefense {
				continue
			}
			prev := w.Owner
			w.Owner = owner
			bus.Publish(eventbus.Event{Kind: eventbus.WorldCaptured, Payload: eventbus.WorldCapturedPayload{World: w.ID, PreviousOwner: prev, NewOwner: owner, Reason: "ownership_resolution"}})
			break
		}
	}

	// Pirate auto-capture: any non-owner whose local ship ratio against
	// the current owner's total local ships and defenses meets the
	// configured threshold captures outright, regardless of remaining
	// defenses (§4.6 phase 11, §4.11).
	ownerStrength := byOwner[w.Owner] + w.IShips + w.PShips
	for owner, ships := range byOwner {
		if owner == w.Owner || owner == entities.NeutralOwner {
			continue
		}
		p, ok := s.Players[owner]
		if !ok || p.CharacterType != entities.Pirate {
			continue
		}
		if ownerStrength == 0 || float64(ships)/float64(max1(ownerStrength)) >= pirateCaptureRatio {
			prev := w.Owner
			w.Owner = owner
			bus.Publish(eventbus.Event{Kind: eventbus.WorldCaptured, Payload: eventbus.WorldCapturedPayload{World: w.ID, PreviousOwner: prev, NewOwner: owner, Reason: "pirate_capture"}})
			break
		}
	}

	captureEmptyFleets(s, w, present)
}

func max1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// captureEmptyFleets gives an empty (0-ship) fleet co-located with
// hostile forces to whichever hostile owner is present, per §4.6 phase
// 11. A fleet with ships > 0 is never captured this way — ownership of
// occupied fleets only changes via combat reducing it to 0 first.
func captureEmptyFleets(s *gamestate.State, w *entities.World, present []*entities.Fleet) {
	for _, f := range s.Fleets {
		if f.World != w.ID || f.Ships != 0 || f.Owner == entities.NeutralOwner {
			continue
		}
		for _, hostile := range present {
			if hostile.Owner != f.Owner && hostile.Ships > 0 {
				f.Owner = hostile.Owner
				break
			}
		}
	}
}
