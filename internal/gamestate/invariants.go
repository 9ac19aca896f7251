package gamestate

import (
	"fmt"

	"github.com/lab1702/starweb/internal/enginerr"
	"github.com/lab1702/starweb/internal/entities"
)

// CheckInvariants verifies every structural invariant named in §3 and
// §8. Called after load (returning CorruptStateError) and, by the
// processor, after each phase during normal play (returning
// InvariantError so the phase can be rolled back).
func (s *State) CheckInvariants() error {
	if err := s.checkNonNegativeResources(); err != nil {
		return err
	}
	if err := s.checkPopulationWithinLimit(); err != nil {
		return err
	}
	if err := s.checkFleetWorldsExist(); err != nil {
		return err
	}
	if err := s.checkArtifactUniqueness(); err != nil {
		return err
	}
	if err := s.checkOrderExclusivity(); err != nil {
		return err
	}
	return nil
}

// CheckInvariantsForLoad wraps CheckInvariants' failures as
// CorruptStateError, the kind §7 mandates at load time.
func (s *State) CheckInvariantsForLoad(path string) error {
	if err := s.CheckInvariants(); err != nil {
		return &enginerr.CorruptStateError{Path: path, Reason: err.Error()}
	}
	return nil
}

func (s *State) checkNonNegativeResources() error {
	for id, w := range s.Worlds {
		if w.IShips < 0 || w.PShips < 0 || w.Population < 0 || w.Industry < 0 || w.Mines < 0 || w.Metal < 0 {
			return &enginerr.InvariantError{Phase: "invariants", Message: fmt.Sprintf("world %d has a negative resource field", id)}
		}
	}
	for id, f := range s.Fleets {
		if f.Ships < 0 || f.Cargo < 0 {
			return &enginerr.InvariantError{Phase: "invariants", Message: fmt.Sprintf("fleet %d has negative ships or cargo", id)}
		}
	}
	return nil
}

func (s *State) checkPopulationWithinLimit() error {
	for id, w := range s.Worlds {
		if w.Population > w.Limit {
			return &enginerr.InvariantError{Phase: "invariants", Message: fmt.Sprintf("world %d population %d exceeds limit %d", id, w.Population, w.Limit)}
		}
	}
	return nil
}

func (s *State) checkFleetWorldsExist() error {
	for id, f := range s.Fleets {
		if f.World == 0 {
			continue // in-transit sentinel
		}
		if _, ok := s.Worlds[f.World]; !ok {
			return &enginerr.InvariantError{Phase: "invariants", Message: fmt.Sprintf("fleet %d references nonexistent world %d", id, f.World)}
		}
	}
	return nil
}

func (s *State) checkArtifactUniqueness() error {
	seen := make(map[int]string)
	for wid, w := range s.Worlds {
		for aid := range w.Artifacts {
			if loc, ok := seen[aid]; ok {
				return &enginerr.InvariantError{Phase: "invariants", Message: fmt.Sprintf("artifact %d present at both %s and world %d", aid, loc, wid)}
			}
			seen[aid] = fmt.Sprintf("world %d", wid)
		}
	}
	for fid, f := range s.Fleets {
		for aid := range f.Artifacts {
			if loc, ok := seen[aid]; ok {
				return &enginerr.InvariantError{Phase: "invariants", Message: fmt.Sprintf("artifact %d present at both %s and fleet %d", aid, loc, fid)}
			}
			seen[aid] = fmt.Sprintf("fleet %d", fid)
		}
	}
	return nil
}

func (s *State) checkOrderExclusivity() error {
	for pname, p := range s.Players {
		exclusiveByFleet := make(map[int]int)
		for _, o := range p.Orders {
			if !isExclusiveOrder(o.Kind) {
				continue
			}
			exclusiveByFleet[o.Fleet]++
			if exclusiveByFleet[o.Fleet] > 1 {
				return &enginerr.InvariantError{Phase: "invariants", Message: fmt.Sprintf("player %s fleet %d holds more than one exclusive order", pname, o.Fleet)}
			}
		}
	}
	return nil
}

func isExclusiveOrder(k entities.OrderKind) bool {
	switch k {
	case entities.OrderMove, entities.OrderFireAtFleet, entities.OrderFireAtTarget,
		entities.OrderAmbush, entities.OrderConditionalFire:
		return true
	default:
		return false
	}
}
