package gamestate

import "github.com/lab1702/starweb/internal/entities"

// Clone deep-copies the entire state, the pre-turn snapshot §7 requires
// TurnProcessor to take before running phase 1 so an InvariantError
// anywhere in the turn can roll the whole turn back to it. Export/Import
// round-trips through Snapshot and back instead, which is the right tool
// for on-disk persistence but pays JSON marshal/unmarshal cost Clone
// avoids — Process calls this once per turn, far hotter than a save.
func (s *State) Clone() *State {
	c := &State{
		Worlds:      make(map[int]*entities.World, len(s.Worlds)),
		Fleets:      make(map[int]*entities.Fleet, len(s.Fleets)),
		Artifacts:   make(map[int]*entities.Artifact, len(s.Artifacts)),
		Players:     make(map[string]*entities.Player, len(s.Players)),
		Turn:        s.Turn,
		RNGSeed:     s.RNGSeed,
		TargetScore: s.TargetScore,
		Config:      s.Config,
		log:         s.log,
	}
	for id, w := range s.Worlds {
		nw := *w
		nw.Neighbors = cloneBoolSet(w.Neighbors)
		nw.Artifacts = cloneBoolSet(w.Artifacts)
		c.Worlds[id] = &nw
	}
	for id, f := range s.Fleets {
		nf := *f
		nf.Artifacts = cloneBoolSet(f.Artifacts)
		nf.NoAmbushWorlds = cloneBoolSet(f.NoAmbushWorlds)
		nf.PendingMovePath = append([]int(nil), f.PendingMovePath...)
		if f.ConditionalFireTarget != nil {
			t := *f.ConditionalFireTarget
			nf.ConditionalFireTarget = &t
		}
		c.Fleets[id] = &nf
	}
	for id, a := range s.Artifacts {
		na := *a
		c.Artifacts[id] = &na
	}
	for name, p := range s.Players {
		np := *p
		np.Orders = append([]entities.Order(nil), p.Orders...)
		np.KnownWorlds = make(map[int]entities.WorldSnapshot, len(p.KnownWorlds))
		for wid, snap := range p.KnownWorlds {
			np.KnownWorlds[wid] = snap
		}
		np.Relations = make(map[string]entities.RelationKind, len(p.Relations))
		for target, rel := range p.Relations {
			np.Relations[target] = rel
		}
		np.PerTurnCounters = make(map[string]int, len(p.PerTurnCounters))
		for k, v := range p.PerTurnCounters {
			np.PerTurnCounters[k] = v
		}
		np.ScoreLedger = append([]entities.ScoreEntry(nil), p.ScoreLedger...)
		np.LastStateDigest = append([]byte(nil), p.LastStateDigest...)
		c.Players[name] = &np
	}
	return c
}

// Restore replaces s's contents with src's, in place, so callers holding
// a *State pointer (the engine) keep a valid reference across a
// rollback.
func (s *State) Restore(src *State) {
	s.Worlds = src.Worlds
	s.Fleets = src.Fleets
	s.Artifacts = src.Artifacts
	s.Players = src.Players
	s.Turn = src.Turn
	s.RNGSeed = src.RNGSeed
	s.TargetScore = src.TargetScore
}

func cloneBoolSet(m map[int]bool) map[int]bool {
	if m == nil {
		return nil
	}
	out := make(map[int]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
