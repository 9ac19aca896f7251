package gamestate

import "github.com/lab1702/starweb/internal/entities"

// Import reconstructs entity maps from a Snapshot, the inverse of
// Export, used by persistence.Load. Per-turn counters reset across a
// restart (§6.5 does not list them among the persisted player fields),
// but queued orders and the full score ledger round-trip intact so a
// reconnecting player's pending turn and score history survive a
// restart (§6.5's reconnection-identity rule).
func (s *State) Import(snap Snapshot) {
	s.Turn = snap.Turn
	s.RNGSeed = snap.RNGSeed
	s.TargetScore = snap.TargetScore

	s.Worlds = make(map[int]*entities.World, len(snap.Worlds))
	for _, wr := range snap.Worlds {
		w := &entities.World{
			ID: wr.ID, Key: wr.Key, Owner: wr.Owner,
			Population: wr.Population, Industry: wr.Industry, Mines: wr.Mines,
			Metal: wr.Metal, Limit: wr.Limit, IShips: wr.IShips, PShips: wr.PShips,
			IsBlackHole:    wr.IsBlackHole,
			PopulationType: entities.PopulationType(wr.PopulationType),
			Neighbors:      make(map[int]bool, len(wr.Neighbors)),
			Artifacts:      make(map[int]bool, len(wr.Artifacts)),
		}
		for _, n := range wr.Neighbors {
			w.Neighbors[n] = true
		}
		for _, a := range wr.Artifacts {
			w.Artifacts[a] = true
		}
		s.Worlds[w.ID] = w
	}

	s.Fleets = make(map[int]*entities.Fleet, len(snap.Fleets))
	for _, fr := range snap.Fleets {
		f := &entities.Fleet{
			ID: fr.ID, Owner: fr.Owner, World: fr.World, Ships: fr.Ships, Cargo: fr.Cargo,
			HasPBB:          fr.HasPBB,
			Artifacts:       make(map[int]bool, len(fr.Artifacts)),
			PendingMovePath: append([]int(nil), fr.PendingMovePath...),
		}
		for _, a := range fr.Artifacts {
			f.Artifacts[a] = true
		}
		s.Fleets[f.ID] = f
	}

	s.Artifacts = make(map[int]*entities.Artifact, len(snap.Artifacts))
	for _, ar := range snap.Artifacts {
		s.Artifacts[ar.ID] = &entities.Artifact{ID: ar.ID, Name: ar.Name, Points: ar.Points, Effect: ar.Effect}
	}

	s.Players = make(map[string]*entities.Player, len(snap.Players))
	for _, pr := range snap.Players {
		rel := make(map[string]entities.RelationKind, len(pr.Relations))
		for k, v := range pr.Relations {
			rel[k] = entities.RelationKind(v)
		}
		ledger := make([]entities.ScoreEntry, len(pr.ScoreLedger))
		for i, e := range pr.ScoreLedger {
			ledger[i] = entities.ScoreEntry{Turn: e.Turn, Reason: e.Reason, Delta: e.Delta}
		}
		orders := make([]entities.Order, len(pr.Orders))
		for i, o := range pr.Orders {
			orders[i] = entities.Order{
				Kind: entities.OrderKind(o.Kind), NormalizedText: o.NormalizedText,
				Fleet: o.Fleet, Fleet2: o.Fleet2, World: o.World, World2: o.World2,
				Count: o.Count, Path: append([]int(nil), o.Path...), Target: entities.FireTarget(o.Target),
				PlayerArg: o.PlayerArg, Minutes: o.Minutes, Character: entities.CharacterType(o.Character),
				Relation: entities.RelationKind(o.Relation), Unally: o.Unally, ArtifactID: o.ArtifactID,
			}
		}
		s.Players[pr.Name] = &entities.Player{
			Name: pr.Name, CharacterType: entities.CharacterType(pr.CharacterType),
			Score: pr.Score, TurnPreferenceMinutes: pr.TurnPreferenceMinutes,
			Connected: false, // a restart always starts with nobody connected
			HomeWorld: pr.HomeWorld, Relations: rel, ScoreLedger: ledger, Orders: orders,
			KnownWorlds:     make(map[int]entities.WorldSnapshot),
			PerTurnCounters: make(map[string]int),
		}
	}
}
