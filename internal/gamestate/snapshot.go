package gamestate

import "sort"

// Snapshot is the canonical, deterministically-ordered export of a
// State, the shape persistence.Save serializes to JSON (§6.5) and the
// shape CheckInvariants re-validates on load. Map fields become sorted
// slices so two saves of byte-identical state produce byte-identical
// JSON (§8's round-trip property).
type Snapshot struct {
	Turn        int
	RNGSeed     int64
	TargetScore int

	Worlds    []WorldRecord
	Fleets    []FleetRecord
	Artifacts []ArtifactRecord
	Players   []PlayerRecord
}

type WorldRecord struct {
	ID             int
	Key            string
	Owner          string
	Population     int
	Industry       int
	Mines          int
	Metal          int
	Limit          int
	IShips         int
	PShips         int
	Neighbors      []int
	IsBlackHole    bool
	Artifacts      []int
	PopulationType string
}

type FleetRecord struct {
	ID              int
	Owner           string
	World           int
	Ships           int
	Cargo           int
	Artifacts       []int
	HasPBB          bool
	PendingMovePath []int
}

type ArtifactRecord struct {
	ID     int
	Name   string
	Points int
	Effect string
}

type ScoreEntryRecord struct {
	Turn   int
	Reason string
	Delta  int
}

type OrderRecord struct {
	Kind           int
	NormalizedText string
	Fleet          int
	Fleet2         int
	World          int
	World2         int
	Count          int
	Path           []int
	Target         string
	PlayerArg      string
	Minutes        int
	Character      string
	Relation       string
	Unally         bool
	ArtifactID     int
}

type PlayerRecord struct {
	Name                  string
	CharacterType         string
	Score                 int
	TurnPreferenceMinutes int
	Connected             bool
	HomeWorld             int
	Relations             map[string]string
	ScoreLedger           []ScoreEntryRecord
	Orders                []OrderRecord
}

// Export produces a canonically-ordered Snapshot for serialization.
func (s *State) Export() Snapshot {
	snap := Snapshot{Turn: s.Turn, RNGSeed: s.RNGSeed, TargetScore: s.TargetScore}

	var wids []int
	for id := range s.Worlds {
		wids = append(wids, id)
	}
	sort.Ints(wids)
	for _, id := range wids {
		w := s.Worlds[id]
		snap.Worlds = append(snap.Worlds, WorldRecord{
			ID: w.ID, Key: w.Key, Owner: w.Owner,
			Population: w.Population, Industry: w.Industry, Mines: w.Mines,
			Metal: w.Metal, Limit: w.Limit, IShips: w.IShips, PShips: w.PShips,
			Neighbors:      sortedKeys(w.Neighbors),
			IsBlackHole:    w.IsBlackHole,
			Artifacts:      sortedKeys(w.Artifacts),
			PopulationType: string(w.PopulationType),
		})
	}

	var fids []int
	for id := range s.Fleets {
		fids = append(fids, id)
	}
	sort.Ints(fids)
	for _, id := range fids {
		f := s.Fleets[id]
		snap.Fleets = append(snap.Fleets, FleetRecord{
			ID: f.ID, Owner: f.Owner, World: f.World, Ships: f.Ships, Cargo: f.Cargo,
			Artifacts: sortedKeys(f.Artifacts), HasPBB: f.HasPBB,
			PendingMovePath: append([]int(nil), f.PendingMovePath...),
		})
	}

	var aids []int
	for id := range s.Artifacts {
		aids = append(aids, id)
	}
	sort.Ints(aids)
	for _, id := range aids {
		a := s.Artifacts[id]
		snap.Artifacts = append(snap.Artifacts, ArtifactRecord{ID: a.ID, Name: a.Name, Points: a.Points, Effect: a.Effect})
	}

	for _, name := range s.SortedPlayerNames() {
		p := s.Players[name]
		rel := make(map[string]string, len(p.Relations))
		for k, v := range p.Relations {
			rel[k] = string(v)
		}
		ledger := make([]ScoreEntryRecord, len(p.ScoreLedger))
		for i, e := range p.ScoreLedger {
			ledger[i] = ScoreEntryRecord{Turn: e.Turn, Reason: e.Reason, Delta: e.Delta}
		}
		orders := make([]OrderRecord, len(p.Orders))
		for i, o := range p.Orders {
			orders[i] = OrderRecord{
				Kind: int(o.Kind), NormalizedText: o.NormalizedText,
				Fleet: o.Fleet, Fleet2: o.Fleet2, World: o.World, World2: o.World2,
				Count: o.Count, Path: append([]int(nil), o.Path...), Target: string(o.Target),
				PlayerArg: o.PlayerArg, Minutes: o.Minutes, Character: string(o.Character),
				Relation: string(o.Relation), Unally: o.Unally, ArtifactID: o.ArtifactID,
			}
		}
		snap.Players = append(snap.Players, PlayerRecord{
			Name: p.Name, CharacterType: string(p.CharacterType), Score: p.Score,
			TurnPreferenceMinutes: p.TurnPreferenceMinutes, Connected: p.Connected,
			HomeWorld: p.HomeWorld, Relations: rel, ScoreLedger: ledger, Orders: orders,
		})
	}
	return snap
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
