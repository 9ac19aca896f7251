package gamestate

import (
	"math/rand"

	"github.com/lab1702/starweb/internal/entities"
)

// InitMap builds a fresh galaxy of cfg.Game.MapSize worlds and a
// numFleetKeys-sized fleet key pool, wiring a connected,
// symmetric neighbor graph per §4.1: every world reachable, each with
// MinConnections..MaxConnections neighbors. Deterministic given seed, so
// a restored RNGSeed reproduces the same galaxy shape (not state) for
// diagnostics.
func (s *State) InitMap(seed int64, numFleetKeys int) {
	s.RNGSeed = seed
	rng := rand.New(rand.NewSource(seed))

	cfg := s.Config
	n := cfg.Game.MapSize

	s.Worlds = make(map[int]*entities.World, n)
	for id := 1; id <= n; id++ {
		s.Worlds[id] = &entities.World{
			ID:        id,
			Owner:     entities.NeutralOwner,
			Neighbors: make(map[int]bool),
			Artifacts: make(map[int]bool),
		}
	}

	s.wireConnections(rng)
	s.seedBlackHoles(rng)
	s.seedNeutralResources(rng)

	s.Fleets = make(map[int]*entities.Fleet, numFleetKeys)
	for id := 1; id <= numFleetKeys; id++ {
		s.Fleets[id] = &entities.Fleet{
			ID:        id,
			Owner:     entities.NeutralOwner,
			Artifacts: make(map[int]bool),
		}
	}
}

// wireConnections builds a connected graph first (a random spanning
// path through all world IDs) then adds random extra edges until every
// world's degree is within [MinConnections, MaxConnections], keeping the
// adjacency symmetric.
func (s *State) wireConnections(rng *rand.Rand) {
	ids := make([]int, 0, len(s.Worlds))
	for id := range s.Worlds {
		ids = append(ids, id)
	}
	order := rng.Perm(len(ids))

	connect := func(a, b int) {
		s.Worlds[a].Neighbors[b] = true
		s.Worlds[b].Neighbors[a] = true
	}

	// Spanning path guarantees full reachability.
	for i := 1; i < len(order); i++ {
		connect(ids[order[i-1]], ids[order[i]])
	}

	min := s.Config.Worlds.MinConnections
	max := s.Config.Worlds.MaxConnections
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}

	for _, id := range ids {
		w := s.Worlds[id]
		attempts := 0
		for len(w.Neighbors) < min && attempts < 50 {
			attempts++
			cand := ids[rng.Intn(len(ids))]
			if cand == id {
				continue
			}
			if len(s.Worlds[cand].Neighbors) >= max {
				continue
			}
			connect(id, cand)
		}
	}
}

func (s *State) seedBlackHoles(rng *rand.Rand) {
	const blackHoleFraction = 0.03
	ids := make([]int, 0, len(s.Worlds))
	for id := range s.Worlds {
		ids = append(ids, id)
	}
	count := int(float64(len(ids)) * blackHoleFraction)
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	for i := 0; i < count && i < len(ids); i++ {
		s.Worlds[ids[i]].IsBlackHole = true
	}
}

func (s *State) seedNeutralResources(rng *rand.Rand) {
	wc := s.Config.Worlds
	randIn := func(r struct{ Min, Max int }) int {
		if r.Max <= r.Min {
			return r.Min
		}
		return r.Min + rng.Intn(r.Max-r.Min+1)
	}
	ir := struct{ Min, Max int }{wc.IndustryRange.Min, wc.IndustryRange.Max}
	mr := struct{ Min, Max int }{wc.MinesRange.Min, wc.MinesRange.Max}
	pr := struct{ Min, Max int }{wc.PopulationRange.Min, wc.PopulationRange.Max}
	lr := struct{ Min, Max int }{wc.LimitRange.Min, wc.LimitRange.Max}

	for _, w := range s.Worlds {
		if w.IsBlackHole || w.Key != "" {
			continue
		}
		w.Industry = randIn(ir)
		w.Mines = randIn(mr)
		w.Limit = randIn(lr)
		w.Population = randIn(pr)
		if w.Population > w.Limit {
			w.Population = w.Limit
		}
		w.PopulationType = entities.PopulationHuman
	}
}

// AllocateHomeworld picks a world adjacent to no black hole and at least
// two hops from every existing homeworld (§3 Lifecycle), marks it with a
// key string, seeds it with cfg.Game.Homeworld resources, and returns its
// ID. Returns 0 if no eligible world remains.
func (s *State) AllocateHomeworld(rng *rand.Rand, playerName string) int {
	existing := make(map[int]bool)
	for _, w := range s.Worlds {
		if w.Key != "" {
			existing[w.ID] = true
		}
	}

	candidates := make([]int, 0, len(s.Worlds))
	for id, w := range s.Worlds {
		if w.Key != "" || w.IsBlackHole {
			continue
		}
		if adjacentToBlackHole(s, id) {
			continue
		}
		if withinTwoHops(s, id, existing) {
			continue
		}
		candidates = append(candidates, id)
	}
	if len(candidates) == 0 {
		return 0
	}
	chosen := candidates[rng.Intn(len(candidates))]

	hw := s.Config.Game.Homeworld
	w := s.Worlds[chosen]
	w.Key = playerName
	w.Owner = playerName
	w.Population = hw.Population
	w.Industry = hw.Industry
	w.Mines = hw.Mines
	w.Metal = hw.Metal
	w.Limit = hw.Limit
	w.PopulationType = entities.PopulationHuman
	return chosen
}

func adjacentToBlackHole(s *State, id int) bool {
	for n := range s.Worlds[id].Neighbors {
		if s.Worlds[n].IsBlackHole {
			return true
		}
	}
	return false
}

func withinTwoHops(s *State, id int, existing map[int]bool) bool {
	if existing[id] {
		return true
	}
	for n := range s.Worlds[id].Neighbors {
		if existing[n] {
			return true
		}
	}
	return false
}

// PlaceArtifacts scatters artifact definitions onto non-homeworld worlds
// (§4.1). If more artifacts than eligible worlds are configured, the
// excess is skipped and a warning returned rather than erroring, per
// §4.1's "placement is skipped with warning."
func (s *State) PlaceArtifacts(rng *rand.Rand, defs []entities.Artifact) (warning string) {
	eligible := make([]int, 0, len(s.Worlds))
	for id, w := range s.Worlds {
		if w.Key == "" {
			eligible = append(eligible, id)
		}
	}
	rng.Shuffle(len(eligible), func(i, j int) { eligible[i], eligible[j] = eligible[j], eligible[i] })

	placed := 0
	for i, def := range defs {
		if i >= len(eligible) {
			warning = "more artifacts configured than eligible worlds; excess skipped"
			break
		}
		a := def
		s.Artifacts[a.ID] = &a
		s.Worlds[eligible[i]].Artifacts[a.ID] = true
		placed++
	}
	return warning
}
