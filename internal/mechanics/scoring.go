package mechanics

import (
	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/gamestate"
)

// award appends a ScoreEntry and applies its delta, the single place
// every character's per-turn score change flows through so replaying the
// ledger always reproduces Score (§8's "score equals replayed ledger").
func award(p *entities.Player, turn int, reason string, delta int) {
	if delta == 0 {
		return
	}
	p.Score += delta
	p.ScoreLedger = append(p.ScoreLedger, entities.ScoreEntry{Turn: turn, Reason: reason, Delta: delta})
}

// ApplyScoring implements §4.11 for one player at the end of a turn.
// acc carries the turn's accumulated mechanic-specific counters the
// processor collects while running the earlier phases; its
// JihadKillsAgainstTarget field counts kills against players p has
// declared jihad on, for the jihad combat bonus (SPEC_FULL.md §C).
func ApplyScoring(s *gamestate.State, p *entities.Player, turn int, acc TurnAccumulator) {
	switch p.CharacterType {
	case entities.EmpireBuilder:
		pop, ind, mines := ownedTotals(s, p.Name)
		award(p, turn, "empire_population", pop/10)
		award(p, turn, "empire_industry", ind)
		award(p, turn, "empire_mines", mines)

	case entities.Merchant:
		award(p, turn, "merchant_metal_unloaded", acc.MetalUnloaded*8)
		award(p, turn, "merchant_consumer_goods", acc.ConsumerGoodsScore)

	case entities.Pirate:
		award(p, turn, "pirate_plunder", acc.PlunderScore)
		award(p, turn, "pirate_fleet_upkeep", 3*ownedFleetCount(s, p.Name))

	case entities.ArtifactCollector:
		points, museums := artifactTotals(s, p.Name)
		award(p, turn, "artifact_points", points)
		award(p, turn, "museum_worlds", museums*500)

	case entities.Berserker:
		award(p, turn, "berserker_kills", acc.PopulationKilled*2)
		award(p, turn, "berserker_robot_worlds", ownedRobotWorlds(s, p.Name)*5)
		award(p, turn, "berserker_enemy_ships", acc.EnemyShipsDestroyed*2)
		award(p, turn, "berserker_pbb", acc.PBBDropped*200)

	case entities.Apostle:
		award(p, turn, "apostle_worlds", ownedWorldCount(s, p.Name)*5)
		award(p, turn, "apostle_converts_universe", ConvertUniverseTotal(s.Worlds)/10)
		award(p, turn, "apostle_fully_convert_worlds", ownedFullyConvertWorlds(s, p.Name)*5)
		award(p, turn, "apostle_martyrs", acc.Martyrs)
	}

	// Jihad bonus (SPEC_FULL.md §C): combat characters get +1 per kill
	// against a declared jihad target, on top of the base award above.
	if acc.JihadKillsAgainstTarget > 0 && (p.CharacterType == entities.Pirate || p.CharacterType == entities.Berserker) {
		award(p, turn, "jihad_bonus", acc.JihadKillsAgainstTarget)
	}
}

// TurnAccumulator carries the per-player, per-turn counters earlier
// phases produce and scoring consumes. The processor owns one per player
// per turn, zeroed at phase 1 and filled in as phases run.
type TurnAccumulator struct {
	MetalUnloaded           int
	ConsumerGoodsScore      int
	PlunderScore            int
	PopulationKilled        int
	EnemyShipsDestroyed     int
	PBBDropped              int
	Martyrs                 int
	JihadKillsAgainstTarget int
}

func ownedTotals(s *gamestate.State, owner string) (pop, ind, mines int) {
	for _, w := range s.Worlds {
		if w.Owner == owner {
			pop += w.Population
			ind += w.Industry
			mines += w.Mines
		}
	}
	return
}

func ownedFleetCount(s *gamestate.State, owner string) int {
	n := 0
	for _, f := range s.Fleets {
		if f.Owner == owner && f.Ships > 0 {
			n++
		}
	}
	return n
}

func artifactTotals(s *gamestate.State, owner string) (points, museums int) {
	for _, w := range s.Worlds {
		if w.Owner != owner {
			continue
		}
		if IsMuseumWorld(w) {
			museums++
		}
		for aid := range w.Artifacts {
			if a, ok := s.Artifacts[aid]; ok {
				points += a.Points
			}
		}
	}
	return
}

func ownedRobotWorlds(s *gamestate.State, owner string) int {
	n := 0
	for _, w := range s.Worlds {
		if w.Owner == owner && w.PopulationType == entities.PopulationRobot {
			n++
		}
	}
	return n
}

func ownedWorldCount(s *gamestate.State, owner string) int {
	n := 0
	for _, w := range s.Worlds {
		if w.Owner == owner {
			n++
		}
	}
	return n
}

func ownedFullyConvertWorlds(s *gamestate.State, owner string) int {
	n := 0
	for _, w := range s.Worlds {
		if w.Owner == owner && w.PopulationType == entities.PopulationConvert && w.Population > 0 {
			n++
		}
	}
	return n
}

// CheckVictory implements §4.11's victory condition: the first player
// whose cumulative score reaches targetScore at end of a scoring phase
// wins; ties broken by earlier crossing-turn, then lexicographic name.
// Returns the winning player's name, or "" if nobody has crossed yet.
func CheckVictory(s *gamestate.State, targetScore int) string {
	type contender struct {
		name        string
		crossedTurn int
	}
	var winners []contender
	for _, name := range s.SortedPlayerNames() {
		p := s.Players[name]
		if p.Score < targetScore {
			continue
		}
		crossedTurn := s.Turn
		running := 0
		for _, e := range p.ScoreLedger {
			running += e.Delta
			if running >= targetScore {
				crossedTurn = e.Turn
				break
			}
		}
		winners = append(winners, contender{name, crossedTurn})
	}
	if len(winners) == 0 {
		return ""
	}
	best := winners[0]
	for _, c := range winners[1:] {
		if c.crossedTurn < best.crossedTurn || (c.crossedTurn == best.crossedTurn && c.name < best.name) {
			best = c
		}
	}
	return best.name
}
