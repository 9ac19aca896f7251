package mechanics

import "github.com/lab1702/starweb/internal/entities"

// ApplyConvertMigration moves n converts from src to dst, the
// Apostle-only MigrateConverts order of §4.6 phase 6. Converts are drawn
// from the convert population pool rather than general population.
func ApplyConvertMigration(src, dst *entities.World, n int) int {
	if src.PopulationType != entities.PopulationConvert {
		return 0
	}
	take := min(n, src.Population)
	if take <= 0 {
		return 0
	}
	src.Population -= take
	if dst.Population+take > dst.Limit {
		take = dst.Limit - dst.Population
	}
	if take <= 0 {
		return 0
	}
	dst.Population += take
	dst.PopulationType = entities.PopulationConvert
	return take
}

// ApplyRobotMigration moves n robot population from src to dst (§4.6
// phase 6, Berserker-only). Arrival kills organic population at the
// destination equal to the number of robots moved, capped at the
// population there (none when the destination is already a robot world),
// scoring for the Berserker (§4.11's "+2 per population killed").
func ApplyRobotMigration(src, dst *entities.World, n int) (moved, organicKilled int) {
	if src.PopulationType != entities.PopulationRobot {
		return 0, 0
	}
	moved = min(n, src.Population)
	if moved <= 0 {
		return 0, 0
	}
	src.Population -= moved

	if dst.PopulationType != entities.PopulationRobot {
		organicKilled = min(moved, dst.Population)
		dst.Population -= organicKilled
	}
	room := dst.Limit - dst.Population
	landed := min(moved, room)
	if landed < 0 {
		landed = 0
	}
	dst.Population += landed
	dst.PopulationType = entities.PopulationRobot
	return moved, organicKilled
}

// ApplyHumanMigration moves n ordinary population from src to dst, the
// plain (non-convert, non-robot) case of the Migrate order (§4.6 phase
// 6). Migrants beyond the destination's remaining room are lost in
// transit, the same capacity rule ApplyConvertMigration applies.
func ApplyHumanMigration(src, dst *entities.World, n int) int {
	take := min(n, src.Population)
	if take <= 0 {
		return 0
	}
	src.Population -= take
	room := dst.Limit - dst.Population
	if take > room {
		take = room
	}
	if take < 0 {
		take = 0
	}
	dst.Population += take
	return take
}

// ConvertUniverseTotal sums convert population across every world, used
// by Apostle scoring's "+1 per 10 converts in universe per turn" (§4.11).
func ConvertUniverseTotal(worlds map[int]*entities.World) int {
	total := 0
	for _, w := range worlds {
		if w.PopulationType == entities.PopulationConvert {
			total += w.Population
		}
	}
	return total
}
