package mechanics

import (
	"testing"

	"github.com/lab1702/starweb/internal/entities"
)

func TestApplyConvertMigrationRequiresConvertSource(t *testing.T) {
	src := &entities.World{ID: 1, Population: 50, PopulationType: entities.PopulationHuman}
	dst := &entities.World{ID: 2, Population: 0, Limit: 100}

	if moved := ApplyConvertMigration(src, dst, 10); moved != 0 {
		t.Fatalf("moved = %d, want 0 for a non-convert source", moved)
	}
}

func TestApplyConvertMigrationMovesAndCapsAtDestLimit(t *testing.T) {
	src := &entities.World{ID: 1, Population: 50, PopulationType: entities.PopulationConvert}
	dst := &entities.World{ID: 2, Population: 95, Limit: 100}

	moved := ApplyConvertMigration(src, dst, 20)
	if moved != 5 {
		t.Fatalf("moved = %d, want 5 (capped by destination room)", moved)
	}
	if dst.Population != 100 || dst.PopulationType != entities.PopulationConvert {
		t.Fatalf("got Population=%d Type=%v", dst.Population, dst.PopulationType)
	}
	if src.Population != 45 {
		t.Fatalf("src Population = %d, want 45", src.Population)
	}
}

func TestApplyRobotMigrationKillsOrganicPopulationOnArrival(t *testing.T) {
	src := &entities.World{ID: 1, Population: 30, PopulationType: entities.PopulationRobot}
	dst := &entities.World{ID: 2, Population: 20, Limit: 100, PopulationType: entities.PopulationHuman}

	moved, killed := ApplyRobotMigration(src, dst, 10)
	if moved != 10 {
		t.Fatalf("moved = %d, want 10", moved)
	}
	if killed != 10 {
		t.Fatalf("killed = %d, want 10 organic population destroyed", killed)
	}
	if dst.PopulationType != entities.PopulationRobot {
		t.Fatal("destination should convert to robot population type")
	}
}

func TestApplyRobotMigrationNoOrganicLossBetweenRobotWorlds(t *testing.T) {
	src := &entities.World{ID: 1, Population: 30, PopulationType: entities.PopulationRobot}
	dst := &entities.World{ID: 2, Population: 20, Limit: 100, PopulationType: entities.PopulationRobot}

	_, killed := ApplyRobotMigration(src, dst, 10)
	if killed != 0 {
		t.Fatalf("killed = %d, want 0 between two robot worlds", killed)
	}
}

func TestApplyHumanMigrationLosesExcessBeyondRoom(t *testing.T) {
	src := &entities.World{ID: 1, Population: 50}
	dst := &entities.World{ID: 2, Population: 95, Limit: 100}

	moved := ApplyHumanMigration(src, dst, 20)
	if moved != 5 {
		t.Fatalf("moved = %d, want 5 (only room for 5)", moved)
	}
	if src.Population != 30 {
		t.Fatalf("src lost %d migrants total regardless of arrival, Population = %d, want 30", 20, src.Population)
	}
}

func TestConvertUniverseTotalSumsOnlyConvertWorlds(t *testing.T) {
	worlds := map[int]*entities.World{
		1: {Population: 10, PopulationType: entities.PopulationConvert},
		2: {Population: 20, PopulationType: entities.PopulationHuman},
		3: {Population: 5, PopulationType: entities.PopulationConvert},
	}
	if got := ConvertUniverseTotal(worlds); got != 15 {
		t.Fatalf("got %d, want 15", got)
	}
}
