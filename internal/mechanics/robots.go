package mechanics

import (
	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
)

// RobotAttack implements the Berserker-only RobotAttack order: a fleet's
// ships assault a world's organic population directly, each ship killing
// one population point, scoring for the Berserker the same way combat
// population kills do (§4.11's "+2 per population killed").
func RobotAttack(bus *eventbus.Bus, f *entities.Fleet, w *entities.World) (killed int) {
	if w.PopulationType == entities.PopulationRobot {
		return 0
	}
	killed = min(f.Ships, w.Population)
	w.Population -= killed
	bus.Publish(eventbus.Event{
		Kind: eventbus.Combat,
		Payload: eventbus.CombatPayload{
			World: w.ID, AttackerFleet: f.ID, AttackerOwner: f.Owner,
			DefenderCasualties: killed, Target: "population",
		},
		Observers: []string{f.Owner, w.Owner},
	})
	return killed
}
