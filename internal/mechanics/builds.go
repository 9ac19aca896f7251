package mechanics

import (
	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
	"github.com/lab1702/starweb/internal/gamestate"
)

// BuildCosts holds the configurable per-unit costs of §4.6 phase 4.
// Values are defaults; a future ConfigSchema extension could carry
// these per-character, but only Industry/Limit are character-gated
// today (EmpireBuilder discount) per §4.6.
type BuildCosts struct {
	ShipIndustry, ShipMetal, ShipPopulation       int
	IndustryIndustry, IndustryMetal, IndustryPop   int
	IndustryIndustryEB, IndustryMetalEB, IndustryPopEB int
	LimitIndustry, LimitMetal       int
	LimitIndustryEB, LimitMetalEB   int
	RobotIndustry, RobotMetal, RobotYield int
}

// DefaultBuildCosts returns §4.6 phase 4's listed defaults.
func DefaultBuildCosts() BuildCosts {
	return BuildCosts{
		ShipIndustry: 1, ShipMetal: 1, ShipPopulation: 1,
		IndustryIndustry: 5, IndustryMetal: 5, IndustryPop: 5,
		IndustryIndustryEB: 4, IndustryMetalEB: 4, IndustryPopEB: 4,
		LimitIndustry: 5, LimitMetal: 5,
		LimitIndustryEB: 4, LimitMetalEB: 4,
		RobotIndustry: 1, RobotMetal: 1, RobotYield: 2,
	}
}

// capByResources returns how many units of `want` can actually be
// afforded given available resources and their respective per-unit
// costs, the "each build is capped by the minimum of its required
// resources" rule (§4.6 phase 4, §8 scenario 4).
func capByResources(want int, avail ...struct{ have, cost int }) int {
	max := want
	for _, a := range avail {
		if a.cost <= 0 {
			continue
		}
		if afford := a.have / a.cost; afford < max {
			max = afford
		}
	}
	if max < 0 {
		max = 0
	}
	return max
}

// claimIfNeutral implements the "building iships or pships on a neutral
// world claims it" rule of §4.6 phase 11.
func claimIfNeutral(bus *eventbus.Bus, w *entities.World, builder string) {
	if w.Owner != entities.NeutralOwner {
		return
	}
	w.Owner = builder
	bus.Publish(eventbus.Event{
		Kind:    eventbus.WorldCaptured,
		Payload: eventbus.WorldCapturedPayload{World: w.ID, PreviousOwner: entities.NeutralOwner, NewOwner: builder, Reason: "build_claim"},
	})
}

// BuildIShips applies a BuildIShips order, capped by industry/metal/
// population (§8 scenario 4).
func BuildIShips(bus *eventbus.Bus, costs BuildCosts, w *entities.World, builder string, want int) {
	n := capByResources(want,
		struct{ have, cost int }{w.Industry, costs.ShipIndustry},
		struct{ have, cost int }{w.Metal, costs.ShipMetal},
		struct{ have, cost int }{w.Population, costs.ShipPopulation},
	)
	if n <= 0 {
		return
	}
	w.Industry -= n * costs.ShipIndustry
	w.Metal -= n * costs.ShipMetal
	w.Population -= n * costs.ShipPopulation
	w.IShips += n
	claimIfNeutral(bus, w, builder)
	bus.Publish(eventbus.Event{Kind: eventbus.Build, Payload: eventbus.BuildPayload{World: w.ID, Owner: w.Owner, Kind: "IShips", Amount: n}, Observers: []string{w.Owner}})
}

// BuildPShips applies a BuildPShips order, same cost shape as IShips.
func BuildPShips(bus *eventbus.Bus, costs BuildCosts, w *entities.World, builder string, want int) {
	n := capByResources(want,
		struct{ have, cost int }{w.Industry, costs.ShipIndustry},
		struct{ have, cost int }{w.Metal, costs.ShipMetal},
		struct{ have, cost int }{w.Population, costs.ShipPopulation},
	)
	if n <= 0 {
		return
	}
	w.Industry -= n * costs.ShipIndustry
	w.Metal -= n * costs.ShipMetal
	w.Population -= n * costs.ShipPopulation
	w.PShips += n
	claimIfNeutral(bus, w, builder)
	bus.Publish(eventbus.Event{Kind: eventbus.Build, Payload: eventbus.BuildPayload{World: w.ID, Owner: w.Owner, Kind: "PShips", Amount: n}, Observers: []string{w.Owner}})
}

// BuildToFleet builds ships directly into an existing fleet co-located
// with the building world.
func BuildToFleet(bus *eventbus.Bus, costs BuildCosts, w *entities.World, f *entities.Fleet, want int) {
	n := capByResources(want,
		struct{ have, cost int }{w.Industry, costs.ShipIndustry},
		struct{ have, cost int }{w.Metal, costs.ShipMetal},
		struct{ have, cost int }{w.Population, costs.ShipPopulation},
	)
	if n <= 0 {
		return
	}
	w.Industry -= n * costs.ShipIndustry
	w.Metal -= n * costs.ShipMetal
	w.Population -= n * costs.ShipPopulation
	f.Owner = w.Owner
	f.World = w.ID
	f.Ships += n
	bus.Publish(eventbus.Event{Kind: eventbus.Build, Payload: eventbus.BuildPayload{World: w.ID, Owner: w.Owner, Kind: "BuildToFleet", Amount: n}, Observers: []string{w.Owner}})
}

// BuildIndustry applies a BuildIndustry order, with the EmpireBuilder
// discount (§4.6 phase 4).
func BuildIndustry(bus *eventbus.Bus, costs BuildCosts, w *entities.World, isEmpireBuilder bool, want int) {
	ind, met, pop := costs.IndustryIndustry, costs.IndustryMetal, costs.IndustryPop
	if isEmpireBuilder {
		ind, met, pop = costs.IndustryIndustryEB, costs.IndustryMetalEB, costs.IndustryPopEB
	}
	n := capByResources(want,
		struct{ have, cost int }{w.Industry, ind},
		struct{ have, cost int }{w.Metal, met},
		struct{ have, cost int }{w.Population, pop},
	)
	if n <= 0 {
		return
	}
	w.Industry -= n * ind
	w.Metal -= n * met
	w.Population -= n * pop
	w.Industry += n
	bus.Publish(eventbus.Event{Kind: eventbus.Build, Payload: eventbus.BuildPayload{World: w.ID, Owner: w.Owner, Kind: "Industry", Amount: n}, Observers: []string{w.Owner}})
}

// BuildLimit applies a BuildLimit order, with the EmpireBuilder discount.
func BuildLimit(bus *eventbus.Bus, costs BuildCosts, w *entities.World, isEmpireBuilder bool, want int) {
	ind, met := costs.LimitIndustry, costs.LimitMetal
	if isEmpireBuilder {
		ind, met = costs.LimitIndustryEB, costs.LimitMetalEB
	}
	n := capByResources(want,
		struct{ have, cost int }{w.Industry, ind},
		struct{ have, cost int }{w.Metal, met},
	)
	if n <= 0 {
		return
	}
	w.Industry -= n * ind
	w.Metal -= n * met
	w.Limit += n
	bus.Publish(eventbus.Event{Kind: eventbus.Build, Payload: eventbus.BuildPayload{World: w.ID, Owner: w.Owner, Kind: "Limit", Amount: n}, Observers: []string{w.Owner}})
}

// BuildRobots applies a Berserker-gated BuildRobots order: 1 industry +
// 1 metal yields 2 robots, added to the world's robot population (§4.6
// phase 4). Gating by character is the validator's job; this function
// trusts its caller.
func BuildRobots(bus *eventbus.Bus, costs BuildCosts, w *entities.World, want int) {
	n := capByResources(want,
		struct{ have, cost int }{w.Industry, costs.RobotIndustry},
		struct{ have, cost int }{w.Metal, costs.RobotMetal},
	)
	if n <= 0 {
		return
	}
	w.Industry -= n * costs.RobotIndustry
	w.Metal -= n * costs.RobotMetal
	w.Population += n * costs.RobotYield
	w.PopulationType = entities.PopulationRobot
	bus.Publish(eventbus.Event{Kind: eventbus.Build, Payload: eventbus.BuildPayload{World: w.ID, Owner: w.Owner, Kind: "Robots", Amount: n * costs.RobotYield}, Observers: []string{w.Owner}})
}

// BuildPBB arms a fleet's PBB, consuming no resources beyond the
// fleet-size gate the validator already checked (§4.6 phase 4).
func BuildPBB(f *entities.Fleet) {
	f.HasPBB = true
}

// DropPBB implements §4.6 phase 9: destroys the target world's
// population, industry, and mines, forbidden on homeworlds (validator
// already enforced that), and consumes the fleet's PBB.
func DropPBB(bus *eventbus.Bus, s *gamestate.State, f *entities.Fleet, w *entities.World) {
	f.HasPBB = false
	previousOwner := w.Owner
	w.Population = 0
	w.Industry = 0
	w.Mines = 0
	w.Owner = entities.NeutralOwner
	bus.Publish(eventbus.Event{
		Kind:    eventbus.PBBDropped,
		Payload: eventbus.PBBDroppedPayload{World: w.ID, DroppedBy: f.Owner, PreviousOwner: previousOwner},
	})
}

// ScrapFleetShips destroys up to want ships from a fleet, refunding
// half their metal build cost to the world the fleet currently
// occupies (the ScrapShips order, fleet form: §3's Order variant list).
// want <= 0 means "scrap the whole fleet".
func ScrapFleetShips(costs BuildCosts, w *entities.World, f *entities.Fleet, want int) int {
	n := want
	if n <= 0 || n > f.Ships {
		n = f.Ships
	}
	if n <= 0 {
		return 0
	}
	f.Ships -= n
	if w != nil {
		w.Metal += (n * costs.ShipMetal) / 2
	}
	return n
}

// ScrapWorldShips destroys up to want of a world's defensive ships (the
// ScrapShips order, world form), preferring IShips before PShips, same
// half-metal refund rule.
func ScrapWorldShips(costs BuildCosts, w *entities.World, want int) int {
	n := want
	if n <= 0 {
		return 0
	}
	fromI := min(n, w.IShips)
	w.IShips -= fromI
	n -= fromI
	fromP := min(n, w.PShips)
	w.PShips -= fromP
	scrapped := fromI + fromP
	w.Metal += (scrapped * costs.ShipMetal) / 2
	return scrapped
}
