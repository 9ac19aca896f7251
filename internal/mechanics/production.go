package mechanics

import (
	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
)

// ProductionParams carries the configured knobs §4.6 phase 10 needs
// beyond per-world resource fields.
type ProductionParams struct {
	MetalPerMine int
	GrowthRate   float64 // fraction of (limit - population) added per turn
}

// ApplyProduction implements §4.6 phase 10 for one owned world:
// effective_industry/effective_mines clamp to what the world can
// actually support, metal accrues from effective mines, and population
// grows toward its limit. Artifacts are never produced here (§4.6).
func ApplyProduction(bus *eventbus.Bus, params ProductionParams, w *entities.World) {
	if w.Owner == entities.NeutralOwner {
		return
	}
	effectiveIndustry := min(w.Industry, w.Population)
	effectiveMines := min(w.Mines, effectiveIndustry)

	metalGain := effectiveMines * params.MetalPerMine
	w.Metal += metalGain

	room := w.Limit - w.Population
	growth := 0
	if room > 0 {
		growth = int(float64(room) * params.GrowthRate)
		if growth <= 0 && params.GrowthRate > 0 {
			growth = 1
		}
		if growth > room {
			growth = room
		}
	}
	w.Population += growth

	if metalGain > 0 || growth > 0 {
		bus.Publish(eventbus.Event{
			Kind: eventbus.Production,
			Payload: eventbus.ProductionPayload{
				World: w.ID, Owner: w.Owner, MetalProduced: metalGain, PopulationGrowth: growth,
			},
			Observers: []string{w.Owner},
		})
	}
}
