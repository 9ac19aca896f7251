package mechanics

import (
	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
)

// PlunderScoreTable is §4.11's Pirate plunder score ladder: +50/40/30/
// 20/10 for the 1st..5th plunder of a given world, 0 thereafter.
var PlunderScoreTable = []int{50, 40, 30, 20, 10}

// Plunder implements the Plunder order (Pirate-only, validated
// elsewhere): takes a configured fraction of the target world's metal
// and records the per-world plunder count used both for the score
// ladder and for repeat-plunder diminishing returns.
func Plunder(bus *eventbus.Bus, w *entities.World, p *entities.Player, takeFraction float64, counters map[string]int, counterKey string) (metalTaken int, timesThisGame int) {
	metalTaken = int(float64(w.Metal) * takeFraction)
	w.Metal -= metalTaken
	counters[counterKey]++
	timesThisGame = counters[counterKey]

	bus.Publish(eventbus.Event{
		Kind: eventbus.PlunderOccurred,
		Payload: eventbus.PlunderOccurredPayload{
			World: w.ID, Plunderer: p.Name, MetalTaken: metalTaken, TimesThisGame: timesThisGame,
		},
		Observers: []string{p.Name},
	})
	return metalTaken, timesThisGame
}

// PlunderScore returns the score ladder value for the nth plunder of a
// world (1-indexed); 0 once n exceeds the table.
func PlunderScore(n int) int {
	if n < 1 || n > len(PlunderScoreTable) {
		return 0
	}
	return PlunderScoreTable[n-1]
}
