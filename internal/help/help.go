// Package help implements the HELP query of §6.2: general topic text
// for the compact command grammar, plus contextual summaries of a
// specific fleet or world when HELP is given an `F<n>` or `W<n>`
// argument. It is a pure lookup layer — the router calls it directly
// for the HELP frame instead of routing through CommandParser, which
// rejects HELP as "a query, not an order" (internal/command).
package help

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/gamestate"
)

// Topic names one entry of the general help index.
type Topic string

const (
	TopicMove       Topic = "move"
	TopicBuild      Topic = "build"
	TopicCargo      Topic = "cargo"
	TopicCombat     Topic = "combat"
	TopicDiplomacy  Topic = "diplomacy"
	TopicArtifacts  Topic = "artifacts"
	TopicCharacters Topic = "characters"
	TopicOrders     Topic = "orders"
)

var topics = map[Topic]string{
	TopicMove: "F<n>W<n>(W<n>)* moves fleet n along the given chain of connected worlds, " +
		"one hop resolved per turn. Worlds must be direct neighbors at the time each hop runs.",
	TopicBuild: "W<n>B<n>{I|P|F<n>|LIMIT|IND|ROBOT} builds at world n: I/P ships into the " +
		"world's defenses, F<n> into an existing fleet there, LIMIT/IND raise capacity or " +
		"industry, ROBOT converts industry+metal into robot population (Berserker only).",
	TopicCargo: "F<n>L[<n>] loads population aboard fleet n, F<n>U[<n>] unloads it, " +
		"F<n>UC[<n>] delivers metal as consumer goods to another player's world, " +
		"F<n>J[<n>] jettisons cargo with no destination. Omitted counts mean \"as much as fits\".",
	TopicCombat: "F<n>A{I|P|H|C|F<n>} fires fleet n at a world's I or P defenses, its homeworld " +
		"population, its converts, or another fleet. A bare F<n>A sets an ambush: enemy fleets arriving " +
		"at that world during movement take double-strength fire. F<n>T<n>{I|P|F<n>} transfers ships " +
		"from fleet n to the world's I/P defenses or to another fleet. " +
		"F<n>C{I|P|H|C|F<n>} arms a conditional strike that fires only if fleet n was fired on earlier this turn.",
	TopicDiplomacy: "A=name declares an ally, N=name withdraws non-aggression, L=name grants " +
		"a loader relation (cargo access to your worlds without ownership), X=name declares jihad " +
		"on a target, unlocking the Pirate/Berserker per-kill jihad bonus against them.",
	TopicArtifacts: "V<n>[F<n>|W<n>] queues a view-artifact order; the reply confirms the order and carries " +
		"no artifact detail. (F|W)<n>TA<n>{F<n>|W<n>} transfers " +
		"an artifact between a fleet and a co-located fleet or world.",
	TopicCharacters: "Character choice at JOIN gates scoring and a few mechanics: EmpireBuilder " +
		"(population/industry/mines), Merchant (consumer goods delivery), Pirate (plunder, auto-" +
		"capture), ArtifactCollector (artifact points, museum worlds), Berserker (robots, PBB, kills), " +
		"Apostle (converts, martyrs).",
	TopicOrders: "CANCEL <idx> removes a queued order by its 1-based position in your order list. " +
		"TURN requests the current turn to end as soon as every connected player is ready.",
}

// General returns the full topic index, sorted by topic name, for a
// bare `HELP` with no argument.
func General() string {
	names := make([]string, 0, len(topics))
	for t := range topics {
		names = append(names, string(t))
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Topics: ")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString(". HELP <topic> for detail, or HELP F<n> / HELP W<n> for a specific fleet or world.\n")
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %s\n", name, topics[Topic(name)])
	}
	return b.String()
}

// ForTopic returns the detail text for a named topic, or false if no
// such topic is registered.
func ForTopic(name string) (string, bool) {
	text, ok := topics[Topic(strings.ToLower(name))]
	return text, ok
}

// Lookup resolves a HELP argument exactly as §6.2 allows: a bare topic
// name, `F<n>` for fleet n's contextual summary, or `W<n>` for world
// n's. An unrecognized argument returns false so the caller can render
// a standard "unknown help topic" event frame.
func Lookup(arg string, s *gamestate.State) (string, bool) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return General(), true
	}
	upper := strings.ToUpper(arg)

	if id, ok := parsePrefixedID(upper, "F"); ok {
		f, exists := s.Fleets[id]
		if !exists {
			return "", false
		}
		return ForFleet(s, f), true
	}
	if id, ok := parsePrefixedID(upper, "W"); ok {
		w, exists := s.Worlds[id]
		if !exists {
			return "", false
		}
		return ForWorld(s, w), true
	}
	return ForTopic(arg)
}

func parsePrefixedID(s, prefix string) (int, bool) {
	if !strings.HasPrefix(s, prefix) {
		return 0, false
	}
	id, err := strconv.Atoi(s[len(prefix):])
	if err != nil {
		return 0, false
	}
	return id, true
}

// ForFleet renders fleet n's contextual summary: owner, location,
// strength, cargo, and standing orders — everything a player would
// otherwise have to cross-reference from the full projection by hand.
func ForFleet(s *gamestate.State, f *entities.Fleet) string {
	owner := f.Owner
	if owner == entities.NeutralOwner {
		owner = "(neutral)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Fleet %d: owner=%s world=%d ships=%d cargo=%d", f.ID, owner, f.World, f.Ships, f.Cargo)
	if f.HasPBB {
		b.WriteString(" armed-with-PBB")
	}
	if f.IsAmbushing {
		b.WriteString(" ambushing")
	}
	if len(f.PendingMovePath) > 0 {
		fmt.Fprintf(&b, " en-route-to=%v", f.PendingMovePath)
	}
	if owner != entities.NeutralOwner {
		if p, ok := s.Players[owner]; ok {
			var pending []string
			for i, o := range p.Orders {
				if o.Fleet == f.ID || o.Fleet2 == f.ID {
					pending = append(pending, fmt.Sprintf("#%d %s", i+1, o.NormalizedText))
				}
			}
			if len(pending) > 0 {
				b.WriteString(" orders: ")
				b.WriteString(strings.Join(pending, "; "))
			}
		}
	}
	return b.String()
}

// ForWorld renders world n's contextual summary.
func ForWorld(s *gamestate.State, w *entities.World) string {
	owner := w.Owner
	if owner == entities.NeutralOwner {
		owner = "(neutral)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "World %d: owner=%s population=%d/%d industry=%d metal=%d mines=%d iships=%d pships=%d",
		w.ID, owner, w.Population, w.Limit, w.Industry, w.Metal, w.Mines, w.IShips, w.PShips)
	if w.Key != "" {
		b.WriteString(" (homeworld)")
	}
	if w.IsBlackHole {
		b.WriteString(" black-hole")
	}
	if w.PopulationType != "" && w.PopulationType != entities.PopulationHuman {
		fmt.Fprintf(&b, " population_type=%s", w.PopulationType)
	}
	if len(w.Artifacts) > 0 {
		b.WriteString(" has-artifacts")
	}
	var neighbors []int
	for n := range w.Neighbors {
		neighbors = append(neighbors, n)
	}
	sort.Ints(neighbors)
	if len(neighbors) > 0 {
		fmt.Fprintf(&b, " neighbors=%v", neighbors)
	}
	return b.String()
}
