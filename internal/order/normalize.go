package order

import (
	"fmt"
	"strings"

	"github.com/lab1702/starweb/internal/entities"
)

// The functions below produce the "normalized, stable textual form" §4.3
// requires for the queued-order list, independent of which of the two
// accepted BUILD syntaxes (§9) or which optional-count shorthand the
// player typed.

func moveText(o entities.Order) string {
	hops := make([]string, len(o.Path))
	for i, h := range o.Path {
		hops[i] = fmt.Sprintf("W%d", h)
	}
	return fmt.Sprintf("F%d move %s", o.Fleet, strings.Join(hops, "->"))
}

func buildText(o entities.Order) string {
	switch o.Kind {
	case entities.OrderBuildIShips:
		return fmt.Sprintf("W%d build %d IShips", o.World, o.Count)
	case entities.OrderBuildPShips:
		return fmt.Sprintf("W%d build %d PShips", o.World, o.Count)
	case entities.OrderBuildIndustry:
		return fmt.Sprintf("W%d build %d Industry", o.World, o.Count)
	case entities.OrderBuildLimit:
		return fmt.Sprintf("W%d build %d Limit", o.World, o.Count)
	case entities.OrderBuildRobots:
		return fmt.Sprintf("W%d build %d Robots", o.World, o.Count)
	case entities.OrderBuildToFleet:
		return fmt.Sprintf("W%d build %d ships to F%d", o.World, o.Count, o.Fleet)
	default:
		return "build"
	}
}

func transferText(o entities.Order) string {
	switch {
	case o.Target == entities.FireI:
		return fmt.Sprintf("F%d transfer %d ships to IShips", o.Fleet, o.Count)
	case o.Target == entities.FireP:
		return fmt.Sprintf("F%d transfer %d ships to PShips", o.Fleet, o.Count)
	default:
		return fmt.Sprintf("F%d transfer %d ships to F%d", o.Fleet, o.Count, o.Fleet2)
	}
}

func cargoText(o entities.Order) string {
	verb := map[entities.OrderKind]string{
		entities.OrderLoadCargo:              "load",
		entities.OrderUnloadCargo:            "unload",
		entities.OrderJettisonCargo:          "jettison",
		entities.OrderUnloadConsumerGoods:    "unload consumer goods from",
	}[o.Kind]
	if o.Count < 0 {
		return fmt.Sprintf("F%d %s all cargo", o.Fleet, verb)
	}
	return fmt.Sprintf("F%d %s %d cargo", o.Fleet, verb, o.Count)
}

func migrateText(o entities.Order) string {
	if o.Kind == entities.OrderMigrateConverts {
		return fmt.Sprintf("W%d migrate %d converts to W%d", o.World, o.Count, o.World2)
	}
	return fmt.Sprintf("W%d migrate %d population to W%d", o.World, o.Count, o.World2)
}

func fireFleetText(o entities.Order) string {
	return fmt.Sprintf("F%d fire at F%d", o.Fleet, o.Fleet2)
}

func fireTargetText(o entities.Order) string {
	return fmt.Sprintf("F%d fire at %s", o.Fleet, o.Target)
}

func ambushText(o entities.Order) string {
	if o.Target != "" {
		return fmt.Sprintf("F%d ambush, conditional target %s", o.Fleet, o.Target)
	}
	return fmt.Sprintf("F%d ambush", o.Fleet)
}

func noAmbushText(o entities.Order) string {
	if o.World == 0 {
		return "no ambush (global)"
	}
	return fmt.Sprintf("no ambush at W%d", o.World)
}

func conditionalFireText(o entities.Order) string {
	if o.Fleet2 != 0 {
		return fmt.Sprintf("F%d conditional fire at F%d", o.Fleet, o.Fleet2)
	}
	return fmt.Sprintf("F%d conditional fire at %s", o.Fleet, o.Target)
}

func peaceText(o entities.Order) string {
	if o.Kind == entities.OrderNotPeace {
		return fmt.Sprintf("W%d not at peace", o.World)
	}
	return fmt.Sprintf("W%d at peace", o.World)
}

func giftFleetText(o entities.Order) string {
	return fmt.Sprintf("gift F%d to %s", o.Fleet, o.PlayerArg)
}

func giftWorldText(o entities.Order) string {
	return fmt.Sprintf("gift W%d to %s", o.World, o.PlayerArg)
}

func relationText(o entities.Order) string {
	if o.Unally {
		return fmt.Sprintf("renounce relation with %s", o.PlayerArg)
	}
	return fmt.Sprintf("declare %s with %s", o.Relation, o.PlayerArg)
}
