// Package command implements CommandParser (§4.2): a pure function from
// the compact order-text grammar to a shape-only entities.Order. The
// parser never consults game state — existence, ownership, and resource
// checks are CommandValidator's job (internal/order).
package command

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/enginerr"
)

var (
	reMove          = regexp.MustCompile(`^F(\d+)((?:W\d+)+)$`)
	reMoveHop       = regexp.MustCompile(`W(\d+)`)
	reBuildNew      = regexp.MustCompile(`^W(\d+)B(\d+)(I|P|F\d+|LIMIT|IND|ROBOT)$`)
	reBuildLegacy   = regexp.MustCompile(`^W(\d+)I(\d+)I$`)
	reTransfer      = regexp.MustCompile(`^F(\d+)T(\d+)(I|P|F\d+)$`)
	reLoad          = regexp.MustCompile(`^F(\d+)L(\d+)?$`)
	reUnload        = regexp.MustCompile(`^F(\d+)U(\d+)?$`)
	reUnloadGoods   = regexp.MustCompile(`^F(\d+)UC(\d+)?$`)
	reJettison      = regexp.MustCompile(`^F(\d+)J(\d+)?$`)
	reAmbush        = regexp.MustCompile(`^F(\d+)A(F\d+|P|I|H|C)?$`)
	reConditional   = regexp.MustCompile(`^F(\d+)C(F\d+|I|P|H|C)$`)
	reMigrate       = regexp.MustCompile(`^W(\d+)M(\d+)W(\d+)$`)
	reMigrateConv   = regexp.MustCompile(`^C(\d+)M(\d+)W(\d+)$`)
	reTransferArt   = regexp.MustCompile(`^(F|W)(\d+)TA(\d+)(F\d+|W\d+)$`)
	reViewArtifact  = regexp.MustCompile(`^V(\d+)(F\d+|W\d+)?$`)
	reJoin          = regexp.MustCompile(`^J=(\S+)$`)
	reAlly          = regexp.MustCompile(`^A=(\S+)$`)
	reNotPeace      = regexp.MustCompile(`^N=(\S+)$`)
	reLoader        = regexp.MustCompile(`^L=(\S+)$`)
	reJihad         = regexp.MustCompile(`^X=(\S+)$`)
	reGiftFleet     = regexp.MustCompile(`^F(\d+)G=(\S+)$`)
	reGiftWorld     = regexp.MustCompile(`^W(\d+)G=(\S+)$`)
	reBuildPBB      = regexp.MustCompile(`^F(\d+)B$`)
	reDropPBB       = regexp.MustCompile(`^F(\d+)D$`)
	reRobotAttack   = regexp.MustCompile(`^F(\d+)R(\d+)$`)
	rePlunder       = regexp.MustCompile(`^F(\d+)P(\d+)$`)
	reScrap         = regexp.MustCompile(`^F(\d+)Q$`)
	reProbe         = regexp.MustCompile(`^F(\d+)X$`)
	reScrapWorld    = regexp.MustCompile(`^W(\d+)S(\d+)$`)
	reWorldNotPeace = regexp.MustCompile(`^W(\d+)X$`)
	reNoAmbush      = regexp.MustCompile(`^Z(\d+)?$`)
	reCancel        = regexp.MustCompile(`^CANCEL\s+(\d+)$`)
	reTurn          = regexp.MustCompile(`^TURN$`)
	reJoinFull      = regexp.MustCompile(`^JOIN\s+(\S+)(?:\s+(\d+))?(?:\s+(\S+))?$`)
	reHelp          = regexp.MustCompile(`^HELP(?:\s+(\S+))?$`)
)

// Parse converts a raw command string into a shape-only Order. It is
// case-insensitive and pure: it never reads or mutates game state. The
// returned Order's NormalizedText is left empty; CommandValidator fills
// it on successful validation.
func Parse(input string) (entities.Order, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return entities.Order{}, &enginerr.ParseError{Input: input, Reason: "empty command"}
	}
	upper := strings.ToUpper(trimmed)

	switch {
	case reTurn.MatchString(upper):
		return entities.Order{}, &enginerr.ParseError{Input: input, Reason: "TURN is a query, not an order"}

	case reHelp.MatchString(upper):
		return entities.Order{}, &enginerr.ParseError{Input: input, Reason: "HELP is a query, not an order"}

	case reJoinFull.MatchString(upper):
		return entities.Order{}, &enginerr.ParseError{Input: input, Reason: "JOIN is handled by the router, not the order pipeline"}

	case reCancel.MatchString(upper):
		m := reCancel.FindStringSubmatch(upper)
		idx, _ := strconv.Atoi(m[1])
		return entities.Order{Kind: entities.OrderCancel, Count: idx}, nil

	case reMove.MatchString(upper):
		m := reMove.FindStringSubmatch(upper)
		fleet, _ := strconv.Atoi(m[1])
		hops := reMoveHop.FindAllStringSubmatch(m[2], -1)
		path := make([]int, 0, len(hops))
		for _, h := range hops {
			w, _ := strconv.Atoi(h[1])
			path = append(path, w)
		}
		return entities.Order{Kind: entities.OrderMove, Fleet: fleet, Path: path}, nil

	case reBuildLegacy.MatchString(upper):
		m := reBuildLegacy.FindStringSubmatch(upper)
		world, _ := strconv.Atoi(m[1])
		count, _ := strconv.Atoi(m[2])
		return entities.Order{Kind: entities.OrderBuildIShips, World: world, Count: count}, nil

	case reBuildNew.MatchString(upper):
		m := reBuildNew.FindStringSubmatch(upper)
		world, _ := strconv.Atoi(m[1])
		count, _ := strconv.Atoi(m[2])
		return parseBuildTarget(world, count, m[3])

	case reTransfer.MatchString(upper):
		m := reTransfer.FindStringSubmatch(upper)
		fleet, _ := strconv.Atoi(m[1])
		count, _ := strconv.Atoi(m[2])
		o := entities.Order{Kind: entities.OrderTransferShips, Fleet: fleet, Count: count}
		switch {
		case m[3] == "I":
			o.Target = entities.FireI
		case m[3] == "P":
			o.Target = entities.FireP
		case strings.HasPrefix(m[3], "F"):
			f2, _ := strconv.Atoi(m[3][1:])
			o.Fleet2 = f2
		}
		return o, nil

	case reUnloadGoods.MatchString(upper):
		m := reUnloadGoods.FindStringSubmatch(upper)
		fleet, _ := strconv.Atoi(m[1])
		count := -1
		if m[2] != "" {
			count, _ = strconv.Atoi(m[2])
		}
		return entities.Order{Kind: entities.OrderUnloadConsumerGoods, Fleet: fleet, Count: count}, nil

	case reLoad.MatchString(upper):
		m := reLoad.FindStringSubmatch(upper)
		fleet, _ := strconv.Atoi(m[1])
		count := -1
		if m[2] != "" {
			count, _ = strconv.Atoi(m[2])
		}
		return entities.Order{Kind: entities.OrderLoadCargo, Fleet: fleet, Count: count}, nil

	case reUnload.MatchString(upper):
		m := reUnload.FindStringSubmatch(upper)
		fleet, _ := strconv.Atoi(m[1])
		count := -1
		if m[2] != "" {
			count, _ = strconv.Atoi(m[2])
		}
		return entities.Order{Kind: entities.OrderUnloadCargo, Fleet: fleet, Count: count}, nil

	case reJettison.MatchString(upper):
		m := reJettison.FindStringSubmatch(upper)
		fleet, _ := strconv.Atoi(m[1])
		count := -1
		if m[2] != "" {
			count, _ = strconv.Atoi(m[2])
		}
		return entities.Order{Kind: entities.OrderJettisonCargo, Fleet: fleet, Count: count}, nil

	case reConditional.MatchString(upper):
		m := reConditional.FindStringSubmatch(upper)
		fleet, _ := strconv.Atoi(m[1])
		o := entities.Order{Kind: entities.OrderConditionalFire, Fleet: fleet}
		applyFireTarget(&o, m[2])
		return o, nil

	case reAmbush.MatchString(upper):
		m := reAmbush.FindStringSubmatch(upper)
		fleet, _ := strconv.Atoi(m[1])
		o := entities.Order{Kind: entities.OrderAmbush, Fleet: fleet}
		if m[2] != "" {
			applyFireTarget(&o, m[2])
		}
		return o, nil

	case reMigrateConv.MatchString(upper):
		m := reMigrateConv.FindStringSubmatch(upper)
		src, _ := strconv.Atoi(m[1])
		count, _ := strconv.Atoi(m[2])
		dst, _ := strconv.Atoi(m[3])
		return entities.Order{Kind: entities.OrderMigrateConverts, World: src, Count: count, World2: dst}, nil

	case reMigrate.MatchString(upper):
		m := reMigrate.FindStringSubmatch(upper)
		src, _ := strconv.Atoi(m[1])
		count, _ := strconv.Atoi(m[2])
		dst, _ := strconv.Atoi(m[3])
		return entities.Order{Kind: entities.OrderMigrate, World: src, Count: count, World2: dst}, nil

	case reTransferArt.MatchString(upper):
		m := reTransferArt.FindStringSubmatch(upper)
		id, _ := strconv.Atoi(m[3])
		o := entities.Order{Kind: entities.OrderTransferArtifact, ArtifactID: id}
		srcNum, _ := strconv.Atoi(m[2])
		if m[1] == "F" {
			o.Fleet = srcNum
		} else {
			o.World = srcNum
		}
		dest := m[4]
		destNum, _ := strconv.Atoi(dest[1:])
		if strings.HasPrefix(dest, "F") {
			o.Fleet2 = destNum
		} else {
			o.World2 = destNum
		}
		return o, nil

	case reViewArtifact.MatchString(upper):
		m := reViewArtifact.FindStringSubmatch(upper)
		id, _ := strconv.Atoi(m[1])
		o := entities.Order{Kind: entities.OrderViewArtifact, ArtifactID: id}
		if m[2] != "" {
			num, _ := strconv.Atoi(m[2][1:])
			if strings.HasPrefix(m[2], "F") {
				o.Fleet = num
			} else {
				o.World = num
			}
		}
		return o, nil

	case reAlly.MatchString(upper):
		m := reAlly.FindStringSubmatch(upper)
		return entities.Order{Kind: entities.OrderDeclareRelation, Relation: entities.RelationAlly, PlayerArg: m[1]}, nil

	case reLoader.MatchString(upper):
		m := reLoader.FindStringSubmatch(upper)
		return entities.Order{Kind: entities.OrderDeclareRelation, Relation: entities.RelationLoader, PlayerArg: m[1]}, nil

	case reJihad.MatchString(upper):
		m := reJihad.FindStringSubmatch(upper)
		return entities.Order{Kind: entities.OrderDeclareRelation, Relation: entities.RelationJihad, PlayerArg: m[1]}, nil

	case reNotPeace.MatchString(upper):
		m := reNotPeace.FindStringSubmatch(upper)
		return entities.Order{Kind: entities.OrderDeclareRelation, Relation: entities.RelationNone, Unally: true, PlayerArg: m[1]}, nil

	case reGiftFleet.MatchString(upper):
		m := reGiftFleet.FindStringSubmatch(upper)
		fleet, _ := strconv.Atoi(m[1])
		return entities.Order{Kind: entities.OrderGiftFleet, Fleet: fleet, PlayerArg: m[2]}, nil

	case reGiftWorld.MatchString(upper):
		m := reGiftWorld.FindStringSubmatch(upper)
		world, _ := strconv.Atoi(m[1])
		return entities.Order{Kind: entities.OrderGiftWorld, World: world, PlayerArg: m[2]}, nil

	case reBuildPBB.MatchString(upper):
		m := reBuildPBB.FindStringSubmatch(upper)
		fleet, _ := strconv.Atoi(m[1])
		return entities.Order{Kind: entities.OrderBuildPBB, Fleet: fleet}, nil

	case reDropPBB.MatchString(upper):
		m := reDropPBB.FindStringSubmatch(upper)
		fleet, _ := strconv.Atoi(m[1])
		return entities.Order{Kind: entities.OrderDropPBB, Fleet: fleet}, nil

	case reRobotAttack.MatchString(upper):
		m := reRobotAttack.FindStringSubmatch(upper)
		fleet, _ := strconv.Atoi(m[1])
		world, _ := strconv.Atoi(m[2])
		return entities.Order{Kind: entities.OrderRobotAttack, Fleet: fleet, World: world}, nil

	case rePlunder.MatchString(upper):
		m := rePlunder.FindStringSubmatch(upper)
		fleet, _ := strconv.Atoi(m[1])
		world, _ := strconv.Atoi(m[2])
		return entities.Order{Kind: entities.OrderPlunder, Fleet: fleet, World: world}, nil

	case reScrap.MatchString(upper):
		m := reScrap.FindStringSubmatch(upper)
		fleet, _ := strconv.Atoi(m[1])
		return entities.Order{Kind: entities.OrderScrapShips, Fleet: fleet}, nil

	case reProbe.MatchString(upper):
		m := reProbe.FindStringSubmatch(upper)
		fleet, _ := strconv.Atoi(m[1])
		return entities.Order{Kind: entities.OrderProbe, Fleet: fleet}, nil

	case reScrapWorld.MatchString(upper):
		// W#S# is scrap-N-ships-at-world garrison; reuses ScrapShips on a
		// world rather than a fleet operand.
		m := reScrapWorld.FindStringSubmatch(upper)
		world, _ := strconv.Atoi(m[1])
		count, _ := strconv.Atoi(m[2])
		return entities.Order{Kind: entities.OrderScrapShips, World: world, Count: count}, nil

	case reWorldNotPeace.MatchString(upper):
		m := reWorldNotPeace.FindStringSubmatch(upper)
		world, _ := strconv.Atoi(m[1])
		return entities.Order{Kind: entities.OrderNotPeace, World: world}, nil

	case reNoAmbush.MatchString(upper):
		m := reNoAmbush.FindStringSubmatch(upper)
		o := entities.Order{Kind: entities.OrderNoAmbush}
		if m[1] != "" {
			o.World, _ = strconv.Atoi(m[1])
		} else {
			o.World = 0 // global scope
		}
		return o, nil

	default:
		return entities.Order{}, &enginerr.ParseError{Input: input, Reason: "unrecognized command shape"}
	}
}

func parseBuildTarget(world, count int, target string) (entities.Order, error) {
	switch {
	case target == "I":
		return entities.Order{Kind: entities.OrderBuildIShips, World: world, Count: count}, nil
	case target == "P":
		return entities.Order{Kind: entities.OrderBuildPShips, World: world, Count: count}, nil
	case target == "LIMIT":
		return entities.Order{Kind: entities.OrderBuildLimit, World: world, Count: count}, nil
	case target == "IND":
		return entities.Order{Kind: entities.OrderBuildIndustry, World: world, Count: count}, nil
	case target == "ROBOT":
		return entities.Order{Kind: entities.OrderBuildRobots, World: world, Count: count}, nil
	case strings.HasPrefix(target, "F"):
		fleet, _ := strconv.Atoi(target[1:])
		return entities.Order{Kind: entities.OrderBuildToFleet, World: world, Count: count, Fleet: fleet}, nil
	default:
		return entities.Order{}, &enginerr.ParseError{Input: target, Reason: "unknown build target"}
	}
}

func applyFireTarget(o *entities.Order, token string) {
	switch {
	case token == "I":
		o.Kind = pickFireKind(o.Kind)
		o.Target = entities.FireI
	case token == "P":
		o.Kind = pickFireKind(o.Kind)
		o.Target = entities.FireP
	case token == "H":
		o.Kind = pickFireKind(o.Kind)
		o.Target = entities.FireH
	case token == "C":
		o.Kind = pickFireKind(o.Kind)
		o.Target = entities.FireC
	case strings.HasPrefix(token, "F"):
		f2, _ := strconv.Atoi(token[1:])
		o.Fleet2 = f2
		if o.Kind != entities.OrderConditionalFire {
			o.Kind = entities.OrderFireAtFleet
		}
	}
}

// pickFireKind keeps ConditionalFire as ConditionalFire but otherwise
// routes a world-directed fire token to FireAtTarget.
func pickFireKind(current entities.OrderKind) entities.OrderKind {
	if current == entities.OrderConditionalFire {
		return current
	}
	return entities.OrderFireAtTarget
}

// ParseJoin handles the JOIN command specially: it is routed directly by
// MessageRouter (it precedes a player existing, so it can never be a
// queued Order), but the grammar is defined here so the normalized form
// stays consistent with the rest of §4.2.
type JoinArgs struct {
	Name      string
	Minutes   int
	Character entities.CharacterType
}

// ParseJoin parses `JOIN <name> [<minutes>] [<character>]`.
func ParseJoin(input string) (JoinArgs, error) {
	trimmed := strings.TrimSpace(input)
	m := reJoinFull.FindStringSubmatch(strings.ToUpper(trimmed))
	if m == nil {
		return JoinArgs{}, &enginerr.ParseError{Input: input, Reason: "malformed JOIN"}
	}
	fields := strings.Fields(trimmed)
	args := JoinArgs{Name: fields[1], Minutes: 60, Character: entities.EmpireBuilder}
	if m[2] != "" {
		args.Minutes, _ = strconv.Atoi(m[2])
	}
	if m[3] != "" {
		args.Character = entities.CharacterType(strings.Title(strings.ToLower(m[3])))
		for _, c := range []entities.CharacterType{entities.EmpireBuilder, entities.Merchant, entities.Pirate,
			entities.ArtifactCollector, entities.Berserker, entities.Apostle} {
			if strings.EqualFold(string(c), m[3]) {
				args.Character = c
			}
		}
	}
	return args, nil
}
