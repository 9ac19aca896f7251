package order

import (
	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/enginerr"
	"github.com/lab1702/starweb/internal/gamestate"
)

// Validate checks o against current state and player ownership (§4.3),
// returning a normalized copy (NormalizedText populated) on success or a
// *enginerr.ValidationError on failure. It never mutates state.
func Validate(s *gamestate.State, playerName string, o entities.Order) (entities.Order, error) {
	p, ok := s.Players[playerName]
	if !ok {
		return o, enginerr.NewValidationError(playerName, "you are not a known player")
	}

	switch o.Kind {
	case entities.OrderMove:
		return validateMove(s, p, o)
	case entities.OrderBuildIShips, entities.OrderBuildPShips, entities.OrderBuildIndustry,
		entities.OrderBuildLimit, entities.OrderBuildRobots:
		return validateBuildWorld(s, p, o)
	case entities.OrderBuildToFleet:
		return validateBuildToFleet(s, p, o)
	case entities.OrderTransferShips:
		return validateTransferShips(s, p, o)
	case entities.OrderLoadCargo, entities.OrderUnloadCargo, entities.OrderJettisonCargo, entities.OrderUnloadConsumerGoods:
		return validateCargo(s, p, o)
	case entities.OrderMigrate, entities.OrderMigrateConverts:
		return validateMigrate(s, p, o)
	case entities.OrderFireAtFleet:
		return validateFireAtFleet(s, p, o)
	case entities.OrderFireAtTarget:
		return validateFireAtTarget(s, p, o)
	case entities.OrderAmbush, entities.OrderNoAmbush:
		return validateAmbush(s, p, o)
	case entities.OrderConditionalFire:
		return validateConditionalFire(s, p, o)
	case entities.OrderPeace, entities.OrderNotPeace:
		return validatePeace(s, p, o)
	case entities.OrderGiftFleet:
		return validateGiftFleet(s, p, o)
	case entities.OrderGiftWorld:
		return validateGiftWorld(s, p, o)
	case entities.OrderBuildPBB:
		return validateBuildPBB(s, p, o)
	case entities.OrderDropPBB:
		return validateDropPBB(s, p, o)
	case entities.OrderRobotAttack:
		return validateRobotAttack(s, p, o)
	case entities.OrderTransferArtifact:
		return validateTransferArtifact(s, p, o)
	case entities.OrderViewArtifact:
		return validateViewArtifact(s, p, o)
	case entities.OrderDeclareRelation:
		return validateDeclareRelation(s, p, o)
	case entities.OrderPlunder:
		return validatePlunder(s, p, o)
	case entities.OrderScrapShips:
		return validateScrap(s, p, o)
	case entities.OrderProbe:
		return validateProbe(s, p, o)
	case entities.OrderCancel:
		return o, nil
	default:
		return o, enginerr.NewValidationError(playerName, "unsupported order kind")
	}
}

// --- shared predicates, named per §4.3 ---

func fleetExists(s *gamestate.State, id int) (*entities.Fleet, bool) {
	f, ok := s.Fleets[id]
	return f, ok
}

func fleetOwned(f *entities.Fleet, player string) bool {
	return f.Owner == player
}

func fleetNonEmpty(f *entities.Fleet) bool {
	return f.Ships > 0
}

func worldExists(s *gamestate.State, id int) (*entities.World, bool) {
	w, ok := s.Worlds[id]
	return w, ok
}

func worldOwned(w *entities.World, player string) bool {
	return w.Owner == player
}

func worldsConnected(s *gamestate.State, a, b int) bool {
	wa, ok := s.Worlds[a]
	if !ok {
		return false
	}
	return wa.Neighbors[b]
}

func sameLocation(f *entities.Fleet, worldID int) bool {
	return f.World == worldID
}

// --- per-kind validators ---

func validateMove(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	f, ok := fleetExists(s, o.Fleet)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "fleet %d does not exist", o.Fleet)
	}
	if !fleetOwned(f, p.Name) {
		return o, enginerr.NewValidationError(p.Name, "you do not own fleet %d", o.Fleet)
	}
	if !fleetNonEmpty(f) {
		return o, enginerr.NewValidationError(p.Name, "fleet %d has no ships", o.Fleet)
	}
	if For(p).HasExclusiveOrder(o.Fleet) {
		return o, enginerr.NewValidationError(p.Name, "fleet %d already has a move or attack order this turn", o.Fleet)
	}
	if len(o.Path) == 0 {
		return o, enginerr.NewValidationError(p.Name, "move order has no destination")
	}
	cur := f.World
	for _, hop := range o.Path {
		if _, ok := worldExists(s, hop); !ok {
			return o, enginerr.NewValidationError(p.Name, "world %d does not exist", hop)
		}
		if cur != entities.NoWorld && !worldsConnected(s, cur, hop) {
			return o, enginerr.NewValidationError(p.Name, "world %d is not connected to %d", hop, cur)
		}
		cur = hop
	}
	o.NormalizedText = moveText(o)
	return o, nil
}

func validateBuildWorld(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	w, ok := worldExists(s, o.World)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "world %d does not exist", o.World)
	}
	if !worldOwned(w, p.Name) {
		return o, enginerr.NewValidationError(p.Name, "you do not own world %d", o.World)
	}
	if o.Count <= 0 {
		return o, enginerr.NewValidationError(p.Name, "build count must be positive")
	}
	if o.Kind == entities.OrderBuildRobots && p.CharacterType != entities.Berserker {
		return o, enginerr.NewValidationError(p.Name, "only Berserkers may build robots")
	}
	o.NormalizedText = buildText(o)
	return o, nil
}

func validateBuildToFleet(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	w, ok := worldExists(s, o.World)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "world %d does not exist", o.World)
	}
	if !worldOwned(w, p.Name) {
		return o, enginerr.NewValidationError(p.Name, "you do not own world %d", o.World)
	}
	f, ok := fleetExists(s, o.Fleet)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "fleet %d does not exist", o.Fleet)
	}
	if f.Owner != entities.NeutralOwner && f.Owner != p.Name {
		return o, enginerr.NewValidationError(p.Name, "fleet %d belongs to another player", o.Fleet)
	}
	if !sameLocation(f, o.World) && f.Ships > 0 {
		return o, enginerr.NewValidationError(p.Name, "fleet %d is not at world %d", o.Fleet, o.World)
	}
	if o.Count <= 0 {
		return o, enginerr.NewValidationError(p.Name, "build count must be positive")
	}
	o.NormalizedText = buildText(o)
	return o, nil
}

func validateTransferShips(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	f, ok := fleetExists(s, o.Fleet)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "fleet %d does not exist", o.Fleet)
	}
	if !fleetOwned(f, p.Name) {
		return o, enginerr.NewValidationError(p.Name, "you do not own fleet %d", o.Fleet)
	}
	if o.Count <= 0 || o.Count > f.Ships {
		return o, enginerr.NewValidationError(p.Name, "fleet %d does not have %d ships to transfer", o.Fleet, o.Count)
	}
	if o.Fleet2 != 0 {
		dst, ok := fleetExists(s, o.Fleet2)
		if !ok {
			return o, enginerr.NewValidationError(p.Name, "fleet %d does not exist", o.Fleet2)
		}
		if !sameLocation(f, dst.World) {
			return o, enginerr.NewValidationError(p.Name, "fleets %d and %d are not at the same world", o.Fleet, o.Fleet2)
		}
	}
	o.NormalizedText = transferText(o)
	return o, nil
}

func validateCargo(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	f, ok := fleetExists(s, o.Fleet)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "fleet %d does not exist", o.Fleet)
	}
	if !fleetOwned(f, p.Name) {
		return o, enginerr.NewValidationError(p.Name, "you do not own fleet %d", o.Fleet)
	}
	w, ok := worldExists(s, f.World)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "fleet %d is not at a world", o.Fleet)
	}
	if o.Kind == entities.OrderLoadCargo && !worldOwned(w, p.Name) && !loaderPermitted(s, p, w.Owner) {
		return o, enginerr.NewValidationError(p.Name, "you may not load cargo at world %d", f.World)
	}
	o.NormalizedText = cargoText(o)
	return o, nil
}

func validateMigrate(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	w, ok := worldExists(s, o.World)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "world %d does not exist", o.World)
	}
	if !worldOwned(w, p.Name) {
		return o, enginerr.NewValidationError(p.Name, "you do not own world %d", o.World)
	}
	if !worldsConnected(s, o.World, o.World2) {
		return o, enginerr.NewValidationError(p.Name, "world %d is not connected to %d", o.World, o.World2)
	}
	if o.Kind == entities.OrderMigrateConverts && p.CharacterType != entities.Apostle {
		return o, enginerr.NewValidationError(p.Name, "only Apostles may migrate converts")
	}
	if o.Count <= 0 {
		return o, enginerr.NewValidationError(p.Name, "migration count must be positive")
	}
	o.NormalizedText = migrateText(o)
	return o, nil
}

func validateFireAtFleet(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	f, ok := fleetExists(s, o.Fleet)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "fleet %d does not exist", o.Fleet)
	}
	if !fleetOwned(f, p.Name) {
		return o, enginerr.NewValidationError(p.Name, "you do not own fleet %d", o.Fleet)
	}
	if f.AtPeace {
		return o, enginerr.NewValidationError(p.Name, "fleet %d is at peace and may not fire", o.Fleet)
	}
	target, ok := fleetExists(s, o.Fleet2)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "fleet %d does not exist", o.Fleet2)
	}
	if !sameLocation(f, target.World) {
		return o, enginerr.NewValidationError(p.Name, "fleet %d is not at the same world as fleet %d", o.Fleet, o.Fleet2)
	}
	if For(p).HasExclusiveOrder(o.Fleet) {
		return o, enginerr.NewValidationError(p.Name, "fleet %d already has a move or attack order this turn", o.Fleet)
	}
	o.NormalizedText = fireFleetText(o)
	return o, nil
}

func validateFireAtTarget(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	f, ok := fleetExists(s, o.Fleet)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "fleet %d does not exist", o.Fleet)
	}
	if !fleetOwned(f, p.Name) {
		return o, enginerr.NewValidationError(p.Name, "you do not own fleet %d", o.Fleet)
	}
	if f.AtPeace {
		return o, enginerr.NewValidationError(p.Name, "fleet %d is at peace and may not fire", o.Fleet)
	}
	if _, ok := worldExists(s, f.World); !ok {
		return o, enginerr.NewValidationError(p.Name, "fleet %d is not at a world", o.Fleet)
	}
	if For(p).HasExclusiveOrder(o.Fleet) {
		return o, enginerr.NewValidationError(p.Name, "fleet %d already has a move or attack order this turn", o.Fleet)
	}
	o.NormalizedText = fireTargetText(o)
	return o, nil
}

func validateAmbush(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	if o.Kind == entities.OrderNoAmbush {
		o.NormalizedText = noAmbushText(o)
		return o, nil
	}
	f, ok := fleetExists(s, o.Fleet)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "fleet %d does not exist", o.Fleet)
	}
	if !fleetOwned(f, p.Name) {
		return o, enginerr.NewValidationError(p.Name, "you do not own fleet %d", o.Fleet)
	}
	if For(p).HasExclusiveOrder(o.Fleet) {
		return o, enginerr.NewValidationError(p.Name, "fleet %d already has a move or attack order this turn", o.Fleet)
	}
	o.NormalizedText = ambushText(o)
	return o, nil
}

func validateConditionalFire(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	f, ok := fleetExists(s, o.Fleet)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "fleet %d does not exist", o.Fleet)
	}
	if !fleetOwned(f, p.Name) {
		return o, enginerr.NewValidationError(p.Name, "you do not own fleet %d", o.Fleet)
	}
	// ConditionalFire is mutually exclusive with Move, but may coexist
	// with an Ambush order on a *different* fleet (§4.4) — it is only
	// exclusive with another exclusive order on the *same* fleet.
	if For(p).HasExclusiveOrder(o.Fleet) {
		return o, enginerr.NewValidationError(p.Name, "fleet %d already has a move or attack order this turn", o.Fleet)
	}
	o.NormalizedText = conditionalFireText(o)
	return o, nil
}

func validatePeace(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	w, ok := worldExists(s, o.World)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "world %d does not exist", o.World)
	}
	_ = w
	o.NormalizedText = peaceText(o)
	return o, nil
}

func validateGiftFleet(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	f, ok := fleetExists(s, o.Fleet)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "fleet %d does not exist", o.Fleet)
	}
	if !fleetOwned(f, p.Name) {
		return o, enginerr.NewValidationError(p.Name, "you do not own fleet %d", o.Fleet)
	}
	if _, ok := s.PlayerByCI(o.PlayerArg); !ok {
		return o, enginerr.NewValidationError(p.Name, "player %q does not exist", o.PlayerArg)
	}
	if equalFold(o.PlayerArg, p.Name) {
		return o, enginerr.NewValidationError(p.Name, "you may not gift to yourself")
	}
	o.NormalizedText = giftFleetText(o)
	return o, nil
}

func validateGiftWorld(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	w, ok := worldExists(s, o.World)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "world %d does not exist", o.World)
	}
	if !worldOwned(w, p.Name) {
		return o, enginerr.NewValidationError(p.Name, "you do not own world %d", o.World)
	}
	if w.Key == p.Name {
		return o, enginerr.NewValidationError(p.Name, "your homeworld may not be gifted")
	}
	if equalFold(o.PlayerArg, p.Name) {
		return o, enginerr.NewValidationError(p.Name, "you may not gift to yourself")
	}
	if _, ok := s.PlayerByCI(o.PlayerArg); !ok {
		return o, enginerr.NewValidationError(p.Name, "player %q does not exist", o.PlayerArg)
	}
	o.NormalizedText = giftWorldText(o)
	return o, nil
}

func validateBuildPBB(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	f, ok := fleetExists(s, o.Fleet)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "fleet %d does not exist", o.Fleet)
	}
	if !fleetOwned(f, p.Name) {
		return o, enginerr.NewValidationError(p.Name, "you do not own fleet %d", o.Fleet)
	}
	if f.Ships < 25 {
		return o, enginerr.NewValidationError(p.Name, "fleet %d needs at least 25 ships to build a PBB", o.Fleet)
	}
	if f.HasPBB {
		return o, enginerr.NewValidationError(p.Name, "fleet %d already has a PBB", o.Fleet)
	}
	o.NormalizedText = "build PBB on fleet"
	return o, nil
}

func validateDropPBB(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	f, ok := fleetExists(s, o.Fleet)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "fleet %d does not exist", o.Fleet)
	}
	if !fleetOwned(f, p.Name) {
		return o, enginerr.NewValidationError(p.Name, "you do not own fleet %d", o.Fleet)
	}
	if !f.HasPBB {
		return o, enginerr.NewValidationError(p.Name, "fleet %d has no PBB to drop", o.Fleet)
	}
	w, ok := worldExists(s, f.World)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "fleet %d is not at a world", o.Fleet)
	}
	if w.Key != "" {
		return o, enginerr.NewValidationError(p.Name, "a PBB may not be dropped on a homeworld")
	}
	o.NormalizedText = "drop PBB"
	return o, nil
}

func validateRobotAttack(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	if p.CharacterType != entities.Berserker {
		return o, enginerr.NewValidationError(p.Name, "only Berserkers may order a robot attack")
	}
	f, ok := fleetExists(s, o.Fleet)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "fleet %d does not exist", o.Fleet)
	}
	if !fleetOwned(f, p.Name) {
		return o, enginerr.NewValidationError(p.Name, "you do not own fleet %d", o.Fleet)
	}
	if !sameLocation(f, o.World) {
		return o, enginerr.NewValidationError(p.Name, "fleet %d is not at world %d", o.Fleet, o.World)
	}
	o.NormalizedText = "robot attack"
	return o, nil
}

func validateTransferArtifact(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	if _, ok := s.Artifacts[o.ArtifactID]; !ok {
		return o, enginerr.NewValidationError(p.Name, "artifact %d does not exist", o.ArtifactID)
	}
	if o.Fleet != 0 {
		f, ok := fleetExists(s, o.Fleet)
		if !ok || !fleetOwned(f, p.Name) {
			return o, enginerr.NewValidationError(p.Name, "you do not own fleet %d", o.Fleet)
		}
		if !f.Artifacts[o.ArtifactID] {
			return o, enginerr.NewValidationError(p.Name, "fleet %d does not carry artifact %d", o.Fleet, o.ArtifactID)
		}
	}
	if o.World != 0 {
		w, ok := worldExists(s, o.World)
		if !ok || !worldOwned(w, p.Name) {
			return o, enginerr.NewValidationError(p.Name, "you do not own world %d", o.World)
		}
		if !w.Artifacts[o.ArtifactID] {
			return o, enginerr.NewValidationError(p.Name, "world %d does not hold artifact %d", o.World, o.ArtifactID)
		}
	}
	o.NormalizedText = "transfer artifact"
	return o, nil
}

func validateViewArtifact(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	if _, ok := s.Artifacts[o.ArtifactID]; !ok {
		return o, enginerr.NewValidationError(p.Name, "artifact %d does not exist", o.ArtifactID)
	}
	o.NormalizedText = "view artifact"
	return o, nil
}

func validateDeclareRelation(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	if _, ok := s.PlayerByCI(o.PlayerArg); !ok {
		return o, enginerr.NewValidationError(p.Name, "player %q does not exist", o.PlayerArg)
	}
	if equalFold(o.PlayerArg, p.Name) {
		return o, enginerr.NewValidationError(p.Name, "you may not declare a relation toward yourself")
	}
	o.NormalizedText = relationText(o)
	return o, nil
}

func validatePlunder(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	if p.CharacterType != entities.Pirate {
		return o, enginerr.NewValidationError(p.Name, "only Pirates may plunder")
	}
	f, ok := fleetExists(s, o.Fleet)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "fleet %d does not exist", o.Fleet)
	}
	if !fleetOwned(f, p.Name) {
		return o, enginerr.NewValidationError(p.Name, "you do not own fleet %d", o.Fleet)
	}
	if !sameLocation(f, o.World) {
		return o, enginerr.NewValidationError(p.Name, "fleet %d is not at world %d", o.Fleet, o.World)
	}
	w, ok := worldExists(s, o.World)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "world %d does not exist", o.World)
	}
	if w.Owner == p.Name {
		return o, enginerr.NewValidationError(p.Name, "you may not plunder your own world")
	}
	o.NormalizedText = "plunder world"
	return o, nil
}

func validateScrap(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	if o.Fleet != 0 {
		f, ok := fleetExists(s, o.Fleet)
		if !ok {
			return o, enginerr.NewValidationError(p.Name, "fleet %d does not exist", o.Fleet)
		}
		if !fleetOwned(f, p.Name) {
			return o, enginerr.NewValidationError(p.Name, "you do not own fleet %d", o.Fleet)
		}
	} else {
		w, ok := worldExists(s, o.World)
		if !ok {
			return o, enginerr.NewValidationError(p.Name, "world %d does not exist", o.World)
		}
		if !worldOwned(w, p.Name) {
			return o, enginerr.NewValidationError(p.Name, "you do not own world %d", o.World)
		}
	}
	o.NormalizedText = "scrap ships"
	return o, nil
}

func validateProbe(s *gamestate.State, p *entities.Player, o entities.Order) (entities.Order, error) {
	f, ok := fleetExists(s, o.Fleet)
	if !ok {
		return o, enginerr.NewValidationError(p.Name, "fleet %d does not exist", o.Fleet)
	}
	if !fleetOwned(f, p.Name) {
		return o, enginerr.NewValidationError(p.Name, "you do not own fleet %d", o.Fleet)
	}
	o.NormalizedText = "probe"
	return o, nil
}

// loaderPermitted reports whether p has been granted loader permission by
// ownerName (§9 Open Question resolution, SPEC_FULL.md §C): loader grants
// load/unload at the declaring player's worlds, nothing else.
func loaderPermitted(s *gamestate.State, p *entities.Player, ownerName string) bool {
	if ownerName == "" {
		return false
	}
	// A loader relation is declared *by* the owner *toward* p, so it is
	// read from the owner's relation map, not p's.
	owner, ok := s.Players[ownerName]
	if !ok {
		return false
	}
	return owner.Relations[p.Name] == entities.RelationLoader
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
