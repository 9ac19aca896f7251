package server

import (
	"fmt"

	"github.com/lab1702/starweb/internal/eventbus"
)

// subscribeEvents registers the Sender's translation from §4.7 domain
// events to §6.1's "event" text frames. Handlers only read the payload
// and enqueue outbound frames — never touch s.state — preserving the
// event bus's "subscribers never mutate GameState" rule.
func (s *Server) subscribeEvents() {
	s.bus.Subscribe(func(e eventbus.Event) {
		switch e.Kind {
		case eventbus.Combat:
			p := e.Payload.(eventbus.CombatPayload)
			s.emit(e.Observers, "combat", fmt.Sprintf(
				"combat at world %d: fleet %d (%s) vs %s — %d/%d casualties",
				p.World, p.AttackerFleet, p.AttackerOwner, p.DefenderOwner, p.AttackerCasualties, p.DefenderCasualties))

		case eventbus.WorldCaptured:
			p := e.Payload.(eventbus.WorldCapturedPayload)
			s.emit(e.Observers, "capture", fmt.Sprintf(
				"world %d captured by %s from %s (%s)", p.World, p.NewOwner, p.PreviousOwner, p.Reason))

		case eventbus.Production:
			p := e.Payload.(eventbus.ProductionPayload)
			s.emit(e.Observers, "production", fmt.Sprintf(
				"world %d produced %d metal, population grew by %d", p.World, p.MetalProduced, p.PopulationGrowth))

		case eventbus.Build:
			p := e.Payload.(eventbus.BuildPayload)
			s.emit(e.Observers, "info", fmt.Sprintf("world %d built %d %s", p.World, p.Amount, p.Kind))

		case eventbus.FleetMoved:
			p := e.Payload.(eventbus.FleetMovedPayload)
			s.sendToPlayer(p.Owner, ServerMessage{Type: "animate_movement", Data: map[string]any{
				"fleet_id": p.FleetID, "from_world": p.From, "to_world": p.To,
			}})

		case eventbus.PlayerJoined:
			p := e.Payload.(eventbus.PlayerJoinedPayload)
			verb := "joined"
			if p.Reconnect {
				verb = "reconnected"
			}
			s.broadcastEvent(fmt.Sprintf("%s %s as %s", p.Name, verb, p.CharacterType), "info")

		case eventbus.CargoJettisoned:
			p := e.Payload.(eventbus.CargoJettisonedPayload)
			s.emit(e.Observers, "info", fmt.Sprintf("fleet %d jettisoned %d cargo", p.FleetID, p.Amount))

		case eventbus.ArtifactTransferred:
			p := e.Payload.(eventbus.ArtifactTransferredPayload)
			s.emit(e.Observers, "info", fmt.Sprintf("artifact %d transferred from %s to %s", p.ArtifactID, p.FromOwner, p.ToOwner))

		case eventbus.PBBDropped:
			p := e.Payload.(eventbus.PBBDroppedPayload)
			s.broadcastEvent(fmt.Sprintf("planet buster dropped on world %d by %s", p.World, p.DroppedBy), "combat")

		case eventbus.BlackHoleDestruction:
			p := e.Payload.(eventbus.BlackHoleDestructionPayload)
			s.emit(e.Observers, "info", fmt.Sprintf(
				"fleet %d fell into the black hole at world %d, lost %d ships and %d cargo, respawned at %d",
				p.FleetID, p.BlackHole, p.ShipsLost, p.CargoLost, p.RespawnedAt))

		case eventbus.ConversionOccurred:
			p := e.Payload.(eventbus.ConversionOccurredPayload)
			s.emit(e.Observers, "info", fmt.Sprintf("%d converts gained at world %d", p.Converts, p.World))

		case eventbus.PlunderOccurred:
			p := e.Payload.(eventbus.PlunderOccurredPayload)
			s.emit(e.Observers, "combat", fmt.Sprintf(
				"%s plundered %d metal from world %d (plunder #%d)", p.Plunderer, p.MetalTaken, p.World, p.TimesThisGame))

		case eventbus.TurnProcessed:
			// Broadcast handled by runTurn via the per-player delta frames;
			// no separate event text needed.
		}
	})
}

// emit sends an "event" frame to observers, or to every connected client
// when observers is nil (§4.7: "nil means every connected player
// receives it").
func (s *Server) emit(observers []string, kind, text string) {
	frame := ServerMessage{Type: "event", Data: map[string]string{"text": text, "event_type": kind}}
	if observers == nil {
		s.broadcastAll(frame)
		return
	}
	for _, name := range observers {
		s.sendToPlayer(name, frame)
	}
}
