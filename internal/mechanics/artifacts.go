package mechanics

import (
	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
)

// TransferArtifact moves an artifact ID between any combination of
// world/fleet holders, the carrier-follows-transfer rule of §3's
// Lifecycle section and the TransferArtifact order of §3.
func TransferArtifact(bus *eventbus.Bus, id int, fromOwner, toOwner string, removeFromSrc, addToDst func()) {
	removeFromSrc()
	addToDst()
	bus.Publish(eventbus.Event{
		Kind:    eventbus.ArtifactTransferred,
		Payload: eventbus.ArtifactTransferredPayload{ArtifactID: id, FromOwner: fromOwner, ToOwner: toOwner},
	})
}

// MuseumWorldThreshold is the artifact count at which an owned world
// counts as a "museum world" for ArtifactCollector scoring (§4.11,
// GLOSSARY).
const MuseumWorldThreshold = 10

// IsMuseumWorld reports whether w qualifies, i.e. is owned and holds at
// least MuseumWorldThreshold artifacts.
func IsMuseumWorld(w *entities.World) bool {
	return w.Owner != entities.NeutralOwner && len(w.Artifacts) >= MuseumWorldThreshold
}
