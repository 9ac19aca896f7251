package eventbus

// FleetMovedPayload accompanies a FleetMoved event.
type FleetMovedPayload struct {
	FleetID  int
	Owner    string
	From, To int
}

// CombatPayload accompanies a Combat event, carrying the full
// attacker/defender roster and outcome so every observer (§7: "combat
// outcomes always emit one event frame per observer") can render it
// without re-deriving state.
type CombatPayload struct {
	World           int
	AttackerFleet   int
	AttackerOwner   string
	DefenderFleet   int // 0 if the defender was world garrison, not a fleet
	DefenderOwner   string
	AttackerCasualties int
	DefenderCasualties int
	Target          string // "fleet", "I", "P", "H", "C"
	Ambush          bool
}

// WorldCapturedPayload accompanies a WorldCaptured event.
type WorldCapturedPayload struct {
	World        int
	PreviousOwner string
	NewOwner     string
	Reason       string // "ownership_resolution", "build_claim", "pirate_capture", "gift"
}

// ProductionPayload accompanies a Production event.
type ProductionPayload struct {
	World            int
	Owner            string
	MetalProduced    int
	PopulationGrowth int
}

// BuildPayload accompanies a Build event.
type BuildPayload struct {
	World  int
	Owner  string
	Kind   string // "IShips", "PShips", "Industry", "Limit", "Robots", "PBB"
	Amount int
}

// PlayerJoinedPayload accompanies a PlayerJoined event.
type PlayerJoinedPayload struct {
	Name          string
	CharacterType string
	Reconnect     bool
}

// TurnProcessedPayload accompanies the TurnProcessed event emitted once
// all phases and visibility/broadcast have completed.
type TurnProcessedPayload struct {
	Turn int
}

// CargoJettisonedPayload accompanies a CargoJettisoned event (§4.6 phase
// 3: excess cargo on a capacity-exceeding ship transfer).
type CargoJettisonedPayload struct {
	FleetID int
	Owner   string
	Amount  int
}

// ArtifactTransferredPayload accompanies an ArtifactTransferred event.
type ArtifactTransferredPayload struct {
	ArtifactID int
	FromOwner  string
	ToOwner    string
}

// PBBDroppedPayload accompanies a PBBDropped event.
type PBBDroppedPayload struct {
	World         int
	DroppedBy     string
	PreviousOwner string
}

// BlackHoleDestructionPayload accompanies a BlackHoleDestruction event.
type BlackHoleDestructionPayload struct {
	FleetID       int
	Owner         string
	BlackHole     int
	RespawnedAt   int
	ShipsLost     int
	CargoLost     int
}

// ConversionOccurredPayload accompanies a ConversionOccurred event
// (Apostle convert-population mechanics, §4.11).
type ConversionOccurredPayload struct {
	World    int
	Owner    string
	Converts int
}

// PlunderOccurredPayload accompanies a PlunderOccurred event (Pirate
// mechanic, §4.11).
type PlunderOccurredPayload struct {
	World      int
	Plunderer  string
	MetalTaken int
	TimesThisGame int
}
