// Package eventbus is StarWeb's in-process publish/subscribe fan-out for
// side effects (§4.7): combat outcomes, captures, production, and the
// like, consumed by the Sender to build observer-specific frames.
//
// Publish never blocks the caller: events are appended to an internal
// buffer and only dispatched to subscribers when Flush is called, which
// the TurnProcessor does once per turn after every world-mutating phase
// has completed (§4.6 step 13, §5 "events published within a phase are
// dispatched only after the phase completes"). Subscribers never mutate
// GameState directly (§9) — they only read the event and enqueue
// outbound messages via whatever Sender-shaped callback they were
// constructed with.
package eventbus

import "github.com/rs/zerolog"

// Kind names one of §4.7's event kinds.
type Kind string

const (
	FleetMoved          Kind = "FleetMoved"
	Combat              Kind = "Combat"
	WorldCaptured       Kind = "WorldCaptured"
	Production          Kind = "Production"
	Build               Kind = "Build"
	PlayerJoined        Kind = "PlayerJoined"
	TurnProcessed       Kind = "TurnProcessed"
	CargoJettisoned     Kind = "CargoJettisoned"
	ArtifactTransferred Kind = "ArtifactTransferred"
	PBBDropped          Kind = "PBBDropped"
	BlackHoleDestruction Kind = "BlackHoleDestruction"
	ConversionOccurred  Kind = "ConversionOccurred"
	PlunderOccurred     Kind = "PlunderOccurred"
)

// Event is one published occurrence. Payload is a kind-specific struct
// (see events.go); Observers, when non-nil, restricts delivery to the
// named players — nil means every connected player receives it.
type Event struct {
	Kind      Kind
	Payload   any
	Observers []string
}

// Handler receives a flushed event. Implementations must not mutate
// GameState; they may only read it (via closures over read-only
// accessors) and forward outbound frames.
type Handler func(Event)

// Bus buffers published events for one turn and fans them out to
// subscribers on Flush.
type Bus struct {
	subscribers []Handler
	buffer      []Event
	log         zerolog.Logger
}

// New creates an empty Bus.
func New(log zerolog.Logger) *Bus {
	return &Bus{log: log}
}

// Subscribe registers a handler invoked for every flushed event,
// cooperatively on the engine goroutine (§5) — never concurrently with
// game state mutation.
func (b *Bus) Subscribe(h Handler) {
	b.subscribers = append(b.subscribers, h)
}

// Publish buffers an event without dispatching it.
func (b *Bus) Publish(e Event) {
	b.buffer = append(b.buffer, e)
}

// Flush dispatches every buffered event to every subscriber, in
// publish order, then clears the buffer. A panicking handler is
// recovered and logged; dispatch continues for the remaining handlers
// and events (§7: "unhandled exceptions in subscribers ... do not abort
// event dispatch").
func (b *Bus) Flush() {
	events := b.buffer
	b.buffer = nil
	for _, e := range events {
		for _, h := range b.subscribers {
			b.dispatchSafely(h, e)
		}
	}
}

func (b *Bus) dispatchSafely(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("event", e).Interface("panic", r).Msg("event subscriber panicked")
		}
	}()
	h(e)
}

// Pending reports how many events are buffered, awaiting translation
// into TurnProcessedEvent or operator diagnostics.
func (b *Bus) Pending() int {
	return len(b.buffer)
}

// Discard drops every buffered event without dispatching it, used when a
// turn rolls back after an InvariantError (§7): the mutations that would
// have produced these events never happened as far as any observer is
// concerned.
func (b *Bus) Discard() {
	b.buffer = nil
}
