// Package enginerr defines the typed error kinds StarWeb distinguishes at
// its boundaries: parser/validator errors returned to a single client,
// transport failures that close a connection, and state-level failures
// that abort a turn or refuse to start the server.
package enginerr

import "fmt"

// ParseError reports a malformed command shape (§4.2). It never reaches
// game state; the router returns it to the sender only.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

// ValidationError reports a semantic violation against current state
// (§4.3): ownership, resources, exclusivity, connectivity. Message is the
// stable, human-readable text the client is shown verbatim.
type ValidationError struct {
	Player  string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(player, format string, args ...any) *ValidationError {
	return &ValidationError{Player: player, Message: fmt.Sprintf(format, args...)}
}

// TransportError reports a duplex-channel read/write failure. The
// connection is closed; the player record is retained (§3 Lifecycle).
type TransportError struct {
	ClientID string
	Cause    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure for client %s: %v", e.ClientID, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// InvariantError reports an internal inconsistency detected mid-mutation
// (§7). Fatal to the in-progress turn only: the processor rolls the
// engine back to the pre-phase snapshot and broadcasts a notice.
type InvariantError struct {
	Phase   string
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated in phase %s: %s", e.Phase, e.Message)
}

// CorruptStateError reports a load-time invariant failure. The server
// refuses to start; the operator must run restore-state (§6.3).
type CorruptStateError struct {
	Path   string
	Reason string
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt state at %s: %s", e.Path, e.Reason)
}

// ConfigError reports malformed configuration at load time. The server
// refuses to start (§6.4).
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("config error: %s", e.Reason)
	}
	return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
}
