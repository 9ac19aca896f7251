// Package server implements StarWeb's networking layer (§5, §6.1): one
// websocket connection per client, a single-threaded engine goroutine
// that owns gamestate.State, and the router/sender that translate
// between wire frames and the order pipeline. Game state is mutated only
// inside Server.runTurn and the JOIN/CANCEL/chat handlers reached from
// the same goroutine — never from a reader goroutine directly — so the
// single-writer discipline gamestate.State assumes always holds.
package server

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lab1702/starweb/internal/config"
	"github.com/lab1702/starweb/internal/delta"
	"github.com/lab1702/starweb/internal/enginerr"
	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
	"github.com/lab1702/starweb/internal/gamestate"
	"github.com/lab1702/starweb/internal/persistence"
	"github.com/lab1702/starweb/internal/turn"
)

// ServerMessage is one Server->Client frame (§6.1).
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// ClientMessage is one Client->Server frame (§6.1): only Type is parsed
// eagerly, the remaining fields are decoded per message type.
type ClientMessage struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	To          string `json:"to,omitempty"`
	Message     string `json:"message,omitempty"`
	Description string `json:"description,omitempty"`
	GameTurn    int    `json:"game_turn,omitempty"`
	PlayerName  string `json:"player_name,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
}

// inboundMessage pairs a parsed frame with the connection it arrived on,
// queued onto the engine goroutine's single inbound channel so every
// mutation of gamestate.State happens on that one goroutine (§4.10).
type inboundMessage struct {
	client *Client
	msg    ClientMessage
}

// Client is one connected websocket session (§5). ID is a fresh
// google/uuid per connection, independent of PlayerName so a reconnect
// can present a new connection id against a stable, case-insensitively
// matched player identity (§6.5's reconnection-identity rule).
type Client struct {
	ID         string
	PlayerName string // empty until JOIN succeeds

	conn    wsConn
	send    chan ServerMessage
	limiter *rate.Limiter
	server  *Server
}

// wsConn is the subset of *websocket.Conn the server depends on,
// narrowed so the pumps in websocket.go are the only file that imports
// gorilla directly.
type wsConn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	Close() error
}

// Server owns the authoritative GameState and every connected Client. It
// runs one goroutine (Run) which is the sole mutator of State; all other
// goroutines (readPump per client) only ever send inboundMessage values
// onto Server.inbound.
type Server struct {
	mu      sync.RWMutex
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundMessage

	state     *gamestate.State
	processor *turn.Processor
	scheduler *turn.Scheduler
	bus       *eventbus.Bus
	deltas    *delta.Engine
	persist   *persistence.Manager
	cfg       *config.Schema
	log       zerolog.Logger
	rng       *rand.Rand

	done chan struct{}
}

// New wires the engine: loads a prior snapshot if one exists, otherwise
// generates a fresh map, and subscribes the event bus to the frames the
// Sender forwards to observers (§4.7).
func New(cfg *config.Schema, persist *persistence.Manager, log zerolog.Logger) (*Server, error) {
	bus := eventbus.New(log)
	s := &Server{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundMessage, 256),
		bus:        bus,
		deltas:     delta.New(),
		persist:    persist,
		cfg:        cfg,
		log:        log,
		done:       make(chan struct{}),
	}

	s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))

	state, err := s.loadOrInit()
	if err != nil {
		return nil, err
	}
	s.state = state
	s.processor = turn.NewProcessor(cfg, bus, s.deltas, s.rng, log)
	s.scheduler = turn.NewScheduler(cfg.Game, time.Now())
	s.subscribeEvents()
	return s, nil
}

func (s *Server) loadOrInit() (*gamestate.State, error) {
	snap, err := s.persist.Load()
	if err != nil {
		if _, ok := err.(*enginerr.CorruptStateError); ok {
			return nil, err
		}
		st := gamestate.New(s.cfg, s.log)
		st.InitMap(time.Now().UnixNano(), s.cfg.Game.MapSize)
		if len(s.cfg.Artifacts.SpecialArtifacts) > 0 || len(s.cfg.Artifacts.Items) > 0 {
			if warning := st.PlaceArtifacts(rand.New(rand.NewSource(st.RNGSeed)), artifactDefs(s.cfg)); warning != "" {
				s.log.Warn().Msg(warning)
			}
		}
		return st, nil
	}
	st := gamestate.New(s.cfg, s.log)
	st.Import(snap)
	return st, nil
}

// Run is the engine's single event loop (§4.10): it is the only
// goroutine that touches s.state directly. register/unregister update
// the client roster; inbound drains queued commands through the router;
// the ticker drives the turn scheduler and the one-second timer frame.
func (s *Server) Run() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return

		case c := <-s.register:
			s.mu.Lock()
			s.clients[c.ID] = c
			s.mu.Unlock()
			s.sendTo(c, ServerMessage{Type: "welcome", Data: map[string]string{"id": c.ID}})

		case c := <-s.unregister:
			s.mu.Lock()
			delete(s.clients, c.ID)
			s.mu.Unlock()
			close(c.send)

		case im := <-s.inbound:
			s.handleInbound(im.client, im.msg)

		case <-ticker.C:
			now := time.Now()
			if s.scheduler.ShouldFire(s.state, now) {
				s.runTurn(now)
			}
			s.broadcastTimer(now)
		}
	}
}

// Stop ends Run's loop, persisting the current state synchronously so no
// in-flight turn is lost (§6.5's "save ... on graceful shutdown").
func (s *Server) Stop() error {
	close(s.done)
	return s.persist.SaveSync(s.state.Export())
}

func (s *Server) runTurn(now time.Time) {
	result, err := s.processor.Process(s.state)
	if err != nil {
		s.log.Error().Err(err).Msg("turn rolled back")
		s.broadcastEvent("turn rolled back on internal error; no orders were applied", "info")
	}
	s.state.Turn++
	s.scheduler.AfterFire(s.state, now)
	s.persist.Save(s.state.Export())

	if result != nil {
		for name, d := range result.Deltas {
			if d.Empty() {
				continue
			}
			s.sendToPlayer(name, ServerMessage{Type: "delta", Data: d})
		}
		if result.Winner != "" {
			s.broadcastEvent(result.Winner+" has won the game", "info")
		}
	}
}

func (s *Server) broadcastTimer(now time.Time) {
	s.broadcastAll(ServerMessage{Type: "timer", Data: map[string]any{
		"time_remaining": s.scheduler.TimeRemaining(now),
		"players_ready":  readyCount(s.state),
		"total_players":  len(s.state.ConnectedPlayers()),
		"game_turn":      s.state.Turn,
	}})
}

func readyCount(s *gamestate.State) int {
	n := 0
	for _, p := range s.ConnectedPlayers() {
		if p.Ready {
			n++
		}
	}
	return n
}

func (s *Server) broadcastAll(m ServerMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		s.sendTo(c, m)
	}
}

func (s *Server) broadcastEvent(text, kind string) {
	s.broadcastAll(ServerMessage{Type: "event", Data: map[string]string{"text": text, "event_type": kind}})
}

// sendToPlayer delivers m to whichever connected client currently holds
// playerName, a 1:1 mapping enforced at JOIN time.
func (s *Server) sendToPlayer(playerName string, m ServerMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		if c.PlayerName == playerName {
			s.sendTo(c, m)
			return
		}
	}
}

func (s *Server) sendTo(c *Client, m ServerMessage) {
	select {
	case c.send <- m:
	default:
		s.log.Warn().Str("client", c.ID).Msg("send buffer full, dropping frame")
	}
}

func newClient(conn wsConn, srv *Server) *Client {
	return &Client{
		ID:      uuid.NewString(),
		conn:    conn,
		send:    make(chan ServerMessage, 64),
		limiter: rate.NewLimiter(rate.Limit(20), 40),
		server:  srv,
	}
}

// artifactDefs turns the configured artifact catalog into the id-less
// entities.Artifact list PlaceArtifacts assigns map positions to; named
// items get a point value of 1, special_artifacts carry their own.
func artifactDefs(cfg *config.Schema) []entities.Artifact {
	defs := make([]entities.Artifact, 0, len(cfg.Artifacts.Items)+len(cfg.Artifacts.SpecialArtifacts))
	id := 1
	for _, name := range cfg.Artifacts.Items {
		defs = append(defs, entities.Artifact{ID: id, Name: name, Points: 1})
		id++
	}
	for _, sa := range cfg.Artifacts.SpecialArtifacts {
		defs = append(defs, entities.Artifact{ID: id, Name: sa.Name, Points: sa.Points, Effect: sa.Effect})
		id++
	}
	return defs
}
