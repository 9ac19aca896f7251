package server

import (
	"sort"
	"strings"
	"time"

	"github.com/lab1702/starweb/internal/command"
	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/eventbus"
	"github.com/lab1702/starweb/internal/help"
	"github.com/lab1702/starweb/internal/order"
	"github.com/lab1702/starweb/internal/persistence"
)

// handleInbound runs on the engine goroutine (§4.10): every mutation of
// s.state that a client frame can trigger happens here, never on a
// reader goroutine.
func (s *Server) handleInbound(c *Client, msg ClientMessage) {
	switch msg.Type {
	case "command":
		s.handleCommand(c, msg.Text)
	case "chat":
		s.handleChat(c, msg.To, msg.Message)
	case "bug_report":
		s.handleBugReport(c, msg)
	default:
		s.sendTo(c, ServerMessage{Type: "error", Data: map[string]string{"text": "unknown frame type " + msg.Type}})
	}
}

func (s *Server) handleCommand(c *Client, text string) {
	upper := strings.ToUpper(strings.TrimSpace(text))

	switch {
	case strings.HasPrefix(upper, "JOIN "):
		s.handleJoin(c, text)
		return
	case upper == "TURN":
		s.handleTurnReady(c)
		return
	case upper == "HELP" || strings.HasPrefix(upper, "HELP "):
		s.handleHelp(c, strings.TrimSpace(text[len("HELP"):]))
		return
	}

	if c.PlayerName == "" {
		s.sendTo(c, ServerMessage{Type: "error", Data: map[string]string{"text": "JOIN before issuing orders"}})
		return
	}

	o, err := command.Parse(text)
	if err != nil {
		s.sendTo(c, ServerMessage{Type: "error", Data: map[string]string{"text": err.Error()}})
		return
	}

	if o.Kind == entities.OrderCancel {
		pl := s.state.Players[c.PlayerName]
		if !order.For(pl).CancelByIndex(o.Count) {
			s.sendTo(c, ServerMessage{Type: "error", Data: map[string]string{"text": "no such queued order"}})
			return
		}
		s.sendTo(c, ServerMessage{Type: "info", Data: map[string]string{"text": "order cancelled"}})
		return
	}

	normalized, err := order.Validate(s.state, c.PlayerName, o)
	if err != nil {
		s.sendTo(c, ServerMessage{Type: "error", Data: map[string]string{"text": err.Error()}})
		return
	}
	order.For(s.state.Players[c.PlayerName]).Append(normalized)
	s.sendTo(c, ServerMessage{Type: "info", Data: map[string]string{"text": "order queued: " + normalized.NormalizedText}})
}

func (s *Server) handleJoin(c *Client, text string) {
	args, err := command.ParseJoin(text)
	if err != nil {
		s.sendTo(c, ServerMessage{Type: "error", Data: map[string]string{"text": err.Error()}})
		return
	}

	if existing, ok := s.state.PlayerByCI(args.Name); ok {
		existing.Connected = true
		existing.TurnPreferenceMinutes = args.Minutes
		c.PlayerName = existing.Name
		s.scheduler.Recompute(s.state, time.Now())
		s.bus.Publish(eventbus.Event{Kind: eventbus.PlayerJoined, Payload: eventbus.PlayerJoinedPayload{
			Name: existing.Name, CharacterType: string(existing.CharacterType), Reconnect: true,
		}})
		s.bus.Flush()
		s.sendProjection(c)
		return
	}

	home := s.state.AllocateHomeworld(s.rng, args.Name)
	if home == 0 {
		s.sendTo(c, ServerMessage{Type: "error", Data: map[string]string{"text": "no eligible homeworld remains"}})
		return
	}

	pl := &entities.Player{
		Name:                  args.Name,
		CharacterType:         args.Character,
		TurnPreferenceMinutes: args.Minutes,
		Connected:             true,
		Relations:             make(map[string]entities.RelationKind),
		PerTurnCounters:       make(map[string]int),
		HomeWorld:             home,
	}
	s.state.Players[pl.Name] = pl
	s.spawnHomeFleets(pl, home)

	c.PlayerName = pl.Name
	s.scheduler.Recompute(s.state, time.Now())
	s.bus.Publish(eventbus.Event{Kind: eventbus.PlayerJoined, Payload: eventbus.PlayerJoinedPayload{
		Name: pl.Name, CharacterType: string(pl.CharacterType), Reconnect: false,
	}})
	s.bus.Flush()
	s.sendProjection(c)
}

// spawnHomeFleets gives a freshly joined player cfg.Game.Homeworld's
// configured number of fleets, each at ShipsPerFleet strength, drawn from
// the unused fleet key pool InitMap pre-allocated (§3's "255 keys exist
// for the life of a game").
func (s *Server) spawnHomeFleets(pl *entities.Player, home int) {
	hw := s.cfg.Game.Homeworld
	ids := make([]int, 0, len(s.state.Fleets))
	for id := range s.state.Fleets {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	given := 0
	for _, id := range ids {
		if given >= hw.NumFleets {
			return
		}
		f := s.state.Fleets[id]
		if f.Owner != entities.NeutralOwner || f.Ships > 0 {
			continue
		}
		f.Owner = pl.Name
		f.World = home
		f.Ships = hw.ShipsPerFleet
		f.Artifacts = make(map[int]bool)
		given++
	}
}

func (s *Server) handleTurnReady(c *Client) {
	if c.PlayerName == "" {
		s.sendTo(c, ServerMessage{Type: "error", Data: map[string]string{"text": "JOIN before requesting TURN"}})
		return
	}
	pl := s.state.Players[c.PlayerName]
	pl.Ready = true
	s.sendTo(c, ServerMessage{Type: "info", Data: map[string]string{"text": "ready; waiting on other players or the clock"}})
}

func (s *Server) handleHelp(c *Client, arg string) {
	text, ok := help.Lookup(arg, s.state)
	if !ok {
		s.sendTo(c, ServerMessage{Type: "error", Data: map[string]string{"text": "unknown help topic"}})
		return
	}
	s.sendTo(c, ServerMessage{Type: "event", Data: map[string]string{"text": text, "event_type": "help"}})
}

func (s *Server) handleChat(c *Client, to, message string) {
	if c.PlayerName == "" {
		return
	}
	frame := ServerMessage{Type: "chat", Data: map[string]string{"from": c.PlayerName, "message": message, "channel": "all"}}
	if strings.EqualFold(to, "all") || to == "" {
		s.broadcastAll(frame)
		return
	}
	frame.Data = map[string]string{"from": c.PlayerName, "message": message, "channel": "private"}
	s.sendToPlayer(to, frame)
}

func (s *Server) handleBugReport(c *Client, msg ClientMessage) {
	ts, _ := time.Parse(time.RFC3339, msg.Timestamp)
	report := persistence.BugReport{
		Description: msg.Description,
		GameTurn:    msg.GameTurn,
		PlayerName:  msg.PlayerName,
		Timestamp:   ts,
	}
	if err := s.persist.AppendBugReport(report); err != nil {
		s.log.Error().Err(err).Msg("failed to append bug report")
		s.sendTo(c, ServerMessage{Type: "error", Data: map[string]string{"text": "failed to record bug report"}})
		return
	}
	s.sendTo(c, ServerMessage{Type: "info", Data: map[string]string{"text": "bug report recorded"}})
}
