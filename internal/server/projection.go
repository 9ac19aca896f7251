package server

import (
	"time"

	"github.com/lab1702/starweb/internal/entities"
	"github.com/lab1702/starweb/internal/visibility"
)

// playerProjection is the full per-player view sent in an "update" frame
// (§6.1): everything a client needs to render from scratch. It is sent
// only after a successful JOIN or reconnect; turn results reach clients
// as "delta" frames, and a connection that has not joined receives none.
type playerProjection struct {
	PlayerName    string                       `json:"player_name"`
	CharacterType string                       `json:"character_type"`
	Score         int                          `json:"score"`
	GameTurn      int                          `json:"game_turn"`
	TimeRemaining int                          `json:"time_remaining"`
	PlayersReady  int                          `json:"players_ready"`
	TotalPlayers  int                          `json:"total_players"`
	Worlds        map[int]visibility.WorldView `json:"worlds"`
	Fleets        map[int]entities.Fleet       `json:"fleets"`
	Orders        []string                     `json:"orders"`
	Players       []rosterEntry                `json:"players"`
}

type rosterEntry struct {
	Name          string `json:"name"`
	CharacterType string `json:"character_type"`
	Score         int    `json:"score"`
	Ready         bool   `json:"ready"`
}

// buildProjection implements §6.1's "per-player full projection" for
// name, computing a fresh visibility.View (no touched-this-turn bonus
// outside turn processing, so an empty TouchedThisTurn is correct here).
func (s *Server) buildProjection(name string) playerProjection {
	pl := s.state.Players[name]
	view := visibility.Compute(s.state, name, visibility.TouchedThisTurn{})

	orders := make([]string, len(pl.Orders))
	for i, o := range pl.Orders {
		orders[i] = o.NormalizedText
	}

	roster := make([]rosterEntry, 0, len(s.state.Players))
	for _, rname := range s.state.SortedPlayerNames() {
		p := s.state.Players[rname]
		roster = append(roster, rosterEntry{
			Name: p.Name, CharacterType: string(p.CharacterType), Score: p.Score, Ready: p.Ready,
		})
	}

	return playerProjection{
		PlayerName:    pl.Name,
		CharacterType: string(pl.CharacterType),
		Score:         pl.Score,
		GameTurn:      s.state.Turn,
		TimeRemaining: s.scheduler.TimeRemaining(time.Now()),
		PlayersReady:  readyCount(s.state),
		TotalPlayers:  len(s.state.ConnectedPlayers()),
		Worlds:        view.Worlds,
		Fleets:        view.Fleets,
		Orders:        orders,
		Players:       roster,
	}
}

// sendProjection delivers c's full "update" frame and resets its delta
// digest so the next turn's delta is computed against this baseline
// rather than whatever a previous connection last saw (§4.9, reconnect).
func (s *Server) sendProjection(c *Client) {
	s.deltas.Forget(c.PlayerName)
	s.sendTo(c, ServerMessage{Type: "update", Data: s.buildProjection(c.PlayerName)})
}

