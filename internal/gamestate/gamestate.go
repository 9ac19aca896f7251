// Package gamestate owns StarWeb's authoritative in-memory world (§4.1):
// entities, connection topology, scoring configuration, and the global
// turn counter. Every mutator here is meant to be called exclusively from
// inside the engine's single-threaded turn-processing section (§5) — the
// package itself holds no lock, trusting that caller discipline the way
// the teacher's GameState.Mu convention does for its continuous loop.
package gamestate

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/lab1702/starweb/internal/config"
	"github.com/lab1702/starweb/internal/entities"
)

// State is the authoritative world. It is not safe for concurrent
// mutation; the engine goroutine (server.Server) is its only writer.
type State struct {
	Worlds    map[int]*entities.World
	Fleets    map[int]*entities.Fleet
	Artifacts map[int]*entities.Artifact
	Players   map[string]*entities.Player // keyed by case-preserved Name

	Turn       int
	RNGSeed    int64
	TargetScore int

	Config *config.Schema

	log zerolog.Logger
}

// New builds an empty state ready for InitMap. Config must already be
// validated (config.Schema.Validate).
func New(cfg *config.Schema, log zerolog.Logger) *State {
	return &State{
		Worlds:      make(map[int]*entities.World),
		Fleets:      make(map[int]*entities.Fleet),
		Artifacts:   make(map[int]*entities.Artifact),
		Players:     make(map[string]*entities.Player),
		TargetScore: cfg.Game.DefaultTargetScore,
		Config:      cfg,
		log:         log,
	}
}

// PlayerByCI looks up a player by case-insensitive name, the lookup rule
// reconnection identity depends on (§6.5).
func (s *State) PlayerByCI(name string) (*entities.Player, bool) {
	for _, p := range s.Players {
		if equalFold(p.Name, name) {
			return p, true
		}
	}
	return nil, false
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

// SortedPlayerNames returns player names in ascending order, the
// traversal order §4.6/§5 mandate for deterministic phase processing.
func (s *State) SortedPlayerNames() []string {
	names := make([]string, 0, len(s.Players))
	for n := range s.Players {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ConnectedPlayers returns the subset of players with Connected == true.
func (s *State) ConnectedPlayers() []*entities.Player {
	var out []*entities.Player
	for _, n := range s.SortedPlayerNames() {
		p := s.Players[n]
		if p.Connected {
			out = append(out, p)
		}
	}
	return out
}

// FleetsAt returns the fleets with at least one ship currently located at
// world id, in ascending fleet-ID order; empty (0-ship) fleets are left out.
func (s *State) FleetsAt(worldID int) []*entities.Fleet {
	var ids []int
	for id, f := range s.Fleets {
		if f.World == worldID && f.Ships > 0 {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	out := make([]*entities.Fleet, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.Fleets[id])
	}
	return out
}

// ReclaimFleet empties a fleet and clears its per-turn flags, the "key
// reclaimed on loss" behavior of §3's Lifecycle section. The key (ID)
// itself is retained for reuse, not deleted from the map.
func (s *State) ReclaimFleet(id int) {
	f, ok := s.Fleets[id]
	if !ok {
		return
	}
	f.Owner = entities.NeutralOwner
	f.Ships = 0
	f.Cargo = 0
	f.HasPBB = false
	f.Moved = false
	f.IsAmbushing = false
	f.AtPeace = false
	f.ConditionalFireTarget = nil
	f.PendingMovePath = nil
	// Artifacts are preserved on the key per §4.6 phase 11 (black holes)
	// and §3's invariant that artifacts are never destroyed, only
	// relocated.
}

// RespawnKeyAt relocates a fleet key to worldID (the caller picks the
// world), preserving its artifacts and zeroing ships/cargo, per §4.6 phase
// 11 and the black-hole end-to-end scenario in §8.
func (s *State) RespawnKeyAt(fleetID, worldID int) {
	f, ok := s.Fleets[fleetID]
	if !ok {
		return
	}
	f.World = worldID
	f.Ships = 0
	f.Cargo = 0
}

// ResetPerTurnFlags clears every fleet's Moved, IsAmbushing and
// ConditionalFireTarget flags and every player's Ready flag and queued
// Orders; the processor runs it at the end of §4.6 phase 13.
func (s *State) ResetPerTurnFlags() {
	for _, f := range s.Fleets {
		f.Moved = false
		f.IsAmbushing = false
		f.ConditionalFireTarget = nil
	}
	for _, p := range s.Players {
		p.Ready = false
		p.Orders = nil
	}
}
