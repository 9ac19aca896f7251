// Package turn implements TurnScheduler and TurnProcessor (§4.5, §4.6):
// the wall-clock/readiness gate that decides when a turn fires, and the
// thirteen-phase pipeline that resolves one when it does.
package turn

import (
	"time"

	"github.com/lab1702/starweb/internal/config"
	"github.com/lab1702/starweb/internal/gamestate"
)

// Scheduler holds the wall-clock deadline for the next turn and
// recomputes it from the connected players' turn-preference minutes
// (§4.5). It does not run its own goroutine; the engine's select loop
// (§5) calls ShouldFire once a second and, when it reports the turn
// should resolve, runs the turn and then calls AfterFire.
type Scheduler struct {
	cfg config.GameConfig

	turnEndTime time.Time
	duration    time.Duration
}

// NewScheduler builds a Scheduler with the configured default turn
// duration as its initial deadline; callers should call Recompute once
// players have joined.
func NewScheduler(cfg config.GameConfig, now time.Time) *Scheduler {
	d := time.Duration(cfg.DefaultTurnDuration) * time.Second
	return &Scheduler{cfg: cfg, duration: d, turnEndTime: now.Add(d)}
}

// Recompute implements §4.5's duration rule: the arithmetic mean of
// turn_preference_minutes over joined (connected) players, bounded by
// min/max_turn_duration, pushing turnEndTime out from now. Called at
// game start and whenever the player set changes.
func (sch *Scheduler) Recompute(s *gamestate.State, now time.Time) {
	players := s.ConnectedPlayers()
	seconds := sch.cfg.DefaultTurnDuration
	if len(players) > 0 {
		total := 0
		for _, p := range players {
			minutes := p.TurnPreferenceMinutes
			if minutes <= 0 {
				minutes = sch.cfg.DefaultTurnDuration / 60
			}
			total += minutes
		}
		mean := total / len(players)
		seconds = mean * 60
	}
	if seconds < sch.cfg.MinTurnDuration {
		seconds = sch.cfg.MinTurnDuration
	}
	if seconds > sch.cfg.MaxTurnDuration {
		seconds = sch.cfg.MaxTurnDuration
	}
	sch.duration = time.Duration(seconds) * time.Second
	sch.turnEndTime = now.Add(sch.duration)
}

// ShouldFire reports whether a turn should resolve now: the wall clock
// has passed turnEndTime, or every connected player is ready (§4.5).
func (sch *Scheduler) ShouldFire(s *gamestate.State, now time.Time) bool {
	if !now.Before(sch.turnEndTime) {
		return true
	}
	return allReady(s)
}

func allReady(s *gamestate.State) bool {
	players := s.ConnectedPlayers()
	if len(players) == 0 {
		return false
	}
	for _, p := range players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// TimeRemaining returns the seconds left until turnEndTime, floored at
// 0, for the one-second tick frame (§4.5, §6.1's "timer" frame).
func (sch *Scheduler) TimeRemaining(now time.Time) int {
	remaining := sch.turnEndTime.Sub(now)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds())
}

// AfterFire resets the clock once a turn has resolved and clears ready
// flags, the "after a turn, clears ready flags and resets the clock"
// rule of §4.5. Fleet order flags and queued orders are cleared by
// gamestate.State.ResetPerTurnFlags, which the processor runs.
func (sch *Scheduler) AfterFire(s *gamestate.State, now time.Time) {
	for _, p := range s.Players {
		p.Ready = false
	}
	sch.Recompute(s, now)
}
