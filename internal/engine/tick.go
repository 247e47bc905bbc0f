// Package engine provides the step loop that drives a Game, throttled to
// wall-clock time or headless.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/talgya/fevered-world/internal/clock"
)

// ErrBadSpeed is returned for a negative speed.
var ErrBadSpeed = errors.New("speed must not be negative")

// Engine drives a Game forward. Game state is only touched under the
// engine's lock; readers go through View.
type Engine struct {
	Game           *Game
	MinutesPerStep clock.TimeT   // Game minutes per step
	Interval       time.Duration // Wall time per step at speed 1 (0 = unthrottled)

	// Callbacks run on the engine goroutine after a step, outside the lock.
	OnStep func(now clock.TimeT)
	OnHour func(hour clock.TimeT) // Every game hour boundary crossed
	OnDay  func(day clock.TimeT)  // Every game day boundary crossed

	mu      sync.RWMutex
	speed   float64 // Multiplier: 1.0 = Interval per step, 0 = paused
	steps   uint64
	running atomic.Bool
}

// NewEngine returns an engine stepping g by minutesPerStep every interval.
func NewEngine(g *Game, minutesPerStep clock.TimeT, interval time.Duration) *Engine {
	if minutesPerStep == 0 {
		minutesPerStep = 1
	}
	return &Engine{
		Game:           g,
		MinutesPerStep: minutesPerStep,
		Interval:       interval,
		speed:          1.0,
	}
}

// Run steps until ctx is done or the game ends.
func (e *Engine) Run(ctx context.Context) {
	e.running.Store(true)
	defer e.running.Store(false)
	slog.Info("simulation engine started", "time", e.now(), "speed", e.Speed(), "minutes_per_step", e.MinutesPerStep)

	for ctx.Err() == nil {
		speed := e.Speed()
		if speed <= 0 {
			// Paused.
			if !sleep(ctx, 100*time.Millisecond) {
				break
			}
			continue
		}

		start := time.Now()
		if over := e.step(e.MinutesPerStep); over {
			break
		}

		if e.Interval > 0 {
			target := time.Duration(float64(e.Interval) / speed)
			if elapsed := time.Since(start); elapsed < target && !sleep(ctx, target-elapsed) {
				break
			}
		}
	}

	slog.Info("simulation engine stopped", "time", e.now(), "steps", e.Steps())
}

// RunFor advances the game by minutes as fast as possible and returns the
// minutes actually advanced, which is less when the game ends or ctx is
// cancelled first.
func (e *Engine) RunFor(ctx context.Context, minutes clock.TimeT) clock.TimeT {
	e.running.Store(true)
	defer e.running.Store(false)

	var done clock.TimeT
	for done < minutes && ctx.Err() == nil {
		n := min(e.MinutesPerStep, minutes-done)
		before := e.now()
		over := e.step(n)
		done += e.now() - before
		if over {
			break
		}
	}
	return done
}

// Step advances one step and reports whether the game is over.
func (e *Engine) Step() bool { return e.step(e.MinutesPerStep) }

func (e *Engine) step(minutes clock.TimeT) bool {
	e.mu.Lock()
	before := e.Game.Time()
	e.Game.PassTime(minutes)
	now := e.Game.Time()
	e.steps++
	over := e.Game.Outcome() != OutcomeOngoing
	e.mu.Unlock()

	if e.OnStep != nil {
		e.OnStep(now)
	}
	for _, h := range clock.HoursCrossed(before, now) {
		if e.OnHour != nil {
			e.OnHour(h)
		}
		if h%clock.Day == 0 && e.OnDay != nil {
			e.OnDay(h)
		}
	}
	return over
}

// View runs fn with the game under the read lock.
func (e *Engine) View(fn func(g *Game)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(e.Game)
}

// Update runs fn with the game under the write lock.
func (e *Engine) Update(fn func(g *Game)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.Game)
}

// Speed returns the current multiplier.
func (e *Engine) Speed() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.speed
}

// SetSpeed changes the multiplier; 0 pauses.
func (e *Engine) SetSpeed(s float64) error {
	if s < 0 {
		return ErrBadSpeed
	}
	e.mu.Lock()
	e.speed = s
	e.mu.Unlock()
	slog.Info("simulation speed changed", "speed", s)
	return nil
}

// Steps counts steps taken.
func (e *Engine) Steps() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.steps
}

// Running reports whether Run or RunFor is in progress.
func (e *Engine) Running() bool { return e.running.Load() }

func (e *Engine) now() clock.TimeT {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.Game.Time()
}

// sleep waits d or until ctx is done, reporting whether the full wait
// elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
