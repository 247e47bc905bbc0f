package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/fevered-world/internal/clock"
)

func TestRunForFiresHourAndDayCallbacks(t *testing.T) {
	e := NewEngine(newTestGame(t, 1, quiet()), 25, 0)
	var hours, days []clock.TimeT
	steps := 0
	e.OnHour = func(h clock.TimeT) { hours = append(hours, h) }
	e.OnDay = func(d clock.TimeT) { days = append(days, d) }
	e.OnStep = func(clock.TimeT) { steps++ }

	done := e.RunFor(context.Background(), clock.Day+15)

	assert.Equal(t, clock.Day+15, done)
	assert.Equal(t, clock.Day+15, e.Game.Time())
	assert.Len(t, hours, 24)
	assert.Equal(t, []clock.TimeT{clock.Day}, days)
	assert.Equal(t, 59, steps, "58 full steps and a partial one")
	assert.Equal(t, uint64(59), e.Steps())
	assert.False(t, e.Running())
}

func TestRunForStopsAtGameOver(t *testing.T) {
	s := quiet()
	s.SurviveFor = 100
	e := NewEngine(newTestGame(t, 1, s), 10, 0)

	done := e.RunFor(context.Background(), 500)

	assert.Equal(t, clock.TimeT(100), done)
	assert.Equal(t, OutcomeSurvived, e.Game.Outcome())
}

func TestRunReturnsWhenTheGameEnds(t *testing.T) {
	s := quiet()
	s.SurviveFor = clock.Hour
	e := NewEngine(newTestGame(t, 1, s), 5, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	e.Run(ctx)

	require.NoError(t, ctx.Err())
	assert.Equal(t, OutcomeSurvived, e.Game.Outcome())
	assert.Equal(t, clock.Hour, e.Game.Time())
}

func TestRunStopsOnCancelWhilePaused(t *testing.T) {
	e := NewEngine(newTestGame(t, 1, quiet()), 5, time.Millisecond)
	require.NoError(t, e.SetSpeed(0))
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}
	assert.Equal(t, clock.TimeT(0), e.Game.Time())
}

func TestSetSpeedRejectsNegative(t *testing.T) {
	e := NewEngine(newTestGame(t, 1, quiet()), 0, 0)

	assert.ErrorIs(t, e.SetSpeed(-1), ErrBadSpeed)
	assert.Equal(t, 1.0, e.Speed())
	assert.Equal(t, clock.TimeT(1), e.MinutesPerStep)

	var seen clock.TimeT
	e.Step()
	e.View(func(g *Game) { seen = g.Time() })
	assert.Equal(t, clock.TimeT(1), seen)
}
