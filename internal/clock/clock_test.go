package clock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/fevered-world/internal/clock"
)

func TestAddSaturates(t *testing.T) {
	assert.Equal(t, clock.TimeT(90), clock.Hour.Add(30))
	assert.Equal(t, clock.Max, clock.Max.Add(1))
	assert.Equal(t, clock.Max, (clock.Max-5).Add(10))
}

func TestScaleSaturates(t *testing.T) {
	assert.Equal(t, clock.TimeT(0), clock.Hour.Scale(0))
	assert.Equal(t, clock.Hours(500*24), clock.Days(500))
	assert.Equal(t, clock.Max, clock.Year.Scale(1<<62))
}

func TestRemaining(t *testing.T) {
	assert.Equal(t, clock.TimeT(20), clock.Remaining(40, 60))
	assert.Equal(t, clock.TimeT(0), clock.Remaining(60, 60))
	assert.Equal(t, clock.TimeT(0), clock.Remaining(90, 60))
}

func TestHoursCrossed(t *testing.T) {
	assert.Empty(t, clock.HoursCrossed(0, 59))
	assert.Equal(t, []clock.TimeT{60}, clock.HoursCrossed(0, 60))
	assert.Equal(t, []clock.TimeT{120, 180}, clock.HoursCrossed(60, 200))
	assert.Empty(t, clock.HoursCrossed(60, 60))
}

func TestCalendar(t *testing.T) {
	at := clock.Days(30).Add(clock.Hours(8)).Add(5)

	assert.Equal(t, 5, at.MinuteOfHour())
	assert.Equal(t, 8, at.HourOfDay())
	assert.Equal(t, 3, at.DayOfMonth())
	assert.Equal(t, 2, at.MonthOfYear())
	assert.Equal(t, 1, at.YearNumber())
	assert.Equal(t, "Day 3 Month 2 Year 1, 8:05", at.String())
}

func TestFancy(t *testing.T) {
	assert.Equal(t, "0 minutes", clock.Fancy(0))
	assert.Equal(t, "1 minute", clock.Fancy(1))
	assert.Equal(t, "2 hours 5 minutes", clock.Fancy(125))
	assert.Equal(t, "1 day 1 hour", clock.Fancy(clock.Day+clock.Hour+7))
}
