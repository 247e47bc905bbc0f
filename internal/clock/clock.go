// Package clock provides in-game time: minutes since the start of the game.
package clock

import (
	"fmt"
	"math"
	"strings"
)

// TimeT counts in-game minutes. All arithmetic saturates; there is no subtraction.
type TimeT uint64

// Calendar shape.
const (
	MinutesPerHour = 60
	HoursPerDay    = 24
	DaysPerWeek    = 7
	WeeksPerMonth  = 4
	MonthsPerYear  = 12
)

// Durations in minutes.
const (
	Minute TimeT = 1
	Hour   TimeT = MinutesPerHour
	Day    TimeT = Hour * HoursPerDay
	Week   TimeT = Day * DaysPerWeek
	Month  TimeT = Week * WeeksPerMonth
	Year   TimeT = Month * MonthsPerYear
	Max    TimeT = math.MaxUint64
)

// Minutes converts a minute count to TimeT.
func Minutes(n uint64) TimeT { return TimeT(n) }

// Hours returns n hours.
func Hours(n uint64) TimeT { return Hour.Scale(n) }

// Days returns n days.
func Days(n uint64) TimeT { return Day.Scale(n) }

// Years returns n years.
func Years(n uint64) TimeT { return Year.Scale(n) }

// Add returns t+d, saturating at Max.
func (t TimeT) Add(d TimeT) TimeT {
	if t > Max-d {
		return Max
	}
	return t + d
}

// Scale returns t*n, saturating at Max.
func (t TimeT) Scale(n uint64) TimeT {
	if n == 0 || t == 0 {
		return 0
	}
	if uint64(t) > math.MaxUint64/n {
		return Max
	}
	return t * TimeT(n)
}

// Remaining returns how long until deadline, or 0 once it has passed.
func Remaining(now, deadline TimeT) TimeT {
	if now >= deadline {
		return 0
	}
	return deadline - now
}

// HoursCrossed returns every whole-hour instant in (from, to].
func HoursCrossed(from, to TimeT) []TimeT {
	var out []TimeT
	for h := (from/Hour + 1) * Hour; h <= to && h >= from; h += Hour {
		out = append(out, h)
		if h > Max-Hour {
			break
		}
	}
	return out
}

// MinuteOfHour returns 0..59.
func (t TimeT) MinuteOfHour() int { return int(t % Hour) }

// HourOfDay returns 0..23.
func (t TimeT) HourOfDay() int { return int(t % Day / Hour) }

// DayOfMonth returns 1..28.
func (t TimeT) DayOfMonth() int { return int(t%Month/Day) + 1 }

// MonthOfYear returns 1..12.
func (t TimeT) MonthOfYear() int { return int(t%Year/Month) + 1 }

// YearNumber returns the 1-based year.
func (t TimeT) YearNumber() int { return int(t/Year) + 1 }

// String renders an instant as a calendar date.
func (t TimeT) String() string {
	return fmt.Sprintf("Day %d Month %d Year %d, %d:%02d",
		t.DayOfMonth(), t.MonthOfYear(), t.YearNumber(), t.HourOfDay(), t.MinuteOfHour())
}

// Fancy renders a duration in its two largest units, e.g. "2 days 3 hours".
func Fancy(d TimeT) string {
	if d == 0 {
		return "0 minutes"
	}
	units := []struct {
		size TimeT
		name string
	}{
		{Year, "year"}, {Month, "month"}, {Week, "week"}, {Day, "day"}, {Hour, "hour"}, {Minute, "minute"},
	}

	var parts []string
	for _, u := range units {
		if d < u.size {
			continue
		}
		n := d / u.size
		d -= n * u.size
		name := u.name
		if n != 1 {
			name += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, name))
		if len(parts) == 2 {
			break
		}
	}
	return strings.Join(parts, " ")
}
