// Event log fed by the map's observers.
package engine

import (
	"fmt"
	"slices"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/sim"
)

// Event categories.
const (
	CategoryJob      = "job"
	CategoryBuilding = "building"
	CategoryContract = "contract"
	CategoryDeath    = "death"
	CategoryLoss     = "loss"
	CategoryAI       = "ai"
	CategoryGame     = "game"
)

// DefaultEventLimit is how many events the log keeps in memory.
const DefaultEventLimit = 1000

// Event is a notable occurrence in the colonies.
type Event struct {
	Time        clock.TimeT `json:"time"`
	Region      string      `json:"region,omitempty"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
}

func (e Event) String() string {
	if e.Region == "" {
		return fmt.Sprintf("[%s] %s: %s", e.Time, e.Category, e.Description)
	}
	return fmt.Sprintf("[%s] %s %s: %s", e.Time, e.Region, e.Category, e.Description)
}

// EventLog keeps the most recent events and the ones not yet drained to
// the chronicle. It is a sim.Observer.
type EventLog struct {
	now     func() clock.TimeT
	limit   int
	recent  []Event
	pending []Event
	total   int
}

// NewEventLog returns a log stamping events with now(). limit <= 0 uses
// DefaultEventLimit.
func NewEventLog(now func() clock.TimeT, limit int) *EventLog {
	if limit <= 0 {
		limit = DefaultEventLimit
	}
	return &EventLog{now: now, limit: limit}
}

// Record appends e, stamping it when its time is zero.
func (l *EventLog) Record(e Event) {
	if e.Time == 0 {
		e.Time = l.now()
	}
	l.total++
	l.recent = append(l.recent, e)
	if len(l.recent) > l.limit {
		l.recent = slices.Delete(l.recent, 0, len(l.recent)-l.limit)
	}
	l.pending = append(l.pending, e)
}

func (l *EventLog) record(region, category, format string, args ...any) {
	l.Record(Event{Region: region, Category: category, Description: fmt.Sprintf(format, args...)})
}

// Recent returns up to n of the newest events, oldest first. n <= 0
// returns everything kept.
func (l *EventLog) Recent(n int) []Event {
	if n <= 0 || n > len(l.recent) {
		n = len(l.recent)
	}
	return slices.Clone(l.recent[len(l.recent)-n:])
}

// Drain returns and forgets the events recorded since the last drain.
func (l *EventLog) Drain() []Event {
	out := l.pending
	l.pending = nil
	return out
}

// Total counts every event ever recorded.
func (l *EventLog) Total() int { return l.total }

// ── sim.Observer ────────────────────────────────────────────────────

func (l *EventLog) JobRemoved(rf *sim.RegionFaction, job sim.Job) {
	if job.IsInternal() {
		return
	}
	l.record(rf.Name(), CategoryJob, "%s at %s ended", job.Title(), job.Position())
}

func (l *EventLog) BuildingConstructed(rf *sim.RegionFaction, b *sim.Building) {
	l.record(rf.Name(), CategoryBuilding, "%s completed at %s", b.Name(), b.Position())
}

func (l *EventLog) ContractSettled(doc *sim.Document, result sim.FulfillResult) {
	verdict := "fulfilled"
	if result != sim.FulfillOk {
		verdict = "failed: " + result.String()
	}
	l.record(doc.SideB.PartyName(), CategoryContract, "%s %s", doc.Title, verdict)
}

func (l *EventLog) PopulationExtinct(rf *sim.RegionFaction) {
	l.record(rf.Name(), CategoryDeath, "the last colonist is gone")
}

func (l *EventLog) ProductionLost(rf *sim.RegionFaction, lost []economy.Bundle) {
	l.record(rf.Name(), CategoryLoss, "no room for %s", economy.Describe(lost))
}
