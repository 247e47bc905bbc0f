package sim

import (
	"math"
	"strings"
	"unicode"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/invariant"
	"github.com/talgya/fevered-world/internal/population"
	"github.com/talgya/fevered-world/internal/world"
)

// Job is a unit of ongoing work registered with a RegionFaction.
//
// Lifecycle: created -> Initialise (once, by the registry) -> PassTime and
// CheckDone every tick -> Deinitialise (once, by RemoveJob). Workers are
// moved in and out only by the owning RegionFaction.
type Job interface {
	Title() string
	NeedsWorkers() bool
	IsInternal() bool // Hidden from player listings
	MaxWorkers() int
	Workers() int
	Position() world.Vec2I
	MapObject() MapObject // nil for jobs not tied to a map object

	// WorkTime converts minutes into effective work for the current staff.
	WorkTime(minutes clock.TimeT) float64

	CanInitialise(rf *RegionFaction, mo MapObject) bool
	Initialise(rf *RegionFaction, mo MapObject)
	PassTime(minutes clock.TimeT)
	CheckDone(rf *RegionFaction)
	Deinitialise(rf *RegionFaction)

	Progress() float64 // 0..1, or -1 when the job has no end
	ProductionDescription() string
	StatusDescription() string

	base() *jobBase
}

type jobState uint8

const (
	jobCreated jobState = iota
	jobInitialised
	jobRemoved
)

func (s jobState) String() string {
	switch s {
	case jobCreated:
		return "created"
	case jobInitialised:
		return "initialised"
	default:
		return "removed"
	}
}

// jobBase carries the state every job variant shares.
type jobBase struct {
	title    string
	state    jobState
	workers  *population.Pool
	position world.Vec2I
	faction  *RegionFaction
}

func newJobBase(title string, maxWorkers int) jobBase {
	return jobBase{title: title, workers: population.NewPool(maxWorkers, 0)}
}

func (b *jobBase) Title() string         { return b.title }
func (b *jobBase) NeedsWorkers() bool    { return b.workers.Capacity() > 0 }
func (b *jobBase) IsInternal() bool      { return false }
func (b *jobBase) MaxWorkers() int       { return b.workers.Capacity() }
func (b *jobBase) Workers() int          { return b.workers.Amount() }
func (b *jobBase) Position() world.Vec2I { return b.position }
func (b *jobBase) MapObject() MapObject  { return nil }
func (b *jobBase) base() *jobBase        { return b }

// Active reports whether the job is initialised and not yet removed.
func (b *jobBase) Active() bool { return b.state == jobInitialised }

func (b *jobBase) markInitialised() {
	invariant.Require(b.state == jobCreated, "initialise job %q in state %s", b.title, b.state)
	b.state = jobInitialised
}

func (b *jobBase) markRemoved() {
	invariant.Require(b.state == jobInitialised, "deinitialise job %q in state %s", b.title, b.state)
	b.state = jobRemoved
}

// workTime is minutes * workers^exponent: each extra worker adds less.
func workTime(minutes clock.TimeT, workers int, exponent float64) float64 {
	if workers <= 0 {
		return 0
	}
	return float64(minutes) * math.Pow(float64(workers), exponent)
}

// JobBox describes a job that could be started, without being one.
// Unbox builds a fresh job to register.
type JobBox struct {
	Title       string
	Description string
	MaxWorkers  int
	New         func() Job
}

// Unbox returns a new, uninitialised job.
func (b JobBox) Unbox() Job { return b.New() }

func title(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return strings.TrimSpace(string(r))
}
