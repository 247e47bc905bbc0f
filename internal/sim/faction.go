package sim

import (
	"log/slog"
	"slices"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/economy"
)

// Faction is a polity: an empire or one of its colonies. Its presence in
// each region is a RegionFaction.
type Faction struct {
	Name      string
	Silver    int
	Briefcase *Briefcase

	resources *economy.Storage
	regions   []*RegionFaction
	observers []Observer
	time      clock.TimeT
}

// NewFaction returns a faction whose treasury can hold capacity of every
// resource in resources.
func NewFaction(name string, resources []*economy.ResourceType, capacity int) *Faction {
	f := &Faction{
		Name:      name,
		Briefcase: &Briefcase{},
		resources: economy.NewStorage(),
	}
	for _, t := range resources {
		f.resources.IncreaseCapacity(t, capacity)
	}
	f.Briefcase.onSettled = func(doc *Document, result FulfillResult) {
		f.notify(func(o Observer) { o.ContractSettled(doc, result) })
	}
	return f
}

// AddObserver subscribes o to this faction's events.
func (f *Faction) AddObserver(o Observer) {
	f.observers = append(f.observers, o)
}

func (f *Faction) notify(fn func(Observer)) {
	for _, o := range f.observers {
		fn(o)
	}
}

// Regions returns the faction's regional presences.
func (f *Faction) Regions() []*RegionFaction { return slices.Clone(f.regions) }

// Time returns the faction's clock.
func (f *Faction) Time() clock.TimeT { return f.time }

// PassTime checks documents at every hour boundary crossed.
func (f *Faction) PassTime(minutes clock.TimeT) {
	from := f.time
	f.time = f.time.Add(minutes)
	for _, h := range clock.HoursCrossed(from, f.time) {
		f.Briefcase.Check(h)
	}
}

// ── Party ───────────────────────────────────────────────────────────

func (f *Faction) PartyName() string                 { return f.Name }
func (f *Faction) ResourceStorage() *economy.Storage { return f.resources }

func (f *Faction) ContractSuccess(doc *Document) {
	slog.Debug("faction contract fulfilled", "faction", f.Name, "doc", doc.Title)
}

func (f *Faction) ContractFailure(doc *Document, result FulfillResult) {
	slog.Debug("faction contract failed", "faction", f.Name, "doc", doc.Title, "result", result)
}
