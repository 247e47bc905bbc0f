package sim

import (
	"slices"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/invariant"
)

// Map is every region and faction in a game.
type Map struct {
	regions  []*Region
	factions []*Faction
}

// NewMap returns an empty map.
func NewMap() *Map { return &Map{} }

// AddRegion appends r and gives it the next index.
func (m *Map) AddRegion(r *Region) {
	r.Index = len(m.regions)
	m.regions = append(m.regions, r)
}

// AddFaction appends f. A faction may be added only once.
func (m *Map) AddFaction(f *Faction) {
	invariant.Require(!slices.Contains(m.factions, f), "faction %s added twice", f.Name)
	m.factions = append(m.factions, f)
}

// Region returns the region at index i.
func (m *Map) Region(i int) *Region {
	invariant.Require(i >= 0 && i < len(m.regions), "region index %d out of range [0, %d)", i, len(m.regions))
	return m.regions[i]
}

// Regions returns every region in index order.
func (m *Map) Regions() []*Region { return slices.Clone(m.regions) }

// Factions returns every faction in the order added.
func (m *Map) Factions() []*Faction { return slices.Clone(m.factions) }

// AddObserver subscribes o to every faction on the map.
func (m *Map) AddObserver(o Observer) {
	for _, f := range m.factions {
		f.AddObserver(o)
	}
}

// PassTime advances every region, then every faction's documents.
func (m *Map) PassTime(minutes clock.TimeT) {
	for _, r := range m.regions {
		r.PassTime(minutes)
	}
	for _, f := range m.factions {
		f.PassTime(minutes)
	}
}
