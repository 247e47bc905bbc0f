package sim

import (
	"fmt"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/invariant"
	"github.com/talgya/fevered-world/internal/registry"
	"github.com/talgya/fevered-world/internal/world"
)

// Well is one depletable store inside a resource site.
type Well struct {
	def     registry.WellDef
	bunches int
	regrow  float64 // Minutes accumulated toward the next regrown bunch
}

func newWell(def registry.WellDef) *Well {
	invariant.Require(def.MinutesPerBunch > 0, "well of %s has non-positive minutes per bunch", def.Resource)
	return &Well{def: def, bunches: def.InitialBunches}
}

func (w *Well) Resource() *economy.ResourceType { return w.def.Resource }
func (w *Well) MinutesPerBunch() float64        { return w.def.MinutesPerBunch }
func (w *Well) BunchSize() int                  { return w.def.BunchSize }
func (w *Well) InitialBunches() int             { return w.def.InitialBunches }
func (w *Well) Bunches() int                    { return w.bunches }
func (w *Well) HasBunches() bool                { return w.bunches > 0 }

// Bunch returns one bunch as a bundle.
func (w *Well) Bunch() economy.Bundle {
	return economy.Bundle{Type: w.def.Resource, Amount: w.def.BunchSize}
}

// Deplete removes one bunch. The well must not be empty.
func (w *Well) Deplete() {
	invariant.Require(w.bunches > 0, "deplete empty well of %s", w.def.Resource)
	w.bunches--
}

// passTime regrows bunches up to the initial count.
func (w *Well) passTime(minutes clock.TimeT) {
	if w.def.MinutesPerBunchRegen <= 0 || w.bunches >= w.def.InitialBunches {
		w.regrow = 0
		return
	}
	w.regrow += float64(minutes)
	for w.regrow >= w.def.MinutesPerBunchRegen && w.bunches < w.def.InitialBunches {
		w.bunches++
		w.regrow -= w.def.MinutesPerBunchRegen
	}
	if w.bunches >= w.def.InitialBunches {
		w.regrow = 0
	}
}

// ResourceSite is a natural feature made of one or more wells.
type ResourceSite struct {
	placement
	Type  *registry.ResourceSiteType
	Wells []*Well
}

// NewResourceSite creates a full site of the given type.
func NewResourceSite(t *registry.ResourceSiteType, pos, origin world.Vec2I) *ResourceSite {
	s := &ResourceSite{placement: placement{position: pos, origin: origin}, Type: t}
	for _, def := range t.Wells {
		s.Wells = append(s.Wells, newWell(def))
	}
	return s
}

func (s *ResourceSite) Name() string { return s.Type.Name }

// IsDepleted reports whether no well has bunches left.
func (s *ResourceSite) IsDepleted() bool {
	for _, w := range s.Wells {
		if w.HasBunches() {
			return false
		}
	}
	return true
}

// PassTime regrows wells.
func (s *ResourceSite) PassTime(minutes clock.TimeT) {
	for _, w := range s.Wells {
		w.passTime(minutes)
	}
}

// AvailableJobs offers gathering from the whole site and, for multi-well
// sites, from each well.
func (s *ResourceSite) AvailableJobs() []JobBox {
	desc := s.Type.ResourceDescription
	boxes := []JobBox{{
		Title:       "Gather " + desc,
		Description: fmt.Sprintf("Gather %s from the %s", desc, s.Type.Name),
		MaxWorkers:  gatherMaxWorkers,
		New:         func() Job { return NewGatherResourceJob(desc) },
	}}
	if len(s.Wells) < 2 {
		return boxes
	}
	for i, w := range s.Wells {
		name := w.Resource().Name
		boxes = append(boxes, JobBox{
			Title:       "Gather " + name,
			Description: fmt.Sprintf("Gather only %s from the %s", name, s.Type.Name),
			MaxWorkers:  gatherMaxWorkers,
			New:         func() Job { return NewGatherWellJob(name, i) },
		})
	}
	return boxes
}

func (s *ResourceSite) String() string {
	return fmt.Sprintf("%s at %s", s.Type.Name, s.position)
}
