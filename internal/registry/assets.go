// Package registry holds every asset type the simulation reads: resources,
// buildings, resource sites and crafting recipes.
package registry

import (
	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/world"
)

// Special marks buildings with behaviour beyond housing and storage.
type Special uint8

const (
	SpecialNone Special = iota
	SpecialMarketplace
)

// BuildingType describes a placeable building.
type BuildingType struct {
	ID                 string
	Name               string
	Description        string
	PopulationCapacity int              // Residents housed once constructed
	HoursToConstruct   float64          // 0 = built the moment it is placed
	Requirements       []economy.Bundle // Consumed when construction starts
	StorageCapacity    []economy.Bundle // Added to faction storage on completion
	Special            Special
	Crafts             []*CraftRecipe
	AllowedGround      world.GroundTile
}

// TakesTimeToConstruct reports whether construction needs work.
func (b *BuildingType) TakesTimeToConstruct() bool { return b.HoursToConstruct > 0 }

// HasRequirements reports whether construction consumes resources.
func (b *BuildingType) HasRequirements() bool { return len(b.Requirements) > 0 }

// IsPlacementAllowed reports whether the building may stand on ground t.
func (b *BuildingType) IsPlacementAllowed(t world.GroundTile) bool { return t.Is(b.AllowedGround) }

// MinutesToConstruct returns the construction work needed, in minutes.
func (b *BuildingType) MinutesToConstruct() float64 { return b.HoursToConstruct * 60 }

// WellDef is the template for one well of a resource site.
type WellDef struct {
	Resource             *economy.ResourceType
	MinutesPerBunch      float64 // Work minutes per bunch; always > 0
	BunchSize            int
	MinutesPerBunchRegen float64 // 0 = never regrows
	InitialBunches       int
}

// Range is an inclusive [Min, Max] band of a climate field.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies in the band.
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Closeness returns 1 at the band's middle falling to 0.5 at its edges,
// and 0 outside it.
func (r Range) Closeness(v float64) float64 {
	if !r.Contains(v) {
		return 0
	}
	half := (r.Max - r.Min) / 2
	if half <= 0 {
		return 1
	}
	mid := r.Min + half
	d := v - mid
	if d < 0 {
		d = -d
	}
	return 1 - d/half*0.5
}

// SiteGeneration decides where a resource site may appear.
type SiteGeneration struct {
	Elevation   Range
	Temperature Range
	Humidity    Range
	Rarity      float64 // Base spawn chance per suitable tile
}

// ResourceSiteType describes a gatherable natural feature.
type ResourceSiteType struct {
	ID                  string
	Name                string
	ResourceDescription string // e.g. "logs"
	Wells               []WellDef
	Generation          SiteGeneration
	AllowedGround       world.GroundTile
}

// SpawnChance returns the chance that the site appears at a tile with the
// given climate. 0 when any field is out of band.
func (s *ResourceSiteType) SpawnChance(elevation, temperature, humidity float64) float64 {
	g := s.Generation
	return g.Rarity *
		g.Elevation.Closeness(elevation) *
		g.Temperature.Closeness(temperature) *
		g.Humidity.Closeness(humidity)
}

// CraftRecipe is a production step run by a CraftJob inside a building.
type CraftRecipe struct {
	ID         string
	Name       string
	Inputs     []economy.Bundle
	Outputs    []economy.Bundle
	Minutes    float64 // Work minutes per batch
	MaxWorkers int
	Product    string // Noun for display, e.g. "planks"
	Process    string // Verb for display, e.g. "sawing"
}

// FishingDef configures the fish-by-hand job.
type FishingDef struct {
	Resource        *economy.ResourceType
	MinutesPerCatch float64
	Yield           int
	MaxWorkers      int
}
