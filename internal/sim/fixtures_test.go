package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/invariant"
	"github.com/talgya/fevered-world/internal/registry"
	"github.com/talgya/fevered-world/internal/world"
)

type fixture struct {
	reg *registry.Registry

	logs, rock, fish, berries, planks *economy.ResourceType

	cabin, storehouse, sawmill, market *registry.BuildingType
	trees, quarry                      *registry.ResourceSiteType
	sawing                             *registry.CraftRecipe
}

func newFixture() *fixture {
	reg := registry.New()
	f := &fixture{reg: reg}
	f.logs = reg.RegisterResource(&economy.ResourceType{Name: "Logs"})
	f.rock = reg.RegisterResource(&economy.ResourceType{Name: "Rock"})
	f.fish = reg.RegisterResource(&economy.ResourceType{Name: "Fish", FoodValue: 2})
	f.berries = reg.RegisterResource(&economy.ResourceType{Name: "Berries", FoodValue: 1})
	f.planks = reg.RegisterResource(&economy.ResourceType{Name: "Planks"})

	f.sawing = reg.RegisterRecipe(&registry.CraftRecipe{
		Name:       "Planks",
		Inputs:     []economy.Bundle{{Type: f.logs, Amount: 2}},
		Outputs:    []economy.Bundle{{Type: f.planks, Amount: 1}},
		Minutes:    60,
		MaxWorkers: 4,
		Product:    "planks",
		Process:    "sawing",
	})

	f.cabin = reg.RegisterBuilding(&registry.BuildingType{
		Name:               "Log Cabin",
		PopulationCapacity: 4,
		HoursToConstruct:   2,
		Requirements:       []economy.Bundle{{Type: f.logs, Amount: 10}},
		AllowedGround:      world.Land,
	})
	f.storehouse = reg.RegisterBuilding(&registry.BuildingType{
		Name:             "Storehouse",
		HoursToConstruct: 1,
		Requirements:     []economy.Bundle{{Type: f.rock, Amount: 5}},
		StorageCapacity:  []economy.Bundle{{Type: f.logs, Amount: 50}},
		AllowedGround:    world.Grass,
	})
	f.sawmill = reg.RegisterBuilding(&registry.BuildingType{
		Name:          "Sawmill",
		Crafts:        []*registry.CraftRecipe{f.sawing},
		AllowedGround: world.Grass,
	})
	f.market = reg.RegisterBuilding(&registry.BuildingType{
		Name:          "Marketplace",
		Requirements:  []economy.Bundle{{Type: f.logs, Amount: 5}},
		Special:       registry.SpecialMarketplace,
		AllowedGround: world.Land,
	})

	f.trees = reg.RegisterResourceSite(&registry.ResourceSiteType{
		Name:                "Trees",
		ResourceDescription: "logs",
		Wells:               []registry.WellDef{{Resource: f.logs, MinutesPerBunch: 10, BunchSize: 3, InitialBunches: 5}},
		AllowedGround:       world.Grass,
	})
	f.quarry = reg.RegisterResourceSite(&registry.ResourceSiteType{
		Name:                "Quarry",
		ResourceDescription: "stone",
		Wells: []registry.WellDef{
			{Resource: f.rock, MinutesPerBunch: 10, BunchSize: 1, InitialBunches: 3},
			{Resource: f.logs, MinutesPerBunch: 10, BunchSize: 1, InitialBunches: 1},
		},
		AllowedGround: world.Grass,
	})

	reg.Fishing = &registry.FishingDef{Resource: f.fish, MinutesPerCatch: 30, Yield: 1, MaxWorkers: 5}
	reg.Start = registry.StartState{
		StorageCapacity: 100,
		Resources:       []economy.Bundle{{Type: f.logs, Amount: 40}, {Type: f.rock, Amount: 20}},
		Homeless:        registry.PoolDef{Capacity: 100, Amount: 10},
		Unemployed:      registry.PoolDef{Capacity: 100, Amount: 10},
		Silver:          50,
	}
	return f
}

// discTiles returns a grass disc; tiles on its rim count as shore.
func discTiles(radius int) map[world.Vec2I]world.GroundTile {
	tiles := make(map[world.Vec2I]world.GroundTile)
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= radius*radius {
				tiles[world.V(x, y)] = world.Grass
			}
		}
	}
	return tiles
}

// colony builds a region of the given radius with one colony on it.
func (f *fixture) colony(name string, radius int) *RegionFaction {
	region := NewRegion(0, name, world.Vec2I{}, discTiles(radius))
	faction := NewFaction("Colony of "+name, f.reg.Resources(), 1000)
	return NewRegionFaction(faction, region, f.reg)
}

func (f *fixture) count(rf *RegionFaction, t *economy.ResourceType) int {
	return rf.resources.GetCount(t)
}

func assertViolation(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a contract violation")
		_, ok := r.(*invariant.Violation)
		assert.True(t, ok, "panic value %v is not a violation", r)
	}()
	fn()
}

// countingJob records how often it is advanced.
type countingJob struct {
	jobBase
	passes     int
	checks     int
	removeSelf bool
}

func newCountingJob(removeSelf bool) *countingJob {
	return &countingJob{jobBase: newJobBase("Count", 0), removeSelf: removeSelf}
}

func (j *countingJob) WorkTime(m clock.TimeT) float64               { return float64(m) }
func (j *countingJob) CanInitialise(*RegionFaction, MapObject) bool { return true }
func (j *countingJob) Initialise(*RegionFaction, MapObject)         { j.markInitialised() }
func (j *countingJob) PassTime(clock.TimeT)                         { j.passes++ }
func (j *countingJob) Deinitialise(*RegionFaction)                  { j.markRemoved() }
func (j *countingJob) Progress() float64                            { return -1 }
func (j *countingJob) ProductionDescription() string                { return "counting" }
func (j *countingJob) StatusDescription() string                    { return "" }

func (j *countingJob) CheckDone(rf *RegionFaction) {
	j.checks++
	if j.removeSelf {
		rf.RemoveJob(j.position, j)
	}
}

// countingObject is a map object that records how often it is advanced.
type countingObject struct {
	placement
	passes int
}

func (o *countingObject) Name() string            { return "Counter" }
func (o *countingObject) PassTime(clock.TimeT)    { o.passes++ }
func (o *countingObject) AvailableJobs() []JobBox { return nil }

// recorder is an Observer that counts what it hears.
type recorder struct {
	NopObserver
	removed     []Job
	constructed []*Building
	settled     []*Document
	results     []FulfillResult
	extinct     int
	lost        int
}

func (r *recorder) JobRemoved(_ *RegionFaction, j Job)                { r.removed = append(r.removed, j) }
func (r *recorder) BuildingConstructed(_ *RegionFaction, b *Building) { r.constructed = append(r.constructed, b) }
func (r *recorder) PopulationExtinct(*RegionFaction)                  { r.extinct++ }
func (r *recorder) ProductionLost(*RegionFaction, []economy.Bundle)   { r.lost++ }

func (r *recorder) ContractSettled(d *Document, res FulfillResult) {
	r.settled = append(r.settled, d)
	r.results = append(r.results, res)
}
