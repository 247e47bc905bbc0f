package ai_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/fevered-world/internal/ai"
	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/registry"
	"github.com/talgya/fevered-world/internal/sim"
	"github.com/talgya/fevered-world/internal/world"
)

func disc(radius int) map[world.Vec2I]world.GroundTile {
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

func newColony(t *testing.T, tweak func(*registry.Registry)) (*sim.FactionActions, *registry.Registry) {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	if tweak != nil {
		tweak(reg)
	}
	region := sim.NewRegion(0, "Ashvale", world.Vec2I{}, disc(6))
	region.CreateResourceSite(reg.ResourceSite("trees"), world.V(3, 0))
	faction := sim.NewFaction("Colony of Ashvale", reg.Resources(), 1000)
	rf := sim.NewRegionFaction(faction, region, reg)
	return sim.NewFactionActions(rf), reg
}

func TestResourceWantIsSquaredShortfall(t *testing.T) {
	ac, reg := newColony(t, nil)
	logs := reg.Resource("logs")

	assert.InDelta(t, (5.0/30)*(5.0/30), ai.ResourceWant(logs, 30).Score(ac), 1e-9)
	assert.Equal(t, 0.0, ai.ResourceWant(logs, 20).Score(ac))
	assert.Equal(t, 1.0, ai.ResourceNeed(logs, 25).Score(ac))
	assert.Equal(t, 0.0, ai.ResourceNeed(logs, 26).Score(ac))
	assert.Equal(t, 1.0, ai.HomelessnessRate().Score(ac))
}

func TestGamerHousesTheHomelessFirst(t *testing.T) {
	ac, reg := newColony(t, nil)
	g := ai.NewGamerAI(ac, rand.New(rand.NewSource(7)))

	g.PreUpdate(30)
	chosen, err := g.Update(30)

	require.NoError(t, err)
	assert.Equal(t, "build housing (Log Cabin)", chosen)
	b, ok := ac.Faction().Building(world.V(0, -1))
	require.True(t, ok, "nearest free tile to the centre")
	assert.Same(t, reg.Building("log_cabin"), b.Type)
}

func TestGamerStaffsIdleJobs(t *testing.T) {
	ac, _ := newColony(t, nil)
	g := ai.NewGamerAI(ac, rand.New(rand.NewSource(7)))
	g.PreUpdate(30)
	_, err := g.Update(30)
	require.NoError(t, err)

	g.PreUpdate(60)
	chosen, err := g.Update(60)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(chosen, "assign workers to Construct Log Cabin"), chosen)
	assert.Equal(t, 0, ac.GetUnemployedCount())
}

func TestGamerGathersWhatIsShort(t *testing.T) {
	ac, _ := newColony(t, func(reg *registry.Registry) { reg.AI.Housing = nil })
	g := ai.NewGamerAI(ac, rand.New(rand.NewSource(3)))

	g.PreUpdate(30)
	chosen, err := g.Update(30)

	require.NoError(t, err)
	assert.Equal(t, "gather Logs at Trees", chosen)
	require.Len(t, ac.GetJobsAt(world.V(3, 0)), 1)
}

func TestGamerFishesWhenFoodRunsLow(t *testing.T) {
	ac, reg := newColony(t, func(reg *registry.Registry) {
		reg.AI.Housing = nil
		reg.AI.Wants = nil
		reg.AI.Storage = nil
	})
	storage := ac.Faction().ResourceStorage()
	storage.SubtractResource(economy.Bundle{Type: reg.Resource("fish"), Amount: 25})
	g := ai.NewGamerAI(ac, rand.New(rand.NewSource(3)))

	g.PreUpdate(30)
	chosen, err := g.Update(30)

	require.NoError(t, err)
	assert.Equal(t, "fish by hand", chosen)
	assert.Len(t, ac.GetJobs(), 2, "move-in job plus fishing")
}

func TestGamerRetiresGatheringOnSurplus(t *testing.T) {
	ac, reg := newColony(t, func(reg *registry.Registry) { reg.AI.Housing = nil })
	site := ac.Region().ResourceSites()[0]
	job, err := ac.AddJob(site, site.AvailableJobs()[0])
	require.NoError(t, err)
	ac.Faction().ResourceStorage().AddResource(economy.Bundle{Type: reg.Resource("logs"), Amount: 40})
	g := ai.NewGamerAI(ac, rand.New(rand.NewSource(3)))

	g.PreUpdate(30)
	names := make([]string, 0)
	for _, a := range g.Actions() {
		names = append(names, a.Name)
	}
	assert.Contains(t, names, "remove Gather logs at (3, 0)")

	// Staffing (score 1) beats retiring (0.5) while workers are free.
	chosen, err := g.Update(30)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(chosen, "assign workers"), chosen)

	assert.Equal(t, 5, job.Workers())
}

func TestRetireNeedsTwiceTheWant(t *testing.T) {
	ac, reg := newColony(t, func(reg *registry.Registry) { reg.AI.Housing = nil })
	site := ac.Region().ResourceSites()[0]
	_, err := ac.AddJob(site, site.AvailableJobs()[0])
	require.NoError(t, err)
	logs := reg.Resource("logs")
	storage := ac.Faction().ResourceStorage()
	storage.AddResource(economy.Bundle{Type: logs, Amount: 35})
	g := ai.NewGamerAI(ac, rand.New(rand.NewSource(3)))
	g.PreUpdate(30)

	var retire *ai.Action[ai.Ctx]
	for _, a := range g.Actions() {
		if a.Name == "remove Gather logs at (3, 0)" {
			retire = a
		}
	}
	require.NotNil(t, retire)

	assert.Equal(t, 0.5, retire.Score(ac), "60 logs stored, want is 30")
	storage.SubtractResource(economy.Bundle{Type: logs, Amount: 1})
	assert.Equal(t, 0.0, retire.Score(ac))
}
