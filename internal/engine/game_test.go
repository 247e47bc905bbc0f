package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/fevered-world/internal/clock"
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

// newTestGame founds n disc colonies side by side without terrain noise.
func newTestGame(t *testing.T, n int, settings Settings) *Game {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)

	m := sim.NewMap()
	empire := sim.NewFaction(EmpireName, reg.Resources(), empireCapacity)
	m.AddFaction(empire)
	used := make(map[string]bool)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < n; i++ {
		name := regionName(rng, used)
		r := sim.NewRegion(0, name, world.V(i*20, 0), disc(5))
		m.AddRegion(r)
		colony := sim.NewFaction("Colony of "+name, reg.Resources(), 0)
		m.AddFaction(colony)
		rf := sim.NewRegionFaction(colony, r, reg)
		r.CreateResourceSite(reg.ResourceSite("trees"), world.V(3, 0))
		found(empire, colony, rf, reg)
	}
	linkNeighbors(m.Regions(), 5)
	return NewGame(m, reg, empire, settings, rng)
}

func quiet() Settings {
	s := DefaultSettings()
	s.AIWarmup = clock.Max
	s.SurviveFor = 0
	return s
}

func TestAICadenceWaitsForWarmup(t *testing.T) {
	s := quiet()
	s.PlayRegion = NoPlayer
	s.AIWarmup = 60
	g := newTestGame(t, 1, s)

	g.PassTime(30)
	assert.Equal(t, 0, g.AIRounds())
	g.PassTime(30)
	assert.Equal(t, 1, g.AIRounds())

	for i := 0; i < 2; i++ {
		g.PassTime(10)
	}
	assert.Equal(t, 1, g.AIRounds(), "only 20 minutes since the last round")
	g.PassTime(10)
	assert.Equal(t, 2, g.AIRounds())
	assert.Equal(t, clock.TimeT(90), g.Time())
}

func TestAIActsOnlyOutsideThePlayerRegion(t *testing.T) {
	s := quiet()
	s.AIWarmup = 0
	g := newTestGame(t, 2, s)
	player, other := g.Map.Region(0).LocalFaction, g.Map.Region(1).LocalFaction
	playerJobs := len(player.Jobs())

	g.PassTime(30)

	assert.Equal(t, 1, g.AIRounds())
	assert.Len(t, player.Jobs(), playerJobs, "player region untouched")
	assert.Greater(t, len(other.Jobs()), playerJobs)
	assert.Len(t, g.Map.Region(0).ResourceSites(), 1, "nature skips the player region too")
}

func TestAICanPlayThePlayerRegion(t *testing.T) {
	s := quiet()
	s.AIWarmup = 0
	s.AIPlaysInPlayerRegion = true
	g := newTestGame(t, 1, s)
	before := len(g.Player().Jobs())

	g.PassTime(30)

	assert.Greater(t, len(g.Player().Jobs()), before)
}

func TestFailedPlayerMandateEndsTheGame(t *testing.T) {
	g := newTestGame(t, 2, quiet())
	player := g.Player()
	logs := g.Registry.Resource("logs")
	player.ResourceStorage().SubtractResource(economy.Bundle{Type: logs, Amount: player.ResourceStorage().GetCount(logs)})

	for i := 0; i < 9; i++ {
		g.PassTime(clock.Hour)
	}

	assert.Equal(t, OutcomeMandateFailed, g.Outcome())
	assert.Equal(t, clock.TimeT(540), g.Time())
	assert.Equal(t, 1, player.FailedContracts())
	assert.Equal(t, 9, g.Empire.ResourceStorage().GetCount(logs), "the other colony still paid")

	g.PassTime(clock.Hour)
	assert.Equal(t, clock.TimeT(540), g.Time(), "a finished game stands still")

	var contracts, over int
	for _, e := range g.Events.Recent(0) {
		switch e.Category {
		case CategoryContract:
			contracts++
		case CategoryGame:
			over++
		}
	}
	assert.Equal(t, 2, contracts, "each mandate settles once")
	assert.Equal(t, 1, over)
}

func TestFulfilledMandateKeepsPlaying(t *testing.T) {
	g := newTestGame(t, 1, quiet())

	g.PassTime(9 * clock.Hour)

	assert.Equal(t, OutcomeOngoing, g.Outcome())
	assert.Equal(t, 25-9, g.Player().ResourceStorage().GetCount(g.Registry.Resource("logs")))
}

func TestSurvivingWins(t *testing.T) {
	s := quiet()
	s.SurviveFor = 2 * clock.Hour
	g := newTestGame(t, 1, s)

	g.PassTime(clock.Hour)
	assert.Equal(t, OutcomeOngoing, g.Outcome())
	g.PassTime(clock.Hour)
	assert.Equal(t, OutcomeSurvived, g.Outcome())
}

func TestPlayerExtinctionEndsTheGame(t *testing.T) {
	g := newTestGame(t, 2, quiet())

	g.PopulationExtinct(g.Map.Region(1).LocalFaction)
	assert.Equal(t, OutcomeOngoing, g.Outcome())
	g.PopulationExtinct(g.Player())
	assert.Equal(t, OutcomeExtinct, g.Outcome())
}

func TestStatsCoverEveryColony(t *testing.T) {
	g := newTestGame(t, 2, quiet())

	stats := g.Stats()

	require.Len(t, stats, 2)
	assert.True(t, stats[0].Player)
	assert.False(t, stats[1].Player)
	assert.Equal(t, 10, stats[0].Population)
	assert.Equal(t, 25, stats[0].Resources["logs"])
	assert.Equal(t, 1, stats[0].Buildings)
	assert.Equal(t, 1, stats[0].Sites)
}

func TestFoundingDocuments(t *testing.T) {
	g := newTestGame(t, 2, quiet())

	assert.Len(t, g.Empire.Briefcase.Documents(), 4)
	for _, rf := range []*sim.RegionFaction{g.Map.Region(0).LocalFaction, g.Map.Region(1).LocalFaction} {
		colony := rf.Faction
		own, ok := colony.Briefcase.Ownership()
		require.True(t, ok)
		assert.Equal(t, "Ownership of "+colony.Name+" by "+EmpireName, own.Title)
		mandates := colony.Briefcase.ByType(sim.AMandatesExportFromB)
		require.Len(t, mandates, 1)
		assert.Equal(t, sim.Party(rf), mandates[0].SideB)
	}
	assert.Len(t, g.Map.Region(0).Neighbors(), 1, "20 tiles apart is within reach")
}
