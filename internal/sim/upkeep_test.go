package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/registry"
	"github.com/talgya/fevered-world/internal/world"
)

func passHours(rf *RegionFaction, n int) {
	for i := 0; i < n; i++ {
		rf.PassTime(clock.Hour)
	}
}

func TestPeopleEatTheMostPlentifulFood(t *testing.T) {
	f := newFixture()
	f.reg.Upkeep = registry.UpkeepDef{FoodPerPersonDay: 1}
	rf := f.colony("Ashvale", 4)
	rf.resources.AddResource(economy.Bundle{Type: f.fish, Amount: 3})
	rf.resources.AddResource(economy.Bundle{Type: f.berries, Amount: 6})

	passHours(rf, 1)

	assert.Equal(t, 5, f.count(rf, f.berries))
	assert.Equal(t, 3, f.count(rf, f.fish))
	stored, perDay := rf.GetFoodAndUsage()
	assert.Equal(t, 11, stored)
	assert.Equal(t, 10.0, perDay)
}

func TestFedPopulationSurvivesTheDay(t *testing.T) {
	f := newFixture()
	f.reg.Upkeep = registry.UpkeepDef{FoodPerPersonDay: 1}
	rf := f.colony("Ashvale", 4)
	rf.resources.AddResource(economy.Bundle{Type: f.fish, Amount: 5})

	passHours(rf, 24)

	assert.Equal(t, 0, f.count(rf, f.fish))
	assert.Equal(t, 0, rf.Starved())
	assert.Equal(t, 10, rf.PopulationCount())
}

func TestStarvationTakesOnePersonPerHour(t *testing.T) {
	f := newFixture()
	f.reg.Upkeep = registry.UpkeepDef{FoodPerPersonDay: 1}
	rf := f.colony("Ashvale", 4)

	passHours(rf, 23)
	assert.Equal(t, 0, rf.Starved(), "a day of slack")

	passHours(rf, 7)
	assert.GreaterOrEqual(t, rf.Starved(), 6)
	assert.LessOrEqual(t, rf.Starved(), 7)
	assert.Equal(t, 10-rf.Starved(), rf.HomelessCount())
	assert.Equal(t, 10-rf.Starved(), rf.UnemployedCount())
}

func TestStarvationTakesWorkersLast(t *testing.T) {
	f := newFixture()
	f.reg.Upkeep = registry.UpkeepDef{FoodPerPersonDay: 1}
	f.reg.Start.Homeless = registry.PoolDef{Capacity: 10, Amount: 2}
	f.reg.Start.Unemployed = registry.PoolDef{Capacity: 10, Amount: 2}
	rf := f.colony("Ashvale", 4)
	job := &countingJob{jobBase: newJobBase("Count", 5)}
	rf.AddJob(world.V(0, 1), job)
	rf.EmployWorkers(job, 1)

	passHours(rf, 30)

	assert.Equal(t, 0, rf.PopulationCount())
	assert.Equal(t, 0, rf.UnemployedCount())
	assert.Equal(t, 0, job.Workers())
}

func TestExtinctionIsReportedOnce(t *testing.T) {
	f := newFixture()
	f.reg.Upkeep = registry.UpkeepDef{FoodPerPersonDay: 1}
	f.reg.Start.Homeless = registry.PoolDef{Capacity: 10, Amount: 1}
	f.reg.Start.Unemployed = registry.PoolDef{Capacity: 10, Amount: 1}
	rf := f.colony("Ashvale", 4)
	rec := &recorder{}
	rf.Faction.AddObserver(rec)

	passHours(rf, 48)

	assert.Equal(t, 1, rec.extinct)
	assert.Equal(t, 0, rf.PopulationCount())
}

func TestHousedPeopleGrow(t *testing.T) {
	f := newFixture()
	f.reg.Upkeep = registry.UpkeepDef{GrowthPerHousedDay: 24}
	rf := f.colony("Ashvale", 4)
	rf.PlacePrebuiltBuilding(f.cabin, world.V(1, 0))

	passHours(rf, 1)

	assert.Equal(t, 4, rf.HousedCount())
	assert.Equal(t, 10, rf.HomelessCount())
	assert.Equal(t, 14, rf.UnemployedCount())
	assert.Equal(t, 4, rf.Born())
}

func TestGrowthLeavesRoomForWorkersToReturn(t *testing.T) {
	f := newFixture()
	f.reg.Upkeep = registry.UpkeepDef{GrowthPerHousedDay: 24}
	f.reg.Start.Unemployed = registry.PoolDef{Capacity: 10, Amount: 10}
	rf := f.colony("Ashvale", 3)
	act := NewFactionActions(rf)
	rf.PlacePrebuiltBuilding(f.cabin, world.V(1, 0))
	job, err := act.AddFishingJob(act.FreeShoreTiles()[0])
	require.NoError(t, err)
	require.NoError(t, act.ChangeJobWorkerCount(job, 5))

	passHours(rf, 2)

	assert.Equal(t, 0, rf.Born(), "unemployment is full once workers come home")
	require.NoError(t, act.RemoveJob(job))
	assert.Equal(t, 10, rf.UnemployedCount())
}

func TestRemoveJobWidensFullUnemployment(t *testing.T) {
	f := newFixture()
	f.reg.Start.Unemployed = registry.PoolDef{Capacity: 10, Amount: 10}
	rf := f.colony("Ashvale", 3)
	act := NewFactionActions(rf)
	job, err := act.AddFishingJob(act.FreeShoreTiles()[0])
	require.NoError(t, err)
	require.NoError(t, act.ChangeJobWorkerCount(job, 5))
	rf.unemployed.Manifest(5)

	require.NoError(t, act.RemoveJob(job))

	assert.Equal(t, 15, rf.UnemployedCount())
	assert.Equal(t, 0, rf.EmployedCount())
}

func TestStarvingColonyDoesNotGrow(t *testing.T) {
	f := newFixture()
	f.reg.Upkeep = registry.UpkeepDef{FoodPerPersonDay: 1, GrowthPerHousedDay: 2}
	rf := f.colony("Ashvale", 4)
	rf.PlacePrebuiltBuilding(f.cabin, world.V(1, 0))

	passHours(rf, 30)

	assert.Equal(t, 0, rf.Born())
	assert.Positive(t, rf.Starved())
}

func TestFedColonyGrows(t *testing.T) {
	f := newFixture()
	f.reg.Upkeep = registry.UpkeepDef{FoodPerPersonDay: 1, GrowthPerHousedDay: 2}
	rf := f.colony("Ashvale", 4)
	rf.PlacePrebuiltBuilding(f.cabin, world.V(1, 0))
	rf.resources.AddResource(economy.Bundle{Type: f.berries, Amount: 40})

	passHours(rf, 13)

	assert.Equal(t, 4, rf.Born())
	assert.Equal(t, 0, rf.Starved())
}
