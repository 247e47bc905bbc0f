package persistence_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/engine"
	"github.com/talgya/fevered-world/internal/persistence"
	"github.com/talgya/fevered-world/internal/registry"
	"github.com/talgya/fevered-world/internal/sim"
	"github.com/talgya/fevered-world/internal/world"
)

func openTemp(t *testing.T) *persistence.DB {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "chronicle.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newGame(t *testing.T) *engine.Game {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	tiles := make(map[world.Vec2I]world.GroundTile)
	for y := -4; y <= 4; y++ {
		for x := -4; x <= 4; x++ {
			tiles[world.V(x, y)] = world.Grass
		}
	}

	m := sim.NewMap()
	empire := sim.NewFaction(engine.EmpireName, reg.Resources(), 1000)
	colony := sim.NewFaction("Colony of Ashvale", reg.Resources(), 0)
	m.AddFaction(empire)
	m.AddFaction(colony)
	region := sim.NewRegion(0, "Ashvale", world.Vec2I{}, tiles)
	m.AddRegion(region)
	rf := sim.NewRegionFaction(colony, region, reg)
	logs := []economy.Bundle{{Type: reg.Resource("logs"), Amount: 9}}
	doc := empire.Briefcase.CreateExportMandate(logs, nil, empire, rf, 0, 2*clock.Hour)
	colony.Briefcase.AddDocument(doc)
	empire.Briefcase.CreateOwningRelationship(empire, colony, 0)

	s := engine.DefaultSettings()
	s.AIWarmup = clock.Max
	return engine.NewGame(m, reg, empire, s, rand.New(rand.NewSource(1)))
}

func TestChronicleRecordsARun(t *testing.T) {
	// Arrange
	db := openTemp(t)
	run, err := db.BeginRun(42, 1)
	require.NoError(t, err)
	g := newGame(t)
	g.Events.Record(engine.Event{Region: "Ashvale", Category: engine.CategoryGame, Description: "landfall"})
	e := engine.NewEngine(g, 30, 0)
	db.Attach(e)

	// Act
	e.RunFor(context.Background(), 3*clock.Hour)
	require.NoError(t, db.EndRun(g.Time(), g.Outcome()))

	// Assert
	events, err := db.RecentEvents(10)
	require.NoError(t, err)
	require.Len(t, events, 2, "landfall and the mandate")
	assert.Equal(t, "contract", events[0].Category)
	assert.Equal(t, clock.TimeT(2*clock.Hour), events[0].Time)
	assert.Equal(t, "landfall", events[1].Description)
	assert.Equal(t, run.String(), events[1].RunID)

	history, err := db.RegionHistory(run, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, clock.Hour, history[0].Time)
	assert.Equal(t, 10, history[0].Population)
	var res map[string]int
	require.NoError(t, json.Unmarshal([]byte(history[2].Resources), &res))
	assert.Equal(t, 25-9, res["logs"])

	states, err := db.DocumentStates(run)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"fulfilled": 1, "active": 1}, states)

	runs, err := db.Runs(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "ongoing", runs[0].Outcome)
	assert.Equal(t, 3*clock.Hour, runs[0].GameTime)
	assert.True(t, runs[0].EndedAt.Valid)

	last, err := db.GetMeta("last_time")
	require.NoError(t, err)
	assert.Equal(t, "180", last)
}

func TestWritesNeedARun(t *testing.T) {
	db := openTemp(t)

	assert.ErrorIs(t, db.SaveEvents([]engine.Event{{Category: "x"}}), persistence.ErrNoRun)
	assert.ErrorIs(t, db.SaveStats(0, nil), persistence.ErrNoRun)
	assert.ErrorIs(t, db.EndRun(0, engine.OutcomeOngoing), persistence.ErrNoRun)
	assert.NoError(t, db.SaveEvents(nil), "nothing to write is fine")
}

func TestMeta(t *testing.T) {
	db := openTemp(t)

	_, err := db.GetMeta("seed")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, db.SaveMeta("seed", "1"))
	require.NoError(t, db.SaveMeta("seed", "2"))
	v, err := db.GetMeta("seed")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chronicle.db")
	db, err := persistence.Open(path)
	require.NoError(t, err)
	_, err = db.BeginRun(1, 1)
	require.NoError(t, err)
	require.NoError(t, db.SaveEvents([]engine.Event{{Time: 5, Category: "game", Description: "first"}}))
	require.NoError(t, db.Close())

	db, err = persistence.Open(path)
	require.NoError(t, err)
	defer db.Close()
	events, err := db.RecentEvents(5)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "first", events[0].Description)
}
