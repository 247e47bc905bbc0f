package api

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
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

// newEngine founds Ashvale with trees at (3, 0) and a logs mandate due in
// two hours. The AI never runs.
func newEngine(t *testing.T) *engine.Engine {
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
	region.CreateResourceSite(reg.ResourceSite("trees"), world.V(3, 0))
	logs := []economy.Bundle{{Type: reg.Resource("logs"), Amount: 9}}
	colony.Briefcase.AddDocument(empire.Briefcase.CreateExportMandate(logs, nil, empire, rf, 0, 2*clock.Hour))

	s := engine.DefaultSettings()
	s.AIWarmup = clock.Max
	s.SurviveFor = 0
	g := engine.NewGame(m, reg, empire, s, rand.New(rand.NewSource(1)))
	return engine.NewEngine(g, 10, 0)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestStatus(t *testing.T) {
	e := newEngine(t)
	e.Step()
	s := &Server{Eng: e}

	rec := get(t, s.Handler(), "/api/v1/status")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	st := decode[Status](t, rec)
	assert.Equal(t, clock.TimeT(10), st.Time)
	assert.Equal(t, "Day 1 Month 1 Year 1, 0:10", st.Date)
	assert.Equal(t, 1.0, st.Speed)
	assert.Equal(t, uint64(1), st.Steps)
	assert.Equal(t, "ongoing", st.Outcome)
	assert.Equal(t, 1, st.Regions)
	assert.Empty(t, st.Run)

	var want int
	e.View(func(g *engine.Game) { want = g.Stats()[0].Population })
	assert.Equal(t, want, st.Population)
}

func TestRegionsAndDetail(t *testing.T) {
	s := &Server{Eng: newEngine(t)}
	h := s.Handler()

	list := decode[[]engine.RegionStats](t, get(t, h, "/api/v1/regions"))
	require.Len(t, list, 1)
	assert.Equal(t, "Ashvale", list[0].Name)

	rec := get(t, h, "/api/v1/region/0")
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[RegionDetail](t, rec)
	assert.Equal(t, "Ashvale", d.Name)
	assert.Empty(t, d.Jobs, "the longhouse job is internal")
	require.Len(t, d.Buildings, 1)
	assert.Equal(t, "Longhouse", d.Buildings[0].Name)
	assert.Equal(t, "(0, 0)", d.Buildings[0].Position)
	assert.True(t, d.Buildings[0].Constructed)
	require.Len(t, d.Sites, 1)
	assert.Equal(t, "Trees", d.Sites[0].Name)
	assert.Positive(t, d.Sites[0].Bunches)
	require.Len(t, d.Documents, 1)
	assert.Equal(t, "active", d.Documents[0].State)
	assert.Equal(t, "2 hours", d.Documents[0].Remaining)
	assert.Equal(t, "9 Logs", d.Documents[0].Requirements)
}

func TestRegionErrors(t *testing.T) {
	h := (&Server{Eng: newEngine(t)}).Handler()

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/v1/region/5").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/v1/region/-1").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/v1/region/east").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/api/v1/region/0/history").Code)
}

func TestEventsNewestFirst(t *testing.T) {
	e := newEngine(t)
	e.Update(func(g *engine.Game) {
		g.Events.Record(engine.Event{Time: 1, Region: "Ashvale", Category: engine.CategoryGame, Description: "landfall"})
		g.Events.Record(engine.Event{Time: 2, Region: "Fenmere", Category: engine.CategoryGame, Description: "smoke seen"})
		g.Events.Record(engine.Event{Time: 3, Region: "Ashvale", Category: engine.CategoryJob, Description: "first felling"})
	})
	h := (&Server{Eng: e}).Handler()

	all := decode[[]engine.Event](t, get(t, h, "/api/v1/events"))
	require.Len(t, all, 3)
	assert.Equal(t, "first felling", all[0].Description)

	one := decode[[]engine.Event](t, get(t, h, "/api/v1/events?limit=1"))
	require.Len(t, one, 1)
	assert.Equal(t, clock.TimeT(3), one[0].Time)

	ash := decode[[]engine.Event](t, get(t, h, "/api/v1/events?region=Ashvale"))
	require.Len(t, ash, 2)
	assert.Equal(t, "landfall", ash[1].Description)

	none := decode[[]engine.Event](t, get(t, h, "/api/v1/events?region=Nowhere"))
	assert.Empty(t, none)
}

func TestSpeedRequiresAdmin(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		auth     string
		body     string
		wantCode int
	}{
		{"no key configured", "", "Bearer x", `{"speed": 2}`, http.StatusForbidden},
		{"wrong token", "secret", "Bearer nope", `{"speed": 2}`, http.StatusUnauthorized},
		{"missing token", "secret", "", `{"speed": 2}`, http.StatusUnauthorized},
		{"bad body", "secret", "Bearer secret", `{"pace": 2}`, http.StatusBadRequest},
		{"too fast", "secret", "Bearer secret", `{"speed": 5000}`, http.StatusBadRequest},
		{"negative", "secret", "Bearer secret", `{"speed": -1}`, http.StatusBadRequest},
		{"pause", "secret", "Bearer secret", `{"speed": 0}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t)
			h := (&Server{Eng: e, AdminKey: tt.key}).Handler()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(tt.body))
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode != http.StatusOK {
				assert.Equal(t, 1.0, e.Speed())
			}
		})
	}
}

func TestSpeedRoundTrip(t *testing.T) {
	e := newEngine(t)
	h := (&Server{Eng: e, AdminKey: "secret"}).Handler()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed": 4.5}`))
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4.5, e.Speed())
	got := decode[map[string]float64](t, get(t, h, "/api/v1/speed"))
	assert.Equal(t, 4.5, got["speed"])

	put := httptest.NewRecorder()
	h.ServeHTTP(put, httptest.NewRequest(http.MethodPut, "/api/v1/speed", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, put.Code)
}

func TestHistoryFromChronicle(t *testing.T) {
	db, err := persistence.Open(filepath.Join(t.TempDir(), "chronicle.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	run, err := db.BeginRun(1, 1)
	require.NoError(t, err)
	e := newEngine(t)
	db.Attach(e)
	for i := 0; i < 12; i++ {
		e.Step()
	}
	h := (&Server{Eng: e, DB: db}).Handler()

	rec := get(t, h, "/api/v1/region/0/history")

	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]persistence.StatRow](t, rec)
	require.Len(t, rows, 2)
	assert.Equal(t, clock.TimeT(clock.Hour), rows[0].Time)
	assert.Equal(t, "Ashvale", rows[0].Region)

	st := decode[Status](t, get(t, h, "/api/v1/status"))
	assert.Equal(t, run.String(), st.Run)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/v1/region/0/history?run=nope").Code)
	other := decode[[]persistence.StatRow](t, get(t, h, "/api/v1/region/0/history?run=00000000-0000-0000-0000-000000000000"))
	assert.Empty(t, other)
}

func TestCORS(t *testing.T) {
	h := (&Server{Eng: newEngine(t), Origins: []string{" https://colonies.example "}}).Handler()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/status", nil)
	req.Header.Set("Origin", "https://colonies.example")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://colonies.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
