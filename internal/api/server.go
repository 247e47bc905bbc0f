// Package api provides the HTTP API for observing the colonies.
// GET endpoints are public and read-only.
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/engine"
	"github.com/talgya/fevered-world/internal/persistence"
	"github.com/talgya/fevered-world/internal/sim"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
	maxSpeed          = 1000
)

// Server serves the game state over HTTP.
type Server struct {
	Eng      *engine.Engine
	DB       *persistence.DB // nil when the chronicle is disabled
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
	Origins  []string
	Limiter  *RateLimiter // nil = unlimited

	srv *http.Server
}

// Handler builds the routed, rate-limited handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/regions", s.handleRegions)
	mux.HandleFunc("GET /api/v1/region/{index}", s.handleRegion)
	mux.HandleFunc("GET /api/v1/region/{index}/history", s.handleHistory)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)

	// Admin endpoints (GET reads, POST needs the bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	var h http.Handler = mux
	if s.Limiter != nil {
		h = RateLimitMiddleware(s.Limiter, h)
	}
	return corsMiddleware(s.Origins, h)
}

// Start listens in the background until ctx is done.
func (s *Server) Start(ctx context.Context) {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("api server listening", "port", s.Port)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("api server shutdown", "error", err)
		}
	}()
}

func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowed := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no FEVER_API_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

// Status is the body of GET /api/v1/status.
type Status struct {
	Time       clock.TimeT `json:"time"`
	Date       string      `json:"date"`
	Speed      float64     `json:"speed"`
	Running    bool        `json:"running"`
	Steps      uint64      `json:"steps"`
	Outcome    string      `json:"outcome"`
	Regions    int         `json:"regions"`
	Population int         `json:"population"`
	AIRounds   int         `json:"ai_rounds"`
	Events     int         `json:"events"`
	Run        string      `json:"run,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := Status{
		Speed:   s.Eng.Speed(),
		Running: s.Eng.Running(),
		Steps:   s.Eng.Steps(),
	}
	s.Eng.View(func(g *engine.Game) {
		st.Time = g.Time()
		st.Date = g.Time().String()
		st.Outcome = g.Outcome().String()
		st.AIRounds = g.AIRounds()
		st.Events = g.Events.Total()
		for _, rs := range g.Stats() {
			st.Regions++
			st.Population += rs.Population
		}
	})
	if s.DB != nil && s.DB.RunID() != uuid.Nil {
		st.Run = s.DB.RunID().String()
	}
	writeJSON(w, st)
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	var stats []engine.RegionStats
	s.Eng.View(func(g *engine.Game) { stats = g.Stats() })
	writeJSON(w, stats)
}

// BuildingView describes one building.
type BuildingView struct {
	Name        string  `json:"name"`
	Position    string  `json:"position"`
	Constructed bool    `json:"constructed"`
	Progress    float64 `json:"progress"`
	Residents   int     `json:"residents"`
	Capacity    int     `json:"capacity"`
}

// JobView describes one visible job.
type JobView struct {
	Title      string  `json:"title"`
	Position   string  `json:"position"`
	Workers    int     `json:"workers"`
	MaxWorkers int     `json:"max_workers"`
	Progress   float64 `json:"progress"`
	Status     string  `json:"status"`
	Produces   string  `json:"produces,omitempty"`
}

// SiteView describes one resource site.
type SiteView struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	Bunches  int    `json:"bunches"`
	Depleted bool   `json:"depleted"`
}

// DocumentView describes one document in the colony's briefcase.
type DocumentView struct {
	Title        string `json:"title"`
	State        string `json:"state"`
	Requirements string `json:"requirements,omitempty"`
	Rewards      string `json:"rewards,omitempty"`
	Remaining    string `json:"remaining,omitempty"`
}

// RegionDetail is the body of GET /api/v1/region/{index}.
type RegionDetail struct {
	engine.RegionStats
	Neighbors []string       `json:"neighbors"`
	Buildings []BuildingView `json:"buildings"`
	Jobs      []JobView      `json:"jobs"`
	Sites     []SiteView     `json:"sites"`
	Documents []DocumentView `json:"documents"`
	Offers    []string       `json:"offers"`
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "invalid region index", http.StatusBadRequest)
		return
	}

	var (
		detail RegionDetail
		found  bool
	)
	s.Eng.View(func(g *engine.Game) {
		if idx < 0 || idx >= len(g.Map.Regions()) {
			return
		}
		region := g.Map.Region(idx)
		if region.LocalFaction == nil {
			return
		}
		for _, rs := range g.Stats() {
			if rs.Index == idx {
				detail = describeRegion(g.Time(), region, rs)
				found = true
				break
			}
		}
	})
	if !found {
		http.Error(w, "region not found", http.StatusNotFound)
		return
	}
	writeJSON(w, detail)
}

func describeRegion(now clock.TimeT, region *sim.Region, stats engine.RegionStats) RegionDetail {
	rf := region.LocalFaction
	d := RegionDetail{
		RegionStats: stats,
		Neighbors:   []string{},
		Buildings:   []BuildingView{},
		Jobs:        []JobView{},
		Sites:       []SiteView{},
		Documents:   []DocumentView{},
		Offers:      []string{},
	}

	for _, n := range region.Neighbors() {
		d.Neighbors = append(d.Neighbors, n.Name)
	}
	for _, b := range rf.Buildings() {
		d.Buildings = append(d.Buildings, BuildingView{
			Name:        b.Name(),
			Position:    b.Position().String(),
			Constructed: b.IsConstructed(),
			Progress:    b.BuildProgress(),
			Residents:   b.Residents(),
			Capacity:    b.ResidentCapacity(),
		})
	}
	for _, j := range rf.Jobs() {
		if j.IsInternal() {
			continue
		}
		d.Jobs = append(d.Jobs, JobView{
			Title:      j.Title(),
			Position:   j.Position().String(),
			Workers:    j.Workers(),
			MaxWorkers: j.MaxWorkers(),
			Progress:   j.Progress(),
			Status:     j.StatusDescription(),
			Produces:   j.ProductionDescription(),
		})
	}
	for _, site := range region.ResourceSites() {
		v := SiteView{Name: site.Name(), Position: site.Position().String(), Depleted: site.IsDepleted()}
		for _, well := range site.Wells {
			v.Bunches += well.Bunches()
		}
		d.Sites = append(d.Sites, v)
	}
	for _, doc := range rf.Faction.Briefcase.Documents() {
		v := DocumentView{
			Title:        doc.Title,
			State:        doc.State.String(),
			Requirements: describeBundles(doc.Requirements),
			Rewards:      describeBundles(doc.Rewards),
		}
		if doc.IsActive() && doc.Expires > 0 {
			v.Remaining = clock.Fancy(doc.Remaining(now))
		}
		d.Documents = append(d.Documents, v)
	}
	for _, o := range rf.Offers() {
		d.Offers = append(d.Offers, o.String())
	}
	return d
}

// GET /api/v1/region/{index}/history?run=<uuid>
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "chronicle disabled", http.StatusServiceUnavailable)
		return
	}
	idx, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || idx < 0 {
		http.Error(w, "invalid region index", http.StatusBadRequest)
		return
	}

	run := s.DB.RunID()
	if q := r.URL.Query().Get("run"); q != "" {
		if run, err = parseRun(q); err != nil {
			http.Error(w, "invalid run id", http.StatusBadRequest)
			return
		}
	}

	rows, err := s.DB.RegionHistory(run, idx)
	if err != nil {
		slog.Error("region history query failed", "region", idx, "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []persistence.StatRow{}
	}
	writeJSON(w, rows)
}

// GET /api/v1/events?limit=N&region=Name
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = min(n, maxEventLimit)
		}
	}
	region := r.URL.Query().Get("region")

	var events []engine.Event
	s.Eng.View(func(g *engine.Game) {
		if region == "" {
			events = g.Events.Recent(limit)
			return
		}
		for _, e := range g.Events.Recent(0) {
			if e.Region == region {
				events = append(events, e)
			}
		}
	})
	if len(events) > limit {
		events = events[len(events)-limit:]
	}

	// Newest first.
	out := make([]engine.Event, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		out = append(out, events[i])
	}
	writeJSON(w, out)
}

// GET returns the speed; POST {"speed": 2.0} changes it. 0 pauses.
func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
	case http.MethodPost:
		var body struct {
			Speed *float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Speed == nil {
			http.Error(w, `expected {"speed": <number>}`, http.StatusBadRequest)
			return
		}
		if *body.Speed > maxSpeed {
			http.Error(w, fmt.Sprintf("speed must be between 0 and %d", maxSpeed), http.StatusBadRequest)
			return
		}
		if err := s.Eng.SetSpeed(*body.Speed); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]float64{"speed": *body.Speed})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func describeBundles(b []economy.Bundle) string {
	if len(b) == 0 {
		return ""
	}
	return economy.Describe(b)
}

func parseRun(s string) (uuid.UUID, error) { return uuid.Parse(s) }

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
