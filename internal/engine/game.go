// Game ties the map, the empire and the region brains together and runs
// the AI on its own cadence.
package engine

import (
	"log/slog"
	"math/rand"

	"github.com/talgya/fevered-world/internal/ai"
	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/registry"
	"github.com/talgya/fevered-world/internal/sim"
)

// NoPlayer disables the player region.
const NoPlayer = -1

// Outcome is how a game ended, if it has.
type Outcome uint8

const (
	OutcomeOngoing Outcome = iota
	OutcomeSurvived
	OutcomeMandateFailed
	OutcomeExtinct
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSurvived:
		return "survived"
	case OutcomeMandateFailed:
		return "mandate failed"
	case OutcomeExtinct:
		return "extinct"
	}
	return "ongoing"
}

// Settings tunes a game.
type Settings struct {
	PlayRegion            int         // Region index the player controls, or NoPlayer
	AIPlaysInPlayerRegion bool        // Let the gamer AI run the player region too
	// AIWarmup holds off AI decisions until this game time. It counts game
	// minutes, not wall-clock seconds, so it scales with the speed setting.
	AIWarmup              clock.TimeT
	AICadence             clock.TimeT // Minimum game minutes between AI rounds
	SurviveFor            clock.TimeT // Player wins after this long (0 = never)
}

// DefaultSettings returns the stock tuning.
func DefaultSettings() Settings {
	return Settings{
		PlayRegion: 0,
		AIWarmup:   480,
		AICadence:  30,
		SurviveFor: clock.Month,
	}
}

type regionBrains struct {
	region *sim.Region
	gamer  ai.Brain
	nature ai.Brain
}

// Game is one running world.
type Game struct {
	sim.NopObserver

	Map      *sim.Map
	Registry *registry.Registry
	Empire   *sim.Faction
	Events   *EventLog

	settings Settings
	time     clock.TimeT
	sinceAI  clock.TimeT
	aiRounds int
	brains   []regionBrains
	outcome  Outcome
}

// NewGame wraps m and gives every region with a local faction a gamer and
// a nature brain seeded from rng.
func NewGame(m *sim.Map, reg *registry.Registry, empire *sim.Faction, settings Settings, rng *rand.Rand) *Game {
	g := &Game{Map: m, Registry: reg, Empire: empire, settings: settings}
	g.Events = NewEventLog(g.Time, DefaultEventLimit)
	m.AddObserver(g.Events)
	m.AddObserver(g)

	for _, r := range m.Regions() {
		if r.LocalFaction == nil {
			continue
		}
		ac := sim.NewFactionActions(r.LocalFaction)
		g.brains = append(g.brains, regionBrains{
			region: r,
			gamer:  ai.NewGamerAI(ac, rand.New(rand.NewSource(rng.Int63()))),
			nature: ai.NewNatureAI(r, reg, rand.New(rand.NewSource(rng.Int63()))),
		})
	}
	return g
}

// Time returns the game clock.
func (g *Game) Time() clock.TimeT { return g.time }

// Settings returns the game's tuning.
func (g *Game) Settings() Settings { return g.settings }

// Outcome reports whether and how the game ended.
func (g *Game) Outcome() Outcome { return g.outcome }

// AIRounds counts AI rounds run so far.
func (g *Game) AIRounds() int { return g.aiRounds }

// Player returns the player's region faction, or nil.
func (g *Game) Player() *sim.RegionFaction {
	i := g.settings.PlayRegion
	if i < 0 || i >= len(g.Map.Regions()) {
		return nil
	}
	return g.Map.Region(i).LocalFaction
}

// PlayerActions returns the player's façade, or nil without a player.
func (g *Game) PlayerActions() *sim.FactionActions {
	rf := g.Player()
	if rf == nil {
		return nil
	}
	return sim.NewFactionActions(rf)
}

// PassTime advances the world by minutes and runs an AI round when the
// cadence allows. A finished game does not advance.
func (g *Game) PassTime(minutes clock.TimeT) {
	if g.outcome != OutcomeOngoing || minutes == 0 {
		return
	}
	// Events raised during the step are stamped with its end.
	g.time = g.time.Add(minutes)
	g.sinceAI = g.sinceAI.Add(minutes)
	g.Map.PassTime(minutes)

	if g.outcome == OutcomeOngoing && g.time >= g.settings.AIWarmup && g.sinceAI >= g.settings.AICadence {
		g.sinceAI = 0
		g.runAI()
	}
	if g.outcome == OutcomeOngoing && g.settings.SurviveFor > 0 && g.time >= g.settings.SurviveFor && g.Player() != nil {
		g.end(OutcomeSurvived)
	}
}

func (g *Game) runAI() {
	g.aiRounds++
	for _, rb := range g.brains {
		if g.skipsAI(rb.region) {
			continue
		}
		for _, b := range []ai.Brain{rb.gamer, rb.nature} {
			b.PreUpdate(g.time)
			if _, err := b.Update(g.time); err != nil {
				slog.Warn("ai action failed", "region", rb.region.Name, "error", err)
				g.Events.record(rb.region.Name, CategoryAI, "%v", err)
			}
		}
	}
}

func (g *Game) skipsAI(r *sim.Region) bool {
	return r.Index == g.settings.PlayRegion && !g.settings.AIPlaysInPlayerRegion
}

func (g *Game) end(o Outcome) {
	g.outcome = o
	slog.Info("game over", "outcome", o, "time", g.time)
	g.Events.record("", CategoryGame, "game over: %s", o)
}

// ContractSettled ends the game when the player's mandate fails.
func (g *Game) ContractSettled(doc *sim.Document, result sim.FulfillResult) {
	player := g.Player()
	if g.outcome != OutcomeOngoing || player == nil || result == sim.FulfillOk {
		return
	}
	if doc.Type.Has(sim.AMandatesExportFromB) && doc.SideB == sim.Party(player) {
		g.end(OutcomeMandateFailed)
	}
}

// PopulationExtinct ends the game when the player's colony dies out.
func (g *Game) PopulationExtinct(rf *sim.RegionFaction) {
	if g.outcome == OutcomeOngoing && rf == g.Player() {
		g.end(OutcomeExtinct)
	}
}

// RegionStats is a numeric snapshot of one region.
type RegionStats struct {
	Index           int            `json:"index"`
	Name            string         `json:"name"`
	Player          bool           `json:"player"`
	Population      int            `json:"population"`
	Homeless        int            `json:"homeless"`
	Unemployed      int            `json:"unemployed"`
	Housed          int            `json:"housed"`
	Employed        int            `json:"employed"`
	Starved         int            `json:"starved"`
	Born            int            `json:"born"`
	Silver          int            `json:"silver"`
	Buildings       int            `json:"buildings"`
	Jobs            int            `json:"jobs"`
	Sites           int            `json:"sites"`
	FailedContracts int            `json:"failed_contracts"`
	Resources       map[string]int `json:"resources"`
}

// Stats snapshots every region with a local faction.
func (g *Game) Stats() []RegionStats {
	var out []RegionStats
	for _, r := range g.Map.Regions() {
		rf := r.LocalFaction
		if rf == nil {
			continue
		}
		s := RegionStats{
			Index:           r.Index,
			Name:            r.Name,
			Player:          r.Index == g.settings.PlayRegion,
			Population:      rf.PopulationCount(),
			Homeless:        rf.HomelessCount(),
			Unemployed:      rf.UnemployedCount(),
			Housed:          rf.HousedCount(),
			Employed:        rf.EmployedCount(),
			Starved:         rf.Starved(),
			Born:            rf.Born(),
			Silver:          rf.Silver,
			Buildings:       len(rf.Buildings()),
			Jobs:            len(rf.Jobs()),
			Sites:           len(r.ResourceSites()),
			FailedContracts: rf.FailedContracts(),
			Resources:       make(map[string]int),
		}
		for _, e := range rf.ResourceStorage().Entries() {
			s.Resources[e.Type.ID] = e.Amount
		}
		out = append(out, s)
	}
	return out
}
