package ai

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/registry"
	"github.com/talgya/fevered-world/internal/sim"
	"github.com/talgya/fevered-world/internal/world"
)

// Brain is anything the game asks for a decision on the AI cadence.
type Brain interface {
	PreUpdate(now clock.TimeT)
	Update(now clock.TimeT) (chosen string, err error)
}

// GamerAI plays a region faction the way a player would: gathering what
// is short, housing the homeless, staffing jobs.
type GamerAI struct {
	ac  *sim.FactionActions
	rng *rand.Rand

	static    []*Action[Ctx]
	ephemeral []*Action[Ctx]
	last      clock.TimeT
}

// NewGamerAI builds the static action set from the registry's AI profile.
func NewGamerAI(ac *sim.FactionActions, rng *rand.Rand) *GamerAI {
	g := &GamerAI{ac: ac, rng: rng}
	profile := ac.Registry().AI

	for _, w := range profile.Wants {
		if w.Site == nil {
			continue
		}
		g.static = append(g.static, gatherAction(w))
	}
	if profile.Housing != nil {
		g.static = append(g.static, buildAction("build housing", profile.Housing, HomelessnessRate()))
	}
	if profile.Storage != nil {
		g.static = append(g.static, buildAction("build storage", profile.Storage, StoragePressure()))
	}
	if ac.Registry().Fishing != nil && profile.FoodDays > 0 {
		g.static = append(g.static, fishAction(profile.FoodDays))
	}
	return g
}

// Actions returns the current candidate set.
func (g *GamerAI) Actions() []*Action[Ctx] {
	return append(slices.Clone(g.static), g.ephemeral...)
}

// PreUpdate rebuilds the per-job actions from the jobs that exist now.
func (g *GamerAI) PreUpdate(now clock.TimeT) {
	g.ephemeral = g.ephemeral[:0]
	wants := make(map[string]int)
	for _, w := range g.ac.Registry().AI.Wants {
		wants[w.Resource.ID] = w.Want
	}

	for _, job := range g.ac.GetJobs() {
		if job.IsInternal() {
			continue
		}
		if job.NeedsWorkers() && job.Workers() < job.MaxWorkers() {
			g.ephemeral = append(g.ephemeral, assignAction(job))
		}
		if gj, ok := job.(*sim.GatherResourceJob); ok && gj.Site() != nil {
			for _, w := range gj.Site().Wells {
				if want, ok := wants[w.Resource().ID]; ok {
					g.ephemeral = append(g.ephemeral, retireAction(job, w.Resource(), want))
					break
				}
			}
		}
	}
}

// Update picks the best action and runs it once.
func (g *GamerAI) Update(now clock.TimeT) (string, error) {
	best, score := ChooseAction(g.ac, g.Actions(), g.rng)
	slog.Debug("ai decision", "region", g.ac.Region().Name, "action", best.Name,
		"score", score, "since_last", clock.Fancy(clock.Remaining(g.last, now)))
	g.last = now
	if err := best.Execute(g.ac); err != nil {
		return best.Name, fmt.Errorf("%s: %w", best.Name, err)
	}
	return best.Name, nil
}

func gatherAction(w registry.ResourceWantDef) *Action[Ctx] {
	site := w.Site
	return &Action[Ctx]{
		Name: fmt.Sprintf("gather %s at %s", w.Resource.Name, site.Name),
		Factors: []DecisionFactor[Ctx]{
			ResourceWant(w.Resource, w.Want),
			Factor[Ctx]{Name: "untouched " + site.Name, Fn: func(ac Ctx) float64 {
				if untouchedSite(ac, site) != nil {
					return 1
				}
				return 0
			}},
		},
		Effect: func(ac Ctx) error {
			s := untouchedSite(ac, site)
			if s == nil {
				return errors.New("no untouched site")
			}
			_, err := ac.AddJob(s, s.AvailableJobs()[0])
			return err
		},
	}
}

func untouchedSite(ac Ctx, t *registry.ResourceSiteType) *sim.ResourceSite {
	for _, s := range ac.Region().ResourceSites() {
		if s.Type == t && len(ac.GetMapObjectJobs(s)) == 0 {
			return s
		}
	}
	return nil
}

func buildAction(name string, t *registry.BuildingType, why DecisionFactor[Ctx]) *Action[Ctx] {
	return &Action[Ctx]{
		Name: name + " (" + t.Name + ")",
		Factors: []DecisionFactor[Ctx]{
			why,
			CanAfford(t),
			Factor[Ctx]{Name: "not already building " + t.Name, Fn: func(ac Ctx) float64 {
				for _, mo := range ac.GetMapObjects() {
					if b, ok := mo.(*sim.Building); ok && b.Type == t && !b.IsConstructed() {
						return 0.25
					}
				}
				return 1
			}},
		},
		Effect: func(ac Ctx) error {
			tiles := ac.FreeTilesFor(t)
			if len(tiles) == 0 {
				return sim.ErrCannotPlace
			}
			slices.SortStableFunc(tiles, func(a, b world.Vec2I) int { return a.LengthSq() - b.LengthSq() })
			_, err := ac.PlaceBuilding(t, tiles[0])
			return err
		},
	}
}

func fishAction(days float64) *Action[Ctx] {
	return &Action[Ctx]{
		Name: "fish by hand",
		Factors: []DecisionFactor[Ctx]{
			FoodWant(days),
			FreeWorkers(),
			Factor[Ctx]{Name: "free shore", Fn: func(ac Ctx) float64 {
				if len(ac.FreeShoreTiles()) > 0 {
					return 1
				}
				return 0
			}},
		},
		Effect: func(ac Ctx) error {
			shore := ac.FreeShoreTiles()
			if len(shore) == 0 {
				return sim.ErrJobRejected
			}
			_, err := ac.AddFishingJob(shore[0])
			return err
		},
	}
}

func assignAction(job sim.Job) *Action[Ctx] {
	return &Action[Ctx]{
		Name: fmt.Sprintf("assign workers to %s at %s", job.Title(), job.Position()),
		Factors: []DecisionFactor[Ctx]{
			FreeWorkers(),
			Factor[Ctx]{Name: "open slots", Fn: func(Ctx) float64 {
				return 1 - float64(job.Workers())/float64(job.MaxWorkers())
			}},
		},
		Effect: func(ac Ctx) error {
			n := min(ac.GetUnemployedCount(), job.MaxWorkers()-job.Workers())
			return ac.ChangeJobWorkerCount(job, n)
		},
	}
}

// retireAction removes a gathering job once its resource is well stocked.
func retireAction(job sim.Job, res *economy.ResourceType, want int) *Action[Ctx] {
	return &Action[Ctx]{
		Name: fmt.Sprintf("remove %s at %s", job.Title(), job.Position()),
		Factors: []DecisionFactor[Ctx]{
			ResourceNeed(res, 2*want),
			Factor[Ctx]{Name: "low priority", Fn: func(Ctx) float64 { return 0.5 }},
		},
		Effect: func(ac Ctx) error { return ac.RemoveJob(job) },
	}
}
