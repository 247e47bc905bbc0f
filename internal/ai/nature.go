package ai

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/registry"
	"github.com/talgya/fevered-world/internal/sim"
	"github.com/talgya/fevered-world/internal/world"
)

// NatureCtx is what nature's factors read.
type NatureCtx struct {
	Region   *sim.Region
	Registry *registry.Registry
	rng      *rand.Rand
}

// NatureAI regrows resource sites in a region toward a target density.
type NatureAI struct {
	ctx     *NatureCtx
	actions []*Action[*NatureCtx]
}

// NewNatureAI returns a nature brain for region with one regrow action per
// site type.
func NewNatureAI(region *sim.Region, reg *registry.Registry, rng *rand.Rand) *NatureAI {
	n := &NatureAI{ctx: &NatureCtx{Region: region, Registry: reg, rng: rng}}
	rarest := 0.0
	for _, st := range reg.ResourceSites() {
		rarest = max(rarest, st.Generation.Rarity)
	}
	for _, st := range reg.ResourceSites() {
		n.actions = append(n.actions, regrowAction(st, rarest))
	}
	return n
}

// Actions returns the candidate set.
func (n *NatureAI) Actions() []*Action[*NatureCtx] { return n.actions }

func (n *NatureAI) PreUpdate(now clock.TimeT) {}

// Update picks and runs the best regrow action.
func (n *NatureAI) Update(now clock.TimeT) (string, error) {
	best, score := ChooseAction(n.ctx, n.actions, n.ctx.rng)
	slog.Debug("nature decision", "region", n.ctx.Region.Name, "action", best.Name, "score", score)
	if err := best.Execute(n.ctx); err != nil {
		return best.Name, fmt.Errorf("%s: %w", best.Name, err)
	}
	return best.Name, nil
}

// SiteDensity returns resource sites per tile.
func SiteDensity(r *sim.Region) float64 {
	if len(r.GroundTiles) == 0 {
		return 0
	}
	return float64(len(r.ResourceSites())) / float64(len(r.GroundTiles))
}

func regrowAction(st *registry.ResourceSiteType, rarest float64) *Action[*NatureCtx] {
	return &Action[*NatureCtx]{
		Name: "regrow " + st.Name,
		Factors: []DecisionFactor[*NatureCtx]{
			Factor[*NatureCtx]{Name: "sparseness", Fn: func(c *NatureCtx) float64 {
				target := c.Registry.AI.NatureDensity
				if target <= 0 {
					return 0
				}
				return clamp01(1 - SiteDensity(c.Region)/target)
			}},
			Factor[*NatureCtx]{Name: "rarity", Fn: func(*NatureCtx) float64 {
				if rarest <= 0 {
					return 0
				}
				return st.Generation.Rarity / rarest
			}},
			Factor[*NatureCtx]{Name: "room for " + st.Name, Fn: func(c *NatureCtx) float64 {
				if len(freeSiteTiles(c, st)) > 0 {
					return 1
				}
				return 0
			}},
		},
		Effect: func(c *NatureCtx) error {
			tiles := freeSiteTiles(c, st)
			if len(tiles) == 0 {
				return errors.New("no free tile")
			}
			c.Region.CreateResourceSite(st, tiles[c.rng.Intn(len(tiles))])
			return nil
		},
	}
}

// freeSiteTiles lists tiles where st could appear without disturbing
// anyone's work.
func freeSiteTiles(c *NatureCtx, st *registry.ResourceSiteType) []world.Vec2I {
	var out []world.Vec2I
	for _, pos := range c.Region.Tiles() {
		if pos == (world.Vec2I{}) || !c.Region.CanPlaceResourceSite(st, pos) {
			continue
		}
		if rf := c.Region.LocalFaction; rf != nil && len(rf.GetJobs(pos)) > 0 {
			continue
		}
		out = append(out, pos)
	}
	return out
}
