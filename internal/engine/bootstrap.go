// World bootstrap: terrain, regions, colonies and their founding documents.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/talgya/fevered-world/internal/registry"
	"github.com/talgya/fevered-world/internal/sim"
	"github.com/talgya/fevered-world/internal/world"
)

// ErrNoLand is returned when the generated world has nowhere to found a
// colony.
var ErrNoLand = errors.New("no room for any region")

// EmpireName names the faction that owns every colony.
const EmpireName = "The Crown"

const empireCapacity = 1_000_000

// WorldOptions shapes a generated world.
type WorldOptions struct {
	Seed         int64
	Width        int
	Height       int
	Regions      int
	RegionRadius int
}

// Bootstrap generates terrain, carves regions, founds a colony in each and
// wires the empire's documents. The grid is returned for inspection.
func Bootstrap(opts WorldOptions, reg *registry.Registry, settings Settings) (*Game, *world.Grid, error) {
	cfg := world.DefaultGenConfig()
	if opts.Width > 0 && opts.Height > 0 {
		cfg.Width, cfg.Height = opts.Width, opts.Height
	}
	cfg.Seed = opts.Seed
	if cfg.Seed == 0 {
		cfg.Seed = rand.Int63()
	}

	// ── Terrain ─────────────────────────────────────────────────────
	grid := world.Generate(cfg)
	centres := world.PlaceRegions(grid, opts.Regions, opts.RegionRadius, cfg.Seed)
	if len(centres) == 0 {
		return nil, nil, fmt.Errorf("bootstrap %dx%d seed %d: %w", cfg.Width, cfg.Height, cfg.Seed, ErrNoLand)
	}
	slog.Info("world generated", "width", cfg.Width, "height", cfg.Height, "seed", cfg.Seed, "regions", len(centres))

	rng := rand.New(rand.NewSource(cfg.Seed))
	m := sim.NewMap()
	empire := sim.NewFaction(EmpireName, reg.Resources(), empireCapacity)
	m.AddFaction(empire)

	// ── Colonies ────────────────────────────────────────────────────
	names := make(map[string]bool)
	for _, c := range centres {
		name := regionName(rng, names)
		r := sim.NewRegion(0, name, c, world.Carve(grid, c, opts.RegionRadius))
		m.AddRegion(r)

		colony := sim.NewFaction("Colony of "+name, reg.Resources(), 0)
		m.AddFaction(colony)
		rf := sim.NewRegionFaction(colony, r, reg)
		sites := r.PopulateResourceSites(grid, reg, rng)

		found(empire, colony, rf, reg)
		slog.Debug("colony founded", "region", name, "index", r.Index, "tiles", len(r.GroundTiles), "sites", sites)
	}
	linkNeighbors(m.Regions(), opts.RegionRadius)

	return NewGame(m, reg, empire, settings, rng), grid, nil
}

// found files the ownership document and the starting mandates in both
// briefcases.
func found(empire, colony *sim.Faction, rf *sim.RegionFaction, reg *registry.Registry) {
	own := empire.Briefcase.CreateOwningRelationship(empire, colony, 0)
	colony.Briefcase.AddDocument(own)
	for _, md := range reg.Mandates {
		doc := empire.Briefcase.CreateExportMandate(md.Requirements, md.Rewards, empire, rf, 0, md.DueMinutes)
		colony.Briefcase.AddDocument(doc)
	}
}

// linkNeighbors joins regions whose centres are within two region spacings,
// and every otherwise isolated region to its nearest.
func linkNeighbors(regions []*sim.Region, radius int) {
	spacing := 2*radius + 1
	reach := 4 * spacing * spacing
	for i, a := range regions {
		for _, b := range regions[i+1:] {
			if a.WorldPosition.Sub(b.WorldPosition).LengthSq() <= reach {
				a.AddNeighbor(b)
			}
		}
	}
	for _, a := range regions {
		if len(a.Neighbors()) > 0 || len(regions) < 2 {
			continue
		}
		var nearest *sim.Region
		for _, b := range regions {
			if b == a {
				continue
			}
			if nearest == nil || a.WorldPosition.Sub(b.WorldPosition).LengthSq() < a.WorldPosition.Sub(nearest.WorldPosition).LengthSq() {
				nearest = b
			}
		}
		a.AddNeighbor(nearest)
	}
}

var (
	namePrefixes = []string{
		"Ash", "Fen", "Thorn", "Marsh", "Brack", "Salt", "Cold", "Grey",
		"Moss", "Reed", "Elder", "Wyr", "Hollow", "Birch", "Peat", "Ember",
	}
	nameSuffixes = []string{
		"vale", "mere", "wick", "ford", "holm", "fell", "hithe", "stead",
		"moor", "by", "combe", "ness", "wold", "len", "garth", "haven",
	}
)

// regionName draws an unused name.
func regionName(rng *rand.Rand, used map[string]bool) string {
	for i := 0; i < 1000; i++ {
		name := namePrefixes[rng.Intn(len(namePrefixes))] + nameSuffixes[rng.Intn(len(nameSuffixes))]
		if !used[name] {
			used[name] = true
			return name
		}
	}
	name := fmt.Sprintf("Region %d", len(used)+1)
	used[name] = true
	return name
}
