// Region carving and placement on the world grid.
package world

import (
	"math/rand"
	"sort"
)

// Carve returns the non-void tiles within radius of center, keyed by
// region-local coordinates (center maps to (0, 0)).
func Carve(w World, center Vec2I, radius int) map[Vec2I]GroundTile {
	tiles := make(map[Vec2I]GroundTile)
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			local := Vec2I{dx, dy}
			if local.LengthSq() > r2 {
				continue
			}
			g := center.Add(local)
			t := w.GetTile(g.X, g.Y)
			if t == Void {
				continue
			}
			tiles[local] = t
		}
	}
	return tiles
}

// PlaceRegions picks up to count region centres on land, spaced at least
// 2*radius+1 apart and ordered by how much land surrounds them.
func PlaceRegions(w World, count, radius int, seed int64) []Vec2I {
	rng := rand.New(rand.NewSource(seed + 200))

	type scored struct {
		at    Vec2I
		score float64
	}
	var candidates []scored

	step := radius/2 + 1
	for y := radius; y < w.Height()-radius; y += step {
		for x := radius; x < w.Width()-radius; x += step {
			if !w.GetTile(x, y).Is(Land) {
				continue
			}
			s := regionScore(w, Vec2I{x, y}, radius)
			if s > 0 {
				// Small jitter so equal scores don't always resolve top-left first.
				candidates = append(candidates, scored{Vec2I{x, y}, s + rng.Float64()*0.01})
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	minDist := 2*radius + 1
	var picked []Vec2I
	for _, c := range candidates {
		if len(picked) >= count {
			break
		}
		if tooClose(c.at, picked, minDist) {
			continue
		}
		picked = append(picked, c.at)
	}
	return picked
}

// regionScore favours mostly-land circles with some coast.
func regionScore(w World, center Vec2I, radius int) float64 {
	land, ocean := 0, 0
	for _, t := range Carve(w, center, radius) {
		if t.Is(Land) {
			land++
		} else if t.Is(Ocean) {
			ocean++
		}
	}
	total := land + ocean
	if total == 0 || land*2 < total {
		return 0
	}
	score := float64(land) / float64(total)
	if ocean > 0 {
		score += 0.25
	}
	return score
}

func tooClose(at Vec2I, picked []Vec2I, minDist int) bool {
	for _, p := range picked {
		if at.Sub(p).LengthSq() < minDist*minDist {
			return true
		}
	}
	return false
}
