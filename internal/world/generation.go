// World generation using layered simplex noise.
// Generates elevation, temperature and humidity fields, then derives ground
// kinds and sea wind.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Width     int     // Tiles east-west
	Height    int     // Tiles north-south
	Seed      int64   // Random seed (0 = random)
	SeaLevel  float64 // Elevation below which tiles are ocean (-1..1)
	SandBand  float64 // Elevation band above sea level that is beach
	WindReach int     // Half-width of the neighbourhood sampled for sea wind
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:     160,
		Height:    96,
		SeaLevel:  -0.05,
		SandBand:  0.06,
		WindReach: 3,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Width:     48,
		Height:    32,
		Seed:      42,
		SeaLevel:  -0.05,
		SandBand:  0.06,
		WindReach: 2,
	}
}

// Generate creates a complete world grid.
func Generate(cfg GenConfig) *Grid {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	// Independent noise layers.
	elevNoise := opensimplex.New(seed)
	tempNoise := opensimplex.New(seed + 1)
	humidNoise := opensimplex.New(seed + 2)

	g := NewGrid(cfg.Width, cfg.Height)
	cx, cy := float64(cfg.Width)/2, float64(cfg.Height)/2

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			fx, fy := float64(x), float64(y)

			elev := octaveNoise(elevNoise, fx, fy, 4, 0.04, 0.5)

			// Continental shaping: sink the edges into ocean.
			dx, dy := (fx-cx)/cx, (fy-cy)/cy
			dist := math.Sqrt(dx*dx + dy*dy)
			elev = elev*0.6 + (1-math.Pow(dist, 2.5))*0.7 - 0.3

			// Warm at the equator, cold at the poles and on high ground.
			latitude := math.Abs(fy-cy) / cy
			temp := (1-latitude)*1.4 - 0.7 + octaveNoise(tempNoise, fx, fy, 3, 0.05, 0.5)*0.3
			if elev > 0 {
				temp -= elev * 0.4
			}

			humid := octaveNoise(humidNoise, fx, fy, 3, 0.06, 0.5)

			g.SetClimate(x, y, elev, temp, humid, 0)
			g.SetTile(x, y, deriveGround(g.GetElevation(x, y), cfg))
		}
	}

	// Post-pass: sea wind from nearby ocean.
	computeSeaWind(g, cfg.WindReach)

	return g
}

// deriveGround determines ground kind from elevation.
func deriveGround(elev float64, cfg GenConfig) GroundTile {
	switch {
	case elev < cfg.SeaLevel:
		return Ocean
	case elev < cfg.SeaLevel+cfg.SandBand:
		return Sand
	default:
		return Grass
	}
}

// computeSeaWind sets sea wind to the ocean share of each tile's neighbourhood,
// mapped onto [-1, 1].
func computeSeaWind(g *Grid, reach int) {
	if reach < 1 {
		reach = 1
	}
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			ocean, total := 0, 0
			for dy := -reach; dy <= reach; dy++ {
				for dx := -reach; dx <= reach; dx++ {
					t := g.GetTile(x+dx, y+dy)
					if t == Void {
						continue
					}
					total++
					if t.Is(Ocean) {
						ocean++
					}
				}
			}
			i, _ := g.index(x, y)
			g.seaWind[i] = float32(2*float64(ocean)/float64(total) - 1)
		}
	}
}

// octaveNoise sums octaves of simplex noise, normalised back to [-1, 1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
