// Package world holds the global terrain grid that regions are carved from.
package world

// World answers climate and ground queries for global tile coordinates.
// Every field query returns a value in [-1, 1].
type World interface {
	Width() int
	Height() int
	GetElevation(x, y int) float64
	GetTemperature(x, y int) float64
	GetHumidity(x, y int) float64
	GetSeaWind(x, y int) float64
	GetTile(x, y int) GroundTile
}

// Grid is a dense World backed by per-tile arrays.
type Grid struct {
	width, height int
	ground        []GroundTile
	elevation     []float32
	temperature   []float32
	humidity      []float32
	seaWind       []float32
}

// NewGrid returns a width×height grid of void tiles at elevation -1.
func NewGrid(width, height int) *Grid {
	n := width * height
	g := &Grid{
		width:       width,
		height:      height,
		ground:      make([]GroundTile, n),
		elevation:   make([]float32, n),
		temperature: make([]float32, n),
		humidity:    make([]float32, n),
		seaWind:     make([]float32, n),
	}
	for i := range g.elevation {
		g.elevation[i] = -1
	}
	return g
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

func (g *Grid) index(x, y int) (int, bool) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return 0, false
	}
	return x + y*g.width, true
}

// SetTile sets the ground kind. Out-of-range coordinates are ignored.
func (g *Grid) SetTile(x, y int, t GroundTile) {
	if i, ok := g.index(x, y); ok {
		g.ground[i] = t
	}
}

// SetClimate sets every field of a tile; values are clamped to [-1, 1].
func (g *Grid) SetClimate(x, y int, elevation, temperature, humidity, seaWind float64) {
	i, ok := g.index(x, y)
	if !ok {
		return
	}
	g.elevation[i] = float32(clampUnit(elevation))
	g.temperature[i] = float32(clampUnit(temperature))
	g.humidity[i] = float32(clampUnit(humidity))
	g.seaWind[i] = float32(clampUnit(seaWind))
}

// GetTile returns Void outside the grid.
func (g *Grid) GetTile(x, y int) GroundTile {
	if i, ok := g.index(x, y); ok {
		return g.ground[i]
	}
	return Void
}

// GetElevation returns -1 outside the grid.
func (g *Grid) GetElevation(x, y int) float64 {
	if i, ok := g.index(x, y); ok {
		return float64(g.elevation[i])
	}
	return -1
}

// GetTemperature returns 0 outside the grid.
func (g *Grid) GetTemperature(x, y int) float64 {
	if i, ok := g.index(x, y); ok {
		return float64(g.temperature[i])
	}
	return 0
}

// GetHumidity returns 0 outside the grid.
func (g *Grid) GetHumidity(x, y int) float64 {
	if i, ok := g.index(x, y); ok {
		return float64(g.humidity[i])
	}
	return 0
}

// GetSeaWind returns 0 outside the grid.
func (g *Grid) GetSeaWind(x, y int) float64 {
	if i, ok := g.index(x, y); ok {
		return float64(g.seaWind[i])
	}
	return 0
}

// TileCounts returns how many tiles of each ground kind exist.
func TileCounts(w World) map[GroundTile]int {
	counts := make(map[GroundTile]int)
	for y := 0; y < w.Height(); y++ {
		for x := 0; x < w.Width(); x++ {
			counts[w.GetTile(x, y)]++
		}
	}
	return counts
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
