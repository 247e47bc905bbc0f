package sim

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/invariant"
	"github.com/talgya/fevered-world/internal/registry"
	"github.com/talgya/fevered-world/internal/world"
)

// Region is a patch of tiles with the map objects on it and at most one
// local faction.
type Region struct {
	Index         int
	Name          string
	WorldPosition world.Vec2I // Global tile of local (0, 0)
	GroundTiles   map[world.Vec2I]world.GroundTile
	LocalFaction  *RegionFaction

	mapObjects map[world.Vec2I]MapObject
	neighbors  []*Region
}

// NewRegion returns an empty region over tiles, keyed by local coordinates.
func NewRegion(index int, name string, worldPos world.Vec2I, tiles map[world.Vec2I]world.GroundTile) *Region {
	return &Region{
		Index:         index,
		Name:          name,
		WorldPosition: worldPos,
		GroundTiles:   tiles,
		mapObjects:    make(map[world.Vec2I]MapObject),
	}
}

// PopulateResourceSites rolls each free tile against every site type's
// spawn chance for the world climate there.
func (r *Region) PopulateResourceSites(w world.World, reg *registry.Registry, rng *rand.Rand) int {
	placed := 0
	for _, pos := range r.Tiles() {
		if pos == (world.Vec2I{}) || r.HasMapObject(pos) {
			continue
		}
		g := r.WorldPosition.Add(pos)
		elev, temp, hum := w.GetElevation(g.X, g.Y), w.GetTemperature(g.X, g.Y), w.GetHumidity(g.X, g.Y)
		for _, st := range reg.ResourceSites() {
			if !r.GroundTiles[pos].Is(st.AllowedGround) {
				continue
			}
			if rng.Float64() < st.SpawnChance(elev, temp, hum) {
				r.CreateResourceSite(st, pos)
				placed++
				break
			}
		}
	}
	return placed
}

// Tiles returns every local tile in row-major order.
func (r *Region) Tiles() []world.Vec2I {
	out := make([]world.Vec2I, 0, len(r.GroundTiles))
	for p := range r.GroundTiles {
		out = append(out, p)
	}
	slices.SortFunc(out, comparePos)
	return out
}

// Tile returns the ground at a local position.
func (r *Region) Tile(pos world.Vec2I) (world.GroundTile, bool) {
	t, ok := r.GroundTiles[pos]
	return t, ok
}

// CanPlaceBuilding reports whether t may stand on the free tile at pos.
func (r *Region) CanPlaceBuilding(t *registry.BuildingType, pos world.Vec2I) bool {
	tile, ok := r.GroundTiles[pos]
	if !ok || r.HasMapObject(pos) {
		return false
	}
	return t.IsPlacementAllowed(tile)
}

// CanPlaceResourceSite reports whether t may appear on the free tile at pos.
func (r *Region) CanPlaceResourceSite(t *registry.ResourceSiteType, pos world.Vec2I) bool {
	tile, ok := r.GroundTiles[pos]
	if !ok || r.HasMapObject(pos) {
		return false
	}
	return tile.Is(t.AllowedGround)
}

// IsShore reports whether pos is land touching water or the region edge.
func (r *Region) IsShore(pos world.Vec2I) bool {
	tile, ok := r.GroundTiles[pos]
	if !ok || tile.Is(world.Ocean) {
		return false
	}
	if tile.Is(world.Sand) {
		return true
	}
	for _, n := range pos.Neighbors() {
		nt, ok := r.GroundTiles[n]
		if !ok || nt.Is(world.Ocean) {
			return true
		}
	}
	return false
}

// HasMapObject reports whether a map object occupies pos.
func (r *Region) HasMapObject(pos world.Vec2I) bool {
	_, ok := r.mapObjects[pos]
	return ok
}

// MapObjectAt returns the map object at pos.
func (r *Region) MapObjectAt(pos world.Vec2I) (MapObject, bool) {
	mo, ok := r.mapObjects[pos]
	return mo, ok
}

// MapObjects returns every map object in row-major order.
func (r *Region) MapObjects() []MapObject {
	out := make([]MapObject, 0, len(r.mapObjects))
	for _, mo := range r.mapObjects {
		out = append(out, mo)
	}
	slices.SortFunc(out, func(a, b MapObject) int { return comparePos(a.Position(), b.Position()) })
	return out
}

// ResourceSites returns the resource sites in row-major order.
func (r *Region) ResourceSites() []*ResourceSite {
	var out []*ResourceSite
	for _, mo := range r.MapObjects() {
		if s, ok := mo.(*ResourceSite); ok {
			out = append(out, s)
		}
	}
	return out
}

// CreateResourceSite places a new, full site of type t at pos.
func (r *Region) CreateResourceSite(t *registry.ResourceSiteType, pos world.Vec2I) *ResourceSite {
	s := NewResourceSite(t, pos, r.WorldPosition)
	r.addMapObject(s)
	return s
}

func (r *Region) addMapObject(mo MapObject) {
	pos := mo.Position()
	_, onTile := r.GroundTiles[pos]
	invariant.Require(onTile, "map object %s outside region %s at %s", mo.Name(), r.Name, pos)
	invariant.Require(!r.HasMapObject(pos), "tile %s of %s already holds %s", pos, r.Name, r.mapObjects[pos])
	r.mapObjects[pos] = mo
}

func (r *Region) removeMapObject(pos world.Vec2I) {
	invariant.Require(r.HasMapObject(pos), "no map object to remove at %s in %s", pos, r.Name)
	delete(r.mapObjects, pos)
}

// AddNeighbor links r and o both ways.
func (r *Region) AddNeighbor(o *Region) {
	invariant.Require(o != r, "region %s cannot neighbour itself", r.Name)
	if !slices.Contains(r.neighbors, o) {
		r.neighbors = append(r.neighbors, o)
	}
	if !slices.Contains(o.neighbors, r) {
		o.neighbors = append(o.neighbors, r)
	}
}

// Neighbors returns the adjacent regions.
func (r *Region) Neighbors() []*Region { return slices.Clone(r.neighbors) }

// PassTime runs the local faction's jobs, then every map object that was
// on the map when the step began, each exactly once.
func (r *Region) PassTime(minutes clock.TimeT) {
	objects := r.MapObjects()
	if r.LocalFaction != nil {
		r.LocalFaction.PassTime(minutes)
	}
	for _, mo := range objects {
		mo.PassTime(minutes)
	}
}

func (r *Region) String() string {
	return fmt.Sprintf("%s (#%d)", r.Name, r.Index)
}
