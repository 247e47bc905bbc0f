// Package sim holds the turn-free colony simulation: regions, their map
// objects, the factions that live there and the jobs they run.
package sim

import (
	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/world"
)

// MapObject is anything occupying a region tile.
type MapObject interface {
	Position() world.Vec2I       // Region-local tile, fixed at creation
	GlobalPosition() world.Vec2I // World tile
	Name() string
	PassTime(minutes clock.TimeT)
	AvailableJobs() []JobBox // Jobs a faction could start here
}

// placement is the position data shared by all map objects.
type placement struct {
	position world.Vec2I
	origin   world.Vec2I // Region's world offset
}

func (p placement) Position() world.Vec2I       { return p.position }
func (p placement) GlobalPosition() world.Vec2I { return p.origin.Add(p.position) }
