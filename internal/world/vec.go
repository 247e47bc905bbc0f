// Integer grid coordinates.
package world

import "fmt"

// Vec2I is a tile coordinate. Region-local coordinates are relative to the
// region's centre; global coordinates index the world grid.
type Vec2I struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// V is shorthand for Vec2I{x, y}.
func V(x, y int) Vec2I { return Vec2I{X: x, Y: y} }

// Add returns v+o.
func (v Vec2I) Add(o Vec2I) Vec2I { return Vec2I{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o.
func (v Vec2I) Sub(o Vec2I) Vec2I { return Vec2I{v.X - o.X, v.Y - o.Y} }

// LengthSq returns the squared euclidean length.
func (v Vec2I) LengthSq() int { return v.X*v.X + v.Y*v.Y }

// Neighbors returns the four orthogonal neighbours.
func (v Vec2I) Neighbors() [4]Vec2I {
	return [4]Vec2I{
		{v.X + 1, v.Y}, {v.X - 1, v.Y},
		{v.X, v.Y + 1}, {v.X, v.Y - 1},
	}
}

func (v Vec2I) String() string { return fmt.Sprintf("(%d, %d)", v.X, v.Y) }
