// Package population provides anonymous, capacity-bounded head counts.
package population

import (
	"fmt"

	"github.com/talgya/fevered-world/internal/invariant"
)

// Pool is a count of interchangeable people with a capacity.
// People only move between pools through Transfer, or enter and leave the
// world through Manifest and Vanish.
type Pool struct {
	amount   int
	capacity int
}

// NewPool returns a pool holding amount people out of capacity.
func NewPool(capacity, amount int) *Pool {
	invariant.Require(capacity >= 0, "negative pool capacity %d", capacity)
	invariant.Require(amount >= 0 && amount <= capacity, "pool amount %d outside [0, %d]", amount, capacity)
	return &Pool{amount: amount, capacity: capacity}
}

// Amount returns the head count.
func (p *Pool) Amount() int { return p.amount }

// Capacity returns the maximum head count.
func (p *Pool) Capacity() int { return p.capacity }

// RoomLeft returns how many more people fit.
func (p *Pool) RoomLeft() int { return p.capacity - p.amount }

// CanTransfer reports whether n people can move from p to target.
// A negative n moves people from target back into p.
func (p *Pool) CanTransfer(target *Pool, n int) bool {
	if target == nil || target == p {
		return false
	}
	if n >= 0 {
		return p.amount >= n && target.RoomLeft() >= n
	}
	return target.amount >= -n && p.RoomLeft() >= -n
}

// Transfer moves n people from p to target (or -n back when n < 0).
// Both counts change together or not at all.
func (p *Pool) Transfer(target *Pool, n int) {
	invariant.Require(p.CanTransfer(target, n), "transfer %d from %s to %s", n, p, target)
	p.amount -= n
	target.amount += n
}

// IncreaseCapacity adds room for n more people.
func (p *Pool) IncreaseCapacity(n int) {
	invariant.Require(n >= 0, "negative capacity increase %d", n)
	p.capacity += n
}

// Manifest adds n newcomers from outside the world.
func (p *Pool) Manifest(n int) {
	invariant.Require(n >= 0 && n <= p.RoomLeft(), "manifest %d into %s", n, p)
	p.amount += n
}

// Vanish removes n people from the world.
func (p *Pool) Vanish(n int) {
	invariant.Require(n >= 0 && n <= p.amount, "vanish %d from %s", n, p)
	p.amount -= n
}

func (p *Pool) String() string {
	if p == nil {
		return "<nil pool>"
	}
	return fmt.Sprintf("%d/%d", p.amount, p.capacity)
}
