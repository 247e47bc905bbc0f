package economy

import (
	"github.com/talgya/fevered-world/internal/invariant"
)

// Entry is a snapshot of one tracked resource.
type Entry struct {
	Type     *ResourceType `json:"type"`
	Capacity int           `json:"capacity"`
	Amount   int           `json:"amount"`
}

// Reader is the read-only view of a Storage.
type Reader interface {
	GetCount(t *ResourceType) int
	GetCapacity(t *ResourceType) int
	HasEnough(b Bundle) bool
	HasEnoughAll(bundles []Bundle) bool
	CanAdd(b Bundle) bool
	Entries() []Entry
}

type slot struct {
	capacity int
	amount   int
}

// Storage holds per-type amounts bounded by per-type capacity.
// A type is tracked once capacity has been raised for it.
type Storage struct {
	slots map[*ResourceType]*slot
	order []*ResourceType
}

// NewStorage returns an empty storage tracking nothing.
func NewStorage() *Storage {
	return &Storage{slots: make(map[*ResourceType]*slot)}
}

// Tracks reports whether capacity has ever been raised for t.
func (s *Storage) Tracks(t *ResourceType) bool {
	_, ok := s.slots[t]
	return ok
}

// IncreaseCapacity raises the capacity for t, tracking it if new.
func (s *Storage) IncreaseCapacity(t *ResourceType, n int) {
	invariant.Require(t != nil, "increase capacity of nil resource type")
	invariant.Require(n >= 0, "negative capacity increase %d for %s", n, t.Name)
	sl, ok := s.slots[t]
	if !ok {
		sl = &slot{}
		s.slots[t] = sl
		s.order = append(s.order, t)
	}
	sl.capacity += n
}

// ReduceCapacity lowers the capacity for t, discarding any amount above it.
func (s *Storage) ReduceCapacity(t *ResourceType, n int) {
	sl, ok := s.slots[t]
	invariant.Require(ok, "reduce capacity of untracked resource %s", t)
	invariant.Require(n >= 0 && n <= sl.capacity, "reduce capacity of %s by %d, capacity is %d", t.Name, n, sl.capacity)
	sl.capacity -= n
	if sl.amount > sl.capacity {
		sl.amount = sl.capacity
	}
}

// GetCount returns the stored amount of t (0 when untracked).
func (s *Storage) GetCount(t *ResourceType) int {
	if sl, ok := s.slots[t]; ok {
		return sl.amount
	}
	return 0
}

// GetCapacity returns the capacity for t (0 when untracked).
func (s *Storage) GetCapacity(t *ResourceType) int {
	if sl, ok := s.slots[t]; ok {
		return sl.capacity
	}
	return 0
}

// HasEnough reports whether at least b.Amount of b.Type is stored.
func (s *Storage) HasEnough(b Bundle) bool {
	return s.GetCount(b.Type) >= b.Amount
}

// HasEnoughAll reports whether every bundle is covered at once.
// Bundles of the same type are summed.
func (s *Storage) HasEnoughAll(bundles []Bundle) bool {
	for _, b := range Sum(bundles) {
		if !s.HasEnough(b) {
			return false
		}
	}
	return true
}

// CanAdd reports whether b fits under capacity. Untracked types never fit.
func (s *Storage) CanAdd(b Bundle) bool {
	sl, ok := s.slots[b.Type]
	if !ok {
		return b.Amount <= 0
	}
	return sl.amount+b.Amount <= sl.capacity
}

// CanAddAll reports whether every bundle fits at once.
func (s *Storage) CanAddAll(bundles []Bundle) bool {
	for _, b := range Sum(bundles) {
		if !s.CanAdd(b) {
			return false
		}
	}
	return true
}

// AddResource stores b. The caller must have checked CanAdd.
func (s *Storage) AddResource(b Bundle) {
	invariant.Require(b.Amount >= 0, "add negative amount %d of %s", b.Amount, b.Type)
	invariant.Require(s.CanAdd(b), "add %s exceeds capacity %d (have %d)", b, s.GetCapacity(b.Type), s.GetCount(b.Type))
	if b.Amount == 0 {
		return
	}
	s.slots[b.Type].amount += b.Amount
}

// SubtractResource removes b. The caller must have checked HasEnough.
func (s *Storage) SubtractResource(b Bundle) {
	_, ok := s.slots[b.Type]
	invariant.Require(ok, "subtract untracked resource %s", b.Type)
	invariant.Require(b.Amount >= 0, "subtract negative amount %d of %s", b.Amount, b.Type)
	invariant.Require(s.HasEnough(b), "subtract %s, have %d", b, s.GetCount(b.Type))
	s.slots[b.Type].amount -= b.Amount
}

// SubtractAll removes every bundle, skipping entries with no positive
// amount. The caller must have checked HasEnoughAll.
func (s *Storage) SubtractAll(bundles []Bundle) {
	summed := Sum(bundles)
	invariant.Require(s.HasEnoughAll(summed), "subtract %s, not enough stored", Describe(bundles))
	for _, b := range summed {
		s.SubtractResource(b)
	}
}

// TransferResources moves bundles from s to dst. Either every bundle moves
// or nothing changes; the return value reports which.
func (s *Storage) TransferResources(dst *Storage, bundles []Bundle) bool {
	summed := Sum(bundles)
	if !s.HasEnoughAll(summed) || !dst.CanAddAll(summed) {
		return false
	}
	for _, b := range summed {
		s.SubtractResource(b)
		dst.AddResource(b)
	}
	return true
}

// Entries returns every tracked resource in the order it was first tracked.
func (s *Storage) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, t := range s.order {
		sl := s.slots[t]
		out = append(out, Entry{Type: t, Capacity: sl.capacity, Amount: sl.amount})
	}
	return out
}

// FoodValue returns the total food value held.
func (s *Storage) FoodValue() int {
	total := 0
	for _, t := range s.order {
		total += t.FoodValue * s.slots[t].amount
	}
	return total
}

// Spread grants bundles one unit of each type per pass, repeating until
// everything is granted or nothing more fits. It returns what could not be
// stored.
func (s *Storage) Spread(bundles []Bundle) []Bundle {
	pending := Sum(bundles)
	for {
		progressed := false
		for i := range pending {
			unit := Bundle{Type: pending[i].Type, Amount: 1}
			if pending[i].Amount <= 0 || !s.CanAdd(unit) {
				continue
			}
			s.AddResource(unit)
			pending[i].Amount--
			progressed = true
		}
		if !progressed {
			break
		}
	}

	var leftover []Bundle
	for _, b := range pending {
		if b.Amount > 0 {
			leftover = append(leftover, b)
		}
	}
	return leftover
}
