// Package economy provides resource types, bundles and capacity-bounded storage.
package economy

import (
	"fmt"
	"strings"
)

// ResourceType is a registered kind of good. Identity is by pointer; the
// registry hands out exactly one value per id.
type ResourceType struct {
	ID        string // snake_case registry id, e.g. "logs"
	Name      string // Display name
	FoodValue int    // Hunger satisfied per unit eaten; 0 = inedible
}

// Edible reports whether the resource can be eaten.
func (r *ResourceType) Edible() bool { return r.FoodValue > 0 }

func (r *ResourceType) String() string { return r.Name }

// Bundle is an amount of one resource type.
type Bundle struct {
	Type   *ResourceType `json:"type"`
	Amount int           `json:"amount"`
}

// Multiply returns the bundle scaled by n.
func (b Bundle) Multiply(n int) Bundle {
	return Bundle{Type: b.Type, Amount: b.Amount * n}
}

func (b Bundle) String() string {
	if b.Type == nil {
		return fmt.Sprintf("%d ?", b.Amount)
	}
	return fmt.Sprintf("%d %s", b.Amount, b.Type.Name)
}

// Describe renders a bundle list, e.g. "9 Logs, 2 Rock".
func Describe(bundles []Bundle) string {
	if len(bundles) == 0 {
		return "nothing"
	}
	parts := make([]string, len(bundles))
	for i, b := range bundles {
		parts[i] = b.String()
	}
	return strings.Join(parts, ", ")
}

// Sum merges bundles of the same type, keeping first-seen order. Entries
// with no positive amount are dropped.
func Sum(bundles []Bundle) []Bundle {
	var out []Bundle
	index := make(map[*ResourceType]int, len(bundles))
	for _, b := range bundles {
		if b.Amount <= 0 {
			continue
		}
		if i, ok := index[b.Type]; ok {
			out[i].Amount += b.Amount
			continue
		}
		index[b.Type] = len(out)
		out = append(out, b)
	}
	return out
}
