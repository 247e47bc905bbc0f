package ai

import (
	"fmt"

	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/registry"
	"github.com/talgya/fevered-world/internal/sim"
)

// Ctx is what a gamer brain's factors read.
type Ctx = *sim.FactionActions

// HomelessnessRate rises to 1 at seven homeless people.
func HomelessnessRate() DecisionFactor[Ctx] {
	return Factor[Ctx]{Name: "homelessness", Fn: func(ac Ctx) float64 {
		return clamp01(float64(ac.GetHomelessCount()) / 7)
	}}
}

// ResourceWant is the squared shortfall of t against want.
func ResourceWant(t *economy.ResourceType, want int) DecisionFactor[Ctx] {
	return Factor[Ctx]{Name: fmt.Sprintf("want %d %s", want, t.Name), Fn: func(ac Ctx) float64 {
		if want <= 0 {
			return 0
		}
		a := float64(want-ac.GetResourceStorage().GetCount(t)) / float64(want)
		if a < 0 {
			a = 0
		}
		return clamp01(a * a)
	}}
}

// ResourceNeed is 1 when need of t is stored, else 0.
func ResourceNeed(t *economy.ResourceType, need int) DecisionFactor[Ctx] {
	return Factor[Ctx]{Name: fmt.Sprintf("need %d %s", need, t.Name), Fn: func(ac Ctx) float64 {
		if ac.GetResourceStorage().HasEnough(economy.Bundle{Type: t, Amount: need}) {
			return 1
		}
		return 0
	}}
}

// CanAfford is 1 when b's requirements are stored.
func CanAfford(b *registry.BuildingType) DecisionFactor[Ctx] {
	return Factor[Ctx]{Name: "afford " + b.Name, Fn: func(ac Ctx) float64 {
		if ac.CanBuild(b) && len(ac.FreeTilesFor(b)) > 0 {
			return 1
		}
		return 0
	}}
}

// FreeWorkers rises to 1 at five unemployed people.
func FreeWorkers() DecisionFactor[Ctx] {
	return Factor[Ctx]{Name: "free workers", Fn: func(ac Ctx) float64 {
		return clamp01(float64(ac.GetUnemployedCount()) / 5)
	}}
}

// FoodWant is the squared shortfall of stored food against days of need.
func FoodWant(days float64) DecisionFactor[Ctx] {
	return Factor[Ctx]{Name: fmt.Sprintf("food for %.1f days", days), Fn: func(ac Ctx) float64 {
		stored, perDay := ac.GetFoodAndUsage()
		target := perDay * days
		if target <= 0 {
			return 0
		}
		a := clamp01((target - float64(stored)) / target)
		return a * a
	}}
}

// StoragePressure is the fill ratio of the fullest tracked resource,
// squared.
func StoragePressure() DecisionFactor[Ctx] {
	return Factor[Ctx]{Name: "storage pressure", Fn: func(ac Ctx) float64 {
		fullest := 0.0
		for _, e := range ac.GetResourceStorage().Entries() {
			if e.Capacity > 0 {
				fullest = max(fullest, float64(e.Amount)/float64(e.Capacity))
			}
		}
		return fullest * fullest
	}}
}

// Constant always returns v.
func Constant[C any](name string, v float64) DecisionFactor[C] {
	return Factor[C]{Name: name, Fn: func(C) float64 { return v }}
}
