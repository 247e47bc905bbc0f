// Package ai picks what computer-run factions and nature do next by
// scoring candidate actions.
package ai

import (
	"fmt"
	"math/rand"
)

// DecisionFactor scores how much an action makes sense in ctx, nominally
// in [0, 1]. A score of zero or less rules the action out.
type DecisionFactor[C any] interface {
	Score(ctx C) float64
	fmt.Stringer
}

// Factor adapts a named function to DecisionFactor.
type Factor[C any] struct {
	Name string
	Fn   func(ctx C) float64
}

func (f Factor[C]) Score(ctx C) float64 { return f.Fn(ctx) }
func (f Factor[C]) String() string      { return f.Name }

// Action is a candidate move with the factors that rate it.
type Action[C any] struct {
	Name    string
	Factors []DecisionFactor[C]
	Effect  func(ctx C) error // nil = do nothing
}

// Score multiplies the factors, stopping at the first that is not positive.
func (a *Action[C]) Score(ctx C) float64 {
	score := 1.0
	for _, f := range a.Factors {
		s := f.Score(ctx)
		if s <= 0 {
			return 0
		}
		score *= s
	}
	return score
}

// Execute runs the effect.
func (a *Action[C]) Execute(ctx C) error {
	if a.Effect == nil {
		return nil
	}
	return a.Effect(ctx)
}

func (a *Action[C]) String() string { return a.Name }

// IdleName names the action chosen when nothing scores above zero.
const IdleName = "idle"

// ChooseAction evaluates actions in a shuffled order and returns the first
// one with the strictly highest score. With no positive score it returns
// an idle action scoring 0.
func ChooseAction[C any](ctx C, actions []*Action[C], rng *rand.Rand) (*Action[C], float64) {
	best, bestScore := &Action[C]{Name: IdleName}, 0.0
	for _, i := range rng.Perm(len(actions)) {
		a := actions[i]
		if s := a.Score(ctx); s > bestScore {
			best, bestScore = a, s
		}
	}
	return best, bestScore
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
