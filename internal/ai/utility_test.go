package ai_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/fevered-world/internal/ai"
)

type counter struct{ calls int }

func (c *counter) factor(v float64) ai.DecisionFactor[*counter] {
	return ai.Factor[*counter]{Name: "counted", Fn: func(c *counter) float64 {
		c.calls++
		return v
	}}
}

func TestScoreIsProductOfFactors(t *testing.T) {
	c := &counter{}
	a := &ai.Action[*counter]{Factors: []ai.DecisionFactor[*counter]{c.factor(0.5), c.factor(0.4)}}

	assert.InDelta(t, 0.2, a.Score(c), 1e-9)
	assert.Equal(t, 2, c.calls)
}

func TestScoreStopsAtFirstZero(t *testing.T) {
	c := &counter{}
	a := &ai.Action[*counter]{Factors: []ai.DecisionFactor[*counter]{c.factor(0.9), c.factor(0), c.factor(1)}}

	assert.Equal(t, 0.0, a.Score(c))
	assert.Equal(t, 2, c.calls, "third factor never evaluated")

	neg := &ai.Action[*counter]{Factors: []ai.DecisionFactor[*counter]{c.factor(-1), c.factor(-1)}}
	assert.Equal(t, 0.0, neg.Score(c), "negative does not flip the sign")
}

func TestChooseActionFindsUniqueMaxInAnyOrder(t *testing.T) {
	actions := []*ai.Action[int]{
		{Name: "low", Factors: []ai.DecisionFactor[int]{ai.Constant[int]("c", 0.2)}},
		{Name: "high", Factors: []ai.DecisionFactor[int]{ai.Constant[int]("c", 0.9)}},
		{Name: "mid", Factors: []ai.DecisionFactor[int]{ai.Constant[int]("c", 0.5)}},
		{Name: "none", Factors: []ai.DecisionFactor[int]{ai.Constant[int]("c", 0)}},
	}

	for seed := int64(0); seed < 25; seed++ {
		best, score := ai.ChooseAction(0, actions, rand.New(rand.NewSource(seed)))
		assert.Equal(t, "high", best.Name)
		assert.InDelta(t, 0.9, score, 1e-9)
	}
}

func TestChooseActionIdlesWhenNothingApplies(t *testing.T) {
	ran := false
	actions := []*ai.Action[int]{{
		Name:    "never",
		Factors: []ai.DecisionFactor[int]{ai.Constant[int]("c", 0)},
		Effect:  func(int) error { ran = true; return nil },
	}}

	best, score := ai.ChooseAction(0, actions, rand.New(rand.NewSource(1)))

	assert.Equal(t, ai.IdleName, best.Name)
	assert.Equal(t, 0.0, score)
	assert.NoError(t, best.Execute(0))
	assert.False(t, ran)

	best, _ = ai.ChooseAction[int](0, nil, rand.New(rand.NewSource(1)))
	assert.Equal(t, ai.IdleName, best.Name)
}

func TestChooseActionTieGoesToATiedAction(t *testing.T) {
	actions := []*ai.Action[int]{
		{Name: "a", Factors: []ai.DecisionFactor[int]{ai.Constant[int]("c", 0.5)}},
		{Name: "b", Factors: []ai.DecisionFactor[int]{ai.Constant[int]("c", 0.5)}},
		{Name: "c", Factors: []ai.DecisionFactor[int]{ai.Constant[int]("c", 0.1)}},
	}
	seen := map[string]bool{}
	for seed := int64(0); seed < 40; seed++ {
		best, _ := ai.ChooseAction(0, actions, rand.New(rand.NewSource(seed)))
		seen[best.Name] = true
	}

	assert.False(t, seen["c"])
	assert.True(t, seen["a"] && seen["b"], "shuffling spreads ties")
}
