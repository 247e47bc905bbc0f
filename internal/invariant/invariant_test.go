package invariant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/fevered-world/internal/invariant"
)

func TestRequirePassesWhenTrue(t *testing.T) {
	assert.NotPanics(t, func() { invariant.Require(true, "never") })
}

func TestRequirePanicsWithViolation(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		v, ok := r.(*invariant.Violation)
		require.True(t, ok)
		assert.Equal(t, "amount 3 over capacity 2", v.Msg)
		assert.Equal(t, "contract violation: amount 3 over capacity 2", v.Error())
	}()
	invariant.Require(false, "amount %d over capacity %d", 3, 2)
}
