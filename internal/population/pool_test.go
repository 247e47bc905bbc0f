package population_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/fevered-world/internal/invariant"
	"github.com/talgya/fevered-world/internal/population"
)

func TestTransferMovesPeople(t *testing.T) {
	// Arrange
	unemployed := population.NewPool(100, 10)
	workers := population.NewPool(5, 0)

	// Act
	unemployed.Transfer(workers, 3)

	// Assert
	assert.Equal(t, 7, unemployed.Amount())
	assert.Equal(t, 3, workers.Amount())
	assert.Equal(t, 2, workers.RoomLeft())
}

func TestNegativeTransferMovesBack(t *testing.T) {
	unemployed := population.NewPool(100, 7)
	workers := population.NewPool(5, 3)

	assert.True(t, unemployed.CanTransfer(workers, -3))
	assert.False(t, unemployed.CanTransfer(workers, -4))

	unemployed.Transfer(workers, -3)
	assert.Equal(t, 10, unemployed.Amount())
	assert.Equal(t, 0, workers.Amount())
}

func TestCanTransferChecksBothSides(t *testing.T) {
	src := population.NewPool(100, 10)
	dst := population.NewPool(5, 4)

	assert.False(t, src.CanTransfer(dst, 2), "target has room for one")
	assert.True(t, src.CanTransfer(dst, 1))
	assert.False(t, population.NewPool(10, 0).CanTransfer(dst, 1), "source is empty")

	full := population.NewPool(10, 10)
	assert.False(t, full.CanTransfer(dst, -1), "source has no room to take back")
	assert.False(t, src.CanTransfer(src, 1), "self transfer")
	assert.False(t, src.CanTransfer(nil, 1))
}

func TestRejectedTransferLeavesBothUntouched(t *testing.T) {
	src := population.NewPool(100, 10)
	dst := population.NewPool(5, 4)

	assert.PanicsWithValue(t, &invariant.Violation{Msg: "transfer 2 from 10/100 to 4/5"}, func() {
		src.Transfer(dst, 2)
	})
	assert.Equal(t, 10, src.Amount())
	assert.Equal(t, 4, dst.Amount())
}

func TestManifestAndVanish(t *testing.T) {
	p := population.NewPool(3, 1)

	p.Manifest(2)
	assert.Equal(t, 3, p.Amount())
	assert.Panics(t, func() { p.Manifest(1) })

	p.Vanish(3)
	assert.Equal(t, 0, p.Amount())
	assert.Panics(t, func() { p.Vanish(1) })
}

func TestNewPoolValidatesBounds(t *testing.T) {
	assert.Panics(t, func() { population.NewPool(5, 6) })
	assert.Panics(t, func() { population.NewPool(-1, 0) })
}
