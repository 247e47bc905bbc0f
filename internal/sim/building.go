package sim

import (
	"fmt"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/invariant"
	"github.com/talgya/fevered-world/internal/population"
	"github.com/talgya/fevered-world/internal/registry"
	"github.com/talgya/fevered-world/internal/world"
)

// Builder is whatever turns wall-clock minutes into construction work.
type Builder interface {
	WorkTime(minutes clock.TimeT) float64
}

// Building is a placed building, constructed or not.
type Building struct {
	placement
	Type *registry.BuildingType

	residents       *population.Pool
	progress        float64 // Work minutes put in so far
	constructionJob *ConstructBuildingJob
	onConstructed   func(*Building)
}

func newBuilding(t *registry.BuildingType, pos, origin world.Vec2I) *Building {
	return &Building{
		placement: placement{position: pos, origin: origin},
		Type:      t,
		residents: population.NewPool(t.PopulationCapacity, 0),
	}
}

func (b *Building) Name() string { return b.Type.Name }

// IsConstructed reports whether all construction work has been done.
func (b *Building) IsConstructed() bool {
	return b.progress >= b.Type.MinutesToConstruct()
}

// ProgressBuild adds the builder's work for the given minutes. Calling it on
// a constructed building is a contract violation.
func (b *Building) ProgressBuild(minutes clock.TimeT, builder Builder) {
	invariant.Require(!b.IsConstructed(), "progress build on constructed %s at %s", b.Type.Name, b.position)
	b.progress += builder.WorkTime(minutes)
	if b.IsConstructed() {
		b.progress = b.Type.MinutesToConstruct()
		b.constructed()
	}
}

// finishConstruction completes the building without work.
func (b *Building) finishConstruction() {
	if b.IsConstructed() {
		return
	}
	b.progress = b.Type.MinutesToConstruct()
	b.constructed()
}

func (b *Building) constructed() {
	if b.onConstructed != nil {
		b.onConstructed(b)
	}
}

// BuildProgress returns construction progress in [0, 1].
func (b *Building) BuildProgress() float64 {
	if !b.Type.TakesTimeToConstruct() {
		return 1
	}
	return (b.progress / 60) / b.Type.HoursToConstruct
}

// ConstructionJob returns the running construction job, if any.
func (b *Building) ConstructionJob() *ConstructBuildingJob { return b.constructionJob }

// Residents returns how many people live here.
func (b *Building) Residents() int { return b.residents.Amount() }

// ResidentCapacity returns how many people can live here.
func (b *Building) ResidentCapacity() int { return b.residents.Capacity() }

// PassTime does nothing: buildings change only through their jobs.
func (b *Building) PassTime(minutes clock.TimeT) {}

// AvailableJobs lists the crafting jobs a constructed building offers.
func (b *Building) AvailableJobs() []JobBox {
	if !b.IsConstructed() {
		return nil
	}
	var boxes []JobBox
	for _, recipe := range b.Type.Crafts {
		boxes = append(boxes, JobBox{
			Title:       fmt.Sprintf("%s %s", title(recipe.Process), recipe.Product),
			Description: "Make " + recipe.Product + " in the " + b.Type.Name,
			MaxWorkers:  recipe.MaxWorkers,
			New:         func() Job { return NewCraftJob(recipe) },
		})
	}
	return boxes
}

func (b *Building) String() string {
	return fmt.Sprintf("%s at %s", b.Type.Name, b.position)
}
