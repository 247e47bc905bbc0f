// Jobs that run at a building.
package sim

import (
	"fmt"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/population"
	"github.com/talgya/fevered-world/internal/registry"
)

const (
	constructMaxWorkers = 35
	constructExponent   = 0.7
	craftExponent       = 0.5
	minutesPerResident  = 6 // Absorbing one homeless person into housing
)

// ConstructBuildingJob consumes a building's requirements up front and
// turns worker time into construction progress.
type ConstructBuildingJob struct {
	jobBase
	requirements []economy.Bundle
	building     *Building
}

// NewConstructBuildingJob returns a construction job for the given requirements.
func NewConstructBuildingJob(requirements []economy.Bundle) *ConstructBuildingJob {
	return &ConstructBuildingJob{
		jobBase:      newJobBase("Construct building", constructMaxWorkers),
		requirements: requirements,
	}
}

func (j *ConstructBuildingJob) MapObject() MapObject {
	if j.building == nil {
		return nil
	}
	return j.building
}

func (j *ConstructBuildingJob) Building() *Building { return j.building }

func (j *ConstructBuildingJob) WorkTime(minutes clock.TimeT) float64 {
	return workTime(minutes, j.Workers(), constructExponent)
}

// CanInitialise requires a building and enough stored materials.
func (j *ConstructBuildingJob) CanInitialise(rf *RegionFaction, mo MapObject) bool {
	b, ok := mo.(*Building)
	if !ok || b.constructionJob != nil {
		return false
	}
	return rf.resources.HasEnoughAll(j.requirements)
}

// Initialise consumes the requirements.
func (j *ConstructBuildingJob) Initialise(rf *RegionFaction, mo MapObject) {
	j.markInitialised()
	j.building = mo.(*Building)
	j.title = "Construct " + j.building.Type.Name
	j.building.constructionJob = j
	rf.resources.SubtractAll(j.requirements)
}

func (j *ConstructBuildingJob) PassTime(minutes clock.TimeT) {
	if j.building.IsConstructed() {
		return
	}
	j.building.ProgressBuild(minutes, j)
}

func (j *ConstructBuildingJob) CheckDone(rf *RegionFaction) {
	if j.building.IsConstructed() {
		rf.RemoveJob(j.position, j)
	}
}

// Deinitialise refunds the requirements and removes the building when it
// was never finished. Finished buildings keep them as sunk cost.
func (j *ConstructBuildingJob) Deinitialise(rf *RegionFaction) {
	j.markRemoved()
	j.building.constructionJob = nil
	if j.building.IsConstructed() {
		return
	}
	rf.provide(j.requirements)
	rf.demolish(j.building)
}

func (j *ConstructBuildingJob) Progress() float64 {
	if j.building == nil {
		return 0
	}
	return j.building.BuildProgress()
}

func (j *ConstructBuildingJob) ProductionDescription() string {
	if j.building == nil {
		return "construction"
	}
	return "construction of a " + j.building.Type.Name
}

func (j *ConstructBuildingJob) StatusDescription() string {
	if j.Workers() == 0 {
		return "waiting for builders"
	}
	return fmt.Sprintf("%.0f%% built", j.Progress()*100)
}

// AbsorbFromHomelessPopulationJob moves homeless people into a house,
// one every few minutes, once it is built.
type AbsorbFromHomelessPopulationJob struct {
	jobBase
	building  *Building
	homeless  *population.Pool
	remainder float64
	Paused    bool
}

// NewAbsorbFromHomelessPopulationJob returns the internal housing job.
func NewAbsorbFromHomelessPopulationJob() *AbsorbFromHomelessPopulationJob {
	return &AbsorbFromHomelessPopulationJob{jobBase: newJobBase("Move in", 0)}
}

func (j *AbsorbFromHomelessPopulationJob) IsInternal() bool { return true }

func (j *AbsorbFromHomelessPopulationJob) MapObject() MapObject {
	if j.building == nil {
		return nil
	}
	return j.building
}

func (j *AbsorbFromHomelessPopulationJob) WorkTime(minutes clock.TimeT) float64 {
	return float64(minutes)
}

func (j *AbsorbFromHomelessPopulationJob) CanInitialise(rf *RegionFaction, mo MapObject) bool {
	b, ok := mo.(*Building)
	return ok && b.Type.PopulationCapacity > 0
}

func (j *AbsorbFromHomelessPopulationJob) Initialise(rf *RegionFaction, mo MapObject) {
	j.markInitialised()
	j.building = mo.(*Building)
	j.homeless = rf.homeless
	j.title = "Move into " + j.building.Type.Name
}

func (j *AbsorbFromHomelessPopulationJob) PassTime(minutes clock.TimeT) {
	if j.Paused || !j.building.IsConstructed() || j.homeless.Amount() == 0 {
		j.remainder = 0
		return
	}
	t := j.remainder + float64(minutes)
	for t >= minutesPerResident && j.homeless.CanTransfer(j.building.residents, 1) {
		j.homeless.Transfer(j.building.residents, 1)
		t -= minutesPerResident
	}
	if t >= minutesPerResident {
		// House full or nobody left.
		t = 0
	}
	j.remainder = t
}

func (j *AbsorbFromHomelessPopulationJob) CheckDone(rf *RegionFaction) {}

// Deinitialise puts the residents back on the street.
func (j *AbsorbFromHomelessPopulationJob) Deinitialise(rf *RegionFaction) {
	j.markRemoved()
	n := j.building.residents.Amount()
	if n == 0 {
		return
	}
	if room := rf.homeless.RoomLeft(); room < n {
		rf.homeless.IncreaseCapacity(n - room)
	}
	j.building.residents.Transfer(rf.homeless, n)
}

func (j *AbsorbFromHomelessPopulationJob) Progress() float64 {
	if j.building == nil || j.building.ResidentCapacity() == 0 {
		return 0
	}
	return float64(j.building.Residents()) / float64(j.building.ResidentCapacity())
}

func (j *AbsorbFromHomelessPopulationJob) ProductionDescription() string { return "housing" }

func (j *AbsorbFromHomelessPopulationJob) StatusDescription() string {
	if j.Paused {
		return "paused"
	}
	return fmt.Sprintf("%d/%d residents", j.building.Residents(), j.building.ResidentCapacity())
}

// CraftJob turns recipe inputs into outputs inside a constructed building.
type CraftJob struct {
	jobBase
	recipe   *registry.CraftRecipe
	building *Building
	residue  float64
	blocked  bool
	made     int
}

// NewCraftJob returns a crafting job for recipe.
func NewCraftJob(recipe *registry.CraftRecipe) *CraftJob {
	return &CraftJob{
		jobBase: newJobBase(title(recipe.Process)+" "+recipe.Product, recipe.MaxWorkers),
		recipe:  recipe,
	}
}

func (j *CraftJob) Recipe() *registry.CraftRecipe { return j.recipe }

func (j *CraftJob) MapObject() MapObject {
	if j.building == nil {
		return nil
	}
	return j.building
}

func (j *CraftJob) WorkTime(minutes clock.TimeT) float64 {
	return workTime(minutes, j.Workers(), craftExponent)
}

// CanInitialise requires a constructed building that offers the recipe.
func (j *CraftJob) CanInitialise(rf *RegionFaction, mo MapObject) bool {
	b, ok := mo.(*Building)
	if !ok || !b.IsConstructed() {
		return false
	}
	for _, r := range b.Type.Crafts {
		if r == j.recipe {
			return true
		}
	}
	return false
}

func (j *CraftJob) Initialise(rf *RegionFaction, mo MapObject) {
	j.markInitialised()
	j.building = mo.(*Building)
	j.residue = 0
}

// PassTime runs whole batches while inputs are stored and outputs fit.
// While blocked the residue holds at most one batch of work.
func (j *CraftJob) PassTime(minutes clock.TimeT) {
	storage := j.faction.resources
	j.residue += j.WorkTime(minutes)
	j.blocked = false
	for j.residue >= j.recipe.Minutes {
		if !storage.HasEnoughAll(j.recipe.Inputs) || !storage.CanAddAll(j.recipe.Outputs) {
			j.blocked = true
			j.residue = j.recipe.Minutes
			return
		}
		storage.SubtractAll(j.recipe.Inputs)
		j.faction.provide(j.recipe.Outputs)
		j.residue -= j.recipe.Minutes
		j.made++
	}
}

func (j *CraftJob) CheckDone(rf *RegionFaction) {}

func (j *CraftJob) Deinitialise(rf *RegionFaction) { j.markRemoved() }

// Progress returns how far the current batch is.
func (j *CraftJob) Progress() float64 { return j.residue / j.recipe.Minutes }

func (j *CraftJob) ProductionDescription() string {
	return fmt.Sprintf("%s from %s", economy.Describe(j.recipe.Outputs), economy.Describe(j.recipe.Inputs))
}

func (j *CraftJob) StatusDescription() string {
	switch {
	case j.blocked:
		return "waiting for inputs or storage room"
	case j.Workers() == 0:
		return "no workers"
	default:
		return fmt.Sprintf("%d batches made", j.made)
	}
}
