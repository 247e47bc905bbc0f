// Jobs that take from nature.
package sim

import (
	"fmt"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/registry"
)

const (
	gatherMaxWorkers = 5
	gatherExponent   = 0.7
	fishExponent     = 0.7
)

// GatherResourceJob harvests bunches from a resource site's wells.
type GatherResourceJob struct {
	jobBase
	description string
	wellIndex   int // -1 = every well
	site        *ResourceSite
	timeSpent   []float64 // Work minutes per well toward its next bunch
	gathered    int
}

// NewGatherResourceJob gathers from every well of a site.
func NewGatherResourceJob(description string) *GatherResourceJob {
	return &GatherResourceJob{
		jobBase:     newJobBase("Gather "+description, gatherMaxWorkers),
		description: description,
		wellIndex:   -1,
	}
}

// NewGatherWellJob gathers from a single well of a site.
func NewGatherWellJob(description string, well int) *GatherResourceJob {
	j := NewGatherResourceJob(description)
	j.wellIndex = well
	return j
}

func (j *GatherResourceJob) Site() *ResourceSite { return j.site }

func (j *GatherResourceJob) MapObject() MapObject {
	if j.site == nil {
		return nil
	}
	return j.site
}

func (j *GatherResourceJob) WorkTime(minutes clock.TimeT) float64 {
	return workTime(minutes, j.Workers(), gatherExponent)
}

// targets returns the indexes of the wells this job works.
func (j *GatherResourceJob) targets() []int {
	if j.wellIndex >= 0 {
		return []int{j.wellIndex}
	}
	idx := make([]int, len(j.site.Wells))
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func (j *GatherResourceJob) CanInitialise(rf *RegionFaction, mo MapObject) bool {
	s, ok := mo.(*ResourceSite)
	if !ok {
		return false
	}
	return j.wellIndex < len(s.Wells)
}

func (j *GatherResourceJob) Initialise(rf *RegionFaction, mo MapObject) {
	j.markInitialised()
	j.site = mo.(*ResourceSite)
	j.timeSpent = make([]float64, len(j.site.Wells))
}

// PassTime spends each well's accumulated work on whole bunches while the
// well has them and storage has room.
func (j *GatherResourceJob) PassTime(minutes clock.TimeT) {
	work := j.WorkTime(minutes)
	storage := j.faction.resources
	var grants []economy.Bundle
	pending := make(map[*economy.ResourceType]int)

	for _, i := range j.targets() {
		w := j.site.Wells[i]
		j.timeSpent[i] += work
		for j.timeSpent[i] >= w.MinutesPerBunch() && w.HasBunches() &&
			storage.CanAdd(economy.Bundle{Type: w.Resource(), Amount: pending[w.Resource()] + w.BunchSize()}) {
			w.Deplete()
			j.timeSpent[i] -= w.MinutesPerBunch()
			pending[w.Resource()] += w.BunchSize()
			grants = append(grants, w.Bunch())
			j.gathered += w.BunchSize()
		}
		if j.timeSpent[i] > w.MinutesPerBunch() {
			j.timeSpent[i] = w.MinutesPerBunch()
		}
	}

	if len(grants) > 0 {
		j.faction.provide(grants)
	}
}

// CheckDone removes the job once its wells are empty and uproots the site
// once every well is.
func (j *GatherResourceJob) CheckDone(rf *RegionFaction) {
	for _, i := range j.targets() {
		if j.site.Wells[i].HasBunches() {
			return
		}
	}
	pos := j.position
	rf.RemoveJob(pos, j)
	if j.site.IsDepleted() {
		rf.Uproot(pos)
	}
}

func (j *GatherResourceJob) Deinitialise(rf *RegionFaction) { j.markRemoved() }

// Progress returns the share of the targeted bunches already taken.
func (j *GatherResourceJob) Progress() float64 {
	if j.site == nil {
		return 0
	}
	initial, left := 0, 0
	for _, i := range j.targets() {
		initial += j.site.Wells[i].InitialBunches()
		left += j.site.Wells[i].Bunches()
	}
	if initial == 0 {
		return 1
	}
	p := 1 - float64(left)/float64(initial)
	if p < 0 {
		return 0
	}
	return p
}

func (j *GatherResourceJob) ProductionDescription() string { return j.description }

func (j *GatherResourceJob) StatusDescription() string {
	if j.Workers() == 0 {
		return "no gatherers"
	}
	return fmt.Sprintf("%d %s gathered", j.gathered, j.description)
}

// FishByHandJob catches fish from the shore without any building.
type FishByHandJob struct {
	jobBase
	def     *registry.FishingDef
	residue float64
	caught  int
}

// NewFishByHandJob returns a fishing job.
func NewFishByHandJob(def *registry.FishingDef) *FishByHandJob {
	return &FishByHandJob{
		jobBase: newJobBase("Fish by hand", def.MaxWorkers),
		def:     def,
	}
}

func (j *FishByHandJob) WorkTime(minutes clock.TimeT) float64 {
	return workTime(minutes, j.Workers(), fishExponent)
}

// CanInitialise requires a shore tile and no map object.
func (j *FishByHandJob) CanInitialise(rf *RegionFaction, mo MapObject) bool {
	return mo == nil && rf.Region.IsShore(j.position)
}

func (j *FishByHandJob) Initialise(rf *RegionFaction, mo MapObject) {
	j.markInitialised()
	j.residue = 0
}

func (j *FishByHandJob) PassTime(minutes clock.TimeT) {
	storage := j.faction.resources
	catch := economy.Bundle{Type: j.def.Resource, Amount: j.def.Yield}
	j.residue += j.WorkTime(minutes)
	for j.residue >= j.def.MinutesPerCatch && storage.CanAdd(catch) {
		storage.AddResource(catch)
		j.residue -= j.def.MinutesPerCatch
		j.caught += catch.Amount
	}
	if j.residue > j.def.MinutesPerCatch {
		j.residue = j.def.MinutesPerCatch
	}
}

func (j *FishByHandJob) CheckDone(rf *RegionFaction) {}

func (j *FishByHandJob) Deinitialise(rf *RegionFaction) { j.markRemoved() }

func (j *FishByHandJob) Progress() float64 { return -1 }

func (j *FishByHandJob) ProductionDescription() string { return j.def.Resource.Name }

func (j *FishByHandJob) StatusDescription() string {
	return fmt.Sprintf("%d %s caught", j.caught, j.def.Resource.Name)
}
