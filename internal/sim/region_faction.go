package sim

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/invariant"
	"github.com/talgya/fevered-world/internal/population"
	"github.com/talgya/fevered-world/internal/registry"
	"github.com/talgya/fevered-world/internal/world"
)

// RegionFaction is a faction's presence in one region: its people, stores,
// buildings and jobs.
type RegionFaction struct {
	Faction *Faction
	Region  *Region
	reg     *registry.Registry

	resources  *economy.Storage
	homeless   *population.Pool
	unemployed *population.Pool
	Silver     int

	buildings      map[world.Vec2I]*Building
	jobs           []Job
	jobsByPosition map[world.Vec2I][]Job

	offers []*TradeOffer
	upkeep upkeep
	time   clock.TimeT

	failedContracts    int
	fulfilledContracts int
}

// NewRegionFaction seeds a faction's presence in region from the registry's
// start state and makes it the region's local faction.
func NewRegionFaction(f *Faction, region *Region, reg *registry.Registry) *RegionFaction {
	invariant.Require(f != nil && region != nil, "region faction needs a faction and a region")
	start := reg.Start
	rf := &RegionFaction{
		Faction:        f,
		Region:         region,
		reg:            reg,
		resources:      economy.NewStorage(),
		homeless:       population.NewPool(start.Homeless.Capacity, start.Homeless.Amount),
		unemployed:     population.NewPool(start.Unemployed.Capacity, start.Unemployed.Amount),
		Silver:         start.Silver,
		buildings:      make(map[world.Vec2I]*Building),
		jobsByPosition: make(map[world.Vec2I][]Job),
	}
	for _, t := range reg.Resources() {
		rf.resources.IncreaseCapacity(t, start.StorageCapacity)
	}
	if lost := rf.resources.Spread(start.Resources); len(lost) > 0 {
		slog.Warn("starting resources over capacity", "region", region.Name, "lost", economy.Describe(lost))
	}

	region.LocalFaction = rf
	f.regions = append(f.regions, rf)

	for _, p := range start.Buildings {
		if p.Building == nil || !region.CanPlaceBuilding(p.Building, p.Position) {
			slog.Warn("skipping prebuilt building", "region", region.Name, "building", p.Building, "pos", p.Position)
			continue
		}
		rf.PlacePrebuiltBuilding(p.Building, p.Position)
	}
	return rf
}

// Name is the display name, e.g. "Ashvale".
func (rf *RegionFaction) Name() string { return rf.Region.Name }

// Registry returns the asset registry this faction was built with.
func (rf *RegionFaction) Registry() *registry.Registry { return rf.reg }

// ResourceStorage returns the mutable storage; outside the simulation use
// FactionActions instead.
func (rf *RegionFaction) ResourceStorage() *economy.Storage { return rf.resources }

// Time returns the faction's clock.
func (rf *RegionFaction) Time() clock.TimeT { return rf.time }

// HomelessCount returns how many people have no home.
func (rf *RegionFaction) HomelessCount() int { return rf.homeless.Amount() }

// UnemployedCount returns how many people have no job.
func (rf *RegionFaction) UnemployedCount() int { return rf.unemployed.Amount() }

// HousedCount returns how many people live in buildings.
func (rf *RegionFaction) HousedCount() int {
	n := 0
	for _, b := range rf.buildings {
		n += b.residents.Amount()
	}
	return n
}

// EmployedCount returns how many people work a job.
func (rf *RegionFaction) EmployedCount() int {
	n := 0
	for _, j := range rf.jobs {
		n += j.Workers()
	}
	return n
}

// PopulationCount returns everyone, housed or not.
func (rf *RegionFaction) PopulationCount() int {
	return rf.homeless.Amount() + rf.HousedCount()
}

// Building returns the building at pos, if any.
func (rf *RegionFaction) Building(pos world.Vec2I) (*Building, bool) {
	b, ok := rf.buildings[pos]
	return b, ok
}

// Buildings returns every building, ordered by position.
func (rf *RegionFaction) Buildings() []*Building {
	out := make([]*Building, 0, len(rf.buildings))
	for _, b := range rf.buildings {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b *Building) int { return comparePos(a.position, b.position) })
	return out
}

// ── Jobs ────────────────────────────────────────────────────────────

// AddJob registers and starts a job that is tied to a tile but not to a
// map object.
func (rf *RegionFaction) AddJob(pos world.Vec2I, job Job) {
	rf.register(pos, job, nil)
}

// AddMapObjectJob registers and starts a job working mo.
func (rf *RegionFaction) AddMapObjectJob(pos world.Vec2I, job Job, mo MapObject) {
	invariant.Require(mo != nil, "map object job %q without a map object", job.Title())
	invariant.Require(mo.Position() == pos, "job %q at %s for map object at %s", job.Title(), pos, mo.Position())
	rf.register(pos, job, mo)
}

func (rf *RegionFaction) register(pos world.Vec2I, job Job, mo MapObject) {
	b := job.base()
	invariant.Require(b.state == jobCreated, "register job %q in state %s", job.Title(), b.state)
	invariant.Require(!slices.Contains(rf.jobsByPosition[pos], job), "job %q already registered at %s", job.Title(), pos)

	b.position = pos
	b.faction = rf
	invariant.Require(job.CanInitialise(rf, mo), "job %q cannot start at %s", job.Title(), pos)
	job.Initialise(rf, mo)

	rf.jobs = append(rf.jobs, job)
	rf.jobsByPosition[pos] = append(rf.jobsByPosition[pos], job)
	slog.Debug("job added", "region", rf.Name(), "job", job.Title(), "pos", pos)
}

// RemoveJob unemploys the job's workers, deinitialises it and forgets it.
func (rf *RegionFaction) RemoveJob(pos world.Vec2I, job Job) {
	invariant.Require(slices.Contains(rf.jobsByPosition[pos], job), "remove unregistered job %q at %s", job.Title(), pos)

	if n := job.Workers(); n > 0 {
		if room := rf.unemployed.RoomLeft(); room < n {
			rf.unemployed.IncreaseCapacity(n - room)
		}
		rf.UnemployWorkers(job, n)
	}
	job.Deinitialise(rf)

	rf.jobs = slices.DeleteFunc(rf.jobs, func(j Job) bool { return j == job })
	left := slices.DeleteFunc(rf.jobsByPosition[pos], func(j Job) bool { return j == job })
	if len(left) == 0 {
		delete(rf.jobsByPosition, pos)
	} else {
		rf.jobsByPosition[pos] = left
	}

	slog.Debug("job removed", "region", rf.Name(), "job", job.Title(), "pos", pos)
	rf.Faction.notify(func(o Observer) { o.JobRemoved(rf, job) })
}

// HasJob reports whether job is registered here.
func (rf *RegionFaction) HasJob(job Job) bool {
	return slices.Contains(rf.jobs, job)
}

// GetJobs returns the player-visible jobs at pos.
func (rf *RegionFaction) GetJobs(pos world.Vec2I) []Job {
	var out []Job
	for _, j := range rf.jobsByPosition[pos] {
		if !j.IsInternal() {
			out = append(out, j)
		}
	}
	return out
}

// Jobs returns every registered job, internal ones included, in registry order.
func (rf *RegionFaction) Jobs() []Job { return slices.Clone(rf.jobs) }

// CanEmployWorkers reports whether n unemployed people can join job
// (or, for negative n, leave it).
func (rf *RegionFaction) CanEmployWorkers(job Job, n int) bool {
	if !rf.HasJob(job) {
		return false
	}
	return rf.unemployed.CanTransfer(job.base().workers, n)
}

// EmployWorkers moves n people from unemployment into job.
func (rf *RegionFaction) EmployWorkers(job Job, n int) {
	invariant.Require(rf.CanEmployWorkers(job, n), "employ %d on %q (%d/%d, %d unemployed)",
		n, job.Title(), job.Workers(), job.MaxWorkers(), rf.unemployed.Amount())
	rf.unemployed.Transfer(job.base().workers, n)
}

// UnemployWorkers moves n workers of job back into unemployment.
func (rf *RegionFaction) UnemployWorkers(job Job, n int) {
	rf.EmployWorkers(job, -n)
}

// ── Buildings ───────────────────────────────────────────────────────

// CanBuild reports whether the requirements of t are in storage.
func (rf *RegionFaction) CanBuild(t *registry.BuildingType) bool {
	return rf.resources.HasEnoughAll(t.Requirements)
}

// CanPlaceBuilding reports whether t can be afforded and placed at pos.
func (rf *RegionFaction) CanPlaceBuilding(t *registry.BuildingType, pos world.Vec2I) bool {
	return rf.CanBuild(t) && rf.Region.CanPlaceBuilding(t, pos)
}

// PlaceBuildingConstructionSite places an unbuilt building and starts the
// jobs it needs.
func (rf *RegionFaction) PlaceBuildingConstructionSite(t *registry.BuildingType, pos world.Vec2I) *Building {
	invariant.Require(rf.CanPlaceBuilding(t, pos), "cannot place %s at %s", t.Name, pos)
	b := rf.addBuilding(t, pos)

	if t.TakesTimeToConstruct() || t.HasRequirements() {
		rf.AddMapObjectJob(pos, NewConstructBuildingJob(t.Requirements), b)
	}
	if b.IsConstructed() {
		rf.buildingConstructed(b)
	}
	if t.PopulationCapacity > 0 {
		rf.AddMapObjectJob(pos, NewAbsorbFromHomelessPopulationJob(), b)
	}
	return b
}

// PlacePrebuiltBuilding places a finished building without cost.
func (rf *RegionFaction) PlacePrebuiltBuilding(t *registry.BuildingType, pos world.Vec2I) *Building {
	invariant.Require(rf.Region.CanPlaceBuilding(t, pos), "cannot place prebuilt %s at %s", t.Name, pos)
	b := rf.addBuilding(t, pos)
	b.finishConstruction()
	if t.PopulationCapacity > 0 {
		rf.AddMapObjectJob(pos, NewAbsorbFromHomelessPopulationJob(), b)
	}
	return b
}

func (rf *RegionFaction) addBuilding(t *registry.BuildingType, pos world.Vec2I) *Building {
	b := newBuilding(t, pos, rf.Region.WorldPosition)
	rf.Region.addMapObject(b)
	rf.buildings[pos] = b
	b.onConstructed = rf.buildingConstructed
	return b
}

// buildingConstructed applies completion effects once per building.
func (rf *RegionFaction) buildingConstructed(b *Building) {
	for _, c := range b.Type.StorageCapacity {
		rf.resources.IncreaseCapacity(c.Type, c.Amount)
	}
	slog.Info("building constructed", "region", rf.Name(), "building", b.Type.Name, "pos", b.position)
	rf.Faction.notify(func(o Observer) { o.BuildingConstructed(rf, b) })
}

// demolish removes a building and every other job still working it.
func (rf *RegionFaction) demolish(b *Building) {
	pos := b.position
	for _, j := range slices.Clone(rf.jobsByPosition[pos]) {
		if j.base().Active() {
			rf.RemoveJob(pos, j)
		}
	}
	delete(rf.buildings, pos)
	rf.Region.removeMapObject(pos)
}

// Uproot removes an exhausted resource site and any jobs left on it.
func (rf *RegionFaction) Uproot(pos world.Vec2I) {
	mo, ok := rf.Region.MapObjectAt(pos)
	_, isSite := mo.(*ResourceSite)
	invariant.Require(ok && isSite, "uproot %s: no resource site", pos)
	for _, j := range slices.Clone(rf.jobsByPosition[pos]) {
		if j.base().Active() {
			rf.RemoveJob(pos, j)
		}
	}
	rf.Region.removeMapObject(pos)
	slog.Debug("resource site uprooted", "region", rf.Name(), "site", mo.Name(), "pos", pos)
}

// provide grants production through the spreading policy, reporting loss.
func (rf *RegionFaction) provide(bundles []economy.Bundle) {
	lost := rf.resources.Spread(bundles)
	if len(lost) == 0 {
		return
	}
	slog.Warn("storage full, production lost", "region", rf.Name(), "lost", economy.Describe(lost))
	rf.Faction.notify(func(o Observer) { o.ProductionLost(rf, lost) })
}

// ── Time ────────────────────────────────────────────────────────────

// PassTime advances every job once, then runs hourly upkeep for each hour
// boundary crossed.
func (rf *RegionFaction) PassTime(minutes clock.TimeT) {
	for _, j := range slices.Clone(rf.jobs) {
		// Skipped when an earlier job's completion removed it this pass.
		if !j.base().Active() {
			continue
		}
		j.PassTime(minutes)
		j.CheckDone(rf)
	}

	from := rf.time
	rf.time = rf.time.Add(minutes)
	for range clock.HoursCrossed(from, rf.time) {
		rf.hourly()
	}
}

// ── Party ───────────────────────────────────────────────────────────

func (rf *RegionFaction) PartyName() string { return rf.Name() }

func (rf *RegionFaction) ContractSuccess(doc *Document) {
	rf.fulfilledContracts++
	slog.Info("contract fulfilled", "region", rf.Name(), "doc", doc.Title)
}

func (rf *RegionFaction) ContractFailure(doc *Document, result FulfillResult) {
	rf.failedContracts++
	slog.Warn("contract failed", "region", rf.Name(), "doc", doc.Title, "result", result)
}

// FailedContracts returns how many contracts this faction failed.
func (rf *RegionFaction) FailedContracts() int { return rf.failedContracts }

func (rf *RegionFaction) String() string {
	return fmt.Sprintf("%s of %s", rf.Region.Name, rf.Faction.Name)
}

func comparePos(a, b world.Vec2I) int {
	if a.Y != b.Y {
		return a.Y - b.Y
	}
	return a.X - b.X
}
