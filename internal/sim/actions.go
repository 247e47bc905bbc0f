// Command and query façade over one region faction.
package sim

import (
	"errors"
	"fmt"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/registry"
	"github.com/talgya/fevered-world/internal/world"
)

var (
	ErrCannotBuild   = errors.New("not enough resources to build")
	ErrCannotPlace   = errors.New("building cannot be placed there")
	ErrNotOwnJob     = errors.New("job does not belong to this faction")
	ErrWorkers       = errors.New("worker change not possible")
	ErrJobRejected   = errors.New("job cannot start there")
	ErrNoMarketplace = errors.New("no constructed marketplace")
	ErrNoSuchObject  = errors.New("no map object there")
	ErrTradeRejected = errors.New("trade not possible")
	ErrNotInRegion   = errors.New("tile is not in this region")
	ErrNothingToFish = errors.New("fishing is not configured")
)

// FactionActions is how players and AIs read and change a region
// faction. Every mutation re-checks its preconditions and reports failure
// as an error.
type FactionActions struct {
	rf *RegionFaction
}

// NewFactionActions returns the façade for rf.
func NewFactionActions(rf *RegionFaction) *FactionActions {
	return &FactionActions{rf: rf}
}

// ── Queries ─────────────────────────────────────────────────────────

func (a *FactionActions) Region() *Region                    { return a.rf.Region }
func (a *FactionActions) Faction() *RegionFaction            { return a.rf }
func (a *FactionActions) Registry() *registry.Registry       { return a.rf.reg }
func (a *FactionActions) GetResourceStorage() economy.Reader { return a.rf.resources }
func (a *FactionActions) GetTime() clock.TimeT               { return a.rf.time }
func (a *FactionActions) GetHomelessCount() int              { return a.rf.homeless.Amount() }
func (a *FactionActions) GetUnemployedCount() int            { return a.rf.unemployed.Amount() }
func (a *FactionActions) GetPopulationCount() int            { return a.rf.PopulationCount() }
func (a *FactionActions) GetHomelessRoom() int               { return a.rf.homeless.RoomLeft() }
func (a *FactionActions) GetSilver() int                     { return a.rf.Silver }
func (a *FactionActions) GetBriefcase() *Briefcase           { return a.rf.Faction.Briefcase }
func (a *FactionActions) GetMapObjects() []MapObject         { return a.rf.Region.MapObjects() }
func (a *FactionActions) GetJobs() []Job                     { return a.rf.Jobs() }

// GetBuildingTypes lists every building type in the registry.
func (a *FactionActions) GetBuildingTypes() []*registry.BuildingType {
	return a.rf.reg.Buildings()
}

// GetFoodAndUsage returns the stored food value and the daily need.
func (a *FactionActions) GetFoodAndUsage() (int, float64) {
	return a.rf.GetFoodAndUsage()
}

// CanBuild reports whether the faction can afford t.
func (a *FactionActions) CanBuild(t *registry.BuildingType) bool {
	return t != nil && a.rf.CanBuild(t)
}

// CanPlaceBuilding reports whether t can be afforded and placed at pos.
func (a *FactionActions) CanPlaceBuilding(t *registry.BuildingType, pos world.Vec2I) bool {
	return t != nil && a.rf.CanPlaceBuilding(t, pos)
}

// GetMapObjectJobs returns the visible jobs at mo's tile.
func (a *FactionActions) GetMapObjectJobs(mo MapObject) []Job {
	return a.rf.GetJobs(mo.Position())
}

// GetJobsAt returns the visible jobs at pos.
func (a *FactionActions) GetJobsAt(pos world.Vec2I) []Job {
	return a.rf.GetJobs(pos)
}

// FreeTilesFor returns the tiles where t could stand, ignoring cost.
func (a *FactionActions) FreeTilesFor(t *registry.BuildingType) []world.Vec2I {
	var out []world.Vec2I
	for _, pos := range a.rf.Region.Tiles() {
		if a.rf.Region.CanPlaceBuilding(t, pos) {
			out = append(out, pos)
		}
	}
	return out
}

// FreeShoreTiles returns shore tiles with no map object and no job.
func (a *FactionActions) FreeShoreTiles() []world.Vec2I {
	var out []world.Vec2I
	for _, pos := range a.rf.Region.Tiles() {
		if a.rf.Region.IsShore(pos) && !a.rf.Region.HasMapObject(pos) && len(a.rf.jobsByPosition[pos]) == 0 {
			out = append(out, pos)
		}
	}
	return out
}

// HasMarketplace reports whether a constructed marketplace stands here.
func (a *FactionActions) HasMarketplace() bool {
	for _, b := range a.rf.buildings {
		if b.Type.Special == registry.SpecialMarketplace && b.IsConstructed() {
			return true
		}
	}
	return false
}

// ── Mutations ───────────────────────────────────────────────────────

// PlaceBuilding places a construction site for t at pos.
func (a *FactionActions) PlaceBuilding(t *registry.BuildingType, pos world.Vec2I) (*Building, error) {
	if t == nil {
		return nil, fmt.Errorf("place building: %w", ErrCannotPlace)
	}
	if !a.rf.CanBuild(t) {
		return nil, fmt.Errorf("place %s: %w", t.Name, ErrCannotBuild)
	}
	if !a.rf.Region.CanPlaceBuilding(t, pos) {
		return nil, fmt.Errorf("place %s at %s: %w", t.Name, pos, ErrCannotPlace)
	}
	return a.rf.PlaceBuildingConstructionSite(t, pos), nil
}

// AddJob unboxes box and starts it on mo.
func (a *FactionActions) AddJob(mo MapObject, box JobBox) (Job, error) {
	if mo == nil {
		return nil, fmt.Errorf("add %s: %w", box.Title, ErrNoSuchObject)
	}
	cur, ok := a.rf.Region.MapObjectAt(mo.Position())
	if !ok || cur != mo {
		return nil, fmt.Errorf("add %s at %s: %w", box.Title, mo.Position(), ErrNoSuchObject)
	}
	job := box.Unbox()
	job.base().position = mo.Position()
	if !job.CanInitialise(a.rf, mo) {
		return nil, fmt.Errorf("add %s at %s: %w", box.Title, mo.Position(), ErrJobRejected)
	}
	a.rf.AddMapObjectJob(mo.Position(), job, mo)
	return job, nil
}

// AddFishingJob starts fishing by hand on a free shore tile.
func (a *FactionActions) AddFishingJob(pos world.Vec2I) (Job, error) {
	if a.rf.reg.Fishing == nil {
		return nil, ErrNothingToFish
	}
	if _, ok := a.rf.Region.Tile(pos); !ok {
		return nil, fmt.Errorf("fish at %s: %w", pos, ErrNotInRegion)
	}
	job := NewFishByHandJob(a.rf.reg.Fishing)
	job.position = pos
	if a.rf.Region.HasMapObject(pos) || !job.CanInitialise(a.rf, nil) {
		return nil, fmt.Errorf("fish at %s: %w", pos, ErrJobRejected)
	}
	a.rf.AddJob(pos, job)
	return job, nil
}

// RemoveJob stops job, returning its workers.
func (a *FactionActions) RemoveJob(job Job) error {
	if job == nil || !a.rf.HasJob(job) {
		return ErrNotOwnJob
	}
	a.rf.RemoveJob(job.Position(), job)
	return nil
}

// ChangeJobWorkerCount employs delta more workers on job (or releases
// them when delta is negative).
func (a *FactionActions) ChangeJobWorkerCount(job Job, delta int) error {
	if job == nil || !a.rf.HasJob(job) {
		return ErrNotOwnJob
	}
	if delta == 0 {
		return nil
	}
	if !a.rf.CanEmployWorkers(job, delta) {
		return fmt.Errorf("change %q by %d (%d/%d, %d unemployed): %w",
			job.Title(), delta, job.Workers(), job.MaxWorkers(), a.rf.unemployed.Amount(), ErrWorkers)
	}
	a.rf.EmployWorkers(job, delta)
	return nil
}

// ── Trade ───────────────────────────────────────────────────────────

// PostSellOffer escrows units of give for sale at silverPerUnit each.
func (a *FactionActions) PostSellOffer(give economy.Bundle, silverPerUnit, units int) (*TradeOffer, error) {
	if !a.HasMarketplace() {
		return nil, ErrNoMarketplace
	}
	if units <= 0 || give.Amount <= 0 || silverPerUnit < 0 || !a.rf.resources.HasEnough(give.Multiply(units)) {
		return nil, fmt.Errorf("sell %d x %s: %w", units, give, ErrTradeRejected)
	}
	return NewSellOffer(a.rf, give, silverPerUnit, units, nil), nil
}

// PostBuyOffer escrows silver to buy units of want at silverPerUnit each.
func (a *FactionActions) PostBuyOffer(want economy.Bundle, silverPerUnit, units int) (*TradeOffer, error) {
	if !a.HasMarketplace() {
		return nil, ErrNoMarketplace
	}
	if units <= 0 || want.Amount <= 0 || silverPerUnit < 0 || a.rf.Silver < silverPerUnit*units {
		return nil, fmt.Errorf("buy %d x %s: %w", units, want, ErrTradeRejected)
	}
	return NewBuyOffer(a.rf, silverPerUnit, want, units, nil), nil
}

// NeighborOffers lists the valid offers this faction may accept.
func (a *FactionActions) NeighborOffers() []*TradeOffer {
	var out []*TradeOffer
	for _, n := range a.rf.Region.neighbors {
		if n.LocalFaction == nil {
			continue
		}
		for _, o := range n.LocalFaction.Offers() {
			if o.MayAccept(a.rf) {
				out = append(out, o)
			}
		}
	}
	return out
}

// AcceptOffer takes units of o.
func (a *FactionActions) AcceptOffer(o *TradeOffer, units int) error {
	if o == nil || !o.CanTrade(a.rf, units) {
		return fmt.Errorf("accept %d units: %w", units, ErrTradeRejected)
	}
	o.MakeTrade(a.rf, units)
	return nil
}

// CancelOffer withdraws one of this faction's own offers.
func (a *FactionActions) CancelOffer(o *TradeOffer) error {
	if o == nil || o.Starter != a.rf || !o.IsValid() {
		return fmt.Errorf("cancel offer: %w", ErrTradeRejected)
	}
	o.Cancel()
	return nil
}

func (a *FactionActions) String() string {
	return fmt.Sprintf("FactionActions(%s)", a.rf)
}
