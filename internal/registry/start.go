package registry

import (
	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/world"
)

// PoolDef is the starting size of a population pool.
type PoolDef struct {
	Capacity int
	Amount   int
}

// PrebuiltDef is a building that exists, already constructed, at game start.
type PrebuiltDef struct {
	Building *BuildingType
	Position world.Vec2I
}

// StartState seeds every new region faction.
type StartState struct {
	StorageCapacity int // Applied to every registered resource
	Resources       []economy.Bundle
	Homeless        PoolDef
	Unemployed      PoolDef
	Buildings       []PrebuiltDef
	Silver          int
}

// MandateDef is the export mandate each colony receives from its owner.
type MandateDef struct {
	Requirements []economy.Bundle
	Rewards      []economy.Bundle
	DueMinutes   clock.TimeT
}

// ResourceWantDef ties a stock target to the site that supplies it.
type ResourceWantDef struct {
	Resource *economy.ResourceType
	Want     int
	Site     *ResourceSiteType
}

// AIProfile drives the gamer and nature brains.
type AIProfile struct {
	Wants         []ResourceWantDef
	Housing       *BuildingType
	Storage       *BuildingType
	FoodDays      float64 // Days of food below which fishing is wanted
	NatureDensity float64 // Share of a region's land nature tries to keep covered
}

// UpkeepDef sets hunger and growth rates.
type UpkeepDef struct {
	FoodPerPersonDay   float64
	GrowthPerHousedDay float64
}
