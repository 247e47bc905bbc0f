// Hourly hunger and growth.
package sim

import (
	"log/slog"

	"github.com/talgya/fevered-world/internal/economy"
)

// upkeep accumulates fractional hunger and growth between hours.
type upkeep struct {
	hunger  float64 // Food value owed; negative when people ate ahead
	growth  float64 // Fraction of the next newcomer
	fed     bool    // Hunger was fully met this hour
	starved int
	born    int
	extinct bool
}

// dailyFoodNeed returns the food value the whole population eats per day.
func (rf *RegionFaction) dailyFoodNeed() float64 {
	return float64(rf.PopulationCount()) * rf.reg.Upkeep.FoodPerPersonDay
}

// GetFoodAndUsage returns the stored food value and the daily need.
func (rf *RegionFaction) GetFoodAndUsage() (stored int, perDay float64) {
	return rf.resources.FoodValue(), rf.dailyFoodNeed()
}

// Starved returns how many people have died of hunger.
func (rf *RegionFaction) Starved() int { return rf.upkeep.starved }

// Born returns how many people have arrived through growth.
func (rf *RegionFaction) Born() int { return rf.upkeep.born }

func (rf *RegionFaction) hourly() {
	if rf.upkeep.extinct {
		return
	}
	rf.eat()
	rf.grow()
	if rf.PopulationCount() == 0 {
		rf.upkeep.extinct = true
		slog.Warn("population extinct", "region", rf.Name(), "time", rf.time)
		rf.Faction.notify(func(o Observer) { o.PopulationExtinct(rf) })
	}
}

func (rf *RegionFaction) eat() {
	u := &rf.upkeep
	u.hunger += rf.dailyFoodNeed() / 24
	for u.hunger > 0 {
		food := rf.mostPlentifulFood()
		if food == nil {
			break
		}
		rf.resources.SubtractResource(economy.Bundle{Type: food, Amount: 1})
		u.hunger -= float64(food.FoodValue)
	}
	u.fed = u.hunger <= 0

	// A full day without food costs one life per hour.
	if need := rf.dailyFoodNeed(); need > 0 && u.hunger > need {
		rf.starveOne()
		u.hunger = rf.dailyFoodNeed()
	}
}

func (rf *RegionFaction) mostPlentifulFood() *economy.ResourceType {
	var best *economy.ResourceType
	most := 0
	for _, e := range rf.resources.Entries() {
		if e.Type.Edible() && e.Amount > most {
			best, most = e.Type, e.Amount
		}
	}
	return best
}

// starveOne removes one person: homeless before housed, unemployed before
// employed.
func (rf *RegionFaction) starveOne() {
	if rf.homeless.Amount() > 0 {
		rf.homeless.Vanish(1)
	} else if b := rf.fullestBuilding(); b != nil {
		b.residents.Vanish(1)
	}

	if rf.unemployed.Amount() > 0 {
		rf.unemployed.Vanish(1)
	} else if j := rf.mostStaffedJob(); j != nil {
		j.base().workers.Vanish(1)
	}
	rf.upkeep.starved++
	slog.Warn("person starved", "region", rf.Name(), "population", rf.PopulationCount())
}

func (rf *RegionFaction) fullestBuilding() *Building {
	var best *Building
	for _, b := range rf.Buildings() {
		if b.Residents() > 0 && (best == nil || b.Residents() > best.Residents()) {
			best = b
		}
	}
	return best
}

func (rf *RegionFaction) mostStaffedJob() Job {
	var best Job
	for _, j := range rf.jobs {
		if j.Workers() > 0 && (best == nil || j.Workers() > best.Workers()) {
			best = j
		}
	}
	return best
}

// grow adds newcomers in proportion to the housed population. A hungry
// colony does not grow; its accumulator waits for the next fed hour.
// Unemployment keeps room for every employed worker to return.
func (rf *RegionFaction) grow() {
	u := &rf.upkeep
	housed := rf.HousedCount()
	if !u.fed || housed == 0 || rf.reg.Upkeep.GrowthPerHousedDay <= 0 {
		return
	}
	u.growth += float64(housed) * rf.reg.Upkeep.GrowthPerHousedDay / 24
	for u.growth >= 1 {
		if rf.homeless.RoomLeft() < 1 || rf.unemployed.RoomLeft() <= rf.EmployedCount() {
			u.growth = 1
			return
		}
		rf.homeless.Manifest(1)
		rf.unemployed.Manifest(1)
		u.growth--
		u.born++
	}
}
