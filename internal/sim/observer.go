package sim

import "github.com/talgya/fevered-world/internal/economy"

// Observer hears about notable simulation events. Calls happen synchronously
// inside PassTime or the mutation that caused them; observers must not
// mutate the simulation.
type Observer interface {
	JobRemoved(rf *RegionFaction, job Job)
	BuildingConstructed(rf *RegionFaction, b *Building)
	ContractSettled(doc *Document, result FulfillResult)
	PopulationExtinct(rf *RegionFaction)
	ProductionLost(rf *RegionFaction, lost []economy.Bundle)
}

// NopObserver implements Observer with no-ops, for embedding.
type NopObserver struct{}

func (NopObserver) JobRemoved(*RegionFaction, Job)                  {}
func (NopObserver) BuildingConstructed(*RegionFaction, *Building)   {}
func (NopObserver) ContractSettled(*Document, FulfillResult)        {}
func (NopObserver) PopulationExtinct(*RegionFaction)                {}
func (NopObserver) ProductionLost(*RegionFaction, []economy.Bundle) {}
