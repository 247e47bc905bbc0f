// Silver trades between region factions.
package sim

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/invariant"
)

// TradeOffer is a standing offer to swap units of a resource for silver.
// The starter's side of every unit is held in escrow until traded or
// cancelled.
type TradeOffer struct {
	ID      uuid.UUID
	Starter *RegionFaction
	// Acceptor restricts who may take the offer; nil lets any neighbour.
	Acceptor *RegionFaction

	BuyingWithSilver bool           // Starter pays silver and wants Resource
	Resource         economy.Bundle // Per unit
	SilverPerUnit    int
	StoredUnits      int

	valid bool
}

// NewBuyOffer escrows silver from starter to buy up to units of want.
func NewBuyOffer(starter *RegionFaction, silverPerUnit int, want economy.Bundle, units int, acceptor *RegionFaction) *TradeOffer {
	invariant.Require(units > 0, "trade offer for %d units", units)
	invariant.Require(want.Amount > 0 && silverPerUnit >= 0, "bad buy offer %s for %d silver", want, silverPerUnit)
	invariant.Require(starter.Silver >= silverPerUnit*units, "%s has %d silver, offer needs %d", starter.Name(), starter.Silver, silverPerUnit*units)
	starter.Silver -= silverPerUnit * units
	return starter.postOffer(&TradeOffer{
		ID:               uuid.New(),
		Starter:          starter,
		Acceptor:         acceptor,
		BuyingWithSilver: true,
		Resource:         want,
		SilverPerUnit:    silverPerUnit,
		StoredUnits:      units,
		valid:            true,
	})
}

// NewSellOffer escrows units of give from starter to sell for silver.
func NewSellOffer(starter *RegionFaction, give economy.Bundle, silverPerUnit int, units int, acceptor *RegionFaction) *TradeOffer {
	invariant.Require(units > 0, "trade offer for %d units", units)
	invariant.Require(give.Amount > 0 && silverPerUnit >= 0, "bad sell offer %s for %d silver", give, silverPerUnit)
	total := give.Multiply(units)
	invariant.Require(starter.resources.HasEnough(total), "%s lacks %s for offer", starter.Name(), total)
	starter.resources.SubtractResource(total)
	return starter.postOffer(&TradeOffer{
		ID:            uuid.New(),
		Starter:       starter,
		Acceptor:      acceptor,
		Resource:      give,
		SilverPerUnit: silverPerUnit,
		StoredUnits:   units,
		valid:         true,
	})
}

func (rf *RegionFaction) postOffer(o *TradeOffer) *TradeOffer {
	rf.offers = append(rf.offers, o)
	slog.Info("trade offer posted", "region", rf.Name(), "offer", o.String())
	return o
}

// Offers returns this faction's valid offers.
func (rf *RegionFaction) Offers() []*TradeOffer {
	var out []*TradeOffer
	for _, o := range rf.offers {
		if o.valid {
			out = append(out, o)
		}
	}
	return out
}

func (rf *RegionFaction) dropOffer(o *TradeOffer) {
	rf.offers = slices.DeleteFunc(rf.offers, func(x *TradeOffer) bool { return x == o })
}

// IsValid reports whether the offer can still be traded or cancelled.
func (o *TradeOffer) IsValid() bool { return o.valid }

// MayAccept reports whether acceptor is allowed to take this offer.
func (o *TradeOffer) MayAccept(acceptor *RegionFaction) bool {
	if acceptor == nil || acceptor == o.Starter {
		return false
	}
	if o.Acceptor != nil {
		return acceptor == o.Acceptor
	}
	return slices.Contains(o.Starter.Region.neighbors, acceptor.Region)
}

// CanTrade reports whether acceptor can take units of the offer now.
func (o *TradeOffer) CanTrade(acceptor *RegionFaction, units int) bool {
	if !o.valid || units <= 0 || units > o.StoredUnits || !o.MayAccept(acceptor) {
		return false
	}
	goods := o.Resource.Multiply(units)
	if o.BuyingWithSilver {
		return acceptor.resources.HasEnough(goods) && o.Starter.resources.CanAdd(goods)
	}
	return acceptor.Silver >= o.SilverPerUnit*units && acceptor.resources.CanAdd(goods)
}

// MakeTrade settles units of the offer with acceptor.
func (o *TradeOffer) MakeTrade(acceptor *RegionFaction, units int) {
	invariant.Require(o.CanTrade(acceptor, units), "cannot trade %d units of %s with %s", units, o, acceptor.Name())
	goods := o.Resource.Multiply(units)
	silver := o.SilverPerUnit * units
	if o.BuyingWithSilver {
		acceptor.Silver += silver
		acceptor.resources.TransferResources(o.Starter.resources, []economy.Bundle{goods})
	} else {
		acceptor.resources.AddResource(goods)
		acceptor.Silver -= silver
		o.Starter.Silver += silver
	}
	o.StoredUnits -= units
	slog.Info("trade made", "starter", o.Starter.Name(), "acceptor", acceptor.Name(), "goods", goods.String(), "silver", silver)
	if o.StoredUnits == 0 {
		o.valid = false
		o.Starter.dropOffer(o)
	}
}

// Cancel returns whatever remains in escrow to the starter.
func (o *TradeOffer) Cancel() {
	invariant.Require(o.valid, "cancel invalid offer %s", o)
	if o.BuyingWithSilver {
		o.Starter.Silver += o.SilverPerUnit * o.StoredUnits
	} else if lost := o.Starter.resources.Spread([]economy.Bundle{o.Resource.Multiply(o.StoredUnits)}); len(lost) > 0 {
		slog.Warn("offer refund over capacity", "region", o.Starter.Name(), "lost", economy.Describe(lost))
	}
	o.StoredUnits = 0
	o.valid = false
	o.Starter.dropOffer(o)
}

func (o *TradeOffer) String() string {
	if o.BuyingWithSilver {
		return fmt.Sprintf("buy %d x %s for %d silver each", o.StoredUnits, o.Resource, o.SilverPerUnit)
	}
	return fmt.Sprintf("sell %d x %s for %d silver each", o.StoredUnits, o.Resource, o.SilverPerUnit)
}
