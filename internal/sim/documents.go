// Contracts between parties: export mandates and colonial ownership.
package sim

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/invariant"
)

// Party is one side of a document.
type Party interface {
	PartyName() string
	ResourceStorage() *economy.Storage
	ContractSuccess(doc *Document)
	ContractFailure(doc *Document, result FulfillResult)
}

// DocType is a bit set describing what a document is and how it behaves.
type DocType uint32

const (
	AColoniallyOwnsB        DocType = 1
	AMandatesExportFromB    DocType = 1 << 1
	HasDeadline             DocType = 1 << 4
	UnilateralACancellation DocType = 1 << 5
	UnilateralBCancellation DocType = 1 << 6
)

// Has reports whether every flag in f is set.
func (t DocType) Has(f DocType) bool { return t&f == f }

// FulfillResult is the outcome of settling a document.
type FulfillResult uint8

const (
	FulfillOk FulfillResult = iota
	FulfillBDidntHaveResources
)

func (r FulfillResult) String() string {
	switch r {
	case FulfillOk:
		return "ok"
	case FulfillBDidntHaveResources:
		return "side B lacked resources"
	default:
		return fmt.Sprintf("FulfillResult(%d)", uint8(r))
	}
}

// DocState tracks a document through settlement.
type DocState uint8

const (
	DocActive DocState = iota
	DocFulfilled
	DocFailed
	DocCancelled
)

func (s DocState) String() string {
	return [...]string{"active", "fulfilled", "failed", "cancelled"}[s]
}

// Document is a contract between SideA and SideB. Documents with a
// deadline settle exactly once, at the first check at or after Expires.
type Document struct {
	ID        uuid.UUID
	Title     string
	FluffText string
	Type      DocType
	SideA     Party
	SideB     Party
	Created   clock.TimeT
	Expires   clock.TimeT
	State     DocState

	Requirements []economy.Bundle
	Rewards      []economy.Bundle

	fulfill func() FulfillResult
}

// IsActive reports whether the document has not been settled or cancelled.
func (d *Document) IsActive() bool { return d.State == DocActive }

// Remaining returns the time left until the deadline at now.
func (d *Document) Remaining(now clock.TimeT) clock.TimeT {
	return clock.Remaining(now, d.Expires)
}

// settle runs the fulfilment and reports the result to both sides.
func (d *Document) settle() FulfillResult {
	invariant.Require(d.IsActive(), "settle %s document %q", d.State, d.Title)
	result := FulfillOk
	if d.fulfill != nil {
		result = d.fulfill()
	}
	if result == FulfillOk {
		d.State = DocFulfilled
		d.SideA.ContractSuccess(d)
		d.SideB.ContractSuccess(d)
	} else {
		d.State = DocFailed
		d.SideA.ContractFailure(d, result)
		d.SideB.ContractFailure(d, result)
	}
	return result
}

// Cancel ends an active document without settling it. side must be allowed
// to cancel unilaterally.
func (d *Document) Cancel(side Party) error {
	switch {
	case !d.IsActive():
		return fmt.Errorf("cancel %q: document is %s", d.Title, d.State)
	case side == d.SideA && d.Type.Has(UnilateralACancellation):
	case side == d.SideB && d.Type.Has(UnilateralBCancellation):
	default:
		return fmt.Errorf("cancel %q: %s may not cancel", d.Title, side.PartyName())
	}
	d.State = DocCancelled
	return nil
}

func (d *Document) String() string { return d.Title }

// Briefcase holds the documents a faction is party to.
type Briefcase struct {
	docs            []*Document
	mandatesCreated int
	onSettled       func(*Document, FulfillResult)
}

// AddDocument stores doc; adding the same document twice is a no-op.
func (b *Briefcase) AddDocument(doc *Document) {
	if slices.Contains(b.docs, doc) {
		return
	}
	b.docs = append(b.docs, doc)
}

// Documents returns every document in the order they were added.
func (b *Briefcase) Documents() []*Document { return slices.Clone(b.docs) }

// Active returns the unsettled documents.
func (b *Briefcase) Active() []*Document {
	var out []*Document
	for _, d := range b.docs {
		if d.IsActive() {
			out = append(out, d)
		}
	}
	return out
}

// ByType returns active documents carrying every flag in t.
func (b *Briefcase) ByType(t DocType) []*Document {
	var out []*Document
	for _, d := range b.docs {
		if d.IsActive() && d.Type.Has(t) {
			out = append(out, d)
		}
	}
	return out
}

// Ownership returns the active ownership document, if any.
func (b *Briefcase) Ownership() (*Document, bool) {
	docs := b.ByType(AColoniallyOwnsB)
	if len(docs) == 0 {
		return nil, false
	}
	return docs[0], true
}

// Check settles every deadline document that has expired by now.
func (b *Briefcase) Check(now clock.TimeT) {
	for _, d := range b.docs {
		if !d.IsActive() || !d.Type.Has(HasDeadline) || now < d.Expires {
			continue
		}
		result := d.settle()
		slog.Info("document settled", "doc", d.Title, "side_a", d.SideA.PartyName(),
			"side_b", d.SideB.PartyName(), "result", result)
		if b.onSettled != nil {
			b.onSettled(d, result)
		}
	}
}

// CreateExportMandate has parent demand requirements from colony by due.
// On time, colony hands the requirements over and receives rewards.
func (b *Briefcase) CreateExportMandate(requirements, rewards []economy.Bundle, parent, colony Party, now, due clock.TimeT) *Document {
	b.mandatesCreated++
	doc := &Document{
		ID:           uuid.New(),
		Title:        fmt.Sprintf("Export Mandate #%d", b.mandatesCreated),
		FluffText:    fmt.Sprintf("%s requires %s from %s.", parent.PartyName(), economy.Describe(requirements), colony.PartyName()),
		Type:         AMandatesExportFromB | HasDeadline,
		SideA:        parent,
		SideB:        colony,
		Created:      now,
		Expires:      due,
		Requirements: requirements,
		Rewards:      rewards,
	}
	doc.fulfill = func() FulfillResult {
		from := colony.ResourceStorage()
		if !from.HasEnoughAll(requirements) {
			return FulfillBDidntHaveResources
		}
		if !from.TransferResources(parent.ResourceStorage(), requirements) {
			return FulfillBDidntHaveResources
		}
		// Rewards come from nowhere; the parent does not pay for them.
		if lost := from.Spread(rewards); len(lost) > 0 {
			slog.Warn("mandate rewards over capacity", "doc", doc.Title, "lost", economy.Describe(lost))
		}
		return FulfillOk
	}
	b.AddDocument(doc)
	return doc
}

// CreateOwningRelationship records that owner colonially owns owned.
func (b *Briefcase) CreateOwningRelationship(owner, owned Party, now clock.TimeT) *Document {
	doc := &Document{
		ID:        uuid.New(),
		Title:     fmt.Sprintf("Ownership of %s by %s", owned.PartyName(), owner.PartyName()),
		FluffText: fmt.Sprintf("%s is a colony of %s.", owned.PartyName(), owner.PartyName()),
		Type:      AColoniallyOwnsB | UnilateralACancellation,
		SideA:     owner,
		SideB:     owned,
		Created:   now,
		Expires:   now.Add(clock.Years(500)),
	}
	b.AddDocument(doc)
	return doc
}
