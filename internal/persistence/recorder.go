package persistence

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/engine"
	"github.com/talgya/fevered-world/internal/sim"
)

// snapshot is what one chronicle flush writes.
type snapshot struct {
	now    clock.TimeT
	events []engine.Event
	stats  []engine.RegionStats
	docs   []*sim.Document
}

// Flush drains the engine's event log and writes it with a stats sample
// and every document the game knows about.
func (db *DB) Flush(e *engine.Engine) error {
	var snap snapshot
	// Draining mutates the log, so take the write lock.
	e.Update(func(g *engine.Game) {
		snap = snapshot{now: g.Time(), events: g.Events.Drain(), stats: g.Stats(), docs: documents(g)}
	})

	if err := db.SaveEvents(snap.events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveStats(snap.now, snap.stats); err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	if err := db.SaveDocuments(snap.docs); err != nil {
		return fmt.Errorf("save documents: %w", err)
	}
	if err := db.SaveMeta("last_time", fmt.Sprintf("%d", snap.now)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	return nil
}

// Attach flushes at every game hour. Failures are logged, not fatal.
func (db *DB) Attach(e *engine.Engine) {
	prev := e.OnHour
	e.OnHour = func(h clock.TimeT) {
		if prev != nil {
			prev(h)
		}
		if err := db.Flush(e); err != nil {
			slog.Error("chronicle flush failed", "time", h, "error", err)
		}
	}
}

// documents collects each document once, in briefcase order.
func documents(g *engine.Game) []*sim.Document {
	seen := make(map[uuid.UUID]bool)
	var out []*sim.Document
	for _, f := range g.Map.Factions() {
		for _, d := range f.Briefcase.Documents() {
			if !seen[d.ID] {
				seen[d.ID] = true
				out = append(out, d)
			}
		}
	}
	return out
}
