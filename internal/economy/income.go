// Package economy accrues holding income into house treasuries. Each
// unseized holding pays its owner; a seized holding pays the house that
// took it.
package economy

import (
	"log/slog"
	"time"

	"github.com/talgya/house-wars/internal/faction"
)

// Ledger is the storage the income ticker needs.
type Ledger interface {
	// IncomeByHouse sums income per minute by effective owner.
	IncomeByHouse() (map[faction.ID]int64, error)
	UpdateFactionResources(id faction.ID, goldDelta, soldiersDelta int64) (bool, error)
}

// Ticker credits holding income on a fixed interval.
type Ticker struct {
	store    Ledger
	interval time.Duration
	stop     chan struct{}
}

// NewTicker creates an income ticker. Income rates are per minute, so an
// interval other than one minute scales the payout proportionally.
func NewTicker(store Ledger, interval time.Duration) *Ticker {
	return &Ticker{
		store:    store,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start runs the accrual loop in a goroutine until Stop is called.
func (t *Ticker) Start() {
	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.Accrue()
			case <-t.stop:
				return
			}
		}
	}()
}

// Stop halts the accrual loop.
func (t *Ticker) Stop() {
	close(t.stop)
}

// Accrue pays one interval's worth of holding income to every house.
func (t *Ticker) Accrue() {
	incomes, err := t.store.IncomeByHouse()
	if err != nil {
		slog.Error("income accrual failed", "error", err)
		return
	}

	scale := t.interval.Minutes()
	for id, perMinute := range incomes {
		gold := int64(float64(perMinute) * scale)
		if gold <= 0 {
			continue
		}
		if _, err := t.store.UpdateFactionResources(id, gold, 0); err != nil {
			slog.Error("income credit failed", "house_id", id, "error", err)
		}
	}
}
