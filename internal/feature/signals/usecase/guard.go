package usecase

import (
	"time"

	"signal_backend/internal/feature/signals/domain/entity"
	"signal_backend/internal/feature/signals/domain/instrument"
)

// PendingLookback is how long an unresolved bot signal blocks its symbol.
const PendingLookback = 24 * time.Hour

// ClaimTTL bounds how long a crashed run can hold a symbol claim.
const ClaimTTL = 5 * time.Minute

// PendingIndex is the set of symbols blocked by an unresolved bot signal.
// It is built once per run and never refreshed.
type PendingIndex map[string]struct{}

// NewPendingIndex indexes records created within PendingLookback of now.
func NewPendingIndex(records []entity.PendingSignal, now time.Time) PendingIndex {
	since := now.Add(-PendingLookback)
	idx := make(PendingIndex, len(records))
	for _, r := range records {
		if r.CreatedAt.Before(since) {
			continue
		}
		idx[instrument.Normalize(r.Symbol)] = struct{}{}
	}
	return idx
}

// Blocked reports whether symbol has an unresolved signal in the index.
func (p PendingIndex) Blocked(symbol string) bool {
	_, ok := p[instrument.Normalize(symbol)]
	return ok
}
