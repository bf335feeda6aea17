// Package services – capacity allocation
//
// This file implements the allocator that picks exactly one contractor from
// the matcher's candidates under per-contractor daily lead caps. Selection is
// deterministic first-fit in candidate order; when every candidate is at or
// over cap the explicit overflow policy assigns to the first candidate anyway
// and flags the event. The allocator only reads counters; the increment
// happens in the orchestrator after the assignment write lands.
package services

import (
	"context"

	"github.com/garageleadly/go-leads-backend/internal/domain"
)

// DailyCountLookup resolves today's lead counter for a contractor. A missing
// row must be reported as 0.
type DailyCountLookup func(ctx context.Context, contractorID, date string) (int, error)

// Allocation is the allocator's decision: the selected contractor and whether
// the selection went through the overflow path (all candidates at/over cap).
type Allocation struct {
	Contractor domain.Contractor
	Overflow   bool
}

// SelectContractor walks candidates in order and selects the first whose
// counter for date is strictly below its daily cap. If none has capacity it
// returns the first candidate with Overflow set. candidates must be non-empty;
// counter lookup errors are propagated.
func SelectContractor(ctx context.Context, candidates []domain.Contractor, date string, counts DailyCountLookup) (Allocation, error) {
	for _, c := range candidates {
		n, err := counts(ctx, c.ID, date)
		if err != nil {
			return Allocation{}, err
		}
		if n < c.DailyLeadCap {
			return Allocation{Contractor: c}, nil
		}
	}
	return Allocation{Contractor: candidates[0], Overflow: true}, nil
}
