package services

import (
	"context"
	"errors"
	"testing"

	"github.com/garageleadly/go-leads-backend/internal/domain"
)

func cappedContractor(id string, cap int) domain.Contractor {
	c := contractor(id, "Harris", domain.JobTypeResidential)
	c.DailyLeadCap = cap
	return c
}

func staticCounts(counts map[string]int) DailyCountLookup {
	return func(_ context.Context, contractorID, _ string) (int, error) {
		return counts[contractorID], nil
	}
}

func TestSelectContractor_FirstWithCapacity(t *testing.T) {
	candidates := []domain.Contractor{cappedContractor("a", 5), cappedContractor("b", 5)}
	counts := staticCounts(map[string]int{"a": 5, "b": 2})

	alloc, err := SelectContractor(context.Background(), candidates, "2026-08-31", counts)
	if err != nil {
		t.Fatalf("SelectContractor: %v", err)
	}
	if alloc.Contractor.ID != "b" || alloc.Overflow {
		t.Fatalf("expected b without overflow, got %s overflow=%v", alloc.Contractor.ID, alloc.Overflow)
	}
}

func TestSelectContractor_PrefersEarlierCandidate(t *testing.T) {
	candidates := []domain.Contractor{cappedContractor("a", 5), cappedContractor("b", 5)}
	counts := staticCounts(map[string]int{"a": 0, "b": 0})

	alloc, err := SelectContractor(context.Background(), candidates, "2026-08-31", counts)
	if err != nil {
		t.Fatalf("SelectContractor: %v", err)
	}
	if alloc.Contractor.ID != "a" || alloc.Overflow {
		t.Fatalf("expected first candidate, got %s", alloc.Contractor.ID)
	}
}

func TestSelectContractor_AllAtCapOverflows(t *testing.T) {
	candidates := []domain.Contractor{cappedContractor("a", 3), cappedContractor("b", 5)}
	counts := staticCounts(map[string]int{"a": 3, "b": 7})

	alloc, err := SelectContractor(context.Background(), candidates, "2026-08-31", counts)
	if err != nil {
		t.Fatalf("SelectContractor: %v", err)
	}
	if alloc.Contractor.ID != "a" || !alloc.Overflow {
		t.Fatalf("saturated roster must overflow to the first candidate, got %s overflow=%v",
			alloc.Contractor.ID, alloc.Overflow)
	}
}

func TestSelectContractor_LookupErrorPropagates(t *testing.T) {
	boom := errors.New("count lookup down")
	failing := DailyCountLookup(func(context.Context, string, string) (int, error) {
		return 0, boom
	})

	_, err := SelectContractor(context.Background(), []domain.Contractor{cappedContractor("a", 5)}, "2026-08-31", failing)
	if !errors.Is(err, boom) {
		t.Fatalf("expected lookup error, got %v", err)
	}
}
