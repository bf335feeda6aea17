package services

import (
	"testing"

	"github.com/garageleadly/go-leads-backend/internal/domain"
)

func contractor(id, county, jobType string) domain.Contractor {
	return domain.Contractor{
		ID:           id,
		Name:         id,
		Counties:     domain.StringList{county},
		JobTypes:     domain.StringList{jobType},
		Status:       domain.ContractorStatusActive,
		DailyLeadCap: 5,
	}
}

func TestMatchContractors_CountyAndJobType(t *testing.T) {
	roster := []domain.Contractor{
		contractor("a", "Harris", domain.JobTypeResidential),
		contractor("b", "Travis", domain.JobTypeResidential),
		contractor("c", "Harris", domain.JobTypeCommercial),
	}

	got := MatchContractors(roster, "Harris", domain.JobTypeResidential)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected only contractor a, got %d", len(got))
	}

	got = MatchContractors(roster, "Harris", domain.JobTypeCommercial)
	if len(got) != 1 || got[0].ID != "c" {
		t.Fatalf("expected only contractor c, got %d", len(got))
	}
}

func TestMatchContractors_MultiCountyCoverage(t *testing.T) {
	wide := contractor("wide", "Harris", domain.JobTypeResidential)
	wide.Counties = domain.StringList{"Harris", "Fort Bend", "Montgomery"}

	got := MatchContractors([]domain.Contractor{wide}, "Fort Bend", domain.JobTypeResidential)
	if len(got) != 1 {
		t.Fatalf("multi-county contractor should match any covered county")
	}
	if got := MatchContractors([]domain.Contractor{wide}, "Travis", domain.JobTypeResidential); len(got) != 0 {
		t.Fatalf("uncovered county must not match")
	}
}

func TestMatchContractors_PreservesRosterOrder(t *testing.T) {
	roster := []domain.Contractor{
		contractor("first", "Harris", domain.JobTypeResidential),
		contractor("second", "Harris", domain.JobTypeResidential),
		contractor("third", "Harris", domain.JobTypeResidential),
	}
	got := MatchContractors(roster, "Harris", domain.JobTypeResidential)
	if len(got) != 3 || got[0].ID != "first" || got[1].ID != "second" || got[2].ID != "third" {
		t.Fatalf("matcher must preserve roster order: %+v", got)
	}
}

func TestMatchContractors_SkipsInactive(t *testing.T) {
	idle := contractor("idle", "Harris", domain.JobTypeResidential)
	idle.Status = domain.ContractorStatusInactive
	roster := []domain.Contractor{idle, contractor("live", "Harris", domain.JobTypeResidential)}

	got := MatchContractors(roster, "Harris", domain.JobTypeResidential)
	if len(got) != 1 || got[0].ID != "live" {
		t.Fatalf("inactive contractors must be skipped, got %d", len(got))
	}
}

func TestMatchContractors_EmptyResult(t *testing.T) {
	roster := []domain.Contractor{contractor("a", "Travis", domain.JobTypeResidential)}
	if got := MatchContractors(roster, "Bexar", domain.JobTypeResidential); len(got) != 0 {
		t.Fatalf("expected empty match set")
	}
	if got := MatchContractors(nil, "Bexar", domain.JobTypeResidential); len(got) != 0 {
		t.Fatalf("nil roster must yield empty match set")
	}
}
