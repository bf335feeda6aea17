// Package services – contractor matching
//
// This file implements the matcher: the pure filter that narrows the active
// roster to contractors covering a lead's county and handling its job type.
// It has no side effects; an empty result is surfaced by the orchestrator as
// an explicit "no coverage" rejection rather than silently dropped.
package services

import "github.com/garageleadly/go-leads-backend/internal/domain"

// MatchContractors returns the subset of roster whose coverage set contains
// county and whose service set contains jobType, preserving roster order.
// The input is expected to be pre-filtered to active contractors; inactive
// rows are skipped if present.
func MatchContractors(roster []domain.Contractor, county, jobType string) []domain.Contractor {
	out := make([]domain.Contractor, 0, len(roster))
	for _, c := range roster {
		if c.Status != domain.ContractorStatusActive {
			continue
		}
		if c.Counties.Contains(county) && c.JobTypes.Contains(jobType) {
			out = append(out, c)
		}
	}
	return out
}
