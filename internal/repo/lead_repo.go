// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Lead model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a lead is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/garageleadly/go-leads-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateLead inserts a new pending Lead row from the submitted fields.
// The lead ID is a randomly generated UUID (string), and CreatedAt is set to UTC.
//
// On success, it returns the persisted Lead. On failure, it returns a DB error.
func CreateLead(ctx context.Context, db *gorm.DB, l *domain.Lead) (*domain.Lead, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = domain.LeadStatusPending
	}
	l.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, err
	}
	return l, nil
}

// GetLead fetches a single lead by its ID. If the record does not exist, it
// returns ErrNotFound. On other DB errors, the raw error is returned.
func GetLead(ctx context.Context, db *gorm.DB, id string) (*domain.Lead, error) {
	var l domain.Lead
	if err := db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// AssignLead marks a pending lead as assigned to contractorID at the given
// time. The WHERE clause guards the status transition so a lead can only be
// assigned once. If no rows are affected (lead missing or already assigned),
// it returns ErrNotFound.
func AssignLead(ctx context.Context, db *gorm.DB, leadID, contractorID string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("id = ? AND status = ?", leadID, domain.LeadStatusPending).
		Updates(map[string]any{
			"contractor_id": contractorID,
			"status":        domain.LeadStatusAssigned,
			"assigned_at":   at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateLeadCost inserts the analytics record of the pricing decision made
// for an assigned lead. On failure, it returns the DB error; callers treat
// this write as best-effort.
func CreateLeadCost(ctx context.Context, db *gorm.DB, leadID, contractorID string, cost, margin, price float64) error {
	lc := &domain.LeadCost{
		ID:            uuid.NewString(),
		LeadID:        leadID,
		ContractorID:  contractorID,
		CostPerLead:   cost,
		MarginApplied: margin,
		PlatformPrice: price,
		CreatedAt:     time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(lc).Error
}
