// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// DailyLeadCount capacity counter.
//
// The counter is the shared state the allocator reads before every
// assignment. Increments go through a single conditional upsert with
// server-side arithmetic so concurrent submissions for the same contractor
// and day cannot lose updates.
package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/garageleadly/go-leads-backend/internal/domain"
)

// GetDailyLeadCount returns today's counter for a contractor; a missing row
// is reported as count 0, not an error.
func GetDailyLeadCount(ctx context.Context, db *gorm.DB, contractorID, date string) (int, error) {
	var row domain.DailyLeadCount
	err := db.WithContext(ctx).
		Where("contractor_id = ? AND date = ?", contractorID, date).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.LeadCount, nil
}

// IncrementDailyLeadCount bumps the (contractor, date) counter by one in a
// single statement: insert a fresh row at 1, or on conflict with the unique
// (contractor_id, date) pair add 1 to the stored value. This is the atomic
// increment-or-insert primitive that keeps the counter correct under
// concurrent intake requests.
func IncrementDailyLeadCount(ctx context.Context, db *gorm.DB, contractorID, date string) error {
	row := &domain.DailyLeadCount{
		ID:           uuid.NewString(),
		ContractorID: contractorID,
		Date:         date,
		LeadCount:    1,
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "contractor_id"}, {Name: "date"}},
			DoUpdates: clause.Assignments(map[string]any{
				"lead_count": gorm.Expr("lead_count + ?", 1),
			}),
		}).
		Create(row).Error
}
