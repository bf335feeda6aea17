// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for LeadCharge
// rows: the billing ledger of charge attempts and the retry bookkeeping the
// sweep relies on.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/garageleadly/go-leads-backend/internal/domain"
)

// CreateLeadCharge appends one charge-attempt record. The caller fills
// ContractorID, LeadID, AmountCents, Status, and either StripeChargeID
// (success) or FailureReason (failure); ID and CreatedAt are set here.
func CreateLeadCharge(ctx context.Context, db *gorm.DB, ch *domain.LeadCharge) (*domain.LeadCharge, error) {
	if ch.ID == "" {
		ch.ID = uuid.NewString()
	}
	ch.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(ch).Error; err != nil {
		return nil, err
	}
	return ch, nil
}

// ListRetryableCharges returns failed charges eligible for the retry sweep:
// status failed, fewer than maxRetries attempts so far, not already resolved
// by a successful retry, and created after the cutoff. Oldest first so the
// sweep drains in arrival order.
func ListRetryableCharges(ctx context.Context, db *gorm.DB, maxRetries int, cutoff time.Time) ([]domain.LeadCharge, error) {
	var out []domain.LeadCharge
	err := db.WithContext(ctx).
		Where("status = ? AND retry_count < ? AND retry_success = ? AND created_at >= ?",
			domain.ChargeStatusFailed, maxRetries, false, cutoff).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// MarkRetrySuccess flags the original failed charge as eventually recovered
// by a later attempt. The flag, not the fresh attempt's row, is the source of
// truth for "this logical charge succeeded in the end".
func MarkRetrySuccess(ctx context.Context, db *gorm.DB, chargeID string) error {
	res := db.WithContext(ctx).
		Model(&domain.LeadCharge{}).
		Where("id = ?", chargeID).
		Update("retry_success", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementRetryCount bumps retry_count on the original failed charge after
// another unsuccessful attempt, using server-side arithmetic.
func IncrementRetryCount(ctx context.Context, db *gorm.DB, chargeID string) error {
	res := db.WithContext(ctx).
		Model(&domain.LeadCharge{}).
		Where("id = ?", chargeID).
		Update("retry_count", gorm.Expr("retry_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountSucceededChargesSince returns how many charges succeeded for a
// contractor at or after the given instant. Used by the billing summary to
// report leads received today.
func CountSucceededChargesSince(ctx context.Context, db *gorm.DB, contractorID string, since time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.LeadCharge{}).
		Where("contractor_id = ? AND status = ? AND created_at >= ?",
			contractorID, domain.ChargeStatusSucceeded, since).
		Count(&n).Error
	return n, err
}

// CountCharges returns the total number of charge records for a contractor,
// for pagination metadata.
func CountCharges(ctx context.Context, db *gorm.DB, contractorID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.LeadCharge{}).
		Where("contractor_id = ?", contractorID).
		Count(&n).Error
	return n, err
}

// ListChargesPage returns a page of a contractor's charge history, newest
// first. The caller computes offset and limit (e.g., (page-1)*pageSize).
func ListChargesPage(ctx context.Context, db *gorm.DB, contractorID string, offset, limit int) ([]domain.LeadCharge, error) {
	var out []domain.LeadCharge
	err := db.WithContext(ctx).
		Where("contractor_id = ?", contractorID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
