// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Contractor
// model, including the atomic spend accumulator used by billing.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/garageleadly/go-leads-backend/internal/domain"
)

// ListActiveContractors returns the full active roster in insertion order.
// Matching and capacity allocation both iterate this order, so it must stay
// stable between calls (primary key ascending).
func ListActiveContractors(ctx context.Context, db *gorm.DB) ([]domain.Contractor, error) {
	var out []domain.Contractor
	err := db.WithContext(ctx).
		Where("status = ?", domain.ContractorStatusActive).
		Order("created_at asc, id asc").
		Find(&out).Error
	return out, err
}

// GetContractor fetches a single contractor by ID. If the record does not
// exist, it returns ErrNotFound. On other DB errors, the raw error is returned.
func GetContractor(ctx context.Context, db *gorm.DB, id string) (*domain.Contractor, error) {
	var c domain.Contractor
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// AddSpentToday accumulates amount onto the contractor's running daily spend
// using server-side arithmetic (spent_today = spent_today + ?) so concurrent
// charges never lose updates. Returns ErrNotFound when the contractor is
// missing.
func AddSpentToday(ctx context.Context, db *gorm.DB, contractorID string, amount float64) error {
	res := db.WithContext(ctx).
		Model(&domain.Contractor{}).
		Where("id = ?", contractorID).
		Update("spent_today", gorm.Expr("spent_today + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateDailyBudget sets the contractor's daily budget. Returns ErrNotFound
// when the contractor does not exist.
func UpdateDailyBudget(ctx context.Context, db *gorm.DB, contractorID string, budget float64) error {
	res := db.WithContext(ctx).
		Model(&domain.Contractor{}).
		Where("id = ?", contractorID).
		Update("daily_budget", budget)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetStripeCustomerID records the payment-transport customer reference on the
// contractor row after onboarding. Returns ErrNotFound when the contractor
// does not exist.
func SetStripeCustomerID(ctx context.Context, db *gorm.DB, contractorID, customerID string) error {
	res := db.WithContext(ctx).
		Model(&domain.Contractor{}).
		Where("id = ?", contractorID).
		Update("stripe_customer_id", customerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
