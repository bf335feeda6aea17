// Package services – PricingService
//
// This file implements the pricing calculator: the price a contractor pays
// for one lead, derived from platform settings and an optional external
// ad-cost signal. The calculator never fails its caller: any problem reading
// settings degrades to the fixed default quote so the intake flow keeps
// moving.
package services

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/garageleadly/go-leads-backend/internal/repo"
)

// Pricing defaults used when the settings store is empty or unreachable.
const (
	DefaultCostPerLead = 25.00
	DefaultMargin      = 0.20
)

// Platform setting keys consumed by the calculator.
const (
	SettingFallbackCost = "fallback_cost_per_lead"
	SettingMargin       = "platform_margin"
)

// Quote is the pricing decision for one lead: the cost basis, the margin
// fraction applied, and the resulting platform price rounded to cents.
type Quote struct {
	CostPerLead   float64 `json:"cost_per_lead"`
	Margin        float64 `json:"margin"`
	PlatformPrice float64 `json:"platform_price"`
}

// SettingsRepo defines the repository contract required by PricingService.
type SettingsRepo interface {
	// LoadPlatformSettings returns the full settings map.
	LoadPlatformSettings(ctx context.Context, db *gorm.DB) (map[string]string, error)
}

// PricingService computes the platform price for a lead from platform
// settings and an optional externally supplied cost-per-lead (e.g., an
// ad-spend integration).
type PricingService struct {
	// DB is the GORM handle used to read platform settings.
	DB *gorm.DB
	// Repo is the settings repository used by this service.
	Repo SettingsRepo
}

// settingsRepoShim adapts the repo free functions to SettingsRepo.
type settingsRepoShim struct{}

func (settingsRepoShim) LoadPlatformSettings(ctx context.Context, db *gorm.DB) (map[string]string, error) {
	return repo.LoadPlatformSettings(ctx, db)
}

// NewPricingService constructs a PricingService backed by the settings table.
func NewPricingService(db *gorm.DB) *PricingService {
	return &PricingService{DB: db, Repo: settingsRepoShim{}}
}

// QuoteLead computes the price to charge for one lead.
//
// Policy:
//   - If externalCost is non-nil and positive, it is the cost basis.
//   - Otherwise the "fallback_cost_per_lead" setting applies, defaulting to
//     25.00 when absent or unparsable.
//   - The margin fraction comes from "platform_margin", defaulting to 0.20.
//   - platform price = cost * (1 + margin), rounded half-up to cents.
//
// Settings read errors are swallowed: the method logs nothing here and
// returns the fixed default quote {25.00, 0.20, 30.00}. It never returns an
// error.
func (s *PricingService) QuoteLead(ctx context.Context, externalCost *float64) Quote {
	settings, err := s.Repo.LoadPlatformSettings(ctx, s.DB)
	if err != nil {
		settings = nil // degrade to defaults below
	}

	cost := DefaultCostPerLead
	if externalCost != nil && *externalCost > 0 {
		cost = *externalCost
	} else if v, ok := parseSetting(settings, SettingFallbackCost); ok {
		cost = v
	}

	margin := DefaultMargin
	if v, ok := parseSetting(settings, SettingMargin); ok {
		margin = v
	}

	price := decimal.NewFromFloat(cost).
		Mul(decimal.NewFromFloat(1).Add(decimal.NewFromFloat(margin))).
		Round(2) // half-up for positive amounts

	f, _ := price.Float64()
	return Quote{CostPerLead: cost, Margin: margin, PlatformPrice: f}
}

// parseSetting extracts a positive float setting value; ok is false when the
// key is missing or the value does not parse.
func parseSetting(m map[string]string, key string) (float64, bool) {
	raw, ok := m[key]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
