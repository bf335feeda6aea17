// Package domain defines the persistence models for leads, contractors,
// capacity counters, and billing records. These types are mapped with GORM
// and form the core data layer of the lead marketplace.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Lead lifecycle statuses. A lead is created as pending and becomes assigned
// exactly once; no re-assignment path exists.
const (
	LeadStatusPending  = "pending"
	LeadStatusAssigned = "assigned"
)

// Job types accepted on intake.
const (
	JobTypeResidential = "residential"
	JobTypeCommercial  = "commercial"
)

// Contractor operational statuses.
const (
	ContractorStatusActive   = "active"
	ContractorStatusInactive = "inactive"
)

// Charge outcome statuses recorded on LeadCharge rows.
const (
	ChargeStatusSucceeded = "succeeded"
	ChargeStatusFailed    = "failed"
)

// StringList is a set of strings stored as a JSON array in a single TEXT
// column. It backs contractor coverage (counties) and service (job types)
// sets so the roster stays a single-table read on the hot intake path.
type StringList []string

// Value implements driver.Valuer by serializing the list to JSON.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner, accepting both TEXT and BLOB column values.
func (s *StringList) Scan(v any) error {
	switch data := v.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		return json.Unmarshal([]byte(data), (*[]string)(s))
	case []byte:
		return json.Unmarshal(data, (*[]string)(s))
	default:
		return errors.New("domain: unsupported column type for StringList")
	}
}

// Contains reports whether v is a member of the list.
func (s StringList) Contains(v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Lead represents a customer's service request submitted through the public
// intake form. A lead is created once with status pending and mutated once at
// assignment time (status, contractor reference, timestamp).
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name/Phone/Email: customer contact details.
//   - Address/City/County/ZIP: job location; County drives contractor matching.
//   - Issue: free-text description of the problem.
//   - JobType: "residential" or "commercial" (enforced by DB constraint).
//   - Status: "pending" until assigned, then "assigned".
//   - ContractorID / AssignedAt: nil until the lead is routed.
type Lead struct {
	ID           string         `json:"id"            gorm:"type:char(36);primaryKey"`
	Name         string         `json:"name"          gorm:"type:varchar(128);not null"`
	Phone        string         `json:"phone"         gorm:"type:varchar(32);not null"`
	Email        string         `json:"email"         gorm:"type:varchar(255)"`
	Address      string         `json:"address"       gorm:"type:varchar(255)"`
	City         string         `json:"city"          gorm:"type:varchar(128)"`
	County       string         `json:"county"        gorm:"type:varchar(128);not null;index:idx_leads_county"`
	ZIP          string         `json:"zip"           gorm:"type:varchar(16)"`
	Issue        string         `json:"issue"         gorm:"type:text"`
	JobType      string         `json:"job_type"      gorm:"type:varchar(16);not null;check:job_type IN ('residential','commercial')"`
	Status       string         `json:"status"        gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','assigned')"`
	ContractorID *string        `json:"contractor_id" gorm:"type:char(36);index:idx_leads_contractor"`
	AssignedAt   *time.Time     `json:"assigned_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"             gorm:"index"`
}

// TableName returns the database table name for Lead.
func (Lead) TableName() string { return "leads" }

// Contractor represents a service provider eligible to receive leads.
//
// Coverage (Counties) and services (JobTypes) are JSON string sets. Billing
// state lives on the row: DailyBudget caps spend per calendar day and
// SpentToday accumulates successful charges (reset externally at midnight).
type Contractor struct {
	ID               string         `json:"id"                 gorm:"type:char(36);primaryKey"`
	Name             string         `json:"name"               gorm:"type:varchar(128);not null"`
	CompanyName      string         `json:"company_name"       gorm:"type:varchar(128)"`
	Phone            string         `json:"phone"              gorm:"type:varchar(32);not null"`
	Email            string         `json:"email"              gorm:"type:varchar(255);not null"`
	Counties         StringList     `json:"counties"           gorm:"type:text;not null"`
	JobTypes         StringList     `json:"job_types"          gorm:"type:text;not null"`
	Status           string         `json:"status"             gorm:"type:varchar(16);not null;default:'active';index:idx_contractors_status;check:status IN ('active','inactive')"`
	DailyLeadCap     int            `json:"daily_lead_cap"     gorm:"not null;default:5"`
	DailyBudget      float64        `json:"daily_budget"       gorm:"not null;default:0"`
	SpentToday       float64        `json:"spent_today"        gorm:"not null;default:0"`
	StripeCustomerID string         `json:"-"                  gorm:"type:varchar(64)"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-"                  gorm:"index"`
}

// TableName returns the database table name for Contractor.
func (Contractor) TableName() string { return "contractors" }

// DailyLeadCount tracks how many leads a contractor received on a calendar
// date. At most one row exists per (contractor_id, date); the row is created
// lazily on first assignment of the day and incremented in place. A new date
// simply starts a fresh counter, there is no rollover job.
type DailyLeadCount struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	ContractorID string    `json:"contractor_id" gorm:"type:char(36);not null;uniqueIndex:ux_daily_counts,priority:1"`
	Date         string    `json:"date"          gorm:"type:char(10);not null;uniqueIndex:ux_daily_counts,priority:2"` // YYYY-MM-DD
	LeadCount    int       `json:"lead_count"    gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for DailyLeadCount.
func (DailyLeadCount) TableName() string { return "daily_lead_counts" }

// LeadCharge records one billing attempt for a (contractor, lead) pair.
// Rows are append-only except for the retry bookkeeping columns: the sweep
// increments RetryCount on continued failure and sets RetrySuccess when a
// later attempt for the same pair succeeds.
type LeadCharge struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	ContractorID   string    `json:"contractor_id"   gorm:"type:char(36);not null;index:idx_charges_contractor"`
	LeadID         string    `json:"lead_id"         gorm:"type:char(36);not null;index:idx_charges_lead"`
	StripeChargeID string    `json:"stripe_charge_id" gorm:"type:varchar(64)"` // empty on failure
	AmountCents    int64     `json:"amount_cents"    gorm:"not null"`
	Status         string    `json:"status"          gorm:"type:varchar(16);not null;index:idx_charges_status;check:status IN ('succeeded','failed')"`
	FailureReason  string    `json:"failure_reason"  gorm:"type:text"`
	RetryCount     int       `json:"retry_count"     gorm:"not null;default:0"`
	RetrySuccess   bool      `json:"retry_success"   gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at"      gorm:"index:idx_charges_created"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for LeadCharge.
func (LeadCharge) TableName() string { return "lead_charges" }

// LeadCost is the analytics record of the pricing decision made for one
// assigned lead: the cost basis, the margin applied, and the resulting
// platform price billed to the contractor.
type LeadCost struct {
	ID            string    `json:"id"             gorm:"type:char(36);primaryKey"`
	LeadID        string    `json:"lead_id"        gorm:"type:char(36);not null;index"`
	ContractorID  string    `json:"contractor_id"  gorm:"type:char(36);not null;index"`
	CostPerLead   float64   `json:"cost_per_lead"  gorm:"not null"`
	MarginApplied float64   `json:"margin_applied" gorm:"not null"`
	PlatformPrice float64   `json:"platform_price" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName returns the database table name for LeadCost.
func (LeadCost) TableName() string { return "lead_costs" }

// PlatformSetting is one externally administered key/value pair, e.g.
// "fallback_cost_per_lead" or "platform_margin". Read-only from this
// service's perspective.
type PlatformSetting struct {
	SettingKey   string    `json:"setting_key"   gorm:"type:varchar(64);primaryKey"`
	SettingValue string    `json:"setting_value" gorm:"type:varchar(255);not null"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for PlatformSetting.
func (PlatformSetting) TableName() string { return "platform_settings" }
