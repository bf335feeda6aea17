package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/garageleadly/go-leads-backend/internal/domain"
)

func seedCharge(t *testing.T, db *gorm.DB, mut func(*domain.LeadCharge)) *domain.LeadCharge {
	t.Helper()
	ch := &domain.LeadCharge{
		ContractorID: uuid.NewString(),
		LeadID:       uuid.NewString(),
		AmountCents:  3000,
		Status:       domain.ChargeStatusFailed,
	}
	if mut != nil {
		mut(ch)
	}
	out, err := CreateLeadCharge(context.Background(), db, ch)
	if err != nil {
		t.Fatalf("seed charge: %v", err)
	}
	return out
}

func TestCreateLeadCharge_SetsIDAndTimestamp(t *testing.T) {
	db := newRepoDB(t)

	ch := seedCharge(t, db, func(c *domain.LeadCharge) {
		c.Status = domain.ChargeStatusSucceeded
		c.StripeChargeID = "pi_123"
	})
	if ch.ID == "" || ch.CreatedAt.IsZero() {
		t.Fatalf("ID/CreatedAt not set: %+v", ch)
	}

	var got domain.LeadCharge
	if err := db.First(&got, "id = ?", ch.ID).Error; err != nil {
		t.Fatalf("load charge: %v", err)
	}
	if got.StripeChargeID != "pi_123" || got.AmountCents != 3000 {
		t.Fatalf("unexpected charge: %+v", got)
	}
}

func TestListRetryableCharges_Eligibility(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	cutoff := time.Now().UTC().Add(-24 * time.Hour)

	eligible := seedCharge(t, db, nil)

	// Exhausted: retry_count at the cap.
	seedCharge(t, db, func(c *domain.LeadCharge) { c.RetryCount = 3 })
	// Already recovered by a later attempt.
	seedCharge(t, db, func(c *domain.LeadCharge) { c.RetrySuccess = true })
	// Succeeded outright.
	seedCharge(t, db, func(c *domain.LeadCharge) {
		c.Status = domain.ChargeStatusSucceeded
		c.StripeChargeID = "pi_ok"
	})
	// Too old: push created_at before the cutoff.
	stale := seedCharge(t, db, nil)
	if err := db.Model(&domain.LeadCharge{}).Where("id = ?", stale.ID).
		Update("created_at", cutoff.Add(-time.Hour)).Error; err != nil {
		t.Fatalf("age charge: %v", err)
	}

	got, err := ListRetryableCharges(ctx, db, 3, cutoff)
	if err != nil {
		t.Fatalf("ListRetryableCharges: %v", err)
	}
	if len(got) != 1 || got[0].ID != eligible.ID {
		t.Fatalf("expected only the eligible charge, got %d rows", len(got))
	}
}

func TestListRetryableCharges_OldestFirst(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	newer := seedCharge(t, db, nil)
	older := seedCharge(t, db, nil)
	if err := db.Model(&domain.LeadCharge{}).Where("id = ?", older.ID).
		Update("created_at", time.Now().UTC().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("age charge: %v", err)
	}

	got, err := ListRetryableCharges(ctx, db, 3, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("ListRetryableCharges: %v", err)
	}
	if len(got) != 2 || got[0].ID != older.ID || got[1].ID != newer.ID {
		t.Fatalf("expected oldest first ordering")
	}
}

func TestRetryBookkeeping(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	ch := seedCharge(t, db, nil)

	if err := IncrementRetryCount(ctx, db, ch.ID); err != nil {
		t.Fatalf("IncrementRetryCount: %v", err)
	}
	if err := IncrementRetryCount(ctx, db, ch.ID); err != nil {
		t.Fatalf("IncrementRetryCount: %v", err)
	}
	if err := MarkRetrySuccess(ctx, db, ch.ID); err != nil {
		t.Fatalf("MarkRetrySuccess: %v", err)
	}

	var got domain.LeadCharge
	if err := db.First(&got, "id = ?", ch.ID).Error; err != nil {
		t.Fatalf("load charge: %v", err)
	}
	if got.RetryCount != 2 || !got.RetrySuccess {
		t.Fatalf("bookkeeping mismatch: retry_count=%d retry_success=%v", got.RetryCount, got.RetrySuccess)
	}

	if err := IncrementRetryCount(ctx, db, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := MarkRetrySuccess(ctx, db, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCountSucceededChargesSince(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	cid := uuid.NewString()
	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)

	seedCharge(t, db, func(c *domain.LeadCharge) {
		c.ContractorID = cid
		c.Status = domain.ChargeStatusSucceeded
	})
	seedCharge(t, db, func(c *domain.LeadCharge) { c.ContractorID = cid }) // failed
	// Yesterday's success must not count.
	old := seedCharge(t, db, func(c *domain.LeadCharge) {
		c.ContractorID = cid
		c.Status = domain.ChargeStatusSucceeded
	})
	if err := db.Model(&domain.LeadCharge{}).Where("id = ?", old.ID).
		Update("created_at", startOfDay.Add(-time.Hour)).Error; err != nil {
		t.Fatalf("age charge: %v", err)
	}

	n, err := CountSucceededChargesSince(ctx, db, cid, startOfDay)
	if err != nil {
		t.Fatalf("CountSucceededChargesSince: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d; want 1", n)
	}
}

func TestListChargesPage_NewestFirstWithCount(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	cid := uuid.NewString()

	var ids []string
	for i := 0; i < 5; i++ {
		ch := seedCharge(t, db, func(c *domain.LeadCharge) { c.ContractorID = cid })
		// Spread created_at so ordering is deterministic.
		if err := db.Model(&domain.LeadCharge{}).Where("id = ?", ch.ID).
			Update("created_at", time.Now().UTC().Add(time.Duration(i)*time.Minute)).Error; err != nil {
			t.Fatalf("stamp charge: %v", err)
		}
		ids = append(ids, ch.ID)
	}
	// Another contractor's charge must not leak in.
	seedCharge(t, db, nil)

	total, err := CountCharges(ctx, db, cid)
	if err != nil || total != 5 {
		t.Fatalf("CountCharges = (%d, %v); want (5, nil)", total, err)
	}

	page, err := ListChargesPage(ctx, db, cid, 0, 2)
	if err != nil {
		t.Fatalf("ListChargesPage: %v", err)
	}
	if len(page) != 2 || page[0].ID != ids[4] || page[1].ID != ids[3] {
		t.Fatalf("expected newest first page, got %d rows", len(page))
	}

	rest, err := ListChargesPage(ctx, db, cid, 4, 2)
	if err != nil || len(rest) != 1 {
		t.Fatalf("last page = (%d rows, %v); want 1 row", len(rest), err)
	}
}
