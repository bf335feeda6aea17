package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/garageleadly/go-leads-backend/internal/domain"
)

func TestIdempotency_CreateAndGet(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	key := "k-" + uuid.NewString()
	leadID := uuid.NewString()

	rec, err := CreateIdempotency(ctx, db, key, leadID, 201, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.Key != key || rec.LeadID != leadID || rec.Status != 201 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, key, time.Now().UTC())
	if err != nil {
		t.Fatalf("GetIdempotency: %v", err)
	}
	if got.LeadID != leadID {
		t.Fatalf("lead mismatch: %+v", got)
	}
}

func TestIdempotency_Duplicate(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	key := "k-" + uuid.NewString()

	if _, err := CreateIdempotency(ctx, db, key, uuid.NewString(), 201, time.Hour); err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, key, uuid.NewString(), 201, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestIdempotency_ExpiredAndBlankKey(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	key := "k-" + uuid.NewString()

	if _, err := CreateIdempotency(ctx, db, key, uuid.NewString(), 201, time.Hour); err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}

	// Looking up after the TTL window must miss.
	if _, err := GetIdempotency(ctx, db, key, time.Now().UTC().Add(2*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired record, got %v", err)
	}
	if _, err := GetIdempotency(ctx, db, "   ", time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for blank key, got %v", err)
	}

	var count int64
	if err := db.Model(&domain.Idempotency{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected the expired row to remain stored, got %d", count)
	}
}

func TestLoadPlatformSettings(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	empty, err := LoadPlatformSettings(ctx, db)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty table = (%v, %v); want empty map", empty, err)
	}

	rows := []domain.PlatformSetting{
		{SettingKey: "fallback_cost_per_lead", SettingValue: "25.00"},
		{SettingKey: "platform_margin", SettingValue: "0.20"},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	got, err := LoadPlatformSettings(ctx, db)
	if err != nil {
		t.Fatalf("LoadPlatformSettings: %v", err)
	}
	if got["fallback_cost_per_lead"] != "25.00" || got["platform_margin"] != "0.20" {
		t.Fatalf("unexpected settings: %#v", got)
	}
}
