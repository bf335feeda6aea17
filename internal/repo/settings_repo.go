// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file loads the externally administered platform
// settings consumed by the pricing calculator.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/garageleadly/go-leads-backend/internal/domain"
)

// LoadPlatformSettings reads the whole platform_settings table into a
// key→value map. The table is tiny (a handful of rows) so a full read per
// pricing decision is acceptable; callers degrade to hardcoded defaults when
// this returns an error.
func LoadPlatformSettings(ctx context.Context, db *gorm.DB) (map[string]string, error) {
	var rows []domain.PlatformSetting
	if err := db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.SettingKey] = r.SettingValue
	}
	return out, nil
}
