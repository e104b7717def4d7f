package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/demandei/mediumsync/internal/domain"
)

// GetAutomationSetting returns the automation toggle row, creating it enabled
// on first access so a fresh database starts with scheduling on.
func GetAutomationSetting(ctx context.Context, db *gorm.DB) (*domain.AutomationSetting, error) {
	var s domain.AutomationSetting
	err := db.WithContext(ctx).First(&s).Error
	if err == nil {
		return &s, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	s = domain.AutomationSetting{Enabled: true}
	if err := db.WithContext(ctx).Create(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// SetAutomationEnabled flips the automation toggle and returns the stored row.
func SetAutomationEnabled(ctx context.Context, db *gorm.DB, enabled bool) (*domain.AutomationSetting, error) {
	s, err := GetAutomationSetting(ctx, db)
	if err != nil {
		return nil, err
	}
	err = db.WithContext(ctx).
		Model(s).
		Update("enabled", enabled).Error
	if err != nil {
		return nil, err
	}
	s.Enabled = enabled
	return s, nil
}
