package cashier

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/genesis-erp/ledger/models"
)

// SettingsProvider supplies operator-tunable values. The only key the
// cashier reads is the variance alert threshold.
type SettingsProvider interface {
	Get(key string) (string, bool)
}

// DBSettings reads the settings table.
type DBSettings struct {
	DB *gorm.DB
}

func (s *DBSettings) Get(key string) (string, bool) {
	var setting models.Setting
	if err := s.DB.First(&setting, "key = ?", key).Error; err != nil {
		return "", false
	}
	return setting.Value, true
}

var defaultVarianceThreshold = decimal.NewFromInt(1)

func varianceThreshold(settings SettingsProvider) decimal.Decimal {
	if settings == nil {
		return defaultVarianceThreshold
	}
	raw, ok := settings.Get(models.SettingCashVarianceThreshold)
	if !ok {
		return defaultVarianceThreshold
	}
	threshold, err := decimal.NewFromString(raw)
	if err != nil || !threshold.IsPositive() {
		return defaultVarianceThreshold
	}
	return threshold
}
