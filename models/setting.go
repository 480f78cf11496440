package models

import "time"

type Setting struct {
	Key       string    `json:"key" gorm:"primaryKey;type:varchar(64)"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

const SettingCashVarianceThreshold = "cash_variance_threshold"
