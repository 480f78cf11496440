package models

import (
	"time"

	"github.com/volatiletech/null"
)

// AuditLog is an append-only trail of operator-visible actions on
// sensitive records (cash sessions in particular).
type AuditLog struct {
	ID        string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Entity    string      `json:"entity" gorm:"type:varchar(32);index;not null"`
	EntityID  string      `json:"entity_id" gorm:"type:varchar(36);index;not null"`
	Action    string      `json:"action" gorm:"type:varchar(32);not null"`
	UserID    null.String `json:"user_id" gorm:"type:varchar(36)"`
	Details   null.String `json:"details" gorm:"type:text"`
	CreatedAt time.Time   `json:"created_at"`
}
