package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"
)

type SessionStatus = string

var (
	SessionOpen    SessionStatus = "open"
	SessionClosing SessionStatus = "closing"
	SessionClosed  SessionStatus = "closed"
)

type MovementType = string

var (
	MovementOpening MovementType = "opening"
	MovementSale    MovementType = "sale"
	MovementRefund  MovementType = "refund"
	MovementCashIn  MovementType = "cash_in"
	MovementCashOut MovementType = "cash_out"
)

type VarianceType = string

var (
	VarianceOverage  VarianceType = "overage"
	VarianceShortage VarianceType = "shortage"
)

// CashRegister is the aggregate root for till sessions. A single
// register is created at bootstrap; more can be added later without
// touching the session logic.
type CashRegister struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"not null"`
	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
}

// CashSession tracks one drawer shift. Running totals are mutated only
// while the session is open; declared amount and variance are written
// exactly once, at close.
type CashSession struct {
	ID                  string              `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RegisterID          string              `json:"register_id" gorm:"type:varchar(36);index;not null"`
	Status              SessionStatus       `json:"status" gorm:"type:varchar(12);index;default:open"`
	OpeningAmount       decimal.Decimal     `json:"opening_amount" gorm:"type:decimal(14,2);not null"`
	OpeningDenomination null.String         `json:"opening_denomination" gorm:"type:text"`
	ExpectedCash        decimal.Decimal     `json:"expected_cash" gorm:"type:decimal(14,2);default:0"`
	TotalSales          decimal.Decimal     `json:"total_sales" gorm:"type:decimal(14,2);default:0"`
	TotalRefunds        decimal.Decimal     `json:"total_refunds" gorm:"type:decimal(14,2);default:0"`
	TotalCashIn         decimal.Decimal     `json:"total_cash_in" gorm:"type:decimal(14,2);default:0"`
	TotalCashOut        decimal.Decimal     `json:"total_cash_out" gorm:"type:decimal(14,2);default:0"`
	TransactionCount    int64               `json:"transaction_count" gorm:"default:0"`
	DeclaredAmount      decimal.NullDecimal `json:"declared_amount" gorm:"type:decimal(14,2)"`
	Variance            decimal.NullDecimal `json:"variance" gorm:"type:decimal(14,2)"`
	ClosingDenomination null.String         `json:"closing_denomination" gorm:"type:text"`
	ClosingNotes        null.String         `json:"closing_notes" gorm:"type:text"`
	OpenedBy            string              `json:"opened_by" gorm:"type:varchar(36)"`
	ClosedBy            null.String         `json:"closed_by" gorm:"type:varchar(36)"`
	OpenedAt            time.Time           `json:"opened_at"`
	ClosedAt            null.Time           `json:"closed_at" gorm:"type:timestamp"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// CashMovement is an immutable event in the drawer ledger. Movements
// are never updated or deleted; corrections create inverse movements.
type CashMovement struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SessionID   string          `json:"session_id" gorm:"type:varchar(36);index;not null"`
	Type        MovementType    `json:"type" gorm:"type:varchar(12);not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(14,2);not null"`
	Description string          `json:"description"`
	ReferenceID null.String     `json:"reference_id" gorm:"type:varchar(36)"`
	CreatedBy   null.String     `json:"created_by" gorm:"type:varchar(36)"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CashVariance is written when a blind close misses the expected cash
// by more than one cent.
type CashVariance struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SessionID string          `json:"session_id" gorm:"type:varchar(36);index;not null"`
	Expected  decimal.Decimal `json:"expected" gorm:"type:decimal(14,2);not null"`
	Declared  decimal.Decimal `json:"declared" gorm:"type:decimal(14,2);not null"`
	Variance  decimal.Decimal `json:"variance" gorm:"type:decimal(14,2);not null"`
	Type      VarianceType    `json:"type" gorm:"type:varchar(12);not null"`
	Notes     null.String     `json:"notes" gorm:"type:text"`
	CreatedBy null.String     `json:"created_by" gorm:"type:varchar(36)"`
	CreatedAt time.Time       `json:"created_at"`
}
