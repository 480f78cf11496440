package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"
)

type EntryStatus = string

var (
	EntryPosted    EntryStatus = "posted"
	EntryCancelled EntryStatus = "cancelled"
)

type ReferenceType = string

var (
	RefSale       ReferenceType = "sale"
	RefSaleCost   ReferenceType = "sale_cost"
	RefCommission ReferenceType = "commission"
	RefPayroll    ReferenceType = "payroll"
	RefExpense    ReferenceType = "expense"
	RefReversal   ReferenceType = "reversal"
	RefManual     ReferenceType = "manual"
)

// JournalEntry is append-only. The only permitted mutation is the
// posted -> cancelled status flip performed by a reversal.
type JournalEntry struct {
	ID            string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	EntryNumber   int64         `json:"entry_number" gorm:"uniqueIndex;not null"`
	Date          time.Time     `json:"date" gorm:"not null"`
	Description   string        `json:"description"`
	ReferenceType ReferenceType `json:"reference_type" gorm:"type:varchar(20);index"`
	ReferenceID   null.String   `json:"reference_id" gorm:"type:varchar(36);index"`
	Status        EntryStatus   `json:"status" gorm:"type:varchar(12);default:posted"`
	CreatedBy     null.String   `json:"created_by" gorm:"type:varchar(36)"`
	CreatedAt     time.Time     `json:"created_at"`
}

type JournalLine struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	EntryID     string          `json:"entry_id" gorm:"type:varchar(36);index;not null"`
	AccountID   string          `json:"account_id" gorm:"type:varchar(36);index;not null"`
	Debit       decimal.Decimal `json:"debit" gorm:"type:decimal(14,2);default:0"`
	Credit      decimal.Decimal `json:"credit" gorm:"type:decimal(14,2);default:0"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Sequence is a named monotonic counter. Allocation happens via an
// atomic UPDATE inside the allocating transaction.
type Sequence struct {
	Name  string `gorm:"primaryKey;type:varchar(32)"`
	Value int64  `gorm:"not null;default:0"`
}

const EntryNumberSequence = "journal_entries"
