package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType = string

var (
	TypeAsset     AccountType = "asset"
	TypeLiability AccountType = "liability"
	TypeEquity    AccountType = "equity"
	TypeRevenue   AccountType = "revenue"
	TypeExpense   AccountType = "expense"
)

// Account is one row of the chart of accounts. Balance is only ever
// mutated by the journal engine's posting transaction.
type Account struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Code      string          `json:"code" gorm:"uniqueIndex;type:varchar(16);not null"`
	Name      string          `json:"name" gorm:"not null"`
	Type      AccountType     `json:"type" gorm:"type:varchar(16);not null"`
	Balance   decimal.Decimal `json:"balance" gorm:"type:decimal(14,2);default:0"`
	Active    bool            `json:"active" gorm:"default:true"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BalanceDelta returns the signed balance change a debit/credit pair
// causes on this account. Asset and expense accounts grow with debits,
// every other type grows with credits.
func (a *Account) BalanceDelta(debit, credit decimal.Decimal) decimal.Decimal {
	switch a.Type {
	case TypeAsset, TypeExpense:
		return debit.Sub(credit)
	default:
		return credit.Sub(debit)
	}
}
