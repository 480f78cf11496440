package accounting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/genesis-erp/ledger/models"
)

// GeneralLedgerRow is one line-level row of the ledger view: line,
// entry and account joined together.
type GeneralLedgerRow struct {
	LineID      string          `json:"line_id"`
	EntryID     string          `json:"entry_id"`
	EntryNumber int64           `json:"entry_number"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	AccountID   string          `json:"account_id"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// LedgerFilter narrows the general-ledger view. Zero values mean "no
// filter"; cancelled entries are excluded unless asked for.
type LedgerFilter struct {
	AccountID        string
	From             time.Time
	To               time.Time
	IncludeCancelled bool
}

func (e *Engine) GeneralLedger(filter LedgerFilter) ([]GeneralLedgerRow, error) {
	query := e.ctx.DB.
		Table("journal_lines").
		Select("journal_lines.id AS line_id, journal_entries.id AS entry_id, journal_entries.entry_number, journal_entries.date, journal_entries.description, accounts.id AS account_id, accounts.code AS account_code, accounts.name AS account_name, journal_lines.debit, journal_lines.credit").
		Joins("JOIN journal_entries ON journal_entries.id = journal_lines.entry_id").
		Joins("JOIN accounts ON accounts.id = journal_lines.account_id")

	if !filter.IncludeCancelled {
		query = query.Where("journal_entries.status = ?", models.EntryPosted)
	}
	if filter.AccountID != "" {
		query = query.Where("journal_lines.account_id = ?", filter.AccountID)
	}
	if !filter.From.IsZero() {
		query = query.Where("journal_entries.date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("journal_entries.date <= ?", filter.To)
	}

	var rows []GeneralLedgerRow
	if err := query.Order("journal_entries.entry_number").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type TrialBalanceRow struct {
	AccountID   string             `json:"account_id"`
	AccountCode string             `json:"account_code"`
	AccountName string             `json:"account_name"`
	AccountType models.AccountType `json:"account_type"`
	Debit       decimal.Decimal    `json:"debit"`
	Credit      decimal.Decimal    `json:"credit"`
	Balance     decimal.Decimal    `json:"balance"`
}

// TrialBalance aggregates posted debits and credits per account.
func (e *Engine) TrialBalance() ([]TrialBalanceRow, error) {
	var rows []TrialBalanceRow
	err := e.ctx.DB.
		Table("accounts").
		Select("accounts.id AS account_id, accounts.code AS account_code, accounts.name AS account_name, accounts.type AS account_type, COALESCE(SUM(CASE WHEN journal_entries.status = 'posted' THEN journal_lines.debit ELSE 0 END), 0) AS debit, COALESCE(SUM(CASE WHEN journal_entries.status = 'posted' THEN journal_lines.credit ELSE 0 END), 0) AS credit, accounts.balance").
		Joins("LEFT JOIN journal_lines ON journal_lines.account_id = accounts.id").
		Joins("LEFT JOIN journal_entries ON journal_entries.id = journal_lines.entry_id").
		Where("accounts.active = ?", true).
		Group("accounts.id, accounts.code, accounts.name, accounts.type, accounts.balance").
		Order("accounts.code").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
