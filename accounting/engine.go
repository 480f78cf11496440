package accounting

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"
	"gorm.io/gorm"

	"github.com/genesis-erp/ledger/models"
)

// LineInput is one debit-or-credit posting handed to CreateEntry.
type LineInput struct {
	AccountID   string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// EntryParams describe one balanced journal entry.
type EntryParams struct {
	Description string
	Reference   models.Reference
	CreatedBy   string
	Date        time.Time // zero value means "now"
	Lines       []LineInput
}

// ReverseOptions tune ReverseEntry. A non-nil Tx suppresses the nested
// transaction and posts inside the caller's one.
type ReverseOptions struct {
	Tx        *gorm.DB
	CreatedBy string
}

// Engine builds, validates, persists and reverses balanced journal
// entries and keeps account balances in step. Every operation is one
// atomic transaction: either entry, lines and balance deltas all
// commit, or none do.
type Engine struct {
	ctx       *Context
	sequences *SequenceAllocator
}

func NewEngine(ctx *Context) *Engine {
	return &Engine{ctx: ctx, sequences: NewSequenceAllocator()}
}

// Cents converts an amount to integer cents after half-up rounding to
// two decimals. All balance comparisons go through this, never through
// binary floats.
func Cents(amount decimal.Decimal) int64 {
	return amount.Round(2).Shift(2).IntPart()
}

func validateLines(lines []LineInput) error {
	if len(lines) < 2 {
		return validationErrorf("entry needs at least 2 lines, got %d", len(lines))
	}

	var debits, credits int64
	for _, line := range lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return validationErrorf("negative amount on account %s", line.AccountID)
		}
		debits += Cents(line.Debit)
		credits += Cents(line.Credit)
	}
	if debits != credits {
		return validationErrorf("unbalanced entry: debits %d != credits %d cents", debits, credits)
	}
	return nil
}

// CreateEntry validates the lines, allocates the next entry number and
// persists entry, lines and balance updates atomically.
func (e *Engine) CreateEntry(params EntryParams) (string, error) {
	if err := validateLines(params.Lines); err != nil {
		return "", err
	}

	var entryID string
	err := e.ctx.DB.Transaction(func(tx *gorm.DB) error {
		id, err := e.createEntryTx(tx, params)
		if err != nil {
			return err
		}
		entryID = id
		return nil
	})
	if err != nil {
		return "", err
	}
	return entryID, nil
}

func (e *Engine) createEntryTx(tx *gorm.DB, params EntryParams) (string, error) {
	number, err := e.sequences.Next(tx)
	if err != nil {
		return "", err
	}

	date := params.Date
	if date.IsZero() {
		date = e.ctx.Clock.Now()
	}

	entry := models.JournalEntry{
		ID:            models.NewID(),
		EntryNumber:   number,
		Date:          date,
		Description:   params.Description,
		ReferenceType: params.Reference.Type,
		ReferenceID:   null.NewString(params.Reference.ID, params.Reference.ID != ""),
		Status:        models.EntryPosted,
		CreatedBy:     null.NewString(params.CreatedBy, params.CreatedBy != ""),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return "", err
	}

	for _, input := range params.Lines {
		line := models.JournalLine{
			ID:          models.NewID(),
			EntryID:     entry.ID,
			AccountID:   input.AccountID,
			Debit:       input.Debit.Round(2),
			Credit:      input.Credit.Round(2),
			Description: input.Description,
		}
		if err := tx.Create(&line).Error; err != nil {
			return "", err
		}
		if err := applyBalance(tx, line.AccountID, line.Debit, line.Credit); err != nil {
			return "", err
		}
	}

	return entry.ID, nil
}

// applyBalance folds one line into its account under the sign
// convention. The increment is a single UPDATE expression so concurrent
// postings against the same account serialize on the row lock instead
// of losing updates.
func applyBalance(tx *gorm.DB, accountID string, debit, credit decimal.Decimal) error {
	var account models.Account
	if err := tx.First(&account, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("account", accountID)
		}
		return err
	}

	delta := account.BalanceDelta(debit, credit)
	if delta.IsZero() {
		return nil
	}

	return tx.Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("balance", gorm.Expr("balance + ?", delta)).Error
}

// ReverseEntry posts the exact mirror of a posted entry (debits and
// credits swapped per account) and flips the original to cancelled, all
// in one transaction. Reversing a cancelled entry is a StateError.
func (e *Engine) ReverseEntry(originalEntryID, reason string, opts *ReverseOptions) (string, error) {
	if opts == nil {
		opts = &ReverseOptions{}
	}
	if reason == "" {
		reason = "Anulación"
	}

	if opts.Tx != nil {
		return e.reverseEntryTx(opts.Tx, originalEntryID, reason, opts.CreatedBy)
	}

	var entryID string
	err := e.ctx.DB.Transaction(func(tx *gorm.DB) error {
		id, err := e.reverseEntryTx(tx, originalEntryID, reason, opts.CreatedBy)
		if err != nil {
			return err
		}
		entryID = id
		return nil
	})
	if err != nil {
		return "", err
	}
	return entryID, nil
}

func (e *Engine) reverseEntryTx(tx *gorm.DB, originalEntryID, reason, createdBy string) (string, error) {
	var original models.JournalEntry
	if err := tx.First(&original, "id = ?", originalEntryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", notFound("journal entry", originalEntryID)
		}
		return "", err
	}
	if original.Status != models.EntryPosted {
		return "", stateErrorf("entry #%d is %s, only posted entries can be reversed", original.EntryNumber, original.Status)
	}

	var lines []models.JournalLine
	if err := tx.Where("entry_id = ?", originalEntryID).Order("created_at").Find(&lines).Error; err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", notFound("journal lines for entry", originalEntryID)
	}

	number, err := e.sequences.Next(tx)
	if err != nil {
		return "", err
	}

	reversal := models.JournalEntry{
		ID:            models.NewID(),
		EntryNumber:   number,
		Date:          e.ctx.Clock.Now(),
		Description:   fmt.Sprintf("%s - Reverso de #%d", reason, original.EntryNumber),
		ReferenceType: models.RefReversal,
		ReferenceID:   null.StringFrom(originalEntryID),
		Status:        models.EntryPosted,
		CreatedBy:     null.NewString(createdBy, createdBy != ""),
	}
	if err := tx.Create(&reversal).Error; err != nil {
		return "", err
	}

	for _, line := range lines {
		mirror := models.JournalLine{
			ID:          models.NewID(),
			EntryID:     reversal.ID,
			AccountID:   line.AccountID,
			Debit:       line.Credit,
			Credit:      line.Debit,
			Description: "Reverso: " + line.Description,
		}
		if err := tx.Create(&mirror).Error; err != nil {
			return "", err
		}
		if err := applyBalance(tx, mirror.AccountID, mirror.Debit, mirror.Credit); err != nil {
			return "", err
		}
	}

	// Conditional update guards against a concurrent reversal slipping
	// between the status check above and this write.
	result := tx.Model(&models.JournalEntry{}).
		Where("id = ? AND status = ?", originalEntryID, models.EntryPosted).
		Update("status", models.EntryCancelled)
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected == 0 {
		return "", stateErrorf("entry #%d was already cancelled", original.EntryNumber)
	}

	return reversal.ID, nil
}

// GetEntry loads an entry with its lines.
func (e *Engine) GetEntry(entryID string) (*models.JournalEntry, []models.JournalLine, error) {
	var entry models.JournalEntry
	if err := e.ctx.DB.First(&entry, "id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, notFound("journal entry", entryID)
		}
		return nil, nil, err
	}

	var lines []models.JournalLine
	if err := e.ctx.DB.Where("entry_id = ?", entryID).Order("created_at").Find(&lines).Error; err != nil {
		return nil, nil, err
	}
	return &entry, lines, nil
}
