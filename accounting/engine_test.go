package accounting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genesis-erp/ledger/config"
	"github.com/genesis-erp/ledger/models"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newTestContext(t *testing.T) *Context {
	t.Helper()

	db, err := config.NewDatabase(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   "file:" + t.Name() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)

	logger := config.NewLogger(config.LogConfig{Level: "error"})

	ctx, err := Bootstrap(db, logger, WithClock(fixedClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}))
	require.NoError(t, err)
	require.NoError(t, ctx.SeedDefaultChart())

	return ctx
}

func accountByCode(t *testing.T, ctx *Context, code string) *models.Account {
	t.Helper()
	var account models.Account
	require.NoError(t, ctx.DB.First(&account, "code = ?", code).Error)
	return &account
}

func d(value string) decimal.Decimal {
	out, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return out
}

func TestCreateEntryBalancesAndPersists(t *testing.T) {
	ctx := newTestContext(t)
	engine := NewEngine(ctx)

	cash := accountByCode(t, ctx, CodeCash)
	sales := accountByCode(t, ctx, CodeSales)

	entryID, err := engine.CreateEntry(EntryParams{
		Description: "Venta manual",
		Reference:   models.Reference{ID: "sale-1", Type: models.RefSale},
		CreatedBy:   "emp-1",
		Lines: []LineInput{
			{AccountID: cash.ID, Debit: d("118.00"), Description: "Ingreso"},
			{AccountID: sales.ID, Credit: d("118.00"), Description: "Venta"},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, entryID)

	entry, lines, err := engine.GetEntry(entryID)
	require.NoError(t, err)
	assert.Equal(t, models.EntryPosted, entry.Status)
	assert.Equal(t, int64(1), entry.EntryNumber)
	require.Len(t, lines, 2)

	var debits, credits decimal.Decimal
	for _, line := range lines {
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	assert.True(t, debits.Equal(credits), "debits %s != credits %s", debits, credits)

	assert.True(t, accountByCode(t, ctx, CodeCash).Balance.Equal(d("118.00")))
	assert.True(t, accountByCode(t, ctx, CodeSales).Balance.Equal(d("118.00")))
}

func TestCreateEntryRejectsSingleLine(t *testing.T) {
	ctx := newTestContext(t)
	engine := NewEngine(ctx)
	cash := accountByCode(t, ctx, CodeCash)

	_, err := engine.CreateEntry(EntryParams{
		Description: "half an entry",
		Lines: []LineInput{
			{AccountID: cash.ID, Debit: d("10.00")},
		},
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestCreateEntryRejectsUnbalancedLines(t *testing.T) {
	ctx := newTestContext(t)
	engine := NewEngine(ctx)
	cash := accountByCode(t, ctx, CodeCash)
	sales := accountByCode(t, ctx, CodeSales)

	_, err := engine.CreateEntry(EntryParams{
		Description: "unbalanced",
		Lines: []LineInput{
			{AccountID: cash.ID, Debit: d("100.00")},
			{AccountID: sales.ID, Credit: d("99.99")},
		},
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// nothing may be persisted
	var entries int64
	require.NoError(t, ctx.DB.Model(&models.JournalEntry{}).Count(&entries).Error)
	assert.Zero(t, entries)
	assert.True(t, accountByCode(t, ctx, CodeCash).Balance.IsZero())
}

func TestCreateEntryRejectsNegativeAmounts(t *testing.T) {
	ctx := newTestContext(t)
	engine := NewEngine(ctx)
	cash := accountByCode(t, ctx, CodeCash)
	sales := accountByCode(t, ctx, CodeSales)

	_, err := engine.CreateEntry(EntryParams{
		Description: "negative",
		Lines: []LineInput{
			{AccountID: cash.ID, Debit: d("-5.00")},
			{AccountID: sales.ID, Credit: d("-5.00")},
		},
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestCreateEntryUnknownAccountRollsBack(t *testing.T) {
	ctx := newTestContext(t)
	engine := NewEngine(ctx)
	cash := accountByCode(t, ctx, CodeCash)

	_, err := engine.CreateEntry(EntryParams{
		Description: "dangling account",
		Lines: []LineInput{
			{AccountID: cash.ID, Debit: d("50.00")},
			{AccountID: "no-such-account", Credit: d("50.00")},
		},
	})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var entries, lines int64
	require.NoError(t, ctx.DB.Model(&models.JournalEntry{}).Count(&entries).Error)
	require.NoError(t, ctx.DB.Model(&models.JournalLine{}).Count(&lines).Error)
	assert.Zero(t, entries)
	assert.Zero(t, lines)
	assert.True(t, accountByCode(t, ctx, CodeCash).Balance.IsZero())
}

func TestSignConventionPerAccountType(t *testing.T) {
	ctx := newTestContext(t)
	engine := NewEngine(ctx)

	inventory := accountByCode(t, ctx, CodeInventory)
	tax := accountByCode(t, ctx, CodeTaxPayable)

	// debit an asset, credit a liability: both balances grow
	_, err := engine.CreateEntry(EntryParams{
		Description: "sign check",
		Lines: []LineInput{
			{AccountID: inventory.ID, Debit: d("40.00")},
			{AccountID: tax.ID, Credit: d("40.00")},
		},
	})
	require.NoError(t, err)

	assert.True(t, accountByCode(t, ctx, CodeInventory).Balance.Equal(d("40.00")))
	assert.True(t, accountByCode(t, ctx, CodeTaxPayable).Balance.Equal(d("40.00")))
}

func TestReverseEntryMirrorsLinesAndRestoresBalances(t *testing.T) {
	ctx := newTestContext(t)
	engine := NewEngine(ctx)

	cash := accountByCode(t, ctx, CodeCash)
	sales := accountByCode(t, ctx, CodeSales)
	tax := accountByCode(t, ctx, CodeTaxPayable)

	originalID, err := engine.CreateEntry(EntryParams{
		Description: "Venta #42",
		Reference:   models.Reference{ID: "sale-42", Type: models.RefSale},
		Lines: []LineInput{
			{AccountID: cash.ID, Debit: d("118.00")},
			{AccountID: sales.ID, Credit: d("100.00")},
			{AccountID: tax.ID, Credit: d("18.00")},
		},
	})
	require.NoError(t, err)

	reversalID, err := engine.ReverseEntry(originalID, "Anulación", nil)
	require.NoError(t, err)
	require.NotEmpty(t, reversalID)

	reversal, lines, err := engine.GetEntry(reversalID)
	require.NoError(t, err)
	assert.Equal(t, models.RefReversal, reversal.ReferenceType)
	assert.Equal(t, originalID, reversal.ReferenceID.String)
	require.Len(t, lines, 3)

	byAccount := make(map[string]models.JournalLine)
	for _, line := range lines {
		byAccount[line.AccountID] = line
	}
	assert.True(t, byAccount[cash.ID].Credit.Equal(d("118.00")))
	assert.True(t, byAccount[sales.ID].Debit.Equal(d("100.00")))
	assert.True(t, byAccount[tax.ID].Debit.Equal(d("18.00")))

	// all touched balances return to their pre-entry values
	assert.True(t, accountByCode(t, ctx, CodeCash).Balance.IsZero())
	assert.True(t, accountByCode(t, ctx, CodeSales).Balance.IsZero())
	assert.True(t, accountByCode(t, ctx, CodeTaxPayable).Balance.IsZero())

	original, _, err := engine.GetEntry(originalID)
	require.NoError(t, err)
	assert.Equal(t, models.EntryCancelled, original.Status)
}

func TestReverseEntryTwiceIsStateError(t *testing.T) {
	ctx := newTestContext(t)
	engine := NewEngine(ctx)

	cash := accountByCode(t, ctx, CodeCash)
	sales := accountByCode(t, ctx, CodeSales)

	originalID, err := engine.CreateEntry(EntryParams{
		Description: "once",
		Lines: []LineInput{
			{AccountID: cash.ID, Debit: d("10.00")},
			{AccountID: sales.ID, Credit: d("10.00")},
		},
	})
	require.NoError(t, err)

	_, err = engine.ReverseEntry(originalID, "first", nil)
	require.NoError(t, err)

	_, err = engine.ReverseEntry(originalID, "second", nil)
	require.Error(t, err)
	assert.True(t, IsState(err))
}

func TestReverseEntryUnknownIsNotFound(t *testing.T) {
	ctx := newTestContext(t)
	engine := NewEngine(ctx)

	_, err := engine.ReverseEntry("missing", "reason", nil)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestEntryNumbersStrictlyIncrease(t *testing.T) {
	ctx := newTestContext(t)
	engine := NewEngine(ctx)

	cash := accountByCode(t, ctx, CodeCash)
	sales := accountByCode(t, ctx, CodeSales)

	seen := make(map[int64]bool)
	last := int64(0)
	for i := 0; i < 10; i++ {
		entryID, err := engine.CreateEntry(EntryParams{
			Description: "seq",
			Lines: []LineInput{
				{AccountID: cash.ID, Debit: d("1.00")},
				{AccountID: sales.ID, Credit: d("1.00")},
			},
		})
		require.NoError(t, err)

		entry, _, err := engine.GetEntry(entryID)
		require.NoError(t, err)
		assert.Greater(t, entry.EntryNumber, last)
		assert.False(t, seen[entry.EntryNumber])
		seen[entry.EntryNumber] = true
		last = entry.EntryNumber
	}
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(11800), Cents(d("118.00")))
	assert.Equal(t, int64(1000), Cents(d("9.995")))
	assert.Equal(t, int64(999), Cents(d("9.994")))
}
