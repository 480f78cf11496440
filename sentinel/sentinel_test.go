package sentinel

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genesis-erp/ledger/accounting"
	"github.com/genesis-erp/ledger/config"
	"github.com/genesis-erp/ledger/models"
)

func newTestService(t *testing.T) (*accounting.Context, *Service) {
	t.Helper()

	db, err := config.NewDatabase(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   "file:" + t.Name() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)

	logger := config.NewLogger(config.LogConfig{Level: "error"})

	ctx, err := accounting.Bootstrap(db, logger)
	require.NoError(t, err)
	require.NoError(t, ctx.SeedDefaultChart())

	return ctx, NewService(db, logger)
}

func postSale(t *testing.T, ctx *accounting.Context) {
	t.Helper()

	engine := accounting.NewEngine(ctx)
	var cash, sales models.Account
	require.NoError(t, ctx.DB.First(&cash, "code = ?", accounting.CodeCash).Error)
	require.NoError(t, ctx.DB.First(&sales, "code = ?", accounting.CodeSales).Error)

	_, err := engine.CreateEntry(accounting.EntryParams{
		Description: "venta",
		Lines: []accounting.LineInput{
			{AccountID: cash.ID, Debit: decimal.NewFromInt(118)},
			{AccountID: sales.ID, Credit: decimal.NewFromInt(118)},
		},
	})
	require.NoError(t, err)
}

func TestAccountingEquationHoldsAfterPosting(t *testing.T) {
	ctx, service := newTestService(t)
	postSale(t, ctx)

	check, err := service.CheckAccountingEquation()
	require.NoError(t, err)
	assert.True(t, check.Balanced)
	assert.Equal(t, StatusGreen, check.Status)
	assert.True(t, check.Assets.Equal(decimal.NewFromInt(118)))
	assert.True(t, check.Revenue.Equal(decimal.NewFromInt(118)))
	assert.True(t, check.Difference.IsZero())
}

func TestAccountingEquationDetectsCorruption(t *testing.T) {
	ctx, service := newTestService(t)
	postSale(t, ctx)

	// corrupt one balance behind the engine's back
	require.NoError(t, ctx.DB.Model(&models.Account{}).
		Where("code = ?", accounting.CodeCash).
		Update("balance", decimal.NewFromInt(500)).Error)

	check, err := service.CheckAccountingEquation()
	require.NoError(t, err)
	assert.False(t, check.Balanced)
	assert.Equal(t, StatusRed, check.Status)
	assert.True(t, check.Difference.Equal(decimal.NewFromInt(382)))
}

func TestCheckOpenSessionYellowWhenDrawerClosed(t *testing.T) {
	_, service := newTestService(t)

	check, err := service.CheckOpenSession()
	require.NoError(t, err)
	assert.Equal(t, StatusYellow, check.Status)
}

func TestCheckOpenSessionGreenWithOpenDrawer(t *testing.T) {
	ctx, service := newTestService(t)

	session := models.CashSession{
		ID:            models.NewID(),
		RegisterID:    models.NewID(),
		Status:        models.SessionOpen,
		OpeningAmount: decimal.NewFromInt(100),
		ExpectedCash:  decimal.NewFromInt(100),
		OpenedBy:      "emp-1",
	}
	require.NoError(t, ctx.DB.Create(&session).Error)

	check, err := service.CheckOpenSession()
	require.NoError(t, err)
	assert.Equal(t, StatusGreen, check.Status)
}

func TestRunFullDiagnosticFoldsWorstStatus(t *testing.T) {
	ctx, service := newTestService(t)
	postSale(t, ctx)

	// books balanced, no open session: overall yellow
	diagnostic, err := service.RunFullDiagnostic()
	require.NoError(t, err)
	assert.Equal(t, StatusYellow, diagnostic.OverallStatus)
	assert.Len(t, diagnostic.Checks, 3)

	require.NoError(t, ctx.DB.Model(&models.Account{}).
		Where("code = ?", accounting.CodeCash).
		Update("balance", decimal.NewFromInt(999)).Error)

	diagnostic, err = service.RunFullDiagnostic()
	require.NoError(t, err)
	assert.Equal(t, StatusRed, diagnostic.OverallStatus)
}

func TestLogSinkRaise(t *testing.T) {
	logger := config.NewLogger(config.LogConfig{Level: "error"})
	sink := &LogSink{Logger: logger}

	err := sink.Raise(AlertCashEvidenceRequired, "varianza detectada", map[string]interface{}{
		"reference_id": "session-1",
	})
	assert.NoError(t, err)
}
