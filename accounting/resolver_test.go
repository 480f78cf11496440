package accounting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genesis-erp/ledger/models"
)

func TestResolverByCode(t *testing.T) {
	ctx := newTestContext(t)
	resolver, err := NewResolver(ctx)
	require.NoError(t, err)

	account, err := resolver.ByCode(CodeCash)
	require.NoError(t, err)
	assert.Equal(t, "Caja", account.Name)
	assert.Equal(t, models.TypeAsset, account.Type)

	_, err = resolver.ByCode("9999")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestResolverByCodesInOrder(t *testing.T) {
	ctx := newTestContext(t)
	resolver, err := NewResolver(ctx)
	require.NoError(t, err)

	// 1100 and 1200 do not exist in the default chart, 1101 does
	account, err := resolver.ByCodesInOrder(cashOrBankCodes...)
	require.NoError(t, err)
	assert.Equal(t, CodeCash, account.Code)

	_, err = resolver.ByCodesInOrder("9998", "9999")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestResolverByTypeAndKeywords(t *testing.T) {
	ctx := newTestContext(t)
	resolver, err := NewResolver(ctx)
	require.NoError(t, err)

	account, err := resolver.ByTypeAndKeywords(models.TypeLiability, []string{"comision"})
	require.NoError(t, err)
	assert.Equal(t, CodeCommissionPayable, account.Code)

	// keyword order wins over code order
	account, err = resolver.ByTypeAndKeywords(models.TypeExpense, []string{"operativo", "personal"})
	require.NoError(t, err)
	assert.Equal(t, CodeOperatingExpense, account.Code)

	// within one keyword, lowest code wins
	account, err = resolver.ByTypeAndKeywords(models.TypeExpense, []string{"gasto"})
	require.NoError(t, err)
	assert.Equal(t, CodePayrollExpense, account.Code)

	_, err = resolver.ByTypeAndKeywords(models.TypeAsset, []string{"no-such-name"})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestResolverIgnoresInactiveAccounts(t *testing.T) {
	ctx := newTestContext(t)

	require.NoError(t, ctx.DB.Model(&models.Account{}).
		Where("code = ?", CodeBank).
		Update("active", false).Error)

	resolver, err := NewResolver(ctx)
	require.NoError(t, err)

	_, err = resolver.ByCode(CodeBank)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestResolverRefreshPicksUpNewAccounts(t *testing.T) {
	ctx := newTestContext(t)
	resolver, err := NewResolver(ctx)
	require.NoError(t, err)

	account := models.Account{
		ID:     models.NewID(),
		Code:   "7101",
		Name:   "Otros Ingresos",
		Type:   models.TypeRevenue,
		Active: true,
	}
	require.NoError(t, ctx.DB.Create(&account).Error)

	_, err = resolver.ByCode("7101")
	assert.True(t, IsNotFound(err))

	require.NoError(t, resolver.Refresh())

	found, err := resolver.ByCode("7101")
	require.NoError(t, err)
	assert.Equal(t, "Otros Ingresos", found.Name)
}
