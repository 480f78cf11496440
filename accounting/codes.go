package accounting

import "github.com/genesis-erp/ledger/models"

// Default account codes the entry templates post against. Installations
// with a custom chart only need matching codes or names; the resolver's
// fallback chains cover older charts that used 1100/1200 for cash and
// bank.
const (
	CodeCash              = "1101"
	CodeBank              = "1102"
	CodeReceivables       = "1103"
	CodeInventory         = "1104"
	CodeTaxPayable        = "2101"
	CodeCommissionPayable = "2102"
	CodeCapital           = "3101"
	CodeSales             = "4101"
	CodeCostOfSales       = "5101"
	CodePayrollExpense    = "5300"
	CodeEmployerExpense   = "5310"
	CodeOperatingExpense  = "6101"
	CodeCommissionExpense = "6102"
)

var cashOrBankCodes = []string{"1100", "1200", CodeCash, CodeBank}

// DefaultChart is the chart of accounts seeded for a fresh install.
func DefaultChart() []models.Account {
	return []models.Account{
		{Code: CodeCash, Name: "Caja", Type: models.TypeAsset},
		{Code: CodeBank, Name: "Banco", Type: models.TypeAsset},
		{Code: CodeReceivables, Name: "Cuentas por Cobrar", Type: models.TypeAsset},
		{Code: CodeInventory, Name: "Inventario", Type: models.TypeAsset},
		{Code: CodeTaxPayable, Name: "IVA por Pagar", Type: models.TypeLiability},
		{Code: CodeCommissionPayable, Name: "Comisiones por Pagar", Type: models.TypeLiability},
		{Code: CodeCapital, Name: "Capital", Type: models.TypeEquity},
		{Code: CodeSales, Name: "Ventas", Type: models.TypeRevenue},
		{Code: CodeCostOfSales, Name: "Costo de Ventas", Type: models.TypeExpense},
		{Code: CodePayrollExpense, Name: "Gastos de Personal", Type: models.TypeExpense},
		{Code: CodeEmployerExpense, Name: "Aportes Patronales", Type: models.TypeExpense},
		{Code: CodeOperatingExpense, Name: "Gastos Operativos", Type: models.TypeExpense},
		{Code: CodeCommissionExpense, Name: "Comisiones", Type: models.TypeExpense},
	}
}
