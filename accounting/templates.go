package accounting

import (
	"fmt"
	"time"

	"github.com/gookit/validate"
	"github.com/shopspring/decimal"

	"github.com/genesis-erp/ledger/models"
)

type PaymentMethod = string

var (
	PaymentCash     PaymentMethod = "efectivo"
	PaymentCard     PaymentMethod = "tarjeta"
	PaymentTransfer PaymentMethod = "transferencia"
)

// Sale is the slice of a completed sale the ledger cares about.
type Sale struct {
	ID         string          `json:"id" validate:"required"`
	SaleNumber string          `json:"sale_number"`
	EmployeeID string          `json:"employee_id"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax" validate:"TaxValidator"`
	Total      decimal.Decimal `json:"total"`
}

func (s Sale) TaxValidator(tax decimal.Decimal) bool {
	return !tax.IsNegative()
}

func (s Sale) Messages() map[string]string {
	return validate.MS{
		"required":     "sale.invalid_{field}",
		"TaxValidator": "sale.invalid_tax",
	}
}

type Commission struct {
	SaleID     string          `json:"sale_id"`
	EmployeeID string          `json:"employee_id"`
	Amount     decimal.Decimal `json:"amount"`
}

type Payroll struct {
	ID                   string          `json:"id" validate:"required"`
	Total                decimal.Decimal `json:"total" validate:"AmountValidator"`
	EmployerContribution decimal.Decimal `json:"employer_contribution" validate:"AmountValidator"`
	PeriodStart          string          `json:"period_start"`
	PeriodEnd            string          `json:"period_end"`
}

func (p Payroll) AmountValidator(amount decimal.Decimal) bool {
	return !amount.IsNegative()
}

func (p Payroll) Messages() map[string]string {
	return validate.MS{
		"required":        "payroll.invalid_{field}",
		"AmountValidator": "payroll.negative_amount",
	}
}

type Expense struct {
	ID          string          `json:"id" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	AccountCode string          `json:"account_code"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

func (e Expense) Messages() map[string]string {
	return validate.MS{
		"required": "expense.invalid_{field}",
	}
}

// EntryOptions carry optional metadata for template entries.
type EntryOptions struct {
	Description string
	CreatedBy   string
	Date        time.Time
}

// Templates assemble the lines for each business event and delegate
// every invariant to the engine. A resolution miss ("accounts not
// configured") is a recoverable condition: the template returns an
// empty entry id and no error, and the caller surfaces it to an
// operator. Invariant violations still fail loudly.
type Templates struct {
	engine   *Engine
	resolver *Resolver
}

func NewTemplates(engine *Engine, resolver *Resolver) *Templates {
	return &Templates{engine: engine, resolver: resolver}
}

func checkInput(s interface{}) error {
	v := validate.Struct(s)
	if !v.Validate() {
		return &ValidationError{Reason: v.Errors.One()}
	}
	return nil
}

// skipOnMiss separates "account not configured" from real failures.
func skipOnMiss(err error) (skip bool, out error) {
	if err == nil {
		return false, nil
	}
	if IsNotFound(err) {
		return true, nil
	}
	return false, err
}

// CreateSaleEntry posts a completed sale: debit cash or bank for the
// full amount, credit sales for the tax-exclusive subtotal, credit tax
// payable when tax > 0.
func (t *Templates) CreateSaleEntry(sale Sale, paymentMethod PaymentMethod) (string, error) {
	if err := checkInput(sale); err != nil {
		return "", err
	}

	cashCode := CodeCash
	if paymentMethod == PaymentCard || paymentMethod == PaymentTransfer {
		cashCode = CodeBank
	}

	cashAccount, err := t.resolver.ByCode(cashCode)
	if skip, err := skipOnMiss(err); skip || err != nil {
		return "", err
	}
	salesAccount, err := t.resolver.ByCode(CodeSales)
	if skip, err := skipOnMiss(err); skip || err != nil {
		return "", err
	}

	subtotal := sale.Subtotal
	if subtotal.IsZero() {
		subtotal = sale.Total.Sub(sale.Tax)
	}
	tax := sale.Tax
	total := subtotal.Add(tax)

	lines := []LineInput{
		{AccountID: cashAccount.ID, Debit: total, Description: "Ingreso por venta"},
		{AccountID: salesAccount.ID, Credit: subtotal, Description: "Ingreso por venta"},
	}
	if tax.IsPositive() {
		taxAccount, err := t.resolver.ByCode(CodeTaxPayable)
		if skip, err := skipOnMiss(err); skip || err != nil {
			return "", err
		}
		lines = append(lines, LineInput{AccountID: taxAccount.ID, Credit: tax, Description: "IVA por pagar"})
	}

	label := sale.SaleNumber
	if label == "" {
		label = sale.ID
	}

	return t.engine.CreateEntry(EntryParams{
		Description: fmt.Sprintf("Venta #%s", label),
		Reference:   models.Reference{ID: sale.ID, Type: models.RefSale},
		CreatedBy:   sale.EmployeeID,
		Lines:       lines,
	})
}

// CreateCostOfSaleEntry recognizes COGS: debit cost of sales, credit
// inventory. A cost of zero or less creates nothing, by design.
func (t *Templates) CreateCostOfSaleEntry(sale Sale, costTotal decimal.Decimal) (string, error) {
	if !costTotal.IsPositive() {
		return "", nil
	}

	costAccount, err := t.resolver.ByCode(CodeCostOfSales)
	if skip, err := skipOnMiss(err); skip || err != nil {
		return "", err
	}
	inventoryAccount, err := t.resolver.ByCode(CodeInventory)
	if skip, err := skipOnMiss(err); skip || err != nil {
		return "", err
	}

	label := sale.SaleNumber
	if label == "" {
		label = sale.ID
	}

	return t.engine.CreateEntry(EntryParams{
		Description: fmt.Sprintf("Costo Venta #%s", label),
		Reference:   models.Reference{ID: sale.ID, Type: models.RefSaleCost},
		CreatedBy:   sale.EmployeeID,
		Lines: []LineInput{
			{AccountID: costAccount.ID, Debit: costTotal, Description: "Costo de productos vendidos"},
			{AccountID: inventoryAccount.ID, Credit: costTotal, Description: "Salida de inventario"},
		},
	})
}

// CreateCommissionEntry accrues a batch of sales commissions: debit
// commission expense, credit the commissions-payable liability. Without
// a payable account the entry would be one-sided, so it is not created.
func (t *Templates) CreateCommissionEntry(commissions []Commission) (string, error) {
	if len(commissions) == 0 {
		return "", nil
	}

	total := decimal.Zero
	for _, commission := range commissions {
		total = total.Add(commission.Amount)
	}
	if !total.IsPositive() {
		return "", nil
	}

	expenseAccount, err := t.resolver.ByCode(CodeCommissionExpense)
	if skip, err := skipOnMiss(err); skip || err != nil {
		return "", err
	}
	payableAccount, err := t.resolver.ByTypeAndKeywords(models.TypeLiability, []string{"comision"})
	if skip, err := skipOnMiss(err); skip || err != nil {
		return "", err
	}

	return t.engine.CreateEntry(EntryParams{
		Description: "Comisiones por ventas",
		Reference:   models.Reference{ID: commissions[0].SaleID, Type: models.RefCommission},
		Lines: []LineInput{
			{AccountID: expenseAccount.ID, Debit: total, Description: "Comisiones del período"},
			{AccountID: payableAccount.ID, Credit: total, Description: "Comisiones por pagar"},
		},
	})
}

// CreatePayrollEntry posts a payroll run: debit payroll expense, debit
// the employer-contribution expense when one exists, credit cash/bank
// for the combined amount.
func (t *Templates) CreatePayrollEntry(payroll Payroll, opts *EntryOptions) (string, error) {
	if err := checkInput(payroll); err != nil {
		return "", err
	}
	if opts == nil {
		opts = &EntryOptions{}
	}

	amount := payroll.Total.Add(payroll.EmployerContribution)
	if !amount.IsPositive() {
		return "", nil
	}

	expenseAccount, err := t.resolver.ByCodesInOrder("5300", "6100", "6101")
	if IsNotFound(err) {
		expenseAccount, err = t.resolver.ByTypeAndKeywords(models.TypeExpense, []string{"personal", "sueld", "nomina", "salario"})
	}
	if IsNotFound(err) {
		expenseAccount, err = t.resolver.ByCode(CodeOperatingExpense)
	}
	if skip, err := skipOnMiss(err); skip || err != nil {
		return "", err
	}

	employerAccount, err := t.resolver.ByCodesInOrder("5310", "6110")
	if IsNotFound(err) {
		employerAccount, err = t.resolver.ByTypeAndKeywords(models.TypeExpense, []string{"aporte", "patronal", "seguridad", "social"})
	}
	if IsNotFound(err) {
		employerAccount, err = expenseAccount, nil
	}
	if err != nil {
		return "", err
	}

	cashAccount, err := t.resolver.ByCodesInOrder(cashOrBankCodes...)
	if skip, err := skipOnMiss(err); skip || err != nil {
		return "", err
	}

	description := opts.Description
	if description == "" {
		period := ""
		if payroll.PeriodStart != "" && payroll.PeriodEnd != "" {
			period = " " + payroll.PeriodStart + " - " + payroll.PeriodEnd
		}
		description = "Pago de nómina" + period
	}

	lines := make([]LineInput, 0, 3)
	if payroll.Total.IsPositive() {
		lines = append(lines, LineInput{AccountID: expenseAccount.ID, Debit: payroll.Total, Description: "Gasto de nómina"})
	}
	if payroll.EmployerContribution.IsPositive() {
		lines = append(lines, LineInput{AccountID: employerAccount.ID, Debit: payroll.EmployerContribution, Description: "Aporte patronal"})
	}
	lines = append(lines, LineInput{AccountID: cashAccount.ID, Credit: amount, Description: "Pago de nómina"})

	return t.engine.CreateEntry(EntryParams{
		Description: description,
		Reference:   models.Reference{ID: payroll.ID, Type: models.RefPayroll},
		CreatedBy:   opts.CreatedBy,
		Date:        opts.Date,
		Lines:       lines,
	})
}

// CreateExpenseEntry posts an out-of-pocket expense: debit the resolved
// expense account, credit cash/bank. Resolution order: explicit code,
// category keywords, generic fallback chain.
func (t *Templates) CreateExpenseEntry(expense Expense, opts *EntryOptions) (string, error) {
	if err := checkInput(expense); err != nil {
		return "", err
	}
	if opts == nil {
		opts = &EntryOptions{}
	}

	if !expense.Amount.IsPositive() {
		return "", nil
	}

	var expenseAccount *models.Account
	var err error
	if expense.AccountCode != "" {
		expenseAccount, err = t.resolver.ByCode(expense.AccountCode)
	} else {
		err = notFound("account", "")
	}
	if IsNotFound(err) {
		expenseAccount, err = t.resolver.ByTypeAndKeywords(models.TypeExpense, []string{expense.Category, "gasto", "servicio", "proveedor"})
	}
	if IsNotFound(err) {
		expenseAccount, err = t.resolver.ByCodesInOrder("5200", "5300", "6100", CodeOperatingExpense)
	}
	if skip, err := skipOnMiss(err); skip || err != nil {
		return "", err
	}

	cashAccount, err := t.resolver.ByCodesInOrder(cashOrBankCodes...)
	if skip, err := skipOnMiss(err); skip || err != nil {
		return "", err
	}

	description := opts.Description
	if description == "" {
		description = expense.Description
	}
	if description == "" {
		description = expense.Category
	}
	if description == "" {
		description = "Gasto"
	}

	date := opts.Date
	if date.IsZero() {
		date = expense.Date
	}

	return t.engine.CreateEntry(EntryParams{
		Description: description,
		Reference:   models.Reference{ID: expense.ID, Type: models.RefExpense},
		CreatedBy:   opts.CreatedBy,
		Date:        date,
		Lines: []LineInput{
			{AccountID: expenseAccount.ID, Debit: expense.Amount, Description: description},
			{AccountID: cashAccount.ID, Credit: expense.Amount, Description: "Salida de caja"},
		},
	})
}
