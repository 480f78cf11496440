package sentinel

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/genesis-erp/ledger/models"
)

type HealthStatus = string

var (
	StatusGreen  HealthStatus = "green"
	StatusYellow HealthStatus = "yellow"
	StatusRed    HealthStatus = "red"
)

// EquationCheck reports whether the books satisfy
// assets == liabilities + equity + (revenue - expenses).
type EquationCheck struct {
	Status      HealthStatus    `json:"status"`
	Assets      decimal.Decimal `json:"assets"`
	Liabilities decimal.Decimal `json:"liabilities"`
	Equity      decimal.Decimal `json:"equity"`
	Revenue     decimal.Decimal `json:"revenue"`
	Expenses    decimal.Decimal `json:"expenses"`
	Difference  decimal.Decimal `json:"difference"`
	Balanced    bool            `json:"balanced"`
}

type Check struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail interface{}  `json:"detail,omitempty"`
}

type Diagnostic struct {
	OverallStatus HealthStatus `json:"overall_status"`
	Checks        []Check      `json:"checks"`
	Timestamp     time.Time    `json:"timestamp"`
}

// Service runs system health diagnostics over the ledger store.
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{db: db, logger: logger}
}

func (s *Service) sumBalances(accountType models.AccountType) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := s.db.Model(&models.Account{}).
		Select("COALESCE(SUM(balance), 0) AS total").
		Where("type = ? AND active = ?", accountType, true).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// CheckAccountingEquation folds every active account balance into the
// extended accounting equation. Revenue and expenses stand in for
// retained earnings that have not been closed to equity yet.
func (s *Service) CheckAccountingEquation() (*EquationCheck, error) {
	check := &EquationCheck{}

	var err error
	if check.Assets, err = s.sumBalances(models.TypeAsset); err != nil {
		return nil, err
	}
	if check.Liabilities, err = s.sumBalances(models.TypeLiability); err != nil {
		return nil, err
	}
	if check.Equity, err = s.sumBalances(models.TypeEquity); err != nil {
		return nil, err
	}
	if check.Revenue, err = s.sumBalances(models.TypeRevenue); err != nil {
		return nil, err
	}
	if check.Expenses, err = s.sumBalances(models.TypeExpense); err != nil {
		return nil, err
	}

	retained := check.Revenue.Sub(check.Expenses)
	check.Difference = check.Assets.Sub(check.Liabilities.Add(check.Equity).Add(retained))
	check.Balanced = check.Difference.Abs().LessThan(decimal.NewFromFloat(0.01))
	if check.Balanced {
		check.Status = StatusGreen
	} else {
		check.Status = StatusRed
	}
	return check, nil
}

// CheckOpenSession reports yellow when no drawer is open, which during
// business hours usually means the shift was never started.
func (s *Service) CheckOpenSession() (Check, error) {
	var count int64
	err := s.db.Model(&models.CashSession{}).
		Where("status = ?", models.SessionOpen).
		Count(&count).Error
	if err != nil {
		return Check{}, err
	}

	status := StatusGreen
	if count == 0 {
		status = StatusYellow
	}
	return Check{Name: "Sesión de Caja", Status: status, Detail: map[string]interface{}{
		"open_sessions": count,
	}}, nil
}

func (s *Service) checkTodayEntries() (Check, error) {
	today := time.Now().Truncate(24 * time.Hour)

	var count int64
	err := s.db.Model(&models.JournalEntry{}).
		Where("date >= ? AND status = ?", today, models.EntryPosted).
		Count(&count).Error
	if err != nil {
		return Check{}, err
	}
	return Check{Name: "Asientos del Día", Status: StatusGreen, Detail: map[string]interface{}{
		"entries": count,
	}}, nil
}

func worse(current, candidate HealthStatus) HealthStatus {
	if current == StatusRed || candidate == StatusRed {
		return StatusRed
	}
	if current == StatusYellow || candidate == StatusYellow {
		return StatusYellow
	}
	return StatusGreen
}

// RunFullDiagnostic executes every check and folds the statuses.
func (s *Service) RunFullDiagnostic() (*Diagnostic, error) {
	diagnostic := &Diagnostic{
		OverallStatus: StatusGreen,
		Timestamp:     time.Now(),
	}

	equation, err := s.CheckAccountingEquation()
	if err != nil {
		return nil, err
	}
	diagnostic.Checks = append(diagnostic.Checks, Check{
		Name:   "Ecuación Contable",
		Status: equation.Status,
		Detail: equation,
	})
	diagnostic.OverallStatus = worse(diagnostic.OverallStatus, equation.Status)

	session, err := s.CheckOpenSession()
	if err != nil {
		return nil, err
	}
	diagnostic.Checks = append(diagnostic.Checks, session)
	diagnostic.OverallStatus = worse(diagnostic.OverallStatus, session.Status)

	entries, err := s.checkTodayEntries()
	if err != nil {
		return nil, err
	}
	diagnostic.Checks = append(diagnostic.Checks, entries)
	diagnostic.OverallStatus = worse(diagnostic.OverallStatus, entries.Status)

	return diagnostic, nil
}
