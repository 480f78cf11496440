package cashier

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/genesis-erp/ledger/accounting"
	"github.com/genesis-erp/ledger/models"
)

// SessionSummary is a session with its movement trail and the net cash
// change over the shift.
type SessionSummary struct {
	Session   models.CashSession    `json:"session"`
	Movements []models.CashMovement `json:"movements"`
	NetChange decimal.Decimal       `json:"net_change"`
}

func (m *Manager) GetSessionSummary(sessionID string) (*SessionSummary, error) {
	var session models.CashSession
	if err := m.ctx.DB.First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &accounting.NotFoundError{Resource: "cash session", Key: sessionID}
		}
		return nil, err
	}

	var movements []models.CashMovement
	if err := m.ctx.DB.Where("session_id = ?", sessionID).Order("created_at").Find(&movements).Error; err != nil {
		return nil, err
	}

	netChange := session.TotalSales.
		Sub(session.TotalRefunds).
		Add(session.TotalCashIn).
		Sub(session.TotalCashOut)

	return &SessionSummary{
		Session:   session,
		Movements: movements,
		NetChange: netChange,
	}, nil
}

// GetHistory returns the register's most recent sessions, newest
// first.
func (m *Manager) GetHistory(limit int) ([]models.CashSession, error) {
	if limit <= 0 {
		limit = 30
	}

	var sessions []models.CashSession
	err := m.ctx.DB.
		Where("register_id = ?", m.registerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// VarianceReportRow is one closed session in the variance report.
type VarianceReportRow struct {
	SessionID string          `json:"session_id"`
	ClosedAt  time.Time       `json:"closed_at"`
	Expected  decimal.Decimal `json:"expected"`
	Declared  decimal.Decimal `json:"declared"`
	Variance  decimal.Decimal `json:"variance"`
	ClosedBy  string          `json:"closed_by"`
}

type VarianceReport struct {
	Start         time.Time           `json:"start"`
	End           time.Time           `json:"end"`
	TotalSessions int                 `json:"total_sessions"`
	TotalVariance decimal.Decimal     `json:"total_variance"`
	ShortageCount int                 `json:"shortage_count"`
	ShortageTotal decimal.Decimal     `json:"shortage_total"`
	OverageCount  int                 `json:"overage_count"`
	OverageTotal  decimal.Decimal     `json:"overage_total"`
	Sessions      []VarianceReportRow `json:"sessions"`
}

// GetVarianceReport aggregates closed sessions in the period.
func (m *Manager) GetVarianceReport(start, end time.Time) (*VarianceReport, error) {
	var sessions []models.CashSession
	err := m.ctx.DB.
		Where("register_id = ? AND status = ? AND closed_at BETWEEN ? AND ?",
			m.registerID, models.SessionClosed, start, end).
		Order("closed_at").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	report := &VarianceReport{
		Start:         start,
		End:           end,
		TotalSessions: len(sessions),
		TotalVariance: decimal.Zero,
		ShortageTotal: decimal.Zero,
		OverageTotal:  decimal.Zero,
	}

	for _, session := range sessions {
		variance := session.Variance.Decimal
		report.TotalVariance = report.TotalVariance.Add(variance)
		switch {
		case variance.IsNegative():
			report.ShortageCount++
			report.ShortageTotal = report.ShortageTotal.Add(variance.Abs())
		case variance.IsPositive():
			report.OverageCount++
			report.OverageTotal = report.OverageTotal.Add(variance)
		}

		report.Sessions = append(report.Sessions, VarianceReportRow{
			SessionID: session.ID,
			ClosedAt:  session.ClosedAt.Time,
			Expected:  session.ExpectedCash,
			Declared:  session.DeclaredAmount.Decimal,
			Variance:  variance,
			ClosedBy:  session.ClosedBy.String,
		})
	}

	return report, nil
}
