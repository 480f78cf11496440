package cashier

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"
	"gorm.io/gorm"

	"github.com/genesis-erp/ledger/accounting"
	"github.com/genesis-erp/ledger/models"
	"github.com/genesis-erp/ledger/sentinel"
)

// centTolerance is the largest difference still considered "balanced".
var centTolerance = decimal.New(1, -2)

// DenominationCount maps a denomination label ("500", "25") to how many
// pieces the operator counted. Stored as serialized JSON alongside the
// session.
type DenominationCount map[string]int

// BlindCloseSummary is what the operator sees when the close starts.
// It deliberately omits the expected cash: the drawer must be counted
// and declared before the system reveals its own number, otherwise the
// count is a rubber stamp.
type BlindCloseSummary struct {
	SessionID        string          `json:"session_id"`
	OpenedAt         time.Time       `json:"opened_at"`
	OpeningAmount    decimal.Decimal `json:"opening_amount"`
	TransactionCount int64           `json:"transaction_count"`
}

// ClosingReport is the full reconciliation returned once the declared
// amount is locked in.
type ClosingReport struct {
	SessionID        string          `json:"session_id"`
	OpenedAt         time.Time       `json:"opened_at"`
	ClosedAt         time.Time       `json:"closed_at"`
	OpeningAmount    decimal.Decimal `json:"opening_amount"`
	TotalSales       decimal.Decimal `json:"total_sales"`
	TotalRefunds     decimal.Decimal `json:"total_refunds"`
	TotalCashIn      decimal.Decimal `json:"total_cash_in"`
	TotalCashOut     decimal.Decimal `json:"total_cash_out"`
	TransactionCount int64           `json:"transaction_count"`
	ExpectedCash     decimal.Decimal `json:"expected_cash"`
	DeclaredAmount   decimal.Decimal `json:"declared_amount"`
	Variance         decimal.Decimal `json:"variance"`
	VarianceType     string          `json:"variance_type"`
	IsBalanced       bool            `json:"is_balanced"`
}

// Manager drives the drawer lifecycle for one register:
// open -> movements -> blind close. Sessions never skip the closing
// state and never move backward.
type Manager struct {
	ctx        *accounting.Context
	registerID string
	settings   SettingsProvider
	alerts     sentinel.AlertSink
}

func NewManager(ctx *accounting.Context, registerID string, settings SettingsProvider, alerts sentinel.AlertSink) *Manager {
	return &Manager{ctx: ctx, registerID: registerID, settings: settings, alerts: alerts}
}

func marshalDenominations(denominations DenominationCount) null.String {
	if len(denominations) == 0 {
		return null.String{}
	}
	payload, err := json.Marshal(denominations)
	if err != nil {
		return null.String{}
	}
	return null.StringFrom(string(payload))
}

func (m *Manager) audit(tx *gorm.DB, entityID, action, userID string, details map[string]interface{}) error {
	log := models.AuditLog{
		ID:       models.NewID(),
		Entity:   "cash_session",
		EntityID: entityID,
		Action:   action,
		UserID:   null.NewString(userID, userID != ""),
	}
	if details != nil {
		payload, err := json.Marshal(details)
		if err != nil {
			return err
		}
		log.Details = null.StringFrom(string(payload))
	}
	return tx.Create(&log).Error
}

// GetCurrentSession returns the register's open session, or nil when
// the drawer is closed.
func (m *Manager) GetCurrentSession() (*models.CashSession, error) {
	var session models.CashSession
	err := m.ctx.DB.
		Where("register_id = ? AND status = ?", m.registerID, models.SessionOpen).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// OpenDrawer starts a shift. It fails with a StateError while another
// session on this register is still open or mid-close: a drawer being
// counted still owns the till.
func (m *Manager) OpenDrawer(userID string, openingAmount decimal.Decimal, denominations DenominationCount) (*models.CashSession, error) {
	if openingAmount.IsNegative() {
		return nil, &accounting.ValidationError{Reason: "opening amount cannot be negative"}
	}

	var session models.CashSession
	err := m.ctx.DB.Transaction(func(tx *gorm.DB) error {
		var active int64
		err := tx.Model(&models.CashSession{}).
			Where("register_id = ? AND status IN ?", m.registerID, []string{models.SessionOpen, models.SessionClosing}).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return &accounting.StateError{Reason: "a cash session is already active on this register"}
		}

		now := m.ctx.Clock.Now()
		session = models.CashSession{
			ID:                  models.NewID(),
			RegisterID:          m.registerID,
			Status:              models.SessionOpen,
			OpeningAmount:       openingAmount.Round(2),
			OpeningDenomination: marshalDenominations(denominations),
			ExpectedCash:        openingAmount.Round(2),
			TransactionCount:    1,
			OpenedBy:            userID,
			OpenedAt:            now,
		}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}

		movement := models.CashMovement{
			ID:          models.NewID(),
			SessionID:   session.ID,
			Type:        models.MovementOpening,
			Amount:      openingAmount.Round(2),
			Description: "Apertura de caja",
			CreatedBy:   null.NewString(userID, userID != ""),
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}

		return m.audit(tx, session.ID, "open", userID, map[string]interface{}{
			"opening_amount": openingAmount.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// RecordMovement appends one drawer event and folds it into the running
// counters. Only legal while the session is open; refunds and cash-outs
// can never drive expected cash negative.
func (m *Manager) RecordMovement(sessionID string, movementType models.MovementType, amount decimal.Decimal, description string, ref models.Reference, userID string) (string, error) {
	switch movementType {
	case models.MovementSale, models.MovementRefund, models.MovementCashIn, models.MovementCashOut:
	default:
		return "", &accounting.ValidationError{Reason: "unknown movement type " + movementType}
	}
	if !amount.IsPositive() {
		return "", &accounting.ValidationError{Reason: "movement amount must be positive"}
	}
	amount = amount.Round(2)

	var movementID string
	err := m.ctx.DB.Transaction(func(tx *gorm.DB) error {
		var session models.CashSession
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &accounting.NotFoundError{Resource: "cash session", Key: sessionID}
			}
			return err
		}
		if session.Status != models.SessionOpen {
			return &accounting.StateError{Reason: "cash session is " + session.Status + ", movements need an open session"}
		}

		if movementType == models.MovementRefund || movementType == models.MovementCashOut {
			if amount.GreaterThan(session.ExpectedCash) {
				return &accounting.ValidationError{Reason: "insufficient funds: available " + session.ExpectedCash.StringFixed(2)}
			}
		}

		movement := models.CashMovement{
			ID:          models.NewID(),
			SessionID:   sessionID,
			Type:        movementType,
			Amount:      amount,
			Description: description,
			ReferenceID: null.NewString(ref.ID, ref.ID != ""),
			CreatedBy:   null.NewString(userID, userID != ""),
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"transaction_count": gorm.Expr("transaction_count + 1"),
		}
		switch movementType {
		case models.MovementSale:
			updates["total_sales"] = gorm.Expr("total_sales + ?", amount)
			updates["expected_cash"] = gorm.Expr("expected_cash + ?", amount)
		case models.MovementRefund:
			updates["total_refunds"] = gorm.Expr("total_refunds + ?", amount)
			updates["expected_cash"] = gorm.Expr("expected_cash - ?", amount)
		case models.MovementCashIn:
			updates["total_cash_in"] = gorm.Expr("total_cash_in + ?", amount)
			updates["expected_cash"] = gorm.Expr("expected_cash + ?", amount)
		case models.MovementCashOut:
			updates["total_cash_out"] = gorm.Expr("total_cash_out + ?", amount)
			updates["expected_cash"] = gorm.Expr("expected_cash - ?", amount)
		}

		result := tx.Model(&models.CashSession{}).
			Where("id = ? AND status = ?", sessionID, models.SessionOpen).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &accounting.StateError{Reason: "cash session closed while recording movement"}
		}

		movementID = movement.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return movementID, nil
}

// RecordSale registers the cash portion of a completed sale. A sale
// without an open session is allowed (the POS keeps selling); it is
// logged and skipped.
func (m *Manager) RecordSale(cashAmount decimal.Decimal, saleID, userID string) (string, error) {
	session, err := m.GetCurrentSession()
	if err != nil {
		return "", err
	}
	if session == nil {
		m.ctx.Logger.Warnf("sale %s recorded without an active cash session", saleID)
		return "", nil
	}
	return m.RecordMovement(session.ID, models.MovementSale, cashAmount, "Venta "+saleID, models.Reference{ID: saleID, Type: models.RefSale}, userID)
}

// RecordRefund registers cash handed back for a refunded sale.
func (m *Manager) RecordRefund(amount decimal.Decimal, saleID, userID string) (string, error) {
	session, err := m.requireCurrentSession()
	if err != nil {
		return "", err
	}
	return m.RecordMovement(session.ID, models.MovementRefund, amount, "Devolución "+saleID, models.Reference{ID: saleID, Type: models.RefSale}, userID)
}

// CashIn registers cash added to the drawer outside a sale.
func (m *Manager) CashIn(amount decimal.Decimal, description, userID string) (string, error) {
	session, err := m.requireCurrentSession()
	if err != nil {
		return "", err
	}
	if description == "" {
		description = "Entrada de efectivo"
	}
	return m.RecordMovement(session.ID, models.MovementCashIn, amount, description, models.Reference{}, userID)
}

// CashOut registers cash removed from the drawer.
func (m *Manager) CashOut(amount decimal.Decimal, description, userID string) (string, error) {
	session, err := m.requireCurrentSession()
	if err != nil {
		return "", err
	}
	if description == "" {
		description = "Salida de efectivo"
	}
	return m.RecordMovement(session.ID, models.MovementCashOut, amount, description, models.Reference{}, userID)
}

func (m *Manager) requireCurrentSession() (*models.CashSession, error) {
	session, err := m.GetCurrentSession()
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, &accounting.StateError{Reason: "no open cash session"}
	}
	return session, nil
}

// StartBlindClose freezes the session (no further movements) and
// returns the summary the operator counts against. The expected cash is
// withheld until the declared amount is submitted.
func (m *Manager) StartBlindClose(userID string) (*BlindCloseSummary, error) {
	session, err := m.requireCurrentSession()
	if err != nil {
		return nil, err
	}

	err = m.ctx.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.CashSession{}).
			Where("id = ? AND status = ?", session.ID, models.SessionOpen).
			Update("status", models.SessionClosing)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &accounting.StateError{Reason: "cash session is no longer open"}
		}
		return m.audit(tx, session.ID, "start_blind_close", userID, nil)
	})
	if err != nil {
		return nil, err
	}

	return &BlindCloseSummary{
		SessionID:        session.ID,
		OpenedAt:         session.OpenedAt,
		OpeningAmount:    session.OpeningAmount,
		TransactionCount: session.TransactionCount,
	}, nil
}

// SubmitBlindClose locks in the declared amount, computes the variance
// and closes the session. Declared amount and variance are written
// exactly once; submitting a closed session is a StateError.
func (m *Manager) SubmitBlindClose(sessionID, userID string, declaredAmount decimal.Decimal, denominations DenominationCount, notes string) (*ClosingReport, error) {
	if declaredAmount.IsNegative() {
		return nil, &accounting.ValidationError{Reason: "declared amount cannot be negative"}
	}
	declaredAmount = declaredAmount.Round(2)

	var session models.CashSession
	var variance decimal.Decimal
	var closedAt time.Time

	err := m.ctx.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &accounting.NotFoundError{Resource: "cash session", Key: sessionID}
			}
			return err
		}
		switch session.Status {
		case models.SessionClosed:
			return &accounting.StateError{Reason: "cash session is already closed"}
		case models.SessionOpen:
			return &accounting.StateError{Reason: "blind close has not been started"}
		}

		closedAt = m.ctx.Clock.Now()
		variance = declaredAmount.Sub(session.ExpectedCash).Round(2)

		result := tx.Model(&models.CashSession{}).
			Where("id = ? AND status = ?", sessionID, models.SessionClosing).
			Updates(map[string]interface{}{
				"status":               models.SessionClosed,
				"declared_amount":      declaredAmount,
				"variance":             variance,
				"closing_denomination": marshalDenominations(denominations),
				"closing_notes":        null.NewString(notes, notes != ""),
				"closed_by":            null.NewString(userID, userID != ""),
				"closed_at":            closedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &accounting.StateError{Reason: "cash session was closed concurrently"}
		}

		if variance.Abs().GreaterThan(centTolerance) {
			varianceType := models.VarianceShortage
			if variance.IsPositive() {
				varianceType = models.VarianceOverage
			}
			record := models.CashVariance{
				ID:        models.NewID(),
				SessionID: sessionID,
				Expected:  session.ExpectedCash,
				Declared:  declaredAmount,
				Variance:  variance,
				Type:      varianceType,
				Notes:     null.NewString(notes, notes != ""),
				CreatedBy: null.NewString(userID, userID != ""),
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}

		return m.audit(tx, sessionID, "close", userID, map[string]interface{}{
			"expected": session.ExpectedCash.String(),
			"declared": declaredAmount.String(),
			"variance": variance.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	if m.alerts != nil && variance.Abs().GreaterThanOrEqual(varianceThreshold(m.settings)) {
		err := m.alerts.Raise(sentinel.AlertCashEvidenceRequired,
			"Cierre de caja con varianza requiere evidencia",
			map[string]interface{}{
				"reference_type":    "cash_session",
				"reference_id":      sessionID,
				"variance":          variance.String(),
				"evidence_required": true,
			})
		if err != nil {
			m.ctx.Logger.Errorf("variance alert for session %s failed: %v", sessionID, err)
		}
	}

	varianceType := "exact"
	switch {
	case variance.IsPositive():
		varianceType = models.VarianceOverage
	case variance.IsNegative():
		varianceType = models.VarianceShortage
	}

	return &ClosingReport{
		SessionID:        sessionID,
		OpenedAt:         session.OpenedAt,
		ClosedAt:         closedAt,
		OpeningAmount:    session.OpeningAmount,
		TotalSales:       session.TotalSales,
		TotalRefunds:     session.TotalRefunds,
		TotalCashIn:      session.TotalCashIn,
		TotalCashOut:     session.TotalCashOut,
		TransactionCount: session.TransactionCount,
		ExpectedCash:     session.ExpectedCash,
		DeclaredAmount:   declaredAmount,
		Variance:         variance,
		VarianceType:     varianceType,
		IsBalanced:       variance.Abs().LessThan(centTolerance),
	}, nil
}
