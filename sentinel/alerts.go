package sentinel

import (
	"github.com/sirupsen/logrus"
)

type AlertType = string

var (
	AlertCashEvidenceRequired AlertType = "cash_evidence_required"
	AlertAccountingUnbalanced AlertType = "accounting_unbalanced"
	AlertNoOpenSession        AlertType = "no_open_session"
)

// AlertSink receives fire-and-forget notifications. The caller only
// cares whether the raise itself succeeded; any follow-up (evidence
// attachment, operator workflow) lives outside this module.
type AlertSink interface {
	Raise(kind AlertType, message string, metadata map[string]interface{}) error
}

// LogSink writes alerts to the structured log. It is the default sink
// for deployments without an external alerting channel.
type LogSink struct {
	Logger *logrus.Logger
}

func (s *LogSink) Raise(kind AlertType, message string, metadata map[string]interface{}) error {
	s.Logger.WithFields(logrus.Fields(metadata)).
		WithField("alert", kind).
		Warn(message)
	return nil
}
