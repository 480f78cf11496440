package sentinel

import (
	"github.com/jasonlvhit/gocron"
	"github.com/sirupsen/logrus"
)

// Cron runs the full diagnostic on a fixed schedule and logs the
// outcome. It blocks the calling goroutine, daemon style.
type Cron struct {
	service      *Service
	logger       *logrus.Logger
	everyMinutes uint64
}

func NewCron(service *Service, logger *logrus.Logger, everyMinutes uint64) *Cron {
	if everyMinutes == 0 {
		everyMinutes = 5
	}
	return &Cron{service: service, logger: logger, everyMinutes: everyMinutes}
}

func (c *Cron) Start() {
	s := gocron.NewScheduler()
	s.Every(c.everyMinutes).Minutes().Do(c.runDiagnostic)
	<-s.Start()
}

func (c *Cron) runDiagnostic() {
	diagnostic, err := c.service.RunFullDiagnostic()
	if err != nil {
		c.logger.Errorf("sentinel diagnostic failed: %v", err)
		return
	}

	entry := c.logger.WithField("overall", diagnostic.OverallStatus)
	for _, check := range diagnostic.Checks {
		entry = entry.WithField(check.Name, check.Status)
	}

	switch diagnostic.OverallStatus {
	case StatusRed:
		entry.Error("sentinel diagnostic")
	case StatusYellow:
		entry.Warn("sentinel diagnostic")
	default:
		entry.Info("sentinel diagnostic")
	}
}
