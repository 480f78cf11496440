package accounting

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/genesis-erp/ledger/models"
)

// Clock abstracts entry timestamps so tests can pin time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Context carries the validated handles every component needs. It is
// built once by Bootstrap and injected; there is no package-level
// state.
type Context struct {
	DB     *gorm.DB
	Logger *logrus.Logger
	Clock  Clock
}

type Option func(*Context)

func WithClock(clock Clock) Option {
	return func(c *Context) { c.Clock = clock }
}

// Bootstrap migrates the schema, seeds the entry-number sequence and
// the default cash register, and returns the context the engine,
// resolver and cashier are constructed from.
func Bootstrap(db *gorm.DB, logger *logrus.Logger, opts ...Option) (*Context, error) {
	ctx := &Context{
		DB:     db,
		Logger: logger,
		Clock:  realClock{},
	}
	for _, opt := range opts {
		opt(ctx)
	}

	if err := db.AutoMigrate(
		&models.Account{},
		&models.JournalEntry{},
		&models.JournalLine{},
		&models.Sequence{},
		&models.CashRegister{},
		&models.CashSession{},
		&models.CashMovement{},
		&models.CashVariance{},
		&models.Setting{},
		&models.AuditLog{},
	); err != nil {
		return nil, err
	}

	seq := models.Sequence{Name: models.EntryNumberSequence}
	if err := db.FirstOrCreate(&seq, models.Sequence{Name: models.EntryNumberSequence}).Error; err != nil {
		return nil, err
	}

	register := models.CashRegister{Name: "Caja Principal"}
	if err := db.Where(models.CashRegister{Name: "Caja Principal"}).
		Attrs(models.CashRegister{ID: models.NewID(), Active: true}).
		FirstOrCreate(&register).Error; err != nil {
		return nil, err
	}

	return ctx, nil
}

// SeedDefaultChart inserts the default chart of accounts, skipping
// codes that already exist.
func (c *Context) SeedDefaultChart() error {
	for _, account := range DefaultChart() {
		account.ID = models.NewID()
		account.Active = true
		if err := c.DB.Where(models.Account{Code: account.Code}).
			Attrs(account).
			FirstOrCreate(&models.Account{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// DefaultRegister returns the register seeded at bootstrap.
func (c *Context) DefaultRegister() (*models.CashRegister, error) {
	var register models.CashRegister
	if err := c.DB.First(&register, "name = ?", "Caja Principal").Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("cash register", "Caja Principal")
		}
		return nil, err
	}
	return &register, nil
}
