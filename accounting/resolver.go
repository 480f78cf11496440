package accounting

import (
	"strings"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
	"gorm.io/gorm"

	"github.com/genesis-erp/ledger/models"
)

// Resolver answers "which account does this concept post to" against an
// in-memory snapshot of the chart of accounts. Resolution never touches
// the store and never creates accounts; a miss is an ordinary
// NotFoundError the caller handles.
type Resolver struct {
	db *gorm.DB

	mu     sync.RWMutex
	byCode *treemap.Map
	byType map[models.AccountType][]*models.Account
}

func NewResolver(ctx *Context) (*Resolver, error) {
	r := &Resolver{db: ctx.DB}
	if err := r.Refresh(); err != nil {
		return nil, err
	}
	return r, nil
}

// Refresh reloads the snapshot. Call it after the chart of accounts
// changes; between calls resolution is a pure function.
func (r *Resolver) Refresh() error {
	var accounts []*models.Account
	if err := r.db.Where("active = ?", true).Order("code").Find(&accounts).Error; err != nil {
		return err
	}

	byCode := treemap.NewWithStringComparator()
	byType := make(map[models.AccountType][]*models.Account)
	for _, account := range accounts {
		byCode.Put(account.Code, account)
		byType[account.Type] = append(byType[account.Type], account)
	}

	r.mu.Lock()
	r.byCode = byCode
	r.byType = byType
	r.mu.Unlock()
	return nil
}

// ByCode is an exact, case-sensitive lookup.
func (r *Resolver) ByCode(code string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if value, found := r.byCode.Get(code); found {
		return value.(*models.Account), nil
	}
	return nil, notFound("account", code)
}

// ByCodesInOrder returns the first existing account among a priority
// list. Used for cash-or-bank fallback chains.
func (r *Resolver) ByCodesInOrder(codes ...string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, code := range codes {
		if value, found := r.byCode.Get(code); found {
			return value.(*models.Account), nil
		}
	}
	return nil, notFound("account", strings.Join(codes, ","))
}

// ByTypeAndKeywords returns the first account of the given type whose
// name contains any keyword, case-insensitive. Ties break on keyword
// list order first, then ascending account code.
func (r *Resolver) ByTypeAndKeywords(accountType models.AccountType, keywords []string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		needle := strings.ToLower(keyword)
		for _, account := range r.byType[accountType] {
			if strings.Contains(strings.ToLower(account.Name), needle) {
				return account, nil
			}
		}
	}
	return nil, notFound("account", accountType+":"+strings.Join(keywords, ","))
}
