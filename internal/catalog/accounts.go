package catalog

import (
	"context"
	"strings"
	"time"
	"unicode"

	"campaign_builder/internal/domain"
)

// AccountSource is the sync state owner for accounts.
type AccountSource interface {
	State() domain.SyncState[domain.Account]
	Fetch(ctx context.Context, force bool) domain.SyncState[domain.Account]
}

type AccountStats struct {
	Total         int
	ByStatus      map[domain.AccountStatus]int
	ByReputation  map[domain.Reputation]int
	LastFetchedAt *time.Time
	RetryCount    int
	Loading       bool
	Error         string
}

type AccountRepository struct {
	src AccountSource
}

func NewAccountRepository(src AccountSource) *AccountRepository {
	return &AccountRepository{src: src}
}

func (r *AccountRepository) Refresh(ctx context.Context) domain.SyncState[domain.Account] {
	return r.src.Fetch(ctx, true)
}

func (r *AccountRepository) Load(ctx context.Context) domain.SyncState[domain.Account] {
	if st := r.src.State(); st.Phase != domain.PhaseIdle {
		return st
	}
	return r.src.Fetch(ctx, false)
}

func (r *AccountRepository) Phase() domain.Phase {
	return r.src.State().Phase
}

func (r *AccountRepository) LastError() string {
	return r.src.State().LastError
}

func (r *AccountRepository) All() []domain.Account {
	return r.src.State().Items
}

func (r *AccountRepository) ByStatus(status domain.AccountStatus) []domain.Account {
	return filter(r.All(), func(a domain.Account) bool { return a.Status == status })
}

func (r *AccountRepository) ByReputation(rep domain.Reputation) []domain.Account {
	return filter(r.All(), func(a domain.Account) bool { return a.Reputation == rep })
}

func (r *AccountRepository) ByID(id int64) (domain.Account, bool) {
	return find(r.All(), func(a domain.Account) bool { return a.ID == id })
}

func (r *AccountRepository) ByName(name string, caseInsensitive bool) (domain.Account, bool) {
	return find(r.All(), func(a domain.Account) bool { return sameName(a.Name, name, caseInsensitive) })
}

// ByPhone matches on digits only, so "+55 (11) 9999-0000" and "551199990000"
// name the same account.
func (r *AccountRepository) ByPhone(phone string) (domain.Account, bool) {
	want := digits(phone)
	if want == "" {
		return domain.Account{}, false
	}
	return find(r.All(), func(a domain.Account) bool { return digits(a.Phone) == want })
}

func (r *AccountRepository) Stats() AccountStats {
	st := r.src.State()
	stats := AccountStats{
		Total:         len(st.Items),
		ByStatus:      make(map[domain.AccountStatus]int),
		ByReputation:  make(map[domain.Reputation]int),
		LastFetchedAt: st.LastFetchedAt,
		RetryCount:    st.RetryCount,
		Loading:       st.Phase.Busy(),
		Error:         st.LastError,
	}
	for _, a := range st.Items {
		stats.ByStatus[a.Status]++
		stats.ByReputation[a.Reputation]++
	}
	return stats
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
