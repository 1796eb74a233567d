package account

import (
	"context"
	"sync"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
	"github.com/lystzs/family-asset-manager/pkg/logger"
)

// Lister fetches the account list (backend.Client satisfies it)
type Lister interface {
	AllAccounts(ctx context.Context) ([]backend.AccountWithUser, error)
}

// Snapshot is an immutable copy of the session state
type Snapshot struct {
	Accounts []backend.AccountWithUser `json:"accounts"`
	Selected *backend.AccountWithUser  `json:"selected_account"` // nil = 전체 계좌 합산 모드
	Loading  bool                      `json:"is_loading"`
}

// AggregateMode reports the "all accounts" view
func (s Snapshot) AggregateMode() bool {
	return s.Selected == nil
}

// IDs returns the ids of every listed account
func (s Snapshot) IDs() []int64 {
	ids := make([]int64, 0, len(s.Accounts))
	for _, a := range s.Accounts {
		ids = append(ids, a.ID)
	}
	return ids
}

// Store holds the account list and the current selection shared by all views
// ⭐ SSOT: 선택된 계좌 상태는 여기서만 변경
type Store struct {
	lister Lister
	logger *logger.Logger

	mu       sync.RWMutex
	accounts []backend.AccountWithUser
	selected *backend.AccountWithUser
	loading  bool
	version  uint64 // 변경마다 증가

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Snapshot)

	deliverMu sync.Mutex
	delivered uint64
}

// NewStore creates an empty store; call Start to perform the initial load
func NewStore(lister Lister, log *logger.Logger) *Store {
	return &Store{
		lister:   lister,
		logger:   log,
		accounts: []backend.AccountWithUser{},
		loading:  true,
		subs:     make(map[int]func(Snapshot)),
	}
}

// Start performs the mount-time refresh
func (s *Store) Start(ctx context.Context) {
	s.Refresh(ctx)
}

// Refresh re-fetches the account list. Failures are logged and leave an
// empty list; they never propagate. The first account is auto-selected when
// nothing is selected yet.
func (s *Store) Refresh(ctx context.Context) {
	accounts, err := s.lister.AllAccounts(ctx)

	s.mu.Lock()
	if err != nil {
		s.logger.WithError(err).Error("Failed to fetch accounts")
		s.accounts = []backend.AccountWithUser{}
	} else {
		if accounts == nil {
			accounts = []backend.AccountWithUser{}
		}
		s.accounts = accounts
		if s.selected == nil && len(accounts) > 0 {
			first := accounts[0]
			s.selected = &first
		}
	}
	s.loading = false
	s.version++
	snap, version := s.snapshotLocked(), s.version
	s.mu.Unlock()

	s.logger.WithFields(map[string]interface{}{
		"accounts": len(snap.Accounts),
		"selected": selectedID(snap.Selected),
	}).Debug("Accounts refreshed")

	s.notify(version, snap)
}

// SelectAccount switches the selection. nil → aggregate mode; an unknown id
// also yields aggregate mode.
func (s *Store) SelectAccount(id *int64) Snapshot {
	s.mu.Lock()
	s.selected = nil
	if id != nil {
		for i := range s.accounts {
			if s.accounts[i].ID == *id {
				found := s.accounts[i]
				s.selected = &found
				break
			}
		}
	}
	s.version++
	snap, version := s.snapshotLocked(), s.version
	s.mu.Unlock()

	s.notify(version, snap)
	return snap
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for every change; the returned func unsubscribes
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Close drops all subscribers
func (s *Store) Close() {
	s.subMu.Lock()
	s.subs = make(map[int]func(Snapshot))
	s.subMu.Unlock()
}

func (s *Store) snapshotLocked() Snapshot {
	accounts := make([]backend.AccountWithUser, len(s.accounts))
	copy(accounts, s.accounts)

	var selected *backend.AccountWithUser
	if s.selected != nil {
		sel := *s.selected
		selected = &sel
	}
	return Snapshot{Accounts: accounts, Selected: selected, Loading: s.loading}
}

// notify delivers snapshots one at a time in version order; a snapshot older
// than one already delivered is dropped.
func (s *Store) notify(version uint64, snap Snapshot) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if version <= s.delivered {
		return
	}
	s.delivered = version

	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func selectedID(a *backend.AccountWithUser) interface{} {
	if a == nil {
		return "all"
	}
	return a.ID
}
