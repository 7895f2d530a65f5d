// Package userrepo manages repository layer of users.
package userrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/rs/zerolog"
)

// RepoMem facilitates user repository layer logic.
type RepoMem struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	byUsername map[string]string
	now        func() time.Time
}

// NewRepoMem returns an empty user RepoMem. A nil clock means time.Now.
func NewRepoMem(clock func() time.Time) *RepoMem {
	if clock == nil {
		clock = time.Now
	}

	return &RepoMem{
		users:      make(map[string]domain.User),
		byUsername: make(map[string]string),
		now:        clock,
	}
}

func cloneUser(u domain.User) domain.User {
	u.OrderIDs = append([]string(nil), u.OrderIDs...)
	return u
}

// Create creates the user and then returns it.
func (r *RepoMem) Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[arg.Username]; ok {
		zerolog.Ctx(ctx).Info().Str("username", arg.Username).Msg("username taken")
		return domain.User{}, domain.ErrUsernameAlreadyExists
	}

	u := domain.User{
		ID:        arg.ID,
		Username:  arg.Username,
		Role:      arg.Role,
		AccountID: domain.AccountIDFor(arg.ID),
		CreatedAt: r.now(),
	}

	r.users[u.ID] = u
	r.byUsername[u.Username] = u.ID

	return cloneUser(u), nil
}

// Get returns the user with the given id.
func (r *RepoMem) Get(ctx context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}

	return cloneUser(u), nil
}

// GetByUsername returns the user with the given username.
func (r *RepoMem) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	r.mu.RLock()
	id, ok := r.byUsername[username]
	r.mu.RUnlock()

	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}

	return r.Get(ctx, id)
}

// List returns all users ordered by id.
func (r *RepoMem) List(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		items = append(items, cloneUser(u))
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	return items, nil
}

// AddOrder appends a transaction id to the user's orders.
func (r *RepoMem) AddOrder(ctx context.Context, userID, txID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}

	u.OrderIDs = append(u.OrderIDs, txID)
	r.users[userID] = u

	return nil
}

// Restore replaces all users with the given ones.
func (r *RepoMem) Restore(ctx context.Context, users []domain.User) error {
	commit, err := r.PrepareRestore(ctx, users)
	if err != nil {
		return err
	}

	commit()

	return nil
}

// PrepareRestore validates users and returns a commit func that swaps them in.
func (r *RepoMem) PrepareRestore(ctx context.Context, users []domain.User) (func(), error) {
	restored := make(map[string]domain.User, len(users))
	byUsername := make(map[string]string, len(users))

	for _, u := range users {
		if _, ok := byUsername[u.Username]; ok {
			zerolog.Ctx(ctx).Error().Str("username", u.Username).Msg("duplicate username in snapshot")
			return nil, domain.ErrUsernameAlreadyExists
		}

		if _, ok := restored[u.ID]; ok {
			zerolog.Ctx(ctx).Error().Str("user_id", u.ID).Msg("duplicate user in snapshot")
			return nil, domain.ErrCorruptSnapshot
		}

		if !u.Role.Valid() {
			return nil, domain.ErrInvalidRole
		}

		restored[u.ID] = cloneUser(u)
		byUsername[u.Username] = u.ID
	}

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		r.users = restored
		r.byUsername = byUsername
	}, nil
}
