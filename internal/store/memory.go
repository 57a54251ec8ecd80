package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clintrovert/jirabridge/pkg/types"
)

// MemoryLocalUsers is an in-memory LocalUserRepository, used in tests and
// when no database is configured.
type MemoryLocalUsers struct {
	mu    sync.RWMutex
	users []types.LocalUser
}

// NewMemoryLocalUsers creates an empty in-memory local user repository.
func NewMemoryLocalUsers() *MemoryLocalUsers {
	return &MemoryLocalUsers{}
}

func (r *MemoryLocalUsers) Create(_ context.Context, user *types.LocalUser) (*types.LocalUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	r.users = append(r.users, *user)
	return user, nil
}

func (r *MemoryLocalUsers) GetByEmail(_ context.Context, email string) (*types.LocalUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.users {
		if r.users[i].Email == email {
			user := r.users[i]
			return &user, nil
		}
	}

	return nil, ErrNotFound
}

func (r *MemoryLocalUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *MemoryLocalUsers) List(_ context.Context) ([]types.LocalUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]types.LocalUser, len(r.users))
	copy(users, r.users)
	return users, nil
}

// MemoryMirror is an in-memory MirrorRepository.
type MemoryMirror struct {
	mu      sync.RWMutex
	nextID  int64
	mirrors map[string]types.JiraUserMirror
	order   []string
}

// NewMemoryMirror creates an empty in-memory mirror repository.
func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{
		nextID:  1,
		mirrors: make(map[string]types.JiraUserMirror),
	}
}

func (r *MemoryMirror) Upsert(_ context.Context, username string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.mirrors[username]; ok {
		existing.Active = active
		r.mirrors[username] = existing
		return nil
	}

	r.mirrors[username] = types.JiraUserMirror{
		ID:       r.nextID,
		Username: username,
		Active:   active,
	}
	r.nextID++
	r.order = append(r.order, username)
	return nil
}

func (r *MemoryMirror) ListActive(ctx context.Context) ([]types.JiraUserMirror, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]types.JiraUserMirror, 0, len(all))
	for _, m := range all {
		if m.Active {
			active = append(active, m)
		}
	}
	return active, nil
}

func (r *MemoryMirror) List(_ context.Context) ([]types.JiraUserMirror, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mirrors := make([]types.JiraUserMirror, 0, len(r.order))
	for _, username := range r.order {
		mirrors = append(mirrors, r.mirrors[username])
	}
	return mirrors, nil
}
