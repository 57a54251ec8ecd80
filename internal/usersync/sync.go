// Package usersync copies user records between the local user table and the
// Jira user mirror table.
package usersync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clintrovert/jirabridge/internal/store"
	"github.com/clintrovert/jirabridge/pkg/types"
)

// Service runs the two one-directional batch copies. Each direction is a
// sequence of independent row writes; a mid-batch failure leaves the rows
// already written in place, there is no compensating rollback.
type Service struct {
	users  store.LocalUserRepository
	mirror store.MirrorRepository
	logger *zap.Logger
}

// NewService creates a sync service over the two repositories.
func NewService(users store.LocalUserRepository, mirror store.MirrorRepository, logger *zap.Logger) *Service {
	return &Service{
		users:  users,
		mirror: mirror,
		logger: logger,
	}
}

// MirrorToJira upserts a mirror row for every local user with active=true.
// Re-running against an unchanged user set produces the same mirror set.
func (s *Service) MirrorToJira(ctx context.Context) (int, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list local users: %w", err)
	}

	synced := 0
	for _, user := range users {
		if err := s.mirror.Upsert(ctx, user.Username, true); err != nil {
			return synced, fmt.Errorf("failed to upsert mirror row for %s: %w", user.Username, err)
		}
		synced++
	}

	s.logger.Info("mirrored local users", zap.Int("count", synced))
	return synced, nil
}

// ImportFromJira creates a local user for every active mirror row and returns
// the number imported. There is no duplicate guard against existing local
// users with the same username.
func (s *Service) ImportFromJira(ctx context.Context) (int, error) {
	mirrors, err := s.mirror.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list mirror rows: %w", err)
	}

	imported := 0
	for _, m := range mirrors {
		_, err := s.users.Create(ctx, &types.LocalUser{Username: m.Username})
		if err != nil {
			return imported, fmt.Errorf("failed to import user %s: %w", m.Username, err)
		}
		imported++
	}

	s.logger.Info("imported mirror users", zap.Int("count", imported))
	return imported, nil
}
