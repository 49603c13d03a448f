package service

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"kindspeak-server/internal/config"
	"kindspeak-server/internal/repository"
)

type testStore struct {
	db          *gorm.DB
	users       *repository.UserRepository
	sessions    *repository.SessionRepository
	messages    *repository.MessageRepository
	meditations *repository.MeditationRepository
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()
	db, err := repository.OpenDatabase(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}, "release")
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return &testStore{
		db:          db,
		users:       repository.NewUserRepository(db),
		sessions:    repository.NewSessionRepository(db),
		messages:    repository.NewMessageRepository(db),
		meditations: repository.NewMeditationRepository(db),
	}
}

func (s *testStore) sessionService() *SessionService {
	return NewSessionService(s.sessions, s.messages, nil)
}
