package repo

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/questlog/tablehall/internal/models"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(10000)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	return New(db)
}

func createTestUser(t *testing.T, r *Repo, username string) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@test.com",
		PasswordHash: "$argon2id$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
		Role:         models.RoleUser,
	}
	require.NoError(t, r.CreateUser(context.Background(), user))
	return user
}

func createTestTable(t *testing.T, r *Repo, gmID uuid.UUID) *models.Table {
	t.Helper()

	table := &models.Table{
		ID:         uuid.New(),
		GMID:       gmID,
		Name:       "Test Table",
		MaxPlayers: 5,
	}
	require.NoError(t, r.CreateTable(context.Background(), table))
	return table
}
