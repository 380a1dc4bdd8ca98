package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/questlog/tablehall/internal/hash"
	"github.com/questlog/tablehall/internal/models"
	"github.com/questlog/tablehall/internal/repo"
	"github.com/questlog/tablehall/internal/tokens"
)

type testEnv struct {
	repo   *repo.Repo
	auth   *Auth
	tables *Tables
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(10000)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))

	r := repo.New(db)
	hasher := hash.New(&hash.Params{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	tokenSvc := tokens.NewService([]byte("test-jwt-secret"), 15*time.Minute)

	return &testEnv{
		repo: r,
		auth: &Auth{
			Repo:       r,
			Hasher:     hasher,
			Tokens:     tokenSvc,
			RefreshTTL: 24 * time.Hour,
		},
		tables: &Tables{Repo: r},
	}
}

func (env *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()

	res, err := env.auth.Register(context.Background(), RegisterCommand{
		Username: username,
		Email:    username + "@test.com",
		Password: "Secret123!",
	})
	require.NoError(t, err)
	return res.User
}

func (env *testEnv) createTable(t *testing.T, gmID uuid.UUID) *models.Table {
	t.Helper()

	table, err := env.tables.CreateTable(context.Background(), gmID, CreateTableCommand{
		Name:       "Friday Night Heroes",
		MaxPlayers: 5,
	})
	require.NoError(t, err)
	return table
}

// joinTable walks the whole flow: request, then GM approval.
func (env *testEnv) joinTable(t *testing.T, table *models.Table, playerID uuid.UUID) {
	t.Helper()

	req, err := env.tables.CreateRequest(context.Background(), playerID, table.ID, CreateRequestCommand{})
	require.NoError(t, err)
	_, err = env.tables.AcceptRequest(context.Background(), table.GMID, req.ID)
	require.NoError(t, err)
}
