package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/questlog/tablehall/internal/models"
)

type Repo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Repo {
	return &Repo{DB: db}
}

// RunInTx runs fn with a transaction-scoped Repo so an authorization check
// and the mutation it guards share one unit of work.
func (r *Repo) RunInTx(ctx context.Context, fn func(tx *Repo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repo{DB: tx})
	})
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Table{},
		&models.TableMembership{},
		&models.TableRequest{},
		&models.GameSession{},
		&models.SessionIntent{},
	); err != nil {
		return err
	}

	// Partial unique index: at most one pending request per (table, user).
	// Approved and rejected requests stay around as history.
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS table_requests_pending_user_table_key
		 ON table_requests (table_id, user_id) WHERE status = 'pending'`,
	).Error
}
