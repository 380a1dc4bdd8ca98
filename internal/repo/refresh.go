package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/questlog/tablehall/internal/domain"
	"github.com/questlog/tablehall/internal/models"
)

func (r *Repo) CreateRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	if err := r.DB.WithContext(ctx).Create(t).Error; err != nil {
		return translateConstraint(err)
	}
	return nil
}

// ConsumeRefreshToken marks the token revoked with a single conditional
// update. Two concurrent rotations of the same token race on the WHERE
// clause and exactly one sees RowsAffected == 1; the loser gets
// ErrRefreshUsed without a read-then-write window. On failure the row is
// fetched (if it exists) so the caller can tell reuse from expiry and react
// to replay.
func (r *Repo) ConsumeRefreshToken(ctx context.Context, tokenHash string, now time.Time) (*models.RefreshToken, error) {
	res := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked = ? AND expires_at > ?", tokenHash, false, now).
		Update("revoked", true)
	if res.Error != nil {
		return nil, res.Error
	}

	var token models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRefreshNotFound
		}
		return nil, err
	}

	if res.RowsAffected == 1 {
		return &token, nil
	}
	if !token.ExpiresAt.After(now) {
		return &token, domain.ErrRefreshExpired
	}
	return &token, domain.ErrRefreshUsed
}

func (r *Repo) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}
