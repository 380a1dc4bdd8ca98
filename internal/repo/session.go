package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/questlog/tablehall/internal/domain"
	"github.com/questlog/tablehall/internal/models"
)

func (r *Repo) CreateSession(ctx context.Context, s *models.GameSession) error {
	if err := r.DB.WithContext(ctx).Create(s).Error; err != nil {
		return translateConstraint(err)
	}
	return nil
}

func (r *Repo) FindSessionByID(ctx context.Context, id uuid.UUID) (*models.GameSession, error) {
	var s models.GameSession
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repo) SaveSession(ctx context.Context, s *models.GameSession) error {
	return r.DB.WithContext(ctx).Save(s).Error
}

func (r *Repo) ListSessionsForTable(ctx context.Context, tableID uuid.UUID) ([]models.GameSession, error) {
	var sessions []models.GameSession
	err := r.DB.WithContext(ctx).
		Where("table_id = ?", tableID).
		Order("scheduled_at").
		Find(&sessions).Error
	return sessions, err
}

func (r *Repo) FindIntent(ctx context.Context, sessionID, userID uuid.UUID) (*models.SessionIntent, error) {
	var intent models.SessionIntent
	err := r.DB.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&intent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &intent, nil
}

func (r *Repo) CreateIntent(ctx context.Context, intent *models.SessionIntent) error {
	if err := r.DB.WithContext(ctx).Create(intent).Error; err != nil {
		return translateConstraint(err)
	}
	return nil
}

func (r *Repo) SaveIntent(ctx context.Context, intent *models.SessionIntent) error {
	return r.DB.WithContext(ctx).Save(intent).Error
}
