package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/questlog/tablehall/internal/domain"
	"github.com/questlog/tablehall/internal/models"
)

func (r *Repo) CreateTable(ctx context.Context, t *models.Table) error {
	if err := r.DB.WithContext(ctx).Create(t).Error; err != nil {
		return translateConstraint(err)
	}
	return nil
}

func (r *Repo) FindTableByID(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	var table models.Table
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &table, nil
}

func (r *Repo) SaveTable(ctx context.Context, t *models.Table) error {
	return r.DB.WithContext(ctx).Save(t).Error
}

func (r *Repo) ListTables(ctx context.Context, limit, offset int) ([]models.Table, error) {
	var tables []models.Table
	err := r.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&tables).Error
	return tables, err
}

func (r *Repo) IsMember(ctx context.Context, tableID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.TableMembership{}).
		Where("table_id = ? AND user_id = ?", tableID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repo) CreateMembership(ctx context.Context, m *models.TableMembership) error {
	if err := r.DB.WithContext(ctx).Create(m).Error; err != nil {
		return translateConstraint(err)
	}
	return nil
}

func (r *Repo) DeleteMembership(ctx context.Context, tableID, userID uuid.UUID) error {
	res := r.DB.WithContext(ctx).
		Where("table_id = ? AND user_id = ?", tableID, userID).
		Delete(&models.TableMembership{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) ListMembers(ctx context.Context, tableID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := r.DB.WithContext(ctx).
		Joins("JOIN table_memberships ON table_memberships.user_id = users.id").
		Where("table_memberships.table_id = ?", tableID).
		Order("table_memberships.created_at").
		Find(&users).Error
	return users, err
}

func (r *Repo) HasPendingRequest(ctx context.Context, tableID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.TableRequest{}).
		Where("table_id = ? AND user_id = ? AND status = ?", tableID, userID, models.RequestPending).
		Count(&count).Error
	return count > 0, err
}

func (r *Repo) CreateRequest(ctx context.Context, req *models.TableRequest) error {
	if err := r.DB.WithContext(ctx).Create(req).Error; err != nil {
		return translateConstraint(err)
	}
	return nil
}

func (r *Repo) FindRequestByID(ctx context.Context, id uuid.UUID) (*models.TableRequest, error) {
	var req models.TableRequest
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *Repo) SaveRequest(ctx context.Context, req *models.TableRequest) error {
	return r.DB.WithContext(ctx).Save(req).Error
}

func (r *Repo) ListRequestsForTable(ctx context.Context, tableID uuid.UUID, status string) ([]models.TableRequest, error) {
	q := r.DB.WithContext(ctx).Where("table_id = ?", tableID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var reqs []models.TableRequest
	err := q.Order("created_at").Find(&reqs).Error
	return reqs, err
}
