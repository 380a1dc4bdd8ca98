package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/questlog/tablehall/internal/domain"
	"github.com/questlog/tablehall/internal/models"
	"github.com/questlog/tablehall/internal/repo"
)

// Gate holds the authorization predicates application services run right
// before a mutation. Every predicate is side-effect-free; the caller is
// responsible for running check and mutation inside the same transaction.
type Gate struct{}

func (Gate) RequireOwner(table *models.Table, callerID uuid.UUID) error {
	if table.GMID != callerID {
		return domain.ErrForbidden
	}
	return nil
}

func (Gate) RequireMember(ctx context.Context, r *repo.Repo, tableID, callerID uuid.UUID) error {
	ok, err := r.IsMember(ctx, tableID, callerID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}

// RequireJoinable rejects join requests from the GM and from existing
// members before a request row is ever written.
func (g Gate) RequireJoinable(ctx context.Context, r *repo.Repo, table *models.Table, callerID uuid.UUID) error {
	if table.GMID == callerID {
		return domain.ErrNotJoinable
	}
	ok, err := r.IsMember(ctx, table.ID, callerID)
	if err != nil {
		return err
	}
	if ok {
		return domain.ErrNotJoinable
	}
	return nil
}

func (Gate) RequireNoPendingRequest(ctx context.Context, r *repo.Repo, tableID, callerID uuid.UUID) error {
	ok, err := r.HasPendingRequest(ctx, tableID, callerID)
	if err != nil {
		return err
	}
	if ok {
		return domain.ErrPendingRequestExists
	}
	return nil
}
