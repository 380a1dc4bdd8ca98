package service

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/questlog/tablehall/internal/domain"
	"github.com/questlog/tablehall/internal/events"
	"github.com/questlog/tablehall/internal/logging"
	"github.com/questlog/tablehall/internal/models"
	"github.com/questlog/tablehall/internal/repo"
	"github.com/questlog/tablehall/internal/search"
)

type Tables struct {
	Repo   *repo.Repo
	Gate   Gate
	Events *events.Producer
	Search *search.Service
}

type CreateTableCommand struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MaxPlayers  int    `json:"max_players"`
}

func (c CreateTableCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 128)),
		validation.Field(&c.Description, validation.Length(0, 2048)),
		validation.Field(&c.MaxPlayers, validation.Min(0), validation.Max(64)),
	)
}

func (s *Tables) CreateTable(ctx context.Context, callerID uuid.UUID, cmd CreateTableCommand) (*models.Table, error) {
	l := logging.FromContext(ctx).With("svc", "tables.create")

	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	table := &models.Table{
		ID:          uuid.New(),
		GMID:        callerID,
		Name:        cmd.Name,
		Description: cmd.Description,
		MaxPlayers:  cmd.MaxPlayers,
	}
	if err := s.Repo.CreateTable(ctx, table); err != nil {
		return nil, err
	}

	s.index(ctx, table)
	if err := s.Events.Publish(ctx, table.ID.String(), "table_created", map[string]any{
		"table_id": table.ID,
		"gm_id":    callerID,
	}); err != nil {
		l.Warn("event_publish_failed", "error", err)
	}

	l.Info("table_created", "table_id", table.ID)
	return table, nil
}

type UpdateTableCommand struct {
	Name        models.Patch[string] `json:"name"`
	Description models.Patch[string] `json:"description"`
	MaxPlayers  models.Patch[int]    `json:"max_players"`
}

func (c UpdateTableCommand) Validate() error {
	if c.Name.Set && c.Name.Value == "" {
		return fmt.Errorf("%w: name cannot be empty", domain.ErrValidation)
	}
	if c.MaxPlayers.Set && (c.MaxPlayers.Value < 0 || c.MaxPlayers.Value > 64) {
		return fmt.Errorf("%w: max_players out of range", domain.ErrValidation)
	}
	return nil
}

func (s *Tables) UpdateTable(ctx context.Context, callerID, tableID uuid.UUID, cmd UpdateTableCommand) (*models.Table, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var table *models.Table
	err := s.Repo.RunInTx(ctx, func(tx *repo.Repo) error {
		var err error
		table, err = tx.FindTableByID(ctx, tableID)
		if err != nil {
			return err
		}
		if err := s.Gate.RequireOwner(table, callerID); err != nil {
			return err
		}

		cmd.Name.Apply(&table.Name)
		cmd.Description.Apply(&table.Description)
		cmd.MaxPlayers.Apply(&table.MaxPlayers)

		return tx.SaveTable(ctx, table)
	})
	if err != nil {
		return nil, err
	}

	s.index(ctx, table)
	return table, nil
}

func (s *Tables) GetTable(ctx context.Context, tableID uuid.UUID) (*models.Table, error) {
	return s.Repo.FindTableByID(ctx, tableID)
}

func (s *Tables) ListTables(ctx context.Context, limit, offset int) ([]models.Table, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.Repo.ListTables(ctx, limit, offset)
}

type CreateRequestCommand struct {
	Message string `json:"message"`
}

func (c CreateRequestCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Message, validation.Length(0, 1024)),
	)
}

// CreateRequest runs gate checks and the insert in one transaction; the
// partial unique index backs up the no-pending-duplicate rule against
// concurrent inserts.
func (s *Tables) CreateRequest(ctx context.Context, callerID, tableID uuid.UUID, cmd CreateRequestCommand) (*models.TableRequest, error) {
	l := logging.FromContext(ctx).With("svc", "tables.request_join")

	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var req *models.TableRequest
	err := s.Repo.RunInTx(ctx, func(tx *repo.Repo) error {
		table, err := tx.FindTableByID(ctx, tableID)
		if err != nil {
			return err
		}
		if err := s.Gate.RequireJoinable(ctx, tx, table, callerID); err != nil {
			return err
		}
		if err := s.Gate.RequireNoPendingRequest(ctx, tx, tableID, callerID); err != nil {
			return err
		}

		req = &models.TableRequest{
			ID:      uuid.New(),
			TableID: tableID,
			UserID:  callerID,
			Message: cmd.Message,
			Status:  models.RequestPending,
		}
		return tx.CreateRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	if err := s.Events.Publish(ctx, tableID.String(), "request_created", map[string]any{
		"request_id": req.ID,
		"table_id":   tableID,
		"user_id":    callerID,
	}); err != nil {
		l.Warn("event_publish_failed", "error", err)
	}

	return req, nil
}

// AcceptRequest transitions a pending request to approved and creates the
// membership in the same transaction. Approved and rejected are terminal.
func (s *Tables) AcceptRequest(ctx context.Context, callerID, requestID uuid.UUID) (*models.TableRequest, error) {
	l := logging.FromContext(ctx).With("svc", "tables.accept_request")

	var req *models.TableRequest
	err := s.Repo.RunInTx(ctx, func(tx *repo.Repo) error {
		var err error
		req, err = tx.FindRequestByID(ctx, requestID)
		if err != nil {
			return err
		}
		table, err := tx.FindTableByID(ctx, req.TableID)
		if err != nil {
			return err
		}
		if err := s.Gate.RequireOwner(table, callerID); err != nil {
			return err
		}
		if req.Status != models.RequestPending {
			return domain.ErrRequestNotPending
		}

		req.Status = models.RequestApproved
		if err := tx.SaveRequest(ctx, req); err != nil {
			return err
		}
		return tx.CreateMembership(ctx, &models.TableMembership{
			TableID: req.TableID,
			UserID:  req.UserID,
		})
	})
	if err != nil {
		return nil, err
	}

	if err := s.Events.Publish(ctx, req.TableID.String(), "request_approved", map[string]any{
		"request_id": req.ID,
		"table_id":   req.TableID,
		"user_id":    req.UserID,
	}); err != nil {
		l.Warn("event_publish_failed", "error", err)
	}

	return req, nil
}

func (s *Tables) RejectRequest(ctx context.Context, callerID, requestID uuid.UUID) (*models.TableRequest, error) {
	l := logging.FromContext(ctx).With("svc", "tables.reject_request")

	var req *models.TableRequest
	err := s.Repo.RunInTx(ctx, func(tx *repo.Repo) error {
		var err error
		req, err = tx.FindRequestByID(ctx, requestID)
		if err != nil {
			return err
		}
		table, err := tx.FindTableByID(ctx, req.TableID)
		if err != nil {
			return err
		}
		if err := s.Gate.RequireOwner(table, callerID); err != nil {
			return err
		}
		if req.Status != models.RequestPending {
			return domain.ErrRequestNotPending
		}

		req.Status = models.RequestRejected
		return tx.SaveRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	if err := s.Events.Publish(ctx, req.TableID.String(), "request_rejected", map[string]any{
		"request_id": req.ID,
		"table_id":   req.TableID,
		"user_id":    req.UserID,
	}); err != nil {
		l.Warn("event_publish_failed", "error", err)
	}

	return req, nil
}

func (s *Tables) ListRequests(ctx context.Context, callerID, tableID uuid.UUID, status string) ([]models.TableRequest, error) {
	table, err := s.Repo.FindTableByID(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if err := s.Gate.RequireOwner(table, callerID); err != nil {
		return nil, err
	}
	return s.Repo.ListRequestsForTable(ctx, tableID, status)
}

func (s *Tables) ListMembers(ctx context.Context, callerID, tableID uuid.UUID) ([]models.User, error) {
	table, err := s.Repo.FindTableByID(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if table.GMID != callerID {
		if err := s.Gate.RequireMember(ctx, s.Repo, tableID, callerID); err != nil {
			return nil, err
		}
	}
	return s.Repo.ListMembers(ctx, tableID)
}

func (s *Tables) LeaveTable(ctx context.Context, callerID, tableID uuid.UUID) error {
	return s.Repo.RunInTx(ctx, func(tx *repo.Repo) error {
		table, err := tx.FindTableByID(ctx, tableID)
		if err != nil {
			return err
		}
		if table.GMID == callerID {
			return domain.ErrGMCannotLeave
		}
		return tx.DeleteMembership(ctx, tableID, callerID)
	})
}

func (s *Tables) SearchTables(ctx context.Context, query string, from, size int) (int64, []models.Table, error) {
	if size <= 0 || size > 100 {
		size = 20
	}
	return s.Search.SearchTables(ctx, query, from, size)
}

func (s *Tables) index(ctx context.Context, table *models.Table) {
	if err := s.Search.IndexTable(ctx, table); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "table_id", table.ID, "error", err)
	}
}
