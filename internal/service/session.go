package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/questlog/tablehall/internal/domain"
	"github.com/questlog/tablehall/internal/logging"
	"github.com/questlog/tablehall/internal/models"
	"github.com/questlog/tablehall/internal/repo"
)

type ScheduleSessionCommand struct {
	Title       string    `json:"title"`
	ScheduledAt time.Time `json:"scheduled_at"`
	DurationMin int       `json:"duration_min"`
}

func (c ScheduleSessionCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Title, validation.Required, validation.Length(1, 128)),
		validation.Field(&c.ScheduledAt, validation.Required),
		validation.Field(&c.DurationMin, validation.Min(0), validation.Max(24*60)),
	)
}

func (s *Tables) ScheduleSession(ctx context.Context, callerID, tableID uuid.UUID, cmd ScheduleSessionCommand) (*models.GameSession, error) {
	l := logging.FromContext(ctx).With("svc", "sessions.schedule")

	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var session *models.GameSession
	err := s.Repo.RunInTx(ctx, func(tx *repo.Repo) error {
		table, err := tx.FindTableByID(ctx, tableID)
		if err != nil {
			return err
		}
		if err := s.Gate.RequireOwner(table, callerID); err != nil {
			return err
		}

		session = &models.GameSession{
			ID:          uuid.New(),
			TableID:     tableID,
			Title:       cmd.Title,
			ScheduledAt: cmd.ScheduledAt.UTC(),
			DurationMin: cmd.DurationMin,
			Status:      models.SessionScheduled,
		}
		return tx.CreateSession(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	if err := s.Events.Publish(ctx, tableID.String(), "session_scheduled", map[string]any{
		"session_id": session.ID,
		"table_id":   tableID,
	}); err != nil {
		l.Warn("event_publish_failed", "error", err)
	}

	return session, nil
}

type UpdateSessionCommand struct {
	Title       models.Patch[string]    `json:"title"`
	ScheduledAt models.Patch[time.Time] `json:"scheduled_at"`
	DurationMin models.Patch[int]       `json:"duration_min"`
}

func (c UpdateSessionCommand) Validate() error {
	if c.Title.Set && c.Title.Value == "" {
		return fmt.Errorf("%w: title cannot be empty", domain.ErrValidation)
	}
	if c.DurationMin.Set && (c.DurationMin.Value < 0 || c.DurationMin.Value > 24*60) {
		return fmt.Errorf("%w: duration_min out of range", domain.ErrValidation)
	}
	return nil
}

func (s *Tables) UpdateSession(ctx context.Context, callerID, sessionID uuid.UUID, cmd UpdateSessionCommand) (*models.GameSession, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var session *models.GameSession
	err := s.Repo.RunInTx(ctx, func(tx *repo.Repo) error {
		var err error
		session, err = tx.FindSessionByID(ctx, sessionID)
		if err != nil {
			return err
		}
		table, err := tx.FindTableByID(ctx, session.TableID)
		if err != nil {
			return err
		}
		if err := s.Gate.RequireOwner(table, callerID); err != nil {
			return err
		}
		if session.Status != models.SessionScheduled {
			return domain.ErrSessionNotScheduled
		}

		cmd.Title.Apply(&session.Title)
		if cmd.ScheduledAt.Set {
			session.ScheduledAt = cmd.ScheduledAt.Value.UTC()
		}
		cmd.DurationMin.Apply(&session.DurationMin)

		return tx.SaveSession(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Tables) CancelSession(ctx context.Context, callerID, sessionID uuid.UUID) (*models.GameSession, error) {
	var session *models.GameSession
	err := s.Repo.RunInTx(ctx, func(tx *repo.Repo) error {
		var err error
		session, err = tx.FindSessionByID(ctx, sessionID)
		if err != nil {
			return err
		}
		table, err := tx.FindTableByID(ctx, session.TableID)
		if err != nil {
			return err
		}
		if err := s.Gate.RequireOwner(table, callerID); err != nil {
			return err
		}
		if session.Status != models.SessionScheduled {
			return domain.ErrSessionNotScheduled
		}

		session.Status = models.SessionCancelled
		return tx.SaveSession(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Tables) ListSessions(ctx context.Context, tableID uuid.UUID) ([]models.GameSession, error) {
	if _, err := s.Repo.FindTableByID(ctx, tableID); err != nil {
		return nil, err
	}
	return s.Repo.ListSessionsForTable(ctx, tableID)
}

type SetIntentCommand struct {
	Status string `json:"status"`
}

func (c SetIntentCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Status, validation.Required, validation.In(models.IntentAttending, models.IntentDeclined)),
	)
}

func (s *Tables) SetIntent(ctx context.Context, callerID, sessionID uuid.UUID, cmd SetIntentCommand) (*models.SessionIntent, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var intent *models.SessionIntent
	err := s.Repo.RunInTx(ctx, func(tx *repo.Repo) error {
		session, err := tx.FindSessionByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := s.Gate.RequireMember(ctx, tx, session.TableID, callerID); err != nil {
			return err
		}
		if session.Status != models.SessionScheduled {
			return domain.ErrSessionNotScheduled
		}

		existing, err := tx.FindIntent(ctx, sessionID, callerID)
		switch {
		case err == nil:
			existing.Status = cmd.Status
			intent = existing
			return tx.SaveIntent(ctx, existing)
		case errors.Is(err, domain.ErrNotFound):
			intent = &models.SessionIntent{
				SessionID: sessionID,
				UserID:    callerID,
				Status:    cmd.Status,
			}
			return tx.CreateIntent(ctx, intent)
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return intent, nil
}

func (s *Tables) CheckIn(ctx context.Context, callerID, sessionID uuid.UUID) (*models.SessionIntent, error) {
	var intent *models.SessionIntent
	err := s.Repo.RunInTx(ctx, func(tx *repo.Repo) error {
		session, err := tx.FindSessionByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := s.Gate.RequireMember(ctx, tx, session.TableID, callerID); err != nil {
			return err
		}

		intent, err = tx.FindIntent(ctx, sessionID, callerID)
		if err != nil {
			return err
		}
		if intent.Status != models.IntentAttending {
			return domain.ErrNotAttending
		}

		now := time.Now().UTC()
		intent.CheckedInAt = &now
		return tx.SaveIntent(ctx, intent)
	})
	if err != nil {
		return nil, err
	}
	return intent, nil
}
