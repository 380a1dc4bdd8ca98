package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/questlog/tablehall/internal/domain"
	"github.com/questlog/tablehall/internal/events"
	"github.com/questlog/tablehall/internal/hash"
	"github.com/questlog/tablehall/internal/logging"
	"github.com/questlog/tablehall/internal/models"
	"github.com/questlog/tablehall/internal/repo"
	"github.com/questlog/tablehall/internal/tokens"
)

type Auth struct {
	Repo       *repo.Repo
	Hasher     *hash.Hasher
	Tokens     *tokens.Service
	Events     *events.Producer
	RefreshTTL time.Duration
}

type RegisterCommand struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func (c RegisterCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Username, validation.Required, validation.Length(3, 32), is.Alphanumeric),
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required),
		validation.Field(&c.DisplayName, validation.Length(0, 64)),
	)
}

type LoginCommand struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c LoginCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required),
	)
}

type AuthResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

func (s *Auth) Register(ctx context.Context, cmd RegisterCommand) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	pwHash, err := s.Hasher.Hash(ctx, cmd.Password)
	if err != nil {
		if errors.Is(err, hash.ErrWeakPassword) {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		l.Error("hash_failed", "error", err)
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     cmd.Username,
		Email:        cmd.Email,
		PasswordHash: pwHash,
		DisplayName:  cmd.DisplayName,
		Role:         models.RoleUser,
	}

	// Uniqueness is left to the database so there is no window between a
	// pre-check and the insert; the constraint violation comes back as a
	// typed domain error.
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	res, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.Events.Publish(ctx, user.ID.String(), "user_registered", map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
	}); err != nil {
		l.Warn("event_publish_failed", "error", err)
	}

	l.Info("user_registered", "user_id", user.ID)
	return res, nil
}

func (s *Auth) Login(ctx context.Context, cmd LoginCommand) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Unknown email and wrong password collapse into the same error so the
	// response cannot be used to enumerate accounts.
	user, err := s.Repo.FindUserByEmail(ctx, cmd.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.Hasher.Verify(ctx, cmd.Password, user.PasswordHash)
	if err != nil {
		l.Error("verify_failed", "error", err)
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	res, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	l.Info("login_successful", "user_id", user.ID)
	return res, nil
}

// Refresh rotates the presented refresh token: the consume is a single
// conditional update, the replacement is created in the same transaction.
// Reuse of a consumed token means the secret leaked, so every outstanding
// token of that user is revoked before the 401 goes out.
func (s *Auth) Refresh(ctx context.Context, rawToken string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if rawToken == "" {
		return nil, domain.ErrRefreshNotFound
	}

	fingerprint := tokens.Fingerprint(rawToken)
	var (
		res         *AuthResult
		reuseUserID uuid.UUID
	)

	err := s.Repo.RunInTx(ctx, func(tx *repo.Repo) error {
		old, err := tx.ConsumeRefreshToken(ctx, fingerprint, time.Now().UTC())
		if err != nil {
			if errors.Is(err, domain.ErrRefreshUsed) && old != nil {
				reuseUserID = old.UserID
			}
			return err
		}

		user, err := tx.FindUserByID(ctx, old.UserID)
		if err != nil {
			return err
		}

		res, err = s.issueTokensTx(ctx, tx, user)
		return err
	})
	if err != nil {
		// The rotation transaction rolls back on the error return, so the
		// reaction to reuse must commit on its own connection.
		if reuseUserID != uuid.Nil {
			l.Warn("refresh_reuse_detected", "user_id", reuseUserID)
			if revokeErr := s.Repo.RevokeAllForUser(ctx, reuseUserID); revokeErr != nil {
				l.Error("reuse_revocation_failed", "user_id", reuseUserID, "error", revokeErr)
			}
		}
		return nil, err
	}

	l.Info("token_refreshed", "user_id", res.User.ID)
	return res, nil
}

// Logout revokes every refresh token of the caller. Already-issued access
// tokens simply expire.
func (s *Auth) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.Repo.RevokeAllForUser(ctx, userID)
}

func (s *Auth) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.Repo.FindUserByID(ctx, userID)
}

type UpdatePasswordCommand struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (c UpdatePasswordCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.OldPassword, validation.Required),
		validation.Field(&c.NewPassword, validation.Required),
	)
}

func (s *Auth) UpdatePassword(ctx context.Context, userID uuid.UUID, cmd UpdatePasswordCommand) error {
	l := logging.FromContext(ctx).With("svc", "auth.update_password", "user_id", userID)

	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	user, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.Hasher.Verify(ctx, cmd.OldPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidCredentials
	}

	newHash, err := s.Hasher.Hash(ctx, cmd.NewPassword)
	if err != nil {
		if errors.Is(err, hash.ErrWeakPassword) {
			return fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		return err
	}

	err = s.Repo.RunInTx(ctx, func(tx *repo.Repo) error {
		if err := tx.UpdatePasswordHash(ctx, userID, newHash); err != nil {
			return err
		}
		return tx.RevokeAllForUser(ctx, userID)
	})
	if err != nil {
		return err
	}

	l.Info("password_updated")
	return nil
}

func (s *Auth) issueTokens(ctx context.Context, user *models.User) (*AuthResult, error) {
	return s.issueTokensTx(ctx, s.Repo, user)
}

func (s *Auth) issueTokensTx(ctx context.Context, r *repo.Repo, user *models.User) (*AuthResult, error) {
	access, exp, err := s.Tokens.IssueAccess(user.ID)
	if err != nil {
		return nil, err
	}

	raw, err := tokens.NewRefreshToken()
	if err != nil {
		return nil, err
	}

	record := &models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: tokens.Fingerprint(raw),
		ExpiresAt: time.Now().UTC().Add(s.RefreshTTL),
	}
	if err := r.CreateRefreshToken(ctx, record); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresIn:    int64(time.Until(exp).Seconds()),
	}, nil
}
