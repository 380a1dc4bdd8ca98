package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/questlog/tablehall/internal/domain"
)

// translateConstraint turns storage-level constraint violations into typed
// domain errors. Uniqueness is enforced by the database rather than with a
// pre-check, so this is where those invariants surface. Under Postgres the
// constraint name arrives on *pq.Error; under the sqlite test driver it has
// to be fished out of the message.
func translateConstraint(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return uniqueViolation(pqErr.Constraint)
		case "23503":
			return fmt.Errorf("%w: %s", domain.ErrForeignKey, pqErr.Constraint)
		}
		return err
	}

	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed: index") {
		switch {
		case strings.Contains(msg, "users.username"):
			return domain.ErrUsernameTaken
		case strings.Contains(msg, "users.email"):
			return domain.ErrEmailTaken
		case strings.Contains(msg, "table_memberships"):
			return domain.ErrAlreadyMember
		case strings.Contains(msg, "session_intents"):
			return domain.ErrIntentExists
		// sqlite reports the violated columns, not the partial index name.
		case strings.Contains(msg, "table_requests"):
			return domain.ErrPendingRequestExists
		}
		return fmt.Errorf("%w: %s", domain.ErrUnknownConstraint, msg)
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return fmt.Errorf("%w: %s", domain.ErrForeignKey, msg)
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: duplicated key", domain.ErrUnknownConstraint)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return domain.ErrForeignKey
	}

	return err
}

func uniqueViolation(constraint string) error {
	switch constraint {
	case "users_username_key":
		return domain.ErrUsernameTaken
	case "users_email_key":
		return domain.ErrEmailTaken
	case "table_memberships_pkey":
		return domain.ErrAlreadyMember
	case "session_intents_pkey":
		return domain.ErrIntentExists
	case "table_requests_pending_user_table_key":
		return domain.ErrPendingRequestExists
	}
	return fmt.Errorf("%w: %s", domain.ErrUnknownConstraint, constraint)
}
