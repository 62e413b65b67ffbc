package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/cogere/artifact-host/internal/core/domain"
)

// UserRepository looks up interactive accounts. Absence is reported with
// domain.ErrUserNotFound; any other error is an infrastructure fault.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// MachineKeyRepository looks up service-account keys. Absence is reported with
// domain.ErrMachineKeyNotFound.
type MachineKeyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.MachineKey, error)
	List(ctx context.Context) ([]*domain.MachineKey, error)
}

// Session is what the session layer remembers about a logged-in user.
type Session struct {
	UserID  uuid.UUID
	Binding string
}

// SessionStore issues and resolves opaque session tokens. Lookup reports an
// unknown or expired token with domain.ErrSessionNotFound.
type SessionStore interface {
	Create(ctx context.Context, s Session) (token string, err error)
	Lookup(ctx context.Context, token string) (*Session, error)
	Destroy(ctx context.Context, token string) error
}

// CredentialVerifier compares a candidate secret with a stored hash off the
// request goroutine. A false result with a nil error means "does not match";
// a non-nil error means the verification itself could not run.
type CredentialVerifier interface {
	Verify(ctx context.Context, secret, storedHash string) (bool, error)
}
