package ports

import (
	"context"

	"github.com/cogere/artifact-host/internal/core/domain"
)

// RequestCredentials is the raw authentication material carried by a request.
// Either field may be empty.
type RequestCredentials struct {
	SessionToken  string
	Authorization string
}

// AuthService is what HTTP handlers need from the authentication layer.
type AuthService interface {
	Login(ctx context.Context, creds domain.Credentials) (token string, user *domain.User, err error)
	Logout(ctx context.Context, token string) error
	ResolveIdentity(ctx context.Context, creds RequestCredentials) (domain.Identity, error)
}
