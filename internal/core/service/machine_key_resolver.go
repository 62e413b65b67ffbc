package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cogere/artifact-host/internal/core/domain"
	"github.com/cogere/artifact-host/internal/core/ports"
)

const basicScheme = "Basic "

// MachineKeyResolver authenticates service accounts presenting
// "Authorization: Basic base64(<key id>:<secret>)".
type MachineKeyResolver struct {
	keys     ports.MachineKeyRepository
	verifier ports.CredentialVerifier
	log      zerolog.Logger
}

func NewMachineKeyResolver(keys ports.MachineKeyRepository, verifier ports.CredentialVerifier, log zerolog.Logger) *MachineKeyResolver {
	return &MachineKeyResolver{keys: keys, verifier: verifier, log: log}
}

// Resolve decodes header and returns the matching machine key. Every
// credential problem, whatever its cause, yields domain.ErrUnauthorized; the
// cause is only written to the debug log. Other errors are infrastructure
// faults.
func (r *MachineKeyResolver) Resolve(ctx context.Context, header string) (*domain.MachineKey, error) {
	encoded, ok := strings.CutPrefix(header, basicScheme)
	if !ok {
		return nil, r.reject("no basic authorization header")
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, r.reject("credential payload is not valid base64")
	}
	if !utf8.Valid(raw) {
		return nil, r.reject("credential payload is not valid utf-8")
	}

	keyID, secret, found := strings.Cut(string(raw), ":")
	if !found {
		return nil, r.reject("credential payload has no separator")
	}

	id, err := uuid.Parse(keyID)
	if err != nil {
		return nil, r.reject("machine key id is not a uuid")
	}

	key, err := r.keys.FindByID(ctx, id)
	hash := dummyHash()
	switch {
	case errors.Is(err, domain.ErrMachineKeyNotFound):
		key = nil
	case err != nil:
		return nil, fmt.Errorf("resolve machine key: %w", err)
	default:
		hash = key.KeyHash
	}

	valid, err := r.verifier.Verify(ctx, secret, hash)
	if err != nil {
		return nil, fmt.Errorf("resolve machine key: %w", err)
	}
	if key == nil {
		return nil, r.reject("machine key not found")
	}
	if !valid {
		return nil, r.reject("machine key secret mismatch")
	}

	r.log.Debug().Str("machine", key.Description).Msg("machine key accepted")
	return key, nil
}

func (r *MachineKeyResolver) reject(reason string) error {
	r.log.Debug().Str("reason", reason).Msg("machine key rejected")
	return domain.ErrUnauthorized
}
