package domain

import "errors"

// Boundary errors. ErrUnauthorized covers every credential-resolution failure
// and never carries the underlying reason.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("access forbidden")
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role value")
	ErrUserNotFound       = errors.New("user not found")
	ErrMachineKeyNotFound = errors.New("machine key not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrPluginNotFound     = errors.New("plugin not found")
	ErrEmptyArtifact      = errors.New("uploaded artifact is empty")
)

var (
	ErrVerifierFailed  = errors.New("credential verification task failed")
	ErrVerifierStopped = errors.New("credential verifier stopped")
)
