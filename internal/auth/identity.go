// Package auth resolves bearer tokens into caller identities.
package auth

import (
	"context"
	"errors"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is an authenticated caller.
type Identity struct {
	UID   string
	Email string
	Role  string
}

// Verifier turns a bearer token into an Identity or ErrInvalidToken.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// AppCheckVerifier validates a Firebase App Check token sent by the web client.
type AppCheckVerifier interface {
	VerifyAppCheck(ctx context.Context, token string) error
}
