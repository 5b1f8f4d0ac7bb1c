package auth

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/appcheck"
	fbauth "firebase.google.com/go/v4/auth"

	"github.com/xsantcastx/xsantcastx/internal/domain"
)

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier checks Firebase Auth ID tokens. The role comes from a
// "role" custom claim, or "admin": true.
type FirebaseVerifier struct {
	client idTokenVerifier
}

func NewFirebaseVerifier(client *fbauth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	tok, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return identityFromFirebase(tok), nil
}

func identityFromFirebase(tok *fbauth.Token) *Identity {
	id := &Identity{UID: tok.UID}
	if email, ok := tok.Claims["email"].(string); ok {
		id.Email = email
	}
	if role, ok := tok.Claims["role"].(string); ok {
		id.Role = role
	}
	if admin, ok := tok.Claims["admin"].(bool); ok && admin {
		id.Role = domain.RoleAdmin
	}
	return id
}

type appCheckClient interface {
	VerifyToken(token string) (*appcheck.DecodedAppCheckToken, error)
}

type FirebaseAppCheck struct {
	client appCheckClient
}

func NewFirebaseAppCheck(client *appcheck.Client) *FirebaseAppCheck {
	return &FirebaseAppCheck{client: client}
}

func (a *FirebaseAppCheck) VerifyAppCheck(_ context.Context, token string) error {
	if _, err := a.client.VerifyToken(token); err != nil {
		return fmt.Errorf("app check: %w", err)
	}
	return nil
}
