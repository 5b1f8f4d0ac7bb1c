package auth

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/appcheck"
	fbauth "firebase.google.com/go/v4/auth"
)

type fakeIDTokens struct {
	tok *fbauth.Token
	err error
}

func (f fakeIDTokens) VerifyIDToken(context.Context, string) (*fbauth.Token, error) {
	return f.tok, f.err
}

type fakeAppCheck struct{ err error }

func (f fakeAppCheck) VerifyToken(string) (*appcheck.DecodedAppCheckToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &appcheck.DecodedAppCheckToken{AppID: "1:123:web:abc"}, nil
}

func TestFirebaseVerifier(t *testing.T) {
	tests := []struct {
		name     string
		claims   map[string]interface{}
		wantRole string
	}{
		{name: "plain user", claims: map[string]interface{}{"email": "u@example.com"}},
		{name: "role claim", claims: map[string]interface{}{"role": "admin"}, wantRole: "admin"},
		{name: "admin flag", claims: map[string]interface{}{"admin": true}, wantRole: "admin"},
		{name: "admin flag false", claims: map[string]interface{}{"admin": false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &FirebaseVerifier{client: fakeIDTokens{tok: &fbauth.Token{UID: "fb-uid", Claims: tt.claims}}}
			id, err := v.Verify(context.Background(), "id-token")
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if id.UID != "fb-uid" || id.Role != tt.wantRole {
				t.Errorf("identity = %+v", id)
			}
		})
	}

	v := &FirebaseVerifier{client: fakeIDTokens{err: errors.New("ID token has expired")}}
	if _, err := v.Verify(context.Background(), "x"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestFirebaseAppCheck(t *testing.T) {
	ok := &FirebaseAppCheck{client: fakeAppCheck{}}
	if err := ok.VerifyAppCheck(context.Background(), "token"); err != nil {
		t.Fatalf("VerifyAppCheck: %v", err)
	}
	bad := &FirebaseAppCheck{client: fakeAppCheck{err: errors.New("token has expired")}}
	if err := bad.VerifyAppCheck(context.Background(), "token"); err == nil {
		t.Fatal("expected error")
	}
}
