package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/xsantcastx/xsantcastx/config"
)

type Claims struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func GenerateAccessToken(cfg *config.JWTConfig, uid, email, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UID:   uid,
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    cfg.Issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.AccessSecret))
}

func ParseAccessToken(cfg *config.JWTConfig, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.AccessSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(cfg.Issuer))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// JWTVerifier accepts HS256 tokens minted with the shared secret.
type JWTVerifier struct {
	cfg *config.JWTConfig
}

func NewJWTVerifier(cfg *config.JWTConfig) *JWTVerifier {
	return &JWTVerifier{cfg: cfg}
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	claims, err := ParseAccessToken(v.cfg, token)
	if err != nil {
		return nil, err
	}
	return &Identity{UID: claims.UID, Email: claims.Email, Role: claims.Role}, nil
}
