package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"visitscheduler/internal/domain"
)

// ErrInvalidToken is returned for tokens that fail signature or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the caller extracted from a verified bearer token.
type Identity struct {
	Username   string
	ClientType domain.UserType
}

type jwtClaims struct {
	jwt.RegisteredClaims
	Username   string `json:"user_name"`
	ClientType string `json:"client_type"`
}

// TokenVerifier checks bearer tokens and extracts the caller identity.
type TokenVerifier interface {
	Verify(tokenString string) (*Identity, error)
}

type jwtVerifier struct {
	secret []byte
}

// NewJWTVerifier returns a TokenVerifier that accepts HS256 JWTs signed with
// the given secret.
func NewJWTVerifier(secret string) TokenVerifier {
	return &jwtVerifier{secret: []byte(secret)}
}

func (v *jwtVerifier) Verify(tokenString string) (*Identity, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Username == "" || claims.ClientType == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{
		Username:   claims.Username,
		ClientType: domain.UserType(claims.ClientType),
	}, nil
}
