package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/klokku/calgate/internal/utils"
)

var (
	ErrTokenMissing = errors.New("session token is missing")
	ErrTokenInvalid = errors.New("session token is invalid or expired")
)

// Identity is the part of the Google profile carried in the session token.
type Identity struct {
	Id    string
	Name  string
	Email string
}

// Claims is the session token payload: exactly id, name and email plus exp.
type Claims struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (c Claims) Identity() Identity {
	return Identity{Id: c.Id, Name: c.Name, Email: c.Email}
}

type Verifier interface {
	Verify(token string) (Claims, error)
}

// TokenService signs and verifies HS256 session tokens with a shared secret.
type TokenService struct {
	secret []byte
	expiry time.Duration
	clock  utils.Clock
	parser *jwt.Parser
}

func NewTokenService(secret string, expiry time.Duration, clock utils.Clock) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		expiry: expiry,
		clock:  clock,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(clock.Now),
		),
	}
}

func (s *TokenService) Issue(identity Identity) (string, error) {
	claims := Claims{
		Id:    identity.Id,
		Name:  identity.Name,
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(s.expiry)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) Verify(token string) (Claims, error) {
	if token == "" {
		return Claims{}, ErrTokenMissing
	}
	var claims Claims
	parsed, err := s.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}
