package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionTTL = time.Hour

var (
	// ErrInvalidToken means the bearer token failed verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingAccessToken means the token verified but carries no Gmail token.
	ErrMissingAccessToken = errors.New("invalid token: missing access_token")
)

type UserInfo struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

// DisplayName picks the name to greet the user with.
func (u UserInfo) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.GivenName
}

// Session is what a bearer token carries. Nothing is stored server-side.
type Session struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	UserInfo     UserInfo `json:"user_info"`
}

type sessionClaims struct {
	Session
	jwt.RegisteredClaims
}

// Sessions signs and verifies HS256 session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(secret string) *Sessions {
	return &Sessions{
		secret: []byte(secret),
		ttl:    sessionTTL,
		now:    time.Now,
	}
}

// WithClock returns a copy of s that reads time from now.
func (s *Sessions) WithClock(now func() time.Time) *Sessions {
	c := *s
	c.now = now
	return &c
}

// Issue signs a token for sess valid for one hour.
func (s *Sessions) Issue(sess Session) (string, error) {
	now := s.now()
	claims := sessionClaims{
		Session: sess,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token.SignedString failed: %w", err)
	}

	return token, nil
}

// Verify checks signature and expiry and returns the carried session.
func (s *Sessions) Verify(token string) (*Session, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}

	return &claims.Session, nil
}
