package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidCredentials is an authentication failure: the username or
	// password did not match the static table.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is an authorization failure: missing, malformed,
	// expired, or badly signed. Callers must discard their stored token
	// and re-authenticate.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims carried by an issued bearer token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service authenticates a fixed credential set and issues signed,
// time-limited bearer tokens (HS256).
type Service struct {
	secret []byte
	ttl    time.Duration
	users  map[string]string // username → password
}

// NewService creates a Service. users is the static credential table from
// configuration.
func NewService(secret string, ttl time.Duration, users map[string]string) *Service {
	return &Service{secret: []byte(secret), ttl: ttl, users: users}
}

// Login checks the credentials and returns a token asserting the username,
// expiring after the configured TTL.
func (s *Service) Login(username, password string) (string, error) {
	pass, ok := s.users[username]
	if !ok || pass != password {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Authenticate verifies signature and expiry and returns the username the
// token asserts. Every verification failure comes back as ErrInvalidToken.
func (s *Service) Authenticate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Username == "" {
		return "", ErrInvalidToken
	}
	return claims.Username, nil
}
