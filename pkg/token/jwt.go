package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

var (
	ErrInvalidToken = errors.New("token is invalid or expired")
	ErrWrongType    = errors.New("token has wrong type")
)

// Claims carries the account id as subject plus the token kind.
type Claims struct {
	jwt.RegisteredClaims
	TokenType Type `json:"token_type"`
}

// Pair is an issued access/refresh token couple.
type Pair struct {
	Access  string
	Refresh string
}

// Manager signs and verifies HS256 tokens with a process-wide secret.
// It holds no mutable state and is safe for concurrent use.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (m *Manager) IssuePair(userID int64) (*Pair, error) {
	access, err := m.issue(userID, TypeAccess, m.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := m.issue(userID, TypeRefresh, m.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &Pair{Access: access, Refresh: refresh}, nil
}

// Refresh validates a refresh token and mints a new access token for its subject.
func (m *Manager) Refresh(refreshToken string) (string, error) {
	userID, err := m.Verify(refreshToken, TypeRefresh)
	if err != nil {
		return "", err
	}
	return m.issue(userID, TypeAccess, m.accessTTL)
}

// Verify checks signature, expiry and kind, and returns the subject account id.
func (m *Manager) Verify(tokenString string, want Type) (int64, error) {
	claims := &Claims{}

	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tok.Valid {
		return 0, ErrInvalidToken
	}

	if claims.TokenType != want {
		return 0, ErrWrongType
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}

	return userID, nil
}

func (m *Manager) issue(userID int64, typ Type, ttl time.Duration) (string, error) {
	now := m.now()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: typ,
	})

	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}

	return signed, nil
}
