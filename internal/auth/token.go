package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Additional-Code/tillpos/internal/config"
)

// Claims is the JWT payload issued to staff terminals.
type Claims struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates staff bearer tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a TokenManager from the auth configuration.
func NewTokenManager(cfg config.Config) *TokenManager {
	return &TokenManager{
		secret: []byte(cfg.Auth.JWTSecret),
		issuer: cfg.Auth.Issuer,
		ttl:    cfg.Auth.TokenTTL,
		now:    time.Now,
	}
}

// Issue signs a token for op.
func (m *TokenManager) Issue(op Operator) (string, error) {
	if op.StaffID == "" || op.Name == "" {
		return "", errors.New("staff id and name are required")
	}
	if !op.Role.Valid() {
		return "", fmt.Errorf("unknown role %q", op.Role)
	}

	now := m.now()
	claims := &Claims{
		Name: op.Name,
		Role: op.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   op.StaffID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse validates raw and returns the operator it was issued to.
func (m *TokenManager) Parse(raw string) (Operator, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Operator{}, err
	}
	if !token.Valid {
		return Operator{}, errors.New("invalid token")
	}
	if !claims.Role.Valid() {
		return Operator{}, fmt.Errorf("unknown role %q", claims.Role)
	}

	return Operator{StaffID: claims.Subject, Name: claims.Name, Role: claims.Role}, nil
}
