// Package auth issues and validates the merchant bearer tokens of the topics API.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrMissingMerchant = errors.New("merchant name is required")
)

// Claims represents the JWT claims
type Claims struct {
	Merchant string `json:"merchant"`
	jwt.RegisteredClaims
}

// Service defines the token service interface
type Service interface {
	IssueToken(merchant string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Config holds authentication configuration
type Config struct {
	SecretKey     string
	TokenDuration time.Duration
	Issuer        string
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		SecretKey:     "change-me-in-production",
		TokenDuration: 30 * 24 * time.Hour,
		Issuer:        "topic-miner",
	}
}

// JWTService implements the Service interface with HS256 tokens
type JWTService struct {
	config Config
	now    func() time.Time
}

// NewJWTService creates a new JWT-based token service
func NewJWTService(config Config) *JWTService {
	def := DefaultConfig()
	if config.SecretKey == "" {
		config.SecretKey = def.SecretKey
	}
	if config.TokenDuration <= 0 {
		config.TokenDuration = def.TokenDuration
	}
	if config.Issuer == "" {
		config.Issuer = def.Issuer
	}
	return &JWTService{config: config, now: time.Now}
}

// IssueToken signs a token granting read access to one merchant's topics
func (s *JWTService) IssueToken(merchant string) (string, error) {
	merchant = strings.TrimSpace(merchant)
	if merchant == "" {
		return "", ErrMissingMerchant
	}

	now := s.now()
	claims := &Claims{
		Merchant: merchant,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   merchant,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.SecretKey))
}

// ValidateToken validates a JWT token and returns the claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.SecretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithTimeFunc(s.now),
	)

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Merchant == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
