package server

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonathan/careerpilot/internal/cache"
	"github.com/jonathan/careerpilot/internal/config"
	"github.com/jonathan/careerpilot/internal/server/middleware"
)

// Claims represents JWT claims for a recruiter session.
type Claims struct {
	RecruiterID uuid.UUID `json:"recruiter_id"`
	Email       string    `json:"email"`
	jwt.RegisteredClaims
}

// GetRecruiterID implements middleware.RecruiterIDGetter.
func (c *Claims) GetRecruiterID() uuid.UUID {
	return c.RecruiterID
}

// AsTokenValidator returns a TokenValidator adapter for this JWTService.
func (s *JWTService) AsTokenValidator() middleware.TokenValidator {
	return &jwtServiceValidator{service: s}
}

type jwtServiceValidator struct {
	service *JWTService
}

func (v *jwtServiceValidator) ValidateToken(tokenString string) (middleware.RecruiterIDGetter, error) {
	claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// errUnknownKey is returned when a token names a key that is not configured.
var errUnknownKey = errors.New("unknown signing key")

// JWTService issues and verifies recruiter tokens. Tokens carry a kid
// header derived from the signing secret; verification keys are resolved by
// kid through a TTL cache so that a rotated secret stops verifying once the
// cache entry expires or InvalidateKeys is called.
type JWTService struct {
	mu     sync.RWMutex
	config *config.JWTConfig
	keys   *cache.TTL[string, []byte]
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given configuration.
func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{
		config: cfg,
		keys:   cache.NewTTL[string, []byte](cfg.KeyCacheTTL),
		now:    time.Now,
	}
}

// keyID derives the kid for a secret.
func keyID(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:8])
}

// GenerateToken signs a token for the recruiter with the current secret.
func (s *JWTService) GenerateToken(recruiterID uuid.UUID, email string) (string, error) {
	s.mu.RLock()
	secret := s.config.Secret
	hours := s.config.ExpirationHours
	s.mu.RUnlock()

	now := s.now()
	claims := &Claims{
		RecruiterID: recruiterID,
		Email:       email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   recruiterID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(hours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = keyID(secret)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.resolveKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("token expired: %w", err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("invalid token signature: %w", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("malformed token: %w", err)
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}

func (s *JWTService) resolveKey(token *jwt.Token) (interface{}, error) {
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return nil, fmt.Errorf("%w: missing kid", errUnknownKey)
	}
	return s.keys.GetOrLoad(kid, s.loadKey)
}

// loadKey finds the configured secret whose kid matches.
func (s *JWTService) loadKey(kid string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, secret := range []string{s.config.Secret, s.config.PreviousSecret} {
		if secret != "" && keyID(secret) == kid {
			return []byte(secret), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", errUnknownKey, kid)
}

// Rotate makes secret the signing key. The old secret keeps verifying
// existing tokens as the previous secret.
func (s *JWTService) Rotate(secret string) {
	s.mu.Lock()
	cfg := *s.config
	cfg.PreviousSecret = cfg.Secret
	cfg.Secret = secret
	s.config = &cfg
	s.mu.Unlock()
	s.InvalidateKeys()
}

// InvalidateKeys drops every cached verification key.
func (s *JWTService) InvalidateKeys() {
	s.keys.Invalidate()
}
