// Package token implements single-use purpose tokens as signed JWTs whose
// IDs are tracked in Redis. The signature proves origin; the Redis record
// enforces single use.
package token

import (
	"context"
	"time"

	"passport/config"
	"passport/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const purposeKeyPrefix = "purpose:"

// purposeClaims carries the purpose alongside the registered claim set.
type purposeClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// purposeTokenService implements service.PurposeTokenService.
type purposeTokenService struct {
	client     redis.Cmdable
	secretKey  []byte
	confirmTTL time.Duration
	resetTTL   time.Duration
}

// NewPurposeTokenService is the constructor for purposeTokenService.
func NewPurposeTokenService(client *redis.Client, cfg *config.Config) service.PurposeTokenService {
	return &purposeTokenService{
		client:     client,
		secretKey:  []byte(cfg.SecretKey.PurposeToken),
		confirmTTL: cfg.Tokens.ConfirmTTL,
		resetTTL:   cfg.Tokens.ResetTTL,
	}
}

// Issue creates a signed token bound to (identity, purpose) and registers its
// ID for single-use tracking.
func (s *purposeTokenService) Issue(ctx context.Context, identityID uuid.UUID, purpose service.TokenPurpose) (string, error) {
	now := time.Now()
	ttl := s.ttlFor(purpose)
	jti := uuid.NewString()

	claims := &purposeClaims{
		Purpose: string(purpose),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID.String(),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign purpose token")
	}

	key := purposeKeyPrefix + string(purpose) + ":" + jti
	if err := s.client.Set(ctx, key, identityID.String(), ttl).Err(); err != nil {
		return "", errors.Wrap(err, "failed to register purpose token")
	}

	return signed, nil
}

// Verify validates the signature and claims, then consumes the token's Redis
// record. The GETDEL makes the second verification of the same token fail.
func (s *purposeTokenService) Verify(ctx context.Context, token string, purpose service.TokenPurpose) (uuid.UUID, error) {
	claims := &purposeClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, service.ErrTokenExpired
		}

		return uuid.Nil, service.ErrTokenInvalid
	}

	if !parsed.Valid || claims.Purpose != string(purpose) {
		return uuid.Nil, service.ErrTokenInvalid
	}

	identityID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, service.ErrTokenInvalid
	}

	key := purposeKeyPrefix + string(purpose) + ":" + claims.ID
	stored, err := s.client.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// Already consumed, or the record outlived its TTL.
		return uuid.Nil, service.ErrTokenExpired
	}
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "failed to consume purpose token")
	}

	if stored != identityID.String() {
		return uuid.Nil, service.ErrTokenInvalid
	}

	return identityID, nil
}

func (s *purposeTokenService) ttlFor(purpose service.TokenPurpose) time.Duration {
	if purpose == service.PurposePasswordReset {
		return s.resetTTL
	}

	return s.confirmTTL
}
