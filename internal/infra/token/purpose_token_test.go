package token

import (
	"context"
	"testing"
	"time"

	"passport/config"
	"passport/internal/domain/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) service.PurposeTokenService {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		Tokens: &config.TokensConfig{
			ConfirmTTL: 24 * time.Hour,
			ResetTTL:   30 * time.Minute,
		},
	}
	cfg.SecretKey.PurposeToken = "test-secret-key"

	return NewPurposeTokenService(client, cfg)
}

func TestPurposeTokenService_IssueAndVerify(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	identityID := uuid.New()

	token, err := svc.Issue(ctx, identityID, service.PurposeEmailConfirmation)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	verified, err := svc.Verify(ctx, token, service.PurposeEmailConfirmation)
	require.NoError(t, err)
	assert.Equal(t, identityID, verified)
}

func TestPurposeTokenService_SecondVerifyFails(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	token, err := svc.Issue(ctx, uuid.New(), service.PurposePasswordReset)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, token, service.PurposePasswordReset)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, token, service.PurposePasswordReset)
	assert.ErrorIs(t, err, service.ErrTokenExpired)
}

func TestPurposeTokenService_PurposeMismatchRejected(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	token, err := svc.Issue(ctx, uuid.New(), service.PurposeEmailConfirmation)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, token, service.PurposePasswordReset)
	assert.ErrorIs(t, err, service.ErrTokenInvalid)
}

func TestPurposeTokenService_GarbageTokenRejected(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Verify(context.Background(), "not-a-jwt", service.PurposeEmailConfirmation)

	assert.ErrorIs(t, err, service.ErrTokenInvalid)
}

func TestPurposeTokenService_UnregisteredTokenRejected(t *testing.T) {
	issuer := newTestService(t)
	verifier := newTestService(t)

	ctx := context.Background()

	token, err := issuer.Issue(ctx, uuid.New(), service.PurposeEmailConfirmation)
	require.NoError(t, err)

	// Same signing key but a different single-use store: the signature holds
	// yet the record is missing, so the token reads as spent.
	_, err = verifier.Verify(ctx, token, service.PurposeEmailConfirmation)
	assert.ErrorIs(t, err, service.ErrTokenExpired)
}
