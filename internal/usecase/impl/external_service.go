package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "passport/internal/delivery/context"
	"passport/internal/domain/entity"
	"passport/internal/domain/lifecycle"
	"passport/internal/domain/repository"
	"passport/internal/domain/service"
	"passport/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// externalService implements the ExternalLoginUsecase interface.
type externalService struct {
	txManager  repository.TransactionManager
	oauth      service.OAuthAuthService
	stateStore service.OAuthStateStore
	sessions   service.SessionIssuer
	logger     *slog.Logger
}

// ExternalServiceParams holds dependencies for externalService, injected by Fx.
type ExternalServiceParams struct {
	fx.In

	TxManager  repository.TransactionManager
	OAuth      service.OAuthAuthService
	StateStore service.OAuthStateStore
	Sessions   service.SessionIssuer
	Logger     *slog.Logger
}

// NewExternalService is the constructor for externalService.
func NewExternalService(params ExternalServiceParams) usecase.ExternalLoginUsecase {
	return &externalService{
		txManager:  params.TxManager,
		oauth:      params.OAuth,
		stateStore: params.StateStore,
		sessions:   params.Sessions,
		logger:     params.Logger,
	}
}

func (srv *externalService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Challenge stores the sanitized return destination and returns the provider
// authorization URL.
func (srv *externalService) Challenge(ctx context.Context, returnURL string) (*usecase.ChallengeOutput, error) {
	state := uuid.NewString()

	if err := srv.stateStore.Save(ctx, state, sanitizeReturnURL(returnURL)); err != nil {
		srv.log(ctx).Error("Failed to save external login state", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to save external login state")
	}

	srv.log(ctx).Debug("External login challenge issued", slog.String("provider", string(srv.oauth.Provider())))

	return &usecase.ChallengeOutput{AuthorizationURL: srv.oauth.BuildAuthorizationURL(state)}, nil
}

// Callback consumes the state, exchanges the code and signs the user in.
func (srv *externalService) Callback(ctx context.Context, state, code string) (*usecase.CallbackOutput, error) {
	// Consume up front: the state is spent whether or not the rest succeeds.
	returnURL, ok, err := srv.stateStore.Consume(ctx, state)
	if err != nil {
		return nil, errors.Wrap(err, "failed to consume external login state")
	}
	if !ok {
		srv.log(ctx).Warn("External callback with unknown state")

		return nil, errors.Wrap(usecase.ErrExternalStateInvalid, "state unknown or already used")
	}

	if code == "" {
		srv.log(ctx).Warn("External callback without authorization code")

		return nil, errors.Wrap(usecase.ErrExternalStateInvalid, "authorization code missing")
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, lifecycle.ExternalCallTimeout)
	defer cancel()

	oauthUser, err := srv.oauth.ExchangeCode(exchangeCtx, code)
	if err != nil {
		srv.log(ctx).Warn("External code exchange failed", slog.Any("error", err))

		return nil, errors.Wrap(usecase.ErrExternalStateInvalid, "code exchange failed")
	}

	if oauthUser.ID == "" || oauthUser.Email == "" || !oauthUser.EmailVerified {
		srv.log(ctx).Warn("External provider returned no verified email", slog.String("provider", string(oauthUser.Provider)))

		return nil, errors.Wrap(usecase.ErrExternalNoEmail, "provider identity incomplete")
	}

	identity, err := srv.resolveIdentity(ctx, oauthUser)
	if err != nil {
		return nil, err
	}

	// External logins always get the persistent lifetime; the provider already
	// vouched for the user across visits.
	session, err := srv.sessions.Issue(ctx, identity.ID, true)
	if err != nil {
		srv.log(ctx).Error("Failed to issue session after external login", slog.Any("identityID", identity.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue session")
	}

	srv.log(ctx).Info("External login succeeded",
		slog.Any("identityID", identity.ID),
		slog.String("provider", string(oauthUser.Provider)))

	return &usecase.CallbackOutput{
		Session:   session,
		Identity:  identity,
		ReturnURL: returnURL,
	}, nil
}

// resolveIdentity finds the identity bound to the provider subject, links by
// verified email, or provisions a fresh identity, in that order.
func (srv *externalService) resolveIdentity(ctx context.Context, oauthUser *service.OAuthUser) (*entity.Identity, error) {
	var identity *entity.Identity

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		identityRepo := repoFactory.IdentityRepo()
		externalRepo := repoFactory.ExternalLoginRepo()

		binding, findErr := externalRepo.Find(ctx, oauthUser.Provider, oauthUser.ID)
		if findErr != nil && !errors.Is(findErr, repository.ErrExternalLoginNotFound) {
			return errors.Wrap(findErr, "failed to look up external binding")
		}

		if binding != nil {
			existing, loadErr := identityRepo.FindByID(ctx, binding.IdentityID)
			if loadErr != nil {
				return errors.Wrap(loadErr, "failed to load identity for external binding")
			}
			identity = existing

			return srv.syncPictureClaim(ctx, identityRepo, identity, oauthUser)
		}

		email := entity.NormalizeEmail(oauthUser.Email)

		existing, loadErr := identityRepo.FindByEmail(ctx, email)
		if loadErr != nil && !errors.Is(loadErr, repository.ErrIdentityNotFound) {
			return errors.Wrap(loadErr, "failed to look up identity by email")
		}

		if existing == nil {
			existing = &entity.Identity{
				Email: email,
				// The provider verified the address; no confirmation round trip.
				EmailConfirmed: true,
			}
			if createErr := identityRepo.Create(ctx, existing); createErr != nil {
				srv.log(ctx).Error("Failed to provision identity for external login", slog.String("email", email), slog.Any("error", createErr))

				return errors.Wrap(usecase.ErrExternalCreateFailed, createErr.Error())
			}
		}

		newBinding := &entity.ExternalLogin{
			IdentityID:  existing.ID,
			Provider:    oauthUser.Provider,
			ProviderKey: oauthUser.ID,
		}
		if createErr := externalRepo.Create(ctx, newBinding); createErr != nil {
			return errors.Wrap(usecase.ErrExternalCreateFailed, createErr.Error())
		}

		identity = existing

		return srv.syncPictureClaim(ctx, identityRepo, identity, oauthUser)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute external login transaction")
	}

	return identity, nil
}

// syncPictureClaim mirrors the provider's picture onto the identity on every
// login, replacing any stale value.
func (srv *externalService) syncPictureClaim(ctx context.Context, identityRepo repository.IdentityRepository, identity *entity.Identity, oauthUser *service.OAuthUser) error {
	if oauthUser.Picture == "" || identity.ClaimValue(entity.ClaimTypePicture) == oauthUser.Picture {
		return nil
	}

	if err := identityRepo.UpsertClaim(ctx, identity.ID, entity.ClaimTypePicture, oauthUser.Picture); err != nil {
		return errors.Wrap(err, "failed to upsert picture claim")
	}

	refreshClaim(identity, entity.ClaimTypePicture, oauthUser.Picture)

	return nil
}

// refreshClaim updates the in-memory claim set to match the upsert.
func refreshClaim(identity *entity.Identity, claimType, value string) {
	for i := range identity.Claims {
		if identity.Claims[i].Type == claimType {
			identity.Claims[i].Value = value

			return
		}
	}

	identity.Claims = append(identity.Claims, entity.Claim{
		IdentityID: identity.ID,
		Type:       claimType,
		Value:      value,
	})
}

// sanitizeReturnURL keeps redirects on-site: only absolute paths survive.
func sanitizeReturnURL(returnURL string) string {
	if returnURL == "" || !strings.HasPrefix(returnURL, "/") || strings.HasPrefix(returnURL, "//") {
		return "/"
	}

	return returnURL
}
