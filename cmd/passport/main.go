package main

import (
	"context"
	"log/slog"
	"os"

	"passport/config"
	"passport/internal/delivery"
	"passport/internal/delivery/http"
	"passport/internal/delivery/http/middleware"
	"passport/internal/delivery/http/router/handler"
	"passport/internal/domain/service"
	"passport/internal/infra/auth"
	"passport/internal/infra/auth/google"
	logs "passport/internal/infra/log"
	"passport/internal/infra/notification"
	"passport/internal/infra/oauthstate"
	"passport/internal/infra/persistence/postgres"
	"passport/internal/infra/qrcode"
	"passport/internal/infra/redis"
	"passport/internal/infra/session"
	"passport/internal/infra/token"
	"passport/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
		redis.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewIdentityRepository,
			postgres.NewExternalLoginRepository,
			postgres.NewTwoFactorRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewTOTPService,
			auth.NewRecoveryCodeGenerator,
			google.NewOAuthService,
			session.NewRedisStore,
			token.NewPurposeTokenService,
			oauthstate.NewRedisStore,
			notification.NewSlogNotifier,
			newQRCodeService,
		),
	)
}

// newQRCodeService creates a QR code service with enrollment-friendly defaults.
func newQRCodeService() service.QRCodeService {
	return qrcode.NewQRCodeService(256, "M")
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewLoginService,
			impl.NewAccountService,
			impl.NewTwoFactorService,
			impl.NewExternalService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
			middleware.NewRequestIDMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewAccountHandler,
			handler.NewTwoFactorHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
