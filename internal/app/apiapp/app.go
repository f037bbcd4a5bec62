package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kenogenyi/zikistorez/internal/config"
	"github.com/kenogenyi/zikistorez/internal/infra/email"
	"github.com/kenogenyi/zikistorez/internal/infra/httpclient"
	"github.com/kenogenyi/zikistorez/internal/infra/paystack"
	s3infra "github.com/kenogenyi/zikistorez/internal/infra/s3"
	pgrepo "github.com/kenogenyi/zikistorez/internal/repo/postgres"
	redrepo "github.com/kenogenyi/zikistorez/internal/repo/redis"
	authsvc "github.com/kenogenyi/zikistorez/internal/services/auth"
	catalogsvc "github.com/kenogenyi/zikistorez/internal/services/catalog"
	checkoutsvc "github.com/kenogenyi/zikistorez/internal/services/checkout"
	mediasvc "github.com/kenogenyi/zikistorez/internal/services/media"
	paymentsvc "github.com/kenogenyi/zikistorez/internal/services/payments"
	ratesvc "github.com/kenogenyi/zikistorez/internal/services/rate"
	userssvc "github.com/kenogenyi/zikistorez/internal/services/users"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

// New wires every dependency once at startup and hands the concrete clients
// to the services that use them.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)

	userRepo := pgrepo.NewUserRepo(pool)
	productRepo := pgrepo.NewProductRepo(pool)
	orderRepo := pgrepo.NewOrderRepo(pool)
	mediaRepo := pgrepo.NewMediaRepo(pool)
	productFileRepo := pgrepo.NewProductFileRepo(pool)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	gateway := paystack.NewClient(
		httpclient.New(cfg.Paystack.Timeout),
		cfg.Paystack.BaseURL,
		cfg.Paystack.SecretKey,
	)

	var mailer *email.Sender
	if m, err := email.NewSender(email.Config{
		SMTPHost:    cfg.Email.SMTPHost,
		SMTPPort:    cfg.Email.SMTPPort,
		SMTPUser:    cfg.Email.SMTPUser,
		SMTPPass:    cfg.Email.SMTPPass,
		FromName:    cfg.Email.FromName,
		FromAddress: cfg.Email.FromAddress,
	}); err != nil {
		log.Warn("smtp init failed, continuing in degraded mode", zap.Error(err))
	} else {
		mailer = m
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, userRepo, cfg.Auth.RefreshTTL)
	loginLimiter := ratesvc.NewLimiter(rateRepo, cfg.Auth.LoginPerMin, cfg.Auth.LoginPer10s)

	catalogService := catalogsvc.NewService(productRepo, gateway, cfg.Paystack.Currency)
	checkoutService := checkoutsvc.NewService(productRepo, orderRepo, userRepo, gateway, cfg.Store.PublicURL)

	var paymentMailer paymentsvc.Mailer
	if mailer != nil {
		paymentMailer = mailer
	}
	paymentService := paymentsvc.NewService(paymentsvc.Dependencies{
		WebhookSecret: cfg.Paystack.WebhookSecret,
		Orders:        orderRepo,
		Users:         userRepo,
		Products:      productRepo,
		Mailer:        paymentMailer,
		Currency:      cfg.Paystack.Currency,
	})

	mediaStorage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	mediaService := mediasvc.NewService(mediasvc.Dependencies{
		Media:     mediaRepo,
		Files:     productFileRepo,
		Products:  productRepo,
		Purchases: orderRepo,
		Storage:   mediaStorage,
	})

	userService := userssvc.NewService(userRepo)

	RegisterRoutes(r, Dependencies{
		AuthService:     authService,
		CatalogService:  catalogService,
		CheckoutService: checkoutService,
		PaymentService:  paymentService,
		MediaService:    mediaService,
		UserService:     userService,
		LoginLimiter:    loginLimiter,
		Logger:          log,
		Config:          cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
