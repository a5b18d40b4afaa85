package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	"github.com/Apurer/roopet-api/internal/clients/http/push"
	alertslogging "github.com/Apurer/roopet-api/internal/domains/alerts/adapters/logging"
	alertswebhook "github.com/Apurer/roopet-api/internal/domains/alerts/adapters/webhook"
	alertsapp "github.com/Apurer/roopet-api/internal/domains/alerts/application"
	alertsports "github.com/Apurer/roopet-api/internal/domains/alerts/ports"
	petsmemory "github.com/Apurer/roopet-api/internal/domains/pets/adapters/memory"
	petsobs "github.com/Apurer/roopet-api/internal/domains/pets/adapters/observability"
	petspostgres "github.com/Apurer/roopet-api/internal/domains/pets/adapters/persistence/postgres"
	petsapp "github.com/Apurer/roopet-api/internal/domains/pets/application"
	petsports "github.com/Apurer/roopet-api/internal/domains/pets/ports"
	usermemory "github.com/Apurer/roopet-api/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/roopet-api/internal/domains/users/adapters/observability"
	userpostgres "github.com/Apurer/roopet-api/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/Apurer/roopet-api/internal/domains/users/application"
	userports "github.com/Apurer/roopet-api/internal/domains/users/ports"
	"github.com/Apurer/roopet-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/roopet-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/roopet-api/internal/platform/postgres"
)

// components are the services shared by every Roopet process.
type components struct {
	DB      *gorm.DB
	Pets    petsports.Service
	Users   userports.Service
	Gateway alertsports.Gateway
	cleanup []func()
}

func (c *components) Close() {
	for i := len(c.cleanup) - 1; i >= 0; i-- {
		c.cleanup[i]()
	}
}

// bootstrap loads config and observability for a process named serviceName.
func bootstrap(ctx context.Context, serviceName string) (Config, *platformobservability.Instruments, func(), error) {
	cfg, err := LoadConfig()
	if err != nil {
		return Config{}, nil, nil, err
	}
	obsCfg, err := platformobservability.LoadConfig(serviceName)
	if err != nil {
		return Config{}, nil, nil, err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, obsCfg)
	if err != nil {
		return Config{}, nil, nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	stop := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}
	return cfg, instruments, stop, nil
}

// buildComponents selects postgres or in-memory adapters and decorates the services.
func buildComponents(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*components, error) {
	logger := instruments.Logger
	c := &components{}

	db, closeDB := platformpostgres.ConnectOrFallback(ctx, cfg.PostgresDSN, logger)
	c.cleanup = append(c.cleanup, closeDB)
	if db != nil {
		if err := migrations.Run(db); err != nil {
			c.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		c.DB = db
	}

	gateway, closeGateway, err := buildGateway(cfg, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Gateway = gateway
	c.cleanup = append(c.cleanup, closeGateway)

	var (
		petRepo     petsports.Repository
		idempotency petsports.IdempotencyStore
		userRepo    userports.Repository
		sessions    userports.SessionStore
	)
	if db != nil {
		petRepo = petspostgres.NewRepository(db)
		idempotency = petspostgres.NewIdempotencyStore(db)
		userRepo = userpostgres.NewRepository(db)
		sessions = userpostgres.NewSessionStore(db)
	} else {
		petRepo = petsmemory.NewRepository()
		keys := petsmemory.NewIdempotencyStore()
		keys.WithRetention(cfg.IdempotencyRetention)
		idempotency = keys
		userRepo = usermemory.NewRepository()
		sessions = usermemory.NewSessionStore()
	}

	notifier := alertsapp.NewNotifier(gateway,
		alertsapp.WithDeliveryTimeout(cfg.PushTimeout*time.Duration(push.DefaultMaxRetries+1)),
		alertsapp.WithNotifierLogger(logger),
	)
	c.cleanup = append(c.cleanup, notifier.Wait)
	corePets := petsapp.NewService(
		petRepo,
		petsapp.WithStoreTimeout(cfg.StoreTimeout),
		petsapp.WithIdempotencyStore(idempotency),
		petsapp.WithEventPublisher(notifier),
	)
	c.Pets = petsobs.New(
		corePets,
		petsobs.WithLogger(logger),
		petsobs.WithTracer(instruments.Tracer("internal.pets.application")),
		petsobs.WithMeter(instruments.Meter("internal.pets.application")),
	)

	coreUsers := userapp.NewService(
		userRepo,
		sessions,
		userapp.WithSessionTTL(cfg.SessionTTL),
		userapp.WithPasswordCost(cfg.PasswordCost),
	)
	c.Users = userobs.New(
		coreUsers,
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)
	return c, nil
}

// buildGateway posts to PUSH_WEBHOOK_URL when set and otherwise logs notifications.
func buildGateway(cfg Config, logger *slog.Logger) (alertsports.Gateway, func(), error) {
	if cfg.PushWebhookURL == "" {
		gw := alertslogging.NewGateway(logger)
		return gw, gw.Close, nil
	}
	pushClient, err := push.NewClient(cfg.PushWebhookURL, push.WithHTTPClient(&http.Client{Timeout: cfg.PushTimeout}))
	if err != nil {
		return nil, nil, fmt.Errorf("configure push client: %w", err)
	}
	logger.Info("push notifications enabled")
	return alertswebhook.NewGateway(pushClient), func() {}, nil
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments, tracerName string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, fmt.Errorf("temporal disabled via TEMPORAL_DISABLED")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(tracerName),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(instruments.Logger),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}
