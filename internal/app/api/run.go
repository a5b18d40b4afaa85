package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	roopetserver "github.com/Apurer/roopet-api/go"
	petsworkflows "github.com/Apurer/roopet-api/internal/domains/pets/adapters/workflows"
	petsports "github.com/Apurer/roopet-api/internal/domains/pets/ports"
)

const shutdownGrace = 10 * time.Second

// Run boots the Roopet HTTP API and blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context) error {
	const serviceName = "roopet-api"
	cfg, instruments, stop, err := bootstrap(ctx, serviceName)
	if err != nil {
		return err
	}
	defer stop()
	logger := instruments.Logger

	deps, err := buildComponents(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer deps.Close()

	var petWorkflows petsports.WorkflowOrchestrator = petsworkflows.NewInlinePetWorkflows(deps.Pets, deps.Users)
	if temporalClient, err := connectTemporalClient(cfg, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, adopting inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		petWorkflows = petsworkflows.NewTemporalPetWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := roopetserver.ApiHandleFunctions{
		PetAPI:  roopetserver.NewPetAPI(deps.Pets, petWorkflows, deps.Users),
		ShopAPI: roopetserver.NewShopAPI(deps.Pets),
		UserAPI: roopetserver.NewUserAPI(deps.Users),
	}
	router := roopetserver.NewRouter(handlers, otelgin.Middleware(serviceName))

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Roopet API listening", slog.String("addr", server.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Roopet API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	logger.Info("shutting down Roopet API")
	return server.Shutdown(shutdownCtx)
}
