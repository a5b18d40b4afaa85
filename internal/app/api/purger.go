package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	userpostgres "github.com/Apurer/roopet-api/internal/domains/users/adapters/persistence/postgres"
)

// sessionPurger is the slice of the session store the purge loop needs.
type sessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// RunSessionPurger deletes expired sessions every SESSION_PURGE_INTERVAL.
// It requires postgres; in-memory sessions are dropped on access instead.
func RunSessionPurger(ctx context.Context) error {
	cfg, instruments, stop, err := bootstrap(ctx, "roopet-session-purger")
	if err != nil {
		return err
	}
	defer stop()

	deps, err := buildComponents(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer deps.Close()
	if deps.DB == nil {
		return errors.New("POSTGRES_DSN not set or connection failed; cannot purge sessions")
	}
	purgeLoop(ctx, userpostgres.NewSessionStore(deps.DB), cfg.SessionPurgeEvery, instruments.Logger)
	return nil
}

func purgeLoop(ctx context.Context, store sessionPurger, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		purged, err := store.PurgeExpired(ctx)
		if err != nil {
			logger.Error("session purge failed", slog.String("error", err.Error()))
		} else {
			logger.Info("session purge completed", slog.Int64("purged", purged))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
