package api

import (
	"context"
	"errors"
	"log/slog"

	alertsapp "github.com/Apurer/roopet-api/internal/domains/alerts/application"
)

// RunWatcher polls WATCH_PET_CODE and raises low-stat alerts until ctx is cancelled.
func RunWatcher(ctx context.Context) error {
	cfg, instruments, stop, err := bootstrap(ctx, "roopet-watcher")
	if err != nil {
		return err
	}
	defer stop()
	if cfg.WatchPetCode == "" {
		return errors.New("WATCH_PET_CODE must be set")
	}

	deps, err := buildComponents(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer deps.Close()

	watcher := alertsapp.NewWatcher(deps.Pets, deps.Gateway, cfg.WatchPetCode,
		alertsapp.WithPollInterval(cfg.PollInterval),
		alertsapp.WithLogger(instruments.Logger),
		alertsapp.WithMeter(instruments.Meter("internal.alerts.application")),
	)
	instruments.Logger.Info("watching pet",
		slog.String("petCode", cfg.WatchPetCode),
		slog.Duration("interval", cfg.PollInterval),
	)
	return watcher.Run(ctx)
}
