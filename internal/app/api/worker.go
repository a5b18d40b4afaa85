package api

import (
	"context"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	petactivities "github.com/Apurer/roopet-api/internal/platform/temporal/activities/pets"
	petworkflows "github.com/Apurer/roopet-api/internal/platform/temporal/workflows/pets"
)

// RunWorker hosts the pet adoption workflow and its activities until ctx is cancelled.
func RunWorker(ctx context.Context) error {
	cfg, instruments, stop, err := bootstrap(ctx, "roopet-worker")
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

	temporalClient, err := connectTemporalClient(cfg, instruments, "temporal-worker")
	if err != nil {
		return fmt.Errorf("create Temporal client: %w", err)
	}
	defer temporalClient.Close()

	activities := petactivities.NewActivities(deps.Pets, deps.Users)
	w := worker.New(temporalClient, petworkflows.PetAdoptionTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(petworkflows.PetAdoptionWorkflow, workflow.RegisterOptions{Name: petworkflows.PetAdoptionWorkflowName})
	w.RegisterActivityWithOptions(activities.CreatePet, activity.RegisterOptions{Name: petactivities.CreatePetActivityName})
	w.RegisterActivityWithOptions(activities.LinkOwner, activity.RegisterOptions{Name: petactivities.LinkOwnerActivityName})

	interrupt := make(chan interface{})
	go func() {
		<-ctx.Done()
		close(interrupt)
	}()

	logger.Info("worker listening", slog.String("taskQueue", petworkflows.PetAdoptionTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(interrupt); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Temporal worker stopped")
	return nil
}
