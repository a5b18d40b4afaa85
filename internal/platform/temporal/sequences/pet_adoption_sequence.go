package sequences

import (
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	petstypes "github.com/Apurer/roopet-api/internal/domains/pets/application/types"
	petactivities "github.com/Apurer/roopet-api/internal/platform/temporal/activities/pets"
)

// RunPetAdoptionSequence creates the pet, then links it to the adopting user.
// Without a caller key the workflow id becomes the idempotency key, so a
// CreatePet retry after a committed write returns the same pet.
func RunPetAdoptionSequence(ctx workflow.Context, input petstypes.CreatePetInput) (*petstypes.PetProjection, error) {
	logger := workflow.GetLogger(ctx)
	if strings.TrimSpace(input.IdempotencyKey) == "" {
		input.IdempotencyKey = WorkflowIdempotencyKey(workflow.GetInfo(ctx).WorkflowExecution.ID)
	}
	logger.Info("pet adoption sequence started", "owner", input.OwnerID)
	createOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	linkOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    5 * time.Second,
			MaximumAttempts:    3,
		},
	}

	var projection petstypes.PetProjection
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, createOptions), petactivities.CreatePetActivityName, input).Get(ctx, &projection)
	if err != nil {
		logger.Error("pet adoption sequence failed", "owner", input.OwnerID, "error", err)
		return nil, err
	}
	if projection.Pet == nil {
		return &projection, nil
	}
	logger.Info("pet adoption sequence created pet", "petCode", projection.Pet.Code)

	link := petactivities.LinkOwnerInput{OwnerID: input.OwnerID, PetCode: projection.Pet.Code}
	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, linkOptions), petactivities.LinkOwnerActivityName, link).Get(ctx, nil); err != nil {
		logger.Error("pet adoption sequence link failed", "petCode", projection.Pet.Code, "error", err)
		return &projection, err
	}
	logger.Info("pet adoption sequence linked owner", "petCode", projection.Pet.Code)
	return &projection, nil
}

// WorkflowIdempotencyKey derives the adoption key used when the caller sent none.
func WorkflowIdempotencyKey(workflowID string) string {
	return "workflow:" + workflowID
}
