package pets

import (
	"go.temporal.io/sdk/workflow"

	petstypes "github.com/Apurer/roopet-api/internal/domains/pets/application/types"
	"github.com/Apurer/roopet-api/internal/platform/temporal/sequences"
)

const (
	// PetAdoptionWorkflowName is the public identifier for registering the workflow.
	PetAdoptionWorkflowName = "pets.workflows.Adoption"
	// PetAdoptionTaskQueue is the queue consumed by the worker processing pet workflows.
	PetAdoptionTaskQueue = "PET_ADOPTION"
)

// PetAdoptionWorkflowInput captures the payload required to adopt a new pet.
type PetAdoptionWorkflowInput struct {
	Command petstypes.CreatePetInput
	TraceID string
}

// PetAdoptionWorkflow orchestrates pet creation and owner linking.
func PetAdoptionWorkflow(ctx workflow.Context, input PetAdoptionWorkflowInput) (*petstypes.PetProjection, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("PetAdoptionWorkflow started", withTraceID(input.TraceID, "owner", input.Command.OwnerID)...)
	projection, err := sequences.RunPetAdoptionSequence(ctx, input.Command)
	if err != nil {
		logger.Error("PetAdoptionWorkflow failed", withTraceID(input.TraceID, "owner", input.Command.OwnerID, "error", err)...)
		return nil, err
	}
	if projection != nil && projection.Pet != nil {
		logger.Info("PetAdoptionWorkflow completed", withTraceID(input.TraceID, "petCode", projection.Pet.Code)...)
	} else {
		logger.Info("PetAdoptionWorkflow completed", withTraceID(input.TraceID)...)
	}
	return projection, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
