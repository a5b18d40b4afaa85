package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	petsapp "github.com/Apurer/roopet-api/internal/domains/pets/application"
	petstypes "github.com/Apurer/roopet-api/internal/domains/pets/application/types"
	"github.com/Apurer/roopet-api/internal/domains/pets/ports"
	petactivities "github.com/Apurer/roopet-api/internal/platform/temporal/activities/pets"
	petworkflows "github.com/Apurer/roopet-api/internal/platform/temporal/workflows/pets"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalPetWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlinePetWorkflows)(nil)
)

// TemporalPetWorkflows starts pet workflows on a Temporal cluster.
type TemporalPetWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalPetWorkflows wires a Temporal client into the orchestrator.
func NewTemporalPetWorkflows(c client.Client) *TemporalPetWorkflows {
	return &TemporalPetWorkflows{client: c, taskQueue: petworkflows.PetAdoptionTaskQueue}
}

// CreatePet starts the adoption workflow and waits for its result.
func (o *TemporalPetWorkflows) CreatePet(ctx context.Context, input petstypes.CreatePetInput) (*petstypes.PetProjection, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal pet workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildPetAdoptionWorkflowID(input, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		petworkflows.PetAdoptionWorkflow,
		petworkflows.PetAdoptionWorkflowInput{Command: input, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) && strings.TrimSpace(input.IdempotencyKey) != "" {
			existingRun := o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
			var projection petstypes.PetProjection
			if err := existingRun.Get(ctx, &projection); err != nil {
				return nil, translateWorkflowError(err)
			}
			return &projection, nil
		}
		return nil, err
	}
	var projection petstypes.PetProjection
	if err := run.Get(ctx, &projection); err != nil {
		return nil, translateWorkflowError(err)
	}
	return &projection, nil
}

// translateWorkflowError restores application sentinels lost in workflow serialization.
func translateWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.Type() {
	case petactivities.InvalidInputErrorType:
		return fmt.Errorf("%w: %s", petsapp.ErrInvalidInput, appErr.Message())
	case petactivities.IdempotencyConflictErrorType:
		return fmt.Errorf("%w: %s", petsapp.ErrIdempotencyConflict, appErr.Message())
	default:
		return err
	}
}

// InlinePetWorkflows runs the adoption steps in-process, used when Temporal is disabled.
type InlinePetWorkflows struct {
	service ports.Service
	linker  ports.OwnerLinker
}

// NewInlinePetWorkflows wraps the pets service for synchronous execution.
func NewInlinePetWorkflows(service ports.Service, linker ports.OwnerLinker) *InlinePetWorkflows {
	return &InlinePetWorkflows{service: service, linker: linker}
}

// CreatePet adopts the pet and links it to the owner without durable orchestration.
func (o *InlinePetWorkflows) CreatePet(ctx context.Context, input petstypes.CreatePetInput) (*petstypes.PetProjection, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline pet workflows not configured")
	}
	projection, err := o.service.CreatePet(ctx, input)
	if err != nil {
		return nil, err
	}
	if o.linker != nil && projection != nil && projection.Pet != nil {
		if err := o.linker.LinkPet(ctx, input.OwnerID, projection.Pet.Code); err != nil {
			return projection, err
		}
	}
	return projection, nil
}

func buildPetAdoptionWorkflowID(input petstypes.CreatePetInput, traceComponent string) string {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		return fmt.Sprintf("pet-adoption-idem-%s", hashIdempotencyKey(input.OwnerID+"|"+key))
	}
	return fmt.Sprintf("pet-adoption-%s-%s", hashIdempotencyKey(input.OwnerID), traceComponent)
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	traceComponent := workflowTraceID(ctx)
	if traceComponent != "" {
		return traceComponent
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
