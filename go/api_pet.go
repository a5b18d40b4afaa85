package roopetserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	alertsdomain "github.com/Apurer/roopet-api/internal/domains/alerts/domain"
	pethttpmapper "github.com/Apurer/roopet-api/internal/domains/pets/adapters/http/mapper"
	petsapp "github.com/Apurer/roopet-api/internal/domains/pets/application"
	petstypes "github.com/Apurer/roopet-api/internal/domains/pets/application/types"
	petsdomain "github.com/Apurer/roopet-api/internal/domains/pets/domain"
	petsports "github.com/Apurer/roopet-api/internal/domains/pets/ports"
	apierrors "github.com/Apurer/roopet-api/internal/shared/errors"
)

// PetAPI wires HTTP transport with the pets bounded context service and workflows.
type PetAPI struct {
	service   petsports.Service
	workflows petsports.WorkflowOrchestrator
	linker    petsports.OwnerLinker
}

// NewPetAPI creates a PetAPI. The linker records joined pets on the caller's account;
// adoption links through the workflow orchestrator.
func NewPetAPI(service petsports.Service, workflows petsports.WorkflowOrchestrator, linker petsports.OwnerLinker) PetAPI {
	return PetAPI{service: service, workflows: workflows, linker: linker}
}

// Post /v1/pets
// Adopt a new pet owned by the caller
func (api *PetAPI) CreatePet(c *gin.Context) {
	var payload pethttpmapper.CreatePetRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	session := currentSession(c)
	input := pethttpmapper.ToCreatePetInput(payload, session.UserID, c.GetHeader("Idempotency-Key"))
	created, err := api.createPet(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pethttpmapper.FromProjection(created))
}

func (api *PetAPI) createPet(ctx context.Context, input petstypes.CreatePetInput) (*petstypes.PetProjection, error) {
	if api.workflows != nil {
		return api.workflows.CreatePet(ctx, input)
	}
	created, err := api.service.CreatePet(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := api.link(ctx, input.OwnerID, created.Pet.Code); err != nil {
		return nil, err
	}
	return created, nil
}

// Post /v1/pets/join
// Join an existing pet with its code
func (api *PetAPI) JoinPet(c *gin.Context) {
	var payload pethttpmapper.JoinPetRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	session := currentSession(c)
	ctx := c.Request.Context()
	joined, err := api.service.JoinPet(ctx, petstypes.JoinPetInput{Code: payload.Code, OwnerID: session.UserID})
	if errors.Is(err, petsapp.ErrAlreadyOwner) && session.PetCode != petsdomain.NormalizeCode(payload.Code) {
		// An earlier join persisted but its account link did not; finish it.
		joined, err = api.service.GetPet(ctx, payload.Code)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if err := api.link(ctx, session.UserID, joined.Pet.Code); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromProjection(joined))
}

func (api *PetAPI) link(ctx context.Context, userID, code string) error {
	if api.linker == nil {
		return nil
	}
	return api.linker.LinkPet(ctx, userID, code)
}

// Get /v1/pets/:code
// Load a pet, settling elapsed decay
func (api *PetAPI) GetPet(c *gin.Context) {
	pet, err := api.service.GetPet(c.Request.Context(), c.Param("code"))
	if errors.Is(err, petsports.ErrNotFound) {
		respondProblem(c, apierrors.NewNotFoundProblem("pet", petsdomain.NormalizeCode(c.Param("code"))))
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromProjection(pet))
}

// Post /v1/pets/:code/actions/:action
// Feed, play with, clean or exercise the pet
func (api *PetAPI) ApplyAction(c *gin.Context) {
	action := petsdomain.Action(strings.ToLower(c.Param("action")))
	updated, err := api.service.ApplyAction(c.Request.Context(), petstypes.ApplyActionInput{
		Code:   c.Param("code"),
		Action: action,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	result := pethttpmapper.FromProjection(updated)
	result.Message = alertsdomain.ActionNotification(updated.Pet.Code, updated.Pet.Name, action, updated.CoinsEarned).Body
	c.JSON(http.StatusOK, result)
}

// Post /v1/pets/:code/accessories
// Buy a catalog accessory with the pet's coins
func (api *PetAPI) BuyAccessory(c *gin.Context) {
	var payload pethttpmapper.BuyAccessoryRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	updated, err := api.service.BuyAccessory(c.Request.Context(), petstypes.BuyAccessoryInput{
		Code:        c.Param("code"),
		AccessoryID: petsdomain.AccessoryID(payload.AccessoryID),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	result := pethttpmapper.FromProjection(updated)
	if updated.Purchased != nil {
		result.Message = alertsdomain.PurchaseNotification(updated.Pet.Code, updated.Purchased.Name).Body
	}
	c.JSON(http.StatusOK, result)
}
