package roopetserver

import (
	"github.com/gin-gonic/gin"

	petsapp "github.com/Apurer/roopet-api/internal/domains/pets/application"
	petsports "github.com/Apurer/roopet-api/internal/domains/pets/ports"
	userapp "github.com/Apurer/roopet-api/internal/domains/users/application"
	userports "github.com/Apurer/roopet-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/roopet-api/internal/shared/errors"
)

var responder = apierrors.NewChainedResponder("",
	apierrors.MapSentinels(apierrors.ErrValidation, petsapp.ErrInvalidInput, userapp.ErrInvalidInput),
	apierrors.MapSentinels(apierrors.ErrUnauthorized, userapp.ErrUnauthorized),
	apierrors.MapSentinels(apierrors.ErrNotFound, petsports.ErrNotFound, userports.ErrNotFound),
	apierrors.MapSentinels(apierrors.ErrConflict,
		petsapp.ErrAlreadyOwner,
		petsapp.ErrIdempotencyConflict,
		petsapp.ErrCodeCollision,
		userports.ErrAlreadyExists,
	),
	apierrors.MapSentinels(apierrors.ErrInsufficientFunds, petsapp.ErrInsufficientFunds),
	apierrors.MapSentinels(apierrors.ErrUnavailable, petsapp.ErrStoreUnavailable, petsapp.ErrCodeAllocation),
)

// respondProblem writes a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

// respondServiceError maps a service error to its RFC 7807 problem.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}
