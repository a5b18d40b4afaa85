package roopetserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/roopet-api/internal/domains/users/adapters/http/mapper"
	userports "github.com/Apurer/roopet-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/roopet-api/internal/shared/errors"
)

// UserAPI handles accounts and sessions.
type UserAPI struct {
	service userports.Service
}

// NewUserAPI wires dependencies.
func NewUserAPI(service userports.Service) UserAPI {
	return UserAPI{service: service}
}

// Post /v1/users
// Create an account
func (api *UserAPI) SignUp(c *gin.Context) {
	var payload userhttpmapper.Credentials
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	user, err := api.service.SignUp(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhttpmapper.FromDomainUser(user))
}

// Post /v1/sessions
// Log in and receive a bearer token
func (api *UserAPI) Login(c *gin.Context) {
	var payload userhttpmapper.Credentials
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	ctx := c.Request.Context()
	session, err := api.service.Login(ctx, payload.Email, payload.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	user, err := api.service.GetUser(ctx, session.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainSession(session, user))
}

// Delete /v1/sessions/current
// Log out
func (api *UserAPI) Logout(c *gin.Context) {
	session := currentSession(c)
	if err := api.service.Logout(c.Request.Context(), session.Token); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/users/me
// Return the caller's account
func (api *UserAPI) CurrentUser(c *gin.Context) {
	session := currentSession(c)
	user, err := api.service.GetUser(c.Request.Context(), session.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}
