package roopetserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	// Public routes skip session authentication.
	Public bool
}

// ApiHandleFunctions groups the handlers of every API section.
type ApiHandleFunctions struct {
	PetAPI  PetAPI
	ShopAPI ShopAPI
	UserAPI UserAPI
}

// NewRouter returns a new router. The middleware runs ahead of every route.
func NewRouter(handleFunctions ApiHandleFunctions, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.Default()
	router.Use(middleware...)
	return NewRouterWithGinEngine(router, handleFunctions)
}

// NewRouterWithGinEngine adds the routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	auth := RequireSession(handleFunctions.UserAPI.service)
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := []gin.HandlerFunc{route.HandlerFunc}
		if !route.Public {
			handlers = append([]gin.HandlerFunc{auth}, handlers...)
		}
		router.Handle(route.Method, route.Pattern, handlers...)
	}
	return router
}

// DefaultHandleFunc is the default handler for not yet implemented routes.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// Healthz answers liveness probes.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"Healthz", http.MethodGet, "/healthz", Healthz, true},

		{"SignUp", http.MethodPost, "/v1/users", handleFunctions.UserAPI.SignUp, true},
		{"Login", http.MethodPost, "/v1/sessions", handleFunctions.UserAPI.Login, true},
		{"Logout", http.MethodDelete, "/v1/sessions/current", handleFunctions.UserAPI.Logout, false},
		{"CurrentUser", http.MethodGet, "/v1/users/me", handleFunctions.UserAPI.CurrentUser, false},

		{"CreatePet", http.MethodPost, "/v1/pets", handleFunctions.PetAPI.CreatePet, false},
		{"JoinPet", http.MethodPost, "/v1/pets/join", handleFunctions.PetAPI.JoinPet, false},
		{"GetPet", http.MethodGet, "/v1/pets/:code", handleFunctions.PetAPI.GetPet, false},
		{"ApplyAction", http.MethodPost, "/v1/pets/:code/actions/:action", handleFunctions.PetAPI.ApplyAction, false},
		{"BuyAccessory", http.MethodPost, "/v1/pets/:code/accessories", handleFunctions.PetAPI.BuyAccessory, false},

		{"ListAccessories", http.MethodGet, "/v1/shop/accessories", handleFunctions.ShopAPI.ListAccessories, false},
		{"ListSpecies", http.MethodGet, "/v1/species", handleFunctions.ShopAPI.ListSpecies, true},
	}
}
