package roopetserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	pethttpmapper "github.com/Apurer/roopet-api/internal/domains/pets/adapters/http/mapper"
	petsmemory "github.com/Apurer/roopet-api/internal/domains/pets/adapters/memory"
	petsworkflows "github.com/Apurer/roopet-api/internal/domains/pets/adapters/workflows"
	petsapp "github.com/Apurer/roopet-api/internal/domains/pets/application"
	petsports "github.com/Apurer/roopet-api/internal/domains/pets/ports"
	userhttpmapper "github.com/Apurer/roopet-api/internal/domains/users/adapters/http/mapper"
	usermemory "github.com/Apurer/roopet-api/internal/domains/users/adapters/memory"
	userapp "github.com/Apurer/roopet-api/internal/domains/users/application"
	apierrors "github.com/Apurer/roopet-api/internal/shared/errors"
)

type testAPI struct {
	t      *testing.T
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	return newTestAPIWithLinker(t, nil)
}

// newTestAPIWithLinker lets a test wrap the account linker used by join.
func newTestAPIWithLinker(t *testing.T, wrap func(petsports.OwnerLinker) petsports.OwnerLinker) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := userapp.NewService(usermemory.NewRepository(), usermemory.NewSessionStore(),
		userapp.WithPasswordCost(bcrypt.MinCost))
	pets := petsapp.NewService(petsmemory.NewRepository(),
		petsapp.WithIdempotencyStore(petsmemory.NewIdempotencyStore()))

	var linker petsports.OwnerLinker = users
	if wrap != nil {
		linker = wrap(users)
	}
	handlers := ApiHandleFunctions{
		PetAPI:  NewPetAPI(pets, petsworkflows.NewInlinePetWorkflows(pets, users), linker),
		ShopAPI: NewShopAPI(pets),
		UserAPI: NewUserAPI(users),
	}
	return &testAPI{t: t, router: NewRouterWithGinEngine(gin.New(), handlers)}
}

func (a *testAPI) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) signIn(email string) string {
	a.t.Helper()
	creds := userhttpmapper.Credentials{Email: email, Password: "secret1"}
	rec := a.do(http.MethodPost, "/v1/users", "", creds)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = a.do(http.MethodPost, "/v1/sessions", "", creds)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var session userhttpmapper.Session
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.NotEmpty(a.t, session.Token)
	return session.Token
}

func (a *testAPI) adopt(token string) pethttpmapper.Pet {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/v1/pets", token, pethttpmapper.CreatePetRequest{Species: "Dog", Name: "Rex"})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var result pethttpmapper.PetResult
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result.Pet
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) apierrors.ProblemDetail {
	t.Helper()
	assert.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	var problem apierrors.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRouter_RunsMiddlewareBeforeRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	users := userapp.NewService(usermemory.NewRepository(), usermemory.NewSessionStore())
	router := NewRouter(ApiHandleFunctions{UserAPI: NewUserAPI(users)}, func(c *gin.Context) {
		c.Header("X-Traced", "yes")
		c.Next()
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "yes", rec.Header().Get("X-Traced"))
}

func TestPetRoutesRequireSession(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/v1/shop/accessories", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apierrors.TypeUnauthorized, decodeProblem(t, rec).Type)

	rec = api.do(http.MethodGet, "/v1/pets/ABC123", "not-a-session", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignUpAndLoginErrors(t *testing.T) {
	api := newTestAPI(t)
	api.signIn("ana@example.com")

	rec := api.do(http.MethodPost, "/v1/users", "", userhttpmapper.Credentials{Email: "ana@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(http.MethodPost, "/v1/users", "", userhttpmapper.Credentials{Email: "bo@example.com", Password: "123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/v1/sessions", "", userhttpmapper.Credentials{Email: "ana@example.com", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodPost, "/v1/sessions", "", userhttpmapper.Credentials{Email: "nobody@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdoptLinksCaller(t *testing.T) {
	api := newTestAPI(t)
	token := api.signIn("ana@example.com")

	pet := api.adopt(token)
	assert.Len(t, pet.Code, 6)
	assert.Equal(t, "dog", pet.Species)
	assert.Equal(t, []string{"ana@example.com"}, pet.Owners)
	assert.Equal(t, 100, pet.Stats.Hunger)

	rec := api.do(http.MethodGet, "/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me userhttpmapper.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, pet.Code, me.PetCode)
}

func TestAdoptIsIdempotent(t *testing.T) {
	api := newTestAPI(t)
	token := api.signIn("ana@example.com")
	body := pethttpmapper.CreatePetRequest{Species: "cat", Name: "Mochi"}

	first := api.do(http.MethodPost, "/v1/pets", token, body, "Idempotency-Key", "adopt-1")
	require.Equal(t, http.StatusCreated, first.Code)
	second := api.do(http.MethodPost, "/v1/pets", token, body, "Idempotency-Key", "adopt-1")
	require.Equal(t, http.StatusCreated, second.Code)

	var a, b pethttpmapper.PetResult
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.Equal(t, a.Pet.Code, b.Pet.Code)

	conflict := api.do(http.MethodPost, "/v1/pets", token,
		pethttpmapper.CreatePetRequest{Species: "cat", Name: "Other"}, "Idempotency-Key", "adopt-1")
	assert.Equal(t, http.StatusConflict, conflict.Code)
}

func TestAdoptValidation(t *testing.T) {
	api := newTestAPI(t)
	token := api.signIn("ana@example.com")

	rec := api.do(http.MethodPost, "/v1/pets", token, pethttpmapper.CreatePetRequest{Species: "dragon", Name: "Rex"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.TypeValidation, decodeProblem(t, rec).Type)

	rec = api.do(http.MethodPost, "/v1/pets", token, map[string]string{"species": "dog"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.TypeBadRequest, decodeProblem(t, rec).Type)
}

func TestJoinPet(t *testing.T) {
	api := newTestAPI(t)
	ana := api.signIn("ana@example.com")
	bo := api.signIn("bo@example.com")
	pet := api.adopt(ana)

	rec := api.do(http.MethodPost, "/v1/pets/join", bo, pethttpmapper.JoinPetRequest{Code: " " + pet.Code + " "})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var joined pethttpmapper.PetResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &joined))
	assert.ElementsMatch(t, []string{"ana@example.com", "bo@example.com"}, joined.Pet.Owners)

	rec = api.do(http.MethodPost, "/v1/pets/join", bo, pethttpmapper.JoinPetRequest{Code: pet.Code})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(http.MethodPost, "/v1/pets/join", bo, pethttpmapper.JoinPetRequest{Code: "ZZZZZZ"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodGet, "/v1/users/me", bo, nil)
	var me userhttpmapper.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, pet.Code, me.PetCode)
}

// failingLinker fails the first n links and then delegates.
type failingLinker struct {
	petsports.OwnerLinker
	failures int
}

func (l *failingLinker) LinkPet(ctx context.Context, userID, petCode string) error {
	if l.failures > 0 {
		l.failures--
		return errors.New("user store offline")
	}
	return l.OwnerLinker.LinkPet(ctx, userID, petCode)
}

func TestJoinPet_RetryCompletesFailedLink(t *testing.T) {
	api := newTestAPIWithLinker(t, func(inner petsports.OwnerLinker) petsports.OwnerLinker {
		return &failingLinker{OwnerLinker: inner, failures: 1}
	})
	ana := api.signIn("ana@example.com")
	bo := api.signIn("bo@example.com")
	pet := api.adopt(ana)

	rec := api.do(http.MethodPost, "/v1/pets/join", bo, pethttpmapper.JoinPetRequest{Code: pet.Code})
	require.Equal(t, http.StatusInternalServerError, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, "/v1/pets/join", bo, pethttpmapper.JoinPetRequest{Code: pet.Code})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var joined pethttpmapper.PetResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &joined))
	assert.ElementsMatch(t, []string{"ana@example.com", "bo@example.com"}, joined.Pet.Owners)

	rec = api.do(http.MethodGet, "/v1/users/me", bo, nil)
	var me userhttpmapper.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, pet.Code, me.PetCode)

	rec = api.do(http.MethodPost, "/v1/pets/join", bo, pethttpmapper.JoinPetRequest{Code: pet.Code})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestActionsAndShop(t *testing.T) {
	api := newTestAPI(t)
	token := api.signIn("ana@example.com")
	pet := api.adopt(token)

	rec := api.do(http.MethodPost, "/v1/pets/"+pet.Code+"/actions/feed", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var fed pethttpmapper.PetResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fed))
	assert.Equal(t, 100, fed.Pet.Stats.Hunger)
	assert.Equal(t, 5, fed.Pet.Coins)
	assert.Equal(t, 5, fed.CoinsEarned)
	assert.Equal(t, "You fed Rex! +5 coins earned!", fed.Message)

	rec = api.do(http.MethodPost, "/v1/pets/"+pet.Code+"/actions/dance", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/v1/pets/"+pet.Code+"/accessories", token, pethttpmapper.BuyAccessoryRequest{AccessoryID: 1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, apierrors.TypeInsufficientFunds, decodeProblem(t, rec).Type)

	rec = api.do(http.MethodPost, "/v1/pets/"+pet.Code+"/accessories", token, pethttpmapper.BuyAccessoryRequest{AccessoryID: 99})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for i := 0; i < 4; i++ {
		rec = api.do(http.MethodPost, "/v1/pets/"+pet.Code+"/actions/exercise", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec = api.do(http.MethodPost, "/v1/pets/"+pet.Code+"/accessories", token, pethttpmapper.BuyAccessoryRequest{AccessoryID: 4})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var bought pethttpmapper.PetResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bought))
	assert.Zero(t, bought.Pet.Coins)
	assert.Equal(t, []int64{4}, bought.Pet.Accessories)
	require.NotNil(t, bought.Purchased)
	assert.Equal(t, "Collar", bought.Purchased.Name)
	assert.Equal(t, "Successfully purchased Collar! Your pet will love it!", bought.Message)

	rec = api.do(http.MethodGet, "/v1/pets/"+pet.Code, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(http.MethodGet, "/v1/pets/nope00", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	missing := decodeProblem(t, rec)
	assert.Equal(t, apierrors.TypeNotFound, missing.Type)
	assert.Equal(t, "/v1/pets/nope00", missing.Instance)
	assert.Equal(t, "pet", missing.Extensions["resourceType"])
	assert.Equal(t, "NOPE00", missing.Extensions["identifier"])
	rec = api.do(http.MethodGet, "/v1/pets/bad", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalog(t *testing.T) {
	api := newTestAPI(t)
	token := api.signIn("ana@example.com")

	rec := api.do(http.MethodGet, "/v1/shop/accessories", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []pethttpmapper.Accessory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 8)

	rec = api.do(http.MethodGet, "/v1/shop/accessories?category=hats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hats []pethttpmapper.Accessory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hats))
	assert.Len(t, hats, 2)

	rec = api.do(http.MethodGet, "/v1/shop/accessories?category=shoes", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSpecies(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/v1/species", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var species []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &species))
	assert.Equal(t, []string{"dog", "cat", "rabbit", "hamster", "bird"}, species)
}

func TestLogout(t *testing.T) {
	api := newTestAPI(t)
	token := api.signIn("ana@example.com")

	rec := api.do(http.MethodDelete, "/v1/sessions/current", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(http.MethodGet, "/v1/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
