package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cookingbylea/recipes/backend/internal/client"
	"github.com/cookingbylea/recipes/backend/internal/gallery"
	"github.com/cookingbylea/recipes/backend/internal/logging"
	"github.com/cookingbylea/recipes/backend/internal/media"
	"github.com/cookingbylea/recipes/backend/internal/mocks"
	"github.com/cookingbylea/recipes/backend/internal/model"
	"github.com/cookingbylea/recipes/backend/internal/router"
	"github.com/cookingbylea/recipes/backend/internal/service"
	"github.com/cookingbylea/recipes/backend/internal/testhelpers"
)

const adminPassword = "let me cook"

type apiFixture struct {
	router *gin.Engine
	db     *gorm.DB
	store  *media.MemoryStore
}

func setupAPI(t *testing.T, withAuth bool) *apiFixture {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupTestDB(t)
	log := logging.Discard()
	store := media.NewMemoryStore(testhelpers.TestMediaURL)

	deps := router.Deps{
		Recipes: service.NewRecipeService(db, store, media.NewInlineJanitor(store, log), nil, "recipes", log),
		Logger:  log,
	}
	if withAuth {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
		require.NoError(t, err)
		deps.Auth = service.NewAuthService(string(hash), "test-secret", time.Hour)
	}

	return &apiFixture{router: router.SetupRouter(deps), db: db, store: store}
}

func (f *apiFixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func multipartRequest(t *testing.T, method, path string, payload client.Payload) *http.Request {
	t.Helper()
	body, contentType, err := payload.Encode()
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	return req
}

func tartPayload(title string) client.Payload {
	var p client.Payload
	p.Add("title", title)
	p.Add("ingredients[1]", "sugar")
	p.Add("ingredients[0]", "apples")
	p.Add("ingredients[2]", "butter")
	p.Add("preparation", "1. Slice apples. 2. Bake.")
	p.Add("category", "Desserts")
	p.Add("subcategory", "Tarts")
	p.Add("isHealthy", "true")
	p.Image = &client.Image{Filename: "tart.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")}
	return p
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createRecipe(t *testing.T, f *apiFixture, title string) model.Recipe {
	t.Helper()
	w := f.do(multipartRequest(t, http.MethodPost, "/recipes", tartPayload(title)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[model.Recipe](t, w)
}

func TestCreateRecipe(t *testing.T) {
	f := setupAPI(t, false)

	w := f.do(multipartRequest(t, http.MethodPost, "/recipes", tartPayload("Apple Tart")))
	require.Equal(t, http.StatusCreated, w.Code)

	raw := decode[map[string]interface{}](t, w)
	for _, key := range []string{"id", "title", "imageUrl", "ingredients", "preparation", "category", "subcategory", "isHealthy", "createdAt", "updatedAt"} {
		assert.Contains(t, raw, key)
	}

	recipe := decode[model.Recipe](t, w)
	assert.Equal(t, "Apple Tart", recipe.Title)
	assert.Equal(t, model.StringList{"apples", "sugar", "butter"}, recipe.Ingredients)
	assert.True(t, recipe.IsHealthy)
	assert.True(t, strings.HasPrefix(recipe.ImageURL, testhelpers.TestMediaURL+"/v"))
	assert.Equal(t, 1, f.store.Len())
}

func TestCreateRecipeHealthyFlag(t *testing.T) {
	f := setupAPI(t, false)

	p := tartPayload("Soup")
	p.Fields[len(p.Fields)-1].Value = "yes"
	w := f.do(multipartRequest(t, http.MethodPost, "/api/recipes", p))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.False(t, decode[model.Recipe](t, w).IsHealthy)
}

func TestCreateRecipeWithoutImage(t *testing.T) {
	f := setupAPI(t, false)

	p := tartPayload("Apple Tart")
	p.Image = nil
	w := f.do(multipartRequest(t, http.MethodPost, "/recipes", p))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Image file is required"}`, w.Body.String())

	var count int64
	require.NoError(t, f.db.Model(&model.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRecipeDuplicateTitle(t *testing.T) {
	f := setupAPI(t, false)
	createRecipe(t, f, "Apple Tart")

	w := f.do(multipartRequest(t, http.MethodPost, "/recipes", tartPayload("Apple Tart")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"A recipe with this title already exists"}`, w.Body.String())
}

func TestCreateRecipeRejectsJSONBody(t *testing.T) {
	f := setupAPI(t, false)

	req := httptest.NewRequest(http.MethodPost, "/recipes", strings.NewReader(`{"title":"Soup"}`))
	req.Header.Set("Content-Type", "application/json")
	w := f.do(req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListAndGetRecipes(t *testing.T) {
	f := setupAPI(t, false)

	w := f.do(httptest.NewRequest(http.MethodGet, "/recipes", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	tart := createRecipe(t, f, "Apple Tart")
	createRecipe(t, f, "Soup")

	w = f.do(httptest.NewRequest(http.MethodGet, "/api/recipes", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Recipe](t, w), 2)

	w = f.do(httptest.NewRequest(http.MethodGet, "/recipes/"+tart.ID.String(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Apple Tart", decode[model.Recipe](t, w).Title)

	for _, id := range []string{"00000000-0000-0000-0000-000000000001", "not-an-id"} {
		w = f.do(httptest.NewRequest(http.MethodGet, "/recipes/"+id, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Recipe not found"}`, w.Body.String())
	}
}

func TestUpdateRecipeTitleOnly(t *testing.T) {
	f := setupAPI(t, false)
	tart := createRecipe(t, f, "Apple Tart")

	var p client.Payload
	p.Add("title", "Pear Tart")
	w := f.do(multipartRequest(t, http.MethodPut, "/recipes/"+tart.ID.String(), p))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decode[model.Recipe](t, w)
	assert.Equal(t, "Pear Tart", updated.Title)
	assert.Equal(t, tart.Ingredients, updated.Ingredients)
	assert.Equal(t, tart.Preparation, updated.Preparation)
	assert.Equal(t, tart.Category, updated.Category)
	assert.Equal(t, tart.Subcategory, updated.Subcategory)
	assert.Equal(t, tart.IsHealthy, updated.IsHealthy)
	assert.Equal(t, tart.ImageURL, updated.ImageURL)
}

func TestUpdateRecipeImage(t *testing.T) {
	f := setupAPI(t, false)
	tart := createRecipe(t, f, "Apple Tart")

	var p client.Payload
	p.Add("isHealthy", "false")
	p.Image = &client.Image{Filename: "new.png", ContentType: "image/png", Data: []byte("png")}
	w := f.do(multipartRequest(t, http.MethodPut, "/recipes/"+tart.ID.String(), p))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decode[model.Recipe](t, w)
	assert.NotEqual(t, tart.ImageURL, updated.ImageURL)
	assert.False(t, updated.IsHealthy)
	assert.Equal(t, 1, f.store.Len())
}

func TestUpdateRecipeErrors(t *testing.T) {
	f := setupAPI(t, false)
	createRecipe(t, f, "Apple Tart")
	soup := createRecipe(t, f, "Soup")

	var p client.Payload
	p.Add("title", "Apple Tart")
	w := f.do(multipartRequest(t, http.MethodPut, "/recipes/"+soup.ID.String(), p))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"A recipe with this title already exists"}`, w.Body.String())

	w = f.do(multipartRequest(t, http.MethodPut, "/recipes/00000000-0000-0000-0000-000000000001", p))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteRecipe(t *testing.T) {
	f := setupAPI(t, false)
	tart := createRecipe(t, f, "Apple Tart")

	w := f.do(httptest.NewRequest(http.MethodDelete, "/recipes/"+tart.ID.String(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"message":"Recipe deleted successfully","id":%q}`, tart.ID), w.Body.String())
	assert.Equal(t, 0, f.store.Len())

	w = f.do(httptest.NewRequest(http.MethodDelete, "/recipes/"+tart.ID.String(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGallery(t *testing.T) {
	f := setupAPI(t, false)
	for i := 1; i <= 40; i++ {
		r := model.Recipe{Title: fmt.Sprintf("Recipe %02d", i), Category: "Mains"}
		if i%4 == 0 {
			r.Category = "Desserts"
			r.IsHealthy = true
		}
		testhelpers.SeedRecipe(t, f.db, f.store, r)
	}

	w := f.do(httptest.NewRequest(http.MethodGet, "/gallery?page=2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[gallery.Page](t, w)
	assert.Equal(t, 40, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Recipes, 8)
	assert.Equal(t, []string{"Mains", "Desserts"}, page.Categories)

	w = f.do(httptest.NewRequest(http.MethodGet, "/api/gallery?category=Desserts&q=recipe%203", nil))
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[gallery.Page](t, w)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, "Recipe 32", page.Recipes[0].Title)
	assert.Equal(t, "Recipe 36", page.Recipes[1].Title)

	w = f.do(httptest.NewRequest(http.MethodGet, "/gallery?page=3", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[gallery.Page](t, w).Recipes)
}

func TestAdminAuthentication(t *testing.T) {
	f := setupAPI(t, true)

	w := f.do(multipartRequest(t, http.MethodPost, "/recipes", tartPayload("Apple Tart")))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(httptest.NewRequest(http.MethodGet, "/recipes", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	login := func(password string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(fmt.Sprintf(`{"password":%q}`, password)))
		req.Header.Set("Content-Type", "application/json")
		return f.do(req)
	}

	assert.Equal(t, http.StatusUnauthorized, login("wrong").Code)

	w = login(adminPassword)
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[map[string]string](t, w)["token"]
	require.NotEmpty(t, token)

	req := multipartRequest(t, http.MethodPost, "/recipes", tartPayload("Apple Tart"))
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusCreated, f.do(req).Code)
}

func TestLoginNotRegisteredWithoutAdmin(t *testing.T) {
	f := setupAPI(t, false)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := f.do(req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServerErrorsAreGeneric(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := new(mocks.MockRecipeService)
	svc.On("ListRecipes", mock.Anything).Return(nil, errors.New("connection refused"))
	svc.On("GetRecipe", mock.Anything, "abc").Return(nil, fmt.Errorf("wrapped: %w", errors.New("db down")))

	engine := router.SetupRouter(router.Deps{Recipes: svc, Logger: logging.Discard()})

	for _, path := range []string{"/recipes", "/gallery", "/recipes/abc"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
		assert.JSONEq(t, `{"error":"Server error"}`, w.Body.String())
	}
	svc.AssertExpectations(t)
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	healthy := router.SetupRouter(router.Deps{
		Recipes: new(mocks.MockRecipeService),
		Ping:    func(context.Context) error { return nil },
		Logger:  logging.Discard(),
	})
	w := httptest.NewRecorder()
	healthy.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","database":"ok"}`, w.Body.String())

	down := router.SetupRouter(router.Deps{
		Recipes: new(mocks.MockRecipeService),
		Ping:    func(context.Context) error { return errors.New("connection refused") },
		Logger:  logging.Discard(),
	})
	w = httptest.NewRecorder()
	down.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUploadTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := new(mocks.MockRecipeService)
	engine := router.SetupRouter(router.Deps{Recipes: svc, MaxUploadBytes: 1024, Logger: logging.Discard()})

	p := tartPayload("Huge")
	p.Image.Data = make([]byte, 4096)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, multipartRequest(t, http.MethodPost, "/recipes", p))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	svc.AssertNotCalled(t, "CreateRecipe", mock.Anything, mock.Anything)
}
