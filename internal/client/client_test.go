package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookingbylea/recipes/backend/internal/gallery"
	"github.com/cookingbylea/recipes/backend/internal/model"
)

func TestPayloadEncode(t *testing.T) {
	var p Payload
	p.Add("title", "Apple Tart")
	p.Add("ingredients[0]", "apples")
	p.Add("ingredients[1]", "sugar")
	p.Image = &Image{Filename: "tart.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")}

	body, contentType, err := p.Encode()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	require.NoError(t, req.ParseMultipartForm(1<<20))

	assert.Equal(t, "Apple Tart", req.FormValue("title"))
	assert.Equal(t, "sugar", req.FormValue("ingredients[1]"))

	file, header, err := req.FormFile("image")
	require.NoError(t, err)
	defer file.Close()
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "tart.jpg", header.Filename)
	assert.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))
	assert.Equal(t, "jpeg", string(data))

	v, ok := p.Get("ingredients[0]")
	assert.True(t, ok)
	assert.Equal(t, "apples", v)
}

func TestClientDecodesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"A recipe with this title already exists"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, srv.Client()).CreateRecipe(context.Background(), Payload{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "A recipe with this title already exists", apiErr.Message)
}

func TestClientNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL, srv.Client()).DeleteRecipe(context.Background(), "abc")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Empty(t, apiErr.Message)
}

func TestClientSendsTokenAndQuery(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(gallery.Page{
			Recipes:    []model.Recipe{{Title: "Soup"}},
			Total:      1,
			TotalPages: 1,
		})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", srv.Client()).WithToken("tkn")
	page, err := c.Gallery(context.Background(), gallery.NewState().SelectCategory("Mains"))
	require.NoError(t, err)

	assert.Equal(t, "Bearer tkn", gotAuth)
	assert.Equal(t, "category=Mains", gotQuery)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, "Soup", page.Recipes[0].Title)
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if r.URL.Path != "/auth/login" || body["password"] != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"token":"abc"}`))
	}))
	defer srv.Close()

	token, err := New(srv.URL, nil).Login(context.Background(), "pw")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = New(srv.URL, nil).Login(context.Background(), "nope")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}
