package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/stretchr/testify/require"

	"github.com/scenevault/scenevault/internal/model"
)

// loadDocument loads and validates the OpenAPI document.
func loadDocument(t *testing.T) (*openapi3.T, routers.Router) {
	t.Helper()

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(filepath.Join("..", "..", "docs", "api", "openapi.yaml"))
	require.NoError(t, err, "load OpenAPI document")
	require.NoError(t, doc.Validate(context.Background()), "OpenAPI document is invalid")

	router, err := gorillamux.NewRouter(doc)
	require.NoError(t, err)

	return doc, router
}

// validateExchange checks both the request and the recorded response against the document.
func validateExchange(t *testing.T, router routers.Router, method, path, body string, rec *httptest.ResponseRecorder) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	route, pathParams, err := router.FindRoute(req)
	require.NoError(t, err, "%s %s is not documented", method, path)

	reqInput := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: pathParams,
		Route:      route,
		Options: &openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}
	if body != "" {
		require.NoError(t, openapi3filter.ValidateRequest(context.Background(), reqInput), "request %s %s", method, path)
	}

	respInput := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: reqInput,
		Status:                 rec.Code,
		Header:                 rec.Header(),
		Options:                &openapi3filter.Options{IncludeResponseStatus: true},
	}
	respInput.SetBodyBytes(rec.Body.Bytes())

	require.NoError(t, openapi3filter.ValidateResponse(context.Background(), respInput),
		"response %d for %s %s: %s", rec.Code, method, path, rec.Body.String())
}

func TestOpenAPIDocumentValid(t *testing.T) {
	t.Parallel()

	doc, _ := loadDocument(t)
	for _, path := range []string{"/register", "/login", "/addData", "/getData", "/healthz", "/readyz"} {
		require.NotNil(t, doc.Paths.Find(path), "expected path %s in document", path)
	}
}

func TestContract_ResponsesMatchDocument(t *testing.T) {
	t.Parallel()

	_, router := loadDocument(t)
	h, _ := newTestRouter(t, nil)

	exchange := func(method, path, body, token string) *httptest.ResponseRecorder {
		rec := do(t, h, method, path, body, token)
		validateExchange(t, router, method, path, body, rec)
		return rec
	}

	exchange(http.MethodGet, "/", "", "")
	exchange(http.MethodGet, "/healthz", "", "")
	exchange(http.MethodGet, "/readyz", "", "")

	register := `{"username":"carol","email":"carol@example.com","password":"pw"}`
	exchange(http.MethodPost, "/register", register, "")
	exchange(http.MethodPost, "/register", register, "")
	exchange(http.MethodPost, "/login", `{"username":"carol","password":"nope"}`, "")

	rec := exchange(http.MethodPost, "/login", `{"email":"carol@example.com","password":"pw"}`, "")
	var tok model.TokenResponse
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&tok))

	exchange(http.MethodGet, "/getData", "", "")
	exchange(http.MethodGet, "/getData", "", tok.AccessToken)
	exchange(http.MethodPost, "/addData",
		`{"cubes":[{"position":{"x":0,"y":1,"z":2},"uuid":"a"}],"selectedCubes":["a"],"hingePoints":[{"from":"a","angle":90}]}`,
		tok.AccessToken)
	exchange(http.MethodGet, "/getData", "", tok.AccessToken)
}
