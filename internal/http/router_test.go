package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mdtsHttp "github.com/nexustechhub/mdts/internal/http"
	locationHandler "github.com/nexustechhub/mdts/internal/http/location"
	productHandler "github.com/nexustechhub/mdts/internal/http/product"
	transferHandler "github.com/nexustechhub/mdts/internal/http/transfer"
	"github.com/nexustechhub/mdts/internal/location"
	"github.com/nexustechhub/mdts/internal/product"
	"github.com/nexustechhub/mdts/internal/transfer"
)

func newRouter(t *testing.T, secret string) (http.Handler, *transfer.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := transfer.NewMockRepository(ctrl)

	router := mdtsHttp.New(
		mdtsHttp.Options{JWTSecret: secret, AllowedOrigins: []string{"https://admin.nexustechhub.com"}},
		transferHandler.NewHandler(transfer.NewService(repo, nil), 10, 100),
		productHandler.NewHandler(product.NewService(product.NewMockRepository(ctrl))),
		locationHandler.NewHandler(location.NewService(location.NewMockRepository(ctrl))),
	)

	return router, repo
}

func TestRouter_RejectsMissingToken(t *testing.T) {
	router, _ := newRouter(t, "secret")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/inventory-transfers", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"statusCode":401,"message":"Unauthorized","data":null}`, rec.Body.String())
}

func TestRouter_HealthzIsPublic(t *testing.T) {
	router, _ := newRouter(t, "secret")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ListWithoutAuthConfigured(t *testing.T) {
	router, repo := newRouter(t, "")

	repo.EXPECT().
		ListTransfers(gomock.Any(), transfer.ListFilter{}, transfer.Page{Number: 1, Size: 10}).
		Return(nil, 0, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/inventory-transfers", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Transfers []any `json:"inventoryTransferListData"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.NotNil(t, env.Data.Transfers)
	assert.Empty(t, env.Data.Transfers)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router, _ := newRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _ := newRouter(t, "secret")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/inventory-transfers", nil)
	req.Header.Set("Origin", "https://admin.nexustechhub.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://admin.nexustechhub.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
