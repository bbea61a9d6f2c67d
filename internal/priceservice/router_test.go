package priceservice

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestStockPricesRequiresTokenHeader(t *testing.T) {
	store := NewStore()
	r := NewRouter(store, testSecret, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/stockPrices", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token not included")
}

func TestStockPricesRejectsInvalidToken(t *testing.T) {
	store := NewStore()
	r := NewRouter(store, testSecret, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/stockPrices", nil)
	req.Header.Set("token", "not-a-real-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token included")
}

func TestStockPricesRejectsExpiredToken(t *testing.T) {
	store := NewStore()
	r := NewRouter(store, testSecret, zap.NewNop())

	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}
	req := httptest.NewRequest(http.MethodGet, "/stockPrices", nil)
	req.Header.Set("token", signToken(t, claims))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token expired")
}

func TestStockPricesReturnsSortedDescendingByName(t *testing.T) {
	store := NewStore()
	store.Upsert("1", "alpha", 10)
	store.Upsert("2", "Zebra", 20)
	store.Upsert("3", "mango", 30)
	r := NewRouter(store, testSecret, zap.NewNop())

	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	req := httptest.NewRequest(http.MethodGet, "/stockPrices", nil)
	req.Header.Set("token", signToken(t, claims))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body stockPricesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 3)
	assert.Equal(t, "Zebra", body.Data[0].StockName)
	assert.Equal(t, "mango", body.Data[1].StockName)
	assert.Equal(t, "alpha", body.Data[2].StockName)
}
