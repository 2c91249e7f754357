// controllers/page_controller_test.go
package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestHealth tests the Health function
func TestHealth(t *testing.T) {
	router := setupTestRouter(t)
	router.GET("/health", Health)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	expectedResponse := `{"status":"healthy"}`
	assert.JSONEq(t, expectedResponse, w.Body.String(), "Unexpected response from /health endpoint")
}

// TestRegisterRoutes_Health checks the route table exposes the health check.
func TestRegisterRoutes_Health(t *testing.T) {
	env := newTestEnv(t)
	w := env.do("GET", "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
