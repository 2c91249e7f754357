// file: controllers/test_helpers.go
package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/require"
	"nilakkal-parking/middleware"
	"nilakkal-parking/models"
	"nilakkal-parking/services"
	"nilakkal-parking/storage"
)

// testEnv holds the real services behind a test router.
type testEnv struct {
	router  *gin.Engine
	parking *services.ParkingService
	admins  *services.AdminService
	backups *services.BackupService
}

// setupTestRouter creates a new Gin engine with session middleware.
func setupTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	store := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions("testsession", store))
	return router
}

func fakeQREncoder(content string, level qrcode.RecoveryLevel, size int) ([]byte, error) {
	return []byte("PNG:" + content), nil
}

// newTestEnv wires the full API over two standard zones.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	router := setupTestRouter(t)

	parking := services.NewParkingService([]models.ParkingZone{
		{ID: "Z1", Name: "Nilakkal Zone 1", Capacity: 50, Vehicles: []models.Vehicle{},
			Limits: models.CategoryCounts{Heavy: 10, Medium: 15, Light: 25}},
		{ID: "Z2", Name: "Nilakkal Zone 2", Capacity: 2, Vehicles: []models.Vehicle{},
			Limits: models.CategoryCounts{Heavy: 1, Medium: 0, Light: 1}},
	}, nil, nil)
	admins := services.NewAdminService(services.DefaultAdmin)
	store, err := storage.NewFileStore("", "nilakkal-police")
	require.NoError(t, err)
	backups := services.NewBackupService(store, "nilakkal-police", parking)

	pc := NewParkingController(parking, "https://parking.example")
	pc.QREncoder = fakeQREncoder

	RegisterRoutes(router, Handlers{
		Parking:      pc,
		Zones:        NewZoneController(parking),
		Auth:         NewAuthController(admins),
		Backups:      NewBackupController(backups, parking, "nilakkal-police"),
		LoginLimiter: middleware.NewRateLimiter(100, 100),
	})
	return &testEnv{router: router, parking: parking, admins: admins, backups: backups}
}

// SetSession sets the given key/value pairs in the session using a helper route
// and returns the session cookie that can be attached to subsequent test requests.
func SetSession(router *gin.Engine, route string, data map[string]interface{}) *http.Cookie {
	router.GET(route, func(c *gin.Context) {
		session := sessions.Default(c)
		for key, value := range data {
			session.Set(key, value)
		}
		if err := session.Save(); err != nil {
			c.String(http.StatusInternalServerError, "session save failed")
			return
		}
		c.String(http.StatusOK, "session set")
	})

	req, _ := http.NewRequest("GET", route, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "testsession" {
			return cookie
		}
	}
	return nil
}

// adminCookie returns a session cookie in the admin state.
func (e *testEnv) adminCookie(t *testing.T) *http.Cookie {
	t.Helper()
	cookie := SetSession(e.router, "/test/set-admin", map[string]interface{}{
		middleware.SessionKeyAdmin: true,
		middleware.SessionKeyUser:  "police@gmail.com",
	})
	require.NotNil(t, cookie)
	return cookie
}

// do performs a request with an optional JSON body and cookie.
func (e *testEnv) do(method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
