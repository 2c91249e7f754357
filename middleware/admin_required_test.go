package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// Unique function name to avoid conflicts with other test files
func setupAdminTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	store := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions("testsession", store))

	// helper route that flips the admin flag
	router.GET("/set-admin", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(SessionKeyAdmin, c.Query("value") == "true")
		_ = session.Save()
		c.Status(http.StatusOK)
	})

	admin := router.Group("/", AdminRequired())
	admin.GET("/admin-only", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome, admin!"})
	})
	return router
}

func sessionCookie(t *testing.T, router *gin.Engine, value string) *http.Cookie {
	t.Helper()
	req, _ := http.NewRequest("GET", "/set-admin?value="+value, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == "testsession" {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

// TestAdminRequired_Success ensures an admin can access the protected route
func TestAdminRequired_Success(t *testing.T) {
	router := setupAdminTestRouter()
	cookie := sessionCookie(t, router, "true")

	req, _ := http.NewRequest("GET", "/admin-only", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "Admin should be allowed")
	assert.Contains(t, w.Body.String(), "Welcome, admin!")
}

// TestAdminRequired_Unauthorized ensures non-admin users are blocked
func TestAdminRequired_Unauthorized(t *testing.T) {
	router := setupAdminTestRouter()
	cookie := sessionCookie(t, router, "false")

	req, _ := http.NewRequest("GET", "/admin-only", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code, "Non-admin should be blocked")
	assert.Contains(t, w.Body.String(), "Unauthorized")
}

// TestAdminRequired_MissingSession ensures missing session results in unauthorized access
func TestAdminRequired_MissingSession(t *testing.T) {
	router := setupAdminTestRouter()

	req, _ := http.NewRequest("GET", "/admin-only", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code, "Missing session should block access")
	assert.Contains(t, w.Body.String(), "Unauthorized")
}
