// Package controllers controllers/auth_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"nilakkal-parking/logger"
	"nilakkal-parking/middleware"
	"nilakkal-parking/services"
)

// ---------------- Auth Controller ----------------

// AuthController moves a client's session between the anonymous and admin states.
type AuthController struct {
	Admins services.AdminServiceInterface
}

// NewAuthController initializes a new instance of AuthController
func NewAuthController(admins services.AdminServiceInterface) *AuthController {
	return &AuthController{Admins: admins}
}

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Login switches the session to admin when the credentials match.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	account, ok := ac.Admins.Authenticate(req.Username, req.Password)
	if !ok {
		logger.Warn.Printf("[Login] Invalid credentials for %s", req.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionKeyAdmin, true)
	session.Set(middleware.SessionKeyUser, account.Username)
	if err := session.Save(); err != nil {
		logger.Error.Printf("[Login] Failed to save session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error, please try again."})
		return
	}

	logger.Info.Printf("[Login] %s logged in as admin", account.Username)
	c.JSON(http.StatusOK, gin.H{"state": services.StateAdmin, "admin": account})
}

// Logout returns the session to the anonymous state.
func (ac *AuthController) Logout(c *gin.Context) {
	session := sessions.Default(c)
	user, _ := session.Get(middleware.SessionKeyUser).(string)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		logger.Error.Printf("[Logout] Failed to clear session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error, please try again."})
		return
	}
	if user != "" {
		logger.Info.Printf("[Logout] %s logged out", user)
	}
	c.JSON(http.StatusOK, gin.H{"state": services.StateAnonymous})
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
	PoliceID string `json:"policeId"`
}

// Register adds an admin account. It never changes the caller's session.
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}
	if !ac.Admins.Register(req.Username, req.Password, req.Name, req.PoliceID) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Username already registered"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// Session reports the current gate state.
func (ac *AuthController) Session(c *gin.Context) {
	if !middleware.IsAdmin(c) {
		c.JSON(http.StatusOK, gin.H{"state": services.StateAnonymous})
		return
	}
	user, _ := sessions.Default(c).Get(middleware.SessionKeyUser).(string)
	c.JSON(http.StatusOK, gin.H{"state": services.StateAdmin, "user": user})
}
