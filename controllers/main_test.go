// file: controllers/main_test.go
package controllers

import (
	"os"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	code := m.Run()
	os.Exit(code)
}
