// services/admin_service.go
package services

import (
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"nilakkal-parking/logger"
	"nilakkal-parking/models"
)

// SessionState is the admin gate state of one client.
type SessionState string

const (
	StateAnonymous SessionState = "anonymous"
	StateAdmin     SessionState = "admin"
)

// AdminSeed is an account created at startup.
type AdminSeed struct {
	Username string
	Password string
	Name     string
	PoliceID string
}

// DefaultAdmin is the built-in account seeded at startup.
var DefaultAdmin = AdminSeed{
	Username: "police@gmail.com",
	Password: "575",
	Name:     "Sabarimala Traffic Control",
	PoliceID: "POL-KERALA-575",
}

// AdminServiceInterface is the account list behind the admin gate.
type AdminServiceInterface interface {
	Authenticate(username, password string) (models.AdminAccount, bool)
	Register(username, password, name, policeID string) bool
}

// AdminService keeps admin accounts in memory with bcrypt password hashes.
// Accounts are never removed or modified.
type AdminService struct {
	mu       sync.RWMutex
	accounts []models.AdminAccount
}

var _ AdminServiceInterface = (*AdminService)(nil)

// NewAdminService seeds the account list.
func NewAdminService(seed ...AdminSeed) *AdminService {
	s := &AdminService{}
	for _, a := range seed {
		if !s.Register(a.Username, a.Password, a.Name, a.PoliceID) {
			logger.Warn.Printf("[AdminService] Skipping duplicate seed account %s", a.Username)
		}
	}
	return s
}

// Authenticate compares the credentials against every account.
func (s *AdminService) Authenticate(username, password string) (models.AdminAccount, bool) {
	username = strings.TrimSpace(username)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Username == username {
			if bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)) != nil {
				return models.AdminAccount{}, false
			}
			return a, true
		}
	}
	return models.AdminAccount{}, false
}

// Register adds an account unless the username is taken or empty.
func (s *AdminService) Register(username, password, name, policeID string) bool {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error.Printf("[AdminService.Register] Failed to hash password for %s: %v", username, err)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Username == username {
			return false
		}
	}
	s.accounts = append(s.accounts, models.AdminAccount{
		Username:     username,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		PoliceID:     strings.TrimSpace(policeID),
	})
	logger.Info.Printf("[AdminService.Register] Registered admin %s", username)
	return true
}

// Accounts returns a copy of the account list.
func (s *AdminService) Accounts() []models.AdminAccount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AdminAccount(nil), s.accounts...)
}
