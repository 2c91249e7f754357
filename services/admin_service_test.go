// file: services/admin_service_test.go
package services_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"nilakkal-parking/services"
)

// Test: the seeded account can log in
func TestAdminService_DefaultAccount(t *testing.T) {
	svc := services.NewAdminService(services.DefaultAdmin)

	acct, ok := svc.Authenticate("police@gmail.com", "575")
	assert.True(t, ok)
	assert.Equal(t, "POL-KERALA-575", acct.PoliceID)

	_, ok = svc.Authenticate("police@gmail.com", "wrong")
	assert.False(t, ok)
}

// Test: duplicate usernames are rejected and not stored twice
func TestAdminService_RegisterDuplicate(t *testing.T) {
	svc := services.NewAdminService()

	assert.True(t, svc.Register("a@b.com", "pw", "Name", "ID1"))
	assert.False(t, svc.Register("a@b.com", "other", "Other", "ID2"))
	assert.Len(t, svc.Accounts(), 1)

	_, ok := svc.Authenticate("a@b.com", "pw")
	assert.True(t, ok)
	_, ok = svc.Authenticate("a@b.com", "other")
	assert.False(t, ok)
}

// Test: empty usernames and passwords are refused
func TestAdminService_RegisterEmpty(t *testing.T) {
	svc := services.NewAdminService()

	assert.False(t, svc.Register("", "pw", "Name", "ID"))
	assert.False(t, svc.Register("user@b.com", "", "Name", "ID"))
	assert.Empty(t, svc.Accounts())
}

// Test: concurrent registrations of one username admit exactly one
func TestAdminService_ConcurrentRegister(t *testing.T) {
	svc := services.NewAdminService()

	var wg sync.WaitGroup
	results := make([]bool, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.Register("same@b.com", "pw", "Name", "ID")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, ok := range results {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Len(t, svc.Accounts(), 1)
}

// Test: passwords are stored as bcrypt hashes
func TestAdminService_PasswordHashed(t *testing.T) {
	svc := services.NewAdminService()
	assert.True(t, svc.Register("hash@b.com", "secret", "Name", "ID"))

	accounts := svc.Accounts()
	assert.Len(t, accounts, 1)
	assert.NotEqual(t, "secret", string(accounts[0].PasswordHash))
	assert.True(t, len(accounts[0].PasswordHash) > 0)
}
