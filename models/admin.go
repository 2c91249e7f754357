// File: models/admin.go
package models

// ----------------------- admin model -----------------------

// AdminAccount is a police administrator allowed to manage zones.
type AdminAccount struct {
	Username     string `json:"username"`
	PasswordHash []byte `json:"-"`
	Name         string `json:"name"`
	PoliceID     string `json:"policeId"`
}
