package httpmodel

import "fmt"

// AdminLogin
//
// swagger:model
type AdminLogin struct {

	// The administrator password
	//
	// required: true
	Password string `json:"password"`
}

// Validate verifies that the login request contains a password.
func (l AdminLogin) Validate() error {
	if l.Password == "" {
		return fmt.Errorf("a password is required")
	}
	return nil
}
