package model

import "time"

// AdminSession is one authenticated admin session. The record identifier doubles
// as the session token.
//
// swagger:model
type AdminSession struct {

	// The session token
	//
	// readOnly: true
	ID *string `gorm:"type:uuid;default:uuid_generate_v1()" json:"token,omitempty"`

	// The date and time the session was created
	//
	// readOnly: true
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`

	// The date and time the session expires
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}

func (AdminSession) TableName() string {
	return "admin_sessions"
}
