package models

import "time"

// User roles understood by the role gate.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an application user. The password hash is never
// serialized into API responses.
type User struct {
	UID          string    `bson:"_id,omitempty" json:"uid"`
	Username     string    `bson:"username" json:"username"`
	Email        string    `bson:"email" json:"email"`
	FirstName    string    `bson:"firstName" json:"first_name"`
	LastName     string    `bson:"lastName" json:"last_name"`
	Role         string    `bson:"role" json:"role"`
	IsVerified   bool      `bson:"isVerified" json:"is_verified"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updated_at"`
}
