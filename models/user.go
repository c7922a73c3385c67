package models

import "time"

// Roles
const (
	RoleUser   = "user"
	RoleFarmer = "farmer"
	RoleAdmin  = "admin"
)

// User is a registered account. Users are never hard-deleted; role changes
// are the only admin mutation.
type User struct {
	UserID        string    `json:"userId" bson:"userid"`
	Username      string    `json:"username" bson:"username"`
	Email         string    `json:"email" bson:"email"`
	Password      string    `json:"-" bson:"password"`
	Role          string    `json:"role" bson:"role"`
	Name          string    `json:"name,omitempty" bson:"name,omitempty"`
	Phone         string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Address       string    `json:"address,omitempty" bson:"address,omitempty"`
	FarmName      string    `json:"farmName,omitempty" bson:"farmName,omitempty"`
	RefreshToken  string    `json:"-" bson:"refresh_token,omitempty"`
	RefreshExpiry time.Time `json:"-" bson:"refresh_expiry,omitempty"`
	LastLogin     time.Time `json:"lastLogin,omitempty" bson:"last_login,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleFarmer || role == RoleAdmin
}
