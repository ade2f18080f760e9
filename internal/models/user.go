package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserType distinguishes private customers from companies.
type UserType string

const (
	UserTypePersonal UserType = "personal"
	UserTypeBusiness UserType = "business"
)

// Role controls access to admin-only routes.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a registered account stored in the users collection.
type User struct {
	ID          primitive.ObjectID `json:"_id"         bson:"_id,omitempty"`
	Email       string             `json:"email"       bson:"email"`
	Password    string             `json:"-"           bson:"password,omitempty"` // never serialize
	UserType    UserType           `json:"userType"    bson:"userType"`
	CompanyName string             `json:"companyName" bson:"companyName"`
	Role        Role               `json:"role"        bson:"role"`
	CreatedAt   time.Time          `json:"createdAt"   bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"   bson:"updatedAt"`
}

// IsAdmin reports whether the user may manage the catalog.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// NormalizeEmail trims and lower-cases an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterRequest is the JSON body for POST /api/register.
type RegisterRequest struct {
	CompanyName string   `json:"companyName"`
	Email       string   `json:"email"    validate:"required"`
	Password    string   `json:"password" validate:"required"`
	UserType    UserType `json:"userType" validate:"omitempty,oneof=personal business"`
}

// LoginRequest is the JSON body for POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}
