package models

import "gorm.io/datatypes"

type Role string

const (
	RoleMember Role = "Member"
	RoleAdmin  Role = "Admin"
)

type User struct {
	Base
	Username     string                      `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string                      `gorm:"not null" json:"-"`
	Role         Role                        `gorm:"type:varchar(16);not null" json:"role"`
	OwnedGames   datatypes.JSONSlice[string] `json:"ownedGames"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserInput - signup body. A client supplied role is never read.
type UserInput struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=5"`
}

// LoginInput - body of POST /api/login
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
