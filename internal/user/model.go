package user

import "time"

// User is a staff account: the front desk managers and the gym administrator.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required" example:"Айгуль"`
	Email    string `json:"email" binding:"required,email" example:"desk@challenger.kg"`
	Password string `json:"password" binding:"required,min=8" example:"reception2024"`
	Role     string `json:"role" binding:"omitempty,oneof=admin manager" example:"manager"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
