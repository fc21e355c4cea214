package types

import (
	"time"

	"github.com/NomadCrew/cats-backend/models"
)

// RegisterRequest is the body of POST /users.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// AuthenticateRequest is the body of POST /users/authenticate.
type AuthenticateRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is returned by a successful authentication.
type TokenResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	ExpiresAt   time.Time         `json:"expires_at"`
	User        models.PublicUser `json:"user"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Service     string `json:"service"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Database    bool   `json:"database"`
	Uptime      string `json:"uptime"`
}
