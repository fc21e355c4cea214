package handlers

import (
	"time"

	"github.com/NomadCrew/cats-backend/errors"
	"github.com/NomadCrew/cats-backend/internal/utils"
	"github.com/NomadCrew/cats-backend/logger"
	"github.com/NomadCrew/cats-backend/middleware"
	"github.com/NomadCrew/cats-backend/models"
	"github.com/NomadCrew/cats-backend/store"
	"github.com/NomadCrew/cats-backend/types"
	"github.com/gin-gonic/gin"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID, email string) (string, time.Time, error)
}

type UserHandler struct {
	users  store.Repository[models.User]
	tokens TokenIssuer
}

func NewUserHandler(users store.Repository[models.User], tokens TokenIssuer) *UserHandler {
	return &UserHandler{users: users, tokens: tokens}
}

// Register godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body types.RegisterRequest true "Account details"
// @Success 201 {object} types.StandardResponse{data=models.PublicUser}
// @Failure 400 {object} types.StandardResponse "Invalid request body"
// @Failure 409 {object} types.StandardResponse "Email already registered"
// @Router /users [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	taken, err := h.users.Exists(c.Request.Context(), models.UserByEmail(req.Email))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if taken {
		_ = c.Error(errors.Conflict("Email already registered", models.NormalizeEmail(req.Email)))
		return
	}

	user, err := models.NewUser(req.Name, req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	// A concurrent registration still hits the unique index and maps to 409.
	created, err := h.users.Create(c.Request.Context(), user)
	if err != nil {
		_ = c.Error(err)
		return
	}

	logger.GetLogger().Infow("User registered", "user_id", created.ID.Hex())
	middleware.Respond(c, types.Created(created.ToPublic()))
}

// Authenticate godoc
// @Summary Exchange credentials for an access token
// @Tags users
// @Accept json
// @Produce json
// @Param request body types.AuthenticateRequest true "Credentials"
// @Success 200 {object} types.StandardResponse{data=types.TokenResponse}
// @Failure 401 {object} types.StandardResponse "Invalid credentials"
// @Failure 429 {object} types.StandardResponse "Too many attempts"
// @Router /users/authenticate [post]
func (h *UserHandler) Authenticate(c *gin.Context) {
	log := logger.GetLogger()

	var req types.AuthenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	user, err := h.users.FindOne(c.Request.Context(), models.UserByEmail(req.Email))
	if err != nil {
		_ = c.Error(err)
		return
	}
	// Unknown email and wrong password look the same to the caller.
	if user == nil || !user.CheckPassword(req.Password) {
		log.Infow("Authentication failed", "client_ip", c.ClientIP())
		_ = c.Error(errors.AuthenticationFailed("Invalid email or password"))
		return
	}
	if user.IsLocked() {
		log.Warnw("Locked account tried to authenticate", "user_id", user.ID.Hex())
		_ = c.Error(errors.AuthenticationFailed("Account is locked"))
		return
	}

	token, expiresAt, err := h.tokens.Issue(user.ID.Hex(), user.Email)
	if err != nil {
		_ = c.Error(err)
		return
	}

	middleware.Respond(c, types.OK(types.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user.ToPublic(),
	}))
}

// Me godoc
// @Summary Get the authenticated user
// @Tags users
// @Produce json
// @Success 200 {object} types.StandardResponse{data=models.PublicUser}
// @Failure 401 {object} types.StandardResponse "Unauthorized"
// @Failure 404 {object} types.StandardResponse "User not found"
// @Router /users/me [get]
// @Security BearerAuth
func (h *UserHandler) Me(c *gin.Context) {
	id, err := utils.UserObjectID(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if user == nil {
		_ = c.Error(errors.NotFound("User", id.Hex()))
		return
	}

	middleware.Respond(c, types.OK(user.ToPublic()))
}
