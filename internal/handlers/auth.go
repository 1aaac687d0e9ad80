package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/gamehaqqs/gamehaqqs/internal/auth"
	"github.com/gamehaqqs/gamehaqqs/internal/models"
	"github.com/gamehaqqs/gamehaqqs/internal/services"
	"github.com/gamehaqqs/gamehaqqs/pkg/errors"
	"github.com/gamehaqqs/gamehaqqs/pkg/metrics"
	"github.com/gamehaqqs/gamehaqqs/pkg/response"
)

// AuthHandler manages registration and login.
type AuthHandler struct {
	users *services.UserService
	jwt   *iauth.JWTService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(users *services.UserService, jwt *iauth.JWTService) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type sessionResponse struct {
	AccessToken string               `json:"access_token"`
	TokenType   string               `json:"token_type"`
	ExpiresIn   int                  `json:"expires_in"`
	User        *models.User         `json:"user"`
	Unlocked    []models.Achievement `json:"unlocked,omitempty"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, unlocked, err := h.users.Register(requestContext(c), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if user == nil {
		metrics.AuthAttempts.WithLabelValues("register", "failure").Inc()
		response.Error(c, err)
		return
	}
	noteIncomplete(c, err)
	metrics.AuthAttempts.WithLabelValues("register", "success").Inc()

	h.respondWithToken(c, http.StatusCreated, user, unlocked)
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Authenticate(requestContext(c), req.Identifier, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		response.Error(c, err)
		return
	}
	metrics.AuthAttempts.WithLabelValues("login", "success").Inc()

	h.respondWithToken(c, http.StatusOK, user, nil)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user *models.User, unlocked []models.Achievement) {
	token, err := h.jwt.GenerateAccessToken(iauth.TokenInput{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		response.Error(c, errors.ErrInternalServer.WithInternal(err))
		return
	}

	response.Success(c, status, sessionResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.jwt.TTL().Seconds()),
		User:        user,
		Unlocked:    unlocked,
	})
}
