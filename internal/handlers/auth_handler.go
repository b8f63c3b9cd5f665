package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/kassemshdy/aspire-library/internal/httperr"
	"github.com/kassemshdy/aspire-library/internal/models"
	ucUser "github.com/kassemshdy/aspire-library/internal/usecase/user"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	register *ucUser.Register
	login    *ucUser.Login
	secret   string
	now      func() time.Time
}

func NewAuthHandler(register *ucUser.Register, login *ucUser.Login, secret string) *AuthHandler {
	return &AuthHandler{
		register: register,
		login:    login,
		secret:   secret,
		now:      time.Now,
	}
}

// --------- Requests ---------

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	user, err := h.register.Execute(c.Request.Context(), ucUser.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	token, err := h.generateToken(user)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Could not issue a session token")
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{User: user, Token: token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	user, err := h.login.Execute(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, ucUser.ErrInvalidCredentials) {
		httperr.Unauthorized(c, "invalid_credentials", "Email or password is incorrect")
		return
	}
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	token, err := h.generateToken(user)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Could not issue a session token")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{User: user, Token: token})
}

// --------- JWT ---------

// The token carries identity only. Roles are read from the database on
// every request.
func (h *AuthHandler) generateToken(user *models.User) (string, error) {
	now := h.now()
	claims := jwt.MapClaims{
		"sub": user.ID,
		"exp": now.Add(tokenTTL).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.secret))
}
