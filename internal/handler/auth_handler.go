package handler

import (
	"net/http"

	"clinic-booking-backend/internal/models"
	"clinic-booking-backend/internal/service"
	"clinic-booking-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const refreshCookie = "refresh_token"

type AuthHandler struct {
	authService    *service.AuthService
	accountService *service.AccountService
}

func NewAuthHandler(authService *service.AuthService, accountService *service.AccountService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		accountService: accountService,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email          string  `json:"email" binding:"required,email,max=254"`
	Password       string  `json:"password" binding:"required,min=8"`
	Role           string  `json:"role" binding:"required,oneof=doctor staff patient"`
	FirstName      string  `json:"first_name" binding:"max=30"`
	LastName       string  `json:"last_name" binding:"max=30"`
	ContactNumber  *string `json:"contact_number" binding:"omitempty,max=20"`
	Specialization *string `json:"specialization" binding:"omitempty,max=100"`
	ProfilePhoto   *string `json:"profile_photo" binding:"omitempty,max=500"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

func setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		refreshCookie,                                // name
		token,                                        // value
		int(utils.GetRefreshTokenExpiry().Seconds()), // maxAge in seconds
		"/",                                          // path
		"",                                           // domain (empty means current domain)
		c.Request.TLS != nil,                         // secure
		true,                                         // httpOnly
	)
}

// refreshTokenFrom prefers the token in the body and falls back to the cookie
func refreshTokenFrom(c *gin.Context) string {
	var req RefreshRequest
	if c.Request.ContentLength != 0 {
		_ = c.ShouldBindJSON(&req)
	}
	if req.Refresh != "" {
		return req.Refresh
	}
	token, _ := c.Cookie(refreshCookie)
	return token
}

// Register handles account creation
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(service.RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		Role:           models.Role(req.Role),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		ContactNumber:  req.ContactNumber,
		Specialization: req.Specialization,
		ProfilePhoto:   req.ProfilePhoto,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, user)
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	// Authenticate user
	response, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	// Set refresh token as HttpOnly cookie
	setRefreshCookie(c, response.RefreshToken)

	utils.SuccessResponse(c, response)
}

// Refresh generates a new access token from refresh token
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken := refreshTokenFrom(c)
	if refreshToken == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Refresh token not found")
		return
	}

	// Generate new access token
	accessToken, err := h.authService.RefreshAccessToken(refreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"access": accessToken,
	})
}

// Logout takes a doctor off call and revokes the refresh token
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(currentActor(c), refreshTokenFrom(c)); err != nil {
		respondError(c, err)
		return
	}

	// Clear the cookie
	c.SetCookie(refreshCookie, "", -1, "/", "", false, true)

	utils.MessageResponse(c, "Logged out successfully")
}

// WhoAmI returns the caller's id, email and role
func (h *AuthHandler) WhoAmI(c *gin.Context) {
	identity, err := h.accountService.Identity(currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, identity)
}
