package handler

import (
	"net/http"

	"clinic-booking-backend/internal/service"
	"clinic-booking-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	accountService *service.AccountService
}

func NewUserHandler(accountService *service.AccountService) *UserHandler {
	return &UserHandler{accountService: accountService}
}

type ProfileRequest struct {
	FirstName      *string `json:"first_name" binding:"omitempty,max=30"`
	LastName       *string `json:"last_name" binding:"omitempty,max=30"`
	ContactNumber  *string `json:"contact_number" binding:"omitempty,max=20"`
	Specialization *string `json:"specialization" binding:"omitempty,max=100"`
	ProfilePhoto   *string `json:"profile_photo" binding:"omitempty,max=500"`
}

type DoctorProfileRequest struct {
	ContactNumber  *string `json:"contact_number" binding:"omitempty,max=20"`
	Specialization *string `json:"specialization" binding:"omitempty,max=100"`
	ProfilePhoto   *string `json:"profile_photo" binding:"omitempty,max=500"`
}

// ListUsers handles GET /users?role=
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.accountService.ListUsers(c.Query("role"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, users)
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	user, err := h.accountService.GetUser(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, user)
}

// DeleteUser handles DELETE /users/:id (admin)
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.accountService.DeleteUser(currentActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetProfile handles GET /doctor/profile: the caller's own account
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.accountService.GetProfile(currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, user)
}

// UpdateProfile handles PUT/PATCH /doctor/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req ProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.accountService.UpdateProfile(currentActor(c), service.ProfileUpdate{
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
	utils.SuccessResponse(c, user)
}

// GetDoctorProfile handles GET /doctor/profile/detail
func (h *UserHandler) GetDoctorProfile(c *gin.Context) {
	profile, err := h.accountService.GetDoctorProfile(currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, profile)
}

// UpdateDoctorProfile handles PUT/PATCH /doctor/profile/detail
func (h *UserHandler) UpdateDoctorProfile(c *gin.Context) {
	var req DoctorProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.accountService.UpdateDoctorProfile(currentActor(c), service.DoctorProfileUpdate{
		ContactNumber:  req.ContactNumber,
		Specialization: req.Specialization,
		ProfilePhoto:   req.ProfilePhoto,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, profile)
}
