package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"clinic-booking-backend/internal/repository"
	"clinic-booking-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AccessControlMiddleware provides ownership checks on doctor-owned resources
type AccessControlMiddleware struct {
	availRepo *repository.AvailabilityRepository
	apptRepo  *repository.AppointmentRepository
}

// NewAccessControlMiddleware creates a new access control middleware
func NewAccessControlMiddleware(
	availRepo *repository.AvailabilityRepository,
	apptRepo *repository.AppointmentRepository,
) *AccessControlMiddleware {
	return &AccessControlMiddleware{
		availRepo: availRepo,
		apptRepo:  apptRepo,
	}
}

// CheckSlotOwner verifies the caller is the doctor who owns the slot in :id
func (m *AccessControlMiddleware) CheckSlotOwner() gin.HandlerFunc {
	return m.checkDoctorOwns("availability", func(id uint) (uint, error) {
		slot, err := m.availRepo.FindByID(id)
		if err != nil {
			return 0, err
		}
		return slot.DoctorID, nil
	})
}

// CheckAppointmentDoctor verifies the caller is the doctor of the appointment in :id
func (m *AccessControlMiddleware) CheckAppointmentDoctor() gin.HandlerFunc {
	return m.checkDoctorOwns("appointment", func(id uint) (uint, error) {
		appt, err := m.apptRepo.FindByID(id)
		if err != nil {
			return 0, err
		}
		return appt.DoctorID, nil
	})
}

func (m *AccessControlMiddleware) checkDoctorOwns(resource string, ownerOf func(id uint) (uint, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get user info from context (set by AuthMiddleware)
		userID, exists := c.Get("userID")
		if !exists {
			utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
			c.Abort()
			return
		}

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+resource+" ID")
			c.Abort()
			return
		}

		ownerID, err := ownerOf(uint(id))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				utils.ErrorResponse(c, http.StatusNotFound, "Not found.")
			} else {
				utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to verify access")
			}
			c.Abort()
			return
		}

		if c.GetString("role") != "doctor" || ownerID != userID.(uint) {
			utils.ErrorResponse(c, http.StatusForbidden, "Access denied: you don't own this "+resource)
			c.Abort()
			return
		}

		c.Next()
	}
}
