package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"clinic-booking-backend/internal/models"
	"clinic-booking-backend/internal/repository"
	"clinic-booking-backend/internal/service"
	"clinic-booking-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// currentActor reads the caller set by AuthMiddleware
func currentActor(c *gin.Context) service.Actor {
	userID, _ := c.Get("userID")
	id, _ := userID.(uint)
	return service.Actor{
		UserID: id,
		Role:   models.Role(c.GetString("role")),
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}

// bindJSON binds the body into req and answers 400 with field errors on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.ValidationErrorResponse(c, utils.BindingErrors(err))
		return false
	}
	return true
}

// respondError maps service and repository errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		utils.ValidationErrorResponse(c, validationErr.Fields)
	case errors.Is(err, service.ErrInvalidTransition):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		utils.ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "Not found.")
	case errors.Is(err, service.ErrSlotAlreadyBooked), errors.Is(err, service.ErrSlotBeingBooked):
		utils.ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInactiveAccount),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired):
		utils.ErrorResponse(c, http.StatusUnauthorized, err.Error())
	default:
		log.Printf("Error handling %s %s (request %s): %v", c.Request.Method, c.Request.URL.Path, c.GetString("requestID"), err)
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}

// fieldErrors collects parse failures of optional request fields
type fieldErrors map[string]string

func (f fieldErrors) date(field string, value *string) *models.Date {
	if value == nil || *value == "" {
		return nil
	}
	d, err := models.ParseDate(*value)
	if err != nil {
		f[field] = err.Error()
		return nil
	}
	return &d
}

func (f fieldErrors) clock(field string, value *string) *models.ClockTime {
	if value == nil || *value == "" {
		return nil
	}
	t, err := models.ParseClockTime(*value)
	if err != nil {
		f[field] = err.Error()
		return nil
	}
	return &t
}

// respond writes the collected errors and reports whether there were any
func (f fieldErrors) respond(c *gin.Context) bool {
	if len(f) == 0 {
		return false
	}
	utils.ValidationErrorResponse(c, f)
	return true
}
