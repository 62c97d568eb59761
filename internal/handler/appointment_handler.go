package handler

import (
	"net/http"

	"clinic-booking-backend/internal/models"
	"clinic-booking-backend/internal/service"
	"clinic-booking-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AppointmentHandler struct {
	appointmentService *service.AppointmentService
}

func NewAppointmentHandler(appointmentService *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

type BookRequest struct {
	Availability uint    `json:"availability" binding:"required"`
	Patient      *uint   `json:"patient"`
	Doctor       *uint   `json:"doctor"`
	Reason       *string `json:"reason"`
}

type AppointmentPatchRequest struct {
	Availability *uint   `json:"availability"`
	Status       *string `json:"status" binding:"omitempty,oneof=pending approved declined cancelled"`
	TriageStatus *string `json:"triage_status" binding:"omitempty,oneof=waiting in_consultation done no_show"`
	Reason       *string `json:"reason"`
}

type AppointmentReplaceRequest struct {
	Availability uint    `json:"availability" binding:"required"`
	Status       *string `json:"status" binding:"omitempty,oneof=pending approved declined cancelled"`
	TriageStatus *string `json:"triage_status" binding:"omitempty,oneof=waiting in_consultation done no_show"`
	Reason       *string `json:"reason"`
}

type TriageRequest struct {
	TriageStatus string `json:"triage_status" binding:"required,oneof=waiting in_consultation done no_show"`
}

func (req AppointmentPatchRequest) update() service.AppointmentUpdate {
	update := service.AppointmentUpdate{
		AvailabilityID: req.Availability,
		Reason:         req.Reason,
	}
	if req.Status != nil {
		status := models.AppointmentStatus(*req.Status)
		update.Status = &status
	}
	if req.TriageStatus != nil {
		triage := models.TriageStatus(*req.TriageStatus)
		update.TriageStatus = &triage
	}
	return update
}

// List handles GET /appointments?date=
func (h *AppointmentHandler) List(c *gin.Context) {
	errs := fieldErrors{}
	query := service.AppointmentQuery{Date: errs.date("date", optionalQuery(c, "date"))}
	if errs.respond(c) {
		return
	}
	appts, err := h.appointmentService.List(currentActor(c), query)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, service.Views(appts))
}

// Today handles GET /appointments/today
func (h *AppointmentHandler) Today(c *gin.Context) {
	appts, err := h.appointmentService.Today(currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, service.Views(appts))
}

// History handles GET /appointments/history
func (h *AppointmentHandler) History(c *gin.Context) {
	appts, err := h.appointmentService.History(currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, service.Views(appts))
}

// Get handles GET /appointments/:id
func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	appt, err := h.appointmentService.Get(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, appt.View())
}

// Book handles POST /appointments
func (h *AppointmentHandler) Book(c *gin.Context) {
	var req BookRequest
	if !bindJSON(c, &req) {
		return
	}
	appt, err := h.appointmentService.Book(c.Request.Context(), currentActor(c), service.BookingInput{
		AvailabilityID: req.Availability,
		PatientID:      req.Patient,
		DoctorID:       req.Doctor,
		Reason:         req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, appt.View())
}

// Replace handles PUT /appointments/:id
func (h *AppointmentHandler) Replace(c *gin.Context) {
	var req AppointmentReplaceRequest
	if !bindJSON(c, &req) {
		return
	}
	h.update(c, AppointmentPatchRequest{
		Availability: &req.Availability,
		Status:       req.Status,
		TriageStatus: req.TriageStatus,
		Reason:       req.Reason,
	})
}

// Patch handles PATCH /appointments/:id
func (h *AppointmentHandler) Patch(c *gin.Context) {
	var req AppointmentPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	h.update(c, req)
}

func (h *AppointmentHandler) update(c *gin.Context, req AppointmentPatchRequest) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	appt, err := h.appointmentService.Update(c.Request.Context(), currentActor(c), id, req.update())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, appt.View())
}

// UpdateTriage handles PATCH /appointments/:id/triage
func (h *AppointmentHandler) UpdateTriage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req TriageRequest
	if !bindJSON(c, &req) {
		return
	}
	appt, err := h.appointmentService.UpdateTriage(c.Request.Context(), currentActor(c), id, models.TriageStatus(req.TriageStatus))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, appt.View())
}

// Detail handles GET /appointments/:id/detail (owning doctor)
func (h *AppointmentHandler) Detail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	detail, err := h.appointmentService.Detail(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, detail)
}

// Delete handles DELETE /appointments/:id (staff)
func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.appointmentService.Delete(currentActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
