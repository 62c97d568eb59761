package handler

import (
	"bytes"
	"net/http"

	"clinic-booking-backend/internal/service"
	"clinic-booking-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type DoctorHandler struct {
	accountService *service.AccountService
	doctorService  *service.DoctorService
}

func NewDoctorHandler(accountService *service.AccountService, doctorService *service.DoctorService) *DoctorHandler {
	return &DoctorHandler{
		accountService: accountService,
		doctorService:  doctorService,
	}
}

type OnCallRequest struct {
	IsAvailableOnCall *bool `json:"is_available_on_call" binding:"required"`
}

// SearchDoctors handles GET /public/doctors?q=
func (h *DoctorHandler) SearchDoctors(c *gin.Context) {
	doctors, err := h.accountService.SearchDoctors(c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, doctors)
}

// GetDoctor handles GET /public/doctors/:id and /doctor/profile/:id
func (h *DoctorHandler) GetDoctor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	doctor, err := h.accountService.PublicDoctor(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, doctor)
}

// ToggleAvailable handles POST /doctor/toggle-available
func (h *DoctorHandler) ToggleAvailable(c *gin.Context) {
	var req OnCallRequest
	if !bindJSON(c, &req) {
		return
	}
	available, err := h.accountService.SetAvailableOnCall(currentActor(c), *req.IsAvailableOnCall)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"is_available_on_call": available})
}

// Dashboard handles GET /doctor/dashboard/overview
func (h *DoctorHandler) Dashboard(c *gin.Context) {
	overview, err := h.doctorService.Dashboard(currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, overview)
}

// PatientSummaries handles GET /doctor/patient-summaries
func (h *DoctorHandler) PatientSummaries(c *gin.Context) {
	summaries, err := h.doctorService.PatientSummaries(currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, summaries)
}

// ExportAppointments streams the caller's finished appointments as a CSV attachment
func (h *DoctorHandler) ExportAppointments(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.doctorService.ExportHistory(currentActor(c), &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="appointment_history.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
