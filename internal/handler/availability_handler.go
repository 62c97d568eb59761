package handler

import (
	"net/http"
	"strconv"

	"clinic-booking-backend/internal/models"
	"clinic-booking-backend/internal/service"
	"clinic-booking-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	availabilityService *service.AvailabilityService
}

func NewAvailabilityHandler(availabilityService *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityService: availabilityService}
}

type AvailabilityRequest struct {
	Date        string  `json:"date" binding:"required"`
	StartTime   string  `json:"start_time" binding:"required"`
	EndTime     string  `json:"end_time" binding:"required"`
	Repeat      string  `json:"repeat" binding:"omitempty,oneof=none weekly biweekly"`
	RepeatUntil *string `json:"repeat_until"`
}

type AvailabilityPatchRequest struct {
	Date        *string `json:"date"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Repeat      *string `json:"repeat" binding:"omitempty,oneof=none weekly biweekly"`
	RepeatUntil *string `json:"repeat_until"`
}

func (req *AvailabilityRequest) patch() AvailabilityPatchRequest {
	return AvailabilityPatchRequest{
		Date:        &req.Date,
		StartTime:   &req.StartTime,
		EndTime:     &req.EndTime,
		Repeat:      &req.Repeat,
		RepeatUntil: req.RepeatUntil,
	}
}

// List handles GET /availabilities?doctor=&date=&from=&open=true
func (h *AvailabilityHandler) List(c *gin.Context) {
	errs := fieldErrors{}
	query := service.AvailabilityQuery{
		Date: errs.date("date", optionalQuery(c, "date")),
		From: errs.date("from", optionalQuery(c, "from")),
	}
	if raw := c.Query("doctor"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			errs["doctor"] = "must be a doctor id"
		} else {
			doctorID := uint(id)
			query.DoctorID = &doctorID
		}
	}
	query.OpenOnly, _ = strconv.ParseBool(c.Query("open"))
	if errs.respond(c) {
		return
	}

	slots, err := h.availabilityService.List(currentActor(c), query)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, slots)
}

// Get handles GET /availabilities/:id
func (h *AvailabilityHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	slot, err := h.availabilityService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, slot)
}

// Create handles POST /availabilities (doctor)
func (h *AvailabilityHandler) Create(c *gin.Context) {
	var req AvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}

	errs := fieldErrors{}
	date := errs.date("date", &req.Date)
	start := errs.clock("start_time", &req.StartTime)
	end := errs.clock("end_time", &req.EndTime)
	until := errs.date("repeat_until", req.RepeatUntil)
	if errs.respond(c) {
		return
	}

	series, err := h.availabilityService.Create(currentActor(c), service.AvailabilityInput{
		Date:        *date,
		StartTime:   *start,
		EndTime:     *end,
		Repeat:      models.Repeat(req.Repeat),
		RepeatUntil: until,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, series)
}

// Replace handles PUT /availabilities/:id
func (h *AvailabilityHandler) Replace(c *gin.Context) {
	var req AvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Repeat == "" {
		req.Repeat = string(models.RepeatNone)
	}
	h.update(c, req.patch(), req.RepeatUntil == nil)
}

// Patch handles PATCH /availabilities/:id
func (h *AvailabilityHandler) Patch(c *gin.Context) {
	var req AvailabilityPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	h.update(c, req, false)
}

func (h *AvailabilityHandler) update(c *gin.Context, req AvailabilityPatchRequest, clearRepeatUntil bool) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	errs := fieldErrors{}
	patch := service.AvailabilityPatch{
		Date:        errs.date("date", req.Date),
		StartTime:   errs.clock("start_time", req.StartTime),
		EndTime:     errs.clock("end_time", req.EndTime),
		RepeatUntil: errs.date("repeat_until", req.RepeatUntil),

		ClearRepeatUntil: clearRepeatUntil,
	}
	if req.Repeat != nil {
		repeat := models.Repeat(*req.Repeat)
		patch.Repeat = &repeat
	}
	if errs.respond(c) {
		return
	}

	slot, err := h.availabilityService.Update(currentActor(c), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, slot)
}

// Delete handles DELETE /availabilities/:id
func (h *AvailabilityHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.availabilityService.Delete(currentActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func optionalQuery(c *gin.Context, key string) *string {
	if value, ok := c.GetQuery(key); ok && value != "" {
		return &value
	}
	return nil
}
