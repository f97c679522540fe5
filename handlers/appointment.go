package handlers

import (
	"net/http"
	"time"

	"medibook/middleware"
	"medibook/models"
	"medibook/services/booking"
	"medibook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppointmentHandler serves the patient-facing appointment endpoints.
type AppointmentHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(svc booking.BookingService, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{Service: svc, Logger: logger}
}

// parseDate accepts a calendar day as "2006-01-02" or a full RFC 3339 timestamp.
func parseDate(raw string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// ListHandler handles GET /api/appointments.
func (h *AppointmentHandler) ListHandler(c *gin.Context) {
	userID, _, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Authentication required"})
		return
	}

	appointments, err := h.Service.ListForUser(userID)
	if err != nil {
		h.Logger.Error("Failed to list appointments", zap.String("userID", userID), zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

// CreateHandler handles POST /api/appointments.
func (h *AppointmentHandler) CreateHandler(c *gin.Context) {
	userID, _, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Authentication required"})
		return
	}

	var req struct {
		FullName string `json:"fullName" binding:"required"`
		Date     string `json:"date" binding:"required"`
		Time     string `json:"time" binding:"required"`
		DoctorID string `json:"doctorId" binding:"required"`
		Reason   string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid appointment request", err.Error())
		return
	}
	date, ok := parseDate(req.Date)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "Invalid appointment request", "date must be YYYY-MM-DD")
		return
	}

	appt, err := h.Service.Create(userID, booking.CreateAppointmentInput{
		DoctorID: req.DoctorID,
		FullName: req.FullName,
		Date:     date,
		Time:     req.Time,
		Reason:   req.Reason,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// UpdateHandler handles PUT /api/appointments/:id.
func (h *AppointmentHandler) UpdateHandler(c *gin.Context) {
	userID, role, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Authentication required"})
		return
	}

	var req struct {
		FullName *string `json:"fullName"`
		Date     *string `json:"date"`
		Time     *string `json:"time"`
		DoctorID *string `json:"doctorId"`
		Reason   *string `json:"reason"`
		Status   *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid appointment update", err.Error())
		return
	}

	update := models.AppointmentUpdate{
		FullName: req.FullName,
		Time:     req.Time,
		DoctorID: req.DoctorID,
		Reason:   req.Reason,
		Status:   req.Status,
	}
	if req.Date != nil {
		date, ok := parseDate(*req.Date)
		if !ok {
			utils.JSONError(c, http.StatusBadRequest, "Invalid appointment update", "date must be YYYY-MM-DD")
			return
		}
		update.Date = &date
	}

	appt, err := h.Service.Update(userID, role, c.Param("id"), update)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// DeleteHandler handles DELETE /api/appointments/:id.
func (h *AppointmentHandler) DeleteHandler(c *gin.Context) {
	userID, role, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Authentication required"})
		return
	}

	if err := h.Service.Delete(userID, role, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment removed"})
}
