package handlers

import (
	"net/http"

	"medibook/middleware"
	"medibook/services/booking"
	"medibook/services/user"
	"medibook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler serves the admin dashboard endpoints.
type AdminHandler struct {
	Users   user.UserService
	Booking booking.BookingService
	Logger  *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(users user.UserService, bookingSvc booking.BookingService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{Users: users, Booking: bookingSvc, Logger: logger}
}

// GetAllUsersHandler handles GET /api/admin/users.
func (h *AdminHandler) GetAllUsersHandler(c *gin.Context) {
	users, err := h.Users.GetAll()
	if err != nil {
		h.Logger.Error("Failed to list users", zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetAllAppointmentsHandler handles GET /api/admin/appointments.
func (h *AdminHandler) GetAllAppointmentsHandler(c *gin.Context) {
	appointments, err := h.Booking.ListAll()
	if err != nil {
		h.Logger.Error("Failed to list all appointments", zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

// UpdateStatusHandler handles PUT /api/admin/appointments/:id/status.
func (h *AdminHandler) UpdateStatusHandler(c *gin.Context) {
	adminID, _, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Authentication required"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid status update", err.Error())
		return
	}

	appt, err := h.Booking.UpdateStatus(adminID, c.Param("id"), req.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// StatsHandler handles GET /api/admin/stats.
func (h *AdminHandler) StatsHandler(c *gin.Context) {
	stats, err := h.Booking.Stats()
	if err != nil {
		h.Logger.Error("Failed to compute stats", zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
