package handlers

import (
	"net/http"

	"medibook/services/doctor"
	"medibook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DoctorHandler serves the doctor directory endpoints.
type DoctorHandler struct {
	Service doctor.DoctorService
	Logger  *zap.Logger
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(svc doctor.DoctorService, logger *zap.Logger) *DoctorHandler {
	return &DoctorHandler{Service: svc, Logger: logger}
}

// ListHandler handles GET /api/doctors. Public.
func (h *DoctorHandler) ListHandler(c *gin.Context) {
	doctors, err := h.Service.List()
	if err != nil {
		h.Logger.Error("Failed to list doctors", zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doctors)
}

// AddHandler handles POST /api/doctors. Admin only.
func (h *DoctorHandler) AddHandler(c *gin.Context) {
	var req struct {
		Name       string `json:"name" binding:"required"`
		Specialty  string `json:"specialty" binding:"required"`
		Experience int    `json:"experience"`
		Image      string `json:"image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid doctor request", err.Error())
		return
	}

	doc, err := h.Service.Add(req.Name, req.Specialty, req.Experience, req.Image)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// RemoveHandler handles DELETE /api/doctors/:id. Admin only.
func (h *DoctorHandler) RemoveHandler(c *gin.Context) {
	if err := h.Service.Remove(c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Doctor removed"})
}
