package routes

import (
	"net/http"
	"time"

	userRepo "medibook/database/repository/user"
	"medibook/handlers"
	"medibook/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the handlers and shared dependencies the router needs.
type HandlerBundle struct {
	UserRepo userRepo.UserRepository

	Auth        *handlers.AuthHandler
	Appointment *handlers.AppointmentHandler
	Doctor      *handlers.DoctorHandler
	Admin       *handlers.AdminHandler
	Chat        *handlers.ChatHandler
	Realtime    *handlers.RealtimeHandler
}

// RegisterAuthRoutes registers registration, login and session endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", hb.Auth.RegisterHandler)
		api.POST("/login", hb.Auth.LoginHandler)

		// Protected routes (Require Authentication)
		api.Use(middleware.AuthRequired(hb.UserRepo))
		api.GET("/me", hb.Auth.MeHandler)
		api.POST("/logout", hb.Auth.LogoutHandler)
	}
}

// RegisterDoctorRoutes registers the doctor directory endpoints.
func RegisterDoctorRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/doctors")
	{
		api.GET("", hb.Doctor.ListHandler)

		protected := api.Group("")
		protected.Use(middleware.AuthRequired(hb.UserRepo), middleware.AdminRequired())
		protected.POST("", hb.Doctor.AddHandler)
		protected.DELETE("/:id", hb.Doctor.RemoveHandler)
	}
}

// RegisterAppointmentRoutes registers the patient appointment endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.Use(middleware.AuthRequired(hb.UserRepo))
		api.GET("", hb.Appointment.ListHandler)
		api.POST("", hb.Appointment.CreateHandler)
		api.PUT("/:id", hb.Appointment.UpdateHandler)
		api.DELETE("/:id", hb.Appointment.DeleteHandler)
	}
}

// RegisterAdminRoutes registers the admin dashboard endpoints.
func RegisterAdminRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/admin")
	{
		api.Use(middleware.AuthRequired(hb.UserRepo), middleware.AdminRequired())
		api.GET("/users", hb.Admin.GetAllUsersHandler)
		api.GET("/appointments", hb.Admin.GetAllAppointmentsHandler)
		api.PUT("/appointments/:id/status", hb.Admin.UpdateStatusHandler)
		api.GET("/stats", hb.Admin.StatsHandler)
	}
}

// RegisterChatRoutes registers the support messaging endpoints.
func RegisterChatRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/chat")
	{
		api.Use(middleware.AuthRequired(hb.UserRepo))
		api.GET("/messages/:userId", hb.Chat.MessagesHandler)
		api.GET("/conversations", hb.Chat.ConversationsHandler)
		api.POST("/send", hb.Chat.SendHandler)
		api.PUT("/mark-read/:userId", hb.Chat.MarkReadHandler)
	}
}

// RegisterRealtimeRoute registers the websocket endpoint. Authentication
// happens in-band after the upgrade, so the route itself is open.
func RegisterRealtimeRoute(r *gin.Engine, hb *HandlerBundle) {
	r.GET("/ws", hb.Realtime.HandleConnect)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAuthRoutes(r, hb)
	RegisterDoctorRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterChatRoutes(r, hb)
	RegisterRealtimeRoute(r, hb)
	RegisterHealthRoute(r)
}
