// File: medibook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medibook/config"
	"medibook/cron"
	"medibook/database"
	appointmentRepoPkg "medibook/database/repository/appointment"
	chatRepoPkg "medibook/database/repository/chat"
	doctorRepoPkg "medibook/database/repository/doctor"
	userRepoPkg "medibook/database/repository/user"
	"medibook/handlers"
	"medibook/middleware"
	"medibook/routes"
	"medibook/services/booking"
	"medibook/services/chat"
	"medibook/services/doctor"
	"medibook/services/notification"
	"medibook/services/tasks"
	"medibook/services/user"
	"medibook/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitAuthCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	userRepo := userRepoPkg.NewMongoUserRepo()
	doctorRepo := doctorRepoPkg.NewMongoDoctorRepo()
	appointmentRepo := appointmentRepoPkg.NewMongoAppointmentRepo()
	chatRepo := chatRepoPkg.NewMongoChatRepo()

	// Real-time hub and reminder queue.
	hub := notification.NewHub()
	reminderScheduler := tasks.NewReminderScheduler()
	defer reminderScheduler.Close()
	cron.InitReminderWorker(hub)

	// services.
	userService := &user.DefaultUserService{Repo: userRepo}
	doctorService := &doctor.DefaultDoctorService{Repo: doctorRepo}
	bookingService := &booking.DefaultBookingService{
		Repo:       appointmentRepo,
		DoctorRepo: doctorRepo,
		UserRepo:   userRepo,
		Publisher:  hub,
		Reminders:  reminderScheduler,
	}
	chatService := &chat.DefaultChatService{
		Repo:      chatRepo,
		UserRepo:  userRepo,
		Publisher: hub,
	}

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		UserRepo:    userRepo,
		Auth:        handlers.NewAuthHandler(userService, logger),
		Appointment: handlers.NewAppointmentHandler(bookingService, logger),
		Doctor:      handlers.NewDoctorHandler(doctorService, logger),
		Admin:       handlers.NewAdminHandler(userService, bookingService, logger),
		Chat:        handlers.NewChatHandler(chatService, logger),
		Realtime:    handlers.NewRealtimeHandler(hub, logger),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
