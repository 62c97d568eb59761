package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"clinic-booking-backend/internal/config"
	"clinic-booking-backend/internal/database"
	"clinic-booking-backend/internal/lock"
	"clinic-booking-backend/internal/repository"
	"clinic-booking-backend/internal/router"
	"clinic-booking-backend/internal/service"
	"clinic-booking-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. Load configuration
	cfg := config.LoadConfig()
	log.Println("Configuration loaded successfully")

	// 2. Initialize JWT and password hashing with config
	utils.InitJWT(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	utils.SetBcryptCost(cfg.JWT.BcryptCost)

	// 3. Initialize database connection
	db := database.Connect(cfg)

	// 4. Pick the booking slot locker
	locker := lock.NewLocalSlotLocker()
	if cfg.Redis.Addr != "" {
		client, err := lock.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()
		locker = lock.NewRedisSlotLocker(client, cfg.Redis.LockTTL)
		log.Printf("Using redis slot locks at %s", cfg.Redis.Addr)
	} else {
		log.Println("REDIS_ADDR not set, using in-process slot locks")
	}

	// 5. Start the agenda worker in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notificationService := service.NewNotificationService(
		repository.NewNotificationRepo(db),
		repository.NewAppointmentRepo(db),
	)
	workerService := service.NewWorkerService(notificationService, cfg.Scheduler.AgendaCron)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := workerService.Start(ctx); err != nil {
			log.Printf("Agenda worker not started: %v", err)
		}
	}()

	// 6. Setup Gin router
	gin.SetMode(cfg.Server.GinMode)
	r := router.New(router.Deps{
		Config: cfg,
		DB:     db,
		Locker: locker,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	// 7. Setup graceful shutdown
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Stop the agenda worker
	cancel()
	<-workerDone
	log.Println("Server exited")
}
