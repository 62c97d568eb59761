package router

import (
	"net/http"
	"time"

	"clinic-booking-backend/internal/config"
	"clinic-booking-backend/internal/handler"
	"clinic-booking-backend/internal/lock"
	"clinic-booking-backend/internal/middleware"
	"clinic-booking-backend/internal/models"
	"clinic-booking-backend/internal/repository"
	"clinic-booking-backend/internal/service"
	"clinic-booking-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Locker lock.Locker
	Now    func() time.Time
}

// New wires repositories, services and handlers into a gin engine
func New(deps Deps) *gin.Engine {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Locker == nil {
		deps.Locker = lock.NewLocalSlotLocker()
	}
	utils.RegisterJSONFieldNames()

	// Repositories
	userRepo := repository.NewUserRepo(deps.DB)
	auditRepo := repository.NewAuditRepo(deps.DB)
	availRepo := repository.NewAvailabilityRepo(deps.DB)
	apptRepo := repository.NewAppointmentRepo(deps.DB)
	notifRepo := repository.NewNotificationRepo(deps.DB)

	// Services
	authService := service.NewAuthService(userRepo, auditRepo)
	accountService := service.NewAccountService(userRepo, auditRepo)
	availabilityService := service.NewAvailabilityService(availRepo, auditRepo)
	notificationService := service.NewNotificationService(notifRepo, apptRepo)
	appointmentService := service.NewAppointmentService(apptRepo, availRepo, userRepo, auditRepo, notificationService, deps.Locker, deps.Now)
	doctorService := service.NewDoctorService(apptRepo, availRepo, deps.Now)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, accountService)
	userHandler := handler.NewUserHandler(accountService)
	doctorHandler := handler.NewDoctorHandler(accountService, doctorService)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityService)
	appointmentHandler := handler.NewAppointmentHandler(appointmentService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	access := middleware.NewAccessControlMiddleware(availRepo, apptRepo)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(deps.Config))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := deps.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			utils.ErrorResponse(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "clinic-booking-backend",
		})
	})

	// Public routes
	public := r.Group("")
	{
		handle(public, http.MethodPost, "/register", authHandler.Register)
		handle(public, http.MethodPost, "/login", authHandler.Login)
		handle(public, http.MethodPost, "/token/refresh", authHandler.Refresh)
		handle(public, http.MethodGet, "/public/doctors", doctorHandler.SearchDoctors)
		handle(public, http.MethodGet, "/public/doctors/:id", doctorHandler.GetDoctor)
	}

	// Authenticated routes
	api := r.Group("")
	api.Use(middleware.AuthMiddleware())
	{
		handle(api, http.MethodGet, "/whoami", authHandler.WhoAmI)
		handle(api, http.MethodGet, "/user-info", authHandler.WhoAmI)

		handle(api, http.MethodGet, "/users", userHandler.ListUsers)
		handle(api, http.MethodGet, "/users/:id", userHandler.GetUser)
		handle(api, http.MethodDelete, "/users/:id", middleware.RequireAdmin(), userHandler.DeleteUser)
	}

	doctor := api.Group("/doctor")
	{
		handle(doctor, http.MethodGet, "/profile", userHandler.GetProfile)
		handle(doctor, http.MethodPut, "/profile", userHandler.UpdateProfile)
		handle(doctor, http.MethodPatch, "/profile", userHandler.UpdateProfile)
		handle(doctor, http.MethodGet, "/profile/detail", userHandler.GetDoctorProfile)
		handle(doctor, http.MethodPut, "/profile/detail", userHandler.UpdateDoctorProfile)
		handle(doctor, http.MethodPatch, "/profile/detail", userHandler.UpdateDoctorProfile)
		handle(doctor, http.MethodGet, "/profile/:id", doctorHandler.GetDoctor)
		handle(doctor, http.MethodPost, "/logout", authHandler.Logout)

		// Doctor-only routes
		handle(doctor, http.MethodPost, "/toggle-available", doctorHandler.ToggleAvailable)
		handle(doctor, http.MethodGet, "/dashboard/overview", middleware.RequireRoles(models.RoleDoctor), doctorHandler.Dashboard)
		handle(doctor, http.MethodGet, "/patient-summaries", middleware.RequireRoles(models.RoleDoctor), doctorHandler.PatientSummaries)
		handle(doctor, http.MethodGet, "/export-appointments", middleware.RequireRoles(models.RoleDoctor), doctorHandler.ExportAppointments)
		handle(doctor, http.MethodGet, "/notifications", middleware.RequireRoles(models.RoleDoctor), notificationHandler.List)
		handle(doctor, http.MethodPatch, "/notifications/:id/read", middleware.RequireRoles(models.RoleDoctor), notificationHandler.MarkRead)
	}

	availabilities := api.Group("/availabilities")
	{
		handle(availabilities, http.MethodGet, "", availabilityHandler.List)
		handle(availabilities, http.MethodPost, "", middleware.RequireRoles(models.RoleDoctor), availabilityHandler.Create)
		handle(availabilities, http.MethodGet, "/:id", availabilityHandler.Get)
		handle(availabilities, http.MethodPut, "/:id", access.CheckSlotOwner(), availabilityHandler.Replace)
		handle(availabilities, http.MethodPatch, "/:id", access.CheckSlotOwner(), availabilityHandler.Patch)
		handle(availabilities, http.MethodDelete, "/:id", access.CheckSlotOwner(), availabilityHandler.Delete)
	}

	appointments := api.Group("/appointments")
	{
		handle(appointments, http.MethodGet, "", appointmentHandler.List)
		handle(appointments, http.MethodPost, "", appointmentHandler.Book)
		handle(appointments, http.MethodGet, "/today", appointmentHandler.Today)
		handle(appointments, http.MethodGet, "/history", appointmentHandler.History)
		handle(appointments, http.MethodGet, "/export", middleware.RequireRoles(models.RoleDoctor), doctorHandler.ExportAppointments)
		handle(appointments, http.MethodGet, "/:id", appointmentHandler.Get)
		handle(appointments, http.MethodPut, "/:id", appointmentHandler.Replace)
		handle(appointments, http.MethodPatch, "/:id", appointmentHandler.Patch)
		handle(appointments, http.MethodDelete, "/:id", middleware.RequireRoles(models.RoleStaff), appointmentHandler.Delete)
		handle(appointments, http.MethodPatch, "/:id/triage", access.CheckAppointmentDoctor(), appointmentHandler.UpdateTriage)
		handle(appointments, http.MethodGet, "/:id/detail", access.CheckAppointmentDoctor(), appointmentHandler.Detail)
	}

	return r
}

// handle registers path both with and without a trailing slash so clients
// using either form reach the handler without a redirect.
func handle(g *gin.RouterGroup, method, path string, handlers ...gin.HandlerFunc) {
	g.Handle(method, path, handlers...)
	g.Handle(method, path+"/", handlers...)
}
