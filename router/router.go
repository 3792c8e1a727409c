package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hospital-app/controllers"
	"github.com/yeremiapane/hospital-app/docstore"
	"github.com/yeremiapane/hospital-app/events"
	"github.com/yeremiapane/hospital-app/middlewares"
	"github.com/yeremiapane/hospital-app/models"
	"github.com/yeremiapane/hospital-app/monitoring"
	"github.com/yeremiapane/hospital-app/services"
	"github.com/yeremiapane/hospital-app/utils"
	"gorm.io/gorm"
)

const defaultRateLimit = 50

// Deps are the collaborators the route table is built from. Optional
// fields fall back to in-process implementations.
type Deps struct {
	DB                 *gorm.DB
	Store              docstore.Store
	Hub                *events.Hub
	Metrics            *monitoring.Collector
	Blacklist          utils.TokenBlacklist
	CORSOrigins        []string
	RateLimitPerSecond float64
}

var (
	cleaningRoles    = models.CleaningRoles
	roomRoles        = models.RoomRoles
	admissionRoles   = models.AdmissionRoles
	userAdminRoles   = []models.Role{models.RoleAdmin, models.RoleSuperAdmin}
	patientRoles     = []models.Role{models.RoleReceptionist, models.RoleDoctor, models.RoleStaff, models.RoleAdmin, models.RoleSuperAdmin}
	appointmentRoles = []models.Role{models.RoleReceptionist, models.RoleDoctor, models.RoleAdmin, models.RoleSuperAdmin}
	recordRoles      = []models.Role{models.RoleDoctor, models.RoleAdmin, models.RoleSuperAdmin}
	billingRoles     = []models.Role{models.RoleReceptionist, models.RolePharmacy, models.RoleAdmin, models.RoleSuperAdmin}
)

func SetupRouter(deps Deps) *gin.Engine {
	if deps.Hub == nil {
		deps.Hub = events.NewHub()
	}
	if deps.Metrics == nil {
		deps.Metrics = monitoring.NewCollector()
	}
	if deps.Blacklist == nil {
		deps.Blacklist = utils.NewMemoryBlacklist()
	}
	if deps.Store == nil {
		deps.Store = docstore.NewMemoryStore()
	}
	if deps.RateLimitPerSecond <= 0 {
		deps.RateLimitPerSecond = defaultRateLimit
	}
	deps.Metrics.TrackClients(deps.Hub.ClientCount)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.MetricsMiddleware(deps.Metrics))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(deps.CORSOrigins))

	// Services
	cleaningSvc := services.NewCleaningService(deps.DB, deps.Hub, deps.Metrics)
	roomSvc := services.NewRoomService(deps.DB, deps.Hub)
	admissionSvc := services.NewAdmissionService(deps.DB, deps.Hub)
	userSvc := services.NewUserService(deps.DB)

	// Controllers
	authCtrl := controllers.NewAuthController(userSvc, deps.Blacklist)
	cleaningCtrl := controllers.NewCleaningController(cleaningSvc)
	roomCtrl := controllers.NewRoomController(roomSvc, admissionSvc)
	patientCtrl := controllers.NewPatientController(services.NewPatientService(deps.Store))
	appointmentCtrl := controllers.NewAppointmentController(services.NewAppointmentService(deps.Store))
	recordCtrl := controllers.NewMedicalRecordController(services.NewMedicalRecordService(deps.Store))
	billingCtrl := controllers.NewBillingController(services.NewBillingService(deps.Store))
	eventsCtrl := controllers.NewEventsController(deps.Hub, deps.CORSOrigins)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	r.GET("/ws", middlewares.WebSocketAuthMiddleware(deps.Blacklist),
		middlewares.RequireRoles(events.SubscriberRoles()...), eventsCtrl.Stream)

	api := r.Group("/api")
	api.Use(middlewares.NewRateLimiter(deps.RateLimitPerSecond, int(deps.RateLimitPerSecond)*2).RateLimit())

	api.POST("/auth/login", middlewares.NewStrictRateLimiter().RateLimit(), authCtrl.Login)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := api.Group("")
	auth.Use(middlewares.AuthMiddleware(deps.Blacklist))

	auth.POST("/auth/logout", authCtrl.Logout)
	auth.GET("/auth/profile", authCtrl.GetProfile)
	auth.POST("/auth/users", middlewares.RequireRoles(userAdminRoles...), authCtrl.CreateUser)
	auth.GET("/meta/badges", controllers.Badges)

	// CLEANING (admin, super-admin, hr_manager)
	cleaning := auth.Group("/admin/cleaning", middlewares.RequireRoles(cleaningRoles...))
	{
		cleaning.GET("", cleaningCtrl.Get)
		cleaning.POST("", cleaningCtrl.Post)
		cleaning.PUT("", cleaningCtrl.Put)
		cleaning.DELETE("", cleaningCtrl.Delete)
		cleaning.PATCH("/staff/:id", cleaningCtrl.UpdateStaff)
		cleaning.GET("/report", cleaningCtrl.Report)
	}

	// ROOMS
	rooms := auth.Group("/admin/rooms", middlewares.RequireRoles(roomRoles...))
	{
		rooms.GET("", roomCtrl.ListRooms)
		rooms.POST("", roomCtrl.CreateRoom)
		rooms.GET("/stats", roomCtrl.RoomStats)
		rooms.GET("/:id", roomCtrl.GetRoom)
		rooms.PATCH("/:id", roomCtrl.UpdateRoomStatus)
		rooms.DELETE("/:id", roomCtrl.DeleteRoom)
	}

	// ADMISSIONS
	admissions := auth.Group("/admin/admissions", middlewares.RequireRoles(admissionRoles...))
	{
		admissions.GET("", roomCtrl.ListAdmissions)
		admissions.POST("", roomCtrl.Admit)
		admissions.POST("/:id/discharge", roomCtrl.Discharge)
	}

	// PATIENTS
	patients := auth.Group("/patients", middlewares.RequireRoles(patientRoles...))
	{
		patients.GET("", patientCtrl.ListPatients)
		patients.POST("", patientCtrl.CreatePatient)
		patients.GET("/:id", patientCtrl.GetPatient)
		patients.PUT("/:id", patientCtrl.UpdatePatient)
		patients.DELETE("/:id", patientCtrl.DeletePatient)
	}

	// APPOINTMENTS
	appointments := auth.Group("/appointments", middlewares.RequireRoles(appointmentRoles...))
	{
		appointments.GET("", appointmentCtrl.ListAppointments)
		appointments.POST("", appointmentCtrl.CreateAppointment)
		appointments.GET("/:id", appointmentCtrl.GetAppointment)
		appointments.PATCH("/:id/status", appointmentCtrl.UpdateAppointmentStatus)
	}

	// MEDICAL RECORDS
	records := auth.Group("/medical-records", middlewares.RequireRoles(recordRoles...))
	{
		records.GET("", recordCtrl.ListRecords)
		records.POST("", recordCtrl.CreateRecord)
		records.GET("/:id", recordCtrl.GetRecord)
		records.PUT("/:id", recordCtrl.UpdateRecord)
	}

	// BILLING
	billing := auth.Group("/billing", middlewares.RequireRoles(billingRoles...))
	{
		billing.GET("", billingCtrl.ListBills)
		billing.POST("", billingCtrl.CreateBill)
		billing.GET("/revenue", billingCtrl.DailyRevenue)
		billing.GET("/:id", billingCtrl.GetBill)
		billing.POST("/:id/pay", billingCtrl.PayBill)
	}

	return r
}
