package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/curlben/msuas-server/internal/call"
	"github.com/curlben/msuas-server/internal/chat"
	"github.com/curlben/msuas-server/internal/common"
	"github.com/curlben/msuas-server/internal/config"
	"github.com/curlben/msuas-server/internal/httpapi/handlers"
	"github.com/curlben/msuas-server/internal/httpapi/middleware"
	"github.com/curlben/msuas-server/internal/models"
	"github.com/curlben/msuas-server/internal/ws"
)

func NewRouter(db *gorm.DB, cfg config.Config, chatSvc *chat.Service, callSvc *call.Service, wsSrv *ws.Server, rabbit handlers.DatePublisher, presence handlers.PresenceReader) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	h := handlers.NewHandler(db, cfg, chatSvc, callSvc, rabbit, presence)

	r.GET("/ping", h.Ping)
	r.GET("/ws", wsSrv.Handle)

	api := r.Group("/api/v1")

	// auth
	api.POST("/auth/student/login", h.StudentLogin)
	api.POST("/auth/supervisor/login", h.SupervisorLogin)

	authed := api.Group("/")
	authed.Use(middleware.AuthRequired(cfg.JWTSecret))

	// user management
	admin := authed.Group("/user")
	admin.Use(middleware.RequireRole(models.RoleSuperAdmin))
	admin.POST("/student", h.CreateStudent)
	admin.POST("/supervisor", h.CreateSupervisor)
	admin.POST("/coordinator", h.CreateCoordinator)

	// profiles
	authed.GET("/student/profile", middleware.RequireRole(models.RoleStudent), h.GetStudentProfile)
	authed.PUT("/student/profile", middleware.RequireRole(models.RoleStudent), h.UpdateStudentProfile)
	authed.GET("/supervisor/profile", middleware.RequireRole(models.RoleSupervisor), h.GetSupervisorProfile)

	// presence
	authed.GET("/users/:id/presence", h.GetUserPresence)

	// internships
	internships := authed.Group("/internship")
	internships.POST("", middleware.RequireRole(models.RoleStudent), h.CreateInternship)
	internships.GET("", middleware.RequireRole(models.RoleStudent), h.GetInternship)
	internships.PUT("", middleware.RequireRole(models.RoleStudent), h.UpdateInternship)
	internships.GET("/companies", middleware.RequireRole(models.RoleSupervisor, models.RoleSuperAdmin), h.GetCompaniesAndStudents)

	// weekly reports
	reports := authed.Group("/report")
	reports.Use(middleware.RequireRole(models.RoleStudent))
	reports.GET("/weeks", h.GetWeeklyReports)
	reports.POST("/week/:weekNumber", h.CreateOrUpdateReport)
	reports.PUT("/holidays", h.SetHolidays)
	reports.GET("/week/:weekNumber", h.GetSingleReport)

	// chats
	chats := authed.Group("/chats")
	chats.GET("/student", middleware.RequireRole(models.RoleStudent), h.GetStudentChat)
	chats.GET("/supervisor", middleware.RequireRole(models.RoleSupervisor), h.GetSupervisorChats)
	chats.GET("/:id", h.GetChatByID)
	chats.POST("/:id/messages", h.SendChatMessage)

	// supervisions
	supervisions := authed.Group("/supervisions")
	supervisions.PUT("/date", middleware.RequireRole(models.RoleSupervisor), h.SetSupervisionDate)
	supervisions.GET("/supervisor", middleware.RequireRole(models.RoleSupervisor), h.GetSupervisorSupervisions)
	supervisions.GET("/student", middleware.RequireRole(models.RoleStudent), h.GetStudentSupervisions)

	// coordinator-wide supervision date windows
	dates := authed.Group("/supervision-dates")
	dates.GET("", h.GetSupervisionDates)
	dates.PUT("", middleware.RequireRole(models.RoleSuperAdmin), h.SetSupervisionDates)
	dates.PUT("/:dateId", middleware.RequireRole(models.RoleSuperAdmin), h.UpdateDateRange)
	dates.DELETE("/:dateId", middleware.RequireRole(models.RoleSuperAdmin), h.DeleteSupervisionDate)

	// calls
	calls := authed.Group("/calls")
	calls.POST("/initiate", h.InitiateCall)
	calls.POST("/:callId/join", h.JoinCall)
	calls.POST("/:callId/end", h.EndCall)
	calls.POST("/:callId/reject", h.RejectCall)

	return r
}
