package routes

import (
	"net/http"

	"nebula-backend/config"
	"nebula-backend/controllers"
	"nebula-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Dependencies are the long-lived services handlers are built around.
type Dependencies struct {
	Scheduler  controllers.ReminderScheduler
	Sessions   controllers.SessionService
	Deliveries controllers.DeliveryHistory
}

func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API is running")
	})

	treatment := &controllers.TreatmentController{Scheduler: deps.Scheduler}
	plans := &controllers.TreatmentPlanController{Scheduler: deps.Scheduler}
	sessions := &controllers.SessionController{Sessions: deps.Sessions, AllowedOrigins: cfg.AllowedOrigins}
	dashboard := &controllers.DashboardController{Scheduler: deps.Scheduler, Deliveries: deps.Deliveries}

	api := r.Group("/api")

	user := api.Group("/user")
	{
		user.POST("/register", controllers.Register)
		user.POST("/login", controllers.Login)
		user.GET("/me", utils.AuthMiddleware(), controllers.Me)
	}

	// Public content
	api.GET("/events", controllers.GetEvents)
	api.GET("/events/:id", controllers.GetEvent)
	api.GET("/resources", controllers.GetResources)
	api.GET("/resources/:id", controllers.GetResource)
	api.GET("/research-updates", controllers.GetResearchUpdates)
	api.GET("/research-updates/:id", controllers.GetResearchUpdate)

	authed := api.Group("")
	authed.Use(utils.AuthMiddleware())
	{
		t := authed.Group("/treatment")
		{
			t.POST("/schedule-reminder", treatment.ScheduleTreatmentReminder)
			t.GET("/reminders/:userEmail", treatment.GetUserTreatmentReminders)
			t.DELETE("/reminder/:reminderId", treatment.CancelTreatmentReminder)

			t.POST("/plans", plans.CreatePlan)
			t.GET("/plans", plans.GetPlans)
			t.PUT("/plans/:id", plans.UpdatePlan)
			t.DELETE("/plans/:id", plans.DeletePlan)

			t.POST("/session/start", sessions.StartSession)
			t.POST("/session/stop", sessions.StopSession)
			t.GET("/session", sessions.GetSession)
			t.GET("/session/ws", sessions.StreamSession)

			t.GET("/dashboard", dashboard.GetTreatmentDashboard)
		}

		events := authed.Group("/events")
		{
			events.POST("", controllers.CreateEvent)
			events.PUT("/:id", controllers.UpdateEvent)
			events.DELETE("/:id", controllers.DeleteEvent)
			events.POST("/:id/register", controllers.RegisterForEvent)
			events.DELETE("/:id/unregister", controllers.UnregisterFromEvent)
		}
		authed.GET("/my-events", controllers.GetMyEvents)

		resources := authed.Group("/resources")
		{
			resources.POST("", controllers.CreateResource)
			resources.PUT("/:id", controllers.UpdateResource)
			resources.DELETE("/:id", controllers.DeleteResource)
		}

		research := authed.Group("/research-updates")
		{
			research.POST("", controllers.CreateResearchUpdate)
			research.PUT("/:id", controllers.UpdateResearchUpdate)
			research.DELETE("/:id", controllers.DeleteResearchUpdate)
		}
	}

	return r
}
