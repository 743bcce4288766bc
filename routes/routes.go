package routes

import (
	"filo-backend/config"
	"filo-backend/controllers"
	"filo-backend/models"
	"filo-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"https://filo.app",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Profile routes
		profile := api.Group("/profile")
		{
			profile.GET("", controllers.GetProfile)
			profile.POST("/setup-barber", controllers.SetupBarber)
			profile.POST("/setup-client", controllers.SetupClient)
			profile.PUT("/working-hours", utils.RequireRole(models.RoleBarber), controllers.UpdateWorkingHours)
		}

		// Barbershop routes
		shops := api.Group("/shops")
		{
			shops.GET("", controllers.GetShops)
			shops.GET("/:id", controllers.GetShop)
			shops.GET("/:id/queue", controllers.GetShopQueue)
			shops.POST("/:id/favorite", utils.RequireRole(models.RoleClient), controllers.ToggleFavorite)
			shops.POST("/:id/join-queue", utils.RequireRole(models.RoleClient), controllers.JoinQueue)
		}

		// Queue routes
		queues := api.Group("/queues")
		{
			queues.POST("/open", utils.RequireRole(models.RoleBarber), controllers.OpenQueue)
			queues.GET("/my-queue", utils.RequireRole(models.RoleBarber), controllers.MyQueue)
			queues.POST("/:id/close", utils.RequireRole(models.RoleBarber), controllers.CloseQueue)
			queues.POST("/:id/add-anonymous", utils.RequireRole(models.RoleBarber), controllers.AddAnonymous)
			queues.POST("/:id/call-next", utils.RequireRole(models.RoleBarber), controllers.CallNext)
			queues.POST("/:id/complete-current", utils.RequireRole(models.RoleBarber), controllers.CompleteCurrent)
			queues.POST("/:id/leave", utils.RequireRole(models.RoleClient), controllers.LeaveQueue)

			requests := queues.Group("/requests", utils.RequireRole(models.RoleBarber))
			{
				requests.POST("/:id/approve", controllers.ApproveRequest)
				requests.POST("/:id/reject", controllers.RejectRequest)
			}
		}

		// Dashboard routes
		api.GET("/dashboard", utils.RequireRole(models.RoleBarber), controllers.GetDashboardOverview)
	}

	return r
}
