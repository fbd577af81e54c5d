package routes

import (
	"github.com/gin-gonic/gin"

	controllers "github.com/phillip/helping-hands-go/controllers"
	middleware "github.com/phillip/helping-hands-go/middleware"
)

func SetupRoutes(r *gin.Engine, d *controllers.Deps, opts Options) {
	api := r.Group("/api")

	// public
	api.GET("/health", controllers.Health(d))

	// writes carry the caller's token when there is one
	auth := middleware.Auth(opts.RequireToken)

	sync := api.Group("/auth")
	sync.Use(auth)
	{
		sync.POST("/sync-user", controllers.SyncUser(d))
	}

	// Events
	events := api.Group("/events")
	{
		events.GET("/debug/status", controllers.DebugStatus(d))
		events.GET("/user/:uid", controllers.ListUserEvents(d))
		events.GET("", controllers.ListEvents(d))
		events.GET("/:id", controllers.GetEvent(d))
		events.POST("", auth, controllers.CreateEvent(d))
		events.PUT("/:id", auth, controllers.UpdateEvent(d))
		events.POST("/:id/join", auth, controllers.JoinEvent(d))
	}

	users := api.Group("/users")
	{
		users.GET("/:uid", controllers.GetUser(d))
		users.GET("/:uid/joined-events", controllers.ListJoinedEvents(d))
	}

	uploads := api.Group("/uploads")
	uploads.Use(auth)
	{
		uploads.POST("/thumbnail", controllers.UploadThumbnail(d))
	}

	if opts.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	r.NoRoute(controllers.NotFound())
}
