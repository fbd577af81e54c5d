package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phillip/helping-hands-go/models"
)

// Health always answers 200 so load balancers keep routing while the
// database reconnects.
func Health(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		database := "disconnected"
		if d.DB != nil && d.DB.IsReady() {
			database = "connected"
		}
		c.JSON(http.StatusOK, gin.H{
			"message":     "Server is running!",
			"database":    database,
			"timestamp":   d.now().UTC().Format(time.RFC3339),
			"environment": d.Env,
		})
	}
}

// DebugStatus reports the connection state and the stored event count.
func DebugStatus(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d.DB == nil {
			respondError(c, d, models.NewUnavailableError(nil))
			return
		}

		state := d.DB.State()
		database := gin.H{
			"status": state.String(),
			"name":   d.DB.DatabaseName(),
		}
		timestamp := d.now().UTC().Format(time.RFC3339)

		if !d.DB.IsReady() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"database":  database,
				"code":      models.ErrCodeDBUnavailable,
				"timestamp": timestamp,
			})
			return
		}

		total, err := d.Events.CountEvents(c.Request.Context())
		if err != nil {
			respondError(c, d, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"database":    database,
			"events":      gin.H{"total": total},
			"timestamp":   timestamp,
			"environment": d.Env,
		})
	}
}

// NotFound answers unmatched routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.RequestURI(),
			"method": c.Request.Method,
		})
	}
}
