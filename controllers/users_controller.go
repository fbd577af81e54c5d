package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phillip/helping-hands-go/services"
)

// ---------------- SYNC ----------------
func SyncUser(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UID         string `json:"uid"`
			Email       string `json:"email"`
			DisplayName string `json:"displayName"`
			PhotoURL    string `json:"photoURL"`
		}
		if !bindJSON(c, d, &req) {
			return
		}

		user, err := d.Users.SyncUser(c.Request.Context(), services.SyncUserInput{
			UID:         req.UID,
			Email:       req.Email,
			DisplayName: req.DisplayName,
			PhotoURL:    req.PhotoURL,
		})
		if err != nil {
			respondError(c, d, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// ---------------- GET ----------------
func GetUser(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := d.Users.GetUser(c.Request.Context(), c.Param("uid"))
		if err != nil {
			respondError(c, d, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// ---------------- JOINED EVENTS ----------------
func ListJoinedEvents(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := d.Events.ListEventsJoinedByUser(c.Request.Context(), c.Param("uid"))
		if err != nil {
			respondError(c, d, err)
			return
		}
		writeEventList(c, events)
	}
}
