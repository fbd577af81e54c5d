package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phillip/helping-hands-go/models"
	"github.com/phillip/helping-hands-go/services"
	"github.com/phillip/helping-hands-go/utils"
)

type eventRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	EventType   string         `json:"eventType"`
	Thumbnail   string         `json:"thumbnail"`
	Location    string         `json:"location"`
	EventDate   string         `json:"eventDate"` // string for binding, convert later
	Creator     models.UserRef `json:"creator"`
}

func (r eventRequest) toInput() (services.EventInput, error) {
	date, err := parseEventDate(r.EventDate)
	if err != nil {
		return services.EventInput{}, err
	}
	return services.EventInput{
		Title:       r.Title,
		Description: r.Description,
		EventType:   r.EventType,
		Thumbnail:   r.Thumbnail,
		Location:    r.Location,
		EventDate:   date,
		Creator:     r.Creator,
	}, nil
}

// ---------------- LIST ----------------
func ListEvents(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := queryInt64(c, "page")
		if err != nil {
			respondError(c, d, err)
			return
		}
		size, err := queryInt64(c, "limit", "pageSize")
		if err != nil {
			respondError(c, d, err)
			return
		}

		in := services.ListEventsInput{
			EventType: c.Query("type"),
			Search:    c.Query("search"),
			PageSize:  size,
		}
		if page != nil {
			in.Page = *page
		}

		result, err := d.Events.ListEvents(c.Request.Context(), in)
		if err != nil {
			respondError(c, d, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// ---------------- GET ----------------
func GetEvent(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		event, err := d.Events.GetEvent(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, d, err)
			return
		}

		etag := utils.GenerateETag(event.ID, event.UpdatedAt)
		c.Header("ETag", etag)
		c.Header("Last-Modified", event.UpdatedAt.UTC().Format(http.TimeFormat))
		if utils.ETagMatches(c.GetHeader("If-None-Match"), etag) {
			c.Status(http.StatusNotModified)
			return
		}

		c.JSON(http.StatusOK, event)
	}
}

// ---------------- CREATE ----------------
func CreateEvent(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req eventRequest
		if !bindJSON(c, d, &req) {
			return
		}
		in, err := req.toInput()
		if err != nil {
			respondError(c, d, err)
			return
		}

		event, err := d.Events.CreateEvent(c.Request.Context(), in)
		if err != nil {
			respondError(c, d, err)
			return
		}
		c.Header("ETag", utils.GenerateETag(event.ID, event.UpdatedAt))
		c.JSON(http.StatusCreated, event)
	}
}

// ---------------- UPDATE ----------------
func UpdateEvent(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req eventRequest
		if !bindJSON(c, d, &req) {
			return
		}
		in, err := req.toInput()
		if err != nil {
			respondError(c, d, err)
			return
		}

		event, err := d.Events.UpdateEvent(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			respondError(c, d, err)
			return
		}
		c.Header("ETag", utils.GenerateETag(event.ID, event.UpdatedAt))
		c.JSON(http.StatusOK, event)
	}
}

// ---------------- JOIN ----------------
func JoinEvent(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			User models.UserRef `json:"user"`
		}
		if !bindJSON(c, d, &req) {
			return
		}

		event, err := d.Events.JoinEvent(c.Request.Context(), c.Param("id"), req.User)
		if err != nil {
			respondError(c, d, err)
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

// ---------------- BY CREATOR ----------------
func ListUserEvents(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := d.Events.ListEventsByCreator(c.Request.Context(), c.Param("uid"))
		if err != nil {
			respondError(c, d, err)
			return
		}
		writeEventList(c, events)
	}
}

// writeEventList answers with the events, using the most recently updated
// one as the validator for the whole list.
func writeEventList(c *gin.Context, events []models.Event) {
	if len(events) == 0 {
		c.JSON(http.StatusOK, []models.Event{})
		return
	}

	// --- Pick the most recently updated event ---
	latest := events[0]
	for _, ev := range events {
		if ev.UpdatedAt.After(latest.UpdatedAt) {
			latest = ev
		}
	}

	etag := utils.GenerateETag(latest.ID, latest.UpdatedAt)
	c.Header("ETag", etag)
	c.Header("Last-Modified", latest.UpdatedAt.UTC().Format(http.TimeFormat))
	if utils.ETagMatches(c.GetHeader("If-None-Match"), etag) {
		c.Status(http.StatusNotModified)
		return
	}

	c.JSON(http.StatusOK, events)
}
