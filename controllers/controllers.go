// Package controllers holds the gin handler factories. Every handler maps
// service errors to HTTP responses through respondError.
package controllers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phillip/helping-hands-go/models"
	"github.com/phillip/helping-hands-go/services"
	"github.com/phillip/helping-hands-go/store"
)

// EventService is implemented by services.EventService.
type EventService interface {
	ListEvents(ctx context.Context, in services.ListEventsInput) (*models.EventPage, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	CreateEvent(ctx context.Context, in services.EventInput) (*models.Event, error)
	UpdateEvent(ctx context.Context, id string, in services.EventInput) (*models.Event, error)
	JoinEvent(ctx context.Context, id string, user models.UserRef) (*models.Event, error)
	ListEventsByCreator(ctx context.Context, uid string) ([]models.Event, error)
	ListEventsJoinedByUser(ctx context.Context, uid string) ([]models.Event, error)
	CountEvents(ctx context.Context) (int64, error)
}

// UserService is implemented by services.UserService.
type UserService interface {
	SyncUser(ctx context.Context, in services.SyncUserInput) (*models.User, error)
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

// Readiness reports the database connection state. store.Mongo implements it.
type Readiness interface {
	IsReady() bool
	State() store.ConnState
	DatabaseName() string
}

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
}

// Deps is what the handler factories close over.
type Deps struct {
	Events   EventService
	Users    UserService
	DB       Readiness
	Uploader Uploader // nil when image uploads are not configured

	Env        string
	Production bool
	Now        func() time.Time
	Log        *slog.Logger
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}

// statusFor picks the HTTP status for an error kind. PastEvent stays a 400
// because existing clients branch on it.
func statusFor(e *models.Error) int {
	switch e.Kind {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindConflict:
		if e.Code == models.ErrCodePastEvent {
			return http.StatusBadRequest
		}
		return http.StatusConflict
	case models.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, d *Deps, err error) {
	var appErr *models.Error
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError("Internal server error", err)
	}
	status := statusFor(appErr)

	body := gin.H{"error": appErr.Message, "code": appErr.Code}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		switch {
		case d.Production && status == http.StatusServiceUnavailable:
			body["error"] = "Service temporarily unavailable"
		case d.Production:
			body["error"] = "Internal server error"
		case appErr.Err != nil:
			body["details"] = appErr.Err.Error()
		}
	}
	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes the request body and answers 400 or 413 itself on
// failure.
func bindJSON(c *gin.Context, d *Deps, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "Request body too large",
				"code":  models.ErrCodeValidation,
			})
			return false
		}
		respondError(c, d, models.NewValidationError("invalid request body: "+err.Error()))
		return false
	}
	return true
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseEventDate accepts RFC3339 plus the date and datetime-local forms
// browsers send. Values without a zone are read as UTC. An empty string
// yields the zero time so the service can report the field as missing.
func parseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, models.NewValidationError("invalid eventDate format, use RFC3339 or YYYY-MM-DD", "eventDate")
}

// queryInt64 reads an optional integer query parameter.
func queryInt64(c *gin.Context, names ...string) (*int64, error) {
	for _, name := range names {
		raw, ok := c.GetQuery(name)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, models.NewValidationError(name+" must be an integer", name)
		}
		return &n, nil
	}
	return nil, nil
}
