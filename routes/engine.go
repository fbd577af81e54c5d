package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	controllers "github.com/phillip/helping-hands-go/controllers"
	middleware "github.com/phillip/helping-hands-go/middleware"
)

// Options configures the middleware chain in front of the routes.
type Options struct {
	Logger         *slog.Logger
	Origins        []string
	AllowLocalhost bool
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	RequireToken   bool

	RateLimiter    *middleware.RateLimiter    // optional
	Observer       middleware.RequestObserver // optional
	MetricsHandler http.Handler               // served on /metrics when set
}

// NewEngine builds the gin engine with the middleware chain and all routes.
func NewEngine(d *controllers.Deps, opts Options) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logger(opts.Logger),
		middleware.Recovery(opts.Logger),
	)
	if opts.Observer != nil {
		r.Use(middleware.Metrics(opts.Observer))
	}
	r.Use(middleware.CORS(opts.Origins, opts.AllowLocalhost))
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.Middleware())
	}
	r.Use(
		middleware.BodyLimit(opts.MaxBodyBytes),
		middleware.Timeout(opts.RequestTimeout),
	)

	SetupRoutes(r, d, opts)
	return r
}
