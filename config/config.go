package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is read once at startup and treated as immutable.
type Config struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"5000"`

	// Database
	MongoURI         string        `env:"MONGODB_URI,required"`
	DBName           string        `env:"DB_NAME" envDefault:"helping-hands"`
	DBConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"30s"`
	DBConnectTries   uint          `env:"DB_CONNECT_ATTEMPTS" envDefault:"5"`
	DBMaxPoolSize    uint64        `env:"DB_MAX_POOL_SIZE" envDefault:"10"`

	// HTTP
	ClientURL           string        `env:"CLIENT_URL"`
	AllowedOrigins      []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:5174,http://localhost:5175,http://localhost:3000,https://helping-hands-client.vercel.app"`
	AllowLocalhost      bool          `env:"CORS_ALLOW_LOCALHOST" envDefault:"true"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes        int64         `env:"MAX_BODY_BYTES" envDefault:"10485760"`
	RateLimitRPS        float64       `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst      int           `env:"RATE_LIMIT_BURST" envDefault:"20"`
	AuthRequireToken    bool          `env:"AUTH_REQUIRE_TOKEN" envDefault:"false"`
	DefaultPageSize     int64         `env:"DEFAULT_PAGE_SIZE" envDefault:"12"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"15s"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Cloudinary
	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `env:"CLOUDINARY_FOLDER" envDefault:"events"`

	// ZeptoMail
	ZeptoAPIURL string `env:"ZEPTO_API_URL"`
	ZeptoAPIKey string `env:"ZEPTO_API_KEY"`
	EmailFrom   string `env:"EMAIL_FROM"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if cfg.DefaultPageSize <= 0 {
		return nil, fmt.Errorf("DEFAULT_PAGE_SIZE must be positive, got %d", cfg.DefaultPageSize)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Origins returns the CORS allow-list, including CLIENT_URL when set.
func (c *Config) Origins() []string {
	origins := make([]string, 0, len(c.AllowedOrigins)+1)
	seen := map[string]bool{}
	for _, o := range append(append([]string{}, c.AllowedOrigins...), c.ClientURL) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		origins = append(origins, o)
	}
	return origins
}

func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func (c *Config) MailEnabled() bool {
	return c.ZeptoAPIURL != "" && c.ZeptoAPIKey != "" && c.EmailFrom != ""
}
