package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, billing credentials)
// - default: Values common across all environments (timeouts, window sizes, standard settings)
// -----------------------------------------------------------------------------

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	CORS      CORSConfig
	Log       LogConfig
	JWT       JWTConfig
	Billing   BillingConfig
	Checkout  CheckoutConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length,Retry-After"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" required:"true"`
}

type BillingConfig struct {
	APIKey          string        `envconfig:"BILLING_API_KEY" required:"true"`
	BaseURL         string        `envconfig:"BILLING_BASE_URL" required:"true"`
	WebhookSecret   string        `envconfig:"BILLING_WEBHOOK_SECRET" required:"true"`
	RequestTimeout  time.Duration `envconfig:"BILLING_REQUEST_TIMEOUT" default:"10s"`
	MaxRetries      int           `envconfig:"BILLING_MAX_RETRIES" default:"3"`
	BreakerFailures int           `envconfig:"BILLING_BREAKER_FAILURES" default:"5"`
	BreakerCooldown time.Duration `envconfig:"BILLING_BREAKER_COOLDOWN" default:"30s"`
}

type CheckoutConfig struct {
	SuccessURL string `envconfig:"CHECKOUT_SUCCESS_URL" required:"true"`
	Currency   string `envconfig:"CHECKOUT_CURRENCY" default:"usd"`
}

type RateLimitConfig struct {
	Window        time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
	CartOps       int           `envconfig:"RATE_LIMIT_CART_OPS" default:"60"`
	CheckoutOps   int           `envconfig:"RATE_LIMIT_CHECKOUT_OPS" default:"10"`
	CatalogReads  int           `envconfig:"RATE_LIMIT_CATALOG_READS" default:"120"`
	AuthOps       int           `envconfig:"RATE_LIMIT_AUTH_OPS" default:"20"`
	WebhookOps    int           `envconfig:"RATE_LIMIT_WEBHOOK_OPS" default:"120"`
	SweepInterval time.Duration `envconfig:"RATE_LIMIT_SWEEP_INTERVAL" default:"5m"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "UTC",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 0,
		},
		Billing: BillingConfig{
			APIKey:          "sk_test_dummy",
			BaseURL:         "http://localhost:12111",
			WebhookSecret:   "whsec_test_dummy",
			RequestTimeout:  2 * time.Second,
			MaxRetries:      1,
			BreakerFailures: 3,
			BreakerCooldown: time.Second,
		},
		Checkout: CheckoutConfig{
			SuccessURL: "http://localhost:3000/checkout/success",
			Currency:   "usd",
		},
		RateLimit: RateLimitConfig{
			Window:        time.Minute,
			CartOps:       1000,
			CheckoutOps:   1000,
			CatalogReads:  1000,
			AuthOps:       1000,
			WebhookOps:    1000,
			SweepInterval: time.Minute,
		},
	}
}
