package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Scraper  ScraperConfig
	Browser  BrowserConfig
	SMTP     SMTPConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            int
	Host            string
	StaticDir       string
	ShutdownTimeout time.Duration
}

type ScraperConfig struct {
	BaseURL            string
	DefaultQuery       string
	BrandKeyword       string
	DestinationCountry string
	MaxRetries         int
	MaxItems           int
	NavigationTimeout  time.Duration
	ResultsTimeout     time.Duration
	DebugDir           string
	PriceThreshold     float64
	MinPrice           float64
	UserAgents         []string
}

type BrowserConfig struct {
	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	Locale         string
	TimezoneID     string
	AcceptLanguage string
	Currency       string
}

type SMTPConfig struct {
	Host      string
	Port      int
	Sender    string
	Password  string
	Recipient string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	AlertTTL time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int32
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvInt("PORT", 7860),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			StaticDir:       getEnv("STATIC_DIR", "static"),
			ShutdownTimeout: getDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Scraper: ScraperConfig{
			BaseURL:            getEnv("SCRAPER_BASE_URL", "https://www.amazon.com"),
			DefaultQuery:       getEnv("SCRAPER_DEFAULT_QUERY", "Lenovo ThinkBook 16"),
			BrandKeyword:       getEnv("SCRAPER_BRAND_KEYWORD", "Lenovo"),
			DestinationCountry: getEnv("SCRAPER_DESTINATION_COUNTRY", "Colombia"),
			MaxRetries:         getEnvInt("SCRAPER_MAX_RETRIES", 3),
			MaxItems:           getEnvInt("SCRAPER_MAX_ITEMS", 15),
			NavigationTimeout:  getDuration("SCRAPER_NAVIGATION_TIMEOUT", 60*time.Second),
			ResultsTimeout:     getDuration("SCRAPER_RESULTS_TIMEOUT", 15*time.Second),
			DebugDir:           getEnv("SCRAPER_DEBUG_DIR", "debug"),
			PriceThreshold:     getEnvFloat("ALERT_PRICE_THRESHOLD", 749.99),
			MinPrice:           getEnvFloat("ALERT_MIN_PRICE", 500.00),
			UserAgents:         getEnvSlice("SCRAPER_USER_AGENTS", defaultUserAgents()),
		},
		Browser: BrowserConfig{
			Headless:       getEnvBool("BROWSER_HEADLESS", true),
			ViewportWidth:  getEnvInt("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getEnvInt("BROWSER_VIEWPORT_HEIGHT", 1080),
			Locale:         getEnv("BROWSER_LOCALE", "en-US"),
			TimezoneID:     getEnv("BROWSER_TIMEZONE", "America/Bogota"),
			AcceptLanguage: getEnv("BROWSER_ACCEPT_LANGUAGE", "en-US,en;q=0.9,es;q=0.8"),
			Currency:       getEnv("BROWSER_CURRENCY", "USD"),
		},
		SMTP: SMTPConfig{
			Host:      getEnv("SMTP_SERVER", "smtp.gmail.com"),
			Port:      getEnvInt("SMTP_PORT", 587),
			Sender:    getEnv("EMAIL_USER", ""),
			Password:  getEnv("EMAIL_PASSWORD", ""),
			Recipient: getEnv("EMAIL_RECIPIENT", getEnv("EMAIL_USER", "")),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			AlertTTL: getDuration("ALERT_DEDUP_TTL", 24*time.Hour),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "pricewatch"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Scraper.BaseURL == "" {
		return fmt.Errorf("scraper base URL is required")
	}

	if c.Scraper.MaxRetries < 1 {
		return fmt.Errorf("at least 1 scrape attempt is required")
	}

	if c.Scraper.MaxItems < 1 {
		return fmt.Errorf("at least 1 result item is required")
	}

	if len(c.Scraper.UserAgents) == 0 {
		return fmt.Errorf("at least one user agent is required")
	}

	if c.Scraper.MinPrice > c.Scraper.PriceThreshold {
		return fmt.Errorf("ALERT_MIN_PRICE cannot exceed ALERT_PRICE_THRESHOLD")
	}

	return nil
}

// HistoryEnabled reports whether a postgres price history store is configured.
func (c *Config) HistoryEnabled() bool {
	return c.Database.Host != ""
}

// DedupEnabled reports whether redis-backed alert dedup is configured.
func (c *Config) DedupEnabled() bool {
	return c.Redis.Addr != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func defaultUserAgents() []string {
	return []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}
