// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store and lock backends.
const (
	StoreMemory = "memory"
	StoreMySQL  = "mysql"

	LockLocal = "local"
	LockRedis = "redis"
)

// Config holds all runtime configuration values.
type Config struct {
	Env  string // dev, test or prod
	Port string

	StoreDriver string // memory or mysql
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string

	JWTSecret         string
	AccessTTLMin      int
	AdminPasswordHash string // bcrypt; empty disables POST /v1/auth/token
	BcryptCost        int

	Location         *time.Location // hotel day boundary
	PhoneCountryCode string

	LockBackend string // local or redis
	LockTTL     time.Duration

	EventsEnabled bool
	AMQPURL       string
	AuditDir      string

	SeedRooms bool

	Hotel     HotelConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
}

// Rate limit key strategies.
const (
	KeyByIP          = "ip"
	KeyByIPRoute     = "ip_route"
	KeyByIPUserRoute = "ip_user_route"
)

// RateLimitConfig drives the Redis token bucket in front of /v1.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration // bucket key expiry, at least 5 refills
	KeyStrategy    string
	Prefix         string
	Debug          bool // expose the bucket key in X-RateLimit-Key
}

// HotelConfig is the property description returned by the hotel info
// endpoint.
type HotelConfig struct {
	Name         string
	Location     string
	Address      string
	Contact      string
	Email        string
	Amenities    []string
	CheckInTime  string
	CheckOutTime string
}

// Load reads the configuration.  A .env file in the working directory is
// applied first when present; variables already set in the environment
// win.  Values that are required for the selected backends are enforced
// here and reported together.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}

	var problems []string
	cfg := Config{
		Env:               envStr("APP_ENV", "dev"),
		Port:              envStr("APP_PORT", "8080"),
		StoreDriver:       strings.ToLower(envStr("STORE_DRIVER", StoreMemory)),
		DBUser:            os.Getenv("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"),
		DBHost:            envStr("DB_HOST", "127.0.0.1"),
		DBPort:            envStr("DB_PORT", "3306"),
		DBName:            os.Getenv("DB_NAME"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		PhoneCountryCode:  envStr("PHONE_COUNTRY_CODE", "91"),
		LockBackend:       strings.ToLower(envStr("LOCK_BACKEND", LockLocal)),
		LockTTL:           envDur("LOCK_TTL", 10*time.Second),
		EventsEnabled:     envBool("EVENTS_ENABLED", false),
		AMQPURL:           firstEnv("RABBITMQ_URL", "AMQP_URL"),
		AuditDir:          envStr("AUDIT_LOG_DIR", "logs"),
		SeedRooms:         envBool("SEED_ROOMS", true),
		Hotel:             loadHotel(),
		RateLimit:         loadRateLimit(),
		Cache:             loadCache(),
	}

	var err error
	if cfg.AccessTTLMin, err = strictInt("ACCESS_TOKEN_TTL_MIN", 60); err != nil {
		problems = append(problems, err.Error())
	}
	if cfg.BcryptCost, err = strictInt("BCRYPT_COST", 10); err != nil {
		problems = append(problems, err.Error())
	}
	tz := envStr("HOTEL_TIMEZONE", "UTC")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		problems = append(problems, fmt.Sprintf("HOTEL_TIMEZONE: unknown zone %q", tz))
	}

	if cfg.JWTSecret == "" {
		problems = append(problems, "missing required env var: JWT_SECRET")
	}
	switch cfg.StoreDriver {
	case StoreMemory:
	case StoreMySQL:
		for _, k := range []string{"DB_USER", "DB_NAME"} {
			if os.Getenv(k) == "" {
				problems = append(problems, "missing required env var: "+k)
			}
		}
	default:
		problems = append(problems, fmt.Sprintf("STORE_DRIVER: unsupported %q", cfg.StoreDriver))
	}
	if cfg.LockBackend != LockLocal && cfg.LockBackend != LockRedis {
		problems = append(problems, fmt.Sprintf("LOCK_BACKEND: unsupported %q", cfg.LockBackend))
	}
	if cfg.LockTTL <= 0 {
		problems = append(problems, "LOCK_TTL: must be positive")
	}
	switch cfg.RateLimit.KeyStrategy {
	case KeyByIP, KeyByIPRoute, KeyByIPUserRoute:
	default:
		problems = append(problems, fmt.Sprintf("RATE_LIMIT_KEY_STRATEGY: unsupported %q", cfg.RateLimit.KeyStrategy))
	}

	if len(problems) > 0 {
		return Config{}, errors.New("config: " + strings.Join(problems, "; "))
	}
	return cfg, nil
}

func loadHotel() HotelConfig {
	return HotelConfig{
		Name:         envStr("HOTEL_NAME", "Chennai BnB Serviced Apartments"),
		Location:     envStr("HOTEL_LOCATION", "Chennai, Tamil Nadu, India"),
		Address:      envStr("HOTEL_ADDRESS", "Thiru Nagar, Chennai"),
		Contact:      envStr("HOTEL_CONTACT", "+91-XXXXXXXXXX"),
		Email:        envStr("HOTEL_EMAIL", "info@chennaibnb.com"),
		Amenities:    splitList(envStr("HOTEL_AMENITIES", "Free WiFi,24/7 Reception,Housekeeping,Kitchen Facilities,Parking")),
		CheckInTime:  envStr("HOTEL_CHECK_IN_TIME", "14:00"),
		CheckOutTime: envStr("HOTEL_CHECK_OUT_TIME", "11:00"),
	}
}

// loadRateLimit reads RATE_LIMIT_*.  Counts below one and a TTL shorter
// than five refill intervals are raised rather than rejected.
func loadRateLimit() RateLimitConfig {
	rl := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    strings.ToLower(envStr("RATE_LIMIT_KEY_STRATEGY", KeyByIPRoute)),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "pms:rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	rl.Capacity = max(rl.Capacity, 1)
	rl.RefillTokens = max(rl.RefillTokens, 1)
	if rl.RefillInterval <= 0 {
		rl.RefillInterval = time.Second
	}
	rl.TTL = max(rl.TTL, 5*rl.RefillInterval)
	return rl
}
