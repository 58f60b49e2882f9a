// Package app assembles the PMS from configuration.  Both the HTTP server
// and pmsctl build through it so they agree on the store, lock and event
// wiring.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/hotel-pms/internal/config"
	"github.com/iliyamo/hotel-pms/internal/database"
	"github.com/iliyamo/hotel-pms/internal/lock"
	"github.com/iliyamo/hotel-pms/internal/model"
	"github.com/iliyamo/hotel-pms/internal/pms"
	"github.com/iliyamo/hotel-pms/internal/queue"
	"github.com/iliyamo/hotel-pms/internal/repository"
	"github.com/iliyamo/hotel-pms/internal/repository/memory"
)

// App holds the long-lived dependencies.  DB and Redis are nil when the
// configuration does not use them.
type App struct {
	Cfg     config.Config
	Log     *slog.Logger
	DB      *sql.DB
	Redis   *redis.Client
	Store   repository.Store
	Service *pms.Service
}

// NewLogger returns a JSON logger in prod and a text logger elsewhere.
func NewLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env == "dev" {
		opts.Level = slog.LevelDebug
	}
	if env == "prod" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// Build opens the configured store, migrates and seeds it when asked, and
// constructs the service.  Callers must Close the result.
func Build(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	a := &App{Cfg: cfg, Log: log}

	switch cfg.StoreDriver {
	case config.StoreMySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		a.DB = db
		if err := database.Migrate(ctx, db); err != nil {
			a.Close()
			return nil, err
		}
		a.Store = repository.NewSQLStore(db)
	default:
		a.Store = memory.New()
	}

	if cfg.SeedRooms {
		if _, err := database.SeedRooms(ctx, a.Store, log); err != nil {
			a.Close()
			return nil, fmt.Errorf("seed rooms: %w", err)
		}
	}

	a.Redis = config.NewRedisClient()
	var locker lock.Locker = lock.NewKeyed()
	if cfg.LockBackend == config.LockRedis {
		if a.Redis == nil {
			a.Close()
			return nil, fmt.Errorf("LOCK_BACKEND=redis but redis is unreachable")
		}
		locker = lock.NewRedis(a.Redis, "pms:lock:", cfg.LockTTL, log)
	}
	if a.Redis == nil {
		log.Info("redis unavailable; rate limiting and hotel info cache disabled")
	}

	var pub pms.Publisher = queue.Discard{}
	if cfg.EventsEnabled {
		pub = queue.NewPublisher(cfg.AMQPURL, log)
	}

	a.Service = pms.New(a.Store, pms.Options{
		Locker:           locker,
		Publisher:        pub,
		Logger:           log,
		Location:         cfg.Location,
		PhoneCountryCode: cfg.PhoneCountryCode,
		Hotel:            HotelInfo(cfg.Hotel),
	})
	log.Info("pms ready", "store", cfg.StoreDriver, "lock", cfg.LockBackend,
		"events", cfg.EventsEnabled, "timezone", cfg.Location.String())
	return a, nil
}

// HotelInfo converts the configured property description.
func HotelInfo(h config.HotelConfig) model.HotelInfo {
	return model.HotelInfo{
		Name:         h.Name,
		Location:     h.Location,
		Address:      h.Address,
		Contact:      h.Contact,
		Email:        h.Email,
		Amenities:    append([]string{}, h.Amenities...),
		CheckInTime:  h.CheckInTime,
		CheckOutTime: h.CheckOutTime,
	}
}

// Consumer returns the audit log consumer for the configured broker.
func (a *App) Consumer() *queue.Consumer {
	return queue.NewConsumer(a.Cfg.AMQPURL, queue.NewAuditLog(a.Cfg.AuditDir), a.Log)
}

func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}
