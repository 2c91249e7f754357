// file: app.go
package main

import (
	"context"
	"math/rand"
	"net/http"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"nilakkal-parking/config"
	"nilakkal-parking/controllers"
	"nilakkal-parking/logger"
	"nilakkal-parking/metrics"
	"nilakkal-parking/middleware"
	"nilakkal-parking/services"
	"nilakkal-parking/storage"
	"nilakkal-parking/websocket"
)

// App holds the wired services of one server instance.
type App struct {
	cfg       *config.Config
	router    *gin.Engine
	hub       *websocket.Hub
	parking   *services.ParkingService
	admins    *services.AdminService
	backups   *services.BackupService
	store     storage.BackupStore
	autoSaver *services.AutoSaver
	tasks     []*services.PeriodicTask
}

// openStore selects the backup store configured by BACKUP_DRIVER.
func openStore(cfg *config.Config) (storage.BackupStore, error) {
	if cfg.BackupDriver == config.DriverRedis {
		logger.Info.Printf("[openStore] Using redis backup store at %s", cfg.RedisAddr)
		return storage.NewRedisStore(storage.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.AppName)
	}
	logger.Info.Printf("[openStore] Using file backup store in %s", cfg.BackupDir)
	return storage.NewFileStore(cfg.BackupDir, cfg.AppName)
}

// newPublisher returns the CloudWatch publisher when metrics are enabled.
func newPublisher(cfg *config.Config) metrics.Publisher {
	if !cfg.MetricsEnabled {
		return metrics.Nop{}
	}
	pub, err := metrics.NewCloudWatchPublisher(cfg.MetricsNamespace)
	if err != nil {
		logger.Warn.Printf("[newPublisher] CloudWatch unavailable, metrics disabled: %v", err)
		return metrics.Nop{}
	}
	return pub
}

// newApp wires services, background tasks and routes.
func newApp(cfg *config.Config, store storage.BackupStore, publisher metrics.Publisher, rnd *rand.Rand) *App {
	hub := websocket.NewHub()

	zones := services.SeedZones(services.SeedOptions{
		Zones:    cfg.SeedZones,
		Capacity: cfg.ZoneCapacity,
		Fill:     cfg.SeedOccupancy,
	}, rnd)
	parking := services.NewParkingService(zones, store, hub)
	hub.OnConnect = func(topic string) map[string]interface{} {
		return map[string]interface{}{
			"action":  "zonesChanged",
			"reason":  "connected",
			"summary": parking.Summary(),
			"zones":   parking.Zones(),
		}
	}

	seeds := []services.AdminSeed{services.DefaultAdmin}
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		seeds = append(seeds, services.AdminSeed{Username: cfg.AdminUsername, Password: cfg.AdminPassword})
	}
	admins := services.NewAdminService(seeds...)
	backups := services.NewBackupService(store, cfg.AppName, parking)

	app := &App{
		cfg:       cfg,
		hub:       hub,
		parking:   parking,
		admins:    admins,
		backups:   backups,
		store:     store,
		autoSaver: services.NewAutoSaver(parking, backups, cfg.AutoSaveInterval),
	}

	if cfg.SimulateTraffic {
		app.tasks = append(app.tasks, services.NewTrafficSimulator(parking, rnd).Task(cfg.SimulationInterval))
	}
	if cfg.MetricsEnabled {
		reporter := metrics.NewReporter(parking, hub, publisher)
		app.tasks = append(app.tasks, services.NewPeriodicTask("metrics", cfg.MetricsInterval, reporter.Report))
	}

	app.router = setupRouter(cfg, controllers.Handlers{
		Parking:      controllers.NewParkingController(parking, cfg.ApplicationURL),
		Zones:        controllers.NewZoneController(parking),
		Auth:         controllers.NewAuthController(admins),
		Backups:      controllers.NewBackupController(backups, parking, cfg.AppName),
		Hub:          hub,
		LoginLimiter: middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginBurst),
	})
	return app
}

// setupRouter builds the gin engine with sessions and every route.
func setupRouter(cfg *config.Config, h controllers.Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Frame-Options", "SAMEORIGIN")
		c.Next()
	})

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("nilakkalsession", store))

	controllers.RegisterRoutes(router, h)
	return router
}

// Handler returns the HTTP entry point, traced by X-Ray when enabled.
func (a *App) Handler() http.Handler {
	if a.cfg.XRayEnabled {
		return xray.Handler(xray.NewFixedSegmentNamer(a.cfg.AppName), a.router)
	}
	return a.router
}

// Start launches the hub and background tasks. They stop when ctx ends.
func (a *App) Start(ctx context.Context) {
	go a.hub.Run(ctx)
	a.autoSaver.Start(ctx)
	for _, t := range a.tasks {
		t.Start(ctx)
	}
}

// Shutdown stops background work, writes a final snapshot and closes the store.
func (a *App) Shutdown(ctx context.Context) error {
	for _, t := range a.tasks {
		t.Stop()
	}
	_ = a.autoSaver.Stop(ctx)
	return a.store.Close()
}
