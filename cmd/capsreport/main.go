package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/afero"

	"github.com/Death-Raider13/CAPS-TEAM/app/repository"
	"github.com/Death-Raider13/CAPS-TEAM/docs"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/cache"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/database"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/env"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/exporter"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/jobqueue"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/router"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/s3backup"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/session"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/upload"
)

func main() {
	app, manager := NewApplication()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		if manager != nil {
			manager.Stop()
		}
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	err := app.Listen(listenAddr())
	log.Fatal(err)
}

// NewApplication wires the store, renderer, archive and routes. The returned
// manager is nil when archiving is off.
func NewApplication() (*fiber.App, *jobqueue.Manager) {
	env.SetupEnvFile()
	cache.SetupCache()

	ctx := context.Background()
	repos, err := database.SetupStore(ctx)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}

	renderer, err := exporter.New(exporter.Config{
		AssetBase:      env.GetEnv("EXPORT_ASSET_BASE", "/"),
		PDF:            env.GetBool("EXPORT_PDF_ENABLED", true),
		WebPThumbnails: env.GetBool("EXPORT_WEBP_THUMBNAILS", false),
		Assets:         afero.NewBasePathFs(afero.NewOsFs(), env.GetEnv("EXPORT_ASSET_DIR", "./public/assets")),
	})
	if err != nil {
		log.Fatalf("Failed to load export templates: %v", err)
	}

	deps := router.Deps{
		Repos:               repos,
		Renderer:            renderer,
		Gate:                session.LoadGate(),
		KeepDraftOnFinalize: env.GetBool("KEEP_DRAFT_ON_FINALIZE", false),
	}
	manager := setupArchive(ctx, repos, renderer)
	if manager != nil {
		deps.Archiver = manager.Archiver()
	}

	// init fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: upload.MaxRequestBody, // photos travel inline as data URIs
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     env.GetEnv("CORS_ALLOW_ORIGINS", "*"),
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: !strings.Contains(env.GetEnv("CORS_ALLOW_ORIGINS", "*"), "*"),
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "caps"),
		},
	}), monitor.New())

	// SWAGGER / OPENAPI
	if _, err := docs.Load(ctx); err != nil {
		log.Printf("[Docs] openapi.yml does not validate: %v", err)
	}
	app.Get("/docs/openapi.yml", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(docs.OpenAPI)
	})
	if _, err := os.Stat(openAPIPath()); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: openAPIPath(),
			Path:     "v1",
		}))
	}

	// ROUTER
	router.InstallRouter(app, deps)

	return app, manager
}

// listenAddr prefers PORT, as set by container platforms, over APP_PORT.
func listenAddr() string {
	port := env.GetEnv("PORT", env.GetEnv("APP_PORT", "4000"))
	return fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "0.0.0.0"), port)
}

func openAPIPath() string {
	return env.GetEnv("OPENAPI_FILE", "./docs/openapi.yml")
}

// setupArchive starts the S3 archive queue when object storage and redis are both available.
func setupArchive(ctx context.Context, repos *repository.Repositories, renderer *exporter.Renderer) *jobqueue.Manager {
	cfg, err := s3backup.LoadConfig()
	if err != nil {
		log.Printf("[S3Backup] archive disabled: %v", err)
		return nil
	}
	if !cfg.IsEnabled() {
		return nil
	}
	if !cache.Available() {
		log.Printf("[S3Backup] archive disabled: the job queue needs redis")
		return nil
	}

	client, err := s3backup.NewClient(ctx, cfg)
	if err != nil {
		log.Printf("[S3Backup] archive disabled: %v", err)
		return nil
	}

	queue := jobqueue.NewQueue(cache.GetClient(), env.GetInt("JOB_WORKERS", 2))
	archiver := jobqueue.NewArchiver(queue, repos.Reports, renderer, client)
	manager := jobqueue.NewManager(queue, archiver, env.GetEnv("ARCHIVE_SWEEP_SCHEDULE", jobqueue.DefaultSweepSchedule))
	if err := manager.Start(); err != nil {
		log.Printf("[JobQueue] failed to start: %v", err)
		return nil
	}
	return manager
}
