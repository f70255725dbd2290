package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/Death-Raider13/CAPS-TEAM/app/controllers"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/middleware"
)

type ApiRouter struct {
	deps Deps
}

func NewApiRouter(deps Deps) *ApiRouter {
	return &ApiRouter{deps: deps}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	app.Get("/health", controllers.HandleHealth)

	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
	}))

	auth := controllers.NewAuthController(h.deps.Gate)
	api.Post("/login", auth.HandleLogin)
	api.Post("/logout", auth.HandleLogout)
	api.Get("/session", auth.HandleSession)

	gate := middleware.RequireGate(h.deps.Gate)

	exports := controllers.NewExportController(h.deps.Repos, h.deps.Renderer, h.deps.Archiver)
	exports.KeepDraftOnFinalize = h.deps.KeepDraftOnFinalize

	drafts := controllers.NewDraftController(h.deps.Repos.Drafts)
	api.Get("/drafts", gate, drafts.HandleList)
	api.Get("/drafts/:id", gate, drafts.HandleGet)
	api.Post("/drafts", gate, drafts.HandleUpsert)
	api.Delete("/drafts/:id", gate, drafts.HandleDelete)
	api.Post("/drafts/:id/finalize", gate, exports.HandleFinalize)

	reports := controllers.NewReportController(h.deps.Repos.Reports)
	reports.AfterSave = exports.Archive
	reports.AfterDelete = exports.Forget
	api.Get("/reports", gate, reports.HandleList)
	api.Get("/reports/:id", gate, reports.HandleGet)
	api.Post("/reports", gate, reports.HandleUpsert)
	api.Delete("/reports/:id", gate, reports.HandleDelete)
	api.Get("/reports/:id/export", gate, exports.HandleExport)
}
