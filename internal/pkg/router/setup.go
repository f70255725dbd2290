package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Death-Raider13/CAPS-TEAM/app/controllers"
	"github.com/Death-Raider13/CAPS-TEAM/app/repository"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/exporter"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/session"
)

// Router installs a group of routes on the app
type Router interface {
	InstallRouter(app *fiber.App)
}

// Deps are the services the routes are built from
type Deps struct {
	Repos    *repository.Repositories
	Renderer *exporter.Renderer
	Archiver controllers.ReportArchiver
	Gate     session.Gate

	KeepDraftOnFinalize bool
}

func InstallRouter(app *fiber.App, deps Deps) {
	// The session store backs the login gate, so it has to exist before the API routes.
	session.NewSessionStore()
	setup(app, NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
