package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/cache"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/exporter"
)

// HandleHealth reports liveness plus export counters when the cache is up
func HandleHealth(c *fiber.Ctx) error {
	resp := fiber.Map{"status": "ok"}
	if !cache.Available() {
		return c.JSON(resp)
	}

	exports := fiber.Map{}
	for _, tier := range []exporter.Tier{exporter.TierPDF, exporter.TierPrint, exporter.TierRaw} {
		if n, err := cache.Counter("caps:exports:" + tier.String()); err == nil {
			exports[tier.String()] = n
		}
	}
	resp["exports"] = exports
	return c.JSON(resp)
}
