// Package api serves a generated documentation tree over HTTP so it can be reviewed before it is
// synced into the published docs.
package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/ortelius/release-notes-updater/util"
)

// NewFiberApp creates a Fiber app that serves outputDir read-only under /docs.
func NewFiberApp(outputDir string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "release-notes-updater preview",
		ReadTimeout:           60 * time.Second,
		DisableStartupMessage: true,
	})

	app.Use(fiberrecover.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	app.Use(logger.New())

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"output": outputDir,
			"ready":  util.DirExists(outputDir),
		})
	})

	app.Static("/docs", outputDir, fiber.Static{
		Browse:    true,
		ByteRange: true,
	})

	return app
}
