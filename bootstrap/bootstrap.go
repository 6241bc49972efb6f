package bootstrap

import (
	"estate-backend/internal/config"
	"estate-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
)

// New builds the Fiber app for the serverless entry in api/, which cannot
// import internal packages directly.
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	app, _, _, err := router.CreateApp(cfg)
	return app, err
}
