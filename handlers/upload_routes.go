package handlers

import (
	"top-doggo/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUploadRoutes(app *fiber.App, uploadService *services.UploadService) {
	app.Post("/upload", uploadService.Upload)
}
