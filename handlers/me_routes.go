package handlers

import (
	"top-doggo/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMeRoutes(app *fiber.App, meService *services.MeService, magicLinkService *services.MagicLinkService) {
	app.Get("/me", meService.Me)
	app.Post("/send-magic-link", magicLinkService.SendMagicLink)
	app.Get("/login", magicLinkService.Login)
	app.Get("/sorry", magicLinkService.Sorry)
}
