package handlers

import (
	"top-doggo/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGameRoutes(app *fiber.App, gameService *services.GameService) {
	app.Get("/", gameService.Home)
	app.Post("/pick-winner/:winner", gameService.PickWinner)
	app.Patch("/name-dog", gameService.NameDog)
}
