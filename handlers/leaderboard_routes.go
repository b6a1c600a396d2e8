package handlers

import (
	"top-doggo/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(app *fiber.App, leaderboardService *services.LeaderboardService) {
	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		return c.Redirect("/leaderboard/top/overall", fiber.StatusTemporaryRedirect)
	})
	app.Get("/leaderboard/top", func(c *fiber.Ctx) error {
		return c.Redirect("/leaderboard/top/overall", fiber.StatusTemporaryRedirect)
	})
	app.Get("/leaderboard/top/:rating_type", leaderboardService.Top)
}
