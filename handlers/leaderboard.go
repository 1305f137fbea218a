// handlers/leaderboard_routes.go
package handlers

import (
	"strconv"

	"task-reward-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(app *fiber.App, leaderboardService *services.LeaderboardService) {
	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		kind := c.Query("kind", "score")
		limit, _ := strconv.Atoi(c.Query("limit", "0"))

		var (
			entries []services.LeaderboardEntry
			err     error
		)
		switch kind {
		case "score":
			entries, err = leaderboardService.TopByWeeklyScore(limit)
		case "referrals":
			entries, err = leaderboardService.TopByWeeklyReferrals(limit)
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "kind must be score or referrals"})
		}
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(fiber.Map{"kind": kind, "leaderboard": entries})
	})
}
