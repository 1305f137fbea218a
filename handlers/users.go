// handlers/user_routes.go
package handlers

import (
	"task-reward-system/middleware"
	"task-reward-system/models"
	"task-reward-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService, referralService *services.ReferralService, ledgerService *services.LedgerService) {
	// 🔓 Public routes — no user context, but still behind Gateway auth
	app.Get("/users/:identifier/score", func(c *fiber.Ctx) error {
		identifier := c.Params("identifier")
		total, err := ledgerService.TotalScore(identifier)
		if err != nil {
			return errorJSON(c, err)
		}
		weekly, err := ledgerService.WeeklyScore(identifier)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(fiber.Map{"score": total, "weekly_score": weekly})
	})

	app.Get("/users/:identifier/referral_earnings", func(c *fiber.Ctx) error {
		identifier := c.Params("identifier")
		earnings, err := referralService.Earnings(identifier)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(fiber.Map{"earnings": earnings})
	})

	app.Get("/users/:identifier/referrals", func(c *fiber.Ctx) error {
		identifier := c.Params("identifier")
		if _, err := userService.GetByIdentifier(identifier); err != nil {
			return errorJSON(c, err)
		}
		referrals, err := referralService.ListReferrals(identifier)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(fiber.Map{"referrals": referrals})
	})

	// 🔐 Secured routes — require user context from the gateway
	secured := app.Group("/", middleware.UserContextMiddleware())

	// First contact: the bot layer calls this on /start, then attaches
	// the referrer token (if any) via /referrals/attach.
	secured.Post("/users/ensure", func(c *fiber.Ctx) error {
		var req struct {
			Identifier string `json:"identifier"`
			Username   string `json:"username"`
			ChatID     string `json:"chat_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		user, err := userService.EnsureUser(req.Identifier, req.Username, req.ChatID)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(user)
	})

	secured.Post("/referrals/attach", func(c *fiber.Ctx) error {
		var req struct {
			Referrer string `json:"referrer"`
			Referred string `json:"referred"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if err := referralService.Attach(req.Referrer, req.Referred); err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(fiber.Map{"message": "Referral attached successfully"})
	})

	// External credits (e.g. in-game score reported by the game backend).
	secured.Post("/users/:identifier/credit", func(c *fiber.Ctx) error {
		identifier := c.Params("identifier")
		var req struct {
			Amount    int64  `json:"amount"`
			Reference string `json:"reference"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if err := ledgerService.Credit(identifier, req.Amount,
			models.ScoreSourceExternalCredit, req.Reference, ""); err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(fiber.Map{"message": "Score saved successfully"})
	})
}
