// handlers/admin_routes.go
package handlers

import (
	"strconv"
	"strings"

	"task-reward-system/middleware"
	"task-reward-system/models"
	"task-reward-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminUserRoutes exposes the admin dashboard's user management:
// paginated listing with aggregate stats, search, count, edit, delete.
func SetupAdminUserRoutes(app *fiber.App, userService *services.UserService) {
	admin := app.Group("/s/admin", middleware.UserContextMiddleware())

	admin.Get("/users", func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		limit, _ := strconv.Atoi(c.Query("limit", "10"))
		if page < 1 {
			page = 1
		}
		if limit < 1 || limit > 100 {
			limit = 10
		}
		offset := (page - 1) * limit

		var users []models.User
		if err := userService.DB.
			Order("created_at DESC").
			Limit(limit).Offset(offset).
			Find(&users).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error fetching users"})
		}

		var stats struct {
			TotalScore int64
			Count      int64
		}
		if err := userService.DB.Model(&models.User{}).
			Select("COALESCE(SUM(score), 0) AS total_score, COUNT(*) AS count").
			Scan(&stats).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error computing stats"})
		}
		var avg float64
		if stats.Count > 0 {
			avg = float64(stats.TotalScore) / float64(stats.Count)
		}

		var topPerformers []models.User
		if err := userService.DB.
			Order("score DESC, created_at ASC").
			Limit(3).
			Find(&topPerformers).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error fetching top performers"})
		}

		return c.JSON(fiber.Map{
			"users": users,
			"stats": fiber.Map{
				"totalScore":    stats.TotalScore,
				"averageScore":  avg,
				"topPerformers": topPerformers,
			},
		})
	})

	admin.Get("/users/count", func(c *fiber.Ctx) error {
		var count int64
		if err := userService.DB.Model(&models.User{}).Count(&count).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error counting users"})
		}
		return c.JSON(fiber.Map{"count": count})
	})

	admin.Get("/users/search", func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("username"))
		if q == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username is required"})
		}
		var users []models.User
		if err := userService.DB.
			Where("LOWER(username) LIKE ?", "%"+strings.ToLower(q)+"%").
			Limit(100).
			Find(&users).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "search failed"})
		}
		return c.JSON(fiber.Map{"users": users})
	})

	admin.Put("/users/:identifier", func(c *fiber.Ctx) error {
		var req struct {
			Username *string `json:"username"`
			ChatID   *string `json:"chat_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		// Only presentation fields are editable here; score, referral and
		// task state mutate exclusively through their own operations.
		updates := map[string]interface{}{}
		if req.Username != nil {
			updates["username"] = *req.Username
		}
		if req.ChatID != nil {
			updates["chat_id"] = *req.ChatID
		}
		if len(updates) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Nothing to update"})
		}
		res := userService.DB.Model(&models.User{}).
			Where("identifier = ?", c.Params("identifier")).
			Updates(updates)
		if res.Error != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
		}
		if res.RowsAffected == 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.JSON(fiber.Map{"message": "User updated successfully"})
	})

	admin.Delete("/users/:identifier", func(c *fiber.Ctx) error {
		res := userService.DB.
			Where("identifier = ?", c.Params("identifier")).
			Delete(&models.User{})
		if res.Error != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete user"})
		}
		if res.RowsAffected == 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.JSON(fiber.Map{"message": "User deleted successfully"})
	})
}
