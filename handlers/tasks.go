// handlers/task_routes.go
package handlers

import (
	"task-reward-system/middleware"
	"task-reward-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTaskRoutes(app *fiber.App, taskService *services.TaskService, lifecycleService *services.LifecycleService) {
	// 🔓 Public catalog reads
	app.Get("/tasks", func(c *fiber.Ctx) error {
		tasks, err := taskService.ListOneOff()
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(tasks)
	})
	app.Get("/tasks/recurring", func(c *fiber.Ctx) error {
		tasks, err := taskService.ListRecurring()
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(tasks)
	})
	app.Get("/users/:identifier/task_states", func(c *fiber.Ctx) error {
		states, err := lifecycleService.StatesForUser(c.Params("identifier"))
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(fiber.Map{"taskStates": states})
	})

	// 🔐 Secured routes — user context required
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/tasks/:id/submit", func(c *fiber.Ctx) error {
		var req struct {
			Identifier string `json:"identifier"`
			Evidence   string `json:"evidence_url"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		state, err := lifecycleService.SubmitEvidence(req.Identifier, c.Params("id"), req.Evidence)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(fiber.Map{"message": "Task submitted for validation", "state": state})
	})

	secured.Post("/tasks/:id/claim", func(c *fiber.Ctx) error {
		var req struct {
			Identifier string `json:"identifier"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		state, err := lifecycleService.Claim(req.Identifier, c.Params("id"))
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(fiber.Map{"message": "Reward claimed successfully", "state": state})
	})

	// Admin endpoints
	admin := app.Group("/s/admin", middleware.UserContextMiddleware())

	admin.Post("/tasks", taskService.CreateTask)
	admin.Put("/tasks/:id", taskService.UpdateTask)
	admin.Delete("/tasks/:id", taskService.DeleteTask)
	admin.Post("/tasks/:id/icon", taskService.UploadTaskIcon)

	admin.Get("/tasks/pending", func(c *fiber.Ctx) error {
		pending, err := lifecycleService.PendingSubmissions()
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(fiber.Map{"pending_tasks": pending})
	})

	admin.Post("/tasks/:id/validate", func(c *fiber.Ctx) error {
		var req struct {
			Identifier string `json:"identifier"`
			Action     string `json:"action"` // approve | reject
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		state, err := lifecycleService.Validate(req.Identifier, c.Params("id"), req.Action)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(fiber.Map{"message": "Task " + req.Action + "d successfully", "state": state})
	})

	// Registered last so the :id catalog read doesn't shadow the fixed
	// paths above.
	app.Get("/tasks/:id", func(c *fiber.Ctx) error {
		task, err := taskService.Get(c.Params("id"))
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(task)
	})
}
