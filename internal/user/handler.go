package user

import (
	"errors"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the user endpoints. Extra handlers, such as a rate
// limiter, run before the write endpoints.
func (h *Handler) RegisterRoutes(app fiber.Router, writeMiddleware ...fiber.Handler) {
	// the range route must be registered before /users/:id to avoid a param collision
	app.Get("/users/birthdate-range", h.getUsersInDateRange)
	app.Get("/users", h.getUsers)
	app.Get("/users/:id", h.getUser)
	app.Post("/users", withMiddleware(writeMiddleware, h.createUser)...)
	app.Patch("/users/:id", withMiddleware(writeMiddleware, h.updateUser)...)
	app.Delete("/users/:id", withMiddleware(writeMiddleware, h.deleteUser)...)
}

func withMiddleware(middleware []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(middleware)+1)
	handlers = append(handlers, middleware...)
	return append(handlers, handler)
}

func (h *Handler) createUser(c *fiber.Ctx) error {
	payload := new(User)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(msgInvalidDateForm)
	}

	if _, err := h.service.Create(c.UserContext(), *payload); err != nil {
		return h.sendError(c, err)
	}

	return c.SendString("User added successfully.")
}

func (h *Handler) getUsers(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		return h.sendError(c, err)
	}
	return c.JSON(users)
}

func (h *Handler) getUser(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}

	user, err := h.service.GetByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("User not found with id: " + c.Params("id"))
		}
		return h.sendError(c, err)
	}

	return c.JSON(user)
}

func (h *Handler) updateUser(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}

	payload := new(User)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(msgInvalidDateForm)
	}

	updated, err := h.service.Update(c.UserContext(), *payload, userID)
	if err != nil {
		return h.sendError(c, err)
	}

	return c.JSON(updated)
}

func (h *Handler) deleteUser(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}

	if err := h.service.Delete(c.UserContext(), userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).
				SendString("The user was not deleted because the user was not found by id: " + c.Params("id"))
		}
		return h.sendError(c, err)
	}

	return c.SendString("User deleted successfully.")
}

func (h *Handler) getUsersInDateRange(c *fiber.Ctx) error {
	start, err := civil.ParseDate(c.Query("startDate"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(msgInvalidDateForm)
	}
	end, err := civil.ParseDate(c.Query("endDate"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(msgInvalidDateForm)
	}

	users, err := h.service.ListByDateOfBirthRange(c.UserContext(), start, end)
	if err != nil {
		return h.sendError(c, err)
	}

	return c.JSON(users)
}

// sendError maps service failures onto a status code and a plain-text body.
// Duplicate emails share 400 with validation failures.
func (h *Handler) sendError(c *fiber.Ctx, err error) error {
	msg, ok := Message(err)
	switch {
	case ok && errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).SendString(msg)
	case ok:
		return c.Status(fiber.StatusBadRequest).SendString(msg)
	}

	zap.L().Error("user request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
}
