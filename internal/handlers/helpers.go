package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/workit/internal/middleware"
	"github.com/Windi-Fikriyansyah/workit/internal/storage"
)

func success(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// storageFail maps contract errors onto HTTP statuses.
func storageFail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, storage.ErrValidation), errors.Is(err, storage.ErrUnknownFilter), errors.Is(err, errBadUpload):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrDuplicate):
		return fail(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrUnavailable):
		log.Printf("[handlers] %s %s: %v", c.Method(), c.Path(), err)
		return fail(c, fiber.StatusServiceUnavailable, "Storage unavailable")
	default:
		log.Printf("[handlers] %s %s: %v", c.Method(), c.Path(), err)
		return fail(c, fiber.StatusInternalServerError, "Internal server error")
	}
}

func paramID(c *fiber.Ctx) (int, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func currentUser(c *fiber.Ctx) int {
	return middleware.UserID(c)
}

// errorHandler renders fiber errors, including those raised by middleware,
// in the response envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code == fiber.StatusInternalServerError {
		log.Printf("[handlers] %s %s: %v", c.Method(), c.Path(), err)
	}
	return fail(c, code, err.Error())
}
