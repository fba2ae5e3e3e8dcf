package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/repurpose-api/internal/models"
	"github.com/maheshrc27/repurpose-api/internal/repository"
	"github.com/maheshrc27/repurpose-api/internal/service"
	"github.com/rs/zerolog/log"
)

var errInvalidSessionID = errors.New("invalid session id")

// StatusFor maps a service error onto the response status.
func StatusFor(err error) int {
	switch {
	case models.IsValidation(err), errors.Is(err, errInvalidSessionID):
		return fiber.StatusBadRequest
	case errors.Is(err, repository.ErrSessionNotFound), errors.Is(err, service.ErrSourceNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrGenerationInProgress), errors.Is(err, service.ErrCoreChanged):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func sessionID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, errInvalidSessionID
	}
	return int64(id), nil
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Invalid request body",
	})
}

// ErrorHandler catches anything a handler returned without writing a
// response.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return respondError(c, err)
}
