package serverutils

import (
	"errors"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns handler errors into the JSON error envelope.
// Anything it does not recognise becomes a 500 without leaking the cause.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var (
			notFound   *dto.NotFoundError
			validation *ValidationError
			fiberErr   *fiber.Error
		)
		switch {
		case errors.As(err, &notFound):
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(fiber.StatusNotFound, notFound.Error()))
		case errors.As(err, &validation):
			return ctx.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse(fiber.StatusUnprocessableEntity, validation.Error()))
		case errors.As(err, &fiberErr):
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		log.Error("HTTP", "Unhandled request error", map[string]interface{}{
			"error":      err,
			"method":     ctx.Method(),
			"path":       ctx.Path(),
			"request_id": ctx.Locals("requestid"),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}
