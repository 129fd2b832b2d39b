package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/observability"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

// ErrorHandler renders errors that escape the middleware chain, such as
// unmatched routes.
func ErrorHandler(c *fiber.Ctx, err error) error {
	domainErr := toDomainError(err)
	return c.Status(domainErr.HTTPStatus).JSON(errorBody(domainErr))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError(c.UserContext(), c.Path(), c.Method(), domainErr.Code)
				if domainErr.HTTPStatus >= http.StatusInternalServerError {
					logger.Error("request failed", zap.String("path", c.Path()), zap.Error(domainErr))
				}
				_ = c.Status(domainErr.HTTPStatus).JSON(errorBody(domainErr))
				err = nil
			}
		}()
		return c.Next()
	}
}

// toDomainError also covers fiber's own errors, e.g. unknown routes or
// oversized bodies.
func toDomainError(err error) *apperrors.DomainError {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return apperrors.NewDomainError(fiberCode(fe.Code), fe.Message, fe.Code, nil)
	}
	return apperrors.ToDomainError(err)
}

func fiberCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		return apperrors.CodeValidation
	case http.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case http.StatusForbidden:
		return apperrors.CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return apperrors.CodeNotFound
	case http.StatusConflict:
		return apperrors.CodeConflict
	default:
		return apperrors.CodeInternal
	}
}

func errorBody(domainErr *apperrors.DomainError) fiber.Map {
	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	return fiber.Map{"error": body}
}
