package api

import (
	"errors"

	"github.com/example/task-tracker/domain/apperr"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

// errorCategory is the HTTP rendering of an error kind.
type errorCategory struct {
	status int
	label  string
}

// errorTable is the single place error kinds become HTTP statuses.
var errorTable = map[apperr.Kind]errorCategory{
	apperr.KindValidation:   {fiber.StatusBadRequest, "Validation Error"},
	apperr.KindBadRequest:   {fiber.StatusBadRequest, "Bad Request"},
	apperr.KindDuplicate:    {fiber.StatusBadRequest, "Bad Request"},
	apperr.KindNotFound:     {fiber.StatusNotFound, "Not Found"},
	apperr.KindUnauthorized: {fiber.StatusUnauthorized, "Unauthorized"},
}

var internalError = errorCategory{fiber.StatusInternalServerError, "Internal Server Error"}

// MapError converts err into a status and response body. Kinds without an
// entry, and errors without a kind, are internal errors whose details are
// not exposed.
func MapError(err error) (int, ErrorResponse) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, ErrorResponse{Error: labelForStatus(fe.Code), Message: fe.Message, Status: fe.Code}
	}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		if cat, ok := errorTable[ae.Kind]; ok {
			return cat.status, ErrorResponse{Error: cat.label, Message: ae.Message, Status: cat.status}
		}
	}

	return internalError.status, ErrorResponse{
		Error:   internalError.label,
		Message: "An unexpected error occurred",
		Status:  internalError.status,
	}
}

func labelForStatus(status int) string {
	if status >= fiber.StatusInternalServerError {
		return internalError.label
	}
	return utils.StatusMessage(status)
}

// newErrorHandler renders errors returned by handlers and logs internal ones.
func newErrorHandler(log *logrus.Entry) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := MapError(err)
		if status >= fiber.StatusInternalServerError {
			log.WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).WithError(err).Error("request failed")
		}
		return c.Status(status).JSON(body)
	}
}
