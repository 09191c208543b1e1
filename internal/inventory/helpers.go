package inventory

import (
	"errors"
	"time"

	"kitchreq-backend/internal/apperr"
	"kitchreq-backend/internal/auth"
	"kitchreq-backend/internal/database"
	"kitchreq-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Helper: map core errors onto HTTP statuses. Insufficient-stock responses
// are built by the callers so the shortfall details reach the client.
func httpError(err error) error {
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrUnknownItem):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, apperr.ErrStorageUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, "Storage is unavailable, try again")
	default:
		return err
	}
}

// Helper: parse ?start=YYYY-MM-DD&end=YYYY-MM-DD into an inclusive range.
// Defaults cover everything up to today, matching the old requisition forms.
func parseDateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	startStr := c.Query("start", "2000-01-01")
	endStr := c.Query("end", time.Now().Format("2006-01-02"))

	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "start must be 'YYYY-MM-DD'")
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "end must be 'YYYY-MM-DD'")
	}

	// End bound covers the whole calendar day.
	return start, end.Add(24*time.Hour - time.Nanosecond), nil
}

// Helper: resolve the authenticated user for audit entries.
func getUserInfo(c *fiber.Ctx) (uint, string, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "User info could not be read")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "User not found")
	}

	return userID, user.Name, nil
}
