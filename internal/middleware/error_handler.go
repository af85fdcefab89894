package middleware

import (
	"errors"
	"net/http"

	"github.com/abihavaraj/animo-sub001/internal/dto"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// ErrorHandler renders every error as a JSON ErrorResponse. Handlers map the
// domain sentinels to echo.HTTPError themselves; a gorm record-not-found that
// escapes them still surfaces as 404 rather than 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		code = http.StatusNotFound
	}

	_ = c.JSON(code, dto.ErrorResponse{Message: msg})
}
