package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

func GlobalErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve *ValidationError
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, map[string]string{"error": ve.Message, "title": "validation error"})
			return
		}

		var de *DecodeError
		if errors.As(err, &de) {
			_ = c.JSON(http.StatusBadRequest, map[string]string{"error": de.Error(), "title": "decode error"})
			return
		}

		var ee *EncodeError
		if errors.As(err, &ee) {
			slog.Error("Encoding output failed", "error", ee.Err)
			_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": ee.Error(), "title": "encode error"})
			return
		}

		var ce *ConfigurationError
		if errors.As(err, &ce) {
			_ = c.JSON(http.StatusBadRequest, map[string]string{"error": ce.Error(), "title": "configuration error"})
			return
		}

		var se *SinkWriteError
		if errors.As(err, &se) {
			slog.Error("Sink write failed", "error", se.Err, "batch_size", se.BatchSize)
			_ = c.JSON(http.StatusBadGateway, map[string]string{"error": se.Message, "title": "sink write error"})
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := fmt.Sprintf("%v", he.Message)
			_ = c.JSON(he.Code, map[string]string{"error": msg})
			return
		}

		slog.Error("Unhandled error", "error", err)
		_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
