package apperr

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestGlobalErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "validation", err: NewValidation("bad"), wantStatus: http.StatusBadRequest},
		{name: "decode", err: NewDecode([]byte("x"), errors.New("invalid")), wantStatus: http.StatusBadRequest},
		{name: "encode", err: NewEncode(errors.New("unsupported")), wantStatus: http.StatusInternalServerError},
		{name: "configuration", err: NewConfiguration("missing sink"), wantStatus: http.StatusBadRequest},
		{name: "sink write", err: NewSinkWrite(2, errors.New("down")), wantStatus: http.StatusBadGateway},
		{name: "http", err: echo.NewHTTPError(http.StatusNotFound, "nope"), wantStatus: http.StatusNotFound},
		{name: "unknown", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	handler := GlobalErrorHandler()
	e := echo.New()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/ingest", nil), rec)

			handler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
