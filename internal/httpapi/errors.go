package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	accountapp "github.com/dwikikusuma/storefront/internal/account/app"
	"github.com/dwikikusuma/storefront/internal/backend"
	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
)

var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// httpStatusFromError maps domain and backend errors to an HTTP status, a
// stable error code and a client-safe message.
func httpStatusFromError(err error) (int, string, string) {
	var se *backend.StatusError

	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, cartapp.ErrInvalidArgument),
		errors.Is(err, catalogapp.ErrInvalidInput),
		errors.Is(err, orderapp.ErrInvalidInput),
		errors.Is(err, accountapp.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_ARGUMENT", err.Error()

	case errors.Is(err, catalogapp.ErrNotFound),
		errors.Is(err, orderapp.ErrNotFound),
		errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", err.Error()

	case errors.Is(err, orderapp.ErrUnauthenticated),
		errors.Is(err, accountapp.ErrUnauthenticated),
		errors.Is(err, backend.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required"

	case errors.Is(err, checkoutapp.ErrEmptyCart):
		return http.StatusConflict, "FAILED_PRECONDITION", err.Error()

	case errors.Is(err, backend.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "UNAVAILABLE", "backend unavailable"

	case errors.As(err, &se) && se.Code >= 400 && se.Code < 500:
		msg := se.Message
		if msg == "" {
			msg = http.StatusText(se.Code)
		}
		return http.StatusBadRequest, "INVALID_ARGUMENT", msg

	case errors.As(err, &se):
		return http.StatusBadGateway, "BAD_GATEWAY", "backend error"

	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("write response", slog.Any("err", err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, code, msg := httpStatusFromError(err)
	if status >= 500 {
		log.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("code", code),
			slog.Any("err", err))
	}

	var body errorBody
	body.Error.Code = code
	body.Error.Message = msg
	writeJSON(w, status, body)
}
