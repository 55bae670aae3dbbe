// Package apierr renders service errors as JSON error responses.
package apierr

import (
	"errors"
	"log/slog"
	"net/http"

	"campus_delivery/internal/auth"
	"campus_delivery/internal/catalog"
	resp "campus_delivery/internal/lib/api/response"
	sl "campus_delivery/internal/lib/logger/sl"

	"github.com/go-chi/render"
)

const MsgInternal = "Internal error"

// Status maps err to an HTTP status and a client-safe message.
// authStatus is used for auth.ErrAuthentication, which is 401 on most routes
// but 400 where the caller supplied the rejected credential in the body.
func Status(err error, authStatus int) (int, string) {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		switch {
		case errors.Is(authErr, auth.ErrValidation), errors.Is(authErr, auth.ErrInvalidToken):
			return http.StatusBadRequest, authErr.Message
		case errors.Is(authErr, auth.ErrAuthentication):
			return authStatus, authErr.Message
		case errors.Is(authErr, auth.ErrConflict):
			return http.StatusConflict, authErr.Message
		case errors.Is(authErr, auth.ErrNotFound):
			return http.StatusNotFound, authErr.Message
		}
	}

	var catErr *catalog.Error
	if errors.As(err, &catErr) {
		switch {
		case errors.Is(catErr, catalog.ErrInvalid):
			return http.StatusBadRequest, catErr.Message
		case errors.Is(catErr, catalog.ErrForbidden):
			return http.StatusForbidden, catErr.Message
		case errors.Is(catErr, catalog.ErrNotFound):
			return http.StatusNotFound, catErr.Message
		case errors.Is(catErr, catalog.ErrConflict):
			return http.StatusConflict, catErr.Message
		}
	}

	return http.StatusInternalServerError, MsgInternal
}

// Write renders err. Unmapped errors are logged and answered with 500.
func Write(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, authStatus int) {
	status, msg := Status(err, authStatus)

	if status == http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
	} else {
		log.Info("request rejected", slog.Int("status", status), slog.String("reason", msg))
	}

	render.Status(r, status)
	render.JSON(w, r, resp.Error(msg))
}
