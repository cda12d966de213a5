package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

// Failure is the error body the commerce API answers with:
// {"success": false, "message": "..."}.
type Failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Confirmation is the body of an action that returns no resource.
type Confirmation struct {
	Success bool `json:"success"`
}

// WriteJSON writes v as JSON with the given status code.
// Headers are already sent when encoding fails, so the error is dropped.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteFailure writes a {success:false} body with message.
func WriteFailure(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Failure{Success: false, Message: message})
}

// WriteSuccess writes {"success": true}.
func WriteSuccess(w http.ResponseWriter) {
	WriteJSON(w, http.StatusOK, Confirmation{Success: true})
}

// WriteError maps err onto a failure body. An AppError keeps its status and
// message; anything unclassified is logged and reported as a 500. The
// request-scoped logger from RequestLogger is preferred over fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteFailure(w, http.StatusBadRequest, valErr.Error())
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		WriteFailure(w, appErr.Status, appErr.Message)
		return
	}

	status := apperrors.HTTPStatus(err)
	message := "Something went wrong"
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		message = "Resource not found"
	case apperrors.KindInvalidInput:
		message = err.Error()
	case apperrors.KindUnauthenticated:
		message = "Protected route, Oauth2 Bearer token not found"
	}

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteFailure(w, status, message)
}
