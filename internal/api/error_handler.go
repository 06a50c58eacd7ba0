package api

import (
	"net/http"

	"github.com/vytor/escaperoom/internal/errors"
	"github.com/vytor/escaperoom/internal/logger"
)

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	appErr, ok := errors.As(err)
	if !ok {
		// Wrap unknown errors as internal errors
		appErr = errors.NewInternalError(err)
	}

	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else if appErr.Status >= 400 {
		log.Warn("client error: %v", appErr)
	} else {
		log.Debug("error: %v", appErr)
	}

	message := appErr.Message
	if appErr.Status >= 500 {
		// Underlying store errors stay in the log.
		message = http.StatusText(appErr.Status)
	}

	writeJSON(w, appErr.Status, map[string]any{
		"error": map[string]any{
			"code":    appErr.Code,
			"message": message,
		},
	})
}
