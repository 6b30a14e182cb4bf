package rest

import (
	"context"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/sirupsen/logrus"
)

type loggerKeyType struct{}

var loggerKey loggerKeyType

// RequestLogger derives a request-scoped logger, tagged with a unique request id
// and the caller's address, and stores it in the request context.
func (e *Engine) RequestLogger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {

			reqUUID, err := uuid.NewV4()
			if err != nil {
				e.baseLogger.WithError(err).Error("can't generate a request UUID")
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			var logger = e.baseLogger.WithFields(logrus.Fields{
				"reqid":     reqUUID.String(),
				"remote-ip": request.RemoteAddr,
			})

			next.ServeHTTP(w, request.WithContext(context.WithValue(request.Context(), loggerKey, logger)))
		})
	}
}

// GetLogger returns the request-scoped logger, falling back to the standard one
// when the middleware wasn't applied, as in handler tests.
func GetLogger(request *http.Request) logrus.FieldLogger {
	if logger, ok := request.Context().Value(loggerKey).(logrus.FieldLogger); ok {
		return logger
	}
	return logrus.StandardLogger()
}
