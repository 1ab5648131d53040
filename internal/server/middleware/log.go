package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const maxLoggedBody = 1024

// LogMiddleware logs every request with its status, size, duration and
// (for text bodies) the first maxLoggedBody bytes of the request body.
// The request id is taken from chi's RequestID middleware when present.
func LogMiddleware(logger *zap.SugaredLogger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			var bodyBytes []byte
			if r.Body != nil {
				var err error
				bodyBytes, err = io.ReadAll(r.Body)
				if err != nil {
					logger.Errorw("failed to read request body", "error", err)
				}
				r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			}

			lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(lrw, r)

			logger.Infow("request",
				"request_id", chiMiddleware.GetReqID(r.Context()),
				"method", r.Method,
				"uri", r.RequestURI,
				"status", lrw.statusCode,
				"size", lrw.size,
				"duration", time.Since(start),
				"body", loggedBody(bodyBytes),
			)
		})
	}
}

func loggedBody(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	if !isProbablyText(b) {
		return "<skipped>"
	}
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "...<truncated>"
	}
	return string(b)
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// isProbablyText accepts valid UTF-8 without NUL bytes; chat messages are rarely ASCII.
func isProbablyText(b []byte) bool {
	return utf8.Valid(b) && !bytes.ContainsRune(b, 0)
}
