// Package middleware provides HTTP middleware for the server.
package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"strings"
)

// DecompressMiddleware decompresses gzip-compressed request bodies.
// A body that is not valid gzip is passed through unchanged.
func DecompressMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Encoding") != "gzip" {
			next.ServeHTTP(w, r)
			return
		}

		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}

		gr, err := gzip.NewReader(bytes.NewReader(bodyBytes))
		if err != nil {
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			next.ServeHTTP(w, r)
			return
		}
		defer gr.Close()

		r.Body = gr
		r.Header.Del("Content-Encoding")
		r.ContentLength = -1

		next.ServeHTTP(w, r)
	})
}

// CompressMiddleware gzips text and JSON responses for clients that accept it.
func CompressMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Add("Vary", "Accept-Encoding")
		grw := &gzipResponseWriter{ResponseWriter: w}
		defer grw.Close()

		next.ServeHTTP(grw, r)
	})
}

// gzipResponseWriter holds the status code back until the first non-empty
// Write, so responses without a body are never gzipped.
type gzipResponseWriter struct {
	http.ResponseWriter
	writer  *gzip.Writer
	status  int
	started bool
}

func compressible(contentType string) bool {
	return strings.HasPrefix(contentType, "text/") ||
		strings.Contains(contentType, "application/json")
}

func bodyAllowed(status int) bool {
	return status != http.StatusNoContent && status != http.StatusNotModified && (status < 100 || status > 199)
}

func (w *gzipResponseWriter) start(b []byte) {
	w.started = true
	if w.status == 0 {
		w.status = http.StatusOK
	}
	if len(b) > 0 && bodyAllowed(w.status) {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", http.DetectContentType(b))
		}
		if compressible(w.Header().Get("Content-Type")) {
			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Del("Content-Length")
			w.writer = gzip.NewWriter(w.ResponseWriter)
		}
	}
	w.ResponseWriter.WriteHeader(w.status)
}

func (w *gzipResponseWriter) WriteHeader(code int) {
	if w.started || w.status != 0 {
		return
	}
	w.status = code
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if !w.started {
		if len(b) == 0 {
			return 0, nil
		}
		w.start(b)
	}
	if w.writer == nil {
		return w.ResponseWriter.Write(b)
	}
	return w.writer.Write(b)
}

// Close flushes the gzip stream, or sends a status that was set without a body.
func (w *gzipResponseWriter) Close() error {
	if !w.started {
		if w.status != 0 {
			w.start(nil)
		}
		return nil
	}
	if w.writer != nil {
		return w.writer.Close()
	}
	return nil
}
