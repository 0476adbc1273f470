package middleware

import (
	"encoding/json"
	"mime"
	"net/http"
	"runtime/debug"
	"strings"

	"folio/app/logger"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/handlers"
)

// Logger logs method, path, status and duration of each request
func Logger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			if m.Code >= http.StatusInternalServerError {
				log.Warn("%s %s %d took %s", r.Method, r.URL.Path, m.Code, m.Duration)
				return
			}
			log.Info("%s %s %d took %s", r.Method, r.URL.Path, m.Code, m.Duration)
		})
	}
}

// Recoverer recovers from panics, logs them and answers 500
func Recoverer(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					log.Error("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, err, debug.Stack())
					WriteError(w, http.StatusInternalServerError, "Internal Server Error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// ContentTypeJSON sets the Content-Type header to application/json for API routes
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsAPIPath(r.URL.Path) {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// RequireJSON rejects request bodies that are not declared as JSON with 415.
// Requests without a body, such as a share, pass through.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hasBody(r) {
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "application/json" {
				WriteError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// CORS allows the given browser origins to call the API with credentials.
func CORS(origins []string) func(http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.AllowCredentials(),
	)
}

// IsAPIPath reports whether path is served by the JSON API.
func IsAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	}
	return false
}

// WriteError answers with status and a {"error": message} JSON body.
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
