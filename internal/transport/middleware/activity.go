package middleware

import (
	"net/http"
	"strings"
)

// ActivityRecorder is told about every operator interaction.
type ActivityRecorder interface {
	Activity() bool
}

// Activity counts each console request as operator activity, resetting the idle deadline.
// Requests under the skip prefixes (metrics scrapes, health probes) are not activity.
func Activity(rec ActivityRecorder, skip ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !skipped(r.URL.Path, skip) {
				rec.Activity()
			}
			next.ServeHTTP(w, r)
		})
	}
}

func skipped(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
