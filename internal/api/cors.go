package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// corsPolicy answers preflights for dashboards served from other hosts.
type corsPolicy struct {
	origin  string
	methods []string
	headers []string
	maxAge  time.Duration
}

var defaultCORS = corsPolicy{
	origin:  "*",
	methods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
	headers: []string{"Content-Type", "Authorization", "Accept", "Last-Event-ID"},
	maxAge:  24 * time.Hour,
}

// wrap sets the CORS headers on every response and ends OPTIONS requests
// with 204 before routing, so preflights never reach auth.
func (p corsPolicy) wrap(next http.Handler) http.Handler {
	methods := strings.Join(p.methods, ", ")
	headers := strings.Join(p.headers, ", ")
	maxAge := strconv.Itoa(int(p.maxAge.Seconds()))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", p.origin)
		h.Set("Access-Control-Allow-Methods", methods)
		h.Set("Access-Control-Allow-Headers", headers)
		h.Set("Access-Control-Max-Age", maxAge)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
