// Package corsmw provides permissive cross-origin headers for the public
// tracking endpoints, which are called from arbitrary origins by the
// in-page tracker.
package corsmw

import "net/http"

// Permissive returns middleware that adds wide-open CORS headers to every
// response and answers OPTIONS preflight requests with 200 and no body.
func Permissive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
