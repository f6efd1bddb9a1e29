package middleware

import (
	"net/http"

	"github.com/mssola/useragent"

	"garita/pkg/requestcontext"
)

// Device parses the User-Agent into a compact platform/browser description
// and stores it in context. Guard stations are a mix of tablets and desktop
// browsers; the audit trail records which kind registered each event.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("User-Agent")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		ua := useragent.New(raw)
		name, version := ua.Browser()
		desc := ua.OS() + "/" + name
		if version != "" {
			desc += " " + version
		}
		if ua.Mobile() {
			desc += " (mobile)"
		}
		ctx := requestcontext.WithDevice(r.Context(), desc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
