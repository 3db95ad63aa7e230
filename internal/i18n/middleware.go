package i18n

import "net/http"

// Middleware injects a localizer into every request context. The request's
// Accept-Language header takes priority; defaultLang is the fallback.
func Middleware(defaultLang string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			langs := []string{}
			if q := r.URL.Query().Get("lang"); q != "" {
				langs = append(langs, q)
			}
			if al := r.Header.Get("Accept-Language"); al != "" {
				langs = append(langs, al)
			}
			langs = append(langs, defaultLang)

			loc := NewLocalizer(langs...)
			ctx := WithLocalizer(r.Context(), loc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
