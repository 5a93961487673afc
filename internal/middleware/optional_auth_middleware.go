package middleware

import (
	"crypto/rsa"
	"net/http"
)

// OptionalAuthMiddleware is identical to AuthMiddleware except that it lets
// the request through anonymously if *no* token is present. A token that is
// present but invalid is still rejected.
func OptionalAuthMiddleware(pub *rsa.PublicKey) func(http.Handler) http.Handler {
	strict := AuthMiddleware(pub)
	return func(next http.Handler) http.Handler {
		authed := strict(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenStr, _ := extractAccessToken(r); tokenStr == "" {
				next.ServeHTTP(w, r) // unauthenticated, allowed
				return
			}
			authed.ServeHTTP(w, r)
		})
	}
}
