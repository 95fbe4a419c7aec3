package middleware

import (
	"net/http"
	"strings"

	"marathon-readiness/toolkit/internal/common"
	appctx "marathon-readiness/toolkit/internal/context"
	"marathon-readiness/toolkit/internal/db/repositories"
)

// AuthMiddleware guards the trendline state routes. Two schemes are
// accepted: a Bearer token issued by the TokenService, whose subject is the
// user ID, or an API key (embedding clients) paired with an X-User-Id
// header. keysRepo may be nil when no key database is configured; the API
// key scheme is then rejected outright.
func AuthMiddleware(tokens *common.TokenService, keysRepo *repositories.KeysRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			authHeader := r.Header.Get("Authorization")
			apiKey := r.Header.Get("X-API-Key")

			var userID string

			switch {
			case strings.HasPrefix(authHeader, "Bearer "):
				sub, err := tokens.Validate(strings.TrimPrefix(authHeader, "Bearer "))
				if err != nil {
					http.Error(w, "Unauthorized. Invalid Token", http.StatusUnauthorized)
					return
				}
				userID = sub

			case apiKey != "":
				if keysRepo == nil {
					http.Error(w, "Unauthorized. API Keys Not Configured", http.StatusUnauthorized)
					return
				}
				keyRes, err := keysRepo.GetStatus(r.Context(), apiKey)
				if err != nil {
					http.Error(w, "Unauthorized. Invalid API Key", http.StatusUnauthorized)
					return
				}
				if !keyRes.Status {
					http.Error(w, "Unauthorized. Inactive API Key", http.StatusUnauthorized)
					return
				}
				userID = r.Header.Get("X-User-Id")
				if userID == "" {
					http.Error(w, "Unauthorized. Missing X-User-Id", http.StatusUnauthorized)
					return
				}

			default:
				http.Error(w, "Unauthorized. Missing Credentials", http.StatusUnauthorized)
				return
			}

			ctx := appctx.SetUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
