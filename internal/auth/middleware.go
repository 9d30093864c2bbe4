package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// Middleware extracts the Bearer API key from the Authorization header and,
// when it resolves to an active PJT provider, injects the provider context
// into the request. A missing or unknown key lets the request proceed
// without a provider context; handlers decide whether that is acceptable.
func Middleware(authService *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := extractBearerKey(r.Header.Get("Authorization"))
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			provider, err := authService.GetProviderByAPIKey(r.Context(), apiKey)
			if err != nil {
				slog.Warn("failed to resolve sync API key", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ProviderContextKey, &ProviderContext{Provider: provider})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireProvider guards endpoints that only authenticated PJT providers may
// call. Requests without a resolvable provider context get a 401.
func RequireProvider(authService *Service) func(http.Handler) http.Handler {
	authMiddleware := Middleware(authService)

	return func(next http.Handler) http.Handler {
		return authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetProviderContext(r.Context()) == nil {
				slog.Warn("provider authentication required", "method", r.Method, "path", r.URL.Path)
				http.Error(w, "provider authentication required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func extractBearerKey(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
}
