package auth

import (
	"context"

	"github.com/dandeat/barkir-core/internal/pjt"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ProviderContextKey is the key for storing the ProviderContext in request context
	ProviderContextKey ContextKey = "providerContext"
)

// ProviderContext is the authenticated PJT provider on a sync request. It is
// a transient context injected by the auth middleware after the API key
// lookup succeeds.
type ProviderContext struct {
	*pjt.Provider
}

// GetProviderContext extracts the ProviderContext from a request context.
// Returns nil if no provider is authenticated on the request.
func GetProviderContext(ctx context.Context) *ProviderContext {
	pc, ok := ctx.Value(ProviderContextKey).(*ProviderContext)
	if !ok {
		return nil
	}
	return pc
}
