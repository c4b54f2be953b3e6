package llm

import "context"

// Provider is the minimal completion contract the engine needs. A request
// carries a system framing and a user context; the response is raw text
// that the caller decodes.
//
// Implementations wrap whatever upstream serves the capability; the
// engine never depends on a concrete vendor.
type Provider interface {
	// Complete generates text for the given system framing and user
	// context.
	Complete(ctx context.Context, system, user string) (string, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context, system, user string) (string, error)

// Complete implements Provider.
func (f ProviderFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}
