// Package oauth holds the outbound half of social login: building the
// provider's authorize URL and trading the callback code for a profile.
// State handling, member creation and token issuance stay in the services.
package oauth

import "context"

// Profile is the subset of a provider account the directory needs.
type Profile struct {
	// ProviderID is the provider's stable user id, unique per platform.
	ProviderID string
	Email      string
	Name       string
}

// Provider is one social login backend.
type Provider interface {
	// Platform names the provider, matching the domain platform constants.
	Platform() string

	// AuthorizeURL builds the URL the browser is sent to, carrying state.
	AuthorizeURL(state string) string

	// ExchangeCode trades the callback's authorization code for the
	// account profile.
	ExchangeCode(ctx context.Context, code string) (Profile, error)
}
