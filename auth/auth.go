// Package auth abstracts the hosted identity provider. The rest of the
// application only ever asks for the current session and its bearer token.
package auth

import "context"

// Session is an active sign-in from which a bearer token can be obtained.
type Session interface {
	// Token returns the bearer token for API calls. An empty token means
	// the session can no longer authenticate requests.
	Token(ctx context.Context) (string, error)
}

// Provider exposes the identity provider's state to the application.
type Provider interface {
	// Loaded reports whether the provider finished initializing. All other
	// methods are meaningless until it returns true.
	Loaded() bool

	// Session returns the current session, or nil when signed out.
	Session() Session

	// SignOut ends the current session.
	SignOut() error
}
