package login

import "context"

// Navigator is consulted before the view loads target. Returning true suppresses
// the navigation.
type Navigator func(target string) bool

// Browser presents the provider's login page.
type Browser interface {
	Open(ctx context.Context, url string, navigate Navigator) (View, error)
}

// View is one open login page.
type View interface {
	// Dismissed is closed when the user closes the view without finishing.
	Dismissed() <-chan struct{}
	// Close tears the view down. It is safe to call more than once.
	Close() error
}
