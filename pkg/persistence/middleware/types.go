// Package middleware wraps record stores with protection for sensitive fields:
// encryption at rest and masked read-only views.
package middleware

import "github.com/aretw0/recipient/pkg/ports"

// Middleware allows wrapping a RecipientStore to add behavior.
type Middleware func(ports.RecipientStore) ports.RecipientStore

// Chain applies mws to store. The first middleware is the outermost.
func Chain(store ports.RecipientStore, mws ...Middleware) ports.RecipientStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
