// Package middleware provides composable wrappers around a RunStore:
// encryption at rest and output redaction.
package middleware

import "github.com/aretw0/gantry/pkg/ports"

// Middleware wraps a RunStore with additional behavior.
type Middleware func(next ports.RunStore) ports.RunStore

// Chain applies middlewares so the first listed is the outermost.
func Chain(store ports.RunStore, mws ...Middleware) ports.RunStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
