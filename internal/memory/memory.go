// Package memory implements the recall/store/reward engine of spec.md
// §4.3-§4.5 on top of the store.Store interface.
package memory

import (
	"github.com/untoldecay/matrix/internal/fingerprint"
	"github.com/untoldecay/matrix/internal/store"
)

// Engine ties the store, the embedding provider, and repo fingerprinting
// together into the recall/store/reward operations.
type Engine struct {
	db          store.Store
	Fingerprint *fingerprint.Fingerprinter
}

// New builds a memory Engine over an already-opened store.
func New(s store.Store) *Engine {
	return &Engine{db: s, Fingerprint: fingerprint.New(s)}
}
