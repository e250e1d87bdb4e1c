package crawl

import (
	"github.com/pageparse/crawler/internal/backend"
)

// Provider owns the backend handle shared by every Session of one crawler
// type. Connecting to a browser server is expensive, so the handle is built
// lazily by Factory and then reused for the life of the process unless Reset.
//
// A Provider is not safe for concurrent use: sessions drive a single shared
// handle sequentially. Callers that crawl in parallel must give each worker
// its own Provider (or an instance handle via WithHandle).
type Provider struct {
	// Factory builds the handle on first use. It may return nil when the
	// backend is unreachable; Ensure will retry on the next call.
	Factory func() backend.Handle

	handle backend.Handle
}

// NewProvider builds a Provider around a handle factory.
func NewProvider(factory func() backend.Handle) *Provider {
	return &Provider{Factory: factory}
}

// Ensure returns the shared handle, invoking the factory only when no handle
// is held yet.
func (p *Provider) Ensure() backend.Handle {
	if p == nil {
		return nil
	}
	if p.handle == nil && p.Factory != nil {
		p.handle = p.Factory()
	}
	return p.handle
}

// Set stores h as the shared handle, bypassing the factory. Tests use it to
// inject fakes.
func (p *Provider) Set(h backend.Handle) {
	p.handle = h
}

// Reset drops the shared handle so the next Ensure rebuilds it.
func (p *Provider) Reset() {
	p.handle = nil
}
