// Package registry holds the active GraphQL handler and swaps it at runtime
// when a new set of data sources is registered. Built handlers travel over a
// channel to the swap loop, so every accepted registration is applied in
// order.
package registry

import (
	"io"
	"net/http"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// BuildFunc rebuilds the handler from a registration request body.
type BuildFunc func(body []byte) (http.Handler, error)

// Registry serves the currently registered handler and accepts replacements
// over HTTP.
type Registry struct {
	current      atomic.Value
	registerChan chan http.Handler
	build        BuildFunc
	logger       *zap.Logger

	// mu guards registerChan against sends after Close.
	mu     sync.Mutex
	closed bool
}

// New creates a registry serving initial until a registration replaces it.
func New(initial http.Handler, build BuildFunc, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Registry{
		registerChan: make(chan http.Handler),
		build:        build,
		logger:       logger,
	}
	r.current.Store(initial)
	return r
}

// Start applies registrations until Close is called. Run it on its own
// goroutine.
func (r *Registry) Start() {
	for next := range r.registerChan {
		r.current.Store(next)
		r.logger.Info("registered new graphql handler")
	}
}

// Close stops the registration loop. Registrations arriving afterwards are
// rejected.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	close(r.registerChan)
}

// Active returns the handler registered last.
func (r *Registry) Active() http.Handler {
	return r.current.Load().(http.Handler)
}

// ServeHTTP delegates to the active handler, so the registry can be mounted
// directly on the GraphQL endpoint.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.Active().ServeHTTP(w, req)
}

// HandleRegistration accepts a POST with a source-list body, rebuilds the
// handler, and hands it to the swap loop.
func (r *Registry) HandleRegistration(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	next, err := r.build(body)
	if err != nil {
		r.logger.Warn("registration rejected", zap.Error(err))
		http.Error(w, "Failed to build handler: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		http.Error(w, "Registry is shut down", http.StatusServiceUnavailable)
		return
	}
	r.registerChan <- next
	r.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}
