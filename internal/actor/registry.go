package actor

import (
	"sync"
	"time"
)

// Registry resolves one Client per site UUID. Resolution happens once; the
// handle is cached for the life of the process.
type Registry struct {
	baseURL string
	timeout time.Duration

	mu      sync.Mutex
	clients map[string]*Client
}

// NewRegistry creates a registry that builds clients against baseURL.
func NewRegistry(baseURL string, timeout time.Duration) *Registry {
	return &Registry{
		baseURL: baseURL,
		timeout: timeout,
		clients: make(map[string]*Client),
	}
}

// Resolve returns the cached client for siteUUID, creating it on first use.
func (r *Registry) Resolve(siteUUID string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[siteUUID]; ok {
		return c
	}
	c := NewClient(r.baseURL, siteUUID, r.timeout)
	r.clients[siteUUID] = c
	return c
}

// Size returns the number of resolved clients.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
