package dashboard

import (
	"sync"

	"github.com/google/uuid"

	"sapdash/internal/metrics"
)

// MemoryRegistry keeps resources in memory until they are released.
type MemoryRegistry struct {
	mu        sync.RWMutex
	resources map[string]*Resource
	metrics   *metrics.Metrics
}

// NewMemoryRegistry creates an empty registry. m may be nil.
func NewMemoryRegistry(m *metrics.Metrics) *MemoryRegistry {
	return &MemoryRegistry{
		resources: make(map[string]*Resource),
		metrics:   m,
	}
}

// Create registers a copy of content under a new "blob:" handle.
func (r *MemoryRegistry) Create(content []byte, mediaType, filename string) (*Resource, error) {
	res := &Resource{
		Handle:    "blob:" + uuid.NewString(),
		Filename:  filename,
		MediaType: mediaType,
		Content:   append([]byte(nil), content...),
	}

	r.mu.Lock()
	r.resources[res.Handle] = res
	active := len(r.resources)
	r.mu.Unlock()

	r.metrics.SetActiveResources(active)
	return res, nil
}

// Lookup returns the resource registered under handle.
func (r *MemoryRegistry) Lookup(handle string) (*Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[handle]
	return res, ok
}

// Release drops the resource. Releasing an unknown handle is a no-op.
func (r *MemoryRegistry) Release(handle string) {
	r.mu.Lock()
	delete(r.resources, handle)
	active := len(r.resources)
	r.mu.Unlock()

	r.metrics.SetActiveResources(active)
}

// Active returns the number of unreleased resources.
func (r *MemoryRegistry) Active() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resources)
}
