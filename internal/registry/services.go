package registry

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
)

// ErrServiceNotFound is returned by Get when no service carries the name.
var ErrServiceNotFound = errors.New("service not found")

// ServiceRegistry is a named lookup for cross-component services (the
// entity recorder, snapshot provider and the like). Re-registering a name
// overwrites the previous entry with a warning; lookups under a missing
// name fail with ErrServiceNotFound.
type ServiceRegistry struct {
	mu       sync.RWMutex
	services map[string]any
}

func NewServiceRegistry() *ServiceRegistry {
	return &ServiceRegistry{services: make(map[string]any)}
}

func (r *ServiceRegistry) Register(name string, svc any) error {
	if name == "" {
		return fmt.Errorf("service name cannot be empty")
	}
	if svc == nil {
		return fmt.Errorf("service %s cannot be nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.services[name]; exists {
		log.Printf("Warning: service %s already registered, overwriting", name)
	}
	r.services[name] = svc
	return nil
}

func (r *ServiceRegistry) Get(name string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.services[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}
	return svc, nil
}

func (r *ServiceRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.services[name]
	return ok
}

func (r *ServiceRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
