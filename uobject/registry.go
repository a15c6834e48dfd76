package uobject

import "sync"

// Factory constructs a zero-valued object of a registered class.
type Factory func() Object

// Registry maps class names to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds className to factory, replacing any previous binding.
func (r *Registry) Register(className string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[className] = factory
}

// Lookup returns the factory for className.
func (r *Registry) Lookup(className string) (Factory, bool) {
	if r == nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[className]

	return f, ok
}

// Construct builds an object for the first registered class in chain, which lists a
// class followed by its super classes. It returns a Shell and false when no class in
// the chain is registered.
func (r *Registry) Construct(chain []string) (Object, bool) {
	for _, name := range chain {
		if f, ok := r.Lookup(name); ok {
			if obj := f(); obj != nil {
				return obj, true
			}
		}
	}

	return &Shell{}, false
}
