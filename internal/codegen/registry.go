package codegen

import (
	"fmt"
	"sync"
)

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Instance is one generated object in the build graph.
type Instance struct {
	// ID is the declared identifier; ID.Class is the concrete class.
	ID ID

	// Config is the validated configuration record the instance was built from.
	Config map[string]any

	// Registrations lists the App.register_* kinds applied, in order.
	Registrations []string

	// Calls lists the setup calls made on the instance, in order.
	Calls []Call
}

// Class returns the concrete class of the instance.
func (i *Instance) Class() *Class {
	return i.ID.Class
}

// FindCall returns the first setup call to method.
func (i *Instance) FindCall(method string) (Call, bool) {
	for _, c := range i.Calls {
		if c.Method == method {
			return c, true
		}
	}
	return Call{}, false
}

// Call is a method call emitted during setup.
type Call struct {
	Method string
	Args   []Arg
}

// Registry is the append-only catalogue of generated instances.
//
// Instances are kept in declaration order. An ID can be added once; there is
// no removal.
//
// All public methods are thread-safe.
type Registry struct {
	mu     sync.RWMutex
	byID   map[string]*Instance
	order  []*Instance
	logger Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]*Instance),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Add records a new instance.
// Returns ErrDuplicateID if an instance with the same ID already exists.
func (r *Registry) Add(inst *Instance) error {
	if inst == nil || inst.ID.Name == "" || inst.ID.Class == nil {
		return ErrInvalidInstance
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byID[inst.ID.Name]; ok {
		return fmt.Errorf("%w: %q already declared as %s", ErrDuplicateID, inst.ID.Name, existing.Class())
	}
	r.byID[inst.ID.Name] = inst
	r.order = append(r.order, inst)

	r.logger.Debug("instance registered", "id", inst.ID.Name, "class", inst.Class().FullName())
	return nil
}

// Get returns the instance with the given ID name.
func (r *Registry) Get(name string) (*Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.byID[name]
	return inst, ok
}

// Instances returns all instances in declaration order.
func (r *Registry) Instances() []*Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Instance, len(r.order))
	copy(out, r.order)
	return out
}

// ByClass returns the instances whose class is or derives from class,
// in declaration order.
func (r *Registry) ByClass(class *Class) []*Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Instance
	for _, inst := range r.order {
		if inst.Class().Inherits(class) {
			out = append(out, inst)
		}
	}
	return out
}

// Len returns the number of registered instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
