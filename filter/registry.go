package filter

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/obinnaokechukwu/ffbind/marshal"
)

// ErrUnknownClass is returned by New for an unregistered class name.
var ErrUnknownClass = errors.New("ffbind: unknown filter class")

// Factory constructs a filter from the host's init argument. The result
// must be acceptable to Adapt.
type Factory func(arg string) (any, error)

var (
	classesMu sync.RWMutex
	classes   = make(map[string]Factory)
)

// Register makes a filter class available by name. It panics if name is
// empty, already registered, or factory is nil.
func Register(name string, factory Factory) {
	classesMu.Lock()
	defer classesMu.Unlock()
	if name == "" || factory == nil {
		panic("filter: Register with empty name or nil factory")
	}
	if _, dup := classes[name]; dup {
		panic("filter: Register called twice for class " + name)
	}
	classes[name] = factory
}

// Classes returns the registered class names, sorted.
func Classes() []string {
	classesMu.RLock()
	defer classesMu.RUnlock()
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs the named class with arg and adapts it.
func New(env marshal.Env, class, arg string) (*Adapter, error) {
	classesMu.RLock()
	factory, ok := classes[class]
	classesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}
	user, err := factory(arg)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", class, err)
	}
	return Adapt(env, user)
}
