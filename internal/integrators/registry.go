package integrators

import (
	"fmt"
	"sort"
)

var registry = map[string]func() Integrator{
	"euler":    func() Integrator { return NewEuler() },
	"leapfrog": func() Integrator { return NewLeapfrog() },
	"rk4":      func() Integrator { return NewRK4() },
}

// Lookup returns a fresh integrator by name.
func Lookup(name string) (Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
