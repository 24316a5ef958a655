package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Container is the component registry. It knows nothing about
// lifecycle; it stores components and computes their start order.
type Container struct {
	mu         sync.RWMutex
	components map[string]Component
	configs    map[string]interface{}
}

func NewContainer() *Container {
	return &Container{
		components: make(map[string]Component),
		configs:    make(map[string]interface{}),
	}
}

// Register adds a component under a unique name.
func (c *Container) Register(name string, component Component) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.components[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}
	c.components[name] = component
	return nil
}

// Resolve looks up a component by name.
func (c *Container) Resolve(name string) (Component, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	comp, exists := c.components[name]
	if !exists {
		return nil, fmt.Errorf("component %s not found", name)
	}
	return comp, nil
}

// ListRegistered returns a snapshot of all registered components.
func (c *Container) ListRegistered() map[string]Component {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]Component, len(c.components))
	for name, comp := range c.components {
		out[name] = comp
	}
	return out
}

func (c *Container) SetConfig(name string, config interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configs[name] = config
}

func (c *Container) GetConfig(name string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cfg, exists := c.configs[name]
	return cfg, exists
}

// SortComponentsByDependencies returns components in topological start
// order. A declared dependency that is not registered is an error, as
// is any cycle. Root names are visited alphabetically so the order is
// deterministic.
func (c *Container) SortComponentsByDependencies() ([]Component, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	done := make(map[string]bool)
	inPath := make(map[string]bool)
	ordered := make([]Component, 0, len(c.components))

	var visit func(string) error
	visit = func(name string) error {
		if inPath[name] {
			return fmt.Errorf("circular dependency detected involving component %s", name)
		}
		if done[name] {
			return nil
		}
		comp, exists := c.components[name]
		if !exists {
			return fmt.Errorf("component %s not found", name)
		}
		inPath[name] = true
		for _, dep := range comp.Dependencies() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		inPath[name] = false
		done[name] = true
		ordered = append(ordered, comp)
		return nil
	}

	names := make([]string, 0, len(c.components))
	for name := range c.components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// Replace swaps a registered but not yet started component. Intended
// for tests that substitute stubs.
func (c *Container) Replace(name string, component Component) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	existing, exists := c.components[name]
	if !exists {
		return fmt.Errorf("component %s not registered", name)
	}
	if existing.IsActive() {
		return fmt.Errorf("component %s is active; cannot replace", name)
	}
	c.components[name] = component
	return nil
}

// ValidateDependencies checks that every declared dependency is
// registered and returns the start order without starting anything.
func (c *Container) ValidateDependencies() ([]Component, error) {
	c.mu.RLock()
	missing := make(map[string][]string)
	for name, comp := range c.components {
		for _, dep := range comp.Dependencies() {
			if _, ok := c.components[dep]; !ok {
				missing[name] = append(missing[name], dep)
			}
		}
	}
	c.mu.RUnlock()
	if len(missing) > 0 {
		var parts []string
		for name, deps := range missing {
			parts = append(parts, fmt.Sprintf("%s -> [%s]", name, strings.Join(deps, ",")))
		}
		return nil, fmt.Errorf("missing component dependencies: %s", strings.Join(parts, "; "))
	}
	// the sort doubles as cycle detection
	return c.SortComponentsByDependencies()
}
