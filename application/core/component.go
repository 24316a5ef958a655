package core

import (
	"context"
	"fmt"
)

// Component is the lifecycle contract every managed unit implements.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	HealthCheck() error
	Dependencies() []string
	IsActive() bool
}

// BaseComponent carries the bookkeeping shared by all components:
// the name, the active flag and the declared dependencies.
type BaseComponent struct {
	name   string
	active bool
	deps   []string
}

func NewBaseComponent(name string, deps ...string) *BaseComponent {
	return &BaseComponent{name: name, deps: deps}
}

func (c *BaseComponent) Name() string { return c.name }

func (c *BaseComponent) Dependencies() []string { return c.deps }

func (c *BaseComponent) IsActive() bool { return c.active }

func (c *BaseComponent) SetActive(active bool) { c.active = active }

func (c *BaseComponent) Start(ctx context.Context) error {
	c.active = true
	return nil
}

func (c *BaseComponent) Stop(ctx context.Context) error {
	c.active = false
	return nil
}

func (c *BaseComponent) HealthCheck() error {
	if !c.active {
		return fmt.Errorf("component %s is not active", c.name)
	}
	return nil
}

// AddDependencies appends extra start-order constraints, skipping
// duplicates. Must be called before the lifecycle manager starts the
// component.
func (c *BaseComponent) AddDependencies(deps ...string) {
	for _, d := range deps {
		known := false
		for _, existing := range c.deps {
			if existing == d {
				known = true
				break
			}
		}
		if !known {
			c.deps = append(c.deps, d)
		}
	}
}
