package autowire_test

import (
	"testing"

	"github.com/taskdeck/taskdeck/application/autowire"
	"github.com/taskdeck/taskdeck/application/core"
)

type storeComponent struct {
	*core.BaseComponent
}

type greeter interface {
	Name() string
}

type handlerComponent struct {
	*core.BaseComponent
	Store    *storeComponent `infra:"dep:store"`
	Greeter  greeter         `infra:"dep:store"`
	Optional *storeComponent `infra:"dep:missing?"`
}

func TestInjectAssignsTaggedFields(t *testing.T) {
	c := core.NewContainer()
	store := &storeComponent{BaseComponent: core.NewBaseComponent("store")}
	h := &handlerComponent{BaseComponent: core.NewBaseComponent("handler")}
	if err := c.Register("store", store); err != nil {
		t.Fatalf("register store failed: %v", err)
	}
	if err := c.Register("handler", h); err != nil {
		t.Fatalf("register handler failed: %v", err)
	}

	if err := autowire.InjectAll(c); err != nil {
		t.Fatalf("inject failed: %v", err)
	}
	if h.Store != store {
		t.Fatalf("pointer field not injected")
	}
	if h.Greeter == nil || h.Greeter.Name() != "store" {
		t.Fatalf("interface field not injected")
	}
	if h.Optional != nil {
		t.Fatalf("optional missing dependency must stay nil")
	}

	// injection extends the runtime dependency graph
	found := false
	for _, d := range h.Dependencies() {
		if d == "store" {
			found = true
		}
	}
	if !found {
		t.Fatalf("injected dependency not added to start order: %v", h.Dependencies())
	}
}

func TestInjectFailsOnMissingRequiredDep(t *testing.T) {
	c := core.NewContainer()
	h := &handlerComponent{BaseComponent: core.NewBaseComponent("handler")}
	if err := c.Register("handler", h); err != nil {
		t.Fatalf("register handler failed: %v", err)
	}
	if err := autowire.InjectAll(c); err == nil {
		t.Fatalf("expected error for missing required dependency")
	}
}
