package core

import (
	"testing"
)

func TestContainerSortsByDependencies(t *testing.T) {
	c := NewContainer()
	mustRegister := func(name string, deps ...string) {
		if err := c.Register(name, NewBaseComponent(name, deps...)); err != nil {
			t.Fatalf("register %s failed: %v", name, err)
		}
	}
	mustRegister("db")
	mustRegister("dao", "db")
	mustRegister("svc", "dao")
	mustRegister("http", "svc")

	ordered, err := c.SortComponentsByDependencies()
	if err != nil {
		t.Fatalf("sort failed: %v", err)
	}
	pos := map[string]int{}
	for i, comp := range ordered {
		pos[comp.Name()] = i
	}
	if !(pos["db"] < pos["dao"] && pos["dao"] < pos["svc"] && pos["svc"] < pos["http"]) {
		t.Fatalf("bad start order: %v", pos)
	}
}

func TestContainerDetectsCycles(t *testing.T) {
	c := NewContainer()
	_ = c.Register("a", NewBaseComponent("a", "b"))
	_ = c.Register("b", NewBaseComponent("b", "a"))
	if _, err := c.SortComponentsByDependencies(); err == nil {
		t.Fatalf("expected cycle error")
	}
}

func TestContainerMissingDependencyFails(t *testing.T) {
	c := NewContainer()
	_ = c.Register("a", NewBaseComponent("a", "ghost"))
	if _, err := c.SortComponentsByDependencies(); err == nil {
		t.Fatalf("expected missing dependency error")
	}
}

func TestContainerRejectsDuplicates(t *testing.T) {
	c := NewContainer()
	if err := c.Register("a", NewBaseComponent("a")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := c.Register("a", NewBaseComponent("a")); err == nil {
		t.Fatalf("duplicate register must fail")
	}
}

func TestContainerReplaceSwapsStub(t *testing.T) {
	c := NewContainer()
	if err := c.Register("a", NewBaseComponent("a")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	stub := NewBaseComponent("a")
	if err := c.Replace("a", stub); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	got, err := c.Resolve("a")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != Component(stub) {
		t.Fatalf("replace did not swap the instance")
	}
}
