package registry

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/taskdeck/taskdeck/application/autowire"
	"github.com/taskdeck/taskdeck/application/config"
	"github.com/taskdeck/taskdeck/application/core"
)

// BuilderFunc returns (enabled, component, error). enabled=false skips registration.
type BuilderFunc func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error)

// Builder holds metadata.
type Builder struct {
	Name       string         // final component name (may be inferred for auto builders)
	Fn         BuilderFunc    // build function
	Auto       bool           // auto builders: infer name + build-time deps from tags
	Deps       []string       // build-time deps used to order builders
	prebuilt   core.Component // cached component instance for name inference
	preEnabled bool           // cached enabled flag
}

var builders []*Builder

func findBuilder(name string) *Builder {
	for _, b := range builders {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Register registers a component builder with explicit name (no auto inference).
func Register(name string, fn BuilderFunc) {
	if name == "" {
		panic("registry: empty name in Register")
	}
	if findBuilder(name) != nil {
		panic("registry: duplicate builder name " + name)
	}
	builders = append(builders, &Builder{Name: name, Fn: fn, Auto: false})
}

// RegisterWithDeps registers a named builder with explicit build-order
// dependencies on other builders.
func RegisterWithDeps(name string, deps []string, fn BuilderFunc) {
	if name == "" {
		panic("registry: empty name in RegisterWithDeps")
	}
	if findBuilder(name) != nil {
		panic("registry: duplicate builder name " + name)
	}
	builders = append(builders, &Builder{Name: name, Fn: fn, Auto: false, Deps: deps})
}

// RegisterAuto registers a builder whose component name and build-time dependencies are inferred.
// The builder function MUST construct a component whose Name() returns a stable non-empty value.
func RegisterAuto(fn BuilderFunc) { builders = append(builders, &Builder{Auto: true, Fn: fn}) }

// BuildAndRegisterAll builds all registered builders applying:
// 1. For auto builders: pre-build to infer name and cache instance.
// 2. Infer build-time dependencies from struct tags for auto builders.
// 3. Topologically sort builders by deps.
// 4. Build (reuse cached auto instance) and register components.
func BuildAndRegisterAll(cfg *config.AppConfig, c *core.Container) error {
	// Step 1: name inference for auto builders
	for _, b := range builders {
		if !b.Auto || b.Name != "" {
			continue
		}
		enabled, comp, err := b.Fn(cfg, c)
		if err != nil || comp == nil {
			b.preEnabled, b.prebuilt = false, nil
			continue
		}
		b.preEnabled, b.prebuilt = enabled, comp
		if !enabled {
			continue
		}
		name := comp.Name()
		if name == "" {
			return fmt.Errorf("auto builder produced unnamed component")
		}
		if existing := findBuilder(name); existing != nil && existing != b {
			return fmt.Errorf("duplicate inferred name: %s", name)
		}
		b.Name = name
	}
	// Step 2: infer deps for auto builders
	for _, b := range builders {
		if !b.Auto || len(b.Deps) > 0 || b.Name == "" {
			continue
		}
		comp := b.prebuilt
		if comp == nil || !b.preEnabled {
			continue
		}
		raw := inferTagDependencies(comp)
		var filtered []string
		for _, d := range raw {
			if findBuilder(d) != nil {
				filtered = append(filtered, d)
			}
		}
		b.Deps = filtered
	}
	// Step 3: topological sort
	ordered, err := topoSortBuilders(builders)
	if err != nil {
		return err
	}
	// Step 4: build & register
	for _, b := range ordered {
		var enabled bool
		var comp core.Component
		if b.Auto {
			// reuse cached instance to avoid a double build
			enabled, comp = b.preEnabled, b.prebuilt
		} else {
			enabled, comp, err = b.Fn(cfg, c)
			if err != nil {
				return fmt.Errorf("build %s failed: %w", b.Name, err)
			}
		}
		if !enabled || comp == nil {
			continue
		}
		if err := c.Register(b.Name, comp); err != nil {
			return fmt.Errorf("register %s failed: %w", b.Name, err)
		}
	}
	applyRuntimeDepExtensions(c)
	return autowire.InjectAll(c)
}

// inferTagDependencies extracts component names from `infra:"dep:<name>"`
// field tags. The optional marker "?" is stripped here since build order
// only cares about the name.
func inferTagDependencies(comp core.Component) []string {
	v := reflect.ValueOf(comp)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	t := v.Type()
	seen := map[string]bool{}
	var names []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		tag := f.Tag.Get("infra")
		if !strings.HasPrefix(tag, "dep:") {
			continue
		}
		name := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(tag, "dep:")), "?")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// topoSortBuilders orders builders so every builder runs after the builders
// it depends on. Deps pointing at unknown builders are ignored, peers may be
// disabled by config. Ties break alphabetically so the order is stable.
func topoSortBuilders(list []*Builder) ([]*Builder, error) {
	byName := map[string]*Builder{}
	indegree := map[string]int{}
	dependents := map[string][]string{}
	for _, b := range list {
		if b.Name == "" {
			continue
		}
		byName[b.Name] = b
		indegree[b.Name] = 0
	}
	for _, b := range list {
		for _, dep := range b.Deps {
			if _, known := byName[dep]; !known {
				continue
			}
			dependents[dep] = append(dependents[dep], b.Name)
			indegree[b.Name]++
		}
	}

	var ready []string
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	ordered := make([]*Builder, 0, len(byName))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		ordered = append(ordered, byName[name])
		for _, next := range dependents[name] {
			if indegree[next]--; indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
		sort.Strings(ready)
	}

	if len(ordered) != len(byName) {
		var stuck []string
		for name, deg := range indegree {
			if deg > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("registry: cyclic builder deps: %v", stuck)
	}
	return ordered, nil
}
