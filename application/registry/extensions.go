package registry

import (
	"log"
	"sync"

	"github.com/taskdeck/taskdeck/application/core"
)

// runtimeDepExtMap stores extra runtime dependency edges to be applied
// AFTER components are built and registered but BEFORE lifecycle
// StartAll sorts them. key: target component name -> extra dep names.
var (
	runtimeDepExtMap = map[string][]string{}
	runtimeDepExtMu  sync.Mutex
)

// ExtendRuntimeDependencies declares that component `target` should
// additionally depend on `deps`. This affects ONLY runtime start/stop
// ordering via component.Dependencies(). It does not influence builder
// order (use RegisterWithDeps for that) and must be declared before
// BuildAndRegisterAll runs, usually at init time. Unknown targets are
// skipped with a warning when applied.
func ExtendRuntimeDependencies(target string, deps ...string) {
	if target == "" || len(deps) == 0 {
		return
	}
	runtimeDepExtMu.Lock()
	defer runtimeDepExtMu.Unlock()
	current := runtimeDepExtMap[target]
	current = append(current, deps...)
	runtimeDepExtMap[target] = current
}

// applyRuntimeDepExtensions patches the extra deps into every matching
// component that supports AddDependencies.
func applyRuntimeDepExtensions(c *core.Container) {
	runtimeDepExtMu.Lock()
	defer runtimeDepExtMu.Unlock()
	if len(runtimeDepExtMap) == 0 {
		return
	}
	for target, extra := range runtimeDepExtMap {
		comp, err := c.Resolve(target)
		if err != nil {
			log.Printf("registry: runtime dep extension target %s not registered (skipped): %v", target, err)
			continue
		}
		if extender, ok := comp.(interface{ AddDependencies(...string) }); ok {
			extender.AddDependencies(extra...)
			log.Printf("registry: applied runtime dependency extension: %s += %v", target, extra)
		} else {
			log.Printf("registry: component %s does not support AddDependencies; extension skipped", target)
		}
	}
	// cleared so a second BuildAndRegisterAll does not re-apply
	runtimeDepExtMap = map[string][]string{}
}
