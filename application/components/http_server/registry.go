package http_server

import (
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/application/core"
)

// RouteRegisterFunc registers routes onto the router; the container is
// provided for resolving components.
type RouteRegisterFunc func(r chi.Router, c *core.Container) error

var (
	registryMu sync.RWMutex
	registrars []RouteRegisterFunc
)

// RegisterRoutes adds a global registrar; call from a controller init()
// or a setup function.
func RegisterRoutes(fn RouteRegisterFunc) {
	if fn == nil {
		return
	}
	registryMu.Lock()
	registrars = append(registrars, fn)
	registryMu.Unlock()
}

// snapshot returns a copy of the registered functions.
func snapshot() []RouteRegisterFunc {
	registryMu.RLock()
	cp := make([]RouteRegisterFunc, len(registrars))
	copy(cp, registrars)
	registryMu.RUnlock()
	return cp
}
