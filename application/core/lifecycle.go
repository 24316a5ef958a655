package core

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/taskdeck/taskdeck/application/hooks"
)

// LifecycleManager starts and stops components in dependency order and
// runs the registered phase hooks around each transition. It logs via
// the stdlib logger because the logging component may not be up yet.
type LifecycleManager struct {
	container   *Container
	hookManager *hooks.Manager
	signals     chan os.Signal
	stopped     chan struct{}
	mu          sync.Mutex
	stopping    bool
	timeout     time.Duration
}

func NewLifecycleManager(container *Container) *LifecycleManager {
	return NewLifecycleManagerWithManager(container, hooks.NewManager())
}

// NewLifecycleManagerWithManager uses a caller supplied hook manager,
// typically the global one so default hooks apply.
func NewLifecycleManagerWithManager(container *Container, hm *hooks.Manager) *LifecycleManager {
	if hm == nil {
		hm = hooks.NewManager()
	}
	return &LifecycleManager{
		container:   container,
		hookManager: hm,
		signals:     make(chan os.Signal, 1),
		stopped:     make(chan struct{}),
		timeout:     30 * time.Second,
	}
}

// SetTimeout sets the per-component start/stop timeout.
func (lm *LifecycleManager) SetTimeout(timeout time.Duration) {
	lm.timeout = timeout
}

// AddHook registers a lifecycle hook on this manager.
func (lm *LifecycleManager) AddHook(name string, phase hooks.Phase, fn hooks.HookFunc, priority int) error {
	return lm.hookManager.Register(&hooks.Hook{
		Name:     name,
		Phase:    phase,
		Function: fn,
		Priority: priority,
	})
}

// StartAll starts every registered component in topological order.
// A failure stops the components already started, in reverse.
func (lm *LifecycleManager) StartAll(ctx context.Context) error {
	if err := lm.hookManager.Execute(ctx, hooks.BeforeStart); err != nil {
		return fmt.Errorf("before_start hooks failed: %w", err)
	}

	components, err := lm.container.SortComponentsByDependencies()
	if err != nil {
		return fmt.Errorf("sort components: %w", err)
	}

	for i, comp := range components {
		startCtx, cancel := context.WithTimeout(ctx, lm.timeout)
		err := comp.Start(startCtx)
		cancel()
		if err != nil {
			log.Printf("component %s failed to start: %v", comp.Name(), err)
			lm.unwind(context.Background(), components[:i])
			return fmt.Errorf("start component %s: %w", comp.Name(), err)
		}
		log.Printf("component %s started", comp.Name())
	}

	if err := lm.hookManager.Execute(ctx, hooks.AfterStart); err != nil {
		log.Printf("after_start hooks failed: %v", err)
	}
	return nil
}

// StopAll stops active components in reverse start order. Safe to call
// more than once.
func (lm *LifecycleManager) StopAll(ctx context.Context) {
	lm.mu.Lock()
	if lm.stopping {
		lm.mu.Unlock()
		return
	}
	lm.stopping = true
	lm.mu.Unlock()

	if err := lm.hookManager.Execute(ctx, hooks.BeforeShutdown); err != nil {
		log.Printf("before_shutdown hooks failed: %v", err)
	}

	components, err := lm.container.SortComponentsByDependencies()
	if err != nil {
		// fall back to an arbitrary order rather than leaking resources
		log.Printf("sort for shutdown failed: %v", err)
		registered := lm.container.ListRegistered()
		components = make([]Component, 0, len(registered))
		for _, comp := range registered {
			components = append(components, comp)
		}
	}
	lm.unwind(ctx, components)

	if err := lm.hookManager.Execute(ctx, hooks.AfterShutdown); err != nil {
		log.Printf("after_shutdown hooks failed: %v", err)
	}
	log.Println("shutdown complete")
}

// unwind stops the given components in reverse order, skipping ones
// that never became active.
func (lm *LifecycleManager) unwind(ctx context.Context, components []Component) {
	for i := len(components) - 1; i >= 0; i-- {
		comp := components[i]
		if !comp.IsActive() {
			continue
		}
		stopCtx, cancel := context.WithTimeout(ctx, lm.timeout)
		if err := comp.Stop(stopCtx); err != nil {
			log.Printf("error stopping component %s: %v", comp.Name(), err)
		}
		cancel()
	}
}

// WaitForShutdown blocks until SIGINT/SIGTERM or context cancellation,
// then runs the shutdown sequence.
func (lm *LifecycleManager) WaitForShutdown(ctx context.Context) {
	signal.Notify(lm.signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-lm.signals
		log.Printf("received signal %v", sig)
		close(lm.stopped)
	}()

	select {
	case <-lm.stopped:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), lm.timeout)
	defer cancel()
	lm.StopAll(shutdownCtx)
}
