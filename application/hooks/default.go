package hooks

import (
	"context"
	"log"
)

// globalHookManager backs the package level registration helpers.
var globalHookManager = NewManager()

func init() {
	logHook := func(msg string) HookFunc {
		return func(ctx context.Context) error {
			log.Println(msg)
			return nil
		}
	}
	defaults := []struct {
		name  string
		phase Phase
		msg   string
	}{
		{"log_startup", BeforeStart, "starting..."},
		{"log_started", AfterStart, "started"},
		{"log_shutdown", BeforeShutdown, "shutting down..."},
		{"log_shutdown_complete", AfterShutdown, "shutdown complete"},
	}
	for _, d := range defaults {
		if err := RegisterHook(d.name, d.phase, logHook(d.msg), 100); err != nil {
			log.Printf("register default hook %s: %v", d.name, err)
		}
	}
}

// RegisterHook registers a hook with the global manager.
func RegisterHook(name string, phase Phase, fn HookFunc, priority int) error {
	return globalHookManager.Register(&Hook{
		Name:     name,
		Phase:    phase,
		Function: fn,
		Priority: priority,
	})
}

// ExecuteHooks runs the global hooks of the given phase.
func ExecuteHooks(ctx context.Context, phase Phase) error {
	return globalHookManager.Execute(ctx, phase)
}

func GetGlobalHookManager() *Manager {
	return globalHookManager
}
