package hooks

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Phase identifies a point in the application lifecycle.
type Phase string

const (
	BeforeStart    Phase = "before_start"
	AfterStart     Phase = "after_start"
	BeforeShutdown Phase = "before_shutdown"
	AfterShutdown  Phase = "after_shutdown"
)

type HookFunc func(ctx context.Context) error

// Hook is a named callback bound to a lifecycle phase. Lower priority
// values run first.
type Hook struct {
	Name     string
	Phase    Phase
	Function HookFunc
	Priority int
}

// Manager keeps hooks grouped by phase.
type Manager struct {
	hooks map[Phase][]*Hook
	mutex sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		hooks: make(map[Phase][]*Hook),
	}
}

// Register adds a hook. Names must be unique within a phase.
func (m *Manager) Register(hook *Hook) error {
	if hook == nil || hook.Function == nil {
		return fmt.Errorf("hook and its function must not be nil")
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, existing := range m.hooks[hook.Phase] {
		if existing.Name == hook.Name {
			return fmt.Errorf("hook %s already registered for phase %s", hook.Name, hook.Phase)
		}
	}

	m.hooks[hook.Phase] = append(m.hooks[hook.Phase], hook)
	sort.SliceStable(m.hooks[hook.Phase], func(i, j int) bool {
		return m.hooks[hook.Phase][i].Priority < m.hooks[hook.Phase][j].Priority
	})
	return nil
}

// Execute runs all hooks of a phase in priority order. The first error
// aborts the run.
func (m *Manager) Execute(ctx context.Context, phase Phase) error {
	m.mutex.RLock()
	hooks := make([]*Hook, len(m.hooks[phase]))
	copy(hooks, m.hooks[phase])
	m.mutex.RUnlock()

	for _, hook := range hooks {
		if err := hook.Function(ctx); err != nil {
			return fmt.Errorf("hook %s failed: %w", hook.Name, err)
		}
	}
	return nil
}
