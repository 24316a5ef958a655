package application

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/taskdeck/taskdeck/application/config"
	"github.com/taskdeck/taskdeck/application/consts"
	"github.com/taskdeck/taskdeck/application/core"
	"github.com/taskdeck/taskdeck/application/hooks"
	"github.com/taskdeck/taskdeck/application/registry"
)

var (
	appOnce   sync.Once
	globalApp *App
)

// GetApp returns the process-wide application instance. Environment and
// config path come from APP_ENV / APP_CONFIG, falling back to
// development defaults. Biz packages call this from init() to attach
// their config section before Run loads the file.
func GetApp() *App {
	appOnce.Do(func() {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = consts.ENV_DEVELOPMENT
		}
		cfgPath := os.Getenv("APP_CONFIG")
		if cfgPath == "" {
			cfgPath = consts.DEFAULT_CONFIG_PATH
		}
		globalApp = NewApp(env, cfgPath)
	})
	return globalApp
}

type App struct {
	container        *core.Container
	lifecycleManager *core.LifecycleManager
	configManager    *config.ConfigManager

	bootOnce sync.Once
	bootErr  error
	booted   bool

	shutdownTimeout time.Duration
}

func NewApp(env string, configPath string) *App {
	abs := configPath
	if p, err := filepath.Abs(configPath); err == nil {
		abs = p
	}
	container := core.NewContainer()
	// use the global hook manager so default hooks registered in
	// hooks/default.go are effective
	lm := core.NewLifecycleManagerWithManager(container, hooks.GetGlobalHookManager())
	return &App{
		configManager:    config.NewConfigManager(env, abs),
		container:        container,
		lifecycleManager: lm,
		shutdownTimeout:  30 * time.Second,
	}
}

// SetShutdownTimeout customizes the graceful shutdown timeout.
func (app *App) SetShutdownTimeout(d time.Duration) { app.shutdownTimeout = d }

// SetBizConfig sets the application config pointer. Must be called
// before Run.
func (app *App) SetBizConfig(b any) {
	app.configManager.SetBizConfig(b)
}

func (app *App) boot() error {
	app.bootOnce.Do(func() {
		if err := app.configManager.LoadConfig(); err != nil {
			app.bootErr = fmt.Errorf("load config failed: %w", err)
			return
		}
		if err := app.registerComponents(); err != nil {
			app.bootErr = fmt.Errorf("register components failed: %w", err)
			return
		}
		app.booted = true
	})
	return app.bootErr
}

func (app *App) registerComponents() error {
	cfg := app.configManager.GetConfig()
	if cfg == nil {
		return fmt.Errorf("config not loaded")
	}

	// each component self-registers its builder in a registry/*.go init()
	if err := registry.BuildAndRegisterAll(cfg, app.container); err != nil {
		return err
	}
	return nil
}

func (app *App) GetComponent(name string) (core.Component, error) {
	return app.container.Resolve(name)
}

func (app *App) GetConfig() *config.AppConfig {
	if app.configManager == nil {
		return nil
	}
	return app.configManager.GetConfig()
}

func (app *App) BizConfig() any {
	if app.configManager == nil {
		return nil
	}
	return app.configManager.BizConfig()
}

func (app *App) AddHook(name string, phase hooks.Phase, fn hooks.HookFunc, priority int) error {
	return app.lifecycleManager.AddHook(name, phase, fn, priority)
}

// Run blocks until SIGINT or SIGTERM, then shuts down gracefully.
func (app *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.RunWithContext(ctx)
}

// RunWithContext starts components and blocks until the context is
// done, then performs graceful shutdown.
func (app *App) RunWithContext(ctx context.Context) error {
	if err := app.boot(); err != nil {
		return err
	}

	if err := app.lifecycleManager.StartAll(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout)
	defer cancel()
	app.lifecycleManager.StopAll(stopCtx)
	return nil
}

func (app *App) Shutdown(ctx context.Context) {
	app.lifecycleManager.StopAll(ctx)
}
