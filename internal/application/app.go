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

	"github.com/orcaclubpro/trenddrop-sub002/internal/components/bridge"
	"github.com/orcaclubpro/trenddrop-sub002/internal/components/logging"
	"github.com/orcaclubpro/trenddrop-sub002/internal/components/snapshotcache"
	"github.com/orcaclubpro/trenddrop-sub002/internal/config"
	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
	"github.com/orcaclubpro/trenddrop-sub002/internal/core"
	"github.com/orcaclubpro/trenddrop-sub002/internal/eventbus"
	"github.com/orcaclubpro/trenddrop-sub002/internal/hooks"
	"github.com/orcaclubpro/trenddrop-sub002/internal/registry"
	"github.com/orcaclubpro/trenddrop-sub002/internal/service"
)

// App ties the container, event bus, service registry and lifecycle
// manager into one bootable process.
type App struct {
	container        *core.Container
	bus              *eventbus.Bus
	services         *registry.ServiceRegistry
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
	bus := eventbus.NewBus()
	// Use global hook manager so default hooks (registered in hooks/default.go) are effective.
	lm := core.NewLifecycleManagerWithManager(container, bus, hooks.GetGlobalHookManager())
	return &App{
		configManager:    config.NewConfigManager(env, abs),
		container:        container,
		bus:              bus,
		services:         registry.NewServiceRegistry(),
		lifecycleManager: lm,
		shutdownTimeout:  30 * time.Second,
	}
}

// SetShutdownTimeout allows customizing graceful shutdown timeout.
func (app *App) SetShutdownTimeout(d time.Duration) { app.shutdownTimeout = d }

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
		if err := app.wireServices(); err != nil {
			app.bootErr = fmt.Errorf("wire services failed: %w", err)
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

	rt := &registry.Runtime{Container: app.container, Bus: app.bus, Services: app.services}
	if err := registry.BuildAndRegisterAll(cfg, rt); err != nil {
		return err
	}

	critical := cfg.Critical
	if len(critical) == 0 {
		critical = []string{consts.COMPONENT_DATABASE, consts.COMPONENT_REALTIME}
	}
	app.lifecycleManager.SetCritical(critical...)
	return nil
}

// wireServices connects the pieces the registry cannot see at build time:
// the bridge's status/snapshot sources, the entity recorder, and the bus
// logger once zap is up.
func (app *App) wireServices() error {
	recorder := service.NewEntityEvents(app.bus)
	if err := app.services.Register(service.ServiceEntityEvents, recorder); err != nil {
		return err
	}

	if raw, err := app.container.Resolve(consts.COMPONENT_BRIDGE); err == nil {
		br, ok := raw.(*bridge.Component)
		if !ok {
			return fmt.Errorf("component %s is not a bridge", consts.COMPONENT_BRIDGE)
		}
		br.SetStatusSource(app.componentStatuses)
		if raw, err := app.container.Resolve(consts.COMPONENT_SNAPSHOT_CACHE); err == nil {
			if provider, ok := raw.(*snapshotcache.Component); ok {
				br.SetSnapshotProvider(provider)
			}
		}
	}

	// Bus logging stays noop until the logging component has started.
	return app.lifecycleManager.AddHook("bus-logger", hooks.AfterStart, func(ctx context.Context) error {
		if l := logging.UnderlyingZap(); l != nil {
			app.bus.SetLogger(l)
		}
		return nil
	}, 10)
}

func (app *App) componentStatuses() map[string]string {
	statuses := app.lifecycleManager.Status()
	out := make(map[string]string, len(statuses))
	for name, st := range statuses {
		out[name] = string(st.Status)
	}
	return out
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

// Bus exposes the process event bus (scrapers publish entity events on it).
func (app *App) Bus() *eventbus.Bus { return app.bus }

// Services exposes the service registry.
func (app *App) Services() *registry.ServiceRegistry { return app.services }

func (app *App) AddHook(name string, phase hooks.Phase, fn hooks.HookFunc, priority int) error {
	return app.lifecycleManager.AddHook(name, phase, fn, priority)
}

// Run listens for SIGINT/SIGTERM and drives a graceful shutdown.
func (app *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.RunWithContext(ctx)
}

// RunWithContext starts components and blocks until context done,
// then performs graceful shutdown.
func (app *App) RunWithContext(ctx context.Context) error {
	if err := app.boot(); err != nil {
		return err
	}

	if err := app.lifecycleManager.StartAll(ctx); err != nil {
		return err
	}

	// Block until context canceled.
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout)
	defer cancel()
	app.lifecycleManager.StopAll(stopCtx)
	return nil
}

func (app *App) Shutdown(ctx context.Context) {
	app.lifecycleManager.StopAll(ctx)
}
