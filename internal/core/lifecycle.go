// core/lifecycle.go
package core

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
	"github.com/orcaclubpro/trenddrop-sub002/internal/eventbus"
	"github.com/orcaclubpro/trenddrop-sub002/internal/hooks"
)

// Status 组件生命周期状态
type Status string

const (
	StatusPending      Status = "pending"
	StatusInitializing Status = "initializing"
	StatusInitialized  Status = "initialized"
	StatusFailed       Status = "failed"
	StatusShutdown     Status = "shutdown"
)

// ComponentStatus 组件状态快照
type ComponentStatus struct {
	Status Status
	Err    error
}

// LifecycleManager 生命周期管理器。
// 启动顺序来自容器的拓扑排序; 关键组件失败立即中止并回滚已启动前缀,
// 非关键组件失败仅记录, 其直接/间接依赖者会因依赖未就绪而被跳过。
type LifecycleManager struct {
	container      *Container
	hookManager    *hooks.Manager
	bus            *eventbus.Bus
	critical       map[string]bool
	statuses       map[string]*ComponentStatus
	startOrder     []Component
	initialized    bool
	shutdownCalled bool
	mutex          sync.RWMutex
	timeout        time.Duration
}

// NewLifecycleManager 创建新的生命周期管理器
func NewLifecycleManager(container *Container, bus *eventbus.Bus) *LifecycleManager {
	return NewLifecycleManagerWithManager(container, bus, hooks.NewManager())
}

// NewLifecycleManagerWithManager 使用外部钩子管理器（通常是全局钩子管理器）
func NewLifecycleManagerWithManager(container *Container, bus *eventbus.Bus, hm *hooks.Manager) *LifecycleManager {
	return &LifecycleManager{
		container:   container,
		hookManager: hm,
		bus:         bus,
		critical:    make(map[string]bool),
		statuses:    make(map[string]*ComponentStatus),
		timeout:     30 * time.Second,
	}
}

// SetTimeout 设置组件启动/停止超时时间
func (lm *LifecycleManager) SetTimeout(timeout time.Duration) {
	lm.timeout = timeout
}

// SetCritical 标记关键组件: 任一关键组件失败则整体启动失败。
func (lm *LifecycleManager) SetCritical(names ...string) {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()
	for _, n := range names {
		lm.critical[n] = true
	}
}

// AddHook 添加生命周期钩子
func (lm *LifecycleManager) AddHook(name string, phase hooks.Phase, function hooks.HookFunc, priority int) error {
	hook := &hooks.Hook{
		Name:     name,
		Phase:    phase,
		Function: function,
		Priority: priority,
	}
	return lm.hookManager.Register(hook)
}

// StartAll 按依赖顺序启动所有组件
func (lm *LifecycleManager) StartAll(ctx context.Context) error {
	if err := lm.hookManager.Execute(ctx, hooks.BeforeStart); err != nil {
		return fmt.Errorf("before_start hooks failed: %w", err)
	}

	components, err := lm.container.SortComponentsByDependencies()
	if err != nil {
		// 环或缺失依赖: 致命配置错误, 没有任何组件被启动。
		lm.publishApp(consts.TOPIC_APP_INIT_FAILED, err)
		return fmt.Errorf("failed to sort components: %w", err)
	}

	lm.mutex.Lock()
	lm.startOrder = lm.startOrder[:0]
	for _, comp := range components {
		lm.statuses[comp.Name()] = &ComponentStatus{Status: StatusPending}
	}
	for name := range lm.critical {
		if _, err := lm.container.Resolve(name); err != nil {
			lm.mutex.Unlock()
			cfgErr := fmt.Errorf("critical component %s is not registered", name)
			lm.publishApp(consts.TOPIC_APP_INIT_FAILED, cfgErr)
			return cfgErr
		}
	}
	lm.mutex.Unlock()

	for _, comp := range components {
		name := comp.Name()

		if blocked := lm.unreadyDependency(comp); blocked != "" {
			depErr := fmt.Errorf("dependency %s is not initialized", blocked)
			lm.setStatus(name, StatusFailed, depErr)
			lm.publishComponent(name, StatusFailed, depErr)
			log.Printf("Skipping component %s: %v", name, depErr)
			if lm.isCritical(name) {
				lm.stopStartedComponents(context.Background())
				lm.publishApp(consts.TOPIC_APP_INIT_FAILED, depErr)
				return fmt.Errorf("critical component %s skipped: %w", name, depErr)
			}
			continue
		}

		lm.setStatus(name, StatusInitializing, nil)
		startCtx, cancel := context.WithTimeout(ctx, lm.timeout)
		err := comp.Start(startCtx)
		cancel()

		if err != nil {
			lm.setStatus(name, StatusFailed, err)
			lm.publishComponent(name, StatusFailed, err)
			log.Printf("Failed to start component %s: %v", name, err)
			if lm.isCritical(name) {
				lm.stopStartedComponents(context.Background())
				lm.publishApp(consts.TOPIC_APP_INIT_FAILED, err)
				return fmt.Errorf("failed to start critical component %s: %w", name, err)
			}
			continue
		}

		lm.setStatus(name, StatusInitialized, nil)
		lm.publishComponent(name, StatusInitialized, nil)
		lm.mutex.Lock()
		lm.startOrder = append(lm.startOrder, comp)
		lm.mutex.Unlock()
		log.Printf("Component %s started successfully", name)
	}

	lm.mutex.Lock()
	lm.initialized = true
	lm.shutdownCalled = false
	lm.mutex.Unlock()

	lm.publishApp(consts.TOPIC_APP_INITIALIZED, nil)

	if err := lm.hookManager.Execute(ctx, hooks.AfterStart); err != nil {
		log.Printf("after_start hooks failed: %v", err)
	}

	return nil
}

// StopAll 按启动顺序的逆序停止组件。从未成功完成 StartAll 时为 no-op。
func (lm *LifecycleManager) StopAll(ctx context.Context) {
	lm.mutex.Lock()
	if !lm.initialized || lm.shutdownCalled {
		lm.mutex.Unlock()
		return
	}
	lm.shutdownCalled = true
	order := make([]Component, len(lm.startOrder))
	copy(order, lm.startOrder)
	lm.mutex.Unlock()

	log.Println("Initiating shutdown sequence...")
	lm.publishApp(consts.TOPIC_APP_SHUTDOWN, nil)

	if err := lm.hookManager.Execute(ctx, hooks.BeforeShutdown); err != nil {
		log.Printf("before_shutdown hooks failed: %v", err)
	}

	for i := len(order) - 1; i >= 0; i-- {
		comp := order[i]
		if st := lm.statusOf(comp.Name()); st == nil || st.Status != StatusInitialized {
			continue
		}

		log.Printf("Stopping component: %s", comp.Name())
		stopCtx, cancel := context.WithTimeout(ctx, lm.timeout)
		if err := comp.Stop(stopCtx); err != nil {
			log.Printf("Error stopping component %s: %v", comp.Name(), err)
		}
		cancel()
		lm.setStatus(comp.Name(), StatusShutdown, nil)
	}

	if err := lm.hookManager.Execute(ctx, hooks.AfterShutdown); err != nil {
		log.Printf("after_shutdown hooks failed: %v", err)
	}

	lm.publishApp(consts.TOPIC_APP_SHUTDOWN_DONE, nil)
	log.Println("Shutdown sequence completed")
}

// Status 只读状态快照, 供诊断使用。
func (lm *LifecycleManager) Status() map[string]ComponentStatus {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()
	out := make(map[string]ComponentStatus, len(lm.statuses))
	for name, st := range lm.statuses {
		out[name] = *st
	}
	return out
}

// StartOrder 返回最近一次成功启动的顺序（组件名）。
func (lm *LifecycleManager) StartOrder() []string {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()
	names := make([]string, 0, len(lm.startOrder))
	for _, c := range lm.startOrder {
		names = append(names, c.Name())
	}
	return names
}

func (lm *LifecycleManager) stopStartedComponents(ctx context.Context) {
	lm.mutex.Lock()
	order := make([]Component, len(lm.startOrder))
	copy(order, lm.startOrder)
	lm.startOrder = lm.startOrder[:0]
	lm.mutex.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		comp := order[i]
		stopCtx, cancel := context.WithTimeout(ctx, lm.timeout)
		if err := comp.Stop(stopCtx); err != nil {
			log.Printf("Error stopping component %s during cleanup: %v", comp.Name(), err)
		}
		cancel()
		lm.setStatus(comp.Name(), StatusShutdown, nil)
	}
}

func (lm *LifecycleManager) unreadyDependency(comp Component) string {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()
	for _, dep := range comp.Dependencies() {
		st, ok := lm.statuses[dep]
		if !ok || st.Status != StatusInitialized {
			return dep
		}
	}
	return ""
}

func (lm *LifecycleManager) isCritical(name string) bool {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()
	return lm.critical[name]
}

func (lm *LifecycleManager) setStatus(name string, status Status, err error) {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()
	st, ok := lm.statuses[name]
	if !ok {
		st = &ComponentStatus{}
		lm.statuses[name] = st
	}
	st.Status = status
	st.Err = err
}

func (lm *LifecycleManager) statusOf(name string) *ComponentStatus {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()
	if st, ok := lm.statuses[name]; ok {
		snapshot := *st
		return &snapshot
	}
	return nil
}

func (lm *LifecycleManager) publishComponent(name string, status Status, err error) {
	if lm.bus == nil {
		return
	}
	outcome := "initialized"
	if status == StatusFailed {
		outcome = "failed"
	}
	lm.bus.Publish(consts.ComponentTopic(name, outcome), eventbus.LifecyclePayload{
		Component: name,
		Status:    string(status),
		Err:       errString(err),
	})
}

func (lm *LifecycleManager) publishApp(topic string, err error) {
	if lm.bus == nil {
		return
	}
	lm.bus.Publish(topic, eventbus.LifecyclePayload{
		Status: topic,
		Err:    errString(err),
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
