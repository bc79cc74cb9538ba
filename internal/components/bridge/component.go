package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/orcaclubpro/trenddrop-sub002/internal/components/logging"
	prom "github.com/orcaclubpro/trenddrop-sub002/internal/components/prometheus"
	"github.com/orcaclubpro/trenddrop-sub002/internal/components/realtime"
	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
	"github.com/orcaclubpro/trenddrop-sub002/internal/core"
	"github.com/orcaclubpro/trenddrop-sub002/internal/eventbus"
)

// Broadcaster is the slice of the realtime hub the bridge needs.
type Broadcaster interface {
	Broadcast(msg any) int
	SendToSession(id string, msg any) bool
}

// SnapshotProvider supplies the current-state view for newly identified
// clients (implemented by the snapshot cache when enabled).
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (map[string]any, error)
}

// Component subscribes to lifecycle, storage and entity topics on the bus
// and republishes each as a transport broadcast with a delivery timestamp.
// It also runs the monitor's periodic metrics snapshot.
type Component struct {
	*core.BaseComponent
	cfg       *Config
	bus       *eventbus.Bus
	transport Broadcaster
	monitor   *Monitor

	mu        sync.Mutex
	unsubs    []func()
	statusFn  func() map[string]string
	snapshots SnapshotProvider

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewComponent(cfg *Config, bus *eventbus.Bus, transport Broadcaster) *Component {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.applyDefaults()
	return &Component{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_BRIDGE, consts.COMPONENT_LOGGING, consts.COMPONENT_REALTIME),
		cfg:           cfg,
		bus:           bus,
		transport:     transport,
		monitor:       NewMonitor(cfg.MetricsWindow),
	}
}

// SetStatusSource wires the orchestrator's status snapshot into client
// snapshots. Optional; set before StartAll.
func (c *Component) SetStatusSource(fn func() map[string]string) {
	c.mu.Lock()
	c.statusFn = fn
	c.mu.Unlock()
}

// SetSnapshotProvider wires the optional entity snapshot cache.
func (c *Component) SetSnapshotProvider(p SnapshotProvider) {
	c.mu.Lock()
	c.snapshots = p
	c.mu.Unlock()
}

// Monitor exposes the rolling-window counters.
func (c *Component) Monitor() *Monitor { return c.monitor }

func (c *Component) Start(ctx context.Context) error {
	if err := c.BaseComponent.Start(ctx); err != nil {
		return err
	}
	if c.bus == nil || c.transport == nil {
		return fmt.Errorf("bridge: bus and transport are required")
	}

	c.subscribeAll()

	c.stopCh = make(chan struct{})
	c.wg.Add(1)
	go c.metricsLoop()

	logging.Infof(ctx, "[bridge] subscribed to %d topics, metrics every %s", len(c.unsubs), c.cfg.MetricsInterval)
	return nil
}

func (c *Component) subscribeAll() {
	sub := func(topic string, h eventbus.Handler) {
		c.unsubs = append(c.unsubs, c.bus.Subscribe(topic, h))
	}

	for _, entity := range consts.Entities() {
		for _, action := range consts.Actions() {
			sub(consts.EntityTopic(entity, action), c.onEntityEvent)
		}
	}

	for _, topic := range []string{
		consts.TOPIC_DB_CONNECTED,
		consts.TOPIC_DB_DISCONNECTED,
		consts.TOPIC_DB_RECONNECTED,
		consts.TOPIC_DB_CONNECTION_FAILED,
	} {
		sub(topic, c.onStorageEvent)
	}

	for _, topic := range []string{
		consts.TOPIC_APP_INITIALIZED,
		consts.TOPIC_APP_INIT_FAILED,
		consts.TOPIC_APP_SHUTDOWN,
		consts.TOPIC_APP_SHUTDOWN_DONE,
	} {
		sub(topic, c.onAppEvent)
	}

	sub(consts.TOPIC_CLIENT_CONNECTED, c.onClientConnected)
	sub(consts.TOPIC_CLIENT_SNAPSHOT_REQ, c.onSnapshotRequest)
}

func (c *Component) onEntityEvent(evt eventbus.Event) {
	p, ok := evt.Payload.(eventbus.EntityPayload)
	if !ok {
		return
	}

	specific := realtime.EntityEventMessage{
		Envelope: realtime.NewEnvelope(fmt.Sprintf("%s_%s", p.Entity, p.Action)),
		Entity:   p.Entity,
		Action:   p.Action,
		ID:       p.ID,
		Data:     p.Data,
	}
	c.deliver(evt.Topic, specific)

	generic := specific
	generic.Envelope = realtime.NewEnvelope(realtime.TypeEntityEvent)
	c.deliver(evt.Topic, generic)
}

func (c *Component) onStorageEvent(evt eventbus.Event) {
	p, ok := evt.Payload.(eventbus.StoragePayload)
	if !ok {
		return
	}
	c.deliver(evt.Topic, realtime.DatabaseStatusMessage{
		Envelope: realtime.NewEnvelope(realtime.TypeDatabaseStatus),
		Status:   p.State,
		Error:    p.Err,
	})
	if p.State == "reconnected" {
		if m := prom.Default(); m != nil {
			m.IncDBReconnect()
		}
	}
}

func (c *Component) onAppEvent(evt eventbus.Event) {
	p, ok := evt.Payload.(eventbus.LifecyclePayload)
	if !ok {
		return
	}
	c.deliver(evt.Topic, realtime.AppStatusMessage{
		Envelope:  realtime.NewEnvelope(realtime.TypeAppStatus),
		Status:    evt.Topic,
		Component: p.Component,
		Error:     p.Err,
	})
}

func (c *Component) onClientConnected(evt eventbus.Event) {
	c.monitor.RecordConnection()
}

func (c *Component) onSnapshotRequest(evt eventbus.Event) {
	p, ok := evt.Payload.(eventbus.ClientPayload)
	if !ok {
		return
	}

	msg := realtime.SnapshotMessage{Envelope: realtime.NewEnvelope(realtime.TypeSnapshot)}

	c.mu.Lock()
	statusFn := c.statusFn
	provider := c.snapshots
	c.mu.Unlock()

	if statusFn != nil {
		msg.Components = statusFn()
	}
	if provider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		entities, err := provider.Snapshot(ctx)
		cancel()
		if err != nil {
			logging.Warnf(context.Background(), "[bridge] snapshot provider failed: %v", err)
			c.monitor.RecordError()
		} else {
			msg.Entities = entities
		}
	}

	if !c.transport.SendToSession(p.SessionID, msg) {
		c.monitor.RecordError()
	}
}

// deliver broadcasts one message and records it in the monitor. Monitoring
// happens after the broadcast and only ever counts; it cannot fail
// delivery.
func (c *Component) deliver(topic string, msg any) {
	c.transport.Broadcast(msg)
	c.monitor.RecordMessage()
	if m := prom.Default(); m != nil {
		m.IncEventPublished(topic)
		m.IncBroadcast()
	}
}

func (c *Component) metricsLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.MetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.publishMetrics()
		}
	}
}

func (c *Component) publishMetrics() {
	snap := c.monitor.Snapshot()
	c.bus.Publish(consts.TOPIC_MONITOR_METRICS, snap)
	c.transport.Broadcast(realtime.MetricsMessage{
		Envelope:      realtime.NewEnvelope(realtime.TypeMetrics),
		Connections:   snap.Connections,
		Messages:      snap.Messages,
		Errors:        snap.Errors,
		WindowSeconds: int64(snap.Window / time.Second),
	})
	if m := prom.Default(); m != nil {
		m.IncMonitorSnapshot()
	}
}

func (c *Component) Stop(ctx context.Context) error {
	defer func() { _ = c.BaseComponent.Stop(ctx) }()

	if c.stopCh != nil {
		close(c.stopCh)
		c.wg.Wait()
		c.stopCh = nil
	}

	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil

	logging.Infof(ctx, "[bridge] stopped")
	return nil
}
