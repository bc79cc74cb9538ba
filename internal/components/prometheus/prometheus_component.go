package prometheus

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orcaclubpro/trenddrop-sub002/internal/components/logging"
	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
	"github.com/orcaclubpro/trenddrop-sub002/internal/core"
)

type Component struct {
	*core.BaseComponent
	cfg      *Config
	server   *http.Server
	registry *prometheus.Registry
	started  bool

	wsConnections    prometheus.Gauge
	eventsPublished  *prometheus.CounterVec
	broadcastsSent   prometheus.Counter
	broadcastErrors  prometheus.Counter
	dbReconnects     prometheus.Counter
	monitorSnapshots prometheus.Counter
}

func NewComponent(cfg *Config) *Component {
	return &Component{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_PROMETHEUS, consts.COMPONENT_LOGGING),
		cfg:           cfg,
	}
}

func (c *Component) Start(ctx context.Context) error {
	if err := c.BaseComponent.Start(ctx); err != nil {
		return err
	}
	if c.cfg == nil {
		return fmt.Errorf("prometheus config nil")
	}
	c.cfg.applyDefaults()

	c.registry = prometheus.NewRegistry()
	if c.cfg.CollectGoMetrics {
		_ = c.registry.Register(collectors.NewGoCollector())
	}
	if c.cfg.CollectProcess {
		_ = c.registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	c.buildMetrics()

	mux := http.NewServeMux()
	mux.Handle(c.cfg.Path, promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))

	c.server = &http.Server{
		Addr:              c.cfg.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logging.Infof(ctx, "prometheus metrics listening on %s%s", c.cfg.Address, c.cfg.Path)
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Errorf(ctx, "prometheus server error: %v", err)
		}
	}()

	registerGlobal(c)
	c.started = true
	return nil
}

func (c *Component) Stop(ctx context.Context) error {
	defer c.BaseComponent.Stop(ctx)
	registerGlobal(nil)
	if !c.started || c.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("prometheus server shutdown: %w", err)
	}
	logging.Info(ctx, "prometheus component stopped")
	return nil
}

func (c *Component) HealthCheck() error {
	if err := c.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	if !c.started {
		return fmt.Errorf("prometheus not started")
	}
	return nil
}

func (c *Component) buildMetrics() {
	ns := c.cfg.Namespace
	sub := c.cfg.Subsystem

	c.wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: ns, Subsystem: sub,
		Name: "ws_connections",
		Help: "Current number of live websocket sessions.",
	})
	c.eventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: sub,
		Name: "events_published_total",
		Help: "Events republished to the realtime transport, by topic.",
	}, []string{"topic"})
	c.broadcastsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns, Subsystem: sub,
		Name: "broadcasts_sent_total",
		Help: "Messages broadcast to websocket sessions.",
	})
	c.broadcastErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns, Subsystem: sub,
		Name: "broadcast_errors_total",
		Help: "Broadcast deliveries that failed for a single session.",
	})
	c.dbReconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns, Subsystem: sub,
		Name: "database_reconnects_total",
		Help: "Automatic database reconnect attempts after a failed probe.",
	})
	c.monitorSnapshots = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns, Subsystem: sub,
		Name: "monitor_snapshots_total",
		Help: "Rolling-window metric snapshots published by the monitor.",
	})

	c.registry.MustRegister(
		c.wsConnections,
		c.eventsPublished,
		c.broadcastsSent,
		c.broadcastErrors,
		c.dbReconnects,
		c.monitorSnapshots,
	)
}

func (c *Component) SetWSConnections(n int)     { c.wsConnections.Set(float64(n)) }
func (c *Component) IncEventPublished(t string) { c.eventsPublished.WithLabelValues(t).Inc() }
func (c *Component) IncBroadcast()              { c.broadcastsSent.Inc() }
func (c *Component) IncBroadcastError()         { c.broadcastErrors.Inc() }
func (c *Component) IncDBReconnect()            { c.dbReconnects.Inc() }
func (c *Component) IncMonitorSnapshot()        { c.monitorSnapshots.Inc() }

// Global holder so producers (hub, bridge) can record metrics without a
// hard dependency on this component being enabled.
var (
	globalMu sync.RWMutex
	global   *Component
)

func registerGlobal(c *Component) {
	globalMu.Lock()
	global = c
	globalMu.Unlock()
}

// Default returns the running component, or nil when metrics are disabled.
func Default() *Component {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}
