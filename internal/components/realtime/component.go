package realtime

import (
	"context"
	"errors"
	"net/http"

	"github.com/orcaclubpro/trenddrop-sub002/internal/components/logging"
	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
	"github.com/orcaclubpro/trenddrop-sub002/internal/core"
	"github.com/orcaclubpro/trenddrop-sub002/internal/eventbus"
)

// Component wraps the websocket hub in the component lifecycle. It depends
// on the database so the realtime surface only comes up with a live
// storage connection behind it.
type Component struct {
	*core.BaseComponent
	cfg *Config
	bus *eventbus.Bus
	hub *Hub
}

func NewComponent(cfg *Config, bus *eventbus.Bus) *Component {
	return &Component{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_REALTIME, consts.COMPONENT_LOGGING, consts.COMPONENT_DATABASE),
		cfg:           cfg,
		bus:           bus,
	}
}

func (c *Component) Start(ctx context.Context) error {
	if err := c.BaseComponent.Start(ctx); err != nil {
		return err
	}
	c.hub = NewHub(c.cfg, c.bus)
	c.hub.Run()
	logging.Infof(ctx, "[realtime] hub started (heartbeat %s)", c.hub.cfg.HeartbeatInterval)
	return nil
}

func (c *Component) Stop(ctx context.Context) error {
	defer func() { _ = c.BaseComponent.Stop(ctx) }()
	if c.hub != nil {
		c.hub.Close()
		c.hub = nil
	}
	logging.Infof(ctx, "[realtime] hub stopped")
	return nil
}

func (c *Component) HealthCheck() error {
	if err := c.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	if c.hub == nil {
		return errors.New("realtime: hub not started")
	}
	return nil
}

// Hub exposes the running hub to the bridge and the HTTP layer.
func (c *Component) Hub() *Hub { return c.hub }

// Broadcast delegates to the hub. Safe before Start: drops the message.
func (c *Component) Broadcast(msg any) int {
	if c.hub == nil {
		return 0
	}
	return c.hub.Broadcast(msg)
}

// SendToSession delegates to the hub. Safe before Start: reports failure.
func (c *Component) SendToSession(id string, msg any) bool {
	if c.hub == nil {
		return false
	}
	return c.hub.SendToSession(id, msg)
}

// ServeWS satisfies the HTTP layer without exposing hub internals.
func (c *Component) ServeWS(w http.ResponseWriter, r *http.Request) {
	if c.hub == nil {
		http.Error(w, "realtime transport unavailable", http.StatusServiceUnavailable)
		return
	}
	c.hub.ServeWS(w, r)
}
