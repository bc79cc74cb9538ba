package snapshotcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/orcaclubpro/trenddrop-sub002/internal/components/logging"
	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
	"github.com/orcaclubpro/trenddrop-sub002/internal/core"
	"github.com/orcaclubpro/trenddrop-sub002/internal/eventbus"
)

// Component keeps the latest entity event per kind in redis so a newly
// identified client can be served a current-state snapshot without a
// database round trip. Purely observational: write failures are logged,
// never propagated to publishers.
type Component struct {
	*core.BaseComponent
	cfg    *Config
	bus    *eventbus.Bus
	client redis.UniversalClient
	unsubs []func()
}

func NewComponent(cfg *Config, bus *eventbus.Bus) *Component {
	return &Component{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_SNAPSHOT_CACHE, consts.COMPONENT_LOGGING),
		cfg:           cfg,
		bus:           bus,
	}
}

func (c *Component) Start(ctx context.Context) error {
	if err := c.BaseComponent.Start(ctx); err != nil {
		return err
	}
	if c.cfg == nil {
		return errors.New("snapshot_cache config nil")
	}
	c.cfg.applyDefaults()
	if len(c.cfg.Addresses) == 0 {
		return fmt.Errorf("snapshot_cache addresses empty")
	}

	switch strings.ToLower(c.cfg.Mode) {
	case "single", "cluster", "sentinel":
		if c.cfg.Mode == "sentinel" && c.cfg.SentinelMaster == "" {
			return fmt.Errorf("sentinel mode requires sentinel_master")
		}
	default:
		return fmt.Errorf("unknown redis mode: %s", c.cfg.Mode)
	}

	c.client = redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        c.cfg.Addresses,
		DB:           c.cfg.DB,
		Username:     c.cfg.Username,
		Password:     c.cfg.Password,
		MasterName:   c.cfg.SentinelMaster,
		DialTimeout:  c.cfg.DialTimeout,
		ReadTimeout:  c.cfg.ReadTimeout,
		WriteTimeout: c.cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.client.Ping(pingCtx).Err(); err != nil {
		_ = c.client.Close()
		c.client = nil
		return fmt.Errorf("snapshot_cache ping failed: %w", err)
	}

	for _, entity := range consts.Entities() {
		for _, action := range consts.Actions() {
			c.unsubs = append(c.unsubs, c.bus.Subscribe(consts.EntityTopic(entity, action), c.onEntityEvent))
		}
	}

	logging.Info(ctx, "snapshot cache started",
		zap.String("mode", c.cfg.Mode),
		zap.Strings("addrs", c.cfg.Addresses),
	)
	return nil
}

func (c *Component) onEntityEvent(evt eventbus.Event) {
	p, ok := evt.Payload.(eventbus.EntityPayload)
	if !ok {
		return
	}
	record := map[string]any{
		"entity":    p.Entity,
		"action":    p.Action,
		"id":        p.ID,
		"data":      p.Data,
		"timestamp": evt.Timestamp.Format(time.RFC3339),
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	pipe := c.client.Pipeline()
	pipe.Set(ctx, c.lastKey(p.Entity), raw, c.cfg.TTL)
	pipe.Incr(ctx, c.countKey(p.Entity, p.Action))
	if _, err := pipe.Exec(ctx); err != nil {
		logging.Warnf(ctx, "[snapshot_cache] write failed: %v", err)
	}
}

// Snapshot implements the bridge's SnapshotProvider.
func (c *Component) Snapshot(ctx context.Context) (map[string]any, error) {
	if c.client == nil {
		return nil, errors.New("snapshot_cache not started")
	}
	out := make(map[string]any, len(consts.Entities()))
	for _, entity := range consts.Entities() {
		view := map[string]any{}

		raw, err := c.client.Get(ctx, c.lastKey(entity)).Result()
		if err == nil {
			var last map[string]any
			if json.Unmarshal([]byte(raw), &last) == nil {
				view["last_event"] = last
			}
		} else if !errors.Is(err, redis.Nil) {
			return nil, err
		}

		counts := map[string]int64{}
		for _, action := range consts.Actions() {
			n, err := c.client.Get(ctx, c.countKey(entity, action)).Int64()
			if err != nil && !errors.Is(err, redis.Nil) {
				return nil, err
			}
			counts[action] = n
		}
		view["counts"] = counts
		out[entity] = view
	}
	return out, nil
}

func (c *Component) lastKey(entity string) string {
	return fmt.Sprintf("%s:last:%s", c.cfg.KeyPrefix, entity)
}

func (c *Component) countKey(entity, action string) string {
	return fmt.Sprintf("%s:count:%s:%s", c.cfg.KeyPrefix, entity, action)
}

func (c *Component) Stop(ctx context.Context) error {
	defer func() { _ = c.BaseComponent.Stop(ctx) }()
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
	if c.client != nil {
		_ = c.client.Close()
		c.client = nil
		logging.Info(ctx, "snapshot cache stopped")
	}
	return nil
}

func (c *Component) HealthCheck() error {
	if err := c.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	if c.client == nil {
		return errors.New("snapshot_cache client not initialized")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.client.Ping(ctx).Err()
}
