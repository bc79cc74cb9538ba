package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/orcaclubpro/trenddrop-sub002/internal/components/logging"
	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
	"github.com/orcaclubpro/trenddrop-sub002/internal/core"
	"github.com/orcaclubpro/trenddrop-sub002/internal/eventbus"
	"github.com/orcaclubpro/trenddrop-sub002/internal/model"
)

var (
	// ErrMissingDSN is a configuration error: no connection string was
	// supplied. It is fatal and consumes no retry attempt.
	ErrMissingDSN = errors.New("database: connection string not configured (set DATABASE_URL)")

	// ErrNotInitialized is returned by accessors before a successful Start.
	ErrNotInitialized = errors.New("database: connection manager not initialized")
)

// Health is the process-wide connection health record. It is mutated only
// by the component's own control loop.
type Health struct {
	Initialized     bool
	Connected       bool
	LastHealthCheck time.Time
	AttemptCount    int
}

// Component owns the only connection pool to the backing store. Start is
// resilient to transient outages: bounded retries with jittered exponential
// backoff, a probe connection + liveness query per attempt, then the real
// pool and an idempotent additive schema ensure. Once up, a periodic probe
// detects degradation, publishes disconnect/reconnect events and rebuilds
// the pool.
type Component struct {
	*core.BaseComponent
	cfg *Config
	bus *eventbus.Bus

	mutex  sync.RWMutex
	db     *gorm.DB
	sqlDB  *sql.DB
	health Health

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewComponent(cfg *Config, bus *eventbus.Bus) *Component {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Component{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_DATABASE, consts.COMPONENT_LOGGING),
		cfg:           cfg,
		bus:           bus,
	}
}

func (c *Component) Start(ctx context.Context) error {
	if err := c.BaseComponent.Start(ctx); err != nil {
		return err
	}
	c.cfg.applyDefaults()

	if strings.TrimSpace(c.cfg.DSN) == "" {
		return ErrMissingDSN
	}

	bo := newRetryBackoff(c.cfg)
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		c.mutex.Lock()
		c.health.AttemptCount = attempt
		c.mutex.Unlock()

		lastErr = c.connect(ctx)
		if lastErr == nil {
			c.mutex.Lock()
			c.health.Initialized = true
			c.health.Connected = true
			c.health.LastHealthCheck = time.Now()
			c.stopCh = make(chan struct{})
			c.mutex.Unlock()

			c.wg.Add(1)
			go c.monitorLoop()

			c.publish(consts.TOPIC_DB_CONNECTED, "connected", attempt, nil)
			logging.Infof(ctx, "[database] connected after %d attempt(s)", attempt)
			return nil
		}

		logging.Warnf(ctx, "[database] attempt %d/%d failed: %v", attempt, c.cfg.MaxAttempts, lastErr)
		if attempt == c.cfg.MaxAttempts {
			break
		}
		delay := bo.NextBackOff()
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("database: startup canceled: %w", ctx.Err())
		}
	}

	c.publish(consts.TOPIC_DB_CONNECTION_FAILED, "failed", c.cfg.MaxAttempts, lastErr)
	return fmt.Errorf("database: all %d connection attempts failed: %w", c.cfg.MaxAttempts, lastErr)
}

// connect runs one attempt: short-lived probe + liveness query, then the
// real pooled connection and the schema ensure.
func (c *Component) connect(ctx context.Context) error {
	if err := c.probe(ctx); err != nil {
		return err
	}

	db, sqlDB, err := c.openPool(ctx)
	if err != nil {
		return err
	}

	if err := c.ensureSchema(ctx, db); err != nil {
		_ = sqlDB.Close()
		return err
	}

	c.mutex.Lock()
	c.db = db
	c.sqlDB = sqlDB
	c.mutex.Unlock()
	return nil
}

// probe opens a throwaway connection and runs a trivial liveness query.
func (c *Component) probe(ctx context.Context) error {
	db, err := gorm.Open(gormpg.Open(c.cfg.DSN), &gorm.Config{Logger: newGormLogger(c.cfg)})
	if err != nil {
		return fmt.Errorf("probe open: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("probe sql.DB: %w", err)
	}
	defer func() { _ = sqlDB.Close() }()

	probeCtx, cancel := context.WithTimeout(ctx, c.cfg.PingTimeout)
	defer cancel()
	var one int
	if err := db.WithContext(probeCtx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		return fmt.Errorf("probe query: %w", err)
	}
	return nil
}

func (c *Component) openPool(ctx context.Context) (*gorm.DB, *sql.DB, error) {
	db, err := gorm.Open(gormpg.Open(c.cfg.DSN), &gorm.Config{Logger: newGormLogger(c.cfg)})
	if err != nil {
		return nil, nil, fmt.Errorf("open pool: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(c.cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(c.cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(c.cfg.ConnMaxLife)

	pingCtx, cancel := context.WithTimeout(ctx, c.cfg.PingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("ping pool: %w", err)
	}
	return db, sqlDB, nil
}

// ensureSchema creates missing tables and backfills structurally missing
// columns against the expected entity shapes. AutoMigrate is additive only:
// it never drops or rewrites existing columns.
func (c *Component) ensureSchema(ctx context.Context, db *gorm.DB) error {
	migrator := db.WithContext(ctx)
	for _, m := range model.All() {
		existed := migrator.Migrator().HasTable(m)
		if err := migrator.AutoMigrate(m); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		if !existed {
			logging.Infof(ctx, "[database] created table for %T", m)
		}
	}
	return nil
}

// monitorLoop is the sole writer of the health record after startup.
func (c *Component) monitorLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.checkOnce()
		}
	}
}

func (c *Component) checkOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.PingTimeout)
	err := c.ping(ctx)
	cancel()

	c.mutex.Lock()
	wasConnected := c.health.Connected
	c.health.LastHealthCheck = time.Now()
	c.health.Connected = err == nil
	c.mutex.Unlock()

	switch {
	case err != nil && wasConnected:
		logging.Errorf(context.Background(), "[database] health probe failed: %v", err)
		c.publish(consts.TOPIC_DB_DISCONNECTED, "disconnected", 0, err)
		c.reconnect()
	case err == nil && !wasConnected:
		// Recovered without our help (e.g. network blip between probes).
		c.publish(consts.TOPIC_DB_RECONNECTED, "reconnected", 0, nil)
	}
}

func (c *Component) ping(ctx context.Context) error {
	c.mutex.RLock()
	sqlDB := c.sqlDB
	c.mutex.RUnlock()
	if sqlDB == nil {
		return ErrNotInitialized
	}
	return sqlDB.PingContext(ctx)
}

// reconnect rebuilds the pool after a failed health probe.
func (c *Component) reconnect() {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.PingTimeout+c.cfg.MinDelay)
	defer cancel()

	db, sqlDB, err := c.openPool(ctx)
	if err != nil {
		logging.Errorf(ctx, "[database] reconnect failed: %v", err)
		return
	}

	c.mutex.Lock()
	old := c.sqlDB
	c.db = db
	c.sqlDB = sqlDB
	c.health.Connected = true
	c.mutex.Unlock()
	if old != nil {
		_ = old.Close()
	}

	logging.Infof(ctx, "[database] reconnected")
	c.publish(consts.TOPIC_DB_RECONNECTED, "reconnected", 0, nil)
}

func (c *Component) Stop(ctx context.Context) error {
	defer func() { _ = c.BaseComponent.Stop(ctx) }()

	c.mutex.Lock()
	stopCh := c.stopCh
	c.stopCh = nil
	c.mutex.Unlock()
	if stopCh != nil {
		close(stopCh)
		c.wg.Wait()
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.sqlDB != nil {
		_ = c.sqlDB.Close()
	}
	c.db = nil
	c.sqlDB = nil
	c.health = Health{}
	logging.Infof(ctx, "[database] connection manager stopped")
	return nil
}

func (c *Component) HealthCheck() error {
	if err := c.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if !c.health.Initialized {
		return ErrNotInitialized
	}
	if !c.health.Connected {
		return fmt.Errorf("database: connection unhealthy since %s", c.health.LastHealthCheck.Format(time.RFC3339))
	}
	return nil
}

// GetDB returns the gorm handle, or ErrNotInitialized before a successful
// Start.
func (c *Component) GetDB() (*gorm.DB, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if !c.health.Initialized || c.db == nil {
		return nil, ErrNotInitialized
	}
	return c.db, nil
}

// GetSQLDB returns the raw pool handle.
func (c *Component) GetSQLDB() (*sql.DB, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if !c.health.Initialized || c.sqlDB == nil {
		return nil, ErrNotInitialized
	}
	return c.sqlDB, nil
}

// Health returns a copy of the connection health record.
func (c *Component) Health() Health {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.health
}

func (c *Component) publish(topic, state string, attempt int, err error) {
	if c.bus == nil {
		return
	}
	p := eventbus.StoragePayload{State: state, Attempt: attempt}
	if err != nil {
		p.Err = err.Error()
	}
	c.bus.Publish(topic, p)
}
