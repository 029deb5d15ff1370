// Package health keeps a cached view of the key-value store's reachability,
// refreshed on a cron schedule.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"medwaste/pkg/storage"
)

// Status represents the current status of the store.
type Status struct {
	Status    string    `json:"status"`
	Driver    string    `json:"driver"`
	Store     bool      `json:"store"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Monitor pings the store and remembers the latest result
type Monitor struct {
	store   storage.Store
	driver  string
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.RWMutex
	current *Status
	cron    *cron.Cron
}

func NewMonitor(store storage.Store, driver string, logger *zap.Logger) *Monitor {
	return &Monitor{
		store:   store,
		driver:  driver,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// Check pings the store now and records the result.
func (m *Monitor) Check(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	st := Status{Status: "ok", Driver: m.driver, Store: true, CheckedAt: time.Now()}
	if err := m.store.Ping(ctx); err != nil {
		st.Status = "degraded"
		st.Store = false
		st.Error = err.Error()
		m.logger.Warn("store health check failed", zap.String("driver", m.driver), zap.Error(err))
	}

	m.mu.Lock()
	m.current = &st
	m.mu.Unlock()
	return st
}

// Current returns the last recorded status, checking first if there is none yet.
func (m *Monitor) Current(ctx context.Context) Status {
	m.mu.RLock()
	current := m.current
	m.mu.RUnlock()

	if current == nil {
		return m.Check(ctx)
	}
	return *current
}

// Start schedules Check with a cron spec such as "@every 1m".
func (m *Monitor) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { m.Check(context.Background()) }); err != nil {
		return fmt.Errorf("invalid health check schedule %q: %w", spec, err)
	}

	m.mu.Lock()
	m.cron = c
	m.mu.Unlock()

	c.Start()
	m.logger.Info("health monitor started", zap.String("schedule", spec))
	return nil
}

// Stop halts the schedule and waits for a running check to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	m.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}
