package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Redis     *bool     `json:"redis,omitempty"`
	Calendar  string    `json:"calendar"`
	Services  int       `json:"services"`
	CheckedAt time.Time `json:"checkedAt"`
}

// HealthMonitor keeps the latest snapshot of the dependencies' health. A nil
// Redis client means sessions are not stored in Redis.
type HealthMonitor struct {
	redis    *redis.Client
	calendar string
	services int

	mu      sync.RWMutex
	current HealthStatus
}

func NewHealthMonitor(redisClient *redis.Client, calendarBackend string, services int) *HealthMonitor {
	return &HealthMonitor{redis: redisClient, calendar: calendarBackend, services: services}
}

// Status returns latest stored health snapshot.
func (m *HealthMonitor) Status() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Check refreshes the snapshot now.
func (m *HealthMonitor) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Calendar:  m.calendar,
		Services:  m.services,
		CheckedAt: time.Now().UTC(),
	}
	if m.redis != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		ok := m.redis.Ping(pingCtx).Err() == nil
		cancel()
		status.Redis = &ok
	}

	m.mu.Lock()
	m.current = status
	m.mu.Unlock()
	return status
}

// Start performs periodic health checks until ctx is done.
func (m *HealthMonitor) Start(ctx context.Context, interval time.Duration) {
	m.Check(ctx)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Check(ctx)
			}
		}
	}()
}
