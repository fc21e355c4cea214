package services

import (
	"context"
	"sync"
	"time"

	"github.com/NomadCrew/cats-backend/logger"
	"github.com/NomadCrew/cats-backend/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthService struct {
	db          Pinger
	redisClient redis.Cmdable
	version     string
	startTime   time.Time
	log         *zap.SugaredLogger

	mu       sync.RWMutex
	indexErr error
}

// NewHealthService builds the service. A nil db or redisClient means the
// component is disabled and left out of the report.
func NewHealthService(db Pinger, redisClient redis.Cmdable, version string) *HealthService {
	return &HealthService{
		db:          db,
		redisClient: redisClient,
		version:     version,
		startTime:   time.Now(),
		log:         logger.GetLogger(),
	}
}

// SetIndexStatus records the outcome of the startup index sync.
func (h *HealthService) SetIndexStatus(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.indexErr = err
}

func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := make(map[string]types.HealthComponent)
	overallStatus := types.HealthStatusUp

	merge := func(name string, component types.HealthComponent) {
		components[name] = component
		switch component.Status {
		case types.HealthStatusDown:
			overallStatus = types.HealthStatusDown
		case types.HealthStatusDegraded:
			if overallStatus != types.HealthStatusDown {
				overallStatus = types.HealthStatusDegraded
			}
		}
	}

	if h.db != nil {
		merge("database", h.checkDatabase(ctx))
	}
	if h.redisClient != nil {
		merge("redis", h.checkRedis(ctx))
	}

	return types.HealthCheck{
		Status:     overallStatus,
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

func (h *HealthService) checkDatabase(ctx context.Context) types.HealthComponent {
	if err := h.db.Ping(ctx); err != nil {
		h.log.Errorw("Database health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Database connection failed",
		}
	}

	h.mu.RLock()
	indexErr := h.indexErr
	h.mu.RUnlock()
	if indexErr != nil {
		return types.HealthComponent{
			Status:  types.HealthStatusDegraded,
			Details: "Index synchronization failed",
		}
	}

	return types.HealthComponent{
		Status: types.HealthStatusUp,
	}
}

func (h *HealthService) checkRedis(ctx context.Context) types.HealthComponent {
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Redis connection failed",
		}
	}

	return types.HealthComponent{
		Status: types.HealthStatusUp,
	}
}
