package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult is the outcome of probing a single dependency.
type CheckResult struct {
	Status    Status `json:"status"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

type HealthStatus struct {
	Status  Status                 `json:"status"`
	Version string                 `json:"version,omitempty"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// Checker probes the service's dependencies. Redis is the only hard
// dependency: the engine cannot persist or dedup without it.
type Checker struct {
	redisClient redis.UniversalClient
	version     string
}

func NewChecker(redisClient redis.UniversalClient, version string) *Checker {
	return &Checker{
		redisClient: redisClient,
		version:     version,
	}
}

func (c *Checker) Check(ctx context.Context) *HealthStatus {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := &HealthStatus{
		Status:  StatusHealthy,
		Version: c.version,
		Checks:  make(map[string]CheckResult),
	}

	if c.redisClient != nil {
		start := time.Now()
		if err := c.redisClient.Ping(checkCtx).Err(); err != nil {
			status.Status = StatusUnhealthy
			status.Checks["redis"] = CheckResult{
				Status: StatusUnhealthy,
				Error:  err.Error(),
			}
		} else {
			status.Checks["redis"] = CheckResult{
				Status:    StatusHealthy,
				LatencyMs: time.Since(start).Milliseconds(),
			}
		}
	}

	return status
}

func (c *Checker) respond(ctx *gin.Context) {
	status := c.Check(ctx.Request.Context())

	httpStatus := http.StatusOK
	if status.Status != StatusHealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	ctx.JSON(httpStatus, status)
}

// Handler serves the full dependency report.
func (c *Checker) Handler() gin.HandlerFunc {
	return c.respond
}

// LiveHandler always succeeds while the process is up.
func (c *Checker) LiveHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// ReadyHandler succeeds only when the dependencies respond.
func (c *Checker) ReadyHandler() gin.HandlerFunc {
	return c.respond
}
