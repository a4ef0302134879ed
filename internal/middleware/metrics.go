package middleware

import (
	"sync"

	"panoram/internal/observability"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

// RedisErrors counts failed Redis commands by command name.
var RedisErrors = observability.RedisErrorRate

var (
	promOnce sync.Once
	promInst *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide HTTP metrics collector. The collectors
// live in the default registry, so repeated calls share one instance.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInst = fiberprometheus.New(serviceName)
	})
	return promInst
}

// MetricsMiddleware records request counts and latencies. Nil disables it.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	if prom == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return prom.Middleware
}
