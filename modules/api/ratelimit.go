package api

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/example/task-tracker/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis/v3"
)

// newLimiterStorage returns Redis-backed storage when an address is
// configured, so limits hold across instances. nil selects the limiter's
// in-memory store.
func newLimiterStorage(cfg config.RateLimitConfig) fiber.Storage {
	if cfg.RedisAddr == "" {
		return nil
	}
	host, port := parseRedisAddr(cfg.RedisAddr)
	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		PoolSize: 10,
	})
}

// LoginRateLimit limits login attempts per client IP.
func LoginRateLimit(cfg config.RateLimitConfig, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "login:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			retryAfter := int(cfg.Window / time.Second)
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Error:   "Too Many Requests",
				Message: fmt.Sprintf("Too many login attempts. Please retry after %d seconds.", retryAfter),
				Status:  fiber.StatusTooManyRequests,
			})
		},
		Storage: storage,
	})
}

// parseRedisAddr splits host:port, falling back to 127.0.0.1:6379.
func parseRedisAddr(addr string) (string, int) {
	const defaultHost = "127.0.0.1"
	const defaultPort = 6379

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return defaultHost, defaultPort
	}
	if host == "" {
		host = defaultHost
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, defaultPort
	}
	return host, port
}
