package api

import (
	"context"
	"net/http"
	"time"

	"customs-gateway/internal/domain/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// IndexStatusReporter reports knowledge base readiness for /health.
type IndexStatusReporter interface {
	Status(ctx context.Context) (entity.IndexStatus, error)
}

type ServerOptions struct {
	AppName      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// ProxyHeader names the header carrying the client address when the
	// gateway sits behind a reverse proxy. Empty uses the socket address.
	ProxyHeader string
	// TrustedProxies restricts ProxyHeader to requests from these addresses
	// or CIDRs. Empty trusts the header from any peer.
	TrustedProxies []string
}

// NewApp builds the Fiber app the routes are mounted on.
func NewApp(opts ServerOptions) *fiber.App {
	cfg := fiber.Config{
		AppName:      opts.AppName,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	if opts.ProxyHeader != "" {
		cfg.ProxyHeader = opts.ProxyHeader
		cfg.EnableIPValidation = true
		if len(opts.TrustedProxies) > 0 {
			cfg.EnableTrustedProxyCheck = true
			cfg.TrustedProxies = opts.TrustedProxies
		}
	}
	return fiber.New(cfg)
}

type RouterConfig struct {
	Version        string
	Env            string
	JWTSecret      string
	Index          IndexStatusReporter // optional
	MetricsHandler http.Handler        // optional
}

func SetupRouter(app *fiber.App, cfg RouterConfig, chat *ChatHandler, threats *ThreatsHandler) {
	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status":  "healthy",
			"version": cfg.Version,
			"env":     cfg.Env,
		}
		if cfg.Index != nil {
			status, err := cfg.Index.Status(c.Context())
			if err != nil {
				body["index"] = "error"
				body["status"] = "degraded"
			} else {
				body["index"] = string(status)
			}
		}
		return c.Status(fiber.StatusOK).JSON(body)
	})

	if cfg.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.MetricsHandler))
	}

	// API Versioning
	v1 := app.Group("/v1", ActorMiddleware(cfg.JWTSecret))
	// Endpoints
	v1.Post("/chat", chat.HandleChat)
	v1.Get("/threats", RequireOfficer(), threats.HandleList)
}
