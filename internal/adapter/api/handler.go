package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"customs-gateway/internal/domain/entity"
	"customs-gateway/internal/domain/repository"
	"customs-gateway/pkg/logging"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// QueryRouter is the caller-facing contract of the routing pipeline.
type QueryRouter interface {
	Route(ctx context.Context, query string, actor entity.ActorContext) (string, error)
}

type ThreatLister interface {
	List(ctx context.Context, filter entity.AuditFilter) ([]entity.AuditRecord, error)
}

type ChatRequest struct {
	Query string `json:"query"`
}

type ChatResponse struct {
	RequestID string `json:"request_id"`
	Answer    string `json:"answer"`
}

type ChatHandler struct {
	router  QueryRouter
	limiter repository.QueryLimiter // nil disables limiting
	timeout time.Duration           // zero leaves Route unbounded
	logger  *logging.Logger
}

func NewChatHandler(router QueryRouter, limiter repository.QueryLimiter, timeout time.Duration, logger *logging.Logger) *ChatHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{router: router, limiter: limiter, timeout: timeout, logger: logger}
}

func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": entity.ErrInvalidRequest.Error()})
	}

	actor := ActorFrom(c)
	requestID := uuid.NewString()
	log := h.logger.With("request_id", requestID, "actor", actor.Name())
	key := limiterKey(actor)

	if h.limiter != nil {
		allowed, err := h.limiter.CheckLimit(c.Context(), key)
		if err != nil {
			log.Error("rate limiter check failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal gateway error"})
		}
		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": entity.ErrRateLimitExceeded.Error()})
		}
	}

	ctx := context.Context(c.Context())
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	// The Delivery layer maps the business error to HTTP status codes
	answer, err := h.router.Route(ctx, req.Query, actor)
	if err != nil {
		log.Error("route failed", "error", err)
		switch {
		case errors.Is(err, entity.ErrInvalidRequest):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, entity.ErrMalformedModelOutput):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream model returned an unreadable answer"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal gateway error"})
	}

	if h.limiter != nil {
		if err := h.limiter.Increment(c.Context(), key); err != nil {
			log.Warn("usage increment failed", "error", err)
		}
	}

	c.Set("X-Request-ID", requestID)
	return c.Status(fiber.StatusOK).JSON(ChatResponse{RequestID: requestID, Answer: answer})
}

// limiterKey counts officers by identity and everyone else by address.
func limiterKey(actor entity.ActorContext) string {
	if actor.IsAuthenticatedOfficer {
		return "officer:" + actor.Name()
	}
	return "ip:" + actor.ClientIP
}

type ThreatsHandler struct {
	threats ThreatLister
	logger  *logging.Logger
}

func NewThreatsHandler(threats ThreatLister, logger *logging.Logger) *ThreatsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ThreatsHandler{threats: threats, logger: logger}
}

// HandleList serves GET /v1/threats?category=&from=&to= with RFC 3339 bounds.
func (h *ThreatsHandler) HandleList(c *fiber.Ctx) error {
	filter := entity.AuditFilter{Category: c.Query("category")}
	var err error
	if filter.From, err = parseTimeParam(c.Query("from")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid from: " + err.Error()})
	}
	if filter.To, err = parseTimeParam(c.Query("to")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid to: " + err.Error()})
	}

	records, err := h.threats.List(c.Context(), filter)
	if err != nil {
		h.logger.Error("threat listing failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal gateway error"})
	}
	if records == nil {
		records = []entity.AuditRecord{}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"threats": records, "count": len(records)})
}

func parseTimeParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}
