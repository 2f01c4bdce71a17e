package api

import (
	"strings"

	"customs-gateway/internal/domain/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	actorKey    = "actor"
	officerRole = "officer"
)

// OfficerClaims is the token payload issued to customs officers.
type OfficerClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ActorMiddleware resolves the caller into an entity.ActorContext. A valid
// HMAC token with the officer role authenticates the subject as an officer;
// anything else, including a bad token, leaves the caller anonymous.
func ActorMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := entity.ActorContext{ClientIP: c.IP()}
		if claims, ok := parseOfficerToken(secret, c.Get(fiber.HeaderAuthorization)); ok {
			actor.IsAuthenticatedOfficer = true
			actor.Identity = claims.Subject
		}
		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// RequireOfficer rejects callers that ActorMiddleware did not authenticate.
func RequireOfficer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ActorFrom(c).IsAuthenticatedOfficer {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": entity.ErrUnauthorized.Error()})
		}
		return c.Next()
	}
}

// ActorFrom returns the actor stored by ActorMiddleware.
func ActorFrom(c *fiber.Ctx) entity.ActorContext {
	actor, ok := c.Locals(actorKey).(entity.ActorContext)
	if !ok {
		return entity.ActorContext{ClientIP: c.IP()}
	}
	return actor
}

func parseOfficerToken(secret, header string) (*OfficerClaims, bool) {
	if secret == "" || !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	claims := &OfficerClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}
	if claims.Role != officerRole || claims.Subject == "" {
		return nil, false
	}
	return claims, true
}
