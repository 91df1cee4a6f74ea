package ordersserver

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
	apierrors "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/shared/errors"
)

// Headers set by the upstream auth gateway.
const (
	HeaderActorID        = "X-Actor-Id"
	HeaderActorRole      = "X-Actor-Role"
	HeaderIdempotencyKey = "Idempotency-Key"
)

const actorContextKey = "orders.actor"

// RequireActor resolves the acting customer or admin from gateway headers.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderActorID))
		role := domain.Role(strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderActorRole))))
		if id == "" || !role.Valid() {
			respondProblem(c, apierrors.ErrUnauthorized.
				WithDetail("X-Actor-Id and X-Actor-Role (customer or admin) are required"))
			return
		}
		c.Set(actorContextKey, domain.Actor{ID: id, Role: role})
		c.Next()
	}
}

// RequireAdmin rejects non-admin actors before the handler runs.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !actorFrom(c).IsAdmin() {
			respondProblem(c, apierrors.ErrForbidden.WithDetail("admin role required"))
			return
		}
		c.Next()
	}
}

func actorFrom(c *gin.Context) domain.Actor {
	if v, ok := c.Get(actorContextKey); ok {
		if actor, ok := v.(domain.Actor); ok {
			return actor
		}
	}
	return domain.Actor{}
}

func idempotencyKey(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
}
