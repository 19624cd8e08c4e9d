package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/go-petr/pet-ledger/pkg/web"
)

// Actor puts the actor named by the X-Actor header, or defaultActor, in the request context.
func Actor(defaultActor string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(web.ActorHeader))
		if actor == "" {
			actor = defaultActor
		}

		c.Request = c.Request.WithContext(web.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}
