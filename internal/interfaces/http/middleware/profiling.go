package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/projledger/backend/internal/infrastructure/telemetry"
)

// ProfilingLabels runs the rest of the chain under pprof labels for the
// route, its resource and the active team, so continuous profiles can be
// sliced per endpoint. Place it after TeamContext.
func ProfilingLabels() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		labels := map[string]string{
			"method":   c.Request.Method,
			"route":    route,
			"resource": resourceOf(route),
		}
		if teamID, ok := GetTeamID(c); ok {
			labels["team_id"] = teamID.String()
		}

		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// resourceOf returns the first path segment after /api/v1,
// e.g. "/api/v1/projects/:id/tasks" -> "projects"
func resourceOf(route string) string {
	rest, ok := strings.CutPrefix(route, "/api/v1/")
	if !ok {
		return ""
	}
	resource, _, _ := strings.Cut(rest, "/")
	return resource
}
