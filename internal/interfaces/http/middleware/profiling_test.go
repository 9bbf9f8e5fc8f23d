package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestResourceOf(t *testing.T) {
	tests := map[string]string{
		"/api/v1/projects/:id/tasks": "projects",
		"/api/v1/invoices":           "invoices",
		"/health":                    "",
		"":                           "",
	}
	for route, want := range tests {
		assert.Equal(t, want, resourceOf(route), route)
	}
}

func TestProfilingLabels(t *testing.T) {
	teamID := uuid.New()
	labels := map[string]string{}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(TeamIDKey, teamID)
		c.Next()
	}, ProfilingLabels())
	router.GET("/api/v1/projects/:id", func(c *gin.Context) {
		pprof.ForLabels(c.Request.Context(), func(key, value string) bool {
			labels[key] = value
			return true
		})
		c.Status(http.StatusOK)
	})

	serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/projects/7", nil))

	assert.Equal(t, map[string]string{
		"method":   http.MethodGet,
		"route":    "/api/v1/projects/:id",
		"resource": "projects",
		"team_id":  teamID.String(),
	}, labels)
}
