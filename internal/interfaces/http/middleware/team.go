package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/projledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	// TeamIDHeader selects the active team for one request
	TeamIDHeader = "X-Team-ID"
	// TeamIDKey holds the active team ID; every tenant-scoped query uses it
	TeamIDKey = "team_id"
)

// TeamMembership answers whether a user belongs to a team
type TeamMembership interface {
	IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
}

// TeamContext resolves the active team. It defaults to the team in the
// access token; an X-Team-ID header switches to another team the caller
// belongs to. Must run after JWTAuth.
func TeamContext(membership TeamMembership, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		tokenTeam, _ := getUUID(c, JWTTeamIDKey)

		header := c.GetHeader(TeamIDHeader)
		if header == "" {
			c.Next()
			return
		}
		teamID, err := uuid.Parse(header)
		if err != nil {
			abort(c, http.StatusBadRequest, "BAD_REQUEST", "X-Team-ID must be a UUID")
			return
		}
		if teamID == tokenTeam {
			c.Next()
			return
		}

		member, err := membership.IsMember(c.Request.Context(), teamID, userID)
		if err != nil {
			log.Error("Failed to check team membership",
				zap.String("team_id", teamID.String()),
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve team")
			return
		}
		if !member {
			abort(c, http.StatusForbidden, "NOT_A_TEAM_MEMBER", "You are not a member of this team")
			return
		}

		c.Set(TeamIDKey, teamID)
		c.Request = c.Request.WithContext(logger.WithTeamID(c.Request.Context(), teamID.String()))
		c.Next()
	}
}

// GetTeamID returns the active team ID
func GetTeamID(c *gin.Context) (uuid.UUID, bool) {
	return getUUID(c, TeamIDKey)
}
