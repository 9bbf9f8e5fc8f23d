package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/projledger/backend/internal/application/identity"
)

// TeamService is the subset of the team service used over HTTP
type TeamService interface {
	Create(ctx context.Context, userID uuid.UUID, input appidentity.CreateTeamInput) (*appidentity.TeamInfo, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]appidentity.TeamInfo, error)
	AddMember(ctx context.Context, callerID, teamID uuid.UUID, input appidentity.AddTeamMemberInput) (*appidentity.TeamInfo, error)
	RemoveMember(ctx context.Context, callerID, teamID, userID uuid.UUID) (*appidentity.TeamInfo, error)
}

// TeamHandler manages teams and their membership
type TeamHandler struct {
	BaseHandler
	teams TeamService
}

// NewTeamHandler creates a new TeamHandler
func NewTeamHandler(teams TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

// RegisterRoutes mounts the team routes
func (h *TeamHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/teams")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.POST("/:id/members", h.AddMember)
	g.DELETE("/:id/members/:userId", h.RemoveMember)
}

// List returns every team the caller belongs to
func (h *TeamHandler) List(c *gin.Context) {
	_, userID, ok := h.Caller(c)
	if !ok {
		return
	}
	teams, err := h.teams.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTeamResponses(teams))
}

// Create makes a new team owned by the caller
func (h *TeamHandler) Create(c *gin.Context) {
	_, userID, ok := h.Caller(c)
	if !ok {
		return
	}
	var req CreateTeamRequest
	if !h.BindJSON(c, &req) {
		return
	}
	team, err := h.teams.Create(c.Request.Context(), userID, appidentity.CreateTeamInput{Name: req.Name})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toTeamResponse(*team))
}

// AddMember invites an existing user by email
func (h *TeamHandler) AddMember(c *gin.Context) {
	_, callerID, ok := h.Caller(c)
	if !ok {
		return
	}
	teamID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req AddTeamMemberRequest
	if !h.BindJSON(c, &req) {
		return
	}
	team, err := h.teams.AddMember(c.Request.Context(), callerID, teamID, appidentity.AddTeamMemberInput{Email: req.Email})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTeamResponse(*team))
}

// RemoveMember removes a user from the team
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	_, callerID, ok := h.Caller(c)
	if !ok {
		return
	}
	teamID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	userID, ok := h.PathID(c, "userId")
	if !ok {
		return
	}
	team, err := h.teams.RemoveMember(c.Request.Context(), callerID, teamID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTeamResponse(*team))
}
