package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/identity"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTeamService() (*TeamService, *MockTeamRepository, *MockUserRepository, *recordingPublisher) {
	teams := new(MockTeamRepository)
	users := new(MockUserRepository)
	publisher := &recordingPublisher{}
	svc := NewTeamService(teams, users, zap.NewNop())
	svc.SetEventPublisher(publisher)
	return svc, teams, users, publisher
}

func TestTeamService_Create(t *testing.T) {
	ctx := context.Background()
	svc, teams, users, publisher := newTeamService()
	owner := createTestUser("ada@example.com")

	teams.On("Save", ctx, mock.AnythingOfType("*identity.Team")).Return(nil)
	users.On("FindByIDs", ctx, []uuid.UUID{owner.ID}).Return([]identity.User{*owner}, nil)

	info, err := svc.Create(ctx, owner.ID, CreateTeamInput{Name: " Analytical Engines "})

	require.NoError(t, err)
	assert.Equal(t, "Analytical Engines", info.Name)
	assert.Equal(t, owner.ID, info.OwnerID)
	assert.Equal(t, "OWNER", info.Role)
	require.Len(t, info.Members, 1)
	assert.Equal(t, "ada@example.com", info.Members[0].Email)
	assert.Equal(t, []string{identity.EventTypeTeamCreated}, publisher.types())
}

func TestTeamService_Create_EmptyName(t *testing.T) {
	svc, teams, _, _ := newTeamService()

	_, err := svc.Create(context.Background(), uuid.New(), CreateTeamInput{Name: "  "})

	requireCode(t, err, "INVALID_TEAM_NAME")
	teams.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestTeamService_AddMember(t *testing.T) {
	ctx := context.Background()
	svc, teams, users, publisher := newTeamService()
	owner := createTestUser("ada@example.com")
	newcomer := createTestUser("charles@example.com")
	team := createTestTeam("Analytical Engines", owner.ID)

	teams.On("FindByID", ctx, team.ID).Return(team, nil)
	users.On("FindByEmail", ctx, "charles@example.com").Return(newcomer, nil)
	teams.On("Save", ctx, team).Return(nil)
	users.On("FindByIDs", ctx, []uuid.UUID{owner.ID, newcomer.ID}).Return([]identity.User{*owner, *newcomer}, nil)

	info, err := svc.AddMember(ctx, owner.ID, team.ID, AddTeamMemberInput{Email: "charles@example.com"})

	require.NoError(t, err)
	require.Len(t, info.Members, 2)
	assert.Equal(t, "MEMBER", info.Members[1].Role)
	assert.Equal(t, "charles@example.com", info.Members[1].Email)
	assert.Equal(t, []string{identity.EventTypeTeamMemberAdded}, publisher.types())
	teams.AssertExpectations(t)
}

func TestTeamService_AddMember_Rejections(t *testing.T) {
	ctx := context.Background()
	svc, teams, users, _ := newTeamService()
	owner := createTestUser("ada@example.com")
	member := createTestUser("charles@example.com")
	team := createTestTeam("Analytical Engines", owner.ID)
	require.NoError(t, team.AddMember(member.ID))
	team.ClearDomainEvents()

	teams.On("FindByID", ctx, team.ID).Return(team, nil)
	users.On("FindByEmail", ctx, "ghost@example.com").Return(nil, shared.ErrNotFound)
	users.On("FindByEmail", ctx, "charles@example.com").Return(member, nil)

	_, err := svc.AddMember(ctx, member.ID, team.ID, AddTeamMemberInput{Email: "someone@example.com"})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.AddMember(ctx, uuid.New(), team.ID, AddTeamMemberInput{Email: "someone@example.com"})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.AddMember(ctx, owner.ID, team.ID, AddTeamMemberInput{Email: "ghost@example.com"})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.AddMember(ctx, owner.ID, team.ID, AddTeamMemberInput{Email: "charles@example.com"})
	requireCode(t, err, "ALREADY_MEMBER")

	teams.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestTeamService_RemoveMember(t *testing.T) {
	ctx := context.Background()
	svc, teams, users, _ := newTeamService()
	owner := createTestUser("ada@example.com")
	member := createTestUser("charles@example.com")
	team := createTestTeam("Analytical Engines", owner.ID)
	require.NoError(t, team.AddMember(member.ID))

	teams.On("FindByID", ctx, team.ID).Return(team, nil)
	teams.On("Save", ctx, team).Return(nil)
	users.On("FindByIDs", ctx, []uuid.UUID{owner.ID}).Return([]identity.User{*owner}, nil)

	_, err := svc.RemoveMember(ctx, owner.ID, team.ID, owner.ID)
	requireCode(t, err, "CANNOT_REMOVE_OWNER")

	info, err := svc.RemoveMember(ctx, owner.ID, team.ID, member.ID)
	require.NoError(t, err)
	require.Len(t, info.Members, 1)
	assert.Equal(t, owner.ID, info.Members[0].UserID)
}

func TestTeamService_ListMine(t *testing.T) {
	ctx := context.Background()
	svc, teams, users, _ := newTeamService()
	user := createTestUser("ada@example.com")
	own := createTestTeam("Personal", user.ID)

	teams.On("FindByMember", ctx, user.ID).Return([]identity.Team{*own}, nil)
	users.On("FindByIDs", ctx, []uuid.UUID{user.ID}).Return([]identity.User{*user}, nil)

	items, err := svc.ListMine(ctx, user.ID)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Personal", items[0].Name)
	assert.Equal(t, "OWNER", items[0].Role)
}

func TestTeamService_IsMember(t *testing.T) {
	ctx := context.Background()
	svc, teams, _, _ := newTeamService()
	teamID, userID := uuid.New(), uuid.New()
	teams.On("IsMember", ctx, teamID, userID).Return(true, nil)

	ok, err := svc.IsMember(ctx, teamID, userID)

	require.NoError(t, err)
	assert.True(t, ok)
}
