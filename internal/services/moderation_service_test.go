package services

import (
	"context"
	"testing"

	"nearchat/internal/domain"
	"nearchat/internal/events"
	"nearchat/internal/repository/mocks"
	nearchat_errors "nearchat/pkg/errors"
	"nearchat/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newModerationService(roles *mocks.RoleRepository, users *mocks.UserRepository, presence *presenceMock, publisher *publisherMock) *ModerationService {
	return NewModerationService(roles, users, presence, publisher, logger.GetGlobalLogger())
}

func TestBanRequiresAdmin(t *testing.T) {
	for _, roleType := range []domain.RoleType{domain.RoleTypeMember, domain.RoleTypeModerator} {
		roles := new(mocks.RoleRepository)
		roles.On("Get", mock.Anything, int64(5), int64(1)).Return(domain.Role{UserID: 5, RoomID: 1, RoleType: roleType}, nil)

		svc := newModerationService(roles, new(mocks.UserRepository), new(presenceMock), new(publisherMock))
		err := svc.Ban(context.Background(), 5, 8, 1)
		assert.ErrorIs(t, err, nearchat_errors.ErrForbidden)
	}
}

func TestBanAdminTargetRejected(t *testing.T) {
	roles := new(mocks.RoleRepository)
	roles.On("Get", mock.Anything, int64(5), int64(1)).Return(domain.Role{RoleType: domain.RoleTypeAdmin}, nil)
	roles.On("Get", mock.Anything, int64(8), int64(1)).Return(domain.Role{RoleType: domain.RoleTypeAdmin}, nil)

	svc := newModerationService(roles, new(mocks.UserRepository), new(presenceMock), new(publisherMock))
	err := svc.Ban(context.Background(), 5, 8, 1)
	assert.ErrorIs(t, err, nearchat_errors.ErrForbidden)
}

func TestBanEvictsAndNotifies(t *testing.T) {
	roles := new(mocks.RoleRepository)
	roles.On("Get", mock.Anything, int64(5), int64(1)).Return(domain.Role{RoleType: domain.RoleTypeAdmin}, nil)
	roles.On("Get", mock.Anything, int64(8), int64(1)).Return(domain.Role{RoleType: domain.RoleTypeMember}, nil)
	roles.On("SetRoleType", mock.Anything, int64(8), int64(1), domain.RoleTypeBanned).Return(nil)

	users := new(mocks.UserRepository)
	users.On("GetByID", mock.Anything, int64(8)).Return(domain.User{ID: 8, Nickname: "bea"}, nil)

	presence := new(presenceMock)
	presence.On("LeaveRoom", mock.Anything, int64(1), "bea", int64(8)).Return(nil)
	presence.On("RoomMembers", mock.Anything, int64(1)).Return([]string{"ana####5"}, nil)

	publisher := new(publisherMock)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newModerationService(roles, users, presence, publisher)
	require.NoError(t, svc.Ban(context.Background(), 5, 8, 1))

	roles.AssertExpectations(t)
	presence.AssertExpectations(t)

	// ban notice to the target's user channel, then the refreshed member list
	require.Len(t, publisher.frames, 2)
	assert.Equal(t, "user:8", publisher.frames[0].Channel)
	var banned events.Banned
	assert.Equal(t, events.OutboundBanned, publisher.decodeFrame(0, &banned))
	assert.Equal(t, int64(1), banned.ChatID)

	assert.Equal(t, "room:1", publisher.frames[1].Channel)
	var alert events.AlertMessage
	assert.Equal(t, events.OutboundAlertMessage, publisher.decodeFrame(1, &alert))
	assert.Equal(t, []string{"ana####5"}, alert.Users)

	// existing membership flips in place, no second write
	roles.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestBanOutsiderCreatesBannedRole(t *testing.T) {
	roles := new(mocks.RoleRepository)
	roles.On("Get", mock.Anything, int64(5), int64(1)).Return(domain.Role{RoleType: domain.RoleTypeAdmin}, nil)
	roles.On("Get", mock.Anything, int64(8), int64(1)).Return(domain.Role{}, nearchat_errors.ErrNotFound)
	roles.On("Upsert", mock.Anything, mock.MatchedBy(func(r *domain.Role) bool {
		return r.UserID == 8 && r.RoomID == 1 && r.RoleType == domain.RoleTypeBanned
	})).Return(nil)

	users := new(mocks.UserRepository)
	users.On("GetByID", mock.Anything, int64(8)).Return(domain.User{ID: 8, Nickname: "bea"}, nil)

	presence := new(presenceMock)
	presence.On("LeaveRoom", mock.Anything, int64(1), "bea", int64(8)).Return(nil)
	presence.On("RoomMembers", mock.Anything, int64(1)).Return([]string{"ana####5"}, nil)

	publisher := new(publisherMock)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newModerationService(roles, users, presence, publisher)
	require.NoError(t, svc.Ban(context.Background(), 5, 8, 1))

	roles.AssertExpectations(t)
	roles.AssertNotCalled(t, "SetRoleType", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUnbanRestoresMember(t *testing.T) {
	roles := new(mocks.RoleRepository)
	roles.On("Get", mock.Anything, int64(5), int64(1)).Return(domain.Role{RoleType: domain.RoleTypeAdmin}, nil)
	roles.On("Get", mock.Anything, int64(8), int64(1)).Return(domain.Role{RoleType: domain.RoleTypeBanned}, nil)
	roles.On("SetRoleType", mock.Anything, int64(8), int64(1), domain.RoleTypeMember).Return(nil)

	svc := newModerationService(roles, new(mocks.UserRepository), new(presenceMock), new(publisherMock))
	require.NoError(t, svc.Unban(context.Background(), 5, 8, 1))
	roles.AssertExpectations(t)
}

func TestUnbanNotBannedConflicts(t *testing.T) {
	roles := new(mocks.RoleRepository)
	roles.On("Get", mock.Anything, int64(5), int64(1)).Return(domain.Role{RoleType: domain.RoleTypeAdmin}, nil)
	roles.On("Get", mock.Anything, int64(8), int64(1)).Return(domain.Role{RoleType: domain.RoleTypeMember}, nil)

	svc := newModerationService(roles, new(mocks.UserRepository), new(presenceMock), new(publisherMock))
	err := svc.Unban(context.Background(), 5, 8, 1)
	assert.ErrorIs(t, err, nearchat_errors.ErrConflict)
}

func TestIsBanned(t *testing.T) {
	roles := new(mocks.RoleRepository)
	roles.On("Get", mock.Anything, int64(8), int64(1)).Return(domain.Role{RoleType: domain.RoleTypeBanned}, nil)
	roles.On("Get", mock.Anything, int64(9), int64(1)).Return(domain.Role{}, nearchat_errors.ErrNotFound)

	svc := newModerationService(roles, new(mocks.UserRepository), new(presenceMock), new(publisherMock))

	banned, err := svc.IsBanned(context.Background(), 8, 1)
	require.NoError(t, err)
	assert.True(t, banned)

	banned, err = svc.IsBanned(context.Background(), 9, 1)
	require.NoError(t, err)
	assert.False(t, banned)
}
