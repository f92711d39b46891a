package service

import (
	"context"
	"testing"

	"Thread_Hive/internal/model"
	"Thread_Hive/internal/pkg"
	"Thread_Hive/internal/repository/mysql"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommunityJoinOpen(t *testing.T) {
	db := mysql.CreateTempDB(t)
	ctx := context.Background()
	creator := newUser(t, db, "alice")
	joiner := newUser(t, db, "bob")
	newCommunity(t, db, creator, "go", model.JoinModeOpen)

	svc := NewCommunityService(db, nil)
	pending, err := svc.Join(ctx, joiner.Uid, "go")
	require.NoError(t, err)
	assert.False(t, pending)

	members, err := svc.ListMembers(ctx, "go")
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestCommunityJoinApproval(t *testing.T) {
	db := mysql.CreateTempDB(t)
	ctx := context.Background()
	creator := newUser(t, db, "alice")
	applicant := newUser(t, db, "bob")
	c := newCommunity(t, db, creator, "go", model.JoinModeApproval)

	svc := NewCommunityService(db, nil)
	pending, err := svc.Join(ctx, applicant.Uid, "go")
	require.NoError(t, err)
	assert.True(t, pending)

	// 审批前不是成员
	isMember, err := (&mysql.CommunityMemberRepository{DB: db}).IsMember(ctx, c.ID, applicant.ID)
	require.NoError(t, err)
	assert.False(t, isMember)

	// 申请列表只有管理员能看
	_, err = svc.ListRequests(ctx, applicant.Uid, "go")
	assert.ErrorIs(t, err, pkg.ErrConflict)
	reqs, err := svc.ListRequests(ctx, creator.Uid, "go")
	require.NoError(t, err)
	assert.Len(t, reqs, 1)

	// 非管理员不能审批
	err = svc.AcceptRequest(ctx, applicant.Uid, "go", applicant.Uid)
	assert.ErrorIs(t, err, pkg.ErrConflict)

	require.NoError(t, svc.AcceptRequest(ctx, creator.Uid, "go", applicant.Uid))
	isMember, err = (&mysql.CommunityMemberRepository{DB: db}).IsMember(ctx, c.ID, applicant.ID)
	require.NoError(t, err)
	assert.True(t, isMember)
}

func TestCommunityInviteFlow(t *testing.T) {
	db := mysql.CreateTempDB(t)
	ctx := context.Background()
	creator := newUser(t, db, "alice")
	member := newUser(t, db, "bob")
	guest := newUser(t, db, "carol")
	c := newCommunity(t, db, creator, "go", model.JoinModeApproval)

	svc := NewCommunityService(db, nil)
	pending, err := svc.Join(ctx, member.Uid, "go")
	require.NoError(t, err)
	require.True(t, pending)
	require.NoError(t, svc.AcceptRequest(ctx, creator.Uid, "go", member.Uid))

	// 普通成员不能邀请
	err = svc.Invite(ctx, member.Uid, "go", guest.Uid)
	assert.ErrorIs(t, err, pkg.ErrConflict)

	require.NoError(t, svc.Invite(ctx, creator.Uid, "go", guest.Uid))
	invites, err := svc.ListInvitesForUser(ctx, guest.Uid)
	require.NoError(t, err)
	require.Len(t, invites, 1)
	assert.Equal(t, c.ID, invites[0].CommunityID)

	require.NoError(t, svc.AcceptInvite(ctx, guest.Uid, "go"))
	isMember, err := (&mysql.CommunityMemberRepository{DB: db}).IsMember(ctx, c.ID, guest.ID)
	require.NoError(t, err)
	assert.True(t, isMember)
}

func TestCommunityUpdateInfoModeratorOnly(t *testing.T) {
	db := mysql.CreateTempDB(t)
	ctx := context.Background()
	creator := newUser(t, db, "alice")
	member := newUser(t, db, "bob")
	newCommunity(t, db, creator, "go", model.JoinModeOpen)

	svc := NewCommunityService(db, nil)
	_, err := svc.Join(ctx, member.Uid, "go")
	require.NoError(t, err)

	_, err = svc.UpdateInfo(ctx, member.Uid, "go", map[string]any{"name": "hacked"})
	assert.ErrorIs(t, err, pkg.ErrConflict)

	got, err := svc.UpdateInfo(ctx, creator.Uid, "go", map[string]any{"name": "Go Fans", "creator_id": 999})
	require.NoError(t, err)
	assert.Equal(t, "Go Fans", got.Name)
	// 白名单之外的列不会被改
	assert.Equal(t, creator.ID, got.CreatorID)
}

func TestCommunityRemoveMemberAuthz(t *testing.T) {
	db := mysql.CreateTempDB(t)
	ctx := context.Background()
	creator := newUser(t, db, "alice")
	m1 := newUser(t, db, "bob")
	m2 := newUser(t, db, "carol")
	c := newCommunity(t, db, creator, "go", model.JoinModeOpen)

	svc := NewCommunityService(db, nil)
	_, err := svc.Join(ctx, m1.Uid, "go")
	require.NoError(t, err)
	_, err = svc.Join(ctx, m2.Uid, "go")
	require.NoError(t, err)

	// 普通成员不能移除别人
	err = svc.RemoveMember(ctx, m1.Uid, "go", m2.Uid)
	assert.ErrorIs(t, err, pkg.ErrConflict)

	// 自己退出可以
	require.NoError(t, svc.RemoveMember(ctx, m1.Uid, "go", m1.Uid))
	// 管理员移除别人可以
	require.NoError(t, svc.RemoveMember(ctx, creator.Uid, "go", m2.Uid))

	n, err := (&mysql.CommunityMemberRepository{DB: db}).CountMembers(ctx, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestCommunityModeratorManagement(t *testing.T) {
	db := mysql.CreateTempDB(t)
	ctx := context.Background()
	creator := newUser(t, db, "alice")
	member := newUser(t, db, "bob")
	c := newCommunity(t, db, creator, "go", model.JoinModeOpen)

	svc := NewCommunityService(db, nil)
	_, err := svc.Join(ctx, member.Uid, "go")
	require.NoError(t, err)

	// 非管理员不能任命
	err = svc.AddModerator(ctx, member.Uid, "go", member.Uid)
	assert.ErrorIs(t, err, pkg.ErrConflict)

	require.NoError(t, svc.AddModerator(ctx, creator.Uid, "go", member.Uid))
	isMod, err := (&mysql.CommunityMemberRepository{DB: db}).IsModerator(ctx, c.ID, member.ID)
	require.NoError(t, err)
	assert.True(t, isMod)

	require.NoError(t, svc.RemoveModerator(ctx, creator.Uid, "go", member.Uid))
	isMod, err = (&mysql.CommunityMemberRepository{DB: db}).IsModerator(ctx, c.ID, member.ID)
	require.NoError(t, err)
	assert.False(t, isMod)
}

func TestCommunityDeleteModeratorOnly(t *testing.T) {
	db := mysql.CreateTempDB(t)
	ctx := context.Background()
	creator := newUser(t, db, "alice")
	member := newUser(t, db, "bob")
	newCommunity(t, db, creator, "go", model.JoinModeOpen)

	svc := NewCommunityService(db, nil)
	_, err := svc.Join(ctx, member.Uid, "go")
	require.NoError(t, err)

	err = svc.Delete(ctx, member.Uid, "go")
	assert.ErrorIs(t, err, pkg.ErrConflict)

	require.NoError(t, svc.Delete(ctx, creator.Uid, "go"))
	_, err = svc.Get(ctx, "go")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestCommunityCreateValidation(t *testing.T) {
	db := mysql.CreateTempDB(t)
	ctx := context.Background()
	creator := newUser(t, db, "alice")

	svc := NewCommunityService(db, nil)
	_, err := svc.Create(ctx, creator.Uid, "go", "Go Fans", "", "", "invite-only")
	assert.Error(t, err)

	_, err = svc.Create(ctx, "u_nobody", "go", "Go Fans", "", "", model.JoinModeOpen)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	c, err := svc.Create(ctx, creator.Uid, "go", "Go Fans", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, model.JoinModeOpen, c.JoinMode)
}
