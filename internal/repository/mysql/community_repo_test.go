package mysql

import (
	"context"
	"testing"

	"Thread_Hive/internal/model"
	"Thread_Hive/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommunityCreatorBecomesModerator(t *testing.T) {
	db := CreateTempDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "alice")
	c := seedCommunity(t, db, u, "gophers", model.JoinModeOpen)

	members := &CommunityMemberRepository{DB: db}
	isMod, err := members.IsModerator(ctx, c.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, isMod)
	n, err := members.CountMembers(ctx, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestCreateCommunityCidCaseInsensitive(t *testing.T) {
	db := CreateTempDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "alice")
	seedCommunity(t, db, u, "Gophers", model.JoinModeOpen)

	repo := &CommunityRepository{DB: db}
	_, err := repo.Create(ctx, &model.Community{Cid: "gophers", Name: "dup", CreatorID: u.ID, JoinMode: model.JoinModeOpen})
	assert.ErrorIs(t, err, pkg.ErrConflict)

	// 查找同样大小写不敏感
	c, err := repo.FindByCid(ctx, "GOPHERS")
	require.NoError(t, err)
	assert.Equal(t, "Gophers", c.Cid)
}

func TestDeleteCommunityCascades(t *testing.T) {
	db := CreateTempDB(t)
	ctx := context.Background()
	creator := seedUser(t, db, "alice")
	member := seedUser(t, db, "bob")
	invited := seedUser(t, db, "carol")
	requester := seedUser(t, db, "dave")
	c := seedCommunity(t, db, creator, "gophers", model.JoinModeApproval)

	members := &CommunityMemberRepository{DB: db}
	require.NoError(t, members.AddMember(ctx, c.ID, member.ID))
	require.NoError(t, (&CommunityInviteRepository{DB: db}).Invite(ctx, c.ID, invited.ID))
	require.NoError(t, (&CommunityRequestRepository{DB: db}).Request(ctx, c.ID, requester.ID))

	root := seedThread(t, db, member, &c.ID, nil)
	seedThread(t, db, member, nil, &root.ID)
	_, _, err := (&ThreadLikeRepository{DB: db}).Toggle(ctx, creator.ID, root.ID)
	require.NoError(t, err)

	repo := &CommunityRepository{DB: db}
	require.NoError(t, repo.Delete(ctx, c.ID))

	// 引用该社区的一切都要消失：帖子树、点赞、成员、邀请、申请
	_, err = repo.FindByID(ctx, c.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	assert.EqualValues(t, 0, threadCount(t, db))
	assert.EqualValues(t, 0, likeCount(t, db))
	n, err := members.CountMembers(ctx, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
	invites, err := (&CommunityInviteRepository{DB: db}).ListByUser(ctx, invited.ID)
	require.NoError(t, err)
	assert.Empty(t, invites)
	reqs, err := (&CommunityRequestRepository{DB: db}).ListByCommunity(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, reqs)
}

func TestDeleteCommunityMissing(t *testing.T) {
	db := CreateTempDB(t)
	err := (&CommunityRepository{DB: db}).Delete(context.Background(), 424242)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestUpdateInfo(t *testing.T) {
	db := CreateTempDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "alice")
	c := seedCommunity(t, db, u, "gophers", model.JoinModeOpen)

	repo := &CommunityRepository{DB: db}
	got, err := repo.UpdateInfo(ctx, c.ID, map[string]any{"name": "Go Fans", "join_mode": model.JoinModeApproval})
	require.NoError(t, err)
	assert.Equal(t, "Go Fans", got.Name)
	assert.Equal(t, model.JoinModeApproval, got.JoinMode)
}
