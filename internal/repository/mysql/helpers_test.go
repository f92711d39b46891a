package mysql

import (
	"context"
	"testing"

	"Thread_Hive/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{
		Uid:      "u_" + username,
		Username: username,
		Password: "hashed",
		Email:    username + "@example.com",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedCommunity(t *testing.T, db *gorm.DB, creator *model.User, cid, joinMode string) *model.Community {
	t.Helper()
	c, err := (&CommunityRepository{DB: db}).Create(context.Background(), &model.Community{
		Cid:       cid,
		Name:      cid,
		JoinMode:  joinMode,
		CreatorID: creator.ID,
	})
	require.NoError(t, err)
	return c
}

func seedThread(t *testing.T, db *gorm.DB, author *model.User, communityID, parentID *uint64) *model.Thread {
	t.Helper()
	th := &model.Thread{
		AuthorID:    author.ID,
		CommunityID: communityID,
		ParentID:    parentID,
		Content:     "content",
	}
	require.NoError(t, (&ThreadRepository{DB: db}).Create(context.Background(), th))
	return th
}

func threadCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.Thread{}).Count(&n).Error)
	return n
}

func likeCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.ThreadLike{}).Count(&n).Error)
	return n
}
