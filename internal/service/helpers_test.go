package service

import (
	"context"
	"testing"

	"Thread_Hive/internal/model"
	"Thread_Hive/internal/repository/mysql"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUser(t *testing.T, db *gorm.DB, username string) *model.User {
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

func newCommunity(t *testing.T, db *gorm.DB, creator *model.User, cid, joinMode string) *model.Community {
	t.Helper()
	c, err := (&mysql.CommunityRepository{DB: db}).Create(context.Background(), &model.Community{
		Cid:       cid,
		Name:      cid,
		JoinMode:  joinMode,
		CreatorID: creator.ID,
	})
	require.NoError(t, err)
	return c
}
