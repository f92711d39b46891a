package mysql

import (
	"context"

	"Thread_Hive/internal/model"
	"Thread_Hive/internal/pkg"

	"gorm.io/gorm"
)

// 邀请与加入申请是两组对称的待处理集合，
// accept/reject 都要原子地把用户移出对应集合。

type CommunityInviteRepository struct {
	DB *gorm.DB
}

type CommunityRequestRepository struct {
	DB *gorm.DB
}

// Invite 发出邀请。已是成员或已有同类待处理记录都算冲突。
func (r *CommunityInviteRepository) Invite(ctx context.Context, communityID, userID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := lockCommunity(ctx, tx, communityID)
		if err != nil {
			return err
		}

		m := &CommunityMemberRepository{DB: tx}
		isMember, err := m.IsMember(ctx, c.ID, userID)
		if err != nil {
			return err
		}
		if isMember {
			return pkg.Conflictf("user %d already a member of %q", userID, c.Cid)
		}

		var n int64
		if err := tx.Model(&model.CommunityInvite{}).
			Where("community_id = ? AND user_id = ?", c.ID, userID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return pkg.Conflictf("user %d already invited to %q", userID, c.Cid)
		}

		return tx.Create(&model.CommunityInvite{CommunityID: c.ID, UserID: userID}).Error
	})
}

// Accept 接受邀请：移出邀请集合并执行完整的入会动作，一个事务内完成
func (r *CommunityInviteRepository) Accept(ctx context.Context, communityID, userID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := lockCommunity(ctx, tx, communityID)
		if err != nil {
			return err
		}

		res := tx.Where("community_id = ? AND user_id = ?", c.ID, userID).Delete(&model.CommunityInvite{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkg.Conflictf("no pending invite for user %d in %q", userID, c.Cid)
		}

		return addMemberTx(ctx, tx, c, userID)
	})
}

func (r *CommunityInviteRepository) Reject(ctx context.Context, communityID, userID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := lockCommunity(ctx, tx, communityID)
		if err != nil {
			return err
		}
		res := tx.Where("community_id = ? AND user_id = ?", c.ID, userID).Delete(&model.CommunityInvite{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkg.Conflictf("no pending invite for user %d in %q", userID, c.Cid)
		}
		return nil
	})
}

func (r *CommunityInviteRepository) ListByUser(ctx context.Context, userID uint64) ([]model.CommunityInvite, error) {
	var list []model.CommunityInvite
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&list).Error
	return list, err
}

// Request 提交加入申请
func (r *CommunityRequestRepository) Request(ctx context.Context, communityID, userID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := lockCommunity(ctx, tx, communityID)
		if err != nil {
			return err
		}

		m := &CommunityMemberRepository{DB: tx}
		isMember, err := m.IsMember(ctx, c.ID, userID)
		if err != nil {
			return err
		}
		if isMember {
			return pkg.Conflictf("user %d already a member of %q", userID, c.Cid)
		}

		var n int64
		if err := tx.Model(&model.CommunityRequest{}).
			Where("community_id = ? AND user_id = ?", c.ID, userID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return pkg.Conflictf("user %d already requested to join %q", userID, c.Cid)
		}

		return tx.Create(&model.CommunityRequest{CommunityID: c.ID, UserID: userID}).Error
	})
}

// Accept 通过申请：移出申请集合并入会，一个事务内完成
func (r *CommunityRequestRepository) Accept(ctx context.Context, communityID, userID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := lockCommunity(ctx, tx, communityID)
		if err != nil {
			return err
		}

		res := tx.Where("community_id = ? AND user_id = ?", c.ID, userID).Delete(&model.CommunityRequest{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkg.Conflictf("no pending request for user %d in %q", userID, c.Cid)
		}

		return addMemberTx(ctx, tx, c, userID)
	})
}

func (r *CommunityRequestRepository) Reject(ctx context.Context, communityID, userID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := lockCommunity(ctx, tx, communityID)
		if err != nil {
			return err
		}
		res := tx.Where("community_id = ? AND user_id = ?", c.ID, userID).Delete(&model.CommunityRequest{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkg.Conflictf("no pending request for user %d in %q", userID, c.Cid)
		}
		return nil
	})
}

func (r *CommunityRequestRepository) ListByCommunity(ctx context.Context, communityID uint64) ([]model.CommunityRequest, error) {
	var list []model.CommunityRequest
	err := r.DB.WithContext(ctx).Where("community_id = ?", communityID).Order("id ASC").Find(&list).Error
	return list, err
}
