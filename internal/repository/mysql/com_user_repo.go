package mysql

import (
	"context"
	"errors"

	"Thread_Hive/internal/model"
	"Thread_Hive/internal/pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommunityMemberRepository struct {
	DB *gorm.DB
}

// Join 幂等插入：若已存在 (community_id, user_id) 则不报错
func (r *CommunityMemberRepository) Join(ctx context.Context, member *model.CommunityMember) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "community_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(member).Error
}

func (r *CommunityMemberRepository) IsMember(ctx context.Context, communityID, userID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *CommunityMemberRepository) IsModerator(ctx context.Context, communityID, userID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("community_id = ? AND user_id = ? AND role = ?", communityID, userID, model.RoleModerator).
		Count(&count).Error
	return count > 0, err
}

func (r *CommunityMemberRepository) CountMembers(ctx context.Context, communityID uint64) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("community_id = ?", communityID).
		Count(&count).Error
	return count, err
}

func (r *CommunityMemberRepository) ListByCommunity(ctx context.Context, communityID uint64) ([]model.CommunityMember, error) {
	var list []model.CommunityMember
	err := r.DB.WithContext(ctx).Where("community_id = ?", communityID).Order("id ASC").Find(&list).Error
	return list, err
}

// CommunityIDsByUser 用户加入的全部社区 id
func (r *CommunityMemberRepository) CommunityIDsByUser(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("user_id = ?", userID).
		Order("community_id ASC").
		Pluck("community_id", &ids).Error
	return ids, err
}

// AddMember 加入成员。锁社区行串行化同一社区的并发成员变更，
// 入会的同时原子清掉该用户在这个社区的邀请/申请（两者不能与成员身份共存）。
func (r *CommunityMemberRepository) AddMember(ctx context.Context, communityID, userID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := lockCommunity(ctx, tx, communityID)
		if err != nil {
			return err
		}
		return addMemberTx(ctx, tx, c, userID)
	})
}

// RemoveMember 退出/移除成员。退出者是创建者、或退出后成员清零时，
// 整个社区在同一事务里级联删除。
func (r *CommunityMemberRepository) RemoveMember(ctx context.Context, communityID, userID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := lockCommunity(ctx, tx, communityID)
		if err != nil {
			return err
		}

		res := tx.Where("community_id = ? AND user_id = ?", c.ID, userID).Delete(&model.CommunityMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkg.Conflictf("user %d is not a member of %q", userID, c.Cid)
		}

		m := &CommunityMemberRepository{DB: tx}
		left, err := m.CountMembers(ctx, c.ID)
		if err != nil {
			return err
		}
		if userID == c.CreatorID || left == 0 {
			return (&CommunityRepository{DB: tx}).DeleteCascade(ctx, c)
		}

		return (&OutboxRepository{DB: tx}).InsertOutbox(ctx, "member_left", c.ID, userID)
	})
}

// PromoteModerator 把成员提升为管理员。非成员/已是管理员都算状态冲突。
func (r *CommunityMemberRepository) PromoteModerator(ctx context.Context, communityID, userID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := lockCommunity(ctx, tx, communityID)
		if err != nil {
			return err
		}

		var member model.CommunityMember
		err = tx.Where("community_id = ? AND user_id = ?", c.ID, userID).First(&member).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkg.Conflictf("user %d is not a member of %q", userID, c.Cid)
		}
		if err != nil {
			return err
		}
		if member.Role == model.RoleModerator {
			return pkg.Conflictf("user %d is already a moderator of %q", userID, c.Cid)
		}

		return tx.Model(&model.CommunityMember{}).Where("id = ?", member.ID).
			Update("role", model.RoleModerator).Error
	})
}

// DemoteModerator 取消管理员，保留成员身份
func (r *CommunityMemberRepository) DemoteModerator(ctx context.Context, communityID, userID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := lockCommunity(ctx, tx, communityID)
		if err != nil {
			return err
		}

		var member model.CommunityMember
		err = tx.Where("community_id = ? AND user_id = ?", c.ID, userID).First(&member).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkg.Conflictf("user %d is not a member of %q", userID, c.Cid)
		}
		if err != nil {
			return err
		}
		if member.Role != model.RoleModerator {
			return pkg.Conflictf("user %d is not a moderator of %q", userID, c.Cid)
		}

		return tx.Model(&model.CommunityMember{}).Where("id = ?", member.ID).
			Update("role", model.RoleMember).Error
	})
}

// lockCommunity 事务内锁住社区行；同一社区的成员/邀请/申请变更全部经过这把锁
func lockCommunity(ctx context.Context, tx *gorm.DB, communityID uint64) (*model.Community, error) {
	var c model.Community
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, communityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFoundf("community %d", communityID)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// addMemberTx 入会动作本体，各路入口（直接加入、接受邀请、通过申请）共用
func addMemberTx(ctx context.Context, tx *gorm.DB, c *model.Community, userID uint64) error {
	m := &CommunityMemberRepository{DB: tx}
	isMember, err := m.IsMember(ctx, c.ID, userID)
	if err != nil {
		return err
	}
	if isMember {
		return pkg.Conflictf("user %d already a member of %q", userID, c.Cid)
	}

	if err := m.Join(ctx, &model.CommunityMember{
		CommunityID: c.ID,
		UserID:      userID,
		Role:        model.RoleMember,
	}); err != nil {
		return err
	}

	if err := tx.Where("community_id = ? AND user_id = ?", c.ID, userID).Delete(&model.CommunityInvite{}).Error; err != nil {
		return err
	}
	if err := tx.Where("community_id = ? AND user_id = ?", c.ID, userID).Delete(&model.CommunityRequest{}).Error; err != nil {
		return err
	}

	return (&OutboxRepository{DB: tx}).InsertOutbox(ctx, "member_joined", c.ID, userID)
}
