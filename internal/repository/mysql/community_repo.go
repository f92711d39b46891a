package mysql

import (
	"context"
	"errors"

	"Thread_Hive/internal/model"
	"Thread_Hive/internal/pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommunityRepository struct {
	DB *gorm.DB
}

// Create 创建社区；创建者在同一事务里成为首个成员兼管理员。
// cid 大小写不敏感唯一，占用时返回 Conflict。
func (r *CommunityRepository) Create(ctx context.Context, c *model.Community) (*model.Community, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Community{}).Where("LOWER(cid) = LOWER(?)", c.Cid).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return pkg.Conflictf("cid %q already in use", c.Cid)
		}

		if err := tx.Create(c).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return pkg.Conflictf("cid %q already in use", c.Cid)
			}
			return err
		}

		mRepo := &CommunityMemberRepository{DB: tx}
		if err := mRepo.Join(ctx, &model.CommunityMember{
			CommunityID: c.ID,
			UserID:      c.CreatorID,
			Role:        model.RoleModerator,
		}); err != nil {
			return err
		}

		ob := &OutboxRepository{DB: tx}
		return ob.InsertOutbox(ctx, "community_created", c.ID, c.CreatorID)
	})
	return c, err
}

func (r *CommunityRepository) FindByID(ctx context.Context, id uint64) (*model.Community, error) {
	var c model.Community
	err := r.DB.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFoundf("community %d", id)
	}
	return &c, err
}

// FindByIDForUpdate 事务内锁行读取；和成员/删帖侧共用同一把社区行锁
func (r *CommunityRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*model.Community, error) {
	return lockCommunity(ctx, r.DB, id)
}

func (r *CommunityRepository) FindByCid(ctx context.Context, cid string) (*model.Community, error) {
	var c model.Community
	err := r.DB.WithContext(ctx).Where("LOWER(cid) = LOWER(?)", cid).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFoundf("community %q", cid)
	}
	return &c, err
}

func (r *CommunityRepository) List(ctx context.Context, offset, limit int) ([]model.Community, error) {
	var list []model.Community
	err := r.DB.WithContext(ctx).Order("id desc").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

// UpdateInfo 纯属性更新（name/bio/avatar/join_mode），不碰成员关系
func (r *CommunityRepository) UpdateInfo(ctx context.Context, id uint64, updates map[string]any) (*model.Community, error) {
	res := r.DB.WithContext(ctx).Model(&model.Community{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	return r.FindByID(ctx, id)
}

// Delete 公开入口：整个级联包在一个事务里
func (r *CommunityRepository) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Community
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkg.NotFoundf("community %d", id)
			}
			return err
		}
		return (&CommunityRepository{DB: tx}).DeleteCascade(ctx, &c)
	})
}

// DeleteCascade 社区级联删除：先删名下全部帖子（连带各自的回复树和点赞），
// 再清空成员/邀请/申请关系，最后删社区行。成员还引用社区时绝不能先删社区行。
// 必须在事务内调用（r.DB 传事务句柄）。
func (r *CommunityRepository) DeleteCascade(ctx context.Context, c *model.Community) error {
	threads := &ThreadRepository{DB: r.DB}
	ids, err := threads.IDsByCommunity(ctx, c.ID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := threads.DeleteTree(ctx, id); err != nil {
			return err
		}
	}

	if err := r.DB.WithContext(ctx).Where("community_id = ?", c.ID).Delete(&model.CommunityMember{}).Error; err != nil {
		return err
	}
	if err := r.DB.WithContext(ctx).Where("community_id = ?", c.ID).Delete(&model.CommunityInvite{}).Error; err != nil {
		return err
	}
	if err := r.DB.WithContext(ctx).Where("community_id = ?", c.ID).Delete(&model.CommunityRequest{}).Error; err != nil {
		return err
	}

	ob := &OutboxRepository{DB: r.DB}
	if err := ob.InsertOutbox(ctx, "community_deleted", c.ID, c.CreatorID); err != nil {
		return err
	}

	return r.DB.WithContext(ctx).Delete(&model.Community{}, c.ID).Error
}
