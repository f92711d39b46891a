package mysql

import (
	"context"
	"errors"

	"Thread_Hive/internal/model"
	"Thread_Hive/internal/pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

// Create 注册写入。username 大小写不敏感唯一（先查再插，唯一索引兜底）。
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.User{}).Where("LOWER(username) = LOWER(?)", user.Username).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return pkg.Conflictf("username %q already in use", user.Username)
		}
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return pkg.Conflictf("username or email already in use")
			}
			return err
		}
		return nil
	})
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFoundf("user %d", id)
	}
	return &user, err
}

func (r *UserRepository) FindByUid(ctx context.Context, uid string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("uid = ?", uid).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFoundf("user %q", uid)
	}
	return &user, err
}

// FindByLogin 登录入口，用户名或邮箱皆可
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("username = ? OR email = ?", login, login).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFoundf("user %q", login)
	}
	return &user, err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFoundf("user %q", email)
	}
	return &user, err
}

// Onboard 完善资料并点亮 onboarded 标记。改 username 时同样做大小写不敏感查重。
func (r *UserRepository) Onboard(ctx context.Context, uid string, updates map[string]any) (*model.User, error) {
	var out *model.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("uid = ?", uid).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkg.NotFoundf("user %q", uid)
			}
			return err
		}

		if name, ok := updates["username"].(string); ok && name != user.Username {
			var n int64
			if err := tx.Model(&model.User{}).
				Where("LOWER(username) = LOWER(?) AND id != ?", name, user.ID).
				Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return pkg.Conflictf("username %q already in use", name)
			}
		}

		updates["onboarded"] = true
		if err := tx.Model(&model.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return pkg.Conflictf("username already in use")
			}
			return err
		}

		if err := tx.First(&user, user.ID).Error; err != nil {
			return err
		}
		out = &user
		return nil
	})
	return out, err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID uint64, hashed string) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("password", hashed).Error
}

// DeleteCascade 用户级联删除。顺序很重要：先删其帖子和其创建的社区
// （两者的级联都会解引用该用户的 id），再清点赞、退社区、清邀请/申请，最后删用户行。
func (r *UserRepository) DeleteCascade(ctx context.Context, uid string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("uid = ?", uid).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkg.NotFoundf("user %q", uid)
			}
			return err
		}

		// 本人写过的全部帖子逐棵删除；前面的树可能已覆盖后面的 id，逐个确认
		threads := &ThreadRepository{DB: tx}
		authored, err := threads.IDsByAuthor(ctx, user.ID)
		if err != nil {
			return err
		}
		for _, id := range authored {
			exists, err := threads.Exists(ctx, id)
			if err != nil {
				return err
			}
			if !exists {
				continue
			}
			if err := threads.DeleteTree(ctx, id); err != nil {
				return err
			}
		}

		// 本人创建的社区整体删除
		comm := &CommunityRepository{DB: tx}
		var created []model.Community
		if err := tx.Where("creator_id = ?", user.ID).Find(&created).Error; err != nil {
			return err
		}
		for i := range created {
			if err := comm.DeleteCascade(ctx, &created[i]); err != nil {
				return err
			}
		}

		// 点赞关系回收（自己帖子上的赞已随删树消失，这里处理别人帖子上的）
		likes := &ThreadLikeRepository{DB: tx}
		if err := likes.RemoveAllByUser(ctx, user.ID); err != nil {
			return err
		}

		// 退出仍存在的社区；退完若成员清零，社区同样整体删除
		members := &CommunityMemberRepository{DB: tx}
		joined, err := members.CommunityIDsByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		for _, cID := range joined {
			// 和 RemoveMember 同一把社区行锁，退出决策不能基于快照计数
			c, err := lockCommunity(ctx, tx, cID)
			if errors.Is(err, pkg.ErrNotFound) {
				continue // 已随创建者级联删除
			}
			if err != nil {
				return err
			}
			if err := tx.Where("community_id = ? AND user_id = ?", cID, user.ID).
				Delete(&model.CommunityMember{}).Error; err != nil {
				return err
			}
			left, err := members.CountMembers(ctx, cID)
			if err != nil {
				return err
			}
			if left == 0 {
				if err := comm.DeleteCascade(ctx, c); err != nil {
					return err
				}
				continue
			}
			if err := (&OutboxRepository{DB: tx}).InsertOutbox(ctx, "member_left", cID, user.ID); err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&model.CommunityInvite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&model.CommunityRequest{}).Error; err != nil {
			return err
		}

		return tx.Delete(&model.User{}, user.ID).Error
	})
}
