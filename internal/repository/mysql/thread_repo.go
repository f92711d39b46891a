package mysql

import (
	"context"
	"errors"

	"Thread_Hive/internal/model"
	"Thread_Hive/internal/pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ThreadRepository struct {
	DB *gorm.DB
}

func (r *ThreadRepository) Create(ctx context.Context, t *model.Thread) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *ThreadRepository) FindByID(ctx context.Context, id uint64) (*model.Thread, error) {
	var t model.Thread
	err := r.DB.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFoundf("thread %d", id)
	}
	return &t, err
}

// FindByIDForUpdate 事务内加行锁读取，串行化对同一帖子的并发修改
func (r *ThreadRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*model.Thread, error) {
	var t model.Thread
	err := r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFoundf("thread %d", id)
	}
	return &t, err
}

func (r *ThreadRepository) UpdateContent(ctx context.Context, id uint64, content string) (*model.Thread, error) {
	res := r.DB.WithContext(ctx).Model(&model.Thread{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Update 不区分“没变化”和“不存在”，这里补查一次
		var n int64
		if err := r.DB.WithContext(ctx).Model(&model.Thread{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, pkg.NotFoundf("thread %d", id)
		}
	}
	return r.FindByID(ctx, id)
}

// ChildIDs 加锁收集直接回复的 id。FOR UPDATE 既锁住已有子行，
// 也在 parent_id 索引上留下间隙锁，并发的新回复插入会被挡到本事务结束。
// 只应在删除事务内使用，读展示走 ListChildren。
func (r *ThreadRepository) ChildIDs(ctx context.Context, parentID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.DB.WithContext(ctx).Model(&model.Thread{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("parent_id = ?", parentID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// CollectSubtree 用显式栈收集整棵回复子树的 id（含根）。
// 返回顺序保证父节点先于子节点出现，倒序遍历即可先删子后删父。
// 回复链可以任意深，不能用函数递归。
func (r *ThreadRepository) CollectSubtree(ctx context.Context, rootID uint64) ([]uint64, error) {
	collected := make([]uint64, 0, 8)
	stack := []uint64{rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		collected = append(collected, id)

		children, err := r.ChildIDs(ctx, id)
		if err != nil {
			return nil, err
		}
		stack = append(stack, children...)
	}
	return collected, nil
}

// DeleteTree 删除整棵回复树：先解除所有点赞关系，再按“子先父后”删除帖子行。
// 父指针/社区归属都是行内列，行删掉即解除链接。
// 必须在事务内调用（r.DB 传事务句柄），保证整个级联是一个原子单元。
func (r *ThreadRepository) DeleteTree(ctx context.Context, rootID uint64) error {
	ids, err := r.CollectSubtree(ctx, rootID)
	if err != nil {
		return err
	}

	if err := r.DB.WithContext(ctx).Where("thread_id IN ?", ids).Delete(&model.ThreadLike{}).Error; err != nil {
		return err
	}

	for i := len(ids) - 1; i >= 0; i-- {
		if err := r.DB.WithContext(ctx).Delete(&model.Thread{}, ids[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// IDsByAuthor 某作者写过的全部帖子 id（含回复）
func (r *ThreadRepository) IDsByAuthor(ctx context.Context, authorID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.DB.WithContext(ctx).Model(&model.Thread{}).
		Where("author_id = ?", authorID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// IDsByCommunity 社区名下的帖子 id（回复不挂社区，这里天然只有根帖）
func (r *ThreadRepository) IDsByCommunity(ctx context.Context, communityID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.DB.WithContext(ctx).Model(&model.Thread{}).
		Where("community_id = ?", communityID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *ThreadRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Thread{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// ListByCommunityCursor 基于时间游标的查询：索引 (community_id, created_at DESC)
// lastCreatedAt=0 表示第一页；否则用 (created_at, id) 作为严格游标
func (r *ThreadRepository) ListByCommunityCursor(ctx context.Context, communityID uint64, lastID uint64, lastCreatedAt int64, limit int) ([]model.Thread, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q := r.DB.WithContext(ctx).Where("community_id = ? AND parent_id IS NULL", communityID)
	if lastCreatedAt > 0 {
		q = q.Where("(created_at < FROM_UNIXTIME(?) OR (created_at = FROM_UNIXTIME(?) AND id < ?))", lastCreatedAt, lastCreatedAt, lastID)
	}
	var list []model.Thread
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error
	return list, err
}

// ListChildren 某帖子的直接回复
func (r *ThreadRepository) ListChildren(ctx context.Context, parentID uint64) ([]model.Thread, error) {
	var list []model.Thread
	err := r.DB.WithContext(ctx).Where("parent_id = ?", parentID).Order("created_at ASC, id ASC").Find(&list).Error
	return list, err
}
