package service

import (
	"context"
	"errors"

	"Thread_Hive/internal/model"
	"Thread_Hive/internal/pkg"
	"Thread_Hive/internal/repository/mysql"
	"Thread_Hive/internal/repository/redis"

	"gorm.io/gorm"
)

type ThreadService struct {
	db      *gorm.DB
	repo    *mysql.ThreadRepository
	users   *mysql.UserRepository
	comms   *mysql.CommunityRepository
	members *mysql.CommunityMemberRepository
	cache   *redis.LikeCacheRepository // 可为 nil（测试环境不起 redis）
}

func NewThreadService(db *gorm.DB, cache *redis.LikeCacheRepository) *ThreadService {
	return &ThreadService{
		db:      db,
		repo:    &mysql.ThreadRepository{DB: db},
		users:   &mysql.UserRepository{DB: db},
		comms:   &mysql.CommunityRepository{DB: db},
		members: &mysql.CommunityMemberRepository{DB: db},
		cache:   cache,
	}
}

// Create 发根帖。社区别名给了就必须能解析，解析不了直接 NotFound，
// 不做“当没给”的静默降级。帖子行一落库即同时挂上作者和社区（行内列）。
func (s *ThreadService) Create(ctx context.Context, authorUid, cid, content string) (*model.Thread, error) {
	if content == "" {
		return nil, pkg.Invalidf("content required")
	}

	author, err := s.users.FindByUid(ctx, authorUid)
	if err != nil {
		return nil, err
	}

	var communityID *uint64
	if cid != "" {
		community, err := s.comms.FindByCid(ctx, cid)
		if err != nil {
			return nil, err
		}
		communityID = &community.ID
	}

	t := &model.Thread{
		AuthorID:    author.ID,
		CommunityID: communityID,
		Content:     content,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if communityID != nil {
			// 事务内锁社区行。级联删除也拿这把锁，二者只能串行，
			// 普通快照读挡不住已提交的并发删除
			if _, err := (&mysql.CommunityRepository{DB: tx}).FindByIDForUpdate(ctx, *communityID); err != nil {
				if errors.Is(err, pkg.ErrNotFound) {
					return pkg.NotFoundf("community %q", cid)
				}
				return err
			}
		}
		if err := (&mysql.ThreadRepository{DB: tx}).Create(ctx, t); err != nil {
			return err
		}
		if communityID != nil {
			return (&mysql.OutboxRepository{DB: tx}).InsertOutbox(ctx, "thread_created", *communityID, author.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Reply 回复某个帖子。事务内锁父帖行，保证父帖不会在挂子帖的同时被级联删掉。
// 回复不单独挂社区，社区归属看根帖。
func (s *ThreadService) Reply(ctx context.Context, parentID uint64, authorUid, content string) (*model.Thread, error) {
	if content == "" {
		return nil, pkg.Invalidf("content required")
	}

	author, err := s.users.FindByUid(ctx, authorUid)
	if err != nil {
		return nil, err
	}

	t := &model.Thread{
		AuthorID: author.ID,
		ParentID: &parentID,
		Content:  content,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := &mysql.ThreadRepository{DB: tx}
		if _, err := repo.FindByIDForUpdate(ctx, parentID); err != nil {
			return err
		}
		return repo.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Edit 纯内容修改，不碰任何关系
func (s *ThreadService) Edit(ctx context.Context, threadID uint64, actorUid, content string) (*model.Thread, error) {
	if content == "" {
		return nil, pkg.Invalidf("content required")
	}

	actor, err := s.users.FindByUid(ctx, actorUid)
	if err != nil {
		return nil, err
	}
	t, err := s.repo.FindByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if t.AuthorID != actor.ID {
		return nil, pkg.Conflictf("user %q is not the author of thread %d", actorUid, threadID)
	}

	return s.repo.UpdateContent(ctx, threadID, content)
}

// Delete 删除帖子和整棵回复树。作者本人或所在社区的管理员可删。
// 帖子不存在按 NotFound 处理（不做静默幂等）。
func (s *ThreadService) Delete(ctx context.Context, threadID uint64, actorUid string) error {
	actor, err := s.users.FindByUid(ctx, actorUid)
	if err != nil {
		return err
	}

	var subtree []uint64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := &mysql.ThreadRepository{DB: tx}
		t, err := repo.FindByIDForUpdate(ctx, threadID)
		if err != nil {
			return err
		}

		if t.AuthorID != actor.ID {
			allowed := false
			if t.CommunityID != nil {
				m := &mysql.CommunityMemberRepository{DB: tx}
				allowed, err = m.IsModerator(ctx, *t.CommunityID, actor.ID)
				if err != nil {
					return err
				}
			}
			if !allowed {
				return pkg.Conflictf("user %q may not delete thread %d", actorUid, threadID)
			}
		}

		subtree, err = repo.CollectSubtree(ctx, threadID)
		if err != nil {
			return err
		}
		return repo.DeleteTree(ctx, threadID)
	})
	if err != nil {
		return err
	}

	// 缓存清理放提交之后，失败无所谓，读侧会回源
	if s.cache != nil {
		for _, id := range subtree {
			_ = s.cache.DropThread(ctx, id)
		}
	}
	return nil
}

func (s *ThreadService) Get(ctx context.Context, threadID uint64) (*model.Thread, []model.Thread, error) {
	t, err := s.repo.FindByID(ctx, threadID)
	if err != nil {
		return nil, nil, err
	}
	children, err := s.repo.ListChildren(ctx, threadID)
	if err != nil {
		return nil, nil, err
	}
	return t, children, nil
}

// ListByCommunity 社区帖子流，(created_at, id) 游标分页
func (s *ThreadService) ListByCommunity(ctx context.Context, cid string, lastID uint64, lastCreatedAt int64, limit int) ([]model.Thread, error) {
	community, err := s.comms.FindByCid(ctx, cid)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByCommunityCursor(ctx, community.ID, lastID, lastCreatedAt, limit)
}
