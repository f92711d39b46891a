package service

import (
	"context"

	"Thread_Hive/internal/model"
	"Thread_Hive/internal/pkg"
	"Thread_Hive/internal/repository/mysql"

	"gorm.io/gorm"
)

type CommunityService struct {
	repo     *mysql.CommunityRepository
	members  *mysql.CommunityMemberRepository
	invites  *mysql.CommunityInviteRepository
	requests *mysql.CommunityRequestRepository
	users    *mysql.UserRepository
	emailCfg *pkg.SMTPConfig // 可为 nil，邀请就不发通知邮件
}

func NewCommunityService(db *gorm.DB, emailCfg *pkg.SMTPConfig) *CommunityService {
	return &CommunityService{
		repo:     &mysql.CommunityRepository{DB: db},
		members:  &mysql.CommunityMemberRepository{DB: db},
		invites:  &mysql.CommunityInviteRepository{DB: db},
		requests: &mysql.CommunityRequestRepository{DB: db},
		users:    &mysql.UserRepository{DB: db},
		emailCfg: emailCfg,
	}
}

// Create 创建社区，创建者成为首个成员兼管理员
func (s *CommunityService) Create(ctx context.Context, creatorUid, cid, name, bio, avatarURL, joinMode string) (*model.Community, error) {
	if name == "" || cid == "" {
		return nil, pkg.Invalidf("community name and cid required")
	}
	if joinMode == "" {
		joinMode = model.JoinModeOpen
	}
	if joinMode != model.JoinModeOpen && joinMode != model.JoinModeApproval {
		return nil, pkg.Invalidf("join mode must be open or approval")
	}

	creator, err := s.users.FindByUid(ctx, creatorUid)
	if err != nil {
		return nil, err
	}

	community := &model.Community{
		Cid:       cid,
		Name:      name,
		Bio:       bio,
		AvatarURL: avatarURL,
		JoinMode:  joinMode,
		CreatorID: creator.ID,
	}
	return s.repo.Create(ctx, community)
}

// UpdateInfo 纯属性更新，管理员才能改
func (s *CommunityService) UpdateInfo(ctx context.Context, actorUid, cid string, updates map[string]any) (*model.Community, error) {
	actor, community, err := s.resolveActor(ctx, actorUid, cid)
	if err != nil {
		return nil, err
	}
	if err := s.requireModerator(ctx, community, actor); err != nil {
		return nil, err
	}

	allowed := map[string]bool{"name": true, "bio": true, "avatar_url": true, "join_mode": true}
	filtered := make(map[string]any, len(updates))
	for k, v := range updates {
		if allowed[k] {
			filtered[k] = v
		}
	}
	if mode, ok := filtered["join_mode"].(string); ok {
		if mode != model.JoinModeOpen && mode != model.JoinModeApproval {
			return nil, pkg.Invalidf("join mode must be open or approval")
		}
	}
	if len(filtered) == 0 {
		return nil, pkg.Invalidf("nothing to update")
	}

	return s.repo.UpdateInfo(ctx, community.ID, filtered)
}

// Delete 整个社区级联删除，管理员才能删
func (s *CommunityService) Delete(ctx context.Context, actorUid, cid string) error {
	actor, community, err := s.resolveActor(ctx, actorUid, cid)
	if err != nil {
		return err
	}
	if err := s.requireModerator(ctx, community, actor); err != nil {
		return err
	}
	return s.repo.Delete(ctx, community.ID)
}

// Join 按社区的加入模式分流：open 直接入会，approval 进入申请集合
func (s *CommunityService) Join(ctx context.Context, uid, cid string) (pending bool, err error) {
	user, community, err := s.resolveActor(ctx, uid, cid)
	if err != nil {
		return false, err
	}
	if community.JoinMode == model.JoinModeApproval {
		return true, s.requests.Request(ctx, community.ID, user.ID)
	}
	return false, s.members.AddMember(ctx, community.ID, user.ID)
}

// Leave 本人退出。创建者退出或最后一人退出会连带删掉整个社区。
func (s *CommunityService) Leave(ctx context.Context, uid, cid string) error {
	user, community, err := s.resolveActor(ctx, uid, cid)
	if err != nil {
		return err
	}
	return s.members.RemoveMember(ctx, community.ID, user.ID)
}

// RemoveMember 管理员移除成员（或成员移除自己）
func (s *CommunityService) RemoveMember(ctx context.Context, actorUid, cid, targetUid string) error {
	actor, community, err := s.resolveActor(ctx, actorUid, cid)
	if err != nil {
		return err
	}
	target, err := s.users.FindByUid(ctx, targetUid)
	if err != nil {
		return err
	}
	if actor.ID != target.ID {
		if err := s.requireModerator(ctx, community, actor); err != nil {
			return err
		}
	}
	return s.members.RemoveMember(ctx, community.ID, target.ID)
}

func (s *CommunityService) AddModerator(ctx context.Context, actorUid, cid, targetUid string) error {
	actor, community, err := s.resolveActor(ctx, actorUid, cid)
	if err != nil {
		return err
	}
	if err := s.requireModerator(ctx, community, actor); err != nil {
		return err
	}
	target, err := s.users.FindByUid(ctx, targetUid)
	if err != nil {
		return err
	}
	return s.members.PromoteModerator(ctx, community.ID, target.ID)
}

func (s *CommunityService) RemoveModerator(ctx context.Context, actorUid, cid, targetUid string) error {
	actor, community, err := s.resolveActor(ctx, actorUid, cid)
	if err != nil {
		return err
	}
	if err := s.requireModerator(ctx, community, actor); err != nil {
		return err
	}
	target, err := s.users.FindByUid(ctx, targetUid)
	if err != nil {
		return err
	}
	return s.members.DemoteModerator(ctx, community.ID, target.ID)
}

// Invite 管理员邀请用户；成功后尽力发一封通知邮件（失败不影响主流程）
func (s *CommunityService) Invite(ctx context.Context, actorUid, cid, targetUid string) error {
	actor, community, err := s.resolveActor(ctx, actorUid, cid)
	if err != nil {
		return err
	}
	if err := s.requireModerator(ctx, community, actor); err != nil {
		return err
	}
	target, err := s.users.FindByUid(ctx, targetUid)
	if err != nil {
		return err
	}
	if err := s.invites.Invite(ctx, community.ID, target.ID); err != nil {
		return err
	}

	if s.emailCfg != nil && target.Email != "" {
		cfg := *s.emailCfg
		html := pkg.InviteHTML(community.Name, actor.Username)
		go func() {
			if err := pkg.SendEmail(cfg, target.Email, "社区邀请", html); err != nil {
				pkg.Log.WithError(err).Warn("invite mail send failed")
			}
		}()
	}
	return nil
}

// AcceptInvite 只有被邀请人自己能接受
func (s *CommunityService) AcceptInvite(ctx context.Context, uid, cid string) error {
	user, community, err := s.resolveActor(ctx, uid, cid)
	if err != nil {
		return err
	}
	return s.invites.Accept(ctx, community.ID, user.ID)
}

func (s *CommunityService) RejectInvite(ctx context.Context, uid, cid string) error {
	user, community, err := s.resolveActor(ctx, uid, cid)
	if err != nil {
		return err
	}
	return s.invites.Reject(ctx, community.ID, user.ID)
}

// AcceptRequest 管理员通过加入申请
func (s *CommunityService) AcceptRequest(ctx context.Context, actorUid, cid, targetUid string) error {
	actor, community, err := s.resolveActor(ctx, actorUid, cid)
	if err != nil {
		return err
	}
	if err := s.requireModerator(ctx, community, actor); err != nil {
		return err
	}
	target, err := s.users.FindByUid(ctx, targetUid)
	if err != nil {
		return err
	}
	return s.requests.Accept(ctx, community.ID, target.ID)
}

func (s *CommunityService) RejectRequest(ctx context.Context, actorUid, cid, targetUid string) error {
	actor, community, err := s.resolveActor(ctx, actorUid, cid)
	if err != nil {
		return err
	}
	if err := s.requireModerator(ctx, community, actor); err != nil {
		return err
	}
	target, err := s.users.FindByUid(ctx, targetUid)
	if err != nil {
		return err
	}
	return s.requests.Reject(ctx, community.ID, target.ID)
}

func (s *CommunityService) Get(ctx context.Context, cid string) (*model.Community, error) {
	return s.repo.FindByCid(ctx, cid)
}

func (s *CommunityService) List(ctx context.Context, page, size int) ([]model.Community, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	offset := (page - 1) * size
	return s.repo.List(ctx, offset, size)
}

func (s *CommunityService) ListMembers(ctx context.Context, cid string) ([]model.CommunityMember, error) {
	community, err := s.repo.FindByCid(ctx, cid)
	if err != nil {
		return nil, err
	}
	return s.members.ListByCommunity(ctx, community.ID)
}

func (s *CommunityService) ListRequests(ctx context.Context, actorUid, cid string) ([]model.CommunityRequest, error) {
	actor, community, err := s.resolveActor(ctx, actorUid, cid)
	if err != nil {
		return nil, err
	}
	if err := s.requireModerator(ctx, community, actor); err != nil {
		return nil, err
	}
	return s.requests.ListByCommunity(ctx, community.ID)
}

func (s *CommunityService) ListInvitesForUser(ctx context.Context, uid string) ([]model.CommunityInvite, error) {
	user, err := s.users.FindByUid(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.invites.ListByUser(ctx, user.ID)
}

func (s *CommunityService) resolveActor(ctx context.Context, uid, cid string) (*model.User, *model.Community, error) {
	user, err := s.users.FindByUid(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	community, err := s.repo.FindByCid(ctx, cid)
	if err != nil {
		return nil, nil, err
	}
	return user, community, nil
}

func (s *CommunityService) requireModerator(ctx context.Context, community *model.Community, actor *model.User) error {
	ok, err := s.members.IsModerator(ctx, community.ID, actor.ID)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.Conflictf("user %q is not a moderator of %q", actor.Uid, community.Cid)
	}
	return nil
}
