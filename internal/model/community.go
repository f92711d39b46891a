package model

import "time"

const (
	JoinModeOpen     = "open"     // 直接加入
	JoinModeApproval = "approval" // 需要申请/审批
)

const (
	RoleMember    = 0
	RoleModerator = 1
)

type Community struct {
	ID        uint64 `gorm:"primaryKey"`
	Cid       string `gorm:"uniqueIndex;size:64;not null"` // 对外稳定别名，大小写不敏感唯一
	Name      string `gorm:"size:64;not null"`
	Bio       string `gorm:"type:text"`
	AvatarURL string `gorm:"size:255"`
	JoinMode  string `gorm:"size:16;not null;default:'open'"`
	CreatorID uint64 `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CommunityMember 成员关系表。Role=1 的成员即管理员，
// 管理员集合因此天然是成员集合的子集。
type CommunityMember struct {
	ID          uint64 `gorm:"primaryKey"`
	CommunityID uint64 `gorm:"not null;index;uniqueIndex:uk_community_user"`
	UserID      uint64 `gorm:"not null;index;uniqueIndex:uk_community_user"`
	Role        int    `gorm:"not null;default:0"` // 0=member, 1=moderator
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CommunityInvite 待处理邀请（社区 -> 用户）
type CommunityInvite struct {
	ID          uint64 `gorm:"primaryKey"`
	CommunityID uint64 `gorm:"not null;index;uniqueIndex:uk_invite_community_user"`
	UserID      uint64 `gorm:"not null;index;uniqueIndex:uk_invite_community_user"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (CommunityInvite) TableName() string { return "community_invites" }

// CommunityRequest 待处理加入申请（用户 -> 社区）
type CommunityRequest struct {
	ID          uint64 `gorm:"primaryKey"`
	CommunityID uint64 `gorm:"not null;index;uniqueIndex:uk_request_community_user"`
	UserID      uint64 `gorm:"not null;index;uniqueIndex:uk_request_community_user"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (CommunityRequest) TableName() string { return "community_requests" }
