package model

import "time"

// CommunityOutbox 社区事件监控表
type CommunityOutbox struct {
	ID          uint64 `gorm:"primaryKey"`
	EventType   string `gorm:"size:32;not null"` // community_created / community_deleted / member_joined / member_left / thread_created
	CommunityID uint64 `gorm:"not null"`
	UserID      uint64 `gorm:"not null"`
	Payload     string `gorm:"type:json;not null"`
	Status      int8   `gorm:"not null;default:0;comment:'0=pending,1=sent,2=failed'"`
	Retry       int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (CommunityOutbox) TableName() string { return "community_outbox" }
