package model

import "time"

// Thread 帖子/回复统一模型：ParentID 为空是根帖，非空是某个帖子的回复。
// 回复树用邻接表表示（父id回指），不在结构体里内嵌子对象。
type Thread struct {
	ID          uint64  `gorm:"primaryKey"`
	AuthorID    uint64  `gorm:"not null;index:idx_author_time"`
	CommunityID *uint64 `gorm:"index:idx_community_time_id,priority:1"`
	ParentID    *uint64 `gorm:"index"`
	Content     string  `gorm:"type:text;not null"`
	LikeCount   int64   `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"index:idx_community_time_id,priority:2,sort:desc;index:idx_author_time"`
	UpdatedAt   time.Time
}
