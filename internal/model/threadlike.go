package model

import "time"

type ThreadLike struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"not null;index;uniqueIndex:uk_user_thread"`
	ThreadID  uint64 `gorm:"not null;index;uniqueIndex:uk_user_thread"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ThreadLike) TableName() string {
	return "thread_likes"
}
