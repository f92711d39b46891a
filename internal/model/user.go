package model

import "time"

type User struct {
	ID        uint64 `gorm:"primaryKey"`
	Uid       string `gorm:"uniqueIndex;size:64;not null"` // 对外稳定别名，URL中使用
	Username  string `gorm:"uniqueIndex;size:32;not null"`
	Password  string `gorm:"size:255;not null"`
	Email     string `gorm:"uniqueIndex;size:64;not null"`
	Name      string `gorm:"size:64"`
	Bio       string `gorm:"type:text"`
	AvatarURL string `gorm:"size:255"`
	Onboarded bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
