package mysql

import (
	"Thread_Hive/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB 打开连接。TranslateError 让唯一键冲突统一变成 gorm.ErrDuplicatedKey，
// 仓储层再翻译成业务 Conflict。
func InitDB(dsn string) error {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// AutoMigrate 自动建表（开发阶段 OK）
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Community{},
		&model.CommunityMember{},
		&model.CommunityInvite{},
		&model.CommunityRequest{},
		&model.Thread{},
		&model.ThreadLike{},
		&model.CommunityOutbox{},
	)
}
