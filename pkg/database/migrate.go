package database

import (
	"chat-relay-go/internal/model"
	"chat-relay-go/pkg/log"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Migrate 初始化聊天记录表。已执行过的迁移记录在 migrations 表中，重复调用不会再次执行。
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "202610150001_create_chat_turns",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.ChatTurn{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&model.ChatTurn{})
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return err
	}
	log.Info("chat log schema is up to date")
	return nil
}
