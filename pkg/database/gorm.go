// Package database 负责建立聊天记录库与 Redis 的连接。
package database

import (
	"fmt"
	"time"

	"chat-relay-go/pkg/log"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open 根据驱动名打开 GORM 连接并配置连接池。
// sqlite 同一时刻只允许一个写者，因此连接池限制为单连接。
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)           // 设置空闲连接池中连接的最大数量
		sqlDB.SetMaxOpenConns(100)          // 设置打开数据库连接的最大数量
		sqlDB.SetConnMaxLifetime(time.Hour) // 设置了连接可复用的最大时间
	}

	log.Infow("database connected successfully", "driver", driver)
	return db, nil
}

// IsSQLite 判断连接是否使用 sqlite 方言。
func IsSQLite(db *gorm.DB) bool {
	name := db.Dialector.Name()
	return name == "sqlite" || name == "sqlite3"
}
