package database

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wfunc/block-battle/internal/logger"
	"github.com/wfunc/block-battle/internal/models"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	migrationModels := []interface{}{
		// 用户相关
		&models.User{},
		&models.UserAuth{},

		// 对战相关
		&models.GameRecord{},
		&models.PlayerStats{},
	}

	logger.Info("开始数据库迁移...")

	// sqlite迁移重建表时外键约束会捣乱
	if DB.Dialector.Name() == "sqlite" {
		DB.Exec("PRAGMA foreign_keys = OFF")
		defer DB.Exec("PRAGMA foreign_keys = ON")
	}

	for _, model := range migrationModels {
		if err := DB.AutoMigrate(model); err != nil {
			logger.Error("迁移失败",
				zap.String("model", fmt.Sprintf("%T", model)),
				zap.Error(err),
			)
			return err
		}
	}

	if err := createIndexes(); err != nil {
		return err
	}

	logger.Info("数据库迁移完成")
	return nil
}

// createIndexes 创建数据库索引，失败只告警不中断启动
func createIndexes() error {
	indexes := []struct {
		name string
		sql  string
	}{
		{"idx_users_username", "CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)"},
		{"idx_game_records_user_id", "CREATE INDEX IF NOT EXISTS idx_game_records_user_id ON game_records(user_id)"},
		{"idx_game_records_result", "CREATE INDEX IF NOT EXISTS idx_game_records_result ON game_records(result)"},
		{"idx_game_records_played_at", "CREATE INDEX IF NOT EXISTS idx_game_records_played_at ON game_records(played_at)"},
		{"idx_player_stats_user_id", "CREATE INDEX IF NOT EXISTS idx_player_stats_user_id ON player_stats(user_id)"},
	}

	for _, idx := range indexes {
		if err := DB.Exec(idx.sql).Error; err != nil {
			logger.Warn("创建索引失败", zap.String("index", idx.name), zap.Error(err))
		}
	}

	logger.Info("数据库索引创建完成")
	return nil
}
