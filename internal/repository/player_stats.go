package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/wfunc/block-battle/internal/models"
)

// PlayerStatsRepository 玩家战绩仓储接口
type PlayerStatsRepository interface {
	BaseRepository
	FindByUserID(ctx context.Context, userID uint) (*models.PlayerStats, error)
	ApplyResult(ctx context.Context, userID uint, won bool, score, lines int) error
	TopByWins(ctx context.Context, limit int) ([]*models.PlayerStats, error)
}

// playerStatsRepo 玩家战绩仓储实现
type playerStatsRepo struct {
	*BaseRepo
}

// NewPlayerStatsRepository 创建玩家战绩仓储
func NewPlayerStatsRepository(db *gorm.DB) PlayerStatsRepository {
	return &playerStatsRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// FindByUserID 查询玩家累计战绩，没有记录时返回全零的新结构
func (r *playerStatsRepo) FindByUserID(ctx context.Context, userID uint) (*models.PlayerStats, error) {
	var stats models.PlayerStats
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.PlayerStats{UserID: userID}, nil
		}
		return nil, err
	}
	return &stats, nil
}

// ApplyResult 把一局结果累加进玩家战绩，首局自动建行
func (r *playerStatsRepo) ApplyResult(ctx context.Context, userID uint, won bool, score, lines int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stats models.PlayerStats
		err := tx.Where("user_id = ?", userID).First(&stats).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			stats = models.PlayerStats{UserID: userID}
		} else if err != nil {
			return err
		}

		now := time.Now()
		stats.TotalGames++
		if won {
			stats.Wins++
		} else {
			stats.Losses++
		}
		stats.TotalScore += int64(score)
		stats.TotalLines += int64(lines)
		if score > stats.BestScore {
			stats.BestScore = score
		}
		stats.LastPlayedAt = &now

		return tx.Save(&stats).Error
	})
}

// TopByWins 胜场排行榜
func (r *playerStatsRepo) TopByWins(ctx context.Context, limit int) ([]*models.PlayerStats, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var stats []*models.PlayerStats
	err := r.db.WithContext(ctx).
		Order("wins DESC, total_games ASC").
		Limit(limit).
		Find(&stats).Error
	return stats, err
}
