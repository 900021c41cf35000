package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wfunc/block-battle/internal/game"
	"github.com/wfunc/block-battle/internal/models"
	"github.com/wfunc/block-battle/internal/repository"
)

// recordService 对战记录服务实现
type recordService struct {
	recordRepo repository.GameRecordRepository
	statsRepo  repository.PlayerStatsRepository
	log        *zap.Logger
}

// NewRecordService 创建对战记录服务
func NewRecordService(
	recordRepo repository.GameRecordRepository,
	statsRepo repository.PlayerStatsRepository,
	log *zap.Logger,
) RecordService {
	return &recordService{
		recordRepo: recordRepo,
		statsRepo:  statsRepo,
		log:        log,
	}
}

// RecordGameResult 落库一局对战结果
// 访客（UserID为0）不落库；战绩累加失败只记日志，不影响对战记录本身
func (s *recordService) RecordGameResult(ctx context.Context, records []game.ResultRecord) error {
	now := time.Now()

	rows := make([]*models.GameRecord, 0, len(records))
	for _, rec := range records {
		if rec.UserID == 0 {
			continue
		}
		rows = append(rows, &models.GameRecord{
			UserID:          rec.UserID,
			Username:        rec.Username,
			Result:          rec.Result,
			Score:           rec.Score,
			Lines:           rec.Lines,
			OpponentUserID:  rec.OpponentUserID,
			OpponentName:    rec.OpponentName,
			DurationSeconds: rec.DurationSeconds,
			Reason:          rec.Reason,
			PlayedAt:        now,
		})
	}
	if len(rows) == 0 {
		return nil
	}

	if err := s.recordRepo.CreateBatch(ctx, rows); err != nil {
		s.log.Error("对战记录落库失败", zap.Error(err))
		return err
	}

	for _, rec := range records {
		if rec.UserID == 0 {
			continue
		}
		won := rec.Result == "win"
		if err := s.statsRepo.ApplyResult(ctx, rec.UserID, won, rec.Score, rec.Lines); err != nil {
			s.log.Error("战绩累加失败",
				zap.Uint("user_id", rec.UserID),
				zap.Error(err))
		}
	}

	return nil
}

// GetPlayerRecords 查询玩家历史战绩（分页）
func (s *recordService) GetPlayerRecords(ctx context.Context, userID uint, page, pageSize int) ([]*models.GameRecord, int64, error) {
	pagination := repository.NewPagination(page, pageSize)
	records, err := s.recordRepo.FindByUserID(ctx, userID, pagination)
	if err != nil {
		return nil, 0, err
	}
	return records, pagination.Total, nil
}

// GetPlayerStats 查询玩家累计战绩
func (s *recordService) GetPlayerStats(ctx context.Context, userID uint) (*models.PlayerStats, error) {
	return s.statsRepo.FindByUserID(ctx, userID)
}

// GetLeaderboard 胜场排行榜
func (s *recordService) GetLeaderboard(ctx context.Context, limit int) ([]*models.PlayerStats, error) {
	return s.statsRepo.TopByWins(ctx, limit)
}
