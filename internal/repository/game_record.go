package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/wfunc/block-battle/internal/models"
)

// GameRecordRepository 对战记录仓储接口
type GameRecordRepository interface {
	BaseRepository
	Create(ctx context.Context, record *models.GameRecord) error
	CreateBatch(ctx context.Context, records []*models.GameRecord) error
	FindByID(ctx context.Context, id uint) (*models.GameRecord, error)
	FindByUserID(ctx context.Context, userID uint, pagination *Pagination) ([]*models.GameRecord, error)
	CountByUserID(ctx context.Context, userID uint) (int64, error)
	FindRecent(ctx context.Context, limit int) ([]*models.GameRecord, error)
}

// gameRecordRepo 对战记录仓储实现
type gameRecordRepo struct {
	*BaseRepo
}

// NewGameRecordRepository 创建对战记录仓储
func NewGameRecordRepository(db *gorm.DB) GameRecordRepository {
	return &gameRecordRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建对战记录
func (r *gameRecordRepo) Create(ctx context.Context, record *models.GameRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// CreateBatch 批量创建对战记录，一局的两条记录在同一事务里落库
func (r *gameRecordRepo) CreateBatch(ctx context.Context, records []*models.GameRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&records).Error
}

// FindByID 根据ID查找记录
func (r *gameRecordRepo) FindByID(ctx context.Context, id uint) (*models.GameRecord, error) {
	var record models.GameRecord
	err := r.db.WithContext(ctx).First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByUserID 查询玩家的历史战绩（分页，新局在前）
func (r *gameRecordRepo) FindByUserID(ctx context.Context, userID uint, pagination *Pagination) ([]*models.GameRecord, error) {
	var records []*models.GameRecord

	query := r.db.WithContext(ctx).
		Model(&models.GameRecord{}).
		Where("user_id = ?", userID)

	var total int64
	query.Count(&total)
	pagination.Total = total

	err := query.
		Order("played_at DESC").
		Limit(pagination.PageSize).
		Offset(pagination.Offset()).
		Find(&records).Error
	return records, err
}

// CountByUserID 玩家总对局数
func (r *gameRecordRepo) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GameRecord{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// FindRecent 最近对局
func (r *gameRecordRepo) FindRecent(ctx context.Context, limit int) ([]*models.GameRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var records []*models.GameRecord
	err := r.db.WithContext(ctx).
		Order("played_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
