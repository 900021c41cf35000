package models

import (
	"time"
)

// GameRecord 对战记录表，一局两条（胜方一条、负方一条）
// 访客对局不落库，UserID恒大于0
type GameRecord struct {
	BaseModel
	UserID          uint    `gorm:"not null;index" json:"user_id"`
	Username        string  `gorm:"size:50" json:"username"`
	Result          string  `gorm:"size:10;not null;index" json:"result"` // win, loss
	Score           int     `gorm:"default:0" json:"score"`
	Lines           int     `gorm:"default:0" json:"lines"`
	OpponentUserID  uint    `gorm:"index" json:"opponent_user_id"`
	OpponentName    string  `gorm:"size:50" json:"opponent_name"`
	DurationSeconds int     `gorm:"default:0" json:"duration_seconds"`
	Reason          string  `gorm:"size:20" json:"reason"` // topped_out, opponent_left
	Extra           JSONMap `gorm:"type:json" json:"extra"`
	PlayedAt        time.Time `json:"played_at"`
}

// TableName 指定表名
func (GameRecord) TableName() string {
	return "game_records"
}

// PlayerStats 玩家累计战绩表
type PlayerStats struct {
	BaseModel
	UserID       uint  `gorm:"uniqueIndex;not null" json:"user_id"`
	TotalGames   int   `gorm:"default:0" json:"total_games"`
	Wins         int   `gorm:"default:0" json:"wins"`
	Losses       int   `gorm:"default:0" json:"losses"`
	TotalScore   int64 `gorm:"default:0" json:"total_score"`
	TotalLines   int64 `gorm:"default:0" json:"total_lines"`
	BestScore    int   `gorm:"default:0" json:"best_score"`
	LastPlayedAt *time.Time `json:"last_played_at,omitempty"`
}

// TableName 指定表名
func (PlayerStats) TableName() string {
	return "player_stats"
}

// WinRate 胜率，没打过返回0
func (s *PlayerStats) WinRate() float64 {
	if s.TotalGames == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.TotalGames)
}
