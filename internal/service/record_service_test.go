package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wfunc/block-battle/internal/game"
	"github.com/wfunc/block-battle/internal/repository"
)

// RecordServiceTestSuite 对战记录服务测试套件
type RecordServiceTestSuite struct {
	suite.Suite
	db  *gorm.DB
	svc RecordService
}

func (suite *RecordServiceTestSuite) SetupTest() {
	suite.db = repository.SetupTestDB()
	suite.svc = NewRecordService(
		repository.NewGameRecordRepository(suite.db),
		repository.NewPlayerStatsRepository(suite.db),
		zap.NewNop(),
	)
}

func (suite *RecordServiceTestSuite) TearDownTest() {
	repository.CleanupTestDB(suite.db)
}

func matchResult() []game.ResultRecord {
	return []game.ResultRecord{
		{
			UserID: 1, Username: "alice", Result: "win",
			Score: 2400, Lines: 18,
			OpponentUserID: 2, OpponentName: "bob",
			DurationSeconds: 95, Reason: "topped_out",
		},
		{
			UserID: 2, Username: "bob", Result: "loss",
			Score: 1100, Lines: 9,
			OpponentUserID: 1, OpponentName: "alice",
			DurationSeconds: 95, Reason: "topped_out",
		},
	}
}

// TestRecordGameResult 测试一局结果落库
func (suite *RecordServiceTestSuite) TestRecordGameResult() {
	ctx := context.Background()

	err := suite.svc.RecordGameResult(ctx, matchResult())
	suite.NoError(err)

	records, total, err := suite.svc.GetPlayerRecords(ctx, 1, 1, 10)
	suite.NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal("win", records[0].Result)
	suite.Equal("bob", records[0].OpponentName)

	stats, err := suite.svc.GetPlayerStats(ctx, 1)
	suite.NoError(err)
	suite.Equal(1, stats.Wins)
	suite.Equal(2400, stats.BestScore)

	loserStats, err := suite.svc.GetPlayerStats(ctx, 2)
	suite.NoError(err)
	suite.Equal(1, loserStats.Losses)
	suite.Equal(0, loserStats.Wins)
}

// TestRecordGameResult_GuestsSkipped 测试访客不落库
func (suite *RecordServiceTestSuite) TestRecordGameResult_GuestsSkipped() {
	ctx := context.Background()

	records := []game.ResultRecord{
		{UserID: 0, Username: "guest-7f3a", Result: "win", Score: 500},
		{UserID: 3, Username: "carol", Result: "loss", Score: 300, OpponentName: "guest-7f3a"},
	}

	err := suite.svc.RecordGameResult(ctx, records)
	suite.NoError(err)

	// 访客没有记录
	_, total, err := suite.svc.GetPlayerRecords(ctx, 0, 1, 10)
	suite.NoError(err)
	suite.Equal(int64(0), total)

	// 注册玩家正常落库
	stats, err := suite.svc.GetPlayerStats(ctx, 3)
	suite.NoError(err)
	suite.Equal(1, stats.TotalGames)
}

// TestRecordGameResult_AllGuests 测试双访客对局整体跳过
func (suite *RecordServiceTestSuite) TestRecordGameResult_AllGuests() {
	ctx := context.Background()

	records := []game.ResultRecord{
		{UserID: 0, Username: "guest-1", Result: "win"},
		{UserID: 0, Username: "guest-2", Result: "loss"},
	}
	suite.NoError(suite.svc.RecordGameResult(ctx, records))
}

// TestGetLeaderboard 测试排行榜
func (suite *RecordServiceTestSuite) TestGetLeaderboard() {
	ctx := context.Background()

	suite.NoError(suite.svc.RecordGameResult(ctx, matchResult()))
	suite.NoError(suite.svc.RecordGameResult(ctx, matchResult()))

	top, err := suite.svc.GetLeaderboard(ctx, 10)
	suite.NoError(err)
	suite.Len(top, 2)
	suite.Equal(uint(1), top[0].UserID)
	suite.Equal(2, top[0].Wins)
}

func TestRecordServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RecordServiceTestSuite))
}
