package game

import (
	"testing"
	"time"

	"github.com/wfunc/block-battle/internal/game/tetris"
)

func sampleRoom() *Room {
	host := &Player{ID: "a", Username: "alice", JoinedAt: time.Now()}
	return newRoom("room-1", "测试房", host, tetris.GenerateSequence(10, nil))
}

func TestRoomOpponent(t *testing.T) {
	room := sampleRoom()
	if room.opponent("a") != nil {
		t.Error("单人房间不应有对手")
	}

	room.addPlayer(&Player{ID: "b", Username: "bob"})
	if opp := room.opponent("a"); opp == nil || opp.ID != "b" {
		t.Errorf("对手 = %+v, 期望 b", opp)
	}
	if opp := room.opponent("b"); opp == nil || opp.ID != "a" {
		t.Errorf("对手 = %+v, 期望 a", opp)
	}
}

func TestRoomRemovePlayer_HostTransfer(t *testing.T) {
	room := sampleRoom()
	room.addPlayer(&Player{ID: "b", Username: "bob"})

	removed := room.removePlayer("a")
	if removed == nil || removed.ID != "a" {
		t.Fatalf("移除结果 = %+v", removed)
	}
	if room.HostID != "b" {
		t.Errorf("房主未转移, HostID = %s", room.HostID)
	}

	if room.removePlayer("不存在") != nil {
		t.Error("移除未知玩家应返回nil")
	}
}

func TestRoomMarkGarbageSeen(t *testing.T) {
	room := sampleRoom()
	if !room.markGarbageSeen("evt-1") {
		t.Error("首次事件应记录成功")
	}
	if room.markGarbageSeen("evt-1") {
		t.Error("重复事件应返回false")
	}
	if !room.markGarbageSeen("evt-2") {
		t.Error("不同事件互不影响")
	}
}

func TestRoomSnapshot(t *testing.T) {
	room := sampleRoom()
	room.addPlayer(&Player{ID: "b", Username: "bob", Score: 500, Lines: 3})

	info := room.snapshot()
	if info.RoomID != "room-1" || info.RoomName != "测试房" || info.Creator != "alice" {
		t.Errorf("快照基础字段错误: %+v", info)
	}
	if info.Status != RoomStateWaiting || info.MaxPlayers != MaxPlayers {
		t.Errorf("快照状态错误: %+v", info)
	}
	if len(info.Players) != 2 {
		t.Fatalf("快照玩家数 = %d", len(info.Players))
	}
	if !info.Players[0].IsHost || info.Players[1].IsHost {
		t.Errorf("房主标记错误: %+v", info.Players)
	}
	if info.Players[1].Score != 500 || info.Players[1].Lines != 3 {
		t.Errorf("玩家战况未带出: %+v", info.Players[1])
	}
}
