package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wfunc/block-battle/internal/errors"
	"github.com/wfunc/block-battle/internal/game"
)

// fakeSender 记录出站消息的桩
type fakeSender struct {
	mu         sync.Mutex
	sent       map[string][]*Message
	broadcasts []*Message
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: make(map[string][]*Message)}
}

func (f *fakeSender) SendToClient(clientID string, message *Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[clientID] = append(f.sent[clientID], message)
	return nil
}

func (f *fakeSender) Broadcast(message *Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, message)
}

func (f *fakeSender) messagesTo(clientID, msgType string) []*Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Message
	for _, m := range f.sent[clientID] {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeSender) broadcastCount(msgType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.broadcasts {
		if m.Type == msgType {
			n++
		}
	}
	return n
}

func newTestHandler() (*MatchHandler, *fakeSender) {
	registry := game.NewRegistry(game.RegistryConfig{
		SequenceLength: 20,
		Countdown:      20 * time.Millisecond,
		CleanupGrace:   time.Minute,
		StaleCeiling:   time.Hour,
		SweepInterval:  time.Hour,
	}, zap.NewNop(), nil)

	sender := newFakeSender()
	handler := NewMatchHandler(registry, sender, zap.NewNop())
	return handler, sender
}

func raw(t *testing.T, msgType string, payload interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func decodeData(t *testing.T, msg *Message, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(msg.Data, v); err != nil {
		t.Fatalf("解码负载失败: %v", err)
	}
}

// setupMatch 两个客户端建好房间并等到对局开始
func setupMatch(t *testing.T, h *MatchHandler, s *fakeSender) (*Client, *Client, string) {
	t.Helper()

	alice := &Client{ID: "conn-a", UserID: 1, Username: "alice"}
	bob := &Client{ID: "conn-b", UserID: 2, Username: "bob"}

	h.HandleClientMessage(alice, raw(t, MessageTypeCreateRoom, CreateRoomRequest{RoomName: "测试房"}))

	created := s.messagesTo(alice.ID, game.EventRoomCreated)
	if len(created) != 1 {
		t.Fatalf("room-created消息数 = %d", len(created))
	}
	var info game.RoomInfo
	decodeData(t, created[0], &info)

	h.HandleClientMessage(bob, raw(t, MessageTypeJoinRoom, JoinRoomRequest{RoomID: info.RoomID}))
	h.HandleClientMessage(alice, raw(t, MessageTypeStartGame, struct{}{}))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(s.messagesTo(alice.ID, game.EventGameStart)) > 0 {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	if len(s.messagesTo(alice.ID, game.EventGameStart)) == 0 {
		t.Fatal("等待game-start超时")
	}

	return alice, bob, info.RoomID
}

func TestMatchHandler_CreateRoom(t *testing.T) {
	h, s := newTestHandler()
	alice := &Client{ID: "conn-a", UserID: 1, Username: "alice"}

	h.HandleClientMessage(alice, raw(t, MessageTypeCreateRoom, CreateRoomRequest{RoomName: "我的房间"}))

	created := s.messagesTo(alice.ID, game.EventRoomCreated)
	if len(created) != 1 {
		t.Fatalf("room-created消息数 = %d", len(created))
	}
	var info game.RoomInfo
	decodeData(t, created[0], &info)
	if info.RoomName != "我的房间" || info.Creator != "alice" {
		t.Errorf("房间快照错误: %+v", info)
	}

	// 房间列表变化走大厅广播
	if s.broadcastCount(game.EventRoomList) == 0 {
		t.Error("创建房间未广播大厅列表")
	}
}

func TestMatchHandler_JoinUnknownRoom(t *testing.T) {
	h, s := newTestHandler()
	bob := &Client{ID: "conn-b", UserID: 2, Username: "bob"}

	h.HandleClientMessage(bob, raw(t, MessageTypeJoinRoom, JoinRoomRequest{RoomID: "不存在"}))

	errs := s.messagesTo(bob.ID, MessageTypeError)
	if len(errs) != 1 {
		t.Fatalf("错误消息数 = %d", len(errs))
	}
	var payload ErrorPayload
	decodeData(t, errs[0], &payload)
	if payload.Code != int(errors.ErrRoomNotFound) {
		t.Errorf("错误码 = %d, 期望 %d", payload.Code, errors.ErrRoomNotFound)
	}
}

func TestMatchHandler_GameStartSharedSequence(t *testing.T) {
	h, s := newTestHandler()
	alice, bob, _ := setupMatch(t, h, s)

	var toAlice, toBob game.GameStart
	decodeData(t, s.messagesTo(alice.ID, game.EventGameStart)[0], &toAlice)
	decodeData(t, s.messagesTo(bob.ID, game.EventGameStart)[0], &toBob)

	if len(toAlice.Sequence) != 20 {
		t.Fatalf("序列长度 = %d", len(toAlice.Sequence))
	}
	if fmt.Sprint(toAlice.Sequence) != fmt.Sprint(toBob.Sequence) {
		t.Error("双方收到的方块序列不一致")
	}
}

func TestMatchHandler_GameUpdateRelayedToOpponent(t *testing.T) {
	h, s := newTestHandler()
	alice, bob, _ := setupMatch(t, h, s)

	board := make([][]int, 20)
	for i := range board {
		board[i] = make([]int, 10)
	}
	h.HandleClientMessage(alice, raw(t, MessageTypeGameUpdate, GameUpdateRequest{
		Board: board, Score: 300, Lines: 2, Level: 1,
	}))

	updates := s.messagesTo(bob.ID, game.EventOpponentUpdate)
	if len(updates) != 1 {
		t.Fatalf("对手收到的棋盘快照数 = %d", len(updates))
	}
	// 上报者自己不会收到
	if len(s.messagesTo(alice.ID, game.EventOpponentUpdate)) != 0 {
		t.Error("棋盘快照被回发给了上报者")
	}
}

func TestMatchHandler_GarbageDeduplicated(t *testing.T) {
	h, s := newTestHandler()
	alice, bob, _ := setupMatch(t, h, s)

	msg := raw(t, MessageTypeSendGarbage, SendGarbageRequest{EventID: "evt-1", LinesCleared: 3})
	h.HandleClientMessage(alice, msg)
	h.HandleClientMessage(alice, msg) // 客户端重发

	garbage := s.messagesTo(bob.ID, game.EventReceiveGarbage)
	if len(garbage) != 1 {
		t.Fatalf("重发后垃圾事件数 = %d, 期望 1", len(garbage))
	}
	var evt game.GarbageEvent
	decodeData(t, garbage[0], &evt)
	if evt.Lines != 2 {
		t.Errorf("垃圾行数 = %d, 期望 2", evt.Lines)
	}
}

func TestMatchHandler_GameOverIdempotent(t *testing.T) {
	h, s := newTestHandler()
	alice, bob, _ := setupMatch(t, h, s)

	h.HandleClientMessage(alice, raw(t, MessageTypeGameOver, GameOverRequest{FinalScore: 900}))

	ends := s.messagesTo(bob.ID, game.EventGameEnd)
	if len(ends) != 1 {
		t.Fatalf("game-end消息数 = %d", len(ends))
	}
	var end game.GameEnd
	decodeData(t, ends[0], &end)
	if end.WinnerID != bob.ID || end.LoserID != alice.ID {
		t.Errorf("胜负判定错误: %+v", end)
	}

	// 重复上报：报错误，不再广播
	h.HandleClientMessage(alice, raw(t, MessageTypeGameOver, GameOverRequest{FinalScore: 900}))
	if len(s.messagesTo(bob.ID, game.EventGameEnd)) != 1 {
		t.Error("重复上报触发了第二次game-end")
	}
	errs := s.messagesTo(alice.ID, MessageTypeError)
	if len(errs) == 0 {
		t.Fatal("重复上报未收到错误")
	}
}

func TestMatchHandler_DisconnectEndsMatch(t *testing.T) {
	h, s := newTestHandler()
	alice, bob, _ := setupMatch(t, h, s)

	h.HandleDisconnect(bob)

	ends := s.messagesTo(alice.ID, game.EventGameEnd)
	if len(ends) != 1 {
		t.Fatalf("game-end消息数 = %d", len(ends))
	}
	var end game.GameEnd
	decodeData(t, ends[0], &end)
	if end.WinnerID != alice.ID || end.Reason != game.ReasonOpponentLeft {
		t.Errorf("掉线判负错误: %+v", end)
	}
}

func TestMatchHandler_MalformedMessage(t *testing.T) {
	h, s := newTestHandler()
	alice := &Client{ID: "conn-a", Username: "alice"}

	h.HandleClientMessage(alice, []byte("{not json"))

	if len(s.messagesTo(alice.ID, MessageTypeError)) != 1 {
		t.Error("畸形消息未收到错误回复")
	}
}

func TestMatchHandler_RoomList(t *testing.T) {
	h, s := newTestHandler()
	alice := &Client{ID: "conn-a", Username: "alice"}
	bob := &Client{ID: "conn-b", Username: "bob"}

	h.HandleClientMessage(alice, raw(t, MessageTypeCreateRoom, CreateRoomRequest{RoomName: "房间"}))
	h.HandleClientMessage(bob, raw(t, MessageTypeRoomList, struct{}{}))

	lists := s.messagesTo(bob.ID, game.EventRoomList)
	if len(lists) != 1 {
		t.Fatalf("room-list消息数 = %d", len(lists))
	}
	var rooms []game.RoomInfo
	decodeData(t, lists[0], &rooms)
	if len(rooms) != 1 || rooms[0].RoomName != "房间" {
		t.Errorf("大厅列表错误: %+v", rooms)
	}
}
