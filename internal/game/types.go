package game

import (
	"time"

	"github.com/wfunc/block-battle/internal/game/tetris"
)

// RoomState 房间状态
type RoomState string

const (
	// RoomStateWaiting 等待玩家加入/开局
	RoomStateWaiting RoomState = "waiting"
	// RoomStatePlaying 对局进行中
	RoomStatePlaying RoomState = "playing"
	// RoomStateFinished 对局已结束（终态）
	RoomStateFinished RoomState = "finished"
)

// MaxPlayers 每个房间最多2名玩家
const MaxPlayers = 2

// Player 房间内的玩家
type Player struct {
	ID       string // 连接ID，房间内唯一
	UserID   uint   // 持久化用户ID，访客为0
	Username string

	// 对局过程中客户端上报的最近状态，服务端只转发不重算
	Score int
	Lines int
	Level int

	// SequenceIndex 共享序列游标，只增不减
	SequenceIndex int

	JoinedAt time.Time
}

// BoardUpdate 客户端上报的棋盘快照
type BoardUpdate struct {
	Board [][]int `json:"board"`
	Score int     `json:"score"`
	Lines int     `json:"lines"`
	Level int     `json:"level"`
}

// GarbageEvent 垃圾行事件，eventID用于至少一次投递下的幂等去重
type GarbageEvent struct {
	EventID    string `json:"event_id"`
	FromPlayer string `json:"from_player"`
	FromName   string `json:"from_name"`
	Lines      int    `json:"lines"`
	Timestamp  int64  `json:"timestamp"`
}

// PlayerInfo 玩家对外快照
type PlayerInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsHost   bool   `json:"is_host"`
	Score    int    `json:"score"`
	Lines    int    `json:"lines"`
	Level    int    `json:"level"`
}

// RoomInfo 房间对外快照（大厅列表与room-joined都用它）
type RoomInfo struct {
	RoomID     string       `json:"room_id"`
	RoomName   string       `json:"room_name"`
	Creator    string       `json:"creator"`
	Players    []PlayerInfo `json:"players"`
	MaxPlayers int          `json:"max_players"`
	Status     RoomState    `json:"status"`
	CreatedAt  int64        `json:"created_at"`
}

// GameStart 开局推送负载，双方收到完全相同的方块序列
type GameStart struct {
	RoomID    string             `json:"room_id"`
	StartTime int64              `json:"start_time"`
	Sequence  []tetris.PieceType `json:"piece_sequence"`
	Players   []PlayerInfo       `json:"players"`
}

// GameEnd 对局结束推送负载
type GameEnd struct {
	RoomID   string `json:"room_id"`
	WinnerID string `json:"winner_id"`
	Winner   string `json:"winner"`
	LoserID  string `json:"loser_id"`
	Loser    string `json:"loser"`
	Reason   string `json:"reason"` // topped_out / opponent_left
}

// 推送事件名（出站）
const (
	EventRoomCreated    = "room-created"
	EventRoomJoined     = "room-joined"
	EventRoomUpdate     = "room-update"
	EventRoomList       = "room-list"
	EventGameStarting   = "game-starting"
	EventGameStart      = "game-start"
	EventOpponentUpdate = "opponent-update"
	EventReceiveGarbage = "receive-garbage"
	EventGameEnd        = "game-end"
	EventOpponentLeft   = "opponent-left"
)

// 对局结束原因
const (
	ReasonToppedOut    = "topped_out"
	ReasonOpponentLeft = "opponent_left"
)

// PushMessage 需要下发给客户端的消息
// Lobby为true时推送给所有大厅观察者，否则按Targets定向推送
type PushMessage struct {
	Event   string
	Targets []string
	Lobby   bool
	Data    interface{}
}

// push 构造定向推送
func push(event string, data interface{}, targets ...string) PushMessage {
	return PushMessage{Event: event, Targets: targets, Data: data}
}

// lobbyPush 构造大厅广播
func lobbyPush(data interface{}) PushMessage {
	return PushMessage{Event: EventRoomList, Lobby: true, Data: data}
}
