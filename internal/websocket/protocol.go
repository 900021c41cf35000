package websocket

import (
	"encoding/json"
	"time"
)

// Message WebSocket消息信封，进出站共用
type Message struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

// 系统消息类型
const (
	MessageTypeConnected = "connected"
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
	MessageTypeError     = "error"
)

// 入站消息类型（客户端请求）
const (
	MessageTypeCreateRoom  = "create-room"
	MessageTypeJoinRoom    = "join-room"
	MessageTypeStartGame   = "start-game"
	MessageTypeGameUpdate  = "game-update"
	MessageTypeSendGarbage = "send-garbage"
	MessageTypeGameOver    = "game-over"
	MessageTypeLeaveRoom   = "leave-room"
	MessageTypeRoomList    = "get-room-list"
)

// CreateRoomRequest 创建房间请求
type CreateRoomRequest struct {
	RoomName string `json:"room_name"`
}

// JoinRoomRequest 加入房间请求
type JoinRoomRequest struct {
	RoomID string `json:"room_id"`
}

// GameUpdateRequest 棋盘快照上报
type GameUpdateRequest struct {
	Board [][]int `json:"board"`
	Score int     `json:"score"`
	Lines int     `json:"lines"`
	Level int     `json:"level"`
}

// SendGarbageRequest 垃圾行上报
// EventID由客户端生成，服务端凭它吸收重发
type SendGarbageRequest struct {
	EventID      string `json:"event_id"`
	LinesCleared int    `json:"lines_cleared"`
}

// GameOverRequest 顶满上报
type GameOverRequest struct {
	FinalScore int `json:"final_score"`
}

// ErrorPayload 错误消息负载
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ConnectedPayload 连接成功负载，回传服务端分配的连接ID
type ConnectedPayload struct {
	PlayerID string `json:"player_id"`
	UserID   uint   `json:"user_id,omitempty"`
	Username string `json:"username"`
}

// NewMessage 构造出站消息，负载序列化失败时返回错误消息兜底
func NewMessage(msgType string, data interface{}) *Message {
	msg := &Message{
		Type:      msgType,
		Timestamp: time.Now().Unix(),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return &Message{
				Type:      MessageTypeError,
				Timestamp: msg.Timestamp,
				Data:      json.RawMessage(`{"code":1000,"message":"内部错误"}`),
			}
		}
		msg.Data = raw
	}
	return msg
}
