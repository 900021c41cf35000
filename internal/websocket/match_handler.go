package websocket

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/wfunc/block-battle/internal/errors"
	"github.com/wfunc/block-battle/internal/game"
)

// Sender 出站消息通道，Hub实现它；测试里可以换成记录桩
type Sender interface {
	SendToClient(clientID string, message *Message) error
	Broadcast(message *Message)
}

// MatchHandler 对战消息处理器
// 把入站消息翻译成房间注册表调用，把注册表产出的推送发回客户端
type MatchHandler struct {
	registry *game.Registry
	sender   Sender
	log      *zap.Logger
}

// NewMatchHandler 创建对战消息处理器，并把自己挂成注册表的异步推送出口
func NewMatchHandler(registry *game.Registry, sender Sender, log *zap.Logger) *MatchHandler {
	h := &MatchHandler{
		registry: registry,
		sender:   sender,
		log:      log,
	}
	registry.SetNotify(h.Deliver)
	return h
}

// Deliver 投递一条注册表推送
// 定时器路径（倒计时、清扫）和请求路径的推送都从这里出去
func (h *MatchHandler) Deliver(push game.PushMessage) {
	msg := NewMessage(push.Event, push.Data)
	if push.Lobby {
		h.sender.Broadcast(msg)
		return
	}
	for _, target := range push.Targets {
		if err := h.sender.SendToClient(target, msg); err != nil {
			h.log.Debug("推送投递失败",
				zap.String("client_id", target),
				zap.String("event", push.Event),
				zap.Error(err))
		}
	}
}

// HandleClientMessage 处理入站消息
func (h *MatchHandler) HandleClientMessage(c *Client, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		h.log.Warn("解析消息失败",
			zap.String("client_id", c.ID),
			zap.Error(err))
		h.sendError(c, errors.New(errors.ErrInvalidParam, "消息格式错误"))
		return
	}

	switch msg.Type {
	case MessageTypeCreateRoom:
		h.handleCreateRoom(c, msg.Data)
	case MessageTypeJoinRoom:
		h.handleJoinRoom(c, msg.Data)
	case MessageTypeStartGame:
		h.handleStartGame(c)
	case MessageTypeGameUpdate:
		h.handleGameUpdate(c, msg.Data)
	case MessageTypeSendGarbage:
		h.handleSendGarbage(c, msg.Data)
	case MessageTypeGameOver:
		h.handleGameOver(c, msg.Data)
	case MessageTypeLeaveRoom:
		h.handleLeaveRoom(c)
	case MessageTypeRoomList:
		h.handleRoomList(c)
	case MessageTypePong:
		// 心跳应答，不用处理
	default:
		h.log.Warn("不支持的消息类型",
			zap.String("client_id", c.ID),
			zap.String("type", msg.Type))
		h.sendError(c, errors.New(errors.ErrInvalidParam, "不支持的消息类型: "+msg.Type))
	}
}

// HandleDisconnect 连接断开，等同于离开所在房间
func (h *MatchHandler) HandleDisconnect(c *Client) {
	h.deliverAll(h.registry.Disconnect(c.ID))
}

func (h *MatchHandler) handleCreateRoom(c *Client, data json.RawMessage) {
	var req CreateRoomRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.sendError(c, errors.New(errors.ErrInvalidParam, "房间名解析失败"))
		return
	}

	info, pushes, appErr := h.registry.CreateRoom(c.ID, c.UserID, c.Username, req.RoomName)
	if appErr != nil {
		h.sendError(c, appErr)
		return
	}

	h.sender.SendToClient(c.ID, NewMessage(game.EventRoomCreated, info))
	h.deliverAll(pushes)
}

func (h *MatchHandler) handleJoinRoom(c *Client, data json.RawMessage) {
	var req JoinRoomRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.sendError(c, errors.New(errors.ErrInvalidParam, "房间ID解析失败"))
		return
	}

	info, pushes, appErr := h.registry.JoinRoom(c.ID, c.UserID, c.Username, req.RoomID)
	if appErr != nil {
		h.sendError(c, appErr)
		return
	}

	h.sender.SendToClient(c.ID, NewMessage(game.EventRoomJoined, info))
	h.deliverAll(pushes)
}

func (h *MatchHandler) handleStartGame(c *Client) {
	roomID, ok := h.registry.RoomOf(c.ID)
	if !ok {
		h.sendError(c, errors.New(errors.ErrNotInRoom))
		return
	}

	pushes, appErr := h.registry.StartGame(c.ID, roomID)
	if appErr != nil {
		h.sendError(c, appErr)
		return
	}
	h.deliverAll(pushes)
}

func (h *MatchHandler) handleGameUpdate(c *Client, data json.RawMessage) {
	var req GameUpdateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		// 打进行中的对局不回错误事件，静默丢弃
		return
	}

	roomID, ok := h.registry.RoomOf(c.ID)
	if !ok {
		return
	}

	h.deliverAll(h.registry.UpdateBoard(c.ID, roomID, game.BoardUpdate{
		Board: req.Board,
		Score: req.Score,
		Lines: req.Lines,
		Level: req.Level,
	}))
}

func (h *MatchHandler) handleSendGarbage(c *Client, data json.RawMessage) {
	var req SendGarbageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}

	roomID, ok := h.registry.RoomOf(c.ID)
	if !ok {
		return
	}

	h.deliverAll(h.registry.RelayGarbage(c.ID, roomID, req.EventID, req.LinesCleared))
}

func (h *MatchHandler) handleGameOver(c *Client, data json.RawMessage) {
	var req GameOverRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.sendError(c, errors.New(errors.ErrInvalidParam, "结算数据解析失败"))
		return
	}

	roomID, ok := h.registry.RoomOf(c.ID)
	if !ok {
		h.sendError(c, errors.New(errors.ErrNotInRoom))
		return
	}

	pushes, appErr := h.registry.ReportGameOver(c.ID, roomID, req.FinalScore)
	if appErr != nil {
		h.sendError(c, appErr)
		return
	}
	h.deliverAll(pushes)
}

func (h *MatchHandler) handleLeaveRoom(c *Client) {
	roomID, ok := h.registry.RoomOf(c.ID)
	if !ok {
		h.sendError(c, errors.New(errors.ErrNotInRoom))
		return
	}

	pushes, appErr := h.registry.LeaveRoom(c.ID, roomID)
	if appErr != nil {
		h.sendError(c, appErr)
		return
	}
	h.deliverAll(pushes)
}

func (h *MatchHandler) handleRoomList(c *Client) {
	h.sender.SendToClient(c.ID, NewMessage(game.EventRoomList, h.registry.RoomList()))
}

// deliverAll 投递一批推送
func (h *MatchHandler) deliverAll(pushes []game.PushMessage) {
	for _, p := range pushes {
		h.Deliver(p)
	}
}

// sendError 回错误消息给客户端
func (h *MatchHandler) sendError(c *Client, appErr *errors.AppError) {
	h.sender.SendToClient(c.ID, NewMessage(MessageTypeError, ErrorPayload{
		Code:    int(appErr.Code),
		Message: appErr.Message,
	}))
}
