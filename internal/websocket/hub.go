package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wfunc/block-battle/internal/config"
)

// MessageHandler 入站消息处理器
type MessageHandler interface {
	HandleClientMessage(client *Client, data []byte)
	HandleDisconnect(client *Client)
}

// Hub WebSocket连接管理中心
type Hub struct {
	cfg config.WebSocketConfig

	clients   map[string]*Client
	clientsMu sync.RWMutex

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	messageHandler MessageHandler

	logger *zap.Logger
}

// NewHub 创建Hub，cfg为nil或缺项时用默认值补全
func NewHub(cfg *config.WebSocketConfig, logger *zap.Logger) *Hub {
	return &Hub{
		cfg:        normalizeConfig(cfg),
		clients:    make(map[string]*Client),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// normalizeConfig 补全未设置的配置项
func normalizeConfig(cfg *config.WebSocketConfig) config.WebSocketConfig {
	out := config.WebSocketConfig{}
	if cfg != nil {
		out = *cfg
	}
	if out.ReadBufferSize <= 0 {
		out.ReadBufferSize = 1024
	}
	if out.WriteBufferSize <= 0 {
		out.WriteBufferSize = 1024
	}
	if out.MaxMessageSize <= 0 {
		out.MaxMessageSize = 64 * 1024
	}
	if out.PongTimeout <= 0 {
		out.PongTimeout = 60 * time.Second
	}
	if out.PingInterval <= 0 || out.PingInterval >= out.PongTimeout {
		out.PingInterval = out.PongTimeout * 9 / 10
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = 10 * time.Second
	}
	return out
}

// SetMessageHandler 设置入站消息处理器，必须在Run之前调用
func (h *Hub) SetMessageHandler(handler MessageHandler) {
	h.messageHandler = handler
}

// Config 生效的WebSocket配置（缺项已补全）
func (h *Hub) Config() config.WebSocketConfig {
	return h.cfg
}

// Run 运行Hub，ctx取消后关闭所有连接再退出
func (h *Hub) Run(ctx context.Context) {
	go h.runHeartbeat(ctx)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// shutdown 关闭所有客户端连接，读写泵随之退出
func (h *Hub) shutdown() {
	close(h.done)

	h.clientsMu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[string]*Client)
	h.clientsMu.Unlock()

	for _, client := range clients {
		client.Close()
	}

	h.logger.Info("Hub已关闭", zap.Int("closed_clients", len(clients)))
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client.ID] = client
	h.clientsMu.Unlock()

	h.logger.Info("WebSocket客户端连接",
		zap.String("client_id", client.ID),
		zap.Uint("user_id", client.UserID),
		zap.String("username", client.Username))

	h.SendToClient(client.ID, NewMessage(MessageTypeConnected, ConnectedPayload{
		PlayerID: client.ID,
		UserID:   client.UserID,
		Username: client.Username,
	}))
}

// unregisterClient 注销客户端
// 先通知业务层退房，再关发送通道
func (h *Hub) unregisterClient(client *Client) {
	h.clientsMu.Lock()
	_, ok := h.clients[client.ID]
	if ok {
		delete(h.clients, client.ID)
	}
	h.clientsMu.Unlock()

	if !ok {
		return
	}

	if h.messageHandler != nil {
		h.messageHandler.HandleDisconnect(client)
	}

	close(client.Send)

	h.logger.Info("WebSocket客户端断开",
		zap.String("client_id", client.ID),
		zap.Uint("user_id", client.UserID))
}

// broadcastMessage 广播消息给所有客户端
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("序列化消息失败", zap.Error(err))
		return
	}

	h.clientsMu.RLock()
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("客户端发送缓冲区满",
				zap.String("client_id", client.ID))
		}
	}
	h.clientsMu.RUnlock()
}

// SendToClient 发送消息给指定客户端
func (h *Hub) SendToClient(clientID string, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.clientsMu.RLock()
	client, ok := h.clients[clientID]
	h.clientsMu.RUnlock()

	if !ok {
		return ErrClientNotFound
	}

	select {
	case client.Send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Broadcast 广播消息
// 不阻塞：广播通道满时丢弃并记警告，Run协程自己触发的广播不能把自己堵死
func (h *Hub) Broadcast(message *Message) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	default:
		h.logger.Warn("广播缓冲区满，丢弃消息", zap.String("type", message.Type))
	}
}

// Register 注册客户端
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister 注销客户端，Hub停止后不再阻塞
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// GetOnlineCount 获取在线连接数
func (h *Hub) GetOnlineCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// runHeartbeat 周期向所有客户端发应用层ping
func (h *Hub) runHeartbeat(ctx context.Context) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Broadcast(NewMessage(MessageTypePing, nil))
		}
	}
}