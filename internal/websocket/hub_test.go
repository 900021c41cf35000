package websocket

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wfunc/block-battle/internal/config"
)

func TestHubConfigDefaults(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	cfg := h.Config()

	if cfg.MaxMessageSize != 64*1024 {
		t.Errorf("MaxMessageSize默认值 = %d", cfg.MaxMessageSize)
	}
	if cfg.PongTimeout != 60*time.Second {
		t.Errorf("PongTimeout默认值 = %v", cfg.PongTimeout)
	}
	if cfg.PingInterval >= cfg.PongTimeout {
		t.Errorf("ping周期 %v 必须小于pong超时 %v", cfg.PingInterval, cfg.PongTimeout)
	}
	if cfg.ReadBufferSize != 1024 || cfg.WriteBufferSize != 1024 {
		t.Errorf("缓冲区默认值错误: %d/%d", cfg.ReadBufferSize, cfg.WriteBufferSize)
	}
	if cfg.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout默认值 = %v", cfg.WriteTimeout)
	}
}

func TestHubConfigOverrides(t *testing.T) {
	h := NewHub(&config.WebSocketConfig{
		MaxMessageSize: 4096,
		PongTimeout:    10 * time.Second,
		PingInterval:   3 * time.Second,
	}, zap.NewNop())
	cfg := h.Config()

	if cfg.MaxMessageSize != 4096 {
		t.Errorf("MaxMessageSize未生效: %d", cfg.MaxMessageSize)
	}
	if cfg.PingInterval != 3*time.Second {
		t.Errorf("PingInterval未生效: %v", cfg.PingInterval)
	}
	// 缺项仍然补默认值
	if cfg.WriteTimeout != 10*time.Second {
		t.Errorf("缺项未补默认值: %v", cfg.WriteTimeout)
	}
}

// 广播通道满时Broadcast必须立即返回
// Run协程自己触发的广播（断线退房的大厅推送）不能把自己堵死
func TestBroadcastDoesNotBlockWhenBufferFull(t *testing.T) {
	h := NewHub(nil, zap.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(h.broadcast)+10; i++ {
			h.Broadcast(NewMessage(MessageTypePing, nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("广播缓冲区满时Broadcast被阻塞")
	}
}

// Hub停止后注销不能永远阻塞，否则读泵协程泄漏
func TestUnregisterAfterShutdown(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	client := &Client{ID: "conn-x", Username: "alice", Hub: h, Send: make(chan []byte, 8)}
	h.Register(client)

	deadline := time.Now().Add(time.Second)
	for h.GetOnlineCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("等待客户端注册超时")
		}
		time.Sleep(2 * time.Millisecond)
	}

	cancel()
	<-stopped

	if h.GetOnlineCount() != 0 {
		t.Errorf("关闭后仍有在线客户端: %d", h.GetOnlineCount())
	}

	finished := make(chan struct{})
	go func() {
		h.Unregister(client)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Hub停止后Unregister被阻塞")
	}
}
