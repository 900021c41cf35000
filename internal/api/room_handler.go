package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wfunc/block-battle/internal/game"
	ws "github.com/wfunc/block-battle/internal/websocket"
)

// RoomHandler 大厅查询处理器
type RoomHandler struct {
	registry *game.Registry
	hub      *ws.Hub
}

// NewRoomHandler 创建大厅查询处理器
func NewRoomHandler(registry *game.Registry, hub *ws.Hub) *RoomHandler {
	return &RoomHandler{
		registry: registry,
		hub:      hub,
	}
}

// ListRooms 查询房间列表
// @Summary 查询房间列表
// @Description 返回当前可见的房间快照，按创建时间排序
// @Tags Room
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /api/v1/rooms [get]
func (h *RoomHandler) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "ok",
		Data:    h.registry.RoomList(),
	})
}

// OnlineCount 查询在线人数
func (h *RoomHandler) OnlineCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"online_count": h.hub.GetOnlineCount(),
		"room_count":   h.registry.RoomCount(),
	})
}
