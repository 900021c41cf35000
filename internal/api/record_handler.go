package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wfunc/block-battle/internal/middleware"
	"github.com/wfunc/block-battle/internal/service"
)

// RecordHandler 对战记录处理器
type RecordHandler struct {
	recordService service.RecordService
}

// NewRecordHandler 创建对战记录处理器
func NewRecordHandler(recordService service.RecordService) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
	}
}

// GetPlayerRecords 查询玩家对战记录
// @Summary 查询玩家对战记录
// @Description 按时间倒序分页返回指定玩家的对战记录
// @Tags Record
// @Produce json
// @Param id path int true "玩家ID"
// @Param page query int false "页码"
// @Param page_size query int false "每页条数"
// @Success 200 {object} RecordListResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/players/{id}/records [get]
func (h *RecordHandler) GetPlayerRecords(c *gin.Context) {
	userID, err := parseUserID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "玩家ID格式错误",
		})
		return
	}

	h.respondRecords(c, userID)
}

// GetPlayerStats 查询玩家战绩统计
// @Summary 查询玩家战绩统计
// @Description 返回指定玩家的累计胜负与分数统计
// @Tags Record
// @Produce json
// @Param id path int true "玩家ID"
// @Success 200 {object} models.PlayerStats
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/players/{id}/stats [get]
func (h *RecordHandler) GetPlayerStats(c *gin.Context) {
	userID, err := parseUserID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "玩家ID格式错误",
		})
		return
	}

	h.respondStats(c, userID)
}

// GetMyRecords 查询当前用户对战记录
func (h *RecordHandler) GetMyRecords(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    "UNAUTHORIZED",
			Message: "未登录",
		})
		return
	}

	h.respondRecords(c, userID)
}

// GetMyStats 查询当前用户战绩统计
func (h *RecordHandler) GetMyStats(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    "UNAUTHORIZED",
			Message: "未登录",
		})
		return
	}

	h.respondStats(c, userID)
}

// GetLeaderboard 查询排行榜
// @Summary 查询排行榜
// @Description 按胜场倒序返回战绩排行
// @Tags Record
// @Produce json
// @Param limit query int false "返回条数"
// @Success 200 {object} SuccessResponse
// @Router /api/v1/leaderboard [get]
func (h *RecordHandler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	entries, err := h.recordService.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "QUERY_FAILED",
			Message: "排行榜查询失败",
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "ok",
		Data:    entries,
	})
}

func (h *RecordHandler) respondRecords(c *gin.Context, userID uint) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	records, total, err := h.recordService.GetPlayerRecords(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "QUERY_FAILED",
			Message: "对战记录查询失败",
		})
		return
	}

	c.JSON(http.StatusOK, RecordListResponse{
		Records:  records,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *RecordHandler) respondStats(c *gin.Context, userID uint) {
	stats, err := h.recordService.GetPlayerStats(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "QUERY_FAILED",
			Message: "战绩统计查询失败",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func parseUserID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	return uint(id), err
}

// RecordListResponse 对战记录分页响应
type RecordListResponse struct {
	Records  interface{} `json:"records"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}
