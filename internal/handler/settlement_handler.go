package handler

import (
	"net/http"

	"github.com/blues/wcs/internal/logic"
	"github.com/gin-gonic/gin"
)

// SettlementHandler 结算接口
type SettlementHandler struct {
	settlementLogic *logic.SettlementLogic
}

// NewSettlementHandler 创建结算接口
func NewSettlementHandler(settlementLogic *logic.SettlementLogic) *SettlementHandler {
	return &SettlementHandler{settlementLogic: settlementLogic}
}

// Pending 列出当前可结算的承诺
func (h *SettlementHandler) Pending(c *gin.Context) {
	pending, err := h.settlementLogic.Pending(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"pending": pending,
		"total":   len(pending),
	})
}

// BatchSettle 手动批量结算
func (h *SettlementHandler) BatchSettle(c *gin.Context) {
	var req BatchSettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.settlementLogic.BatchSettle(c.Request.Context(), req.CommitIds)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "batch settlement completed", result)
}

// Stats 查询协议统计
func (h *SettlementHandler) Stats(c *gin.Context) {
	stats, err := h.settlementLogic.Stats(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", stats)
}
