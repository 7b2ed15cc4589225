package handler

import (
	"net/http"

	"github.com/blues/wcs/internal/logic"
	"github.com/gin-gonic/gin"
)

// DisputeHandler 争议接口
type DisputeHandler struct {
	disputeLogic *logic.DisputeLogic
}

// NewDisputeHandler 创建争议接口
func NewDisputeHandler(disputeLogic *logic.DisputeLogic) *DisputeHandler {
	return &DisputeHandler{disputeLogic: disputeLogic}
}

// Quote 计算质押并发放确认令牌
func (h *DisputeHandler) Quote(c *gin.Context) {
	commitId, err := parseCommitId(c.Param("commitId"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req QuoteDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.disputeLogic.Quote(c.Request.Context(), req.GuildId, commitId)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "stake quoted - confirm within the expiry window", result)
}

// Open 开启争议
func (h *DisputeHandler) Open(c *gin.Context) {
	commitId, err := parseCommitId(c.Param("commitId"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req OpenDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.disputeLogic.Open(c.Request.Context(), req.GuildId, commitId, req.ConfirmToken, req.StakeAmount)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "dispute opened", result)
}

// Get 查询争议详情
func (h *DisputeHandler) Get(c *gin.Context) {
	commitId, err := parseCommitId(c.Param("commitId"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	dispute, err := h.disputeLogic.Get(c.Request.Context(), commitId)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", dispute)
}

// Resolve 仲裁争议，路由层已做管理员鉴权
func (h *DisputeHandler) Resolve(c *gin.Context) {
	commitId, err := parseCommitId(c.Param("commitId"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.disputeLogic.Resolve(c.Request.Context(), commitId, *req.FavorContributor)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "dispute resolved", result)
}
