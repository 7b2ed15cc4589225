package handler

import (
	"net/http"

	"github.com/blues/wcs/internal/logic"
	"github.com/gin-gonic/gin"
)

// ServerHandler 服务器账户接口
type ServerHandler struct {
	serverLogic *logic.ServerLogic
}

// NewServerHandler 创建服务器账户接口
func NewServerHandler(serverLogic *logic.ServerLogic) *ServerHandler {
	return &ServerHandler{serverLogic: serverLogic}
}

// Register 注册服务器账户
func (h *ServerHandler) Register(c *gin.Context) {
	var req RegisterServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.serverLogic.Register(c.Request.Context(), req.GuildId, req.AdminId)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "server registered", result)
}

// Deposit 向服务器账户存入资金
func (h *ServerHandler) Deposit(c *gin.Context) {
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.serverLogic.Deposit(c.Request.Context(), c.Param("guildId"), req.Amount)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "deposit completed", result)
}

// Withdraw 从服务器账户提取未锁定资金
func (h *ServerHandler) Withdraw(c *gin.Context) {
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.serverLogic.Withdraw(c.Request.Context(), c.Param("guildId"), req.Recipient, req.Amount)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "withdrawal completed", result)
}

// Get 查询服务器账户
func (h *ServerHandler) Get(c *gin.Context) {
	server, err := h.serverLogic.Get(c.Request.Context(), c.Param("guildId"))
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", server)
}
