package handler

import (
	"net/http"

	"github.com/blues/wcs/internal/identity"
	"github.com/gin-gonic/gin"
)

// UserHandler 用户名与钱包地址绑定接口
type UserHandler struct {
	identity *identity.Service
}

// NewUserHandler 创建用户接口
func NewUserHandler(svc *identity.Service) *UserHandler {
	return &UserHandler{identity: svc}
}

// Upsert 绑定或更新用户名与钱包地址
func (h *UserHandler) Upsert(c *gin.Context) {
	var req UpsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.identity.Upsert(req.Username, req.WalletAddress, req.DiscordId)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "user saved", user)
}

// Get 按用户名查地址
func (h *UserHandler) Get(c *gin.Context) {
	address, err := h.identity.Resolve(c.Param("username"))
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"username":      c.Param("username"),
		"walletAddress": address,
	})
}

// GetByWallet 按地址反查用户
func (h *UserHandler) GetByWallet(c *gin.Context) {
	user, err := h.identity.Reverse(c.Param("address"))
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", user)
}

// Delete 解除绑定
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.identity.Remove(c.Param("username")); err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "user removed", nil)
}
