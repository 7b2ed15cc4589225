package handler

import (
	"encoding/json"
	"net/http"

	"github.com/blues/wcs/internal/agent"
	"github.com/blues/wcs/internal/ipfs"
	"github.com/gin-gonic/gin"
)

// AgentHandler 成果验收接口
type AgentHandler struct {
	agents *agent.Service
	ipfs   *ipfs.Service
}

// NewAgentHandler 创建验收接口
func NewAgentHandler(agents *agent.Service, ipfsSvc *ipfs.Service) *AgentHandler {
	return &AgentHandler{agents: agents, ipfs: ipfsSvc}
}

// AnalyzeCode 验收GitHub PR
func (h *AgentHandler) AnalyzeCode(c *gin.Context) {
	var input agent.CodeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.agents.AnalyzeCode(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "code analysis completed", result)
}

// AnalyzeDesign 验收设计交付物
func (h *AgentHandler) AnalyzeDesign(c *gin.Context) {
	var input agent.DesignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.agents.AnalyzeDesign(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "design analysis completed", result)
}

// AnalyzeDocument 验收文档交付物
func (h *AgentHandler) AnalyzeDocument(c *gin.Context) {
	var input agent.DocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.agents.AnalyzeDocument(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "document analysis completed", result)
}

// GetEvidence 按CID取回归档的验收证据
func (h *AgentHandler) GetEvidence(c *gin.Context) {
	raw, err := h.ipfs.Fetch(c.Request.Context(), c.Param("cid"))
	if err != nil {
		HandleError(c, err)
		return
	}

	var evidence interface{}
	if err := json.Unmarshal(raw, &evidence); err != nil {
		// 不是JSON就原样返回
		SuccessResponse(c, http.StatusOK, "", gin.H{"raw": string(raw)})
		return
	}

	SuccessResponse(c, http.StatusOK, "", evidence)
}
