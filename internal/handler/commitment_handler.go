package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/wcs/internal/errs"
	"github.com/blues/wcs/internal/logic"
	"github.com/blues/wcs/internal/model"
	"github.com/gin-gonic/gin"
)

// CommitmentHandler 承诺生命周期接口
type CommitmentHandler struct {
	commitmentLogic *logic.CommitmentLogic
}

// NewCommitmentHandler 创建承诺接口
func NewCommitmentHandler(commitmentLogic *logic.CommitmentLogic) *CommitmentHandler {
	return &CommitmentHandler{commitmentLogic: commitmentLogic}
}

// Create 创建并立即注资一个承诺
func (h *CommitmentHandler) Create(c *gin.Context) {
	var req logic.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.commitmentLogic.Create(c.Request.Context(), &req)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "commitment created", result)
}

// Submit 提交承诺成果
func (h *CommitmentHandler) Submit(c *gin.Context) {
	commitId, err := parseCommitId(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req SubmitWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.commitmentLogic.Submit(c.Request.Context(), req.GuildId, commitId, req.Description, req.DeliverableUrl)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "work submitted", result)
}

// Get 查询承诺详情
func (h *CommitmentHandler) Get(c *gin.Context) {
	commitId, err := parseCommitId(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	commitment, err := h.commitmentLogic.Get(c.Request.Context(), commitId)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", commitment)
}

// ListByServer 按服务器列出承诺
func (h *CommitmentHandler) ListByServer(c *gin.Context) {
	filter := c.DefaultQuery("filter", string(model.FilterAll))

	commitments, err := h.commitmentLogic.ListByServer(c.Request.Context(), c.Param("guildId"), filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"commitments": commitments,
		"total":       len(commitments),
	})
}

// ListByContributor 按贡献者列出承诺
func (h *CommitmentHandler) ListByContributor(c *gin.Context) {
	filter := c.DefaultQuery("filter", string(model.FilterAll))

	commitments, err := h.commitmentLogic.ListByContributor(c.Request.Context(), c.Param("address"), filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"commitments": commitments,
		"total":       len(commitments),
	})
}

func parseCommitId(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, errs.Newf(errs.KindValidation, "invalid commitment id: %q", raw)
	}
	return id, nil
}
