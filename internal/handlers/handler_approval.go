package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
	portssvc "github.com/SscSPs/voucher_engine/internal/core/ports/services"
	"github.com/SscSPs/voucher_engine/internal/dto"
	"github.com/SscSPs/voucher_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// approvalHandler handles approval decisions and queries.
type approvalHandler struct {
	voucherService portssvc.VoucherSvcFacade
	approvals      portssvc.ApprovalEngine
	identity       portssvc.IdentityProvider
}

// registerApprovalRoutes registers approval specific routes
func registerApprovalRoutes(rg *gin.RouterGroup, voucherService portssvc.VoucherSvcFacade, approvals portssvc.ApprovalEngine, identity portssvc.IdentityProvider) {
	h := &approvalHandler{voucherService: voucherService, approvals: approvals, identity: identity}

	group := rg.Group("/approvals")
	{
		group.GET("/pending", h.listPending)
		group.GET("/:requestID", h.getRequest)
		group.GET("/:requestID/history", h.history)
		group.POST("/:requestID/approve", h.approve)
		group.POST("/:requestID/reject", h.reject)
		group.POST("/:requestID/delegate", h.delegate)
	}
}

// approve godoc
// @Summary Approve the current level of a request
// @Tags approvals
// @Accept json
// @Produce json
// @Param requestID path string true "Approval request ID"
// @Param decision body dto.ApproveRequest false "Optional comment"
// @Success 200 {object} dto.ApprovalRequestResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /approvals/{requestID}/approve [post]
func (h *approvalHandler) approve(c *gin.Context) {
	var req dto.ApproveRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.decide(c, "Failed to approve request", func(actor domain.Actor, requestID string) (*domain.ApprovalRequest, error) {
		return h.voucherService.Approve(c.Request.Context(), requestID, actor, req.Comment)
	})
}

// reject godoc
// @Summary Reject a request
// @Tags approvals
// @Accept json
// @Produce json
// @Param requestID path string true "Approval request ID"
// @Param decision body dto.RejectRequest true "Mandatory reason"
// @Success 200 {object} dto.ApprovalRequestResponse
// @Failure 422 {object} ErrorResponse
// @Router /approvals/{requestID}/reject [post]
func (h *approvalHandler) reject(c *gin.Context) {
	var req dto.RejectRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.decide(c, "Failed to reject request", func(actor domain.Actor, requestID string) (*domain.ApprovalRequest, error) {
		return h.voucherService.Reject(c.Request.Context(), requestID, actor, req.Comment)
	})
}

// delegate godoc
// @Summary Hand the current level to another user
// @Tags approvals
// @Accept json
// @Produce json
// @Param requestID path string true "Approval request ID"
// @Param delegation body dto.DelegateRequest true "Delegate"
// @Success 200 {object} dto.ApprovalRequestResponse
// @Failure 403 {object} ErrorResponse
// @Router /approvals/{requestID}/delegate [post]
func (h *approvalHandler) delegate(c *gin.Context) {
	var req dto.DelegateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, middleware.GetLoggerFromCtx(c.Request.Context()), err)
		return
	}
	h.decide(c, "Failed to delegate request", func(actor domain.Actor, requestID string) (*domain.ApprovalRequest, error) {
		return h.voucherService.Delegate(c.Request.Context(), requestID, actor, req.To, req.Comment)
	})
}

func (h *approvalHandler) decide(c *gin.Context, failure string, op func(actor domain.Actor, requestID string) (*domain.ApprovalRequest, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requestID, ok := pathID(c, logger, "requestID")
	if !ok {
		return
	}
	logger = logger.With(slog.String("request_id", requestID))

	actor, ok := currentActor(c, h.identity, logger)
	if !ok {
		return
	}

	request, err := op(actor, requestID)
	if err != nil {
		respondError(c, logger, err, failure)
		return
	}

	logger.Info("Approval decision recorded", slog.String("status", string(request.Status)), slog.Int("current_level", request.CurrentLevel))
	c.JSON(http.StatusOK, dto.ToApprovalRequestResponse(request))
}

// getRequest godoc
// @Summary Get an approval request
// @Tags approvals
// @Produce json
// @Param requestID path string true "Approval request ID"
// @Success 200 {object} dto.ApprovalRequestResponse
// @Failure 404 {object} ErrorResponse
// @Router /approvals/{requestID} [get]
func (h *approvalHandler) getRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requestID, ok := pathID(c, logger, "requestID")
	if !ok {
		return
	}

	request, err := h.approvals.GetRequest(c.Request.Context(), requestID)
	if err != nil {
		respondError(c, logger.With(slog.String("request_id", requestID)), err, "Failed to retrieve approval request")
		return
	}
	c.JSON(http.StatusOK, dto.ToApprovalRequestResponse(request))
}

// history godoc
// @Summary List the decisions of a request
// @Tags approvals
// @Produce json
// @Param requestID path string true "Approval request ID"
// @Success 200 {array} dto.ApprovalActionResponse
// @Failure 404 {object} ErrorResponse
// @Router /approvals/{requestID}/history [get]
func (h *approvalHandler) history(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requestID, ok := pathID(c, logger, "requestID")
	if !ok {
		return
	}

	actions, err := h.approvals.History(c.Request.Context(), requestID)
	if err != nil {
		respondError(c, logger.With(slog.String("request_id", requestID)), err, "Failed to retrieve approval history")
		return
	}
	c.JSON(http.StatusOK, dto.ToApprovalActionResponses(actions))
}

// listPending godoc
// @Summary List requests awaiting the caller, oldest first
// @Tags approvals
// @Produce json
// @Param limit query int false "Page size (max 200)"
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListPendingResponse
// @Failure 400 {object} ErrorResponse
// @Router /approvals/pending [get]
func (h *approvalHandler) listPending(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListPendingParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}
	actor, ok := currentActor(c, h.identity, logger)
	if !ok {
		return
	}

	page, err := h.voucherService.ListPendingApprovals(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list pending approvals")
		return
	}
	c.JSON(http.StatusOK, page)
}

// bindOptionalJSON binds a body when one was sent.
func bindOptionalJSON(c *gin.Context, obj any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil {
		respondBindError(c, middleware.GetLoggerFromCtx(c.Request.Context()), err)
		return false
	}
	return true
}
