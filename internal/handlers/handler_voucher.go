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

// voucherHandler handles HTTP requests of the voucher lifecycle.
type voucherHandler struct {
	voucherService portssvc.VoucherSvcFacade
	identity       portssvc.IdentityProvider
}

func newVoucherHandler(voucherService portssvc.VoucherSvcFacade, identity portssvc.IdentityProvider) *voucherHandler {
	return &voucherHandler{voucherService: voucherService, identity: identity}
}

// registerVoucherRoutes registers voucher specific routes
func registerVoucherRoutes(rg *gin.RouterGroup, voucherService portssvc.VoucherSvcFacade, identity portssvc.IdentityProvider) {
	h := newVoucherHandler(voucherService, identity)

	vouchers := rg.Group("/vouchers")
	{
		vouchers.POST("", h.createVoucher)
		vouchers.GET("/:voucherID", h.getVoucher)
		vouchers.PUT("/:voucherID/lines", h.updateDraft)
		vouchers.POST("/:voucherID/submit", h.submitVoucher)
		vouchers.POST("/:voucherID/post", h.postVoucher)
		vouchers.POST("/:voucherID/reverse", h.reverseVoucher)
		vouchers.POST("/:voucherID/cancel", h.cancelVoucher)
		vouchers.POST("/:voucherID/reopen", h.reopenVoucher)
	}
}

// currentActor resolves the caller or answers 401.
func currentActor(c *gin.Context, identity portssvc.IdentityProvider, logger *slog.Logger) (domain.Actor, bool) {
	actor, err := identity.CurrentUser(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Unauthorized")
		return domain.Actor{}, false
	}
	return actor, true
}

// createVoucher godoc
// @Summary Create a draft voucher
// @Tags vouchers
// @Accept json
// @Produce json
// @Param voucher body dto.CreateVoucherRequest true "Voucher header and lines"
// @Success 201 {object} dto.VoucherResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /vouchers [post]
func (h *voucherHandler) createVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	actor, ok := currentActor(c, h.identity, logger)
	if !ok {
		return
	}

	voucher, err := h.voucherService.CreateVoucher(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to create voucher")
		return
	}

	logger.Info("Voucher created", slog.String("voucher_id", voucher.VoucherID))
	c.JSON(http.StatusCreated, dto.ToVoucherResponse(voucher))
}

// getVoucher godoc
// @Summary Get a voucher with its lines
// @Tags vouchers
// @Produce json
// @Param voucherID path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 404 {object} ErrorResponse
// @Router /vouchers/{voucherID} [get]
func (h *voucherHandler) getVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	voucherID, ok := pathID(c, logger, "voucherID")
	if !ok {
		return
	}

	voucher, err := h.voucherService.GetVoucher(c.Request.Context(), voucherID)
	if err != nil {
		respondError(c, logger.With(slog.String("voucher_id", voucherID)), err, "Failed to retrieve voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// updateDraft godoc
// @Summary Replace the lines of a draft voucher
// @Tags vouchers
// @Accept json
// @Produce json
// @Param voucherID path string true "Voucher ID"
// @Param voucher body dto.UpdateVoucherRequest true "New lines"
// @Success 200 {object} dto.VoucherResponse
// @Failure 409 {object} ErrorResponse
// @Router /vouchers/{voucherID}/lines [put]
func (h *voucherHandler) updateDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	voucherID, ok := pathID(c, logger, "voucherID")
	if !ok {
		return
	}

	var req dto.UpdateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	actor, ok := currentActor(c, h.identity, logger)
	if !ok {
		return
	}

	voucher, err := h.voucherService.UpdateDraft(c.Request.Context(), voucherID, req, actor)
	if err != nil {
		respondError(c, logger.With(slog.String("voucher_id", voucherID)), err, "Failed to update voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// submitVoucher godoc
// @Summary Submit a draft for approval
// @Tags vouchers
// @Produce json
// @Param voucherID path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 422 {object} ErrorResponse
// @Router /vouchers/{voucherID}/submit [post]
func (h *voucherHandler) submitVoucher(c *gin.Context) {
	h.transition(c, "Failed to submit voucher", func(actor domain.Actor, voucherID string) (*domain.Voucher, error) {
		return h.voucherService.SubmitForApproval(c.Request.Context(), voucherID, actor)
	})
}

// postVoucher godoc
// @Summary Number and post a voucher
// @Tags vouchers
// @Produce json
// @Param voucherID path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 409 {object} ErrorResponse
// @Router /vouchers/{voucherID}/post [post]
func (h *voucherHandler) postVoucher(c *gin.Context) {
	h.transition(c, "Failed to post voucher", func(actor domain.Actor, voucherID string) (*domain.Voucher, error) {
		return h.voucherService.Post(c.Request.Context(), voucherID, actor)
	})
}

// reopenVoucher godoc
// @Summary Move a rejected voucher back to draft
// @Tags vouchers
// @Produce json
// @Param voucherID path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 409 {object} ErrorResponse
// @Router /vouchers/{voucherID}/reopen [post]
func (h *voucherHandler) reopenVoucher(c *gin.Context) {
	h.transition(c, "Failed to reopen voucher", func(actor domain.Actor, voucherID string) (*domain.Voucher, error) {
		return h.voucherService.Reopen(c.Request.Context(), voucherID, actor)
	})
}

// cancelVoucher godoc
// @Summary Cancel a draft or rejected voucher
// @Tags vouchers
// @Accept json
// @Produce json
// @Param voucherID path string true "Voucher ID"
// @Param reason body dto.CancelVoucherRequest false "Reason"
// @Success 200 {object} dto.VoucherResponse
// @Failure 409 {object} ErrorResponse
// @Router /vouchers/{voucherID}/cancel [post]
func (h *voucherHandler) cancelVoucher(c *gin.Context) {
	var req dto.CancelVoucherRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.transition(c, "Failed to cancel voucher", func(actor domain.Actor, voucherID string) (*domain.Voucher, error) {
		return h.voucherService.Cancel(c.Request.Context(), voucherID, actor, req.Reason)
	})
}

// reverseVoucher godoc
// @Summary Reverse a posted voucher
// @Description Creates an offsetting voucher. It is posted at once unless it needs approval, in which case 202 is returned.
// @Tags vouchers
// @Accept json
// @Produce json
// @Param voucherID path string true "Voucher ID"
// @Param reversal body dto.ReverseVoucherRequest false "Reversal header"
// @Success 201 {object} dto.VoucherResponse
// @Success 202 {object} dto.VoucherResponse
// @Failure 409 {object} ErrorResponse
// @Router /vouchers/{voucherID}/reverse [post]
func (h *voucherHandler) reverseVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	voucherID, ok := pathID(c, logger, "voucherID")
	if !ok {
		return
	}

	var req dto.ReverseVoucherRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	actor, ok := currentActor(c, h.identity, logger)
	if !ok {
		return
	}

	reversal, err := h.voucherService.Reverse(c.Request.Context(), voucherID, req, actor)
	if err != nil {
		respondError(c, logger.With(slog.String("voucher_id", voucherID)), err, "Failed to reverse voucher")
		return
	}

	status := http.StatusCreated
	if reversal.Status != domain.VoucherPosted {
		status = http.StatusAccepted
	}
	logger.Info("Voucher reversed", slog.String("voucher_id", voucherID), slog.String("reversal_id", reversal.VoucherID))
	c.JSON(status, dto.ToVoucherResponse(reversal))
}

// transition runs a body-less lifecycle operation on the voucher in the path.
func (h *voucherHandler) transition(c *gin.Context, failure string, op func(actor domain.Actor, voucherID string) (*domain.Voucher, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	voucherID, ok := pathID(c, logger, "voucherID")
	if !ok {
		return
	}

	actor, ok := currentActor(c, h.identity, logger)
	if !ok {
		return
	}

	voucher, err := op(actor, voucherID)
	if err != nil {
		respondError(c, logger.With(slog.String("voucher_id", voucherID)), err, failure)
		return
	}

	logger.Info("Voucher transitioned", slog.String("voucher_id", voucherID), slog.String("status", string(voucher.Status)))
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}
