package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
	portssvc "github.com/SscSPs/voucher_engine/internal/core/ports/services"
	"github.com/SscSPs/voucher_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// auditHandler exposes the audit stream of a voucher.
type auditHandler struct {
	audit portssvc.AuditTrail
}

// registerAuditRoutes registers audit specific routes
func registerAuditRoutes(rg *gin.RouterGroup, audit portssvc.AuditTrail) {
	h := &auditHandler{audit: audit}

	group := rg.Group("/audit/:voucherID")
	{
		group.GET("", h.listEntries)
		group.GET("/verify", h.verify)
	}
}

// listEntries godoc
// @Summary List the audit trail of a voucher
// @Tags audit
// @Produce json
// @Param voucherID path string true "Voucher ID"
// @Success 200 {array} domain.AuditEntry
// @Router /audit/{voucherID} [get]
func (h *auditHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	voucherID, ok := pathID(c, logger, "voucherID")
	if !ok {
		return
	}

	entries, err := h.audit.Entries(c.Request.Context(), domain.VoucherStream(voucherID))
	if err != nil {
		respondError(c, logger.With(slog.String("voucher_id", voucherID)), err, "Failed to list audit trail")
		return
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// verify godoc
// @Summary Verify the hash chain of a voucher's audit trail
// @Tags audit
// @Produce json
// @Param voucherID path string true "Voucher ID"
// @Success 200 {object} portssvc.AuditVerification
// @Failure 409 {object} ErrorResponse "Chain broken"
// @Router /audit/{voucherID}/verify [get]
func (h *auditHandler) verify(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	voucherID, ok := pathID(c, logger, "voucherID")
	if !ok {
		return
	}

	result, err := h.audit.Verify(c.Request.Context(), domain.VoucherStream(voucherID))
	if err != nil {
		respondError(c, logger.With(slog.String("voucher_id", voucherID)), err, "Failed to verify audit trail")
		return
	}
	c.JSON(http.StatusOK, result)
}
