package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/voucher_engine/internal/core/ports/services"
	"github.com/SscSPs/voucher_engine/internal/dto"
	"github.com/SscSPs/voucher_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// registerNumberingRoutes registers the number preview route
func registerNumberingRoutes(rg *gin.RouterGroup, voucherService portssvc.VoucherSvcFacade) {
	rg.GET("/numbering/preview", func(c *gin.Context) { previewNumber(c, voucherService) })
}

// previewNumber godoc
// @Summary Preview the next document number of a scope
// @Description The value is not reserved; a concurrent post may take it.
// @Tags numbering
// @Produce json
// @Param entity query string true "Entity"
// @Param documentType query string true "Document type"
// @Param fiscalYear query int true "Fiscal year"
// @Success 200 {object} dto.IdentifierResponse
// @Failure 400 {object} ErrorResponse
// @Router /numbering/preview [get]
func previewNumber(c *gin.Context, voucherService portssvc.VoucherSvcFacade) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.PreviewNumberParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}

	id, err := voucherService.PreviewNextNumber(c.Request.Context(), params.Scope())
	if err != nil {
		respondError(c, logger, err, "Failed to preview number")
		return
	}
	c.JSON(http.StatusOK, dto.ToIdentifierResponse(id))
}
