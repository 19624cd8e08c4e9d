// Package auditdelivery manages delivery layer of the audit log.
package auditdelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// DefaultLimit is the page size used when the request does not set one.
const DefaultLimit = 50

// Service provides service layer interface needed by audit delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package auditdelivery
type Service interface {
	List(ctx context.Context, limit, offset int32) ([]domain.AuditEntry, error)
}

// Handler facilitates audit delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns audit handler.
func NewHandler(s Service) Handler {
	return Handler{service: s}
}

type listRequest struct {
	Limit  int32 `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int32 `form:"offset" binding:"omitempty,min=0"`
}

type dataEntries struct {
	Entries []domain.AuditEntry `json:"entries"`
}

type responseEntries struct {
	Data dataEntries `json:"data,omitempty"`
}

// List handles http request to list audit entries.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingErrorMsg(err)})

		return
	}

	if req.Limit == 0 {
		req.Limit = DefaultLimit
	}

	entries, err := h.service.List(ctx, req.Limit, req.Offset)
	if err != nil {
		gctx.JSON(web.StatusCode(err), web.Error(web.PublicError(err)))
		return
	}

	if entries == nil {
		entries = []domain.AuditEntry{}
	}

	gctx.JSON(http.StatusOK, responseEntries{Data: dataEntries{entries}})
}
