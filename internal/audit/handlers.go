package audit

import (
	"net/http"

	"github.com/aryanbrs/packklite-sub001/internal/common"
)

// Handler exposes HTTP endpoints for working with audit logs.
type Handler struct {
	Service *Service
}

// List handles GET /api/v1/admin/audit.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	p := common.ParsePagination(r, 50)
	rows, total, err := h.Service.List(r.Context(), p)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	p.TotalItems = int(total)
	common.Paged(w, rows, p)
}
