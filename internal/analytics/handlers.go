package analytics

import (
	"net/http"

	"github.com/aryanbrs/packklite-sub001/internal/common"
)

// Handler exposes the admin dashboard.
type Handler struct {
	Svc *Service
}

// Dashboard handles GET /api/v1/admin/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Svc.Dashboard(r.Context())
	if err != nil {
		common.WriteError(w, common.Internal(err))
		return
	}
	common.Data(w, http.StatusOK, d)
}
