package audit

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/aryanbrs/packklite-sub001/internal/common"
	"github.com/aryanbrs/packklite-sub001/internal/obs"
)

// HTTPRecorder records admin mutations after they have been handled.
type HTTPRecorder struct {
	Service *Service
	Log     zerolog.Logger
}

// HTTPConfig customises how the audit entry is produced for a route.
type HTTPConfig struct {
	Action          string
	ResourceType    string
	ResourceIDParam string
}

type annotation struct {
	resourceID string
	metadata   map[string]any
}

type annotationKey struct{}

// Annotate lets a handler attach the resource id it created and extra
// metadata to the entry its route will record.
func Annotate(ctx context.Context, resourceID string, metadata map[string]any) {
	a, ok := ctx.Value(annotationKey{}).(*annotation)
	if !ok {
		return
	}
	if resourceID != "" {
		a.resourceID = resourceID
	}
	for k, v := range metadata {
		a.metadata[k] = v
	}
}

// Middleware records an entry for every request that completes below 400.
// Failures to persist are logged and never reach the client.
func (h HTTPRecorder) Middleware(cfg HTTPConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if h.Service == nil {
				next.ServeHTTP(w, r)
				return
			}
			ann := &annotation{metadata: map[string]any{}}
			rec := obs.NewStatusRecorder(w)
			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), annotationKey{}, ann)))

			status := rec.Status()
			if status >= http.StatusBadRequest {
				return
			}
			resourceID := ann.resourceID
			if resourceID == "" && cfg.ResourceIDParam != "" {
				resourceID = chi.URLParam(r, cfg.ResourceIDParam)
			}
			adminID, _ := common.AdminID(r.Context())
			ann.metadata["ip"] = common.ClientIP(r)
			if reqID := chimw.GetReqID(r.Context()); reqID != "" {
				ann.metadata["request_id"] = reqID
			}
			ann.metadata["status"] = status

			err := h.Service.Record(r.Context(), Entry{
				AdminID:      adminID,
				Action:       cfg.Action,
				ResourceType: cfg.ResourceType,
				ResourceID:   resourceID,
				Metadata:     ann.metadata,
			})
			if err != nil {
				h.Log.Error().Err(err).Str("action", cfg.Action).Str("resource_id", resourceID).Msg("audit record failed")
			}
		})
	}
}
