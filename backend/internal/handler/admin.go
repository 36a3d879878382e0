package handler

import (
	"net/http"

	"github.com/itchan-dev/anonboard/shared/api"
	"github.com/itchan-dev/anonboard/shared/logger"
	mw "github.com/itchan-dev/anonboard/shared/middleware"
	"github.com/itchan-dev/anonboard/shared/middleware/metrics"
)

// DeleteAllThreads wipes every board. The route exists only when enabled in
// config and sits behind the operator middleware.
func (h *Handler) DeleteAllThreads(w http.ResponseWriter, r *http.Request) {
	n, err := h.thread.DeleteAll(r.Context())
	if err != nil {
		fail(w, "delete_all", err)
		return
	}
	logger.Log.Warn("all threads deleted", "operator", mw.GetOperatorFromContext(r), "deleted", n)
	metrics.RecordOperation("delete_all", metrics.OutcomeOK)
	writeJSON(w, http.StatusOK, api.DeleteAllResponse{Deleted: n})
}
