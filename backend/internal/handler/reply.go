package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/anonboard/backend/internal/utils"
	"github.com/itchan-dev/anonboard/shared/api"
	"github.com/itchan-dev/anonboard/shared/errors"
	"github.com/itchan-dev/anonboard/shared/logger"
	"github.com/itchan-dev/anonboard/shared/middleware/metrics"
	shared_utils "github.com/itchan-dev/anonboard/shared/utils"
)

// GetReplies returns one thread with every reply, ?thread_id= selects it.
func (h *Handler) GetReplies(w http.ResponseWriter, r *http.Request) {
	threadId := r.URL.Query().Get("thread_id")
	if !utils.IsValidIdentifier(threadId) {
		fail(w, "get_replies", &errors.ValidationError{Message: "Invalid thread_id"})
		return
	}

	view, err := h.thread.GetReplies(r.Context(), threadId)
	if err != nil {
		fail(w, "get_replies", err)
		return
	}
	if view == nil {
		notFound(w, "get_replies", "Thread not found")
		return
	}
	metrics.RecordOperation("get_replies", metrics.OutcomeOK)
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) GetReply(w http.ResponseWriter, r *http.Request) {
	threadId, replyId := chi.URLParam(r, "thread_id"), chi.URLParam(r, "reply_id")
	if !utils.IsValidIdentifier(threadId) || !utils.IsValidIdentifier(replyId) {
		fail(w, "get_reply", &errors.ValidationError{Message: "Invalid thread or reply id"})
		return
	}

	thread, err := h.thread.GetReply(r.Context(), threadId, replyId)
	if err != nil {
		fail(w, "get_reply", err)
		return
	}
	if thread == nil {
		notFound(w, "get_reply", "Reply not found")
		return
	}
	metrics.RecordOperation("get_reply", metrics.OutcomeOK)
	writeJSON(w, http.StatusOK, api.NewThreadView(thread))
}

func (h *Handler) CreateReply(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody[api.CreateReplyRequest](w, r)
	if err != nil {
		fail(w, "create_reply", err)
		return
	}

	text, err := shared_utils.SanitizeRequiredText(body.Text)
	if err != nil {
		fail(w, "create_reply", err)
		return
	}

	thread, err := h.thread.AddReply(r.Context(), body.ThreadId, text, strings.TrimSpace(body.DeletePassword))
	if err != nil {
		fail(w, "create_reply", err)
		return
	}
	if thread == nil {
		notFound(w, "create_reply", "Thread with id "+body.ThreadId+" is not reachable.")
		return
	}
	logger.Log.Debug("reply created", "board", thread.Board, "thread_id", thread.Id)
	metrics.RecordOperation("create_reply", metrics.OutcomeOK)
	writeJSON(w, http.StatusCreated, api.NewThreadView(thread))
}

func (h *Handler) ReportReply(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody[api.ReportReplyRequest](w, r)
	if err != nil {
		fail(w, "report_reply", err)
		return
	}

	thread, err := h.thread.ReportReply(r.Context(), body.ThreadId, body.ReplyId)
	if err != nil {
		fail(w, "report_reply", err)
		return
	}
	if thread == nil {
		notFound(w, "report_reply", "Reply not found")
		return
	}
	logger.Log.Info("reply reported", "thread_id", body.ThreadId, "reply_id", body.ReplyId)
	metrics.RecordOperation("report_reply", metrics.OutcomeOK)
	writeJSON(w, http.StatusOK, respReported)
}

func (h *Handler) DeleteReply(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody[api.DeleteReplyRequest](w, r)
	if err != nil {
		fail(w, "delete_reply", err)
		return
	}

	deleted, err := h.thread.DeleteReply(r.Context(), body.ThreadId, body.ReplyId, strings.TrimSpace(body.DeletePassword))
	if err != nil {
		fail(w, "delete_reply", err)
		return
	}
	if !deleted {
		metrics.RecordOperation("delete_reply", metrics.OutcomeDenied)
		writeJSON(w, http.StatusOK, respIncorrectPassword)
		return
	}
	metrics.RecordOperation("delete_reply", metrics.OutcomeOK)
	writeJSON(w, http.StatusOK, respSuccess)
}
