package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/anonboard/shared/api"
	"github.com/itchan-dev/anonboard/shared/logger"
	"github.com/itchan-dev/anonboard/shared/middleware/metrics"
	"github.com/itchan-dev/anonboard/shared/utils"
)

const (
	respReported          = "reported"
	respSuccess           = "success"
	respIncorrectPassword = "incorrect password"
)

func (h *Handler) ListThreads(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")
	threadLimit, err := parseLimit(r, "limit", h.cfg.Public.ThreadsPerPage, h.cfg.Public.MaxListLimit)
	if err != nil {
		fail(w, "list_threads", err)
		return
	}
	replyLimit, err := parseLimit(r, "replies", h.cfg.Public.RepliesPreview, h.cfg.Public.MaxListLimit)
	if err != nil {
		fail(w, "list_threads", err)
		return
	}

	threads, err := h.thread.List(r.Context(), board, threadLimit, replyLimit)
	if err != nil {
		fail(w, "list_threads", err)
		return
	}
	metrics.RecordOperation("list_threads", metrics.OutcomeOK)
	writeJSON(w, http.StatusOK, threads)
}

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")
	body, err := decodeBody[api.CreateThreadRequest](w, r)
	if err != nil {
		fail(w, "create_thread", err)
		return
	}

	text, err := utils.SanitizeRequiredText(body.Text)
	if err != nil {
		fail(w, "create_thread", err)
		return
	}

	thread, err := h.thread.Create(r.Context(), board, text, strings.TrimSpace(body.DeletePassword))
	if err != nil {
		fail(w, "create_thread", err)
		return
	}
	logger.Log.Debug("thread created", "board", board, "thread_id", thread.Id)
	metrics.RecordOperation("create_thread", metrics.OutcomeOK)
	writeJSON(w, http.StatusCreated, api.NewThreadView(thread))
}

func (h *Handler) ReportThread(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody[api.ReportThreadRequest](w, r)
	if err != nil {
		fail(w, "report_thread", err)
		return
	}

	thread, err := h.thread.Report(r.Context(), body.Id())
	if err != nil {
		fail(w, "report_thread", err)
		return
	}
	if thread == nil {
		notFound(w, "report_thread", "Thread not found")
		return
	}
	logger.Log.Info("thread reported", "board", thread.Board, "thread_id", thread.Id)
	metrics.RecordOperation("report_thread", metrics.OutcomeOK)
	writeJSON(w, http.StatusOK, respReported)
}

func (h *Handler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody[api.DeleteThreadRequest](w, r)
	if err != nil {
		fail(w, "delete_thread", err)
		return
	}

	deleted, err := h.thread.Delete(r.Context(), body.ThreadId, strings.TrimSpace(body.DeletePassword))
	if err != nil {
		fail(w, "delete_thread", err)
		return
	}
	if !deleted {
		metrics.RecordOperation("delete_thread", metrics.OutcomeDenied)
		writeJSON(w, http.StatusOK, respIncorrectPassword)
		return
	}
	metrics.RecordOperation("delete_thread", metrics.OutcomeOK)
	writeJSON(w, http.StatusOK, respSuccess)
}
