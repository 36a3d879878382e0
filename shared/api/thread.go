package api

import (
	"time"

	"github.com/itchan-dev/anonboard/shared/domain"
)

// DateFormat is the canonical textual timestamp: ISO-8601, UTC, milliseconds.
const DateFormat = "2006-01-02T15:04:05.000Z"

// Request DTOs

// CreateThreadRequest fields are checked by the thread service so that a
// missing field and an empty one get the same answer.
type CreateThreadRequest struct {
	Text           string `json:"text"`
	DeletePassword string `json:"delete_password"`
}

// ReportThreadRequest accepts report_id, falling back to thread_id.
type ReportThreadRequest struct {
	ReportId string `json:"report_id" validate:"required_without=ThreadId,omitempty,uuid"`
	ThreadId string `json:"thread_id" validate:"required_without=ReportId,omitempty,uuid"`
}

func (r ReportThreadRequest) Id() string {
	if r.ReportId != "" {
		return r.ReportId
	}
	return r.ThreadId
}

type DeleteThreadRequest struct {
	ThreadId       string `json:"thread_id" validate:"required,uuid"`
	DeletePassword string `json:"delete_password" validate:"required"`
}

// Response DTOs

// ThreadView is the externally visible projection of a thread.
type ThreadView struct {
	Id        string      `json:"_id"`
	Text      string      `json:"text"`
	CreatedOn string      `json:"created_on"`
	BumpedOn  string      `json:"bumped_on"`
	Replies   []ReplyView `json:"replies"`
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(DateFormat)
}

// NewThreadView projects a thread with all of its replies.
func NewThreadView(t *domain.Thread) *ThreadView {
	if t == nil {
		return nil
	}
	return &ThreadView{
		Id:        t.Id,
		Text:      t.Text,
		CreatedOn: FormatDate(t.CreatedOn),
		BumpedOn:  FormatDate(t.BumpedOn),
		Replies:   NewReplyViews(t.Replies),
	}
}

// NewThreadViews projects a listing. The result is never nil.
func NewThreadViews(threads []domain.Thread) []ThreadView {
	views := make([]ThreadView, 0, len(threads))
	for i := range threads {
		views = append(views, *NewThreadView(&threads[i]))
	}
	return views
}
