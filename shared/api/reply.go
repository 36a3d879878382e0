package api

import "github.com/itchan-dev/anonboard/shared/domain"

// Request DTOs

type CreateReplyRequest struct {
	ThreadId       string `json:"thread_id" validate:"required,uuid"`
	Text           string `json:"text"`
	DeletePassword string `json:"delete_password"`
}

type ReportReplyRequest struct {
	ThreadId string `json:"thread_id" validate:"required,uuid"`
	ReplyId  string `json:"reply_id" validate:"required,uuid"`
}

type DeleteReplyRequest struct {
	ThreadId       string `json:"thread_id" validate:"required,uuid"`
	ReplyId        string `json:"reply_id" validate:"required,uuid"`
	DeletePassword string `json:"delete_password" validate:"required"`
}

// Response DTOs

type ReplyView struct {
	Id        string `json:"_id"`
	Text      string `json:"text"`
	CreatedOn string `json:"created_on"`
	Reported  bool   `json:"reported"`
}

func NewReplyViews(replies []domain.Reply) []ReplyView {
	views := make([]ReplyView, 0, len(replies))
	for _, r := range replies {
		views = append(views, ReplyView{
			Id:        r.Id,
			Text:      r.Text,
			CreatedOn: FormatDate(r.CreatedOn),
			Reported:  r.Reported,
		})
	}
	return views
}
