package domain

import (
	"time"
)

type Reply struct {
	Id                 ReplyId
	Text               Text
	DeletePasswordHash string
	CreatedOn          time.Time
	Reported           bool
}

type Thread struct {
	Id                 ThreadId
	Board              BoardName
	Text               Text
	DeletePasswordHash string
	CreatedOn          time.Time
	BumpedOn           time.Time
	Reported           bool
	Replies            []Reply // chronological, oldest first
}

// PasswordMatch is the outcome of a delete-password check.
// Thread is set only when IsMatch is true.
type PasswordMatch struct {
	IsMatch bool
	Thread  *Thread
}

// Clone returns a deep copy so callers can't mutate storage-owned reply slices.
func (t *Thread) Clone() *Thread {
	if t == nil {
		return nil
	}
	c := *t
	if t.Replies != nil {
		c.Replies = make([]Reply, len(t.Replies))
		copy(c.Replies, t.Replies)
	}
	return &c
}

// LastReplies returns at most n of the most recent replies, oldest first.
func (t *Thread) LastReplies(n int) []Reply {
	if n <= 0 {
		return []Reply{}
	}
	if len(t.Replies) <= n {
		return t.Replies
	}
	return t.Replies[len(t.Replies)-n:]
}

// FindReply returns the index of the reply with the given id or -1.
func (t *Thread) FindReply(id ReplyId) int {
	for i := range t.Replies {
		if t.Replies[i].Id == id {
			return i
		}
	}
	return -1
}
