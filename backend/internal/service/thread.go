package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/itchan-dev/anonboard/backend/internal/utils"
	"github.com/itchan-dev/anonboard/shared/api"
	"github.com/itchan-dev/anonboard/shared/domain"
	"github.com/itchan-dev/anonboard/shared/errors"
)

const (
	DefaultThreadLimit = 10
	DefaultReplyLimit  = 3

	invalidPropertiesMsg = "only strings are accepted for properties (board, text and password)"
)

type ThreadService interface {
	List(ctx context.Context, board domain.BoardName, threadLimit, replyLimit int) ([]api.ThreadView, error)
	Get(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	Create(ctx context.Context, board domain.BoardName, text domain.Text, password domain.Password) (*domain.Thread, error)
	Report(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	IsThreadPassword(ctx context.Context, id domain.ThreadId, candidate domain.Password) (domain.PasswordMatch, error)
	Delete(ctx context.Context, id domain.ThreadId, password domain.Password) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)

	GetReplies(ctx context.Context, id domain.ThreadId) (*api.ThreadView, error)
	GetReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) (*domain.Thread, error)
	AddReply(ctx context.Context, threadId domain.ThreadId, text domain.Text, password domain.Password) (*domain.Thread, error)
	ReportReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) (*domain.Thread, error)
	IsReplyPassword(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, candidate domain.Password) (domain.PasswordMatch, error)
	DeleteReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, password domain.Password) (bool, error)
}

// ThreadStorage persists threads with their embedded replies.
// Absence is reported as a nil thread (or false), never as an error.
// Methods returning a thread with one reply narrow Replies to that reply.
type ThreadStorage interface {
	ListThreads(ctx context.Context, board domain.BoardName, threadLimit, replyLimit int) ([]domain.Thread, error)
	GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	CreateThread(ctx context.Context, thread domain.Thread) error
	ReportThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	// DeleteThread removes the thread only if its stored hash still equals passwordHash.
	DeleteThread(ctx context.Context, id domain.ThreadId, passwordHash string) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)

	// AddReply appends the reply and moves bumped_on forward to reply.CreatedOn in one atomic step.
	AddReply(ctx context.Context, threadId domain.ThreadId, reply domain.Reply) (*domain.Thread, error)
	GetReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) (*domain.Thread, error)
	ReportReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) (*domain.Thread, error)
	// DeleteReply removes the reply only if its stored hash still equals passwordHash.
	DeleteReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, passwordHash string) (bool, error)
}

type Hasher interface {
	Hash(ctx context.Context, secret string) (string, error)
	Verify(ctx context.Context, candidate, hash string) (bool, error)
}

type ThreadValidator interface {
	Board(board string) error
	Text(text string) error
	Password(password string) error
	Limit(name string, n int) error
}

// Thread is the thread/reply store. It holds no state of its own besides its collaborators.
type Thread struct {
	storage   ThreadStorage
	hasher    Hasher
	validator ThreadValidator
	now       func() time.Time
	newId     func() string
}

func NewThread(storage ThreadStorage, hasher Hasher, validator ThreadValidator) *Thread {
	return &Thread{
		storage:   storage,
		hasher:    hasher,
		validator: validator,
		now:       time.Now,
		newId:     uuid.NewString,
	}
}

// timestamp is millisecond precision, matching the external date format.
func (t *Thread) timestamp() time.Time {
	return t.now().UTC().Truncate(time.Millisecond)
}

func storageErr(op, target string, err error) error {
	return &errors.StorageError{Op: op, Target: target, Err: err}
}

func (t *Thread) List(ctx context.Context, board domain.BoardName, threadLimit, replyLimit int) ([]api.ThreadView, error) {
	if err := t.validator.Board(board); err != nil {
		return nil, err
	}
	if err := t.validator.Limit("thread", threadLimit); err != nil {
		return nil, err
	}
	if err := t.validator.Limit("replies", replyLimit); err != nil {
		return nil, err
	}

	threads, err := t.storage.ListThreads(ctx, board, threadLimit, replyLimit)
	if err != nil {
		return nil, storageErr("listThreads", board, err)
	}
	for i := range threads {
		// storage should already have trimmed, keep the contract regardless
		threads[i].Replies = threads[i].LastReplies(replyLimit)
	}
	return api.NewThreadViews(threads), nil
}

func (t *Thread) Get(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	if !utils.IsValidIdentifier(id) {
		return nil, nil
	}
	thread, err := t.storage.GetThread(ctx, id)
	if err != nil {
		return nil, storageErr("getThread", id, err)
	}
	return thread, nil
}

func (t *Thread) Create(ctx context.Context, board domain.BoardName, text domain.Text, password domain.Password) (*domain.Thread, error) {
	if board == "" || strings.TrimSpace(text) == "" || password == "" {
		return nil, &errors.ValidationError{Message: "Unable to add thread to board, " + invalidPropertiesMsg}
	}
	if err := t.validator.Board(board); err != nil {
		return nil, err
	}
	if err := t.validator.Text(text); err != nil {
		return nil, err
	}
	if err := t.validator.Password(password); err != nil {
		return nil, err
	}

	hash, err := t.hasher.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	now := t.timestamp()
	thread := domain.Thread{
		Id:                 t.newId(),
		Board:              board,
		Text:               strings.TrimSpace(text),
		DeletePasswordHash: hash,
		CreatedOn:          now,
		BumpedOn:           now,
		Reported:           false,
		Replies:            []domain.Reply{},
	}
	if err := t.storage.CreateThread(ctx, thread); err != nil {
		return nil, storageErr("createThread", thread.Id, err)
	}
	return &thread, nil
}

func (t *Thread) Report(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	if !utils.IsValidIdentifier(id) {
		return nil, nil
	}
	thread, err := t.storage.ReportThread(ctx, id)
	if err != nil {
		return nil, storageErr("reportThread", id, err)
	}
	return thread, nil
}

// IsThreadPassword answers {false, nil} both when the thread is missing and when
// the candidate is wrong.
func (t *Thread) IsThreadPassword(ctx context.Context, id domain.ThreadId, candidate domain.Password) (domain.PasswordMatch, error) {
	thread, err := t.Get(ctx, id)
	if err != nil {
		return domain.PasswordMatch{}, err
	}
	if thread == nil {
		return domain.PasswordMatch{}, nil
	}
	return t.match(ctx, candidate, thread.DeletePasswordHash, thread)
}

func (t *Thread) match(ctx context.Context, candidate, hash string, thread *domain.Thread) (domain.PasswordMatch, error) {
	ok, err := t.hasher.Verify(ctx, candidate, hash)
	if err != nil {
		return domain.PasswordMatch{}, err
	}
	if !ok {
		return domain.PasswordMatch{}, nil
	}
	return domain.PasswordMatch{IsMatch: true, Thread: thread}, nil
}

// Delete removes the thread and its replies. A thread removed concurrently
// between the password check and the delete yields false.
func (t *Thread) Delete(ctx context.Context, id domain.ThreadId, password domain.Password) (bool, error) {
	match, err := t.IsThreadPassword(ctx, id, password)
	if err != nil || !match.IsMatch {
		return false, err
	}
	deleted, err := t.storage.DeleteThread(ctx, id, match.Thread.DeletePasswordHash)
	if err != nil {
		return false, storageErr("deleteThread", id, err)
	}
	return deleted, nil
}

// DeleteAll wipes every board. Callers must gate it behind operator access.
func (t *Thread) DeleteAll(ctx context.Context) (int64, error) {
	n, err := t.storage.DeleteAll(ctx)
	if err != nil {
		return 0, storageErr("deleteAll", "", err)
	}
	return n, nil
}

func (t *Thread) GetReplies(ctx context.Context, id domain.ThreadId) (*api.ThreadView, error) {
	thread, err := t.Get(ctx, id)
	if err != nil || thread == nil {
		return nil, err
	}
	return api.NewThreadView(thread), nil
}

func (t *Thread) GetReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) (*domain.Thread, error) {
	if !utils.IsValidIdentifier(threadId) || !utils.IsValidIdentifier(replyId) {
		return nil, nil
	}
	thread, err := t.storage.GetReply(ctx, threadId, replyId)
	if err != nil {
		return nil, storageErr("getReply", threadId+"/"+replyId, err)
	}
	if thread == nil || len(thread.Replies) != 1 {
		return nil, nil
	}
	return thread, nil
}

func (t *Thread) AddReply(ctx context.Context, threadId domain.ThreadId, text domain.Text, password domain.Password) (*domain.Thread, error) {
	if err := t.validator.Text(text); err != nil {
		return nil, err
	}
	if err := t.validator.Password(password); err != nil {
		return nil, err
	}
	if !utils.IsValidIdentifier(threadId) {
		return nil, nil
	}

	hash, err := t.hasher.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	reply := domain.Reply{
		Id:                 t.newId(),
		Text:               strings.TrimSpace(text),
		DeletePasswordHash: hash,
		CreatedOn:          t.timestamp(),
		Reported:           false,
	}
	thread, err := t.storage.AddReply(ctx, threadId, reply)
	if err != nil {
		return nil, storageErr("addReply", threadId, err)
	}
	return thread, nil
}

func (t *Thread) ReportReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) (*domain.Thread, error) {
	if !utils.IsValidIdentifier(threadId) || !utils.IsValidIdentifier(replyId) {
		return nil, nil
	}
	thread, err := t.storage.ReportReply(ctx, threadId, replyId)
	if err != nil {
		return nil, storageErr("reportReply", threadId+"/"+replyId, err)
	}
	if thread == nil || len(thread.Replies) != 1 {
		return nil, nil
	}
	return thread, nil
}

func (t *Thread) IsReplyPassword(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, candidate domain.Password) (domain.PasswordMatch, error) {
	thread, err := t.GetReply(ctx, threadId, replyId)
	if err != nil {
		return domain.PasswordMatch{}, err
	}
	if thread == nil {
		return domain.PasswordMatch{}, nil
	}
	return t.match(ctx, candidate, thread.Replies[0].DeletePasswordHash, thread)
}

// DeleteReply pulls the reply, then re-reads to confirm it is really gone.
func (t *Thread) DeleteReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, password domain.Password) (bool, error) {
	match, err := t.IsReplyPassword(ctx, threadId, replyId, password)
	if err != nil || !match.IsMatch {
		return false, err
	}
	hash := match.Thread.Replies[0].DeletePasswordHash
	removed, err := t.storage.DeleteReply(ctx, threadId, replyId, hash)
	if err != nil {
		return false, storageErr("deleteReply", threadId+"/"+replyId, err)
	}
	if !removed {
		return false, nil
	}
	still, err := t.GetReply(ctx, threadId, replyId)
	if err != nil {
		return false, err
	}
	return still == nil, nil
}
