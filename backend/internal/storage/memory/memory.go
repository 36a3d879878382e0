// Package memory is a process-local ThreadStorage. Every value handed out is a
// deep copy, so callers never alias the stored reply slices.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/itchan-dev/anonboard/shared/domain"
)

type entry struct {
	thread domain.Thread
	seq    int64 // insertion order, breaks bump ties
}

type Storage struct {
	mu      sync.RWMutex
	threads map[domain.ThreadId]*entry
	seq     int64
}

func New() *Storage {
	return &Storage{threads: make(map[domain.ThreadId]*entry)}
}

func (s *Storage) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Storage) Cleanup() error {
	return nil
}

func (s *Storage) ListThreads(ctx context.Context, board domain.BoardName, threadLimit, replyLimit int) ([]domain.Thread, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*entry
	for _, e := range s.threads {
		if e.thread.Board == board {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].thread, matched[j].thread
		if !a.BumpedOn.Equal(b.BumpedOn) {
			return a.BumpedOn.After(b.BumpedOn)
		}
		if !a.CreatedOn.Equal(b.CreatedOn) {
			return a.CreatedOn.After(b.CreatedOn)
		}
		return matched[i].seq > matched[j].seq
	})
	if len(matched) > threadLimit {
		matched = matched[:threadLimit]
	}

	threads := make([]domain.Thread, 0, len(matched))
	for _, e := range matched {
		t := e.thread.Clone()
		t.Replies = append([]domain.Reply{}, t.LastReplies(replyLimit)...)
		threads = append(threads, *t)
	}
	return threads, nil
}

func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.threads[id]
	if !ok {
		return nil, nil
	}
	return e.thread.Clone(), nil
}

func (s *Storage) CreateThread(ctx context.Context, thread domain.Thread) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	stored := thread.Clone()
	if stored.Replies == nil {
		stored.Replies = []domain.Reply{}
	}
	s.threads[thread.Id] = &entry{thread: *stored, seq: s.seq}
	return nil
}

func (s *Storage) ReportThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.threads[id]
	if !ok {
		return nil, nil
	}
	e.thread.Reported = true
	return e.thread.Clone(), nil
}

func (s *Storage) DeleteThread(ctx context.Context, id domain.ThreadId, passwordHash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.threads[id]
	if !ok || e.thread.DeletePasswordHash != passwordHash {
		return false, nil
	}
	delete(s.threads, id)
	return true, nil
}

func (s *Storage) DeleteAll(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.threads))
	s.threads = make(map[domain.ThreadId]*entry)
	return n, nil
}

func (s *Storage) AddReply(ctx context.Context, threadId domain.ThreadId, reply domain.Reply) (*domain.Thread, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.threads[threadId]
	if !ok {
		return nil, nil
	}
	e.thread.Replies = append(e.thread.Replies, reply)
	if reply.CreatedOn.After(e.thread.BumpedOn) {
		e.thread.BumpedOn = reply.CreatedOn
	}
	return e.thread.Clone(), nil
}

func (s *Storage) GetReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) (*domain.Thread, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.narrow(threadId, replyId), nil
}

func (s *Storage) ReportReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) (*domain.Thread, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.threads[threadId]
	if !ok {
		return nil, nil
	}
	idx := e.thread.FindReply(replyId)
	if idx < 0 {
		return nil, nil
	}
	e.thread.Replies[idx].Reported = true
	return s.narrow(threadId, replyId), nil
}

func (s *Storage) DeleteReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, passwordHash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.threads[threadId]
	if !ok {
		return false, nil
	}
	idx := e.thread.FindReply(replyId)
	if idx < 0 || e.thread.Replies[idx].DeletePasswordHash != passwordHash {
		return false, nil
	}
	e.thread.Replies = append(e.thread.Replies[:idx], e.thread.Replies[idx+1:]...)
	return true, nil
}

// narrow must be called with the lock held.
func (s *Storage) narrow(threadId domain.ThreadId, replyId domain.ReplyId) *domain.Thread {
	e, ok := s.threads[threadId]
	if !ok {
		return nil
	}
	idx := e.thread.FindReply(replyId)
	if idx < 0 {
		return nil
	}
	t := e.thread.Clone()
	t.Replies = []domain.Reply{t.Replies[idx]}
	return t
}
