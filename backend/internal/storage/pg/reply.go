package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/itchan-dev/anonboard/shared/domain"
	sharedpg "github.com/itchan-dev/anonboard/shared/storage/pg"
)

func scanReply(row interface{ Scan(...any) error }, threadId *domain.ThreadId) (domain.Reply, error) {
	var r domain.Reply
	err := row.Scan(threadId, &r.Id, &r.Text, &r.DeletePasswordHash, &r.CreatedOn, &r.Reported)
	r.CreatedOn = r.CreatedOn.UTC()
	return r, err
}

func insertReply(ctx context.Context, q sharedpg.Querier, threadId domain.ThreadId, r domain.Reply) error {
	_, err := q.ExecContext(ctx, `
        INSERT INTO replies (thread_id, id, text, delete_password_hash, created_on, reported)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, threadId, r.Id, r.Text, r.DeletePasswordHash, r.CreatedOn, r.Reported)
	if err != nil {
		return fmt.Errorf("failed to insert reply: %w", err)
	}
	return nil
}

// AddReply locks the thread row while bumping, so the append and the bump
// commit together. bumped_on never moves backwards.
func (s *Storage) AddReply(ctx context.Context, threadId domain.ThreadId, reply domain.Reply) (*domain.Thread, error) {
	var thread *domain.Thread
	err := sharedpg.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
            UPDATE threads SET bumped_on = GREATEST(bumped_on, $2)
            WHERE id = $1
        `, threadId, reply.CreatedOn)
		if err != nil {
			return fmt.Errorf("failed to bump thread: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil || n == 0 {
			return err
		}
		if err := insertReply(ctx, tx, threadId, reply); err != nil {
			return err
		}
		thread, err = getThread(ctx, tx, threadId)
		return err
	})
	if err != nil {
		return nil, err
	}
	return thread, nil
}

// GetReply returns the thread narrowed to the one matching reply.
func (s *Storage) GetReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) (*domain.Thread, error) {
	return getReply(ctx, s.db, threadId, replyId)
}

func getReply(ctx context.Context, q sharedpg.Querier, threadId domain.ThreadId, replyId domain.ReplyId) (*domain.Thread, error) {
	t, err := scanThread(q.QueryRowContext(ctx, `SELECT `+threadColumns+` FROM threads WHERE id = $1`, threadId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch thread: %w", err)
	}

	var owner domain.ThreadId
	r, err := scanReply(q.QueryRowContext(ctx, `
        SELECT thread_id, id, text, delete_password_hash, created_on, reported
        FROM replies
        WHERE thread_id = $1 AND id = $2
    `, threadId, replyId), &owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch reply: %w", err)
	}
	t.Replies = []domain.Reply{r}
	return &t, nil
}

func (s *Storage) ReportReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) (*domain.Thread, error) {
	var thread *domain.Thread
	err := sharedpg.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE replies SET reported = TRUE WHERE thread_id = $1 AND id = $2`, threadId, replyId)
		if err != nil {
			return fmt.Errorf("failed to report reply: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil || n == 0 {
			return err
		}
		thread, err = getReply(ctx, tx, threadId, replyId)
		return err
	})
	if err != nil {
		return nil, err
	}
	return thread, nil
}

func (s *Storage) DeleteReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, passwordHash string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
        DELETE FROM replies
        WHERE thread_id = $1 AND id = $2 AND delete_password_hash = $3
    `, threadId, replyId, passwordHash)
	if err != nil {
		return false, fmt.Errorf("failed to delete reply: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
