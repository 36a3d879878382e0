package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/itchan-dev/anonboard/shared/domain"
	sharedpg "github.com/itchan-dev/anonboard/shared/storage/pg"
	"github.com/lib/pq"
)

const threadColumns = `id, board, text, delete_password_hash, created_on, bumped_on, reported`

func scanThread(row interface{ Scan(...any) error }) (domain.Thread, error) {
	var t domain.Thread
	err := row.Scan(&t.Id, &t.Board, &t.Text, &t.DeletePasswordHash, &t.CreatedOn, &t.BumpedOn, &t.Reported)
	t.CreatedOn = t.CreatedOn.UTC()
	t.BumpedOn = t.BumpedOn.UTC()
	return t, err
}

// ListThreads returns the most recently bumped threads of a board, each with
// at most replyLimit of its latest replies.
func (s *Storage) ListThreads(ctx context.Context, board domain.BoardName, threadLimit, replyLimit int) ([]domain.Thread, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+threadColumns+`
        FROM threads
        WHERE board = $1
        ORDER BY bumped_on DESC, created_on DESC, seq DESC
        LIMIT $2
    `, board, threadLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query threads: %w", err)
	}
	defer rows.Close()

	threads := []domain.Thread{}
	index := make(map[domain.ThreadId]int)
	ids := []string{}
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		t.Replies = []domain.Reply{}
		index[t.Id] = len(threads)
		ids = append(ids, t.Id)
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	if len(threads) == 0 || replyLimit <= 0 {
		return threads, nil
	}

	replyRows, err := s.db.QueryContext(ctx, `
        SELECT thread_id, id, text, delete_password_hash, created_on, reported
        FROM (
            SELECT r.*, ROW_NUMBER() OVER (PARTITION BY thread_id ORDER BY seq DESC) AS rn
            FROM replies r
            WHERE thread_id = ANY($1::uuid[])
        ) latest
        WHERE rn <= $2
        ORDER BY thread_id, seq
    `, pq.Array(ids), replyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query replies: %w", err)
	}
	defer replyRows.Close()

	for replyRows.Next() {
		var threadId domain.ThreadId
		r, err := scanReply(replyRows, &threadId)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reply: %w", err)
		}
		if i, ok := index[threadId]; ok {
			threads[i].Replies = append(threads[i].Replies, r)
		}
	}
	if err := replyRows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return threads, nil
}

func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	return getThread(ctx, s.db, id)
}

func getThread(ctx context.Context, q sharedpg.Querier, id domain.ThreadId) (*domain.Thread, error) {
	t, err := scanThread(q.QueryRowContext(ctx, `SELECT `+threadColumns+` FROM threads WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch thread: %w", err)
	}

	rows, err := q.QueryContext(ctx, `
        SELECT thread_id, id, text, delete_password_hash, created_on, reported
        FROM replies
        WHERE thread_id = $1
        ORDER BY seq
    `, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch replies: %w", err)
	}
	defer rows.Close()

	t.Replies = []domain.Reply{}
	for rows.Next() {
		var threadId domain.ThreadId
		r, err := scanReply(rows, &threadId)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reply: %w", err)
		}
		t.Replies = append(t.Replies, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return &t, nil
}

func (s *Storage) CreateThread(ctx context.Context, thread domain.Thread) error {
	return sharedpg.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO threads (id, board, text, delete_password_hash, created_on, bumped_on, reported)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
        `, thread.Id, thread.Board, thread.Text, thread.DeletePasswordHash, thread.CreatedOn, thread.BumpedOn, thread.Reported)
		if err != nil {
			return fmt.Errorf("failed to insert thread: %w", err)
		}
		for _, r := range thread.Replies {
			if err := insertReply(ctx, tx, thread.Id, r); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) ReportThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	var thread *domain.Thread
	err := sharedpg.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE threads SET reported = TRUE WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to report thread: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil || n == 0 {
			return err
		}
		thread, err = getThread(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return thread, nil
}

// DeleteThread relies on the replies foreign key cascade.
func (s *Storage) DeleteThread(ctx context.Context, id domain.ThreadId, passwordHash string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM threads WHERE id = $1 AND delete_password_hash = $2`, id, passwordHash)
	if err != nil {
		return false, fmt.Errorf("failed to delete thread: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Storage) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM threads`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete threads: %w", err)
	}
	return res.RowsAffected()
}
