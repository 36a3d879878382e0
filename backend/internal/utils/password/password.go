// Package password hashes and verifies delete-passwords with bcrypt.
package password

import (
	"context"
	"errors"
	"runtime"

	internal_errors "github.com/itchan-dev/anonboard/shared/errors"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// DefaultCost is the work factor used for every delete-password.
const DefaultCost = 8

type Hasher struct {
	cost int
	sem  *semaphore.Weighted
}

// New creates a hasher. maxConcurrent bounds how many bcrypt computations run at
// once; values <= 0 default to the number of CPUs.
func New(cost int, maxConcurrent int64) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	if maxConcurrent <= 0 {
		maxConcurrent = int64(runtime.NumCPU())
	}
	return &Hasher{cost: cost, sem: semaphore.NewWeighted(maxConcurrent)}
}

func (h *Hasher) Cost() int {
	return h.cost
}

func (h *Hasher) Hash(ctx context.Context, secret string) (string, error) {
	if secret == "" {
		return "", &internal_errors.HashingError{Op: "hash", Err: errors.New("empty secret")}
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", &internal_errors.HashingError{Op: "hash", Err: err}
	}
	defer h.sem.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", &internal_errors.HashingError{Op: "hash", Err: err}
	}
	return string(hash), nil
}

// Verify reports whether candidate matches hash. A mismatch is (false, nil);
// only a malformed hash or a cancelled context produce an error.
func (h *Hasher) Verify(ctx context.Context, candidate, hash string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, &internal_errors.HashingError{Op: "verify", Err: err}
	}
	defer h.sem.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, &internal_errors.HashingError{Op: "verify", Err: err}
	}
}
