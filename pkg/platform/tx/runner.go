package tx

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// Runner executes a function within one transaction boundary. Stores called
// with the context the function receives share that transaction.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SQLRunner runs functions inside a database/sql transaction carried via
// context. An error from fn rolls the whole transaction back.
type SQLRunner struct {
	db *sql.DB
}

// NewSQLRunner constructs a Runner over a database handle.
func NewSQLRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{db: db}
}

func (r *SQLRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(WithTx(ctx, t)); err != nil {
		if rbErr := t.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// SerialRunner serializes transactions under a single mutex. It gives the
// in-memory stores the same check-then-write atomicity the SQL runner gets
// from row locks. It cannot roll back: callers order their reads and
// validations before any write so failures abort with nothing persisted.
type SerialRunner struct {
	mu sync.Mutex
}

// NewSerialRunner constructs a Runner for in-memory store setups.
func NewSerialRunner() *SerialRunner {
	return &SerialRunner{}
}

func (r *SerialRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}
