package workflow

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rtao-god/solsignal-reports/pkg/models/store"
	"github.com/rtao-god/solsignal-reports/pkg/store/duckdb"
)

// Store records the outcome of snapshot refreshes per report kind.
type Store interface {
	ListStates(ctx context.Context) ([]*store.RefreshState, error)
	RecordSuccess(ctx context.Context, kind string, at time.Time) error
	RecordFailure(ctx context.Context, kind string, at time.Time, cause error) error
}

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{
		db: db,
	}, nil
}

func (s *defaultStore) ListStates(ctx context.Context) ([]*store.RefreshState, error) {
	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT kind, last_attempt_at, last_success_at, last_error
		FROM refresh_state
		ORDER BY kind`)
	if err != nil {
		return nil, fmt.Errorf("query refresh state: %w", err)
	}
	defer rows.Close()

	states := []*store.RefreshState{}
	for rows.Next() {
		var (
			state       store.RefreshState
			lastSuccess sql.NullTime
			lastError   sql.NullString
		)
		if err := rows.Scan(&state.Kind, &state.LastAttemptAt, &lastSuccess, &lastError); err != nil {
			return nil, fmt.Errorf("scan refresh state: %w", err)
		}
		state.LastAttemptAt = state.LastAttemptAt.UTC()
		if lastSuccess.Valid {
			t := lastSuccess.Time.UTC()
			state.LastSuccessAt = &t
		}
		if lastError.Valid {
			state.LastError = &lastError.String
		}
		states = append(states, &state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refresh state: %w", err)
	}
	return states, nil
}

func (s *defaultStore) RecordSuccess(ctx context.Context, kind string, at time.Time) error {
	_, err := duckdb.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO refresh_state (kind, last_attempt_at, last_success_at, last_error)
		VALUES (?, ?, ?, NULL)
		ON CONFLICT (kind) DO UPDATE SET
			last_attempt_at = excluded.last_attempt_at,
			last_success_at = excluded.last_success_at,
			last_error = NULL`,
		kind, at.UTC(), at.UTC())
	if err != nil {
		return fmt.Errorf("record refresh success: %w", err)
	}
	return nil
}

// RecordFailure keeps the previous success time.
func (s *defaultStore) RecordFailure(ctx context.Context, kind string, at time.Time, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}

	_, err := duckdb.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO refresh_state (kind, last_attempt_at, last_success_at, last_error)
		VALUES (?, ?, NULL, ?)
		ON CONFLICT (kind) DO UPDATE SET
			last_attempt_at = excluded.last_attempt_at,
			last_error = excluded.last_error`,
		kind, at.UTC(), msg)
	if err != nil {
		return fmt.Errorf("record refresh failure: %w", err)
	}
	return nil
}
