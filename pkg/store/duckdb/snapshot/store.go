package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rtao-god/solsignal-reports/pkg/models/store"
	"github.com/rtao-god/solsignal-reports/pkg/store/duckdb"
)

var ErrNotFound = errors.New("snapshot not found")

// Store keeps raw report documents as fetched from upstream.
// Derived views are never written here.
type Store interface {
	Save(ctx context.Context, snapshot *store.ReportSnapshot) error
	Latest(ctx context.Context, kind string) (*store.ReportSnapshot, error)
	List(ctx context.Context, kind string, limit int) ([]*store.ReportSnapshot, error)
	Prune(ctx context.Context, kind string, keep int) (int64, error)
}

type snapshotStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &snapshotStore{
		db: db,
	}, nil
}

const selectColumns = `id, report_id, kind, title, generated_at_utc, fetched_at, CAST(payload AS VARCHAR)`

// Save assigns an id when the snapshot has none.
func (s *snapshotStore) Save(ctx context.Context, snapshot *store.ReportSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is nil")
	}
	if snapshot.Kind == "" {
		return fmt.Errorf("snapshot kind is required")
	}
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}

	_, err := duckdb.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO report_snapshots (id, report_id, kind, title, generated_at_utc, fetched_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snapshot.ID,
		snapshot.ReportID,
		snapshot.Kind,
		snapshot.Title,
		snapshot.GeneratedAtUTC,
		snapshot.FetchedAt.UTC(),
		string(snapshot.Payload),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

func (s *snapshotStore) Latest(ctx context.Context, kind string) (*store.ReportSnapshot, error) {
	row := duckdb.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+selectColumns+`
		FROM report_snapshots
		WHERE kind = ?
		ORDER BY fetched_at DESC
		LIMIT 1`, kind)

	snapshot, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("kind %s: %w", kind, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	return snapshot, nil
}

// List returns the newest snapshots of a kind first. A non-positive limit returns all.
func (s *snapshotStore) List(ctx context.Context, kind string, limit int) ([]*store.ReportSnapshot, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM report_snapshots
		WHERE kind = ?
		ORDER BY fetched_at DESC`
	args := []any{kind}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []*store.ReportSnapshot{}
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snapshots, nil
}

// Prune deletes all but the newest keep snapshots of a kind.
func (s *snapshotStore) Prune(ctx context.Context, kind string, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must not be negative, got %d", keep)
	}

	res, err := duckdb.Conn(ctx, s.db).ExecContext(ctx, `
		DELETE FROM report_snapshots
		WHERE kind = ? AND id NOT IN (
			SELECT id FROM report_snapshots
			WHERE kind = ?
			ORDER BY fetched_at DESC
			LIMIT ?
		)`, kind, kind, keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*store.ReportSnapshot, error) {
	var (
		snapshot       store.ReportSnapshot
		title          sql.NullString
		generatedAtUTC sql.NullString
		payload        string
	)
	err := row.Scan(
		&snapshot.ID,
		&snapshot.ReportID,
		&snapshot.Kind,
		&title,
		&generatedAtUTC,
		&snapshot.FetchedAt,
		&payload,
	)
	if err != nil {
		return nil, err
	}

	snapshot.Title = title.String
	snapshot.GeneratedAtUTC = generatedAtUTC.String
	snapshot.FetchedAt = snapshot.FetchedAt.UTC()
	snapshot.Payload = []byte(payload)
	return &snapshot, nil
}
