package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const ReportSnapshotsSchema = `
	CREATE TABLE IF NOT EXISTS report_snapshots (
		id VARCHAR NOT NULL PRIMARY KEY,
		report_id VARCHAR NOT NULL,
		kind VARCHAR NOT NULL,
		title VARCHAR,
		generated_at_utc VARCHAR,
		fetched_at TIMESTAMP NOT NULL,
		payload JSON NOT NULL
	);
`

const RefreshStateSchema = `
	CREATE TABLE IF NOT EXISTS refresh_state (
		kind VARCHAR NOT NULL PRIMARY KEY,
		last_attempt_at TIMESTAMP NOT NULL,
		last_success_at TIMESTAMP NULL,
		last_error VARCHAR NULL
	);
`

var bootQueries = []string{
	ReportSnapshotsSchema,
	RefreshStateSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
