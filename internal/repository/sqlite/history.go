package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/tahmid/codefix/internal/model"
	"github.com/tahmid/codefix/internal/repository"
)

// Compile-time check that *DB satisfies the repository interface.
var _ repository.HistoryRepository = (*DB)(nil)

// Create inserts a run record, filling in its ID and timestamp. xid IDs
// sort by creation time, which keeps the listing index cheap.
func (db *DB) Create(ctx context.Context, record *model.RunRecord) error {
	record.ID = xid.New().String()
	record.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO runs (id, language, filename, return_code, executed_command,
		                   stdout_bytes, stderr_bytes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Language,
		record.Filename,
		record.ReturnCode,
		record.ExecutedCommand,
		record.StdoutBytes,
		record.StderrBytes,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting run record: %w", err)
	}
	return nil
}

// List returns run records newest first.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.RunRecord, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, language, filename, return_code, executed_command,
		        stdout_bytes, stderr_bytes, created_at
		 FROM runs
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing run records: %w", err)
	}
	defer rows.Close()

	records := []model.RunRecord{}
	for rows.Next() {
		var r model.RunRecord
		if err := rows.Scan(
			&r.ID,
			&r.Language,
			&r.Filename,
			&r.ReturnCode,
			&r.ExecutedCommand,
			&r.StdoutBytes,
			&r.StderrBytes,
			&r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning run record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating run records: %w", err)
	}

	return records, nil
}
