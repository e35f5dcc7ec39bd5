package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jacobarthurs/a11yscan/internal/analyzer"
)

const createTable = `CREATE TABLE IF NOT EXISTS a11y_reports (
	id               bigserial PRIMARY KEY,
	source           text        NOT NULL,
	digest           text        NOT NULL,
	compliance_score integer     NOT NULL,
	issue_count      integer     NOT NULL,
	report           jsonb       NOT NULL,
	created_at       timestamptz NOT NULL DEFAULT now()
)`

const insertReport = `INSERT INTO a11y_reports (source, digest, compliance_score, issue_count, report)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

const selectRecent = `SELECT id, source, digest, compliance_score, issue_count, report, created_at
FROM a11y_reports
ORDER BY created_at DESC, id DESC
LIMIT $1`

// Record is one saved analysis.
type Record struct {
	ID              int64           `json:"id"`
	Source          string          `json:"source"`
	Digest          string          `json:"digest"`
	ComplianceScore int             `json:"compliance_score"`
	IssueCount      int             `json:"issue_count"`
	Report          analyzer.Report `json:"report"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Digest returns the hex SHA-256 of the analyzed markup.
func Digest(markup []byte) string {
	sum := sha256.Sum256(markup)
	return hex.EncodeToString(sum[:])
}

// Save stores report, creating the table on first use, and returns the new
// row ID.
func Save(ctx context.Context, connStr, source, digest string, report analyzer.Report) (int64, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("encoding report: %w", err)
	}

	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return 0, fmt.Errorf("connecting to database: %w", err)
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, createTable); err != nil {
		return 0, fmt.Errorf("creating report table: %w", err)
	}

	var id int64
	err = tx.QueryRow(ctx, insertReport, source, digest, report.ComplianceScore, len(report.Issues), data).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting report: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing report: %w", err)
	}
	return id, nil
}

// Recent returns up to limit records, newest first. A database without the
// report table has no history.
func Recent(ctx context.Context, connStr string, limit int) ([]Record, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	defer conn.Close(ctx)

	var exists bool
	if err := conn.QueryRow(ctx, "SELECT to_regclass('a11y_reports') IS NOT NULL").Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking report table: %w", err)
	}
	if !exists {
		return []Record{}, nil
	}

	rows, err := conn.Query(ctx, selectRecent, limit)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}

	records, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("reading reports: %w", err)
	}
	return records, nil
}

func scanRecord(row pgx.CollectableRow) (Record, error) {
	var r Record
	var data []byte
	if err := row.Scan(&r.ID, &r.Source, &r.Digest, &r.ComplianceScore, &r.IssueCount, &data, &r.CreatedAt); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal(data, &r.Report); err != nil {
		return Record{}, fmt.Errorf("decoding report %d: %w", r.ID, err)
	}
	return r, nil
}
