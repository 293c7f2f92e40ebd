package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillLocks(db); err != nil {
		return fmt.Errorf("backfilling approval locks: %w", err)
	}
	return nil
}

// migrateBackfillLocks gives every approved key without a lock row the
// lock of its earliest approval. Databases written before approval_locks
// existed only carry the status column.
func migrateBackfillLocks(db *sql.DB) error {
	ctx := context.Background()

	var missing int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM approvals a
		WHERE a.status = 'APPROVED' AND NOT EXISTS (
			SELECT 1 FROM approval_locks l
			WHERE l.board = a.board COLLATE NOCASE AND l.grade = a.grade
			  AND l.subject = a.subject COLLATE NOCASE
			  AND l.chapter = a.chapter COLLATE NOCASE)`).Scan(&missing)
	if err != nil {
		return fmt.Errorf("counting unlocked approvals: %w", err)
	}
	if missing == 0 {
		return nil
	}

	_, err = db.ExecContext(ctx, `INSERT OR IGNORE INTO approval_locks
		(board, grade, subject, chapter, approval_id, locked_at)
		SELECT board, grade, subject, chapter, id, COALESCE(approved_at, submitted_at)
		FROM approvals
		WHERE status = 'APPROVED'
		ORDER BY COALESCE(approved_at, submitted_at), id`)
	if err != nil {
		return fmt.Errorf("inserting lock rows: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS approvals (
		id           TEXT PRIMARY KEY,
		board        TEXT NOT NULL DEFAULT '',
		grade        TEXT NOT NULL,
		subject      TEXT NOT NULL,
		chapter      TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'PENDING'
		             CHECK(status IN ('PENDING','APPROVED')),
		payload      BLOB NOT NULL,
		remark       TEXT NOT NULL DEFAULT '',
		submitted_at TEXT NOT NULL,
		approved_at  TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_approvals_key
		ON approvals(board, grade, subject, chapter, status)`,

	`CREATE INDEX IF NOT EXISTS idx_approvals_submitted ON approvals(submitted_at)`,

	// One row per locked key. Its primary key is the per-key lock token
	// that submit checks and approve claims.
	`CREATE TABLE IF NOT EXISTS approval_locks (
		board       TEXT NOT NULL DEFAULT '',
		grade       TEXT NOT NULL,
		subject     TEXT NOT NULL,
		chapter     TEXT NOT NULL,
		approval_id TEXT NOT NULL REFERENCES approvals(id),
		locked_at   TEXT NOT NULL,
		PRIMARY KEY (board, grade, subject, chapter)
	)`,

	`ALTER TABLE approvals ADD COLUMN source TEXT NOT NULL DEFAULT 'erpacad'`,

	// A key locks once however its subject or chapter is capitalised.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_approval_locks_nocase ON approval_locks(
		board COLLATE NOCASE, grade, subject COLLATE NOCASE, chapter COLLATE NOCASE)`,
}
