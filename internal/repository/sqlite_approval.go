package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/erpacad/erpacad/internal/db"
	"github.com/erpacad/erpacad/internal/domain"
)

// SQLiteApprovalRepo implements ApprovalRepo using a SQLite database.
type SQLiteApprovalRepo struct {
	db db.DBTX
}

// NewSQLiteApprovalRepo creates a new SQLiteApprovalRepo.
func NewSQLiteApprovalRepo(conn db.DBTX) *SQLiteApprovalRepo {
	return &SQLiteApprovalRepo{db: conn}
}

const approvalColumns = `id, board, grade, subject, chapter, status, payload, remark, submitted_at, approved_at`

// lockMatch finds a key's lock row. Board, subject and chapter compare
// without regard to case, matching the unique index on approval_locks.
const lockMatch = `board = ? COLLATE NOCASE AND grade = ? AND subject = ? COLLATE NOCASE AND chapter = ? COLLATE NOCASE`

func (r *SQLiteApprovalRepo) Submit(ctx context.Context, rec *domain.ApprovalRecord) error {
	// The lock check and the insert are one statement, so an approval that
	// commits first is always seen.
	query := `INSERT INTO approvals (id, board, grade, subject, chapter, status, payload, remark, submitted_at, source)
		SELECT ?, ?, ?, ?, ?, 'PENDING', ?, ?, ?, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM approval_locks WHERE `+lockMatch+`)`
	k := rec.Key
	res, err := r.db.ExecContext(ctx, query,
		rec.ID, k.Board, k.Grade.String(), k.Subject, k.Chapter,
		rec.Payload, rec.Remark, formatTime(rec.SubmittedAt), SourceLocal,
		k.Board, k.Grade.String(), k.Subject, k.Chapter,
	)
	if err != nil {
		return fmt.Errorf("inserting approval: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking approval insert: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", k, domain.ErrAlreadyApproved)
	}
	rec.Status = domain.ApprovalPending
	return nil
}

func (r *SQLiteApprovalRepo) MarkApproved(ctx context.Context, rec *domain.ApprovalRecord) error {
	if rec.ApprovedAt == nil {
		return fmt.Errorf("approval %s: approved_at not set", rec.ID)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE approvals SET status = 'APPROVED', remark = ?, approved_at = ?
		WHERE id = ? AND status = 'PENDING'`,
		rec.Remark, formatTime(*rec.ApprovedAt), rec.ID,
	)
	if err != nil {
		return fmt.Errorf("updating approval: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking approval update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("pending approval %s: %w", rec.ID, ErrNotFound)
	}
	return r.claimLock(ctx, rec)
}

func (r *SQLiteApprovalRepo) Import(ctx context.Context, rec *domain.ApprovalRecord, source string) error {
	query := `INSERT INTO approvals (` + approvalColumns + `, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	k := rec.Key
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, k.Board, k.Grade.String(), k.Subject, k.Chapter,
		string(rec.Status), rec.Payload, rec.Remark,
		formatTime(rec.SubmittedAt), nullableTimeToString(rec.ApprovedAt), source,
	)
	if err != nil {
		return fmt.Errorf("importing approval %s: %w", rec.ID, err)
	}
	if rec.IsApproved() {
		return r.claimLock(ctx, rec)
	}
	return nil
}

// claimLock records rec as the key's lock holder. An existing lock wins.
func (r *SQLiteApprovalRepo) claimLock(ctx context.Context, rec *domain.ApprovalRecord) error {
	lockedAt := rec.SubmittedAt
	if rec.ApprovedAt != nil {
		lockedAt = *rec.ApprovedAt
	}
	k := rec.Key
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO approval_locks (board, grade, subject, chapter, approval_id, locked_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		k.Board, k.Grade.String(), k.Subject, k.Chapter, rec.ID, formatTime(lockedAt),
	)
	if err != nil {
		return fmt.Errorf("claiming lock for %s: %w", k, err)
	}
	return nil
}

func (r *SQLiteApprovalRepo) GetByID(ctx context.Context, id string) (*domain.ApprovalRecord, error) {
	query := `SELECT ` + approvalColumns + ` FROM approvals WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return r.scanApproval(row)
}

func (r *SQLiteApprovalRepo) List(ctx context.Context, f ApprovalFilter) ([]*domain.ApprovalRecord, error) {
	var where []string
	var args []any
	add := func(cond string, val string) {
		where = append(where, cond)
		args = append(args, val)
	}
	if f.Status != "" {
		add("status = ?", string(f.Status))
	}
	if f.Board != "" {
		add("board = ? COLLATE NOCASE", f.Board)
	}
	if f.Grade != nil {
		add("grade = ?", f.Grade.String())
	}
	if f.Subject != "" {
		add("subject = ? COLLATE NOCASE", f.Subject)
	}
	if f.Chapter != "" {
		add("chapter = ? COLLATE NOCASE", f.Chapter)
	}

	query := `SELECT ` + approvalColumns + ` FROM approvals`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY submitted_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing approvals: %w", err)
	}
	defer rows.Close()
	return r.scanApprovals(rows)
}

func (r *SQLiteApprovalRepo) IsLocked(ctx context.Context, k domain.ApprovalKey) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM approval_locks WHERE `+lockMatch,
		k.Board, k.Grade.String(), k.Subject, k.Chapter,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking lock for %s: %w", k, err)
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanApproval scans a single approval from a *sql.Row.
func (r *SQLiteApprovalRepo) scanApproval(row *sql.Row) (*domain.ApprovalRecord, error) {
	rec, err := r.populateApproval(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("approval: %w", ErrNotFound)
		}
		return nil, err
	}
	return rec, nil
}

// scanApprovals scans multiple approvals from *sql.Rows.
func (r *SQLiteApprovalRepo) scanApprovals(rows *sql.Rows) ([]*domain.ApprovalRecord, error) {
	var recs []*domain.ApprovalRecord
	for rows.Next() {
		rec, err := r.populateApproval(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating approvals: %w", err)
	}
	return recs, nil
}

func (r *SQLiteApprovalRepo) populateApproval(s rowScanner) (*domain.ApprovalRecord, error) {
	var rec domain.ApprovalRecord
	var grade, status, submittedAt string
	var approvedAt sql.NullString

	err := s.Scan(
		&rec.ID, &rec.Key.Board, &grade, &rec.Key.Subject, &rec.Key.Chapter,
		&status, &rec.Payload, &rec.Remark, &submittedAt, &approvedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning approval: %w", err)
	}

	g, err := domain.ParseGrade(grade)
	if err != nil {
		return nil, fmt.Errorf("approval %s: %w", rec.ID, err)
	}
	rec.Key.Grade = g
	rec.Status = domain.ApprovalStatus(status)

	rec.SubmittedAt, err = parseTime(submittedAt)
	if err != nil {
		return nil, fmt.Errorf("approval %s: parsing submitted_at: %w", rec.ID, err)
	}
	rec.ApprovedAt = parseNullableTime(approvedAt)
	return &rec, nil
}
