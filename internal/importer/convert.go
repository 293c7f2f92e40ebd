package importer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/erpacad/erpacad/internal/domain"
)

// Convert turns a validated legacy record into an ApprovalRecord, keeping
// its id, status, remark and timestamps. The plans block becomes the
// payload verbatim. Call ValidateLegacy first.
func Convert(rec *LegacyApproval) (*domain.ApprovalRecord, error) {
	grade, err := domain.ParseGrade(string(rec.Meta.Grade))
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", rec.ID, err)
	}
	submittedAt, err := parseLegacyTime(rec.SubmittedAt)
	if err != nil {
		return nil, fmt.Errorf("record %s: submitted_at: %w", rec.ID, err)
	}

	payload := bytes.TrimSpace(rec.Plans)
	if len(payload) == 0 {
		payload = []byte("null")
	}

	out := &domain.ApprovalRecord{
		ID: rec.ID,
		Key: domain.ApprovalKey{
			Board:   strings.TrimSpace(rec.Meta.Board),
			Grade:   grade,
			Subject: strings.TrimSpace(rec.Meta.Subject),
			Chapter: strings.TrimSpace(rec.Meta.Chapter),
		},
		Status:      domain.ApprovalPending,
		Payload:     append([]byte(nil), payload...),
		Remark:      rec.Remark,
		SubmittedAt: submittedAt,
	}

	if rec.Status == string(domain.ApprovalApproved) {
		if rec.ApprovedAt == nil {
			return nil, fmt.Errorf("record %s: approved without approved_at", rec.ID)
		}
		at, err := parseLegacyTime(*rec.ApprovedAt)
		if err != nil {
			return nil, fmt.Errorf("record %s: approved_at: %w", rec.ID, err)
		}
		out.Approve(rec.Remark, at)
	}
	return out, nil
}

// ConvertAll validates and converts a loaded directory. Nothing is returned
// unless every file is valid.
func ConvertAll(files []LegacyFile) ([]*domain.ApprovalRecord, []error) {
	if errs := ValidateLegacyFiles(files); len(errs) > 0 {
		return nil, errs
	}
	out := make([]*domain.ApprovalRecord, 0, len(files))
	for i := range files {
		rec, err := Convert(&files[i].Record)
		if err != nil {
			return nil, []error{err}
		}
		out = append(out, rec)
	}
	return out, nil
}
