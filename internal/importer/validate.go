package importer

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/erpacad/erpacad/internal/domain"
)

var validStatuses = map[string]bool{"PENDING": true, "APPROVED": true}

// legacyTimeLayouts covers what the legacy writer produced: naive ISO
// timestamps with or without fractional seconds, and RFC3339.
var legacyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
}

// ValidateLegacy checks one record and returns every problem found.
func ValidateLegacy(rec *LegacyApproval) []error {
	var errs []error

	if strings.TrimSpace(rec.ID) == "" {
		errs = append(errs, fmt.Errorf("id is required"))
	}

	if rec.Status == "" {
		errs = append(errs, fmt.Errorf("status is required"))
	} else if !validStatuses[rec.Status] {
		errs = append(errs, fmt.Errorf("status: invalid value %q", rec.Status))
	}

	if rec.SubmittedAt == "" {
		errs = append(errs, fmt.Errorf("submitted_at is required"))
	} else if _, err := parseLegacyTime(rec.SubmittedAt); err != nil {
		errs = append(errs, fmt.Errorf("submitted_at: %w", err))
	}

	if rec.ApprovedAt != nil {
		if _, err := parseLegacyTime(*rec.ApprovedAt); err != nil {
			errs = append(errs, fmt.Errorf("approved_at: %w", err))
		}
	} else if rec.Status == "APPROVED" {
		errs = append(errs, fmt.Errorf("approved_at is required for APPROVED records"))
	}

	errs = append(errs, validateMeta(&rec.Meta)...)
	return errs
}

func validateMeta(m *LegacyMeta) []error {
	var errs []error
	if m.Grade == "" {
		errs = append(errs, fmt.Errorf("meta.grade is required"))
	} else if _, err := domain.ParseGrade(string(m.Grade)); err != nil {
		errs = append(errs, fmt.Errorf("meta.grade: %w", err))
	}
	if strings.TrimSpace(m.Subject) == "" {
		errs = append(errs, fmt.Errorf("meta.subject is required"))
	}
	if strings.TrimSpace(m.Chapter) == "" {
		errs = append(errs, fmt.Errorf("meta.chapter is required"))
	}
	return errs
}

// ValidateLegacyFiles validates every file and checks ids are unique across
// the set. Errors are prefixed with the file name.
func ValidateLegacyFiles(files []LegacyFile) []error {
	var errs []error
	seen := make(map[string]string)
	for i := range files {
		f := &files[i]
		name := filepath.Base(f.Path)
		for _, err := range ValidateLegacy(&f.Record) {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		if f.Record.ID == "" {
			continue
		}
		if prev, ok := seen[f.Record.ID]; ok {
			errs = append(errs, fmt.Errorf("%s: duplicate id %q (also in %s)", name, f.Record.ID, prev))
			continue
		}
		seen[f.Record.ID] = name
	}
	return errs
}

func parseLegacyTime(s string) (time.Time, error) {
	for _, layout := range legacyTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
