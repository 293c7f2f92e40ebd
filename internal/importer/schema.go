package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LegacyApproval is one file of the file-per-record approvals directory.
type LegacyApproval struct {
	ID          string          `json:"id"`
	SubmittedAt string          `json:"submitted_at"`
	Status      string          `json:"status"`
	Meta        LegacyMeta      `json:"meta"`
	Plans       json.RawMessage `json:"plans,omitempty"`
	Remark      string          `json:"principal_remark"`
	ApprovedAt  *string         `json:"approved_at,omitempty"`
}

// LegacyMeta is the identity block of a legacy record.
type LegacyMeta struct {
	Board   string     `json:"board"`
	Grade   LooseValue `json:"grade"`
	Subject string     `json:"subject"`
	Chapter string     `json:"chapter"`
}

// LooseValue accepts a JSON string or number. Legacy files wrote grades both
// ways ("8", 8, "LKG").
type LooseValue string

func (v *LooseValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = LooseValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*v = LooseValue(n.String())
	return nil
}

// LegacyFile pairs a parsed record with the file it came from.
type LegacyFile struct {
	Path   string
	Record LegacyApproval
}

// LoadLegacyFile reads and parses one legacy approval file.
func LoadLegacyFile(path string) (*LegacyApproval, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec LegacyApproval
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return &rec, nil
}

// LoadLegacyDir reads every *.json file in dir, sorted by file name.
// Other files and subdirectories are ignored.
func LoadLegacyDir(dir string) ([]LegacyFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading approvals dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	files := make([]LegacyFile, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		rec, err := LoadLegacyFile(path)
		if err != nil {
			return nil, err
		}
		files = append(files, LegacyFile{Path: path, Record: *rec})
	}
	return files, nil
}
