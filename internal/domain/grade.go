package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Grade is a class level. Pre-primary classes are numbered below 1 so that
// ordering comparisons keep working.
type Grade int

const (
	GradeNursery Grade = -2
	GradeLKG     Grade = -1
	GradeUKG     Grade = 0
)

// MaxGrade is the highest class accepted by ParseGrade.
const MaxGrade Grade = 12

var prePrimaryNames = map[string]Grade{
	"NURSERY": GradeNursery,
	"LKG":     GradeLKG,
	"UKG":     GradeUKG,
}

// ParseGrade accepts "NURSERY", "LKG", "UKG" (any case) or a class number 1..12.
func ParseGrade(s string) (Grade, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "CLASS ")
	if g, ok := prePrimaryNames[v]; ok {
		return g, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || Grade(n) > MaxGrade {
		return 0, fmt.Errorf("%w: %q", ErrUnknownGrade, s)
	}
	return Grade(n), nil
}

// IsPrePrimary reports whether g is NURSERY, LKG or UKG.
func (g Grade) IsPrePrimary() bool {
	return g <= GradeUKG
}

func (g Grade) String() string {
	switch g {
	case GradeNursery:
		return "NURSERY"
	case GradeLKG:
		return "LKG"
	case GradeUKG:
		return "UKG"
	}
	return strconv.Itoa(int(g))
}

// Band is a grade-range classification driving minimum pacing policy.
type Band string

const (
	BandPrimary   Band = "primary"
	BandMiddle    Band = "middle"
	BandSecondary Band = "secondary"
)

// ValidBands is the canonical set of band names accepted in policy files.
var ValidBands = map[Band]bool{
	BandPrimary: true, BandMiddle: true, BandSecondary: true,
}

// UnitKind is the granularity of an instructional unit.
type UnitKind string

const (
	UnitPeriod UnitKind = "period"
	UnitDay    UnitKind = "day"
)

// ParseUnitKind accepts "period(s)" or "day(s)".
func ParseUnitKind(s string) (UnitKind, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case "period", "":
		return UnitPeriod, nil
	case "day":
		return UnitDay, nil
	}
	return "", fmt.Errorf("unknown unit kind %q (expected period or day)", s)
}
