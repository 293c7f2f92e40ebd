package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/erpacad/erpacad/internal/domain"
	"gopkg.in/yaml.v3"
)

// BandPolicy holds the pacing numbers for one band.
type BandPolicy struct {
	BaseUnits int `yaml:"base_units" validate:"gte=0"`
	MinUnits  int `yaml:"min_units" validate:"gte=1"`
	SoftCap   int `yaml:"soft_cap" validate:"gte=1"`
}

// GradeBands maps class numbers onto bands. Grades up to PrimaryMaxGrade
// (pre-primary included) are primary, up to MiddleMaxGrade middle, the
// rest secondary.
type GradeBands struct {
	PrimaryMaxGrade domain.Grade `yaml:"primary_max_grade" validate:"gte=1"`
	MiddleMaxGrade  domain.Grade `yaml:"middle_max_grade" validate:"gtfield=PrimaryMaxGrade"`
}

// Anchor names a region of a chapter where an integration unit is placed.
type Anchor string

const (
	AnchorFirstThird  Anchor = "first_third"
	AnchorMiddleThird Anchor = "middle_third"
	AnchorFinal       Anchor = "final"
)

// Placement puts one integration tag at an anchor for chapters with at
// least MinUnits units. Earlier entries win when two land on the same unit.
type Placement struct {
	Tag      domain.IntegrationTag `yaml:"tag" validate:"required"`
	Anchor   Anchor                `yaml:"anchor" validate:"oneof=first_third middle_third final"`
	MinUnits int                   `yaml:"min_units" validate:"gte=1"`
}

// Phase is one step of a lesson template.
type Phase struct {
	Name    string `yaml:"name" validate:"required"`
	Minutes int    `yaml:"minutes" validate:"gte=1"`
	Purpose string `yaml:"purpose"`
}

// Blocks splits the total calendar into shares.
type Blocks struct {
	Teaching   float64 `yaml:"teaching" validate:"gt=0,lte=1"`
	Revision   float64 `yaml:"revision" validate:"gte=0,lte=1"`
	Assessment float64 `yaml:"assessment" validate:"gte=0,lte=1"`
	Exams      float64 `yaml:"exams" validate:"gte=0,lte=1"`
	Buffer     float64 `yaml:"buffer" validate:"gte=0,lte=1"`
}

// Sum adds every share.
func (b Blocks) Sum() float64 {
	return b.Teaching + b.Revision + b.Assessment + b.Exams + b.Buffer
}

// Calendar turns working days into unit budgets.
type Calendar struct {
	PeriodsPerDay  int            `yaml:"periods_per_day" validate:"gte=1"`
	DaysPerWeek    int            `yaml:"days_per_week" validate:"gte=1,lte=7"`
	Blocks         Blocks         `yaml:"blocks"`
	WeeklyPeriods  map[string]int `yaml:"weekly_periods" validate:"required,dive,gte=1"`
	DefaultSubject string         `yaml:"default_subject" validate:"required"`
}

// Policy is the typed planning configuration. It is built once at startup
// and treated as immutable for the lifetime of a planning run.
type Policy struct {
	Bands              map[domain.Band]BandPolicy `yaml:"bands" validate:"required,dive"`
	GradeBands         GradeBands                 `yaml:"grade_bands"`
	IntegrationUnits   int                        `yaml:"integration_units" validate:"gte=0"`
	Placement          []Placement                `yaml:"placement" validate:"dive"`
	PhaseTemplates     map[string][]Phase         `yaml:"phase_templates" validate:"required,dive,min=1,dive"`
	BandTemplates      map[domain.Band]string     `yaml:"band_templates" validate:"required"`
	PrePrimaryTemplate string                     `yaml:"pre_primary_template" validate:"required"`
	Calendar           Calendar                   `yaml:"calendar"`
}

// DefaultPolicy returns the CBSE-aligned period policy.
func DefaultPolicy() *Policy {
	return &Policy{
		Bands: map[domain.Band]BandPolicy{
			domain.BandPrimary:   {BaseUnits: 6, MinUnits: 6, SoftCap: 5},
			domain.BandMiddle:    {BaseUnits: 10, MinUnits: 10, SoftCap: 5},
			domain.BandSecondary: {BaseUnits: 14, MinUnits: 14, SoftCap: 5},
		},
		GradeBands:       GradeBands{PrimaryMaxGrade: 5, MiddleMaxGrade: 8},
		IntegrationUnits: 3,
		Placement: []Placement{
			{Tag: domain.IntegrationPlay, Anchor: AnchorFinal, MinUnits: 1},
			{Tag: domain.IntegrationArt, Anchor: AnchorFirstThird, MinUnits: 2},
			{Tag: domain.IntegrationSubject, Anchor: AnchorMiddleThird, MinUnits: 3},
		},
		PhaseTemplates: map[string][]Phase{
			"connect-consolidate": {
				{Name: "CONNECT", Minutes: 5, Purpose: "Activate prior knowledge and engage with the topic"},
				{Name: "UNPACK", Minutes: 10, Purpose: "Build clear conceptual and language understanding"},
				{Name: "ILLUSTRATE", Minutes: 10, Purpose: "Understand the concept through a story or concrete example"},
				{Name: "PRACTISE", Minutes: 10, Purpose: "Reinforce learning through guided practice"},
				{Name: "INTEGRATE", Minutes: 10, Purpose: "Deepen understanding through creative, experiential activity"},
				{Name: "CHECKPOINT", Minutes: 5, Purpose: "Assess learning progress informally"},
				{Name: "CONSOLIDATE", Minutes: 5, Purpose: "Ensure retention and closure"},
			},
			"depth-plus": {
				{Name: "ATTUNE", Minutes: 5, Purpose: "Emotional and cognitive readiness"},
				{Name: "ANCHOR", Minutes: 6, Purpose: "Activate prior knowledge"},
				{Name: "UNPACK", Minutes: 10, Purpose: "Concept construction"},
				{Name: "CONFRONT", Minutes: 6, Purpose: "Misconception correction"},
				{Name: "STRUCTURE", Minutes: 6, Purpose: "Mental organization of knowledge"},
				{Name: "TRANSFER", Minutes: 4, Purpose: "Application beyond textbook"},
				{Name: "EVIDENCE", Minutes: 3, Purpose: "Verify learning"},
			},
			"readiness": {
				{Name: "READINESS", Minutes: 30, Purpose: "One continuous experience that ends when readiness is observed"},
			},
		},
		BandTemplates: map[domain.Band]string{
			domain.BandPrimary:   "connect-consolidate",
			domain.BandMiddle:    "depth-plus",
			domain.BandSecondary: "depth-plus",
		},
		PrePrimaryTemplate: "readiness",
		Calendar: Calendar{
			PeriodsPerDay: 8,
			DaysPerWeek:   6,
			Blocks: Blocks{
				Teaching:   0.65,
				Revision:   0.10,
				Assessment: 0.10,
				Exams:      0.10,
				Buffer:     0.05,
			},
			WeeklyPeriods: map[string]int{
				"Science":        5,
				"Mathematics":    5,
				"English":        5,
				"Social Science": 4,
				"Hindi":          4,
				"Language":       4,
				"Computer":       2,
				"GK":             2,
				"EVS":            5,
			},
			DefaultSubject: "Language",
		},
	}
}

// LoadPolicy decodes a YAML policy file on top of DefaultPolicy. An empty
// path returns the defaults. Unknown keys are rejected.
func LoadPolicy(path string) (*Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, p.Validate()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening policy file: %w", err)
	}
	defer f.Close()
	return decodePolicy(f, p)
}

// ParsePolicy decodes YAML policy text on top of DefaultPolicy.
func ParsePolicy(r io.Reader) (*Policy, error) {
	return decodePolicy(r, DefaultPolicy())
}

func decodePolicy(r io.Reader, p *Policy) (*Policy, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func (p *Policy) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	for band := range domain.ValidBands {
		if _, ok := p.Bands[band]; !ok {
			return fmt.Errorf("invalid policy: band %q missing", band)
		}
		name, ok := p.BandTemplates[band]
		if !ok {
			return fmt.Errorf("invalid policy: no phase template for band %q", band)
		}
		if _, ok := p.PhaseTemplates[name]; !ok {
			return fmt.Errorf("invalid policy: band %q uses unknown phase template %q", band, name)
		}
	}
	for band := range p.Bands {
		if !domain.ValidBands[band] {
			return fmt.Errorf("invalid policy: unknown band %q", band)
		}
	}
	if _, ok := p.PhaseTemplates[p.PrePrimaryTemplate]; !ok {
		return fmt.Errorf("invalid policy: unknown pre-primary template %q", p.PrePrimaryTemplate)
	}
	for i, pl := range p.Placement {
		if !domain.ValidIntegrationTags[pl.Tag] {
			return fmt.Errorf("invalid policy: placement[%d] unknown tag %q", i, pl.Tag)
		}
	}
	if sum := p.Calendar.Blocks.Sum(); math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("invalid policy: calendar blocks sum to %.2f, want 1.00", sum)
	}
	if _, ok := p.Calendar.WeeklyPeriods[p.Calendar.DefaultSubject]; !ok {
		return fmt.Errorf("invalid policy: default subject %q has no weekly periods", p.Calendar.DefaultSubject)
	}
	return nil
}

// BandFor maps a grade onto its band.
func (p *Policy) BandFor(g domain.Grade) domain.Band {
	switch {
	case g <= p.GradeBands.PrimaryMaxGrade:
		return domain.BandPrimary
	case g <= p.GradeBands.MiddleMaxGrade:
		return domain.BandMiddle
	}
	return domain.BandSecondary
}

// BandPolicyFor returns the band and its pacing numbers for a grade.
func (p *Policy) BandPolicyFor(g domain.Grade) (domain.Band, BandPolicy) {
	band := p.BandFor(g)
	return band, p.Bands[band]
}

// TemplateFor returns the phase template name and phases used for a grade.
func (p *Policy) TemplateFor(g domain.Grade) (string, []Phase) {
	name := p.BandTemplates[p.BandFor(g)]
	if g.IsPrePrimary() {
		name = p.PrePrimaryTemplate
	}
	return name, p.PhaseTemplates[name]
}

// WeeklyPeriodsFor matches subject against the weekly table by
// case-insensitive substring, falling back to the default subject.
func (p *Policy) WeeklyPeriodsFor(subject string) (string, int) {
	lower := strings.ToLower(subject)
	best := ""
	for key := range p.Calendar.WeeklyPeriods {
		// Prefer the longest match so "Social Science" beats "Science".
		if strings.Contains(lower, strings.ToLower(key)) && len(key) > len(best) {
			best = key
		}
	}
	if best == "" {
		best = p.Calendar.DefaultSubject
	}
	return best, p.Calendar.WeeklyPeriods[best]
}
