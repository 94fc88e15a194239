package eligibility

import "time"

// Severity classifies the outcome of a single check. Ordered from least to
// most severe: info < warn < block.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityBlock Severity = "block"
)

// Filter is an optional constraint over a set of strings. The zero value is
// unconstrained: a Filter with no values never restricts anything.
type Filter struct {
	Values []string
}

// Constrained reports whether the filter imposes any constraint.
func (f Filter) Constrained() bool {
	return len(f.Values) > 0
}

// Contains reports whether v exactly matches one of the filter values.
func (f Filter) Contains(v string) bool {
	for _, value := range f.Values {
		if value == v {
			return true
		}
	}
	return false
}

// RuleConfig is the minimal rule view the engine evaluates. Nil pointers and
// zero-value filters mean "no constraint".
type RuleConfig struct {
	MatchScoreThreshold    *int
	MaxApplicationsPerWeek *int
	ExcludeCompanies       Filter
	IncludeOnlyCompanies   Filter
	RequireAllKeywords     Filter
	ActiveDays             Filter
}

// Persona is the minimal persona view the engine needs.
type Persona struct {
	ResumeID string
}

// Job is the minimal job view the engine needs.
type Job struct {
	ExternalURL string
	Company     string
	Title       string
	Description string
}

// Match carries the precomputed compatibility score, treated as opaque.
type Match struct {
	MatchScore int
}

// UserContext carries caller-computed state the engine cannot query itself.
type UserContext struct {
	CurrentWeekApplicationCount int
}

// Input bundles everything one evaluation needs. The engine reads only these
// values; it never touches a clock, storage, or the network.
type Input struct {
	Rule    RuleConfig
	Persona *Persona
	Job     Job
	Match   Match
	Now     time.Time
	Context UserContext
}

// Computed records intermediate values for observability and test assertions.
// It never influences Eligible or Severity.
type Computed struct {
	MatchScore           int   `json:"match_score"`
	CurrentWeekCount     int   `json:"current_week_count"`
	ActiveDayMatched     *bool `json:"active_day_matched,omitempty"`
	CompanyFilterMatched bool  `json:"company_filter_matched"`
	KeywordsMatched      bool  `json:"keywords_matched"`
	SafetyChecksPassed   bool  `json:"safety_checks_passed"`
}

// Result is the engine's sole output.
type Result struct {
	Eligible bool     `json:"eligible"`
	Severity Severity `json:"severity"`
	Reasons  []string `json:"reasons"`
	Computed Computed `json:"computed"`
}
