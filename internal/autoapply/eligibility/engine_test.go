package eligibility

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// 2026-08-17 is a Monday; 2026-08-22 a Saturday.
var (
	monday   = time.Date(2026, 8, 17, 9, 0, 0, 0, time.UTC)
	thursday = time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	saturday = time.Date(2026, 8, 22, 9, 0, 0, 0, time.UTC)
)

func intPtr(v int) *int { return &v }

func validInput() Input {
	return Input{
		Rule:    RuleConfig{},
		Persona: &Persona{ResumeID: "resume-1"},
		Job: Job{
			ExternalURL: "https://jobs.example.com/apply/123",
			Company:     "Acme",
			Title:       "Senior Backend Engineer",
			Description: "Build Go services with Postgres and Redis.",
		},
		Match: Match{MatchScore: 85},
		Now:   monday,
	}
}

func reasonsContain(reasons []string, fragment string) bool {
	for _, r := range reasons {
		if strings.Contains(r, fragment) {
			return true
		}
	}
	return false
}

func TestEvaluateUnconstrainedRuleIsEligible(t *testing.T) {
	// Scenario C: all nullable fields unset.
	res := Evaluate(validInput())
	if !res.Eligible {
		t.Fatalf("expected eligible, reasons: %v", res.Reasons)
	}
	if res.Severity != SeverityInfo {
		t.Fatalf("expected severity info, got %s", res.Severity)
	}
	if len(res.Reasons) != 0 {
		t.Fatalf("expected no reasons, got %v", res.Reasons)
	}
	if !res.Computed.SafetyChecksPassed {
		t.Fatalf("expected safety_checks_passed=true")
	}
	if res.Computed.MatchScore != 85 {
		t.Fatalf("expected computed match_score=85, got %d", res.Computed.MatchScore)
	}
}

func TestEvaluateSafetyGates(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Input)
		reason string
	}{
		{
			name:   "nil_persona",
			mutate: func(in *Input) { in.Persona = nil },
			reason: "No persona specified",
		},
		{
			name:   "missing_resume",
			mutate: func(in *Input) { in.Persona = &Persona{} },
			reason: "does not have a resume attached",
		},
		{
			name:   "missing_external_url",
			mutate: func(in *Input) { in.Job.ExternalURL = "" },
			reason: "external_url is missing",
		},
		{
			name:   "whitespace_external_url",
			mutate: func(in *Input) { in.Job.ExternalURL = "   " },
			reason: "external_url is missing",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			res := Evaluate(in)
			if res.Eligible {
				t.Fatalf("expected ineligible")
			}
			if res.Severity != SeverityBlock {
				t.Fatalf("expected severity block, got %s", res.Severity)
			}
			if !reasonsContain(res.Reasons, tc.reason) {
				t.Fatalf("expected reason containing %q, got %v", tc.reason, res.Reasons)
			}
			if res.Computed.SafetyChecksPassed {
				t.Fatalf("expected safety_checks_passed=false")
			}
		})
	}
}

func TestEvaluateSafetyGatesOverridePerfectMatch(t *testing.T) {
	// Scenario A: gate fires even though the score check would pass.
	in := validInput()
	in.Persona = &Persona{ResumeID: ""}
	in.Rule.MatchScoreThreshold = intPtr(70)
	in.Match.MatchScore = 85

	res := Evaluate(in)
	if res.Eligible {
		t.Fatalf("expected ineligible despite passing score")
	}
	if res.Severity != SeverityBlock {
		t.Fatalf("expected severity block, got %s", res.Severity)
	}
	if !reasonsContain(res.Reasons, "does not have a resume attached") {
		t.Fatalf("expected resume gate reason, got %v", res.Reasons)
	}
	if reasonsContain(res.Reasons, "below threshold") {
		t.Fatalf("score check should not have fired, got %v", res.Reasons)
	}
}

func TestEvaluateMatchScoreThreshold(t *testing.T) {
	cases := []struct {
		name     string
		score    int
		eligible bool
	}{
		{"below", 69, false},
		{"at_threshold", 70, true},
		{"above", 71, true},
		{"zero", 0, false},
		{"perfect", 100, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			in.Rule.MatchScoreThreshold = intPtr(70)
			in.Match.MatchScore = tc.score

			res := Evaluate(in)
			if res.Eligible != tc.eligible {
				t.Fatalf("score %d: expected eligible=%v, reasons %v", tc.score, tc.eligible, res.Reasons)
			}
			if !tc.eligible {
				if res.Severity != SeverityBlock {
					t.Fatalf("expected severity block, got %s", res.Severity)
				}
				if !reasonsContain(res.Reasons, "below threshold") {
					t.Fatalf("expected below-threshold reason, got %v", res.Reasons)
				}
			}
			if res.Computed.MatchScore != tc.score {
				t.Fatalf("expected computed match_score=%d, got %d", tc.score, res.Computed.MatchScore)
			}
		})
	}
}

func TestEvaluateThresholdMonotonicity(t *testing.T) {
	in := validInput()
	in.Rule.MatchScoreThreshold = intPtr(60)

	wasEligible := false
	for score := 0; score <= 100; score++ {
		in.Match.MatchScore = score
		res := Evaluate(in)
		if wasEligible && !res.Eligible {
			t.Fatalf("eligibility regressed at score %d", score)
		}
		wasEligible = res.Eligible
	}
	if !wasEligible {
		t.Fatalf("expected eligibility at score 100")
	}
}

func TestEvaluateWeeklyCapBoundary(t *testing.T) {
	cases := []struct {
		name    string
		count   int
		blocked bool
	}{
		{"under_cap", 9, false},
		{"at_cap", 10, true},
		{"over_cap", 11, true},
		{"zero_cap_blocks_immediately", 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			if tc.name == "zero_cap_blocks_immediately" {
				in.Rule.MaxApplicationsPerWeek = intPtr(0)
				in.Context.CurrentWeekApplicationCount = 0
			} else {
				in.Rule.MaxApplicationsPerWeek = intPtr(10)
				in.Context.CurrentWeekApplicationCount = tc.count
			}

			res := Evaluate(in)
			if res.Eligible == tc.blocked {
				t.Fatalf("count %d: expected blocked=%v, reasons %v", tc.count, tc.blocked, res.Reasons)
			}
			if tc.blocked && !reasonsContain(res.Reasons, "Weekly cap reached") {
				t.Fatalf("expected weekly-cap reason, got %v", res.Reasons)
			}
			if res.Computed.CurrentWeekCount != in.Context.CurrentWeekApplicationCount {
				t.Fatalf("expected computed current_week_count=%d, got %d", in.Context.CurrentWeekApplicationCount, res.Computed.CurrentWeekCount)
			}
		})
	}
}

func TestEvaluateActiveDays(t *testing.T) {
	weekdays := Filter{Values: []string{"mon", "tue", "wed", "thu", "fri"}}

	t.Run("saturday_warns_but_stays_eligible", func(t *testing.T) {
		// Scenario B.
		in := validInput()
		in.Rule.ActiveDays = weekdays
		in.Now = saturday

		res := Evaluate(in)
		if !res.Eligible {
			t.Fatalf("active-day mismatch must not block, reasons %v", res.Reasons)
		}
		if res.Severity != SeverityWarn {
			t.Fatalf("expected severity warn, got %s", res.Severity)
		}
		if !reasonsContain(res.Reasons, "not in active days") {
			t.Fatalf("expected active-days reason, got %v", res.Reasons)
		}
		if res.Computed.ActiveDayMatched == nil || *res.Computed.ActiveDayMatched {
			t.Fatalf("expected active_day_matched=false")
		}
	})

	t.Run("thursday_matches", func(t *testing.T) {
		in := validInput()
		in.Rule.ActiveDays = weekdays
		in.Now = thursday

		res := Evaluate(in)
		if !res.Eligible || res.Severity != SeverityInfo {
			t.Fatalf("expected info eligible, got %s %v", res.Severity, res.Reasons)
		}
		if res.Computed.ActiveDayMatched == nil || !*res.Computed.ActiveDayMatched {
			t.Fatalf("expected active_day_matched=true")
		}
	})

	t.Run("unset_skips_check", func(t *testing.T) {
		in := validInput()
		in.Now = saturday

		res := Evaluate(in)
		if !res.Eligible || res.Severity != SeverityInfo {
			t.Fatalf("expected info eligible, got %s %v", res.Severity, res.Reasons)
		}
		if res.Computed.ActiveDayMatched != nil {
			t.Fatalf("expected active_day_matched unset when no active days configured")
		}
	})
}

func TestWeekdayCode(t *testing.T) {
	cases := []struct {
		ts   time.Time
		code string
	}{
		{time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC), "sun"},
		{monday, "mon"},
		{time.Date(2026, 8, 18, 12, 0, 0, 0, time.UTC), "tue"},
		{time.Date(2026, 8, 19, 12, 0, 0, 0, time.UTC), "wed"},
		{thursday, "thu"},
		{time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC), "fri"},
		{saturday, "sat"},
	}
	for _, tc := range cases {
		if got := WeekdayCode(tc.ts); got != tc.code {
			t.Fatalf("%s: expected %q, got %q", tc.ts, tc.code, got)
		}
	}
}

func TestWeekdayCodeUsesUTC(t *testing.T) {
	// Friday 23:00 in UTC-5 is Saturday 04:00 UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	ts := time.Date(2026, 8, 21, 23, 0, 0, 0, loc)
	if got := WeekdayCode(ts); got != "sat" {
		t.Fatalf("expected sat from UTC conversion, got %q", got)
	}
}

func TestEvaluateCompanyFilters(t *testing.T) {
	t.Run("exclude_match_warns", func(t *testing.T) {
		in := validInput()
		in.Rule.ExcludeCompanies = Filter{Values: []string{"Acme", "Initech"}}

		res := Evaluate(in)
		if !res.Eligible {
			t.Fatalf("company filters must not block, reasons %v", res.Reasons)
		}
		if res.Severity != SeverityWarn {
			t.Fatalf("expected severity warn, got %s", res.Severity)
		}
		if !reasonsContain(res.Reasons, "in exclude list") {
			t.Fatalf("expected exclude reason, got %v", res.Reasons)
		}
	})

	t.Run("exclude_is_case_sensitive", func(t *testing.T) {
		in := validInput()
		in.Rule.ExcludeCompanies = Filter{Values: []string{"acme"}}

		res := Evaluate(in)
		if res.Severity != SeverityInfo {
			t.Fatalf("expected no warning for case mismatch, got %v", res.Reasons)
		}
	})

	t.Run("include_only_miss_warns", func(t *testing.T) {
		in := validInput()
		in.Rule.IncludeOnlyCompanies = Filter{Values: []string{"Globex"}}

		res := Evaluate(in)
		if !res.Eligible || res.Severity != SeverityWarn {
			t.Fatalf("expected warn eligible, got %s %v", res.Severity, res.Reasons)
		}
		if !reasonsContain(res.Reasons, "not in include_only list") {
			t.Fatalf("expected include_only reason, got %v", res.Reasons)
		}
		if res.Computed.CompanyFilterMatched {
			t.Fatalf("expected company_filter_matched=false")
		}
	})

	t.Run("include_only_hit_sets_computed", func(t *testing.T) {
		in := validInput()
		in.Rule.IncludeOnlyCompanies = Filter{Values: []string{"Acme", "Globex"}}

		res := Evaluate(in)
		if !res.Eligible || res.Severity != SeverityInfo {
			t.Fatalf("expected info eligible, got %s %v", res.Severity, res.Reasons)
		}
		if !res.Computed.CompanyFilterMatched {
			t.Fatalf("expected company_filter_matched=true")
		}
	})

	t.Run("contradictory_lists_warn_twice", func(t *testing.T) {
		in := validInput()
		in.Rule.ExcludeCompanies = Filter{Values: []string{"Acme"}}
		in.Rule.IncludeOnlyCompanies = Filter{Values: []string{"Globex"}}

		res := Evaluate(in)
		if !res.Eligible {
			t.Fatalf("expected eligible, reasons %v", res.Reasons)
		}
		if !reasonsContain(res.Reasons, "in exclude list") || !reasonsContain(res.Reasons, "not in include_only list") {
			t.Fatalf("expected both company warnings, got %v", res.Reasons)
		}
	})
}

func TestEvaluateKeywords(t *testing.T) {
	t.Run("case_insensitive_match", func(t *testing.T) {
		// P6: REACT matches "react" in the description.
		in := validInput()
		in.Job.Description = "We use react and typescript daily."
		in.Rule.RequireAllKeywords = Filter{Values: []string{"REACT"}}

		res := Evaluate(in)
		if res.Severity != SeverityInfo {
			t.Fatalf("expected no warning, got %v", res.Reasons)
		}
		if !res.Computed.KeywordsMatched {
			t.Fatalf("expected keywords_matched=true")
		}
	})

	t.Run("match_in_title_only", func(t *testing.T) {
		in := validInput()
		in.Job.Title = "Staff Kubernetes Engineer"
		in.Job.Description = "Platform work."
		in.Rule.RequireAllKeywords = Filter{Values: []string{"kubernetes"}}

		res := Evaluate(in)
		if !res.Computed.KeywordsMatched {
			t.Fatalf("expected title to satisfy keyword, reasons %v", res.Reasons)
		}
	})

	t.Run("missing_keywords_listed_in_rule_order", func(t *testing.T) {
		in := validInput()
		in.Rule.RequireAllKeywords = Filter{Values: []string{"Go", "Kafka", "Terraform"}}

		res := Evaluate(in)
		if !res.Eligible || res.Severity != SeverityWarn {
			t.Fatalf("expected warn eligible, got %s %v", res.Severity, res.Reasons)
		}
		if !reasonsContain(res.Reasons, "Missing required keywords: Kafka, Terraform") {
			t.Fatalf("expected ordered missing list, got %v", res.Reasons)
		}
		if res.Computed.KeywordsMatched {
			t.Fatalf("expected keywords_matched=false")
		}
	})
}

func TestEvaluateWarnsNeverBlock(t *testing.T) {
	// P4: every warn-level mismatch at once still leaves the candidate eligible.
	in := validInput()
	in.Now = saturday
	in.Rule.ActiveDays = Filter{Values: []string{"mon"}}
	in.Rule.ExcludeCompanies = Filter{Values: []string{"Acme"}}
	in.Rule.IncludeOnlyCompanies = Filter{Values: []string{"Globex"}}
	in.Rule.RequireAllKeywords = Filter{Values: []string{"COBOL"}}

	res := Evaluate(in)
	if !res.Eligible {
		t.Fatalf("warn-level checks must never block, reasons %v", res.Reasons)
	}
	if res.Severity != SeverityWarn {
		t.Fatalf("expected severity warn, got %s", res.Severity)
	}
	if len(res.Reasons) != 4 {
		t.Fatalf("expected 4 warnings, got %v", res.Reasons)
	}
}

func TestEvaluateReasonsAccumulateAcrossChecks(t *testing.T) {
	// P7: independent failures all appear, in check order.
	in := validInput()
	in.Rule.MatchScoreThreshold = intPtr(90)
	in.Rule.MaxApplicationsPerWeek = intPtr(5)
	in.Context.CurrentWeekApplicationCount = 5
	in.Match.MatchScore = 40

	res := Evaluate(in)
	if res.Eligible {
		t.Fatalf("expected ineligible")
	}
	if len(res.Reasons) != 2 {
		t.Fatalf("expected 2 reasons, got %v", res.Reasons)
	}
	if !strings.Contains(res.Reasons[0], "below threshold") {
		t.Fatalf("expected threshold reason first, got %v", res.Reasons)
	}
	if !strings.Contains(res.Reasons[1], "Weekly cap reached") {
		t.Fatalf("expected cap reason second, got %v", res.Reasons)
	}
}

func TestEvaluateGateReasonsPrecedeRuleReasons(t *testing.T) {
	in := validInput()
	in.Job.ExternalURL = ""
	in.Rule.MatchScoreThreshold = intPtr(90)
	in.Match.MatchScore = 10

	res := Evaluate(in)
	if len(res.Reasons) != 2 {
		t.Fatalf("expected 2 reasons, got %v", res.Reasons)
	}
	if !strings.Contains(res.Reasons[0], "external_url is missing") {
		t.Fatalf("expected gate reason first, got %v", res.Reasons)
	}
}

func TestEvaluateNullFiltersArePermissive(t *testing.T) {
	// P5: unsetting any filter never flips an eligible candidate.
	base := validInput()
	baseRes := Evaluate(base)
	if !baseRes.Eligible {
		t.Fatalf("base input must be eligible")
	}

	variants := map[string]func(*Input){
		"nil_threshold":    func(in *Input) { in.Rule.MatchScoreThreshold = nil },
		"nil_cap":          func(in *Input) { in.Rule.MaxApplicationsPerWeek = nil },
		"empty_active":     func(in *Input) { in.Rule.ActiveDays = Filter{} },
		"empty_exclude":    func(in *Input) { in.Rule.ExcludeCompanies = Filter{} },
		"empty_include":    func(in *Input) { in.Rule.IncludeOnlyCompanies = Filter{} },
		"empty_keywords":   func(in *Input) { in.Rule.RequireAllKeywords = Filter{} },
		"empty_value_list": func(in *Input) { in.Rule.ExcludeCompanies = Filter{Values: []string{}} },
	}
	for name, mutate := range variants {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			res := Evaluate(in)
			if !res.Eligible || res.Severity != SeverityInfo {
				t.Fatalf("expected info eligible, got %s %v", res.Severity, res.Reasons)
			}
		})
	}
}

func TestEvaluateScenarioD(t *testing.T) {
	in := validInput()
	in.Rule.MaxApplicationsPerWeek = intPtr(10)
	in.Context.CurrentWeekApplicationCount = 10

	res := Evaluate(in)
	if res.Eligible {
		t.Fatalf("expected ineligible at cap")
	}
	if res.Severity != SeverityBlock {
		t.Fatalf("expected severity block, got %s", res.Severity)
	}
}

func TestEvaluateDeterminism(t *testing.T) {
	in := validInput()
	in.Rule.MatchScoreThreshold = intPtr(90)
	in.Rule.ActiveDays = Filter{Values: []string{"tue"}}
	in.Rule.ExcludeCompanies = Filter{Values: []string{"Acme"}}
	in.Rule.RequireAllKeywords = Filter{Values: []string{"Rust", "Zig"}}
	in.Match.MatchScore = 50

	first := Evaluate(in)
	second := Evaluate(in)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results for identical inputs")
	}
}
