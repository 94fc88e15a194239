package eligibility

import (
	"fmt"
	"strings"
	"time"
)

// Evaluate decides whether an automated application may proceed for the given
// rule, persona, job, and match. It is a pure function: deterministic for
// identical inputs, no side effects, and it never fails for well-typed input.
//
// Every check runs and contributes its reasons; nothing short-circuits, so a
// single pass surfaces everything that is wrong with a candidate. Eligible is
// false exactly when at least one check blocked.
func Evaluate(in Input) Result {
	acc := &accumulator{worst: SeverityInfo}

	checkSafetyGates(in, acc)
	checkMatchScore(in, acc)
	checkWeeklyCap(in, acc)
	checkActiveDays(in, acc)
	checkCompanyFilters(in, acc)
	checkKeywords(in, acc)

	return Result{
		Eligible: acc.worst != SeverityBlock,
		Severity: acc.worst,
		Reasons:  acc.reasons,
		Computed: acc.computed,
	}
}

type accumulator struct {
	reasons  []string
	worst    Severity
	computed Computed
}

func (a *accumulator) add(sev Severity, reason string) {
	a.reasons = append(a.reasons, reason)
	if severityRank(sev) > severityRank(a.worst) {
		a.worst = sev
	}
}

func severityRank(value Severity) int {
	switch value {
	case SeverityBlock:
		return 3
	case SeverityWarn:
		return 2
	default:
		return 1
	}
}

// checkSafetyGates blocks applications that could not be submitted or could
// not be attributed to a resume. These gates hold regardless of configuration.
func checkSafetyGates(in Input, acc *accumulator) {
	passed := true
	if in.Persona == nil {
		acc.add(SeverityBlock, "BLOCK: No persona specified for this rule")
		passed = false
	} else if strings.TrimSpace(in.Persona.ResumeID) == "" {
		acc.add(SeverityBlock, "BLOCK: Persona does not have a resume attached (resume_id is null)")
		passed = false
	}
	if strings.TrimSpace(in.Job.ExternalURL) == "" {
		acc.add(SeverityBlock, "BLOCK: Job does not have a valid application URL (external_url is missing)")
		passed = false
	}
	acc.computed.SafetyChecksPassed = passed
}

func checkMatchScore(in Input, acc *accumulator) {
	acc.computed.MatchScore = in.Match.MatchScore
	if in.Rule.MatchScoreThreshold == nil {
		return
	}
	threshold := *in.Rule.MatchScoreThreshold
	if in.Match.MatchScore < threshold {
		acc.add(SeverityBlock, fmt.Sprintf("BLOCK: Match score %d is below threshold %d", in.Match.MatchScore, threshold))
	}
}

func checkWeeklyCap(in Input, acc *accumulator) {
	acc.computed.CurrentWeekCount = in.Context.CurrentWeekApplicationCount
	if in.Rule.MaxApplicationsPerWeek == nil {
		return
	}
	limit := *in.Rule.MaxApplicationsPerWeek
	// Reaching the cap exactly also blocks: the cap is a hard ceiling.
	if in.Context.CurrentWeekApplicationCount >= limit {
		acc.add(SeverityBlock, fmt.Sprintf("BLOCK: Weekly cap reached (%d/%d applications this week)", in.Context.CurrentWeekApplicationCount, limit))
	}
}

func checkActiveDays(in Input, acc *accumulator) {
	if !in.Rule.ActiveDays.Constrained() {
		return
	}
	day := WeekdayCode(in.Now)
	matched := in.Rule.ActiveDays.Contains(day)
	acc.computed.ActiveDayMatched = &matched
	if !matched {
		acc.add(SeverityWarn, fmt.Sprintf("WARN: Current day %s is not in active days [%s]", day, strings.Join(in.Rule.ActiveDays.Values, ", ")))
	}
}

// checkCompanyFilters evaluates the exclude and include-only lists
// independently; a misconfigured rule can trigger both warnings at once.
func checkCompanyFilters(in Input, acc *accumulator) {
	if in.Rule.ExcludeCompanies.Constrained() && in.Rule.ExcludeCompanies.Contains(in.Job.Company) {
		acc.add(SeverityWarn, fmt.Sprintf("WARN: Company %q is in exclude list", in.Job.Company))
	}
	if in.Rule.IncludeOnlyCompanies.Constrained() {
		if in.Rule.IncludeOnlyCompanies.Contains(in.Job.Company) {
			acc.computed.CompanyFilterMatched = true
		} else {
			acc.add(SeverityWarn, fmt.Sprintf("WARN: Company %q is not in include_only list", in.Job.Company))
		}
	}
}

func checkKeywords(in Input, acc *accumulator) {
	if !in.Rule.RequireAllKeywords.Constrained() {
		return
	}
	haystack := strings.ToLower(in.Job.Title + " " + in.Job.Description)
	var missing []string
	for _, keyword := range in.Rule.RequireAllKeywords.Values {
		if !strings.Contains(haystack, strings.ToLower(keyword)) {
			missing = append(missing, keyword)
		}
	}
	if len(missing) > 0 {
		acc.add(SeverityWarn, "WARN: Missing required keywords: "+strings.Join(missing, ", "))
		return
	}
	acc.computed.KeywordsMatched = true
}

// WeekdayCode returns the UTC day of week as a lowercase three-letter code
// (sun, mon, tue, wed, thu, fri, sat).
func WeekdayCode(now time.Time) string {
	return strings.ToLower(now.UTC().Weekday().String()[:3])
}
