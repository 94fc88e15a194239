package autoapply

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"autoapply-backend/internal/autoapply/eligibility"
	"autoapply-backend/internal/jobs"
	"autoapply-backend/internal/personas"
	"autoapply-backend/internal/rules"
	"autoapply-backend/internal/shared/metrics"
	"autoapply-backend/internal/shared/telemetry"
)

// candidateLimit bounds how many matches one rule considers per run.
const candidateLimit = 100

// Publisher hands accepted queue entries to the submission pipeline.
type Publisher interface {
	PublishSubmission(ctx context.Context, entry QueueEntry) error
}

// RunStats summarizes one builder run for a user.
type RunStats struct {
	RulesEvaluated int `json:"rulesEvaluated"`
	Queued         int `json:"queued"`
	Skipped        int `json:"skipped"`
	Duplicates     int `json:"duplicates"`
}

// Builder walks a user's enabled rules and fills the auto-apply queue with
// eligible matches. Every decision, queued or skipped, lands in the action
// log so users can see why nothing happened as easily as why something did.
type Builder struct {
	Rules     rules.Repo
	Personas  personas.Repo
	Jobs      jobs.JobRepo
	Matches   jobs.MatchRepo
	Queue     QueueRepo
	Log       LogRepo
	Publisher Publisher
	Logger    *telemetry.Logger

	// Now is replaceable in tests. Defaults to time.Now.
	Now func() time.Time
}

// Run executes one build pass for the user.
func (b *Builder) Run(ctx context.Context, userID string) (RunStats, error) {
	now := time.Now().UTC()
	if b.Now != nil {
		now = b.Now().UTC()
	}

	started := metrics.NowMillis()
	defer func() {
		metrics.ObserveBuildDurationMs(metrics.NowMillis() - started)
	}()

	enabled, err := b.Rules.ListEnabledByUser(ctx, userID)
	if err != nil {
		return RunStats{}, err
	}

	var stats RunStats
	for _, rule := range enabled {
		ruleStats, err := b.runRule(ctx, userID, rule, now)
		if err != nil {
			// One broken rule must not starve the rest.
			b.logError("rule run failed", userID, rule.ID, err)
			continue
		}
		stats.RulesEvaluated++
		stats.Queued += ruleStats.Queued
		stats.Skipped += ruleStats.Skipped
		stats.Duplicates += ruleStats.Duplicates
	}
	return stats, nil
}

func (b *Builder) runRule(ctx context.Context, userID string, rule rules.AutoApplyRule, now time.Time) (RunStats, error) {
	var persona *personas.Persona
	personaID := ""
	if rule.PersonaID != nil && *rule.PersonaID != "" {
		personaID = *rule.PersonaID
		p, err := b.Personas.GetByID(ctx, userID, personaID)
		if err == nil {
			persona = &p
		}
		// A dangling persona id evaluates like a missing persona: the
		// safety gate blocks every candidate and the log says why.
	}

	// The week count is computed once per rule. All candidates in this pass
	// see the same count even as entries are queued; the cap converges on
	// the next run.
	weekCount, err := b.Log.CountQueuedSince(ctx, userID, WeekStart(now))
	if err != nil {
		return RunStats{}, err
	}

	matches, err := b.Matches.ListTopForPersona(ctx, userID, personaID, candidateLimit)
	if err != nil {
		return RunStats{}, err
	}

	var stats RunStats
	for _, match := range matches {
		exists, err := b.Queue.ExistsForJob(ctx, userID, match.JobID, rule.ID)
		if err != nil {
			return stats, err
		}
		if exists {
			stats.Duplicates++
			continue
		}

		job, err := b.Jobs.GetByID(ctx, match.JobID)
		if err != nil {
			b.logError("candidate job missing", userID, rule.ID, err)
			continue
		}

		metrics.IncEvaluations()
		result := eligibility.Evaluate(eligibility.Input{
			Rule:    toRuleConfig(rule),
			Persona: toPersonaView(persona),
			Job: eligibility.Job{
				ExternalURL: job.ExternalURL,
				Company:     job.Company,
				Title:       job.Title,
				Description: job.Description,
			},
			Match: eligibility.Match{MatchScore: match.MatchScore},
			Now:   now,
			Context: eligibility.UserContext{
				CurrentWeekApplicationCount: weekCount,
			},
		})

		if result.Eligible {
			if err := b.enqueue(ctx, userID, rule, personaID, match, result, now); err != nil {
				return stats, err
			}
			metrics.IncQueued()
			stats.Queued++
		} else {
			if err := b.logSkip(ctx, userID, rule.ID, match.JobID, result, now); err != nil {
				return stats, err
			}
			metrics.IncSkipped()
			stats.Skipped++
		}
	}
	return stats, nil
}

func (b *Builder) enqueue(ctx context.Context, userID string, rule rules.AutoApplyRule, personaID string, match jobs.Match, result eligibility.Result, now time.Time) error {
	entry := QueueEntry{
		ID:         uuid.NewString(),
		UserID:     userID,
		RuleID:     rule.ID,
		PersonaID:  personaID,
		JobID:      match.JobID,
		Status:     StatusPending,
		MatchScore: match.MatchScore,
		Severity:   result.Severity,
		Reasons:    result.Reasons,
		Computed:   result.Computed,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := b.Queue.Create(ctx, entry); err != nil {
		return err
	}
	if err := b.Log.Append(ctx, ActionLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		RuleID:    rule.ID,
		JobID:     match.JobID,
		Action:    "auto_apply",
		Status:    LogStatusQueued,
		CreatedAt: now,
	}); err != nil {
		return err
	}
	if b.Publisher != nil {
		if err := b.Publisher.PublishSubmission(ctx, entry); err != nil {
			// The entry stays pending; the submitter also polls the queue
			// table, so a lost message delays rather than drops it.
			b.logError("publish submission failed", userID, rule.ID, err)
		}
	}
	return nil
}

func (b *Builder) logSkip(ctx context.Context, userID, ruleID, jobID string, result eligibility.Result, now time.Time) error {
	return b.Log.Append(ctx, ActionLog{
		ID:           uuid.NewString(),
		UserID:       userID,
		RuleID:       ruleID,
		JobID:        jobID,
		Action:       "auto_apply",
		Status:       LogStatusSkipped,
		ErrorMessage: strings.Join(result.Reasons, "; "),
		CreatedAt:    now,
	})
}

func (b *Builder) logError(msg, userID, ruleID string, err error) {
	if b.Logger == nil {
		return
	}
	b.Logger.Error(msg, map[string]any{
		"user_id": userID,
		"rule_id": ruleID,
		"error":   err.Error(),
	})
}

func toRuleConfig(rule rules.AutoApplyRule) eligibility.RuleConfig {
	return eligibility.RuleConfig{
		MatchScoreThreshold:    rule.MatchScoreThreshold,
		MaxApplicationsPerWeek: rule.MaxApplicationsPerWeek,
		ExcludeCompanies:       eligibility.Filter{Values: rule.ExcludeCompanies},
		IncludeOnlyCompanies:   eligibility.Filter{Values: rule.IncludeOnlyCompanies},
		RequireAllKeywords:     eligibility.Filter{Values: rule.RequireAllKeywords},
		ActiveDays:             eligibility.Filter{Values: rule.ActiveDays},
	}
}

func toPersonaView(persona *personas.Persona) *eligibility.Persona {
	if persona == nil {
		return nil
	}
	view := &eligibility.Persona{}
	if persona.ResumeID != nil {
		view.ResumeID = *persona.ResumeID
	}
	return view
}
