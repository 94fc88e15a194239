package autoapply

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"autoapply-backend/internal/jobs"
	"autoapply-backend/internal/personas"
	"autoapply-backend/internal/rules"
)

// Monday 09:00 UTC. Keeps active-day checks out of the way unless a test
// opts in.
var buildTime = time.Date(2026, 8, 17, 9, 0, 0, 0, time.UTC)

type builderFixture struct {
	builder  *Builder
	rules    *rules.MemoryRepo
	personas *personas.MemoryRepo
	jobs     *jobs.MemoryJobRepo
	matches  *jobs.MemoryMatchRepo
	queue    *MemoryQueueRepo
	log      *MemoryLogRepo
}

func newBuilderFixture() *builderFixture {
	f := &builderFixture{
		rules:    rules.NewMemoryRepo(),
		personas: personas.NewMemoryRepo(),
		jobs:     jobs.NewMemoryJobRepo(),
		matches:  jobs.NewMemoryMatchRepo(),
		queue:    NewMemoryQueueRepo(),
		log:      NewMemoryLogRepo(),
	}
	f.builder = &Builder{
		Rules:    f.rules,
		Personas: f.personas,
		Jobs:     f.jobs,
		Matches:  f.matches,
		Queue:    f.queue,
		Log:      f.log,
		Now:      func() time.Time { return buildTime },
	}
	return f
}

func (f *builderFixture) addPersona(t *testing.T, userID string, withResume bool) string {
	t.Helper()
	persona := personas.Persona{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      "Backend profile",
		CreatedAt: buildTime,
		UpdatedAt: buildTime,
	}
	if withResume {
		resumeID := uuid.NewString()
		persona.ResumeID = &resumeID
	}
	if err := f.personas.Create(context.Background(), persona); err != nil {
		t.Fatalf("create persona: %v", err)
	}
	return persona.ID
}

func (f *builderFixture) addRule(t *testing.T, userID, personaID string, mutate func(*rules.AutoApplyRule)) string {
	t.Helper()
	rule := rules.AutoApplyRule{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      "Default rule",
		Enabled:   true,
		CreatedAt: buildTime,
		UpdatedAt: buildTime,
	}
	if personaID != "" {
		rule.PersonaID = &personaID
	}
	if mutate != nil {
		mutate(&rule)
	}
	if err := f.rules.Create(context.Background(), rule); err != nil {
		t.Fatalf("create rule: %v", err)
	}
	return rule.ID
}

func (f *builderFixture) addMatch(t *testing.T, userID, personaID string, score int, mutate func(*jobs.Job)) string {
	t.Helper()
	job := jobs.Job{
		ID:          uuid.NewString(),
		ExternalURL: "https://boards.greenhouse.io/acme/jobs/" + uuid.NewString(),
		Company:     "Acme Corp",
		Title:       "Senior Go Engineer",
		Description: "Build services in Go on Kubernetes.",
		PostedAt:    buildTime,
		CreatedAt:   buildTime,
	}
	if mutate != nil {
		mutate(&job)
	}
	if err := f.jobs.Create(context.Background(), job); err != nil {
		t.Fatalf("create job: %v", err)
	}
	match := jobs.Match{
		ID:         uuid.NewString(),
		UserID:     userID,
		PersonaID:  personaID,
		JobID:      job.ID,
		MatchScore: score,
		CreatedAt:  buildTime,
	}
	if err := f.matches.Upsert(context.Background(), match); err != nil {
		t.Fatalf("upsert match: %v", err)
	}
	return job.ID
}

func TestBuilderQueuesEligibleMatch(t *testing.T) {
	f := newBuilderFixture()
	userID := "user-1"
	personaID := f.addPersona(t, userID, true)
	ruleID := f.addRule(t, userID, personaID, nil)
	jobID := f.addMatch(t, userID, personaID, 85, nil)

	stats, err := f.builder.Run(context.Background(), userID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Queued != 1 || stats.Skipped != 0 {
		t.Fatalf("stats = %+v, want 1 queued", stats)
	}

	entries, err := f.queue.ListByUser(context.Background(), userID, 10, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 queue entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Status != StatusPending {
		t.Errorf("status = %s, want pending", entry.Status)
	}
	if entry.RuleID != ruleID || entry.JobID != jobID {
		t.Errorf("entry refs wrong rule/job: %+v", entry)
	}
	if entry.MatchScore != 85 {
		t.Errorf("match score = %d, want 85", entry.MatchScore)
	}
	if len(entry.Reasons) != 0 {
		t.Errorf("eligible entry should carry no reasons, got %v", entry.Reasons)
	}
	if !entry.Computed.SafetyChecksPassed {
		t.Error("computed safety_checks_passed should be true")
	}

	logs, err := f.log.ListByUser(context.Background(), userID, 10, 0)
	if err != nil {
		t.Fatalf("ListByUser log: %v", err)
	}
	if len(logs) != 1 || logs[0].Status != LogStatusQueued {
		t.Fatalf("expected one queued log entry, got %+v", logs)
	}
}

func TestBuilderSkipsBelowThreshold(t *testing.T) {
	f := newBuilderFixture()
	userID := "user-1"
	personaID := f.addPersona(t, userID, true)
	threshold := 70
	f.addRule(t, userID, personaID, func(r *rules.AutoApplyRule) {
		r.MatchScoreThreshold = &threshold
	})
	f.addMatch(t, userID, personaID, 55, nil)

	stats, err := f.builder.Run(context.Background(), userID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Queued != 0 || stats.Skipped != 1 {
		t.Fatalf("stats = %+v, want 1 skipped", stats)
	}

	entries, _ := f.queue.ListByUser(context.Background(), userID, 10, 0)
	if len(entries) != 0 {
		t.Fatalf("expected no queue entries, got %d", len(entries))
	}

	logs, _ := f.log.ListByUser(context.Background(), userID, 10, 0)
	if len(logs) != 1 || logs[0].Status != LogStatusSkipped {
		t.Fatalf("expected one skipped log entry, got %+v", logs)
	}
	if !strings.Contains(logs[0].ErrorMessage, "below threshold") {
		t.Errorf("skip message should carry the reason, got %q", logs[0].ErrorMessage)
	}
}

func TestBuilderIsIdempotentAcrossRuns(t *testing.T) {
	f := newBuilderFixture()
	userID := "user-1"
	personaID := f.addPersona(t, userID, true)
	f.addRule(t, userID, personaID, nil)
	f.addMatch(t, userID, personaID, 90, nil)

	if _, err := f.builder.Run(context.Background(), userID); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	stats, err := f.builder.Run(context.Background(), userID)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if stats.Queued != 0 || stats.Duplicates != 1 {
		t.Fatalf("second run stats = %+v, want 1 duplicate", stats)
	}

	entries, _ := f.queue.ListByUser(context.Background(), userID, 10, 0)
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 queue entry after two runs, got %d", len(entries))
	}
}

func TestBuilderWeeklyCapCountedOncePerRule(t *testing.T) {
	f := newBuilderFixture()
	userID := "user-1"
	personaID := f.addPersona(t, userID, true)
	weeklyCap := 3
	f.addRule(t, userID, personaID, func(r *rules.AutoApplyRule) {
		r.MaxApplicationsPerWeek = &weeklyCap
	})

	// Three applications already queued this week.
	for i := 0; i < 3; i++ {
		if err := f.log.Append(context.Background(), ActionLog{
			ID:        uuid.NewString(),
			UserID:    userID,
			Action:    "auto_apply",
			Status:    LogStatusQueued,
			CreatedAt: buildTime.Add(-time.Hour),
		}); err != nil {
			t.Fatalf("seed log: %v", err)
		}
	}
	f.addMatch(t, userID, personaID, 95, nil)
	f.addMatch(t, userID, personaID, 90, nil)

	stats, err := f.builder.Run(context.Background(), userID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Queued != 0 || stats.Skipped != 2 {
		t.Fatalf("stats = %+v, want both candidates skipped at cap", stats)
	}

	logs, _ := f.log.ListByUser(context.Background(), userID, 20, 0)
	var skipped int
	for _, entry := range logs {
		if entry.Status == LogStatusSkipped {
			skipped++
			if !strings.Contains(entry.ErrorMessage, "Weekly cap reached (3/3") {
				t.Errorf("skip message = %q, want cap reason", entry.ErrorMessage)
			}
		}
	}
	if skipped != 2 {
		t.Fatalf("expected 2 skipped log entries, got %d", skipped)
	}
}

func TestBuilderLastWeekDoesNotCountTowardCap(t *testing.T) {
	f := newBuilderFixture()
	userID := "user-1"
	personaID := f.addPersona(t, userID, true)
	weeklyCap := 1
	f.addRule(t, userID, personaID, func(r *rules.AutoApplyRule) {
		r.MaxApplicationsPerWeek = &weeklyCap
	})

	// Queued before Monday 00:00 UTC of the current week.
	if err := f.log.Append(context.Background(), ActionLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    "auto_apply",
		Status:    LogStatusQueued,
		CreatedAt: WeekStart(buildTime).Add(-time.Minute),
	}); err != nil {
		t.Fatalf("seed log: %v", err)
	}
	f.addMatch(t, userID, personaID, 95, nil)

	stats, err := f.builder.Run(context.Background(), userID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Queued != 1 {
		t.Fatalf("stats = %+v, want 1 queued (last week's entry resets)", stats)
	}
}

func TestBuilderDanglingPersonaBlocksCandidates(t *testing.T) {
	f := newBuilderFixture()
	userID := "user-1"
	missingPersonaID := uuid.NewString()
	f.addRule(t, userID, missingPersonaID, nil)
	f.addMatch(t, userID, missingPersonaID, 99, nil)

	stats, err := f.builder.Run(context.Background(), userID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Queued != 0 || stats.Skipped != 1 {
		t.Fatalf("stats = %+v, want skipped via safety gate", stats)
	}

	logs, _ := f.log.ListByUser(context.Background(), userID, 10, 0)
	if len(logs) != 1 || !strings.Contains(logs[0].ErrorMessage, "No persona specified") {
		t.Fatalf("expected persona gate reason, got %+v", logs)
	}
}

func TestBuilderPersonaWithoutResumeBlocks(t *testing.T) {
	f := newBuilderFixture()
	userID := "user-1"
	personaID := f.addPersona(t, userID, false)
	f.addRule(t, userID, personaID, nil)
	f.addMatch(t, userID, personaID, 99, nil)

	stats, err := f.builder.Run(context.Background(), userID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Queued != 0 || stats.Skipped != 1 {
		t.Fatalf("stats = %+v, want 1 skipped", stats)
	}

	logs, _ := f.log.ListByUser(context.Background(), userID, 10, 0)
	if len(logs) != 1 || !strings.Contains(logs[0].ErrorMessage, "resume") {
		t.Fatalf("expected resume gate reason, got %+v", logs)
	}
}

func TestBuilderIgnoresDisabledRules(t *testing.T) {
	f := newBuilderFixture()
	userID := "user-1"
	personaID := f.addPersona(t, userID, true)
	f.addRule(t, userID, personaID, func(r *rules.AutoApplyRule) {
		r.Enabled = false
	})
	f.addMatch(t, userID, personaID, 95, nil)

	stats, err := f.builder.Run(context.Background(), userID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.RulesEvaluated != 0 || stats.Queued != 0 || stats.Skipped != 0 {
		t.Fatalf("disabled rule should be invisible, stats = %+v", stats)
	}
}

type capturePublisher struct {
	published []QueueEntry
}

func (p *capturePublisher) PublishSubmission(_ context.Context, entry QueueEntry) error {
	p.published = append(p.published, entry)
	return nil
}

func TestBuilderPublishesQueuedEntries(t *testing.T) {
	f := newBuilderFixture()
	publisher := &capturePublisher{}
	f.builder.Publisher = publisher

	userID := "user-1"
	personaID := f.addPersona(t, userID, true)
	f.addRule(t, userID, personaID, nil)
	f.addMatch(t, userID, personaID, 88, nil)

	if _, err := f.builder.Run(context.Background(), userID); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published entry, got %d", len(publisher.published))
	}
	if publisher.published[0].Status != StatusPending {
		t.Errorf("published status = %s, want pending", publisher.published[0].Status)
	}
}
