package personas

import (
	"context"
	"errors"
	"testing"
	"time"

	"autoapply-backend/internal/resumes"
)

func newPersonaService(t *testing.T) (*Service, *resumes.MemoryRepo) {
	t.Helper()
	resumeRepo := resumes.NewMemoryRepo()
	return &Service{Repo: NewMemoryRepo(), Resumes: resumeRepo}, resumeRepo
}

func seedResume(t *testing.T, repo *resumes.MemoryRepo, userID, resumeID string) {
	t.Helper()
	err := repo.Create(context.Background(), resumes.Resume{
		ID:        resumeID,
		UserID:    userID,
		FileName:  "resume.pdf",
		MimeType:  "application/pdf",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed resume: %v", err)
	}
}

func strPtr(s string) *string { return &s }

func TestCreatePersonaWithResume(t *testing.T) {
	svc, resumeRepo := newPersonaService(t)
	seedResume(t, resumeRepo, "user-1", "resume-1")

	persona, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:     "Backend Roles",
		Headline: "Go engineer, 6 years",
		ResumeID: strPtr("resume-1"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if persona.ID == "" || persona.ResumeID == nil || *persona.ResumeID != "resume-1" {
		t.Fatalf("unexpected persona: %+v", persona)
	}
}

func TestCreatePersonaRejectsMissingResume(t *testing.T) {
	svc, _ := newPersonaService(t)

	_, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:     "Backend Roles",
		ResumeID: strPtr("no-such-resume"),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreatePersonaRejectsForeignResume(t *testing.T) {
	svc, resumeRepo := newPersonaService(t)
	seedResume(t, resumeRepo, "other-user", "resume-1")

	_, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:     "Backend Roles",
		ResumeID: strPtr("resume-1"),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for foreign resume, got %v", err)
	}
}

func TestCreatePersonaRequiresName(t *testing.T) {
	svc, _ := newPersonaService(t)

	if _, err := svc.Create(context.Background(), "user-1", CreateInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdatePersonaDetachResume(t *testing.T) {
	svc, resumeRepo := newPersonaService(t)
	seedResume(t, resumeRepo, "user-1", "resume-1")

	created, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:     "Backend Roles",
		ResumeID: strPtr("resume-1"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(context.Background(), "user-1", created.ID, CreateInput{
		Name:     "Platform Roles",
		Headline: "Infra focus",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ResumeID != nil {
		t.Fatalf("expected resume detached, got %v", *updated.ResumeID)
	}
	if updated.Name != "Platform Roles" || updated.Headline != "Infra focus" {
		t.Fatalf("unexpected persona after update: %+v", updated)
	}
}

func TestGetPersonaScopedToOwner(t *testing.T) {
	svc, _ := newPersonaService(t)

	created, err := svc.Create(context.Background(), "user-1", CreateInput{Name: "Backend Roles"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Get(context.Background(), "other-user", created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign user, got %v", err)
	}
}
