package resumes

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

// fakeStore keeps uploaded objects in memory and reports a fixed mime type.
type fakeStore struct {
	mime    string
	objects map[string][]byte
}

func newFakeStore(mime string) *fakeStore {
	return &fakeStore{mime: mime, objects: make(map[string][]byte)}
}

func (s *fakeStore) Save(ctx context.Context, userID, fileName string, r io.Reader) (string, int64, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	key := userID + "/" + fileName
	s.objects[key] = data
	return key, int64(len(data)), s.mime, nil
}

func (s *fakeStore) SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	s.objects[storageKey] = data
	return int64(len(data)), nil
}

func (s *fakeStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	data, ok := s.objects[storageKey]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func docxBytes(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document.xml: %v", err)
	}
	if _, err := w.Write([]byte(`<?xml version="1.0"?><w:document><w:body>` + body + `</w:body></w:document>`)); err != nil {
		t.Fatalf("write document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestUploadExtractsDocxText(t *testing.T) {
	store := newFakeStore("application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	svc := &Service{Store: store, Repo: NewMemoryRepo()}

	payload := docxBytes(t, `<w:p><w:r><w:t>Go and Postgres</w:t></w:r></w:p>`)
	resume, err := svc.Upload(context.Background(), "user-1", "resume.docx", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.Contains(resume.ExtractedText, "Go and Postgres") {
		t.Fatalf("expected extracted text, got %q", resume.ExtractedText)
	}
	if resume.SizeBytes != int64(len(payload)) {
		t.Fatalf("expected size %d, got %d", len(payload), resume.SizeBytes)
	}

	stored, err := svc.Get(context.Background(), "user-1", resume.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.ExtractedText != resume.ExtractedText {
		t.Fatalf("stored resume lost extracted text")
	}
}

func TestUploadSurvivesExtractionFailure(t *testing.T) {
	store := newFakeStore("application/pdf")
	svc := &Service{Store: store, Repo: NewMemoryRepo()}

	resume, err := svc.Upload(context.Background(), "user-1", "resume.pdf", strings.NewReader("not a real pdf"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if resume.ExtractedText != "" {
		t.Fatalf("expected empty extracted text, got %q", resume.ExtractedText)
	}
}

func TestUploadRequiresFileName(t *testing.T) {
	svc := &Service{Store: newFakeStore("application/pdf"), Repo: NewMemoryRepo()}

	if _, err := svc.Upload(context.Background(), "user-1", "", strings.NewReader("data")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDeleteScopedToOwner(t *testing.T) {
	store := newFakeStore("application/pdf")
	svc := &Service{Store: store, Repo: NewMemoryRepo()}

	resume, err := svc.Upload(context.Background(), "user-1", "resume.pdf", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := svc.Delete(context.Background(), "other-user", resume.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign user, got %v", err)
	}
	if err := svc.Delete(context.Background(), "user-1", resume.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
