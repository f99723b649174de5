package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/insurance-lead-desk/internal/config"
)

var epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func TestObjectName(t *testing.T) {
	cases := map[string]string{
		"policy.pdf":           "1714554000000-policy.pdf",
		"../../etc/passwd":     "1714554000000-passwd",
		`C:\docs\scan one.png`: "1714554000000-scan one.png",
		"":                     "1714554000000-file",
	}
	for in, want := range cases {
		if got := objectName(epoch, in); got != want {
			t.Errorf("objectName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLocalStoreSave(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(filepath.Join(dir, "uploads"), "http://localhost:5000/")
	if err != nil {
		t.Fatal(err)
	}
	s.Now = func() time.Time { return epoch }

	f, err := s.Save(context.Background(), "policy.pdf", "application/pdf", strings.NewReader("%PDF-1.4"), 8)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if f.Name != "policy.pdf" {
		t.Errorf("name = %q", f.Name)
	}
	if f.URL != "http://localhost:5000/uploads/1714554000000-policy.pdf" {
		t.Errorf("url = %q", f.URL)
	}
	b, err := os.ReadFile(filepath.Join(dir, "uploads", "1714554000000-policy.pdf"))
	if err != nil || string(b) != "%PDF-1.4" {
		t.Errorf("content = %q, %v", b, err)
	}

	// same millisecond, same name
	if _, err := s.Save(context.Background(), "policy.pdf", "", strings.NewReader("x"), 1); err == nil {
		t.Error("expected a collision error")
	}
}

func TestMinioPublicURL(t *testing.T) {
	s, err := NewMinioStore(config.MinioConfig{Endpoint: "files.example.test:9000", AccessKey: "k", SecretKey: "s", Bucket: "policies"})
	if err != nil {
		t.Fatal(err)
	}
	if got := s.publicURL("1-a.pdf"); got != "http://files.example.test:9000/policies/1-a.pdf" {
		t.Errorf("url = %q", got)
	}
	s.useSSL = true
	if got := s.publicURL("1-a.pdf"); !strings.HasPrefix(got, "https://") {
		t.Errorf("url = %q", got)
	}
}
