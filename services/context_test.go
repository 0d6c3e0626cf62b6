// ABOUTME: Tests for the business document store
// ABOUTME: Verifies ordering, separators, and missing-document failures

package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDocs(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("content of "+name), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}

func TestLoadDocuments_JoinsInOrder(t *testing.T) {
	dir := t.TempDir()
	writeDocs(t, dir, "SLA.md", "RTO_RPO_POLICY.md", "INCIDENT_HISTORY.md")

	s := NewDocsStore(dir)
	text, err := s.LoadDocuments()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	parts := strings.Split(text, "\n---\n")
	if len(parts) != 3 {
		t.Fatalf("Expected 3 documents joined by separators, got %d", len(parts))
	}
	if parts[0] != "content of SLA.md" {
		t.Errorf("Expected SLA first, got %q", parts[0])
	}
	if parts[2] != "content of INCIDENT_HISTORY.md" {
		t.Errorf("Expected incident history last, got %q", parts[2])
	}
}

func TestLoadDocuments_MissingDocumentFails(t *testing.T) {
	dir := t.TempDir()
	writeDocs(t, dir, "SLA.md", "RTO_RPO_POLICY.md")

	s := NewDocsStore(dir)
	_, err := s.LoadDocuments()
	if err == nil {
		t.Fatal("Expected error for missing INCIDENT_HISTORY.md")
	}
	if !strings.Contains(err.Error(), "INCIDENT_HISTORY.md") {
		t.Errorf("Error should name the missing document, got %v", err)
	}
}
