// ABOUTME: Business context store loading SLA, RTO/RPO policy, and incident history documents
// ABOUTME: The concatenated text is a prerequisite for every analysis, not optional context

package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// businessDocuments are loaded in this order and joined with separators.
var businessDocuments = []string{
	"SLA.md",
	"RTO_RPO_POLICY.md",
	"INCIDENT_HISTORY.md",
}

// ContextStore is the boundary to the business policy/document store.
type ContextStore interface {
	LoadDocuments() (string, error)
}

// DocsStore reads the business documents from a local directory.
type DocsStore struct {
	dir string
}

// NewDocsStore creates a store over dir.
func NewDocsStore(dir string) *DocsStore {
	return &DocsStore{dir: dir}
}

// LoadDocuments returns the concatenated policy text. Any missing or
// unreadable document is an error; analyses cannot proceed without the full
// policy context.
func (s *DocsStore) LoadDocuments() (string, error) {
	var b strings.Builder
	for i, name := range businessDocuments {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return "", fmt.Errorf("load business document %s: %w", name, err)
		}
		if i > 0 {
			b.WriteString("\n---\n")
		}
		b.Write(data)
	}
	return b.String(), nil
}

var _ ContextStore = (*DocsStore)(nil)
