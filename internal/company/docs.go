package company

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DocStore serves markdown documents from a single directory. Reads are
// confined to that directory; path traversal in a filename is rejected.
type DocStore struct {
	dir string
}

// NewDocStore ensures dir exists and writes the starter documents for
// any that are missing.
func NewDocStore(dir string) (*DocStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create docs dir: %w", err)
	}

	d := &DocStore{dir: dir}
	for name, content := range starterDocs {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}
	return d, nil
}

// Dir returns the document directory.
func (d *DocStore) Dir() string {
	return d.dir
}

// List returns the filenames available, sorted.
func (d *DocStore) List() ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("read docs dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Read returns the content of one document by filename.
func (d *DocStore) Read(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required")
	}
	// Confine reads to the docs directory.
	if filepath.Base(filename) != filename || strings.HasPrefix(filename, ".") {
		return "", fmt.Errorf("invalid filename %q", filename)
	}

	data, err := os.ReadFile(filepath.Join(d.dir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file %s not found", filename)
		}
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	return string(data), nil
}

// starterDocs are written on first run so the document tools have
// something to serve.
var starterDocs = map[string]string{
	"company_policy.md": `# Company Remote Work Policy

## Overview
Employees can work remotely up to 3 days per week.

## Core Hours
- Monday-Friday: 9:00 AM - 3:00 PM (local time)
- All team members must be available during core hours

## Equipment
- Company laptop provided
- $500 annual home office allowance
- Monthly internet stipend: $50

## Communication
- Daily standup via Slack at 9:00 AM
- Weekly team meetings on Mondays
- Quarterly all-hands meetings in office

## Performance
- Results-oriented work environment
- Quarterly performance reviews
- Career development budget: $2000/year
`,

	"project_status.md": `# Q1 2025 Project Status Report

## Engineering Projects

### AI Chat System (Priority: High)
- **Status**: 75% Complete
- **Team**: Alice Johnson (Lead), Carol Davis
- **Deadline**: March 30, 2025
- **Budget**: $250,000 ($180,000 spent)
- **Blockers**: API rate limiting issues

### Database Migration (Priority: Medium)
- **Status**: 25% Complete
- **Team**: Carol Davis (Lead)
- **Deadline**: June 1, 2025
- **Budget**: $150,000 ($35,000 spent)
- **Next Steps**: Schema finalization

### Web Portal (Priority: Medium)
- **Status**: 60% Complete
- **Team**: Eva Martinez (Lead)
- **Deadline**: May 20, 2025
- **Budget**: $180,000 ($95,000 spent)
`,

	"team_handbook.md": `# Team Handbook

## Team Structure

### Engineering Team (3 people)
- **Alice Johnson** - Senior AI Engineer, Team Lead
- **Carol Davis** - Database Architect, DevOps
- **Eva Martinez** - Frontend Developer

### Marketing Team (1 person)
- **Bob Smith** - Marketing Manager, Content Strategy

### Sales Team (1 person)
- **David Wilson** - Sales Manager, B2B Focus

## Tools & Technologies

### Development
- **Languages**: Python, TypeScript, SQL
- **Frameworks**: LangChain, React, FastAPI
- **Infrastructure**: Docker, AWS, PostgreSQL
- **AI/ML**: Ollama, OpenAI, Hugging Face
`,
}
