package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/jaytaylor/html2text"

	"jirascraper/pkg/jira"
)

// Record is the fully assembled output unit: one issue with its comments,
// plus the derived text fields. Immutable once written to the sink.
type Record struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Title       string    `json:"title"`
	Project     string    `json:"project"`
	Reporter    string    `json:"reporter,omitempty"`
	Assignee    string    `json:"assignee,omitempty"`
	Status      string    `json:"status,omitempty"`
	Priority    string    `json:"priority,omitempty"`
	Labels      []string  `json:"labels"`
	Created     string    `json:"created"`
	Updated     string    `json:"updated"`
	Description string    `json:"description"`
	Comments    []Comment `json:"comments"`
	Content     string    `json:"content"`
	Derived     Derived   `json:"derived"`
}

// Comment is one normalized issue comment
type Comment struct {
	ID      string `json:"id"`
	Author  string `json:"author,omitempty"`
	Created string `json:"created"`
	Body    string `json:"body"`
}

// Derived holds prompt seeds generated from the record content
type Derived struct {
	SummaryPrompt string `json:"summary_prompt"`
	QAPrompt      string `json:"qa_prompt"`
}

// HTMLToText strips markup from a rendered field, keeping line structure
func HTMLToText(html string) string {
	if html == "" {
		return ""
	}
	text, err := html2text.FromString(html, html2text.Options{TextOnly: true})
	if err != nil {
		// Fall back to the raw input rather than dropping the field
		return strings.TrimSpace(html)
	}
	return strings.TrimSpace(text)
}

// NormalizeDate converts a timestamp string to ISO-8601. Unparseable input
// passes through unchanged, matching best-effort semantics.
func NormalizeDate(s string) string {
	if s == "" {
		return s
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return s
	}
	return t.Format(time.RFC3339)
}

// FromIssue assembles a Record from a raw issue and its comments
func FromIssue(issue jira.Issue, comments []jira.Comment) Record {
	fields := issue.Fields

	rec := Record{
		ID:          issue.ID,
		Key:         issue.Key,
		Title:       fields.Summary,
		Project:     fields.Project.Key,
		Labels:      fields.Labels,
		Created:     NormalizeDate(fields.Created),
		Updated:     NormalizeDate(fields.Updated),
		Description: HTMLToText(fields.Description),
		Comments:    normalizeComments(comments),
	}
	if rec.Labels == nil {
		rec.Labels = []string{}
	}
	if fields.Reporter != nil {
		rec.Reporter = fields.Reporter.DisplayName
	}
	if fields.Assignee != nil {
		rec.Assignee = fields.Assignee.DisplayName
	}
	if fields.Status != nil {
		rec.Status = fields.Status.Name
	}
	if fields.Priority != nil {
		rec.Priority = fields.Priority.Name
	}

	rec.Content = buildContent(rec)
	rec.Derived = Derived{
		SummaryPrompt: fmt.Sprintf("Summarize the following Jira issue:\n\n%s", rec.Content),
		QAPrompt:      fmt.Sprintf("Write 3 question-answer pairs that help understand this issue:\n\n%s", rec.Content),
	}

	return rec
}

func normalizeComments(comments []jira.Comment) []Comment {
	normalized := make([]Comment, 0, len(comments))
	for _, c := range comments {
		nc := Comment{
			ID:      c.ID,
			Created: NormalizeDate(c.Created),
			Body:    HTMLToText(c.Body),
		}
		if c.Author != nil {
			nc.Author = c.Author.DisplayName
		}
		normalized = append(normalized, nc)
	}
	return normalized
}

// buildContent concatenates title, description and comment bodies into a
// single text blob for downstream LLM pipelines
func buildContent(rec Record) string {
	parts := []string{rec.Title, rec.Description}
	for _, c := range rec.Comments {
		parts = append(parts, c.Body)
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}
