package record

import (
	"strings"
	"testing"

	"jirascraper/pkg/jira"

	"github.com/stretchr/testify/assert"
)

func TestHTMLToText(t *testing.T) {
	text := HTMLToText("<p>NameNode crashes <b>on restart</b></p><p>See logs.</p>")
	assert.Contains(t, text, "NameNode crashes on restart")
	assert.Contains(t, text, "See logs.")
	assert.NotContains(t, text, "<p>")

	assert.Equal(t, "", HTMLToText(""))
	assert.Equal(t, "plain text stays", HTMLToText("plain text stays"))
}

func TestNormalizeDate(t *testing.T) {
	normalized := NormalizeDate("2009-01-20T10:15:30.000+0000")
	assert.True(t, strings.HasPrefix(normalized, "2009-01-20T"), "got %s", normalized)

	// Unparseable input passes through unchanged
	assert.Equal(t, "not a date", NormalizeDate("not a date"))
	assert.Equal(t, "", NormalizeDate(""))
}

func TestFromIssue(t *testing.T) {
	issue := jira.Issue{
		ID:  "12345",
		Key: "HADOOP-1",
		Fields: jira.IssueFields{
			Summary:     "NameNode fails to start",
			Description: "<p>Stack trace attached.</p>",
			Project:     jira.ProjectRef{Key: "HADOOP"},
			Reporter:    &jira.UserRef{DisplayName: "Alice"},
			Assignee:    &jira.UserRef{DisplayName: "Bob"},
			Status:      &jira.NamedValue{Name: "Resolved"},
			Priority:    &jira.NamedValue{Name: "Major"},
			Labels:      []string{"namenode", "startup"},
			Created:     "2009-01-20T10:15:30.000+0000",
			Updated:     "2009-02-01T08:00:00.000+0000",
		},
	}
	comments := []jira.Comment{
		{ID: "c1", Author: &jira.UserRef{DisplayName: "Carol"}, Created: "2009-01-21T09:00:00.000+0000", Body: "<p>Reproduced on trunk.</p>"},
	}

	rec := FromIssue(issue, comments)

	assert.Equal(t, "12345", rec.ID)
	assert.Equal(t, "HADOOP-1", rec.Key)
	assert.Equal(t, "NameNode fails to start", rec.Title)
	assert.Equal(t, "HADOOP", rec.Project)
	assert.Equal(t, "Alice", rec.Reporter)
	assert.Equal(t, "Bob", rec.Assignee)
	assert.Equal(t, "Resolved", rec.Status)
	assert.Equal(t, "Major", rec.Priority)
	assert.Equal(t, []string{"namenode", "startup"}, rec.Labels)
	assert.Contains(t, rec.Description, "Stack trace attached.")

	if assert.Len(t, rec.Comments, 1) {
		assert.Equal(t, "Carol", rec.Comments[0].Author)
		assert.Contains(t, rec.Comments[0].Body, "Reproduced on trunk.")
	}

	assert.Contains(t, rec.Content, "NameNode fails to start")
	assert.Contains(t, rec.Content, "Stack trace attached.")
	assert.Contains(t, rec.Content, "Reproduced on trunk.")
	assert.True(t, strings.HasPrefix(rec.Derived.SummaryPrompt, "Summarize the following Jira issue:"))
	assert.True(t, strings.HasPrefix(rec.Derived.QAPrompt, "Write 3 question-answer pairs"))
}

func TestFromIssueWithMissingOptionalFields(t *testing.T) {
	issue := jira.Issue{
		ID:  "9",
		Key: "SPARK-9",
		Fields: jira.IssueFields{
			Summary: "bare issue",
			Project: jira.ProjectRef{Key: "SPARK"},
		},
	}

	rec := FromIssue(issue, nil)

	assert.Equal(t, "", rec.Reporter)
	assert.Equal(t, "", rec.Assignee)
	assert.Equal(t, "", rec.Status)
	assert.Equal(t, "", rec.Priority)
	assert.NotNil(t, rec.Labels)
	assert.Empty(t, rec.Labels)
	assert.NotNil(t, rec.Comments)
	assert.Empty(t, rec.Comments)
	assert.Equal(t, "bare issue", rec.Content)
}
