package scraper

import (
	"context"

	"jirascraper/pkg/jira"
)

// JiraClient defines the interface for Jira API operations
type JiraClient interface {
	SearchIssues(ctx context.Context, jql string, startAt, maxResults int) (*jira.SearchResponse, error)
	FetchComments(ctx context.Context, issueKey string) ([]jira.Comment, error)
}
