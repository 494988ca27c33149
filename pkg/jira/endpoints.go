package jira

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the Apache Jira instance this tool was written for
	DefaultBaseURL = "https://issues.apache.org/jira"

	// APIPath is the REST API prefix appended to the base URL
	APIPath = "/rest/api/2"

	// SearchFields is the field list requested from the search endpoint
	SearchFields = "summary,description,project,reporter,assignee,status,priority,labels,created,updated"

	// DefaultPageSize is a conservative page size; servers may cap higher values
	DefaultPageSize = 100

	// MaxPageSize is the largest page size the search endpoint accepts
	MaxPageSize = 1000
)

// DefaultJQL returns the default query for a project: every issue,
// oldest first
func DefaultJQL(projectKey string) string {
	return fmt.Sprintf("project = %s ORDER BY created ASC", projectKey)
}

// SearchURL constructs the paginated search URL for the given query
func SearchURL(baseURL, jql string, startAt, maxResults int) string {
	if maxResults <= 0 {
		maxResults = DefaultPageSize
	} else if maxResults > MaxPageSize {
		maxResults = MaxPageSize
	}

	params := url.Values{}
	params.Set("jql", jql)
	params.Set("startAt", strconv.Itoa(startAt))
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("fields", SearchFields)

	return fmt.Sprintf("%s%s/search?%s", strings.TrimRight(baseURL, "/"), APIPath, params.Encode())
}

// CommentsURL constructs the comment endpoint URL for one issue
func CommentsURL(baseURL, issueKey string) string {
	return fmt.Sprintf("%s%s/issue/%s/comment", strings.TrimRight(baseURL, "/"), APIPath, url.PathEscape(issueKey))
}

// IsValidProjectKey checks if a project key looks like a Jira project key:
// uppercase letters and digits, starting with a letter
func IsValidProjectKey(key string) bool {
	if key == "" || len(key) > 30 {
		return false
	}
	if key[0] < 'A' || key[0] > 'Z' {
		return false
	}
	for _, char := range key {
		if !((char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '_') {
			return false
		}
	}
	return true
}

// SanitizeProjectKey normalizes user input into a project key
func SanitizeProjectKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}
