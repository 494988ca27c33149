package jira

// SearchResponse is one page of /search results
type SearchResponse struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

// Issue is one issue as returned by the search endpoint, restricted to the
// requested field list
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

// IssueFields holds the requested subset of issue fields. Reporter, assignee,
// status and priority may be absent on an issue, hence the pointers.
type IssueFields struct {
	Summary     string      `json:"summary"`
	Description string      `json:"description"`
	Project     ProjectRef  `json:"project"`
	Reporter    *UserRef    `json:"reporter"`
	Assignee    *UserRef    `json:"assignee"`
	Status      *NamedValue `json:"status"`
	Priority    *NamedValue `json:"priority"`
	Labels      []string    `json:"labels"`
	Created     string      `json:"created"`
	Updated     string      `json:"updated"`
}

// ProjectRef identifies the project an issue belongs to
type ProjectRef struct {
	Key string `json:"key"`
}

// UserRef identifies a Jira user by display name
type UserRef struct {
	DisplayName string `json:"displayName"`
}

// NamedValue is a value object carrying only a name (status, priority)
type NamedValue struct {
	Name string `json:"name"`
}

// CommentsResponse is the payload of the per-issue comment endpoint
type CommentsResponse struct {
	Comments []Comment `json:"comments"`
}

// Comment is one comment on an issue
type Comment struct {
	ID      string   `json:"id"`
	Author  *UserRef `json:"author"`
	Created string   `json:"created"`
	Body    string   `json:"body"`
}
