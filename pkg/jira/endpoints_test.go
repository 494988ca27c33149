package jira

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchURL(t *testing.T) {
	raw := SearchURL("https://issues.apache.org/jira", "project = HADOOP ORDER BY created ASC", 200, 100)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "/jira/rest/api/2/search", parsed.Path)
	assert.Equal(t, "project = HADOOP ORDER BY created ASC", parsed.Query().Get("jql"))
	assert.Equal(t, "200", parsed.Query().Get("startAt"))
	assert.Equal(t, "100", parsed.Query().Get("maxResults"))
	assert.Equal(t, SearchFields, parsed.Query().Get("fields"))
}

func TestSearchURLClampsPageSize(t *testing.T) {
	raw := SearchURL("https://issues.apache.org/jira", "project = X", 0, 0)
	assert.Contains(t, raw, "maxResults=100")

	raw = SearchURL("https://issues.apache.org/jira", "project = X", 0, 5000)
	assert.Contains(t, raw, "maxResults=1000")
}

func TestSearchURLTrimsTrailingSlash(t *testing.T) {
	raw := SearchURL("https://issues.apache.org/jira/", "project = X", 0, 100)
	assert.False(t, strings.Contains(raw, "jira//"), "double slash in %s", raw)
}

func TestCommentsURL(t *testing.T) {
	raw := CommentsURL("https://issues.apache.org/jira", "HADOOP-123")
	assert.Equal(t, "https://issues.apache.org/jira/rest/api/2/issue/HADOOP-123/comment", raw)
}

func TestDefaultJQL(t *testing.T) {
	assert.Equal(t, "project = HADOOP ORDER BY created ASC", DefaultJQL("HADOOP"))
}

func TestIsValidProjectKey(t *testing.T) {
	valid := []string{"HADOOP", "SPARK", "K2", "LOG4J2", "MY_PROJ"}
	for _, key := range valid {
		assert.True(t, IsValidProjectKey(key), "expected %s to be valid", key)
	}

	invalid := []string{"", "hadoop", "2HADOOP", "HA DOOP", "HA-DOOP", strings.Repeat("A", 31)}
	for _, key := range invalid {
		assert.False(t, IsValidProjectKey(key), "expected %s to be invalid", key)
	}
}

func TestSanitizeProjectKey(t *testing.T) {
	assert.Equal(t, "HADOOP", SanitizeProjectKey(" hadoop "))
	assert.Equal(t, "SPARK", SanitizeProjectKey("SPARK"))
}
