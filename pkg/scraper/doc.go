// Package scraper orchestrates the Jira issue scrape: paging through
// search results, assembling records with their comments, appending
// them to the JSONL sink, and checkpointing progress after every page
// so an interrupted run resumes where it left off.
package scraper
