package scraper

import (
	"context"
	"fmt"
	"os"
	"strings"

	"jirascraper/pkg/checkpoint"
	"jirascraper/pkg/config"
	"jirascraper/pkg/jira"
	"jirascraper/pkg/logger"
	"jirascraper/pkg/ratelimit"
	"jirascraper/pkg/record"
	"jirascraper/pkg/sink"
	"jirascraper/pkg/ui"
)

// Options control a single scrape run
type Options struct {
	// JQL overrides the default project query
	JQL string

	// OutPath is the final JSONL output path. Empty means
	// <project>_issues.jsonl in the working directory.
	OutPath string

	// Resume continues from an existing checkpoint
	Resume bool

	// ForceRestart discards an existing checkpoint and starts over
	ForceRestart bool
}

// Scraper orchestrates the Jira issue scrape
type Scraper struct {
	client   JiraClient
	pacer    ratelimit.Pacer
	config   *config.Config
	logger   logger.Logger
	progress *ui.ProgressDisplay
}

// New creates a new Scraper instance wired to a real Jira client
func New(cfg *config.Config) (*Scraper, error) {
	log := logger.GetLogger()

	client := jira.NewClientWithConfig(cfg, log)

	return &Scraper{
		client: client,
		pacer:  ratelimit.NewFixedInterval(cfg.Scrape.PageDelay),
		config: cfg,
		logger: log,
	}, nil
}

// NewWithClient creates a Scraper with an injected client
func NewWithClient(cfg *config.Config, client JiraClient) *Scraper {
	return &Scraper{
		client: client,
		pacer:  ratelimit.NewFixedInterval(cfg.Scrape.PageDelay),
		config: cfg,
		logger: logger.GetLogger(),
	}
}

// Run scrapes all issues for a project and writes them to the JSONL
// output. Progress is checkpointed after every page; crash recovery
// gives at-least-once delivery, with re-emitted issues suppressed by
// the processed key set on resume.
func (s *Scraper) Run(ctx context.Context, project string, opts Options) error {
	project = jira.SanitizeProjectKey(project)
	if !jira.IsValidProjectKey(project) {
		return fmt.Errorf("invalid project key: %q", project)
	}

	outPath := opts.OutPath
	if outPath == "" {
		outPath = strings.ToLower(project) + "_issues.jsonl"
	}

	jql := opts.JQL
	if jql == "" {
		jql = jira.DefaultJQL(project)
	}

	checkpointMgr, err := checkpoint.NewManager(s.config.Output.DataDirectory, project)
	if err != nil {
		s.logger.WithError(err).WithField("project", project).Error("Failed to create checkpoint manager")
		return fmt.Errorf("failed to create checkpoint manager: %w", err)
	}

	cp, err := s.prepareCheckpoint(checkpointMgr, project, opts)
	if err != nil {
		return err
	}

	// A restart owns a clean slate: the abandoned run's working file
	// must not leak its records into this one via the append-mode sink.
	if opts.ForceRestart {
		if err := os.Remove(outPath + ".tmp"); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale working file: %w", err)
		}
	}

	writer, err := sink.NewWriter(outPath)
	if err != nil {
		s.logger.WithError(err).WithField("out", outPath).Error("Failed to open output sink")
		return fmt.Errorf("failed to open output sink: %w", err)
	}
	defer writer.Close()

	s.logger.InfoWithFields("Starting scrape", map[string]interface{}{
		"project": project,
		"jql":     jql,
		"offset":  cp.Offset,
		"out":     outPath,
	})

	s.progress = ui.NewProgressDisplay()
	s.pacer.Reset()

	pageSize := s.config.Scrape.PageSize
	scanned := cp.Offset
	emitted := 0
	skipped := 0
	firstPage := true

	for {
		// Politeness pause between page fetches; the first fetch
		// of a run is not delayed.
		s.pacer.Wait()

		page, err := s.client.SearchIssues(ctx, jql, cp.Offset, pageSize)
		if err != nil {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"project": project,
				"offset":  cp.Offset,
			}).Error("Page fetch failed, giving up")
			return fmt.Errorf("failed to fetch page at offset %d: %w", cp.Offset, err)
		}

		if firstPage {
			s.progress.Start(page.Total)
			firstPage = false
		} else {
			// Servers may refine the total between pages
			s.progress.SetTotal(page.Total)
		}

		// An empty page ends the run no matter what the reported
		// total claims. The total is advisory, for progress only.
		if len(page.Issues) == 0 {
			s.logger.InfoWithFields("Empty page, scrape complete", map[string]interface{}{
				"project": project,
				"offset":  cp.Offset,
				"total":   page.Total,
			})
			break
		}

		for _, issue := range page.Issues {
			if cp.IsProcessed(issue.Key) {
				skipped++
				continue
			}

			rec := s.buildRecord(ctx, issue)
			if err := writer.Append(rec); err != nil {
				return fmt.Errorf("failed to append record %s: %w", issue.Key, err)
			}
			cp.MarkProcessed(issue.Key)
			emitted++
		}

		scanned += len(page.Issues)
		cp.Advance(len(page.Issues))

		if err := checkpointMgr.Save(cp); err != nil {
			return fmt.Errorf("failed to save checkpoint: %w", err)
		}

		s.progress.Update(scanned, emitted, skipped)
		s.logger.DebugWithFields("Page complete", map[string]interface{}{
			"project": project,
			"offset":  cp.Offset,
			"emitted": emitted,
			"skipped": skipped,
		})

		// When the reported total is known and the offset has covered
		// it, stop without fetching the trailing empty page.
		if page.Total > 0 && cp.Offset >= page.Total {
			s.logger.InfoWithFields("Offset reached total, scrape complete", map[string]interface{}{
				"project": project,
				"offset":  cp.Offset,
				"total":   page.Total,
			})
			break
		}
	}

	if err := writer.Finalize(); err != nil {
		return fmt.Errorf("failed to finalize output: %w", err)
	}

	s.progress.Update(scanned, emitted, skipped)
	s.progress.Finish()

	s.logger.InfoWithFields("Scrape complete", map[string]interface{}{
		"project": project,
		"emitted": emitted,
		"skipped": skipped,
		"offset":  cp.Offset,
		"out":     outPath,
	})

	return nil
}

// prepareCheckpoint resolves the resume/force-restart flags against any
// existing checkpoint on disk
func (s *Scraper) prepareCheckpoint(mgr *checkpoint.Manager, project string, opts Options) (*checkpoint.Checkpoint, error) {
	if opts.ForceRestart && mgr.Exists() {
		if err := mgr.Delete(); err != nil {
			s.logger.WithError(err).Warn("Failed to delete existing checkpoint")
		}
		ui.PrintInfo("Force restart", "Ignoring existing checkpoint")
		return checkpoint.NewCheckpoint(project), nil
	}

	if mgr.Exists() && !opts.Resume {
		if !ui.IsQuietMode() {
			fmt.Printf("\n%s Previous scrape found for %s\n", ui.Yellow("►"), project)
			fmt.Printf("  Use: %s to continue where you left off\n", ui.Green("--resume"))
			fmt.Printf("  Use: %s to start fresh\n\n", ui.Yellow("--force-restart"))
		}
		return nil, fmt.Errorf("checkpoint exists - use --resume to continue or --force-restart to start fresh")
	}

	cp, err := mgr.Load(project)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load checkpoint")
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	if opts.Resume && cp.Offset > 0 {
		ui.PrintInfo("Resuming from checkpoint", fmt.Sprintf("offset %d, %d issues done", cp.Offset, cp.ProcessedCount()))
		s.logger.InfoWithFields("Resuming from checkpoint", map[string]interface{}{
			"project":   project,
			"offset":    cp.Offset,
			"processed": cp.ProcessedCount(),
		})
	}

	return cp, nil
}

// buildRecord assembles the output record for one issue. A comment
// fetch that fails even after retries degrades the record to empty
// comments rather than aborting the run.
func (s *Scraper) buildRecord(ctx context.Context, issue jira.Issue) record.Record {
	comments, err := s.client.FetchComments(ctx, issue.Key)
	if err != nil {
		s.logger.WithError(err).WithField("issue", issue.Key).Warn("Comment fetch failed, emitting record without comments")
		comments = nil
	}
	return record.FromIssue(issue, comments)
}
