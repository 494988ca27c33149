package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"jirascraper/pkg/checkpoint"
	"jirascraper/pkg/config"
	"jirascraper/pkg/jira"
	"jirascraper/pkg/ui"
)

// checkpointCmd represents the checkpoint command
var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Inspect and manage scrape checkpoints",
	Long: `Inspect and manage the per-project checkpoints that make scrapes
resumable. A checkpoint records the pagination offset and the keys of
issues already written to the output.`,
}

// checkpointShowCmd represents the checkpoint show command
var checkpointShowCmd = &cobra.Command{
	Use:   "show <PROJECT>",
	Short: "Show the checkpoint for a project",
	Args:  cobra.ExactArgs(1),
	Run:   runCheckpointShow,
}

// checkpointClearCmd represents the checkpoint clear command
var checkpointClearCmd = &cobra.Command{
	Use:   "clear <PROJECT>",
	Short: "Delete the checkpoint for a project",
	Long: `Delete the checkpoint for a project so the next scrape starts from
the beginning. The JSONL output file is left untouched.`,
	Args: cobra.ExactArgs(1),
	Run:  runCheckpointClear,
}

func init() {
	rootCmd.AddCommand(checkpointCmd)
	checkpointCmd.AddCommand(checkpointShowCmd)
	checkpointCmd.AddCommand(checkpointClearCmd)
}

func checkpointManagerFor(project string) (*checkpoint.Manager, string) {
	project = jira.SanitizeProjectKey(strings.TrimSpace(project))

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	mgr, err := checkpoint.NewManager(cfg.Output.DataDirectory, project)
	if err != nil {
		ui.PrintError("Failed to open checkpoint store", err.Error())
		os.Exit(1)
	}
	return mgr, project
}

func runCheckpointShow(cmd *cobra.Command, args []string) {
	mgr, project := checkpointManagerFor(args[0])

	if !mgr.Exists() {
		fmt.Printf("No checkpoint for %s\n", project)
		return
	}

	cp, err := mgr.Load(project)
	if err != nil {
		ui.PrintError("Failed to load checkpoint", err.Error())
		os.Exit(1)
	}

	ui.PrintInfo("Project", cp.JobID)
	ui.PrintInfo("Offset", fmt.Sprintf("%d", cp.Offset))
	ui.PrintInfo("Issues emitted", fmt.Sprintf("%d", cp.ProcessedCount()))
	ui.PrintInfo("Updated", cp.UpdatedAt.Format("2006-01-02 15:04:05"))
	ui.PrintInfo("Path", mgr.Path())
}

func runCheckpointClear(cmd *cobra.Command, args []string) {
	mgr, project := checkpointManagerFor(args[0])

	if !mgr.Exists() {
		fmt.Printf("No checkpoint for %s\n", project)
		return
	}

	if err := mgr.Delete(); err != nil {
		ui.PrintError("Failed to delete checkpoint", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Checkpoint cleared: " + project)
}
