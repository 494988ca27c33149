package sink

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testRecord struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

func TestAppendWritesOneJSONLinePerRecord(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "issues.jsonl")

	w, err := NewWriter(outPath)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer w.Close()

	records := []testRecord{
		{Key: "HADOOP-1", Title: "first"},
		{Key: "HADOOP-2", Title: "second"},
		{Key: "HADOOP-3", Title: "third"},
	}
	for _, r := range records {
		if err := w.Append(r); err != nil {
			t.Fatalf("Failed to append %s: %v", r.Key, err)
		}
	}

	// Records are visible in the working file before finalize
	lines := readLines(t, w.WorkPath())
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines in working file, got %d", len(lines))
	}
	for i, line := range lines {
		var got testRecord
		if err := json.Unmarshal([]byte(line), &got); err != nil {
			t.Fatalf("Line %d is not valid JSON: %v", i, err)
		}
		if got.Key != records[i].Key {
			t.Errorf("Line %d: expected key %s, got %s", i, records[i].Key, got.Key)
		}
	}
}

func TestWorkingFileAccumulatesAcrossRuns(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "issues.jsonl")

	w1, err := NewWriter(outPath)
	if err != nil {
		t.Fatalf("Failed to create first writer: %v", err)
	}
	if err := w1.Append(testRecord{Key: "A"}); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
	if err := w1.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}

	// A second run over the same output path resumes the same working file
	w2, err := NewWriter(outPath)
	if err != nil {
		t.Fatalf("Failed to create second writer: %v", err)
	}
	if err := w2.Append(testRecord{Key: "B"}); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}

	lines := readLines(t, w2.WorkPath())
	if len(lines) != 2 {
		t.Fatalf("Expected 2 accumulated lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"A"`) || !strings.Contains(lines[1], `"B"`) {
		t.Errorf("Expected records in append order, got %v", lines)
	}

	if err := w2.Finalize(); err != nil {
		t.Fatalf("Failed to finalize: %v", err)
	}
}

func TestFinalizePreservesPreviousOutput(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "issues.jsonl")

	// A previous completed output already sits at the final path
	if err := os.WriteFile(outPath, []byte("old content\n"), 0644); err != nil {
		t.Fatalf("Failed to seed previous output: %v", err)
	}

	w, err := NewWriter(outPath)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	if err := w.Append(testRecord{Key: "NEW-1"}); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Failed to finalize: %v", err)
	}

	backup, err := os.ReadFile(outPath + ".bak")
	if err != nil {
		t.Fatalf("Expected backup file: %v", err)
	}
	if string(backup) != "old content\n" {
		t.Errorf("Backup does not carry the previous output: %q", backup)
	}

	final, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Expected finalized output: %v", err)
	}
	if !strings.Contains(string(final), "NEW-1") {
		t.Errorf("Finalized output missing new record: %q", final)
	}

	// The working file is gone after finalize
	if _, err := os.Stat(w.WorkPath()); !os.IsNotExist(err) {
		t.Error("Expected working file to be renamed away")
	}
}

func TestFinalizeWithoutPreviousOutputCreatesNoBackup(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "issues.jsonl")

	w, err := NewWriter(outPath)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	if err := w.Append(testRecord{Key: "X-1"}); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Failed to finalize: %v", err)
	}

	if _, err := os.Stat(outPath + ".bak"); !os.IsNotExist(err) {
		t.Error("Expected no backup file when no prior output existed")
	}
}

func TestAppendAfterCloseFails(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "issues.jsonl")

	w, err := NewWriter(outPath)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}

	if err := w.Append(testRecord{Key: "Y"}); err == nil {
		t.Error("Expected error appending to a closed sink")
	}
}
