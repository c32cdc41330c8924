package session

import (
	"strings"
	"testing"

	"github.com/warroom-dev/warroom/internal/errors"
)

func completedRecord() *Record {
	record := NewRecord("Should we adopt a service mesh for east-west traffic?", testConfiguration())
	record.Status = StatusCompleted
	record.MerkleDAG.RootHash = "deadbeef"
	record.Metrics.ExpertsConsulted = 5
	record.FinalDecision = &FinalDecision{
		SelectedApproach: "Adopt incrementally behind a feature flag",
		Rationale:        "Lowest blast radius with a clean rollback path.",
		DissentingViews:  []string{"Red team prefers deferring a quarter"},
		WatchPoints:      []string{"p99 latency on the payments path"},
	}
	return record
}

func TestExportDecisionSummary(t *testing.T) {
	summary, err := ExportDecisionSummary(completedRecord())
	if err != nil {
		t.Fatalf("ExportDecisionSummary: %v", err)
	}
	if !strings.HasPrefix(summary.Title, "Decision: Should we adopt a service mesh") {
		t.Errorf("title = %q", summary.Title)
	}
	for _, want := range []string{
		"Adopt incrementally behind a feature flag",
		"## Dissenting Views",
		"Red team prefers deferring a quarter",
		"## Watch Points",
		"p99 latency on the payments path",
		"root hash `deadbeef`",
	} {
		if !strings.Contains(summary.Body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if len(summary.Labels) == 0 || summary.Labels[0] != "war-room" {
		t.Errorf("labels = %v", summary.Labels)
	}
}

func TestExportDecisionSummaryLabels(t *testing.T) {
	record := completedRecord()
	record.FinalDecision.Overridden = true
	record.Configuration.Escalated = true

	summary, err := ExportDecisionSummary(record)
	if err != nil {
		t.Fatalf("ExportDecisionSummary: %v", err)
	}
	has := func(label string) bool {
		for _, l := range summary.Labels {
			if l == label {
				return true
			}
		}
		return false
	}
	if !has("commander-override") {
		t.Errorf("labels %v missing commander-override", summary.Labels)
	}
	if !has("escalated") {
		t.Errorf("labels %v missing escalated", summary.Labels)
	}
}

func TestExportDecisionSummaryRequiresCompletion(t *testing.T) {
	for _, status := range []Status{StatusInProgress, StatusCancelled, StatusFailed} {
		t.Run(string(status), func(t *testing.T) {
			record := completedRecord()
			record.Status = status
			if _, err := ExportDecisionSummary(record); !errors.Is(err, errors.ErrSessionNotConcluded) {
				t.Errorf("status %s: error = %v, want ErrSessionNotConcluded", status, err)
			}
		})
	}
}

func TestExportDecisionSummaryTitleTruncation(t *testing.T) {
	record := completedRecord()
	record.Problem = strings.Repeat("x", 300) + "\nsecond line"
	summary, err := ExportDecisionSummary(record)
	if err != nil {
		t.Fatalf("ExportDecisionSummary: %v", err)
	}
	if len(summary.Title) > len("Decision: ")+120 {
		t.Errorf("title too long: %d chars", len(summary.Title))
	}
	if strings.Contains(summary.Title, "second line") {
		t.Error("title should only use the first line of the problem")
	}
}
