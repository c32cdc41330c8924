package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/warroom-dev/warroom/internal/dag"
	"github.com/warroom-dev/warroom/internal/session"
)

func watchRecord(unsealed bool) *session.Record {
	record := session.NewRecord("Test problem statement", session.Configuration{Mode: "blitz", Rounds: 1, Quorum: 1})
	record.CurrentPhase = "voting"
	record.Phase("intelligence").Status = "completed"

	node := &dag.Node{
		NodeID:         "node-1",
		Round:          1,
		Phase:          "intelligence",
		AnonymousLabel: "Response A",
		Content:        "First line of the contribution.\nSecond line.",
		Timestamp:      time.Now(),
	}
	if unsealed {
		node.ExpertRole = "intel-officer"
		node.ExpertModel = "sonnet-test"
	}
	record.MerkleDAG = dag.Snapshot{
		Unsealed: unsealed,
		Nodes:    map[string]*dag.Node{node.NodeID: node},
	}
	return record
}

func TestContributionLines_SealedHidesIdentity(t *testing.T) {
	lines := contributionLines(watchRecord(false))
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if strings.Contains(lines[0], "intel-officer") {
		t.Error("sealed view leaked expert role")
	}
	if !strings.Contains(lines[0], "Response A") {
		t.Error("line missing anonymous label")
	}
	if strings.Contains(lines[0], "Second line") {
		t.Error("line should show only the first line of content")
	}
}

func TestContributionLines_UnsealedShowsIdentity(t *testing.T) {
	lines := contributionLines(watchRecord(true))
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if !strings.Contains(lines[0], "intel-officer") || !strings.Contains(lines[0], "sonnet-test") {
		t.Errorf("unsealed view missing identity: %s", lines[0])
	}
}

func TestRenderBody(t *testing.T) {
	m := Model{record: watchRecord(false)}
	body := m.renderBody()
	for _, want := range []string{"Test problem statement", "intelligence", "Response A"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}

	record := watchRecord(true)
	record.Status = session.StatusCompleted
	record.FinalDecision = &session.FinalDecision{SelectedApproach: "Response A"}
	record.MerkleDAG.RootHash = "cafef00d"
	m = Model{record: record}
	body = m.renderBody()
	if !strings.Contains(body, "Decision") || !strings.Contains(body, "cafef00d") {
		t.Errorf("body missing decision section: %s", body)
	}
}
