package dag

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/warroom-dev/warroom/internal/errors"
)

func addTestNode(t *testing.T, s *Store, content, role string) *Node {
	t.Helper()
	node, err := s.AddNode(content, role, "model-x", 1, "intelligence", "")
	if err != nil {
		t.Fatalf("AddNode(%q, %q) failed: %v", content, role, err)
	}
	return node
}

func TestAddNode_DeterministicIdentity(t *testing.T) {
	a, err := NewStore().AddNode("use sqlite", "db-lead", "model-x", 1, "assessment", "")
	if err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	b, err := NewStore().AddNode("use sqlite", "db-lead", "model-x", 1, "assessment", "")
	if err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}

	if a.NodeID != b.NodeID {
		t.Errorf("identical input produced different node ids: %s vs %s", a.NodeID, b.NodeID)
	}
	if a.NodeID != NodeIDOf(a.ContentHash, a.MetadataHash) {
		t.Error("node id does not bind content hash and metadata hash")
	}
}

func TestAddNode_IdempotentOnRetry(t *testing.T) {
	store := NewStore()

	first := addTestNode(t, store, "brief", "intel-officer")
	second, err := store.AddNode("brief", "intel-officer", "model-x", 1, "intelligence", "")
	if err != nil {
		t.Fatalf("retried AddNode failed: %v", err)
	}

	if first.NodeID != second.NodeID {
		t.Error("retried insert returned a different node id")
	}
	if store.Len() != 1 {
		t.Errorf("store has %d nodes after retry, want 1", store.Len())
	}
}

func TestAddNode_ConflictingLineageRejected(t *testing.T) {
	store := NewStore()

	base := addTestNode(t, store, "v1", "intel-officer")
	addTestNode(t, store, "other", "logistics")

	if _, err := store.AddNode("v1", "intel-officer", "model-x", 1, "intelligence", base.NodeID); !errors.Is(err, errors.ErrDuplicateNode) {
		t.Errorf("conflicting lineage error = %v, want ErrDuplicateNode", err)
	}
	if store.Len() != 2 {
		t.Errorf("failed insert mutated the store: %d nodes, want 2", store.Len())
	}
}

func TestAddNode_RevisionChain(t *testing.T) {
	store := NewStore()

	v1 := addTestNode(t, store, "draft", "intel-officer")
	v2, err := store.AddNode("draft, revised", "intel-officer", "model-x", 1, "intelligence", v1.NodeID)
	if err != nil {
		t.Fatalf("revision AddNode failed: %v", err)
	}

	if v2.ParentID != v1.NodeID {
		t.Errorf("revision parent = %q, want %q", v2.ParentID, v1.NodeID)
	}
	if v2.AnonymousLabel != v1.AnonymousLabel {
		t.Errorf("revision label = %q, want parent's label %q", v2.AnonymousLabel, v1.AnonymousLabel)
	}

	// Original node untouched.
	got, err := store.Get(v1.NodeID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Content != "draft" {
		t.Errorf("original content changed to %q", got.Content)
	}
}

func TestAddNode_UnknownParentRejected(t *testing.T) {
	store := NewStore()
	if _, err := store.AddNode("x", "r", "m", 1, "assessment", "no-such-node"); !errors.Is(err, errors.ErrNodeNotFound) {
		t.Errorf("unknown parent error = %v, want ErrNodeNotFound", err)
	}
}

func TestLabels_RotatePerRoundAndPhase(t *testing.T) {
	store := NewStore()

	a, _ := store.AddNode("one", "intel-officer", "m", 1, "assessment", "")
	b, _ := store.AddNode("two", "logistics", "m", 1, "assessment", "")
	c, _ := store.AddNode("three", "intel-officer", "m", 2, "assessment", "")

	if a.AnonymousLabel != "Response A" {
		t.Errorf("first label = %q, want Response A", a.AnonymousLabel)
	}
	if b.AnonymousLabel != "Response B" {
		t.Errorf("second label = %q, want Response B", b.AnonymousLabel)
	}
	// A new round restarts the rotation.
	if c.AnonymousLabel != "Response A" {
		t.Errorf("new round label = %q, want Response A", c.AnonymousLabel)
	}
}

func TestLetterLabel_WrapsPastZ(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "A"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
	}
	for _, tt := range tests {
		if got := letterLabel(tt.n); got != tt.want {
			t.Errorf("letterLabel(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestAnonymizedView_OrderAndFields(t *testing.T) {
	store := NewStore()
	store.AddNode("r2", "intel-officer", "m", 2, "assessment", "")
	store.AddNode("r1-b", "logistics", "m", 1, "redteam", "")
	store.AddNode("r1-a", "intel-officer", "m", 1, "assessment", "")

	view := store.AnonymizedView()
	if len(view) != 3 {
		t.Fatalf("view has %d nodes, want 3", len(view))
	}

	// Ordered by (round, phase, node id).
	if view[0].Round != 1 || view[0].Phase != "assessment" {
		t.Errorf("first node = round %d phase %s, want round 1 assessment", view[0].Round, view[0].Phase)
	}
	if view[1].Phase != "redteam" {
		t.Errorf("second node phase = %s, want redteam", view[1].Phase)
	}
	if view[2].Round != 2 {
		t.Errorf("third node round = %d, want 2", view[2].Round)
	}
}

func TestUnseal_GatedOneWay(t *testing.T) {
	store := NewStore()
	addTestNode(t, store, "brief", "intel-officer")

	if _, err := store.Unseal(); !errors.Is(err, errors.ErrSessionNotConcluded) {
		t.Errorf("premature unseal error = %v, want ErrSessionNotConcluded", err)
	}

	store.MarkConcluded()

	full, err := store.Unseal()
	if err != nil {
		t.Fatalf("Unseal failed: %v", err)
	}
	if full[0].ExpertRole != "intel-officer" || full[0].ExpertModel != "model-x" {
		t.Errorf("unsealed node identity = %s/%s, want intel-officer/model-x", full[0].ExpertRole, full[0].ExpertModel)
	}

	if _, err := store.Unseal(); !errors.Is(err, errors.ErrAlreadyUnsealed) {
		t.Errorf("second unseal error = %v, want ErrAlreadyUnsealed", err)
	}
}

func TestAddNode_RejectedAfterUnseal(t *testing.T) {
	store := NewStore()
	addTestNode(t, store, "brief", "intel-officer")
	store.MarkConcluded()
	if _, err := store.Unseal(); err != nil {
		t.Fatalf("Unseal failed: %v", err)
	}

	if _, err := store.AddNode("late", "logistics", "m", 1, "synthesis", ""); !errors.Is(err, errors.ErrSessionClosed) {
		t.Errorf("post-unseal insert error = %v, want ErrSessionClosed", err)
	}
}

func TestComputeRootHash_StableAndFixedAtConclusion(t *testing.T) {
	store := NewStore()
	addTestNode(t, store, "one", "intel-officer")
	addTestNode(t, store, "two", "logistics")

	before := store.ComputeRootHash()
	if before != store.ComputeRootHash() {
		t.Error("root hash unstable across calls on identical content")
	}

	store.MarkConcluded()
	fixed := store.ComputeRootHash()
	if fixed != before {
		t.Error("conclusion changed the root hash with no new nodes")
	}
	if store.ComputeRootHash() != fixed {
		t.Error("root hash changed after being fixed at conclusion")
	}
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	store := NewStore()
	v1 := addTestNode(t, store, "draft", "intel-officer")
	addTestNode(t, store, "other", "logistics")
	store.MarkConcluded()
	root := store.ComputeRootHash()

	restored := Restore(store.Snapshot())

	if restored.Len() != 2 {
		t.Fatalf("restored store has %d nodes, want 2", restored.Len())
	}
	if !restored.Concluded() {
		t.Error("restored store lost concluded flag")
	}
	if restored.ComputeRootHash() != root {
		t.Error("restored root hash differs")
	}

	// Label rotation continues: the next new expert in round 1
	// intelligence gets Response C, not Response A.
	n, err := restored.AddNode("late entry", "medic", "m", 1, "intelligence", "")
	if err != nil {
		t.Fatalf("AddNode on restored store failed: %v", err)
	}
	_ = v1
	if n.AnonymousLabel != "Response C" {
		t.Errorf("restored label rotation = %q, want Response C", n.AnonymousLabel)
	}
}

func TestVerifyRootHash(t *testing.T) {
	store := NewStore()
	addTestNode(t, store, "hold the line", "intel-officer")
	addTestNode(t, store, "probe the flank", "logistics")
	store.MarkConcluded()
	store.ComputeRootHash()

	snap := store.Snapshot()
	if !VerifyRootHash(snap) {
		t.Error("intact snapshot failed verification")
	}

	tampered := store.Snapshot()
	for id := range tampered.Nodes {
		delete(tampered.Nodes, id)
		break
	}
	if VerifyRootHash(tampered) {
		t.Error("snapshot with a removed node passed verification")
	}

	unconcluded := NewStore().Snapshot()
	if VerifyRootHash(unconcluded) {
		t.Error("snapshot without a root hash passed verification")
	}
}

func TestAnonymizedView_NeverLeaksIdentity(t *testing.T) {
	store := NewStore()
	addTestNode(t, store, "sensitive analysis", "intel-officer")

	for _, n := range store.AnonymizedView() {
		// The projection type carries no identity fields; verify the
		// label is not the role itself.
		if n.AnonymousLabel == "intel-officer" {
			t.Error("anonymous label leaked the expert role")
		}
	}
}

func TestSnapshotJSON_RedactsIdentityWhileSealed(t *testing.T) {
	store := NewStore()
	addTestNode(t, store, "sealed contribution", "intel-officer")

	data, err := json.Marshal(store.Snapshot())
	if err != nil {
		t.Fatalf("marshal sealed snapshot: %v", err)
	}
	if strings.Contains(string(data), "intel-officer") || strings.Contains(string(data), "model-x") {
		t.Fatalf("sealed snapshot leaked expert identity: %s", data)
	}
	if !strings.Contains(string(data), "sealed contribution") {
		t.Error("sealed snapshot missing node content")
	}

	store.MarkConcluded()
	store.ComputeRootHash()
	if _, err := store.Unseal(); err != nil {
		t.Fatalf("Unseal: %v", err)
	}

	data, err = json.Marshal(store.Snapshot())
	if err != nil {
		t.Fatalf("marshal unsealed snapshot: %v", err)
	}
	if !strings.Contains(string(data), "intel-officer") || !strings.Contains(string(data), "model-x") {
		t.Errorf("unsealed snapshot should reveal role and model: %s", data)
	}
}
