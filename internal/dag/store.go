package dag

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warroom-dev/warroom/internal/errors"
	"github.com/warroom-dev/warroom/internal/hashing"
)

// Store is the session-scoped Merkle-DAG of deliberation contributions.
// It is owned exclusively by one session, mutated only by appending nodes,
// and safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	nodes map[string]*Node

	// labels maps (round, phase, role) to the pseudonym assigned to that
	// expert, so revisions within a round keep their original label.
	labels map[labelKey]string
	// labelCounts tracks how many labels have been issued per round/phase.
	labelCounts map[countKey]int

	concluded bool
	sealed    bool // false once Unseal has succeeded
	rootHash  string
}

type labelKey struct {
	round int
	phase string
	role  string
}

type countKey struct {
	round int
	phase string
}

// NewStore creates an empty, sealed node store for a new session.
func NewStore() *Store {
	return &Store{
		nodes:       make(map[string]*Node),
		labels:      make(map[labelKey]string),
		labelCounts: make(map[countKey]int),
		sealed:      true,
	}
}

// AddNode computes the content-addressed identity for a contribution and
// appends it to the store. Insertion is idempotent: a byte-identical
// contribution with the same lineage returns the existing node. An identical
// node id with different parent lineage fails with ErrDuplicateNode.
//
// A rotating anonymous label is assigned per (round, phase, role); a
// revision by the same expert in the same round keeps its original label.
func (s *Store) AddNode(content, expertRole, expertModel string, round int, phase, parentID string) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sealed {
		return nil, errors.NewNodeError("store is unsealed and read-only", errors.ErrSessionClosed)
	}

	contentHash := ContentHashOf(content)
	metadataHash := MetadataHashOf(expertRole, expertModel)
	nodeID := NodeIDOf(contentHash, metadataHash)

	if existing, ok := s.nodes[nodeID]; ok {
		if existing.ParentID == parentID {
			// Retried call with identical content, metadata and lineage.
			return existing, nil
		}
		return nil, errors.NewNodeError(
			fmt.Sprintf("node exists with parent %q, got %q", shortID(existing.ParentID), shortID(parentID)),
			errors.ErrDuplicateNode,
		).WithNodeID(nodeID)
	}

	if parentID != "" {
		if _, ok := s.nodes[parentID]; !ok {
			return nil, errors.NewNodeError("revision parent does not exist", errors.ErrNodeNotFound).WithNodeID(parentID)
		}
	}

	node := &Node{
		NodeID:         nodeID,
		ParentID:       parentID,
		Round:          round,
		Phase:          phase,
		AnonymousLabel: s.assignLabel(round, phase, expertRole),
		Content:        content,
		ExpertRole:     expertRole,
		ExpertModel:    expertModel,
		ContentHash:    contentHash,
		MetadataHash:   metadataHash,
		Timestamp:      time.Now().UTC(),
	}
	s.nodes[nodeID] = node
	return node, nil
}

// assignLabel returns the pseudonym for an expert in a round/phase,
// issuing the next rotating label on first use. Caller holds the lock.
func (s *Store) assignLabel(round int, phase, role string) string {
	lk := labelKey{round: round, phase: phase, role: role}
	if label, ok := s.labels[lk]; ok {
		return label
	}

	ck := countKey{round: round, phase: phase}
	n := s.labelCounts[ck]
	s.labelCounts[ck] = n + 1

	label := fmt.Sprintf("Response %s", letterLabel(n))
	s.labels[lk] = label
	return label
}

// letterLabel converts an index to A, B, ..., Z, AA, AB, ...
func letterLabel(n int) string {
	label := ""
	for {
		label = string(rune('A'+n%26)) + label
		n = n/26 - 1
		if n < 0 {
			return label
		}
	}
}

// Get returns the node with the given id.
func (s *Store) Get(nodeID string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[nodeID]
	if !ok {
		return nil, errors.NewNodeError("lookup failed", errors.ErrNodeNotFound).WithNodeID(nodeID)
	}
	return node, nil
}

// Len returns the number of nodes in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// AnonymizedView returns every node projected to its anonymized fields,
// ordered by (round, phase, node id) for determinism.
func (s *Store) AnonymizedView() []AnonymizedNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := s.orderedNodes()
	view := make([]AnonymizedNode, len(ordered))
	for i, n := range ordered {
		view[i] = n.anonymized()
	}
	return view
}

// Unseal reveals true authorship for every node. It is a one-way,
// session-terminal operation: it fails with ErrSessionNotConcluded until a
// final decision has been recorded, and with ErrAlreadyUnsealed on any call
// after the first successful one.
func (s *Store) Unseal() ([]UnsealedNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.concluded {
		return nil, errors.NewNodeError("cannot unseal", errors.ErrSessionNotConcluded)
	}
	if !s.sealed {
		return nil, errors.NewNodeError("cannot unseal twice", errors.ErrAlreadyUnsealed)
	}
	s.sealed = false

	ordered := s.orderedNodes()
	view := make([]UnsealedNode, len(ordered))
	for i, n := range ordered {
		view[i] = n.unsealed()
	}
	return view, nil
}

// Unsealed reports whether Unseal has succeeded.
func (s *Store) Unsealed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.sealed
}

// MarkConcluded records that a final decision exists, gating Unseal.
func (s *Store) MarkConcluded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.concluded = true
}

// Concluded reports whether a final decision has been recorded.
func (s *Store) Concluded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.concluded
}

// ComputeRootHash digests the sorted list of all node ids. Once the session
// has concluded the first computed value is stored and returned immutably
// by subsequent calls.
func (s *Store) ComputeRootHash() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rootHash != "" {
		return s.rootHash
	}

	ids := make([]string, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	root := hashing.DigestStrings(ids...)
	if s.concluded {
		s.rootHash = root
	}
	return root
}

// orderedNodes returns all nodes sorted by (round, phase, node id).
// Caller holds at least a read lock.
func (s *Store) orderedNodes() []*Node {
	ordered := make([]*Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		ordered = append(ordered, n)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		if a.Phase != b.Phase {
			return a.Phase < b.Phase
		}
		return a.NodeID < b.NodeID
	})
	return ordered
}

// Snapshot is the serialized form of a Store, embedded wholesale in the
// session record at every persist.
type Snapshot struct {
	RootHash  string           `json:"root_hash,omitempty"`
	Concluded bool             `json:"concluded"`
	Unsealed  bool             `json:"unsealed"`
	Nodes     map[string]*Node `json:"nodes"`
}

// Snapshot returns a deep-enough copy of the store for serialization.
// Nodes are immutable, so sharing pointers is safe.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make(map[string]*Node, len(s.nodes))
	for id, n := range s.nodes {
		nodes[id] = n
	}
	return Snapshot{
		RootHash:  s.rootHash,
		Concluded: s.concluded,
		Unsealed:  !s.sealed,
		Nodes:     nodes,
	}
}

// sealedNode is the on-disk form of a node while the store is sealed. It
// carries everything needed to inspect and verify the DAG except the
// expert's identity.
type sealedNode struct {
	NodeID         string    `json:"node_id"`
	ParentID       string    `json:"parent_id,omitempty"`
	Round          int       `json:"round_number"`
	Phase          string    `json:"phase"`
	AnonymousLabel string    `json:"anonymous_label"`
	Content        string    `json:"content"`
	ContentHash    string    `json:"content_hash"`
	MetadataHash   string    `json:"metadata_hash"`
	Timestamp      time.Time `json:"timestamp"`
}

// MarshalJSON redacts expert identity from every node until the store has
// been unsealed. The in-memory snapshot keeps full fidelity; only the
// serialized form is anonymized, so a persisted session record never leaks
// role or model ahead of disclosure.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	if s.Unsealed {
		type full Snapshot
		return json.Marshal(full(s))
	}

	sealed := make(map[string]sealedNode, len(s.Nodes))
	for id, n := range s.Nodes {
		sealed[id] = sealedNode{
			NodeID:         n.NodeID,
			ParentID:       n.ParentID,
			Round:          n.Round,
			Phase:          n.Phase,
			AnonymousLabel: n.AnonymousLabel,
			Content:        n.Content,
			ContentHash:    n.ContentHash,
			MetadataHash:   n.MetadataHash,
			Timestamp:      n.Timestamp,
		}
	}
	return json.Marshal(struct {
		RootHash  string                `json:"root_hash,omitempty"`
		Concluded bool                  `json:"concluded"`
		Unsealed  bool                  `json:"unsealed"`
		Nodes     map[string]sealedNode `json:"nodes"`
	}{
		RootHash:  s.RootHash,
		Concluded: s.Concluded,
		Unsealed:  s.Unsealed,
		Nodes:     sealed,
	})
}

// Restore rebuilds a store from a snapshot, re-deriving label assignments
// so later appends continue the rotation where the session left off.
func Restore(snap Snapshot) *Store {
	s := NewStore()
	s.concluded = snap.Concluded
	s.sealed = !snap.Unsealed
	s.rootHash = snap.RootHash

	for id, n := range snap.Nodes {
		s.nodes[id] = n
		lk := labelKey{round: n.Round, phase: n.Phase, role: n.ExpertRole}
		if _, ok := s.labels[lk]; !ok {
			s.labels[lk] = n.AnonymousLabel
			ck := countKey{round: n.Round, phase: n.Phase}
			s.labelCounts[ck]++
		}
	}
	return s
}

// VerifyRootHash rebuilds a store from the snapshot's node set, recomputes
// its root digest and compares it against the recorded value. The digest
// covers node ids only, so verification works on sealed snapshots too.
// A snapshot without a recorded root hash cannot be verified.
func VerifyRootHash(snap Snapshot) bool {
	want := snap.RootHash
	if want == "" {
		return false
	}
	snap.RootHash = ""
	return Restore(snap).ComputeRootHash() == want
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	if id == "" {
		return "<none>"
	}
	return id
}
