// Package dag implements the append-only, content-addressed node store that
// records every contribution made during a deliberation session.
//
// Each contribution is stored as an immutable Node whose identifier is
// derived from its content and author metadata. Revisions never mutate
// existing nodes; they append a new node whose ParentID points at the prior
// version. The store exposes two read projections: an anonymized view used
// during deliberation, and an unsealed view that reveals true authorship
// once the session has concluded.
package dag

import (
	"time"

	"github.com/warroom-dev/warroom/internal/hashing"
)

// Node is one versioned contribution in the deliberation DAG.
// Nodes are immutable after creation.
type Node struct {
	// NodeID is the digest of ContentHash and MetadataHash. It binds
	// identity and content together without revealing either while the
	// store is sealed.
	NodeID string `json:"node_id"`

	// ParentID references the node this one revises. Empty for
	// first-version nodes.
	ParentID string `json:"parent_id,omitempty"`

	Round int    `json:"round_number"`
	Phase string `json:"phase"`

	// AnonymousLabel is the rotating pseudonym assigned per round and
	// phase, used for all display and voting during deliberation.
	AnonymousLabel string `json:"anonymous_label"`

	// Content is the contribution text, stored verbatim.
	Content string `json:"content"`

	// ExpertRole and ExpertModel are the true identity, withheld from all
	// consumers until the store is unsealed.
	ExpertRole  string `json:"expert_role"`
	ExpertModel string `json:"expert_model"`

	ContentHash  string `json:"content_hash"`
	MetadataHash string `json:"metadata_hash"`

	Timestamp time.Time `json:"timestamp"`
}

// AnonymizedNode is the projection of a node exposed while the store is
// sealed. It never carries the expert's role or model.
type AnonymizedNode struct {
	NodeID         string `json:"node_id"`
	Round          int    `json:"round_number"`
	Phase          string `json:"phase"`
	AnonymousLabel string `json:"anonymous_label"`
	Content        string `json:"content"`
}

// UnsealedNode is the full projection returned after a successful unseal.
type UnsealedNode struct {
	AnonymizedNode
	ExpertRole  string `json:"expert_role"`
	ExpertModel string `json:"expert_model"`
}

// ContentHashOf computes the digest of a contribution's text alone.
func ContentHashOf(content string) string {
	return hashing.DigestStrings(content)
}

// MetadataHashOf computes the digest of an expert's role and model.
func MetadataHashOf(role, model string) string {
	return hashing.DigestStrings(role, model)
}

// NodeIDOf computes a node identifier from its two component hashes.
func NodeIDOf(contentHash, metadataHash string) string {
	return hashing.DigestStrings(contentHash, metadataHash)
}

func (n *Node) anonymized() AnonymizedNode {
	return AnonymizedNode{
		NodeID:         n.NodeID,
		Round:          n.Round,
		Phase:          n.Phase,
		AnonymousLabel: n.AnonymousLabel,
		Content:        n.Content,
	}
}

func (n *Node) unsealed() UnsealedNode {
	return UnsealedNode{
		AnonymizedNode: n.anonymized(),
		ExpertRole:     n.ExpertRole,
		ExpertModel:    n.ExpertModel,
	}
}
