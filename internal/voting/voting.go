// Package voting implements the hybrid voting-then-synthesis aggregation
// used by the war room: each expert submits a ranked ballot, ballots are
// aggregated with a Borda count into a deterministic ranking, and the top
// candidates become finalists for the synthesis phase. A designated supreme
// commander may override the top-ranked outcome with a written, auditable
// justification.
package voting

import (
	"sort"
	"strings"

	"github.com/warroom-dev/warroom/internal/errors"
)

// Ballot is one expert's ranked vote: approach identifiers ordered from
// most to least preferred, attributed to an anonymous label.
type Ballot struct {
	// Label is the voter's rotating pseudonym for the round.
	Label string `json:"label"`
	// Ranking lists approach IDs from most to least preferred.
	Ranking []string `json:"ranking"`
}

// Score is one candidate's aggregated Borda score.
type Score struct {
	ApproachID string `json:"approach_id"`
	Points     int    `json:"points"`
}

// Result is the output of aggregation: the full ranking with scores and the
// finalists passed to synthesis.
type Result struct {
	// Ranking holds every candidate in descending score order. Ties are
	// broken by the order candidates first appeared across ballots.
	Ranking []Score `json:"ranking"`
	// Finalists are the top-ranked approach IDs.
	Finalists []string `json:"finalists"`
	// Ballots is the number of ballots aggregated.
	Ballots int `json:"ballots"`
}

// DefaultFinalists is the number of top candidates promoted to synthesis
// when the configured value is out of the allowed 2–3 band.
const DefaultFinalists = 2

// Aggregate computes Borda scores across the given ballots. For a ballot
// ranking n candidates, the top-ranked candidate receives n points, the
// second n-1, down to 1 for the last. Candidates missing from a ballot
// receive no points from it.
//
// The ranking is fully deterministic: descending score, with ties broken by
// first appearance across ballots in submission order, never randomly.
func Aggregate(ballots []Ballot, finalists int) (*Result, error) {
	if len(ballots) == 0 {
		return nil, errors.NewVotingError("cannot aggregate", errors.ErrNoBallots)
	}
	if finalists < 2 || finalists > 3 {
		finalists = DefaultFinalists
	}

	points := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0

	for _, ballot := range ballots {
		n := len(ballot.Ranking)
		for pos, id := range ballot.Ranking {
			if _, seen := firstSeen[id]; !seen {
				firstSeen[id] = order
				order++
			}
			points[id] += n - pos
		}
	}

	ranking := make([]Score, 0, len(points))
	for id, pts := range points {
		ranking = append(ranking, Score{ApproachID: id, Points: pts})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].Points != ranking[j].Points {
			return ranking[i].Points > ranking[j].Points
		}
		return firstSeen[ranking[i].ApproachID] < firstSeen[ranking[j].ApproachID]
	})

	if finalists > len(ranking) {
		finalists = len(ranking)
	}
	top := make([]string, finalists)
	for i := 0; i < finalists; i++ {
		top[i] = ranking[i].ApproachID
	}

	return &Result{
		Ranking:   ranking,
		Finalists: top,
		Ballots:   len(ballots),
	}, nil
}

// Override records a supreme commander decision that supersedes the
// top-ranked outcome. The written justification is mandatory; empty or
// whitespace-only text fails with ErrMissingJustification.
type Override struct {
	ApproachID    string `json:"approach_id"`
	Justification string `json:"justification"`
}

// NewOverride validates and constructs an override. Valid triggers are
// policy, not mechanics: domain-expert dissent, a popular-but-flawed
// convergence, or strategic context outside the voting scope.
func NewOverride(approachID, justification string) (*Override, error) {
	if strings.TrimSpace(justification) == "" {
		return nil, errors.NewVotingError("override rejected", errors.ErrMissingJustification)
	}
	if strings.TrimSpace(approachID) == "" {
		return nil, errors.NewValidationError("approach_id", "override must select an approach")
	}
	return &Override{
		ApproachID:    approachID,
		Justification: justification,
	}, nil
}
