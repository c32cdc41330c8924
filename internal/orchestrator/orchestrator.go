// Package orchestrator drives a deliberation session through its phase
// state machine: concurrent expert fan-out per phase, ranked voting over
// the candidate approaches, synthesis of the final decision, and disclosure
// of expert identities once the session closes. The session record is
// persisted at every phase boundary so the archive is always loadable.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/warroom-dev/warroom/internal/config"
	"github.com/warroom-dev/warroom/internal/dag"
	"github.com/warroom-dev/warroom/internal/errors"
	"github.com/warroom-dev/warroom/internal/event"
	"github.com/warroom-dev/warroom/internal/expert"
	"github.com/warroom-dev/warroom/internal/logging"
	"github.com/warroom-dev/warroom/internal/session"
	"github.com/warroom-dev/warroom/internal/voting"
)

// Orchestrator coordinates deliberation sessions. One orchestrator can
// drive multiple sessions over its lifetime, but each session owns its DAG
// and record exclusively while in flight.
type Orchestrator struct {
	cfg       *config.Config
	archive   *session.Store
	responder expert.Responder
	bus       *event.Bus
	logger    *logging.Logger

	mu     sync.Mutex
	active map[string]*runHandle
}

type runHandle struct {
	cancelled atomic.Bool
}

// New creates an orchestrator. The bus may be nil when no observer is
// attached; a nil logger is replaced with a no-op one.
func New(cfg *config.Config, archive *session.Store, responder expert.Responder, bus *event.Bus, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Orchestrator{
		cfg:       cfg,
		archive:   archive,
		responder: responder,
		bus:       bus,
		logger:    logger,
		active:    make(map[string]*runHandle),
	}
}

// StartOption adjusts a single session run.
type StartOption func(*runState)

// WithOverride stages a supreme commander override: during synthesis the
// given approach supersedes the top-ranked outcome. The justification is
// mandatory and the override is recorded in the DAG.
func WithOverride(approachID, justification string) StartOption {
	return func(r *runState) {
		r.override = &pendingOverride{approachID: approachID, justification: justification}
	}
}

type pendingOverride struct {
	approachID    string
	justification string
}

// runState is the per-session working set. It is confined to the goroutine
// driving the session; only the DAG store inside it is shared with the
// fan-out goroutines.
type runState struct {
	record *session.Record
	dag    *dag.Store
	roster []expert.Role
	quorum int
	logger *logging.Logger
	handle *runHandle

	// contributions tracks the node each role wrote per phase, for
	// revision lineage across rounds and for ballot attribution.
	contributions map[string]*dag.Node

	result   *voting.Result
	ballots  []voting.Ballot
	override *pendingOverride

	consulted map[string]bool
	started   time.Time
}

func contribKey(phase Phase, round int, role string) string {
	return fmt.Sprintf("%s/%d/%s", phase, round, role)
}

// StartSession validates configuration, creates the session record and
// drives the deliberation to a terminal state. It blocks until the session
// closes, fails, or is cancelled; the session id is returned even when the
// run ends in failure so callers can inspect the archive.
func (o *Orchestrator) StartSession(ctx context.Context, problem string, opts ...StartOption) (string, error) {
	if strings.TrimSpace(problem) == "" {
		return "", errors.NewValidationError("problem_statement", "cannot be empty")
	}
	if err := o.cfg.Validate(); err != nil {
		return "", err
	}
	roster, err := o.cfg.LoadRoster()
	if err != nil {
		return "", err
	}
	activeRoles := roster.Active(o.cfg.Session.Escalated)
	if len(activeRoles) == 0 {
		return "", errors.NewValidationError("roster", "no active expert roles")
	}

	record := session.NewRecord(problem, session.Configuration{
		Mode:      o.cfg.Session.Mode,
		Rounds:    o.cfg.Session.Rounds,
		Escalated: o.cfg.Session.Escalated,
		Quorum:    o.cfg.Session.Quorum,
		Roster:    roster,
	})

	sessionDir := o.archive.SessionDir(record.SessionID)
	lock, err := session.AcquireLock(sessionDir, record.SessionID, o.logger)
	if err != nil {
		return "", err
	}
	defer lock.Release()

	// Each session gets its own debug.log in the session directory; the
	// orchestrator's logger keeps covering everything outside a run.
	sessionLogger, err := logging.NewLogger(sessionDir, logging.ParseLevel(o.cfg.Logging.Level))
	if err != nil {
		return "", errors.NewSessionError("creating session log", err).WithSessionID(record.SessionID)
	}
	defer sessionLogger.Close()

	handle := &runHandle{}
	o.mu.Lock()
	o.active[record.SessionID] = handle
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		delete(o.active, record.SessionID)
		o.mu.Unlock()
	}()

	r := &runState{
		record:        record,
		dag:           dag.NewStore(),
		roster:        activeRoles,
		quorum:        clampQuorum(o.cfg.Session.Quorum, len(activeRoles)),
		logger:        sessionLogger.WithSession(record.SessionID),
		handle:        handle,
		contributions: make(map[string]*dag.Node),
		consulted:     make(map[string]bool),
		started:       time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}

	o.publish(event.NewSessionStartedEvent(record.SessionID, problem, len(activeRoles), o.cfg.Session.Escalated))
	r.logger.Info("session started",
		"mode", o.cfg.Session.Mode,
		"rounds", o.cfg.Session.Rounds,
		"experts", len(activeRoles),
		"quorum", r.quorum,
	)

	if err := o.persist(r); err != nil {
		return record.SessionID, err
	}
	return record.SessionID, o.run(ctx, r)
}

func clampQuorum(quorum, rosterSize int) int {
	if quorum < 1 {
		quorum = 1
	}
	if quorum > rosterSize {
		quorum = rosterSize
	}
	return quorum
}

// run advances the phase machine. Cancellation is honored only between
// phases so a phase join never leaves a partially written node set.
func (o *Orchestrator) run(ctx context.Context, r *runState) error {
	mode := r.record.Configuration.Mode
	rounds := r.record.Configuration.Rounds

	for round := 1; round <= rounds; round++ {
		for _, phase := range ContributionPhases(mode) {
			if err := o.checkCancelled(ctx, r, phase); err != nil {
				return err
			}
			if err := o.runContributionPhase(ctx, r, phase, round); err != nil {
				return err
			}
		}
	}

	if err := o.checkCancelled(ctx, r, PhaseVoting); err != nil {
		return err
	}
	if err := o.runVotingPhase(ctx, r, rounds); err != nil {
		return err
	}

	if mode != "blitz" {
		if err := o.checkCancelled(ctx, r, PhasePremortem); err != nil {
			return err
		}
		if err := o.runContributionPhase(ctx, r, PhasePremortem, rounds); err != nil {
			return err
		}
	}

	if err := o.checkCancelled(ctx, r, PhaseSynthesis); err != nil {
		return err
	}
	return o.runSynthesis(ctx, r, rounds)
}

// consultResult is one role's outcome for a phase join.
type consultResult struct {
	role     expert.Role
	response expert.Response
	attempts int
	err      error
}

// runContributionPhase fans out one request per active role, joins on all
// of them, appends successful contributions to the DAG and records
// abstentions for the rest. The phase fails the session only when fewer
// than quorum responses arrive.
func (o *Orchestrator) runContributionPhase(ctx context.Context, r *runState, phase Phase, round int) error {
	r.record.CurrentPhase = phase.String()
	phaseRec := r.record.Phase(phase.String())
	phaseRec.Status = "in_progress"

	o.publish(event.NewPhaseStartedEvent(r.record.SessionID, phase.String(), round, len(r.roster)))
	logger := r.logger.WithPhase(phase.String())
	logger.Info("phase started", "round", round)

	prompt := contributionPrompt(phase, r.record.Problem, round, r.dag.AnonymizedView())

	results := make([]consultResult, len(r.roster))
	var wg sync.WaitGroup
	for i, role := range r.roster {
		wg.Add(1)
		go func(i int, role expert.Role) {
			defer wg.Done()
			results[i] = o.consult(ctx, role, prompt, phase, round)
		}(i, role)
	}
	wg.Wait()

	var responded int
	for _, res := range results {
		if res.err != nil {
			phaseRec.Abstentions = append(phaseRec.Abstentions, session.Abstention{
				Role:     res.role.Name,
				Attempts: res.attempts,
				Reason:   res.err.Error(),
			})
			o.publish(event.NewExpertAbstainedEvent(r.record.SessionID, phase.String(), res.role.Name, res.attempts))
			logger.WithExpert(res.role.Name).Warn("expert abstained", "attempts", res.attempts)
			continue
		}

		parentID := ""
		if round > 1 {
			if prev, ok := r.contributions[contribKey(phase, round-1, res.role.Name)]; ok {
				parentID = prev.NodeID
			}
		}
		node, err := r.dag.AddNode(res.response.Content, res.role.Name, res.role.Model, round, phase.String(), parentID)
		if err != nil {
			return o.failSession(r, phase, err)
		}
		r.contributions[contribKey(phase, round, res.role.Name)] = node
		r.consulted[res.role.Name] = true
		o.accumulateMetrics(r, res.role.Model, res.response)
		responded++

		o.publish(event.NewExpertRespondedEvent(r.record.SessionID, phase.String(), node.AnonymousLabel, node.NodeID))
		logger.Debug("contribution recorded", "label", node.AnonymousLabel, "node_id", node.NodeID)
	}

	if responded < r.quorum {
		cause := errors.NewSessionError(
			fmt.Sprintf("phase %s: %d of %d required responses", phase, responded, r.quorum),
			errors.ErrQuorumNotMet,
		).WithSessionID(r.record.SessionID)
		return o.failSession(r, phase, cause)
	}

	phaseRec.Status = "completed"
	o.writePhaseArtifact(r, phase, round, phaseRec)
	o.publish(event.NewPhaseCompletedEvent(r.record.SessionID, phase.String(), round, responded, len(phaseRec.Abstentions)))
	logger.Info("phase completed", "responses", responded, "abstentions", len(phaseRec.Abstentions))

	return o.persist(r)
}

// runVotingPhase collects one ranked ballot per role over the candidate
// approaches, then aggregates them into the deterministic ranking used by
// synthesis. Ballots are not DAG nodes; they live in the tally artifact.
func (o *Orchestrator) runVotingPhase(ctx context.Context, r *runState, round int) error {
	r.record.CurrentPhase = PhaseVoting.String()
	phaseRec := r.record.Phase(PhaseVoting.String())
	phaseRec.Status = "in_progress"

	o.publish(event.NewPhaseStartedEvent(r.record.SessionID, PhaseVoting.String(), round, len(r.roster)))
	logger := r.logger.WithPhase(PhaseVoting.String())

	candidates := o.candidateNodes(r, round)
	if len(candidates) == 0 {
		return o.failSession(r, PhaseVoting, errors.NewVotingError("no candidate approaches to vote on", errors.ErrNoBallots))
	}
	labels := make([]string, len(candidates))
	for i, c := range candidates {
		labels[i] = c.AnonymousLabel
	}

	prompt := votingPrompt(r.record.Problem, candidates)

	results := make([]consultResult, len(r.roster))
	var wg sync.WaitGroup
	for i, role := range r.roster {
		wg.Add(1)
		go func(i int, role expert.Role) {
			defer wg.Done()
			results[i] = o.consult(ctx, role, prompt, PhaseVoting, round)
		}(i, role)
	}
	wg.Wait()

	var ballots []voting.Ballot
	for _, res := range results {
		if res.err != nil {
			phaseRec.Abstentions = append(phaseRec.Abstentions, session.Abstention{
				Role:     res.role.Name,
				Attempts: res.attempts,
				Reason:   res.err.Error(),
			})
			o.publish(event.NewExpertAbstainedEvent(r.record.SessionID, PhaseVoting.String(), res.role.Name, res.attempts))
			logger.WithExpert(res.role.Name).Warn("expert abstained", "attempts", res.attempts)
			continue
		}
		ranking := parseBallot(res.response.Content, labels)
		if len(ranking) == 0 {
			phaseRec.Abstentions = append(phaseRec.Abstentions, session.Abstention{
				Role:     res.role.Name,
				Attempts: res.attempts,
				Reason:   "ballot named no known candidate",
			})
			continue
		}
		r.consulted[res.role.Name] = true
		o.accumulateMetrics(r, res.role.Model, res.response)
		ballots = append(ballots, voting.Ballot{
			Label:   o.voterLabel(r, res.role.Name, round),
			Ranking: ranking,
		})
	}

	if len(ballots) < r.quorum {
		cause := errors.NewVotingError(
			fmt.Sprintf("%d of %d required ballots", len(ballots), r.quorum),
			errors.ErrQuorumNotMet,
		)
		return o.failSession(r, PhaseVoting, cause)
	}

	result, err := voting.Aggregate(ballots, o.cfg.Voting.Finalists)
	if err != nil {
		return o.failSession(r, PhaseVoting, err)
	}
	r.result = result
	r.ballots = ballots

	ranking := make([]string, len(result.Ranking))
	for i, s := range result.Ranking {
		ranking[i] = s.ApproachID
	}
	o.publish(event.NewVotesTalliedEvent(r.record.SessionID, round, len(ballots), ranking, result.Finalists))
	logger.Info("votes tallied", "ballots", len(ballots), "winner", ranking[0], "finalists", result.Finalists)

	phaseRec.Status = "completed"
	if body, err := renderArtifact(artifactHeader{
		SessionID:   r.record.SessionID,
		Phase:       PhaseVoting.String(),
		Round:       round,
		Status:      phaseRec.Status,
		GeneratedAt: time.Now().UTC(),
	}, tallyBody(result, ballots)); err == nil {
		if rel, err := o.archive.SaveArtifact(r.record.SessionID, PhaseVoting.String(), "tally.md", body); err == nil {
			phaseRec.Artifacts = append(phaseRec.Artifacts, rel)
		}
	}

	o.publish(event.NewPhaseCompletedEvent(r.record.SessionID, PhaseVoting.String(), round, len(ballots), len(phaseRec.Abstentions)))
	return o.persist(r)
}

// runSynthesis composes the final decision, applies a staged override if
// one exists, then closes the session: the DAG is concluded, root-hashed
// and unsealed, and the completed record persisted.
func (o *Orchestrator) runSynthesis(ctx context.Context, r *runState, round int) error {
	r.record.CurrentPhase = PhaseSynthesis.String()
	phaseRec := r.record.Phase(PhaseSynthesis.String())
	phaseRec.Status = "in_progress"

	o.publish(event.NewPhaseStartedEvent(r.record.SessionID, PhaseSynthesis.String(), round, 1))
	logger := r.logger.WithPhase(PhaseSynthesis.String())

	selected := r.result.Finalists[0]

	synthesizer := r.roster[0]
	if commander, ok := r.record.Configuration.Roster.Commander(); ok {
		synthesizer = commander
	}

	rationale := fmt.Sprintf("%s selected by ranked ballot across %d votes.", selected, r.result.Ballots)
	prompt := synthesisPrompt(r.record.Problem, selected, r.result, r.dag.AnonymizedView())
	if res := o.consult(ctx, synthesizer, prompt, PhaseSynthesis, round); res.err == nil {
		rationale = res.response.Content
		r.consulted[synthesizer.Name] = true
		o.accumulateMetrics(r, synthesizer.Model, res.response)
	} else {
		phaseRec.Abstentions = append(phaseRec.Abstentions, session.Abstention{
			Role:     synthesizer.Name,
			Attempts: res.attempts,
			Reason:   res.err.Error(),
		})
		logger.WithExpert(synthesizer.Name).Warn("synthesizer abstained, using mechanical rationale")
	}

	overridden := false
	if r.override != nil {
		ov, err := voting.NewOverride(r.override.approachID, r.override.justification)
		if err != nil {
			return o.failSession(r, PhaseSynthesis, err)
		}
		if !contains(o.candidateLabels(r, round), ov.ApproachID) {
			return o.failSession(r, PhaseSynthesis,
				errors.NewValidationError("override", fmt.Sprintf("%q is not a candidate approach", ov.ApproachID)))
		}
		node, err := r.dag.AddNode(
			fmt.Sprintf("Override: %s supersedes %s.\n\n%s", ov.ApproachID, selected, ov.Justification),
			synthesizer.Name, synthesizer.Model, round, PhaseSynthesisOverride.String(), "",
		)
		if err != nil {
			return o.failSession(r, PhaseSynthesis, err)
		}
		selected = ov.ApproachID
		overridden = true
		o.publish(event.NewOverrideAppliedEvent(r.record.SessionID, ov.ApproachID, node.NodeID))
		logger.Info("override applied", "approach", ov.ApproachID, "node_id", node.NodeID)
	}

	r.record.FinalDecision = &session.FinalDecision{
		SelectedApproach: selected,
		Rationale:        rationale,
		DissentingViews:  o.dissentingViews(r, selected),
		WatchPoints:      o.watchPoints(r),
		Overridden:       overridden,
	}
	phaseRec.Status = "completed"

	// Conclude, fix the root hash, then disclose identities. Order
	// matters: unseal is gated on conclusion.
	r.dag.MarkConcluded()
	rootHash := r.dag.ComputeRootHash()
	if _, err := r.dag.Unseal(); err != nil {
		return o.failSession(r, PhaseSynthesis, err)
	}

	r.record.Status = session.StatusCompleted
	r.record.CurrentPhase = PhaseClosed.String()
	r.record.Metrics.DurationSeconds = time.Since(r.started).Seconds()
	r.record.Metrics.ExpertsConsulted = len(r.consulted)

	if body, err := renderArtifact(artifactHeader{
		SessionID:   r.record.SessionID,
		Phase:       PhaseSynthesis.String(),
		Round:       round,
		Status:      phaseRec.Status,
		GeneratedAt: time.Now().UTC(),
	}, decisionBody(r.record.FinalDecision, rootHash)); err == nil {
		if rel, err := o.archive.SaveArtifact(r.record.SessionID, PhaseSynthesis.String(), "decision.md", body); err == nil {
			phaseRec.Artifacts = append(phaseRec.Artifacts, rel)
		}
	}

	if err := o.persist(r); err != nil {
		return err
	}
	o.publish(event.NewSessionClosedEvent(r.record.SessionID, selected, rootHash))
	logger.Info("session closed", "selected", selected, "root_hash", rootHash)
	return nil
}

// consult invokes the responder for one role with a per-call timeout,
// retrying with doubling backoff. A role that exhausts its attempts is
// reported as an abstention by the caller, never as a session failure.
func (o *Orchestrator) consult(ctx context.Context, role expert.Role, prompt string, phase Phase, round int) consultResult {
	req := expert.Request{
		Role:   role.Name,
		Model:  role.Model,
		Prompt: prompt,
		Phase:  phase.String(),
		Round:  round,
	}

	attempts := o.cfg.Expert.Retries + 1
	backoff := o.cfg.Expert.Backoff()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, o.cfg.Expert.Timeout())
		resp, err := o.responder.Respond(callCtx, req)
		cancel()
		if err == nil {
			return consultResult{role: role, response: resp, attempts: attempt}
		}
		lastErr = err

		if ctx.Err() != nil || attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return consultResult{role: role, attempts: attempt, err: ctx.Err()}
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return consultResult{role: role, attempts: attempts, err: lastErr}
}

// Status returns a progress summary for a session, loaded from the archive.
func (o *Orchestrator) Status(sessionID string) (*StatusSummary, error) {
	record, err := o.archive.Load(sessionID)
	if err != nil {
		return nil, err
	}
	return SummarizeRecord(record), nil
}

// Cancel requests cancellation of an in-flight session. The request takes
// effect at the next phase boundary; a phase join is never interrupted.
func (o *Orchestrator) Cancel(sessionID string) error {
	o.mu.Lock()
	handle, ok := o.active[sessionID]
	o.mu.Unlock()
	if ok {
		handle.cancelled.Store(true)
		return nil
	}

	record, err := o.archive.Load(sessionID)
	if err != nil {
		return err
	}
	if record.Closed() {
		return errors.NewSessionError("session already reached a terminal state", errors.ErrSessionClosed).
			WithSessionID(sessionID)
	}
	return errors.NewSessionError("session is not driven by this process", errors.ErrSessionLocked).
		WithSessionID(sessionID)
}

func (o *Orchestrator) checkCancelled(ctx context.Context, r *runState, next Phase) error {
	if !r.handle.cancelled.Load() && ctx.Err() == nil {
		return nil
	}
	r.record.Status = session.StatusCancelled
	r.record.Metrics.DurationSeconds = time.Since(r.started).Seconds()
	r.record.Metrics.ExpertsConsulted = len(r.consulted)
	if err := o.persist(r); err != nil {
		return err
	}
	o.publish(event.NewSessionCancelledEvent(r.record.SessionID, r.record.CurrentPhase))
	r.logger.Info("session cancelled", "before_phase", next.String())
	return errors.NewSessionError("cancelled at phase boundary", errors.ErrSessionCancelled).
		WithSessionID(r.record.SessionID)
}

// failSession marks the session failed with the cause persisted, so the
// archive stays inspectable, then propagates the cause unchanged.
func (o *Orchestrator) failSession(r *runState, phase Phase, cause error) error {
	r.record.Status = session.StatusFailed
	r.record.FailureReason = cause.Error()
	r.record.CurrentPhase = phase.String()
	r.record.Metrics.DurationSeconds = time.Since(r.started).Seconds()
	r.record.Metrics.ExpertsConsulted = len(r.consulted)
	if rec := r.record.Phase(phase.String()); rec.Status == "in_progress" {
		rec.Status = "failed"
	}
	if err := o.persist(r); err != nil {
		r.logger.Error("persisting failed session", "error", err)
	}
	o.publish(event.NewSessionFailedEvent(r.record.SessionID, phase.String(), cause.Error()))
	r.logger.Error("session failed", "phase", phase.String(), "reason", cause.Error())
	return cause
}

// persist snapshots the DAG into the record and writes it atomically.
func (o *Orchestrator) persist(r *runState) error {
	r.record.MerkleDAG = r.dag.Snapshot()
	return o.archive.Save(r.record)
}

func (o *Orchestrator) publish(ev event.Event) {
	if o.bus != nil {
		o.bus.Publish(ev)
	}
}

func (o *Orchestrator) writePhaseArtifact(r *runState, phase Phase, round int, phaseRec *session.PhaseRecord) {
	var contributions []dag.AnonymizedNode
	for _, n := range r.dag.AnonymizedView() {
		if n.Phase == phase.String() && n.Round == round {
			contributions = append(contributions, n)
		}
	}
	body, err := renderArtifact(artifactHeader{
		SessionID:   r.record.SessionID,
		Phase:       phase.String(),
		Round:       round,
		Status:      phaseRec.Status,
		GeneratedAt: time.Now().UTC(),
	}, phaseSummaryBody(phase, contributions, phaseRec.Abstentions))
	if err != nil {
		r.logger.Warn("rendering phase artifact", "phase", phase.String(), "error", err)
		return
	}
	rel, err := o.archive.SaveArtifact(r.record.SessionID, phase.String(), "summary.md", body)
	if err != nil {
		r.logger.Warn("writing phase artifact", "phase", phase.String(), "error", err)
		return
	}
	phaseRec.Artifacts = append(phaseRec.Artifacts, rel)
}

func (o *Orchestrator) candidateNodes(r *runState, round int) []dag.AnonymizedNode {
	phase := CandidatePhase(r.record.Configuration.Mode)
	var candidates []dag.AnonymizedNode
	for _, n := range r.dag.AnonymizedView() {
		if n.Phase == phase.String() && n.Round == round {
			candidates = append(candidates, n)
		}
	}
	return candidates
}

func (o *Orchestrator) candidateLabels(r *runState, round int) []string {
	nodes := o.candidateNodes(r, round)
	labels := make([]string, len(nodes))
	for i, n := range nodes {
		labels[i] = n.AnonymousLabel
	}
	return labels
}

// voterLabel attributes a ballot to the voter's candidate-phase pseudonym
// when one exists, keeping ballots anonymous but correlatable.
func (o *Orchestrator) voterLabel(r *runState, role string, round int) string {
	phase := CandidatePhase(r.record.Configuration.Mode)
	if node, ok := r.contributions[contribKey(phase, round, role)]; ok {
		return node.AnonymousLabel
	}
	return "Abstaining Contributor"
}

func (o *Orchestrator) dissentingViews(r *runState, selected string) []string {
	var views []string
	for _, finalist := range r.result.Finalists {
		if finalist == selected {
			continue
		}
		views = append(views, fmt.Sprintf("%s remained a finalist: %s", finalist, o.candidateExcerpt(r, finalist)))
	}
	return views
}

func (o *Orchestrator) candidateExcerpt(r *runState, label string) string {
	for _, n := range r.dag.AnonymizedView() {
		if n.AnonymousLabel == label && n.Phase == CandidatePhase(r.record.Configuration.Mode).String() {
			return firstLine(n.Content)
		}
	}
	return ""
}

func (o *Orchestrator) watchPoints(r *runState) []string {
	var points []string
	for _, n := range r.dag.AnonymizedView() {
		if n.Phase == PhasePremortem.String() {
			points = append(points, fmt.Sprintf("%s: %s", n.AnonymousLabel, firstLine(n.Content)))
		}
	}
	return points
}

func (o *Orchestrator) accumulateMetrics(r *runState, model string, resp expert.Response) {
	tokens := resp.TokensUsed
	if tokens == 0 {
		tokens = len(resp.Content) / 4
	}
	r.record.Metrics.TotalTokens += tokens
	r.record.Metrics.TotalCostUSD += float64(tokens) / 1000 * costPerKiloToken(model)
}

// costPerKiloToken is a coarse per-model price table in USD. Unknown
// models fall back to a mid-range rate.
func costPerKiloToken(model string) float64 {
	switch {
	case strings.Contains(model, "opus"):
		return 0.075
	case strings.Contains(model, "sonnet"):
		return 0.015
	case strings.Contains(model, "haiku"):
		return 0.004
	default:
		return 0.010
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexAny(s, "\r\n"); idx >= 0 {
		s = s[:idx]
	}
	return s
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
