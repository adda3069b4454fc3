package recon

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ammar-qazi/HisaabFlow-sub001/internal/logger"
)

// Step is a single stage of the reconciliation pipeline.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// State is the shared state flowing through the pipeline steps. It is created
// fresh per run; nothing in it survives the run.
type State struct {
	RunID     string
	Config    *Config
	Records   []*TransactionRecord
	Final     []*OutputRecord
	Overrides *OverrideSet

	Candidates *CandidateSet
	RawPairs   []*TransferPair
	Accepted   []*TransferPair
	Applied    ApplyResult
}

// AnnotateStep tags records with bank identity and conversion metadata.
type AnnotateStep struct{}

func (s *AnnotateStep) Execute(ctx context.Context, state *State) error {
	AnnotateRecords(state.Config, state.Records)
	return nil
}

// SelectCandidatesStep filters records down to plausible transfer legs.
type SelectCandidatesStep struct{}

func (s *SelectCandidatesStep) Execute(ctx context.Context, state *State) error {
	state.Candidates = SelectCandidates(state.Config, state.Records)
	return nil
}

// MatchStep runs the internal and cross-source matching passes.
type MatchStep struct{}

func (s *MatchStep) Execute(ctx context.Context, state *State) error {
	state.RawPairs = NewMatcher(state.Config).MatchPairs(state.Candidates)
	return nil
}

// ResolveStep picks the best non-conflicting pairing per row.
type ResolveStep struct{}

func (s *ResolveStep) Execute(ctx context.Context, state *State) error {
	state.Accepted = ResolvePairs(state.RawPairs, state.Overrides)
	return nil
}

// ApplyStep relabels both legs of each accepted pair in the final collection.
type ApplyStep struct{}

func (s *ApplyStep) Execute(ctx context.Context, state *State) error {
	state.Applied = ApplyPairs(state.Config, state.Accepted, state.Final)
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a pipeline with the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("reconciliation step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewTransferDetectionPipeline creates the standard five-step pipeline.
func NewTransferDetectionPipeline() *Pipeline {
	return NewPipeline(
		&AnnotateStep{},
		&SelectCandidatesStep{},
		&MatchStep{},
		&ResolveStep{},
		&ApplyStep{},
	)
}

// Engine is the transfer-reconciliation engine. It holds only configuration,
// so one Engine is safe to use concurrently for independent runs.
type Engine struct {
	cfg *Config
}

// NewEngine creates an engine; a nil config means the documented defaults.
func NewEngine(cfg *Config) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg}
}

// Reconcile runs one full detection pass over a record batch and relabels the
// matched rows of the final collection in place. It is a pure function of its
// arguments; a failure to detect transfers degrades to an empty pair list,
// never to an error.
func (e *Engine) Reconcile(ctx context.Context, records []*TransactionRecord, final []*OutputRecord, overrides *OverrideSet) (*Report, error) {
	state := &State{
		RunID:     uuid.NewString(),
		Config:    e.cfg,
		Records:   records,
		Final:     final,
		Overrides: overrides,
	}
	log := logger.FromContext(ctx).With().Str("run_id", state.RunID).Logger()

	if err := NewTransferDetectionPipeline().Execute(ctx, state); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:          state.RunID,
		Pairs:          state.Accepted,
		RecordCount:    len(state.Records),
		CandidateCount: len(state.Candidates.All),
		Unresolved:     state.Applied.Unresolved,
	}
	for _, pair := range state.Accepted {
		switch pair.TransferType {
		case TransferInternalConversion:
			report.InternalConversions++
		case TransferCrossBank:
			report.CrossBankTransfers++
		case TransferStandard:
			report.StandardTransfers++
		}
	}

	log.Info().
		Int("records", report.RecordCount).
		Int("candidates", report.CandidateCount).
		Int("pairs", len(report.Pairs)).
		Int("internal", report.InternalConversions).
		Int("cross_bank", report.CrossBankTransfers).
		Msg("Reconciliation run finished")
	for _, key := range report.Unresolved {
		log.Warn().Str("pair", key).Msg("Accepted pair could not be re-located in final collection")
	}
	return report, nil
}
