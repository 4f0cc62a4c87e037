package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/brightpath-labs/cbt-api/internal/observability"
	"github.com/brightpath-labs/cbt-api/internal/repository"
)

// CorrectnessMap maps option ids to their correctness flag, built once per
// scoring pass.
type CorrectnessMap map[string]bool

// CorrectnessResolver builds the correctness map needed to evaluate a set of
// submitted option ids against an assessment. Pure read path: it never
// writes to storage.
type CorrectnessResolver interface {
	// Resolve returns the correctness map together with the number of
	// submitted option ids that were absent from the bulk-loaded map and had
	// to be fetched directly.
	Resolve(ctx context.Context, assessmentID string, optionIDs []string) (CorrectnessMap, int, error)
}

type correctnessResolver struct {
	assessments repository.AssessmentRepository
	logger      zerolog.Logger
}

// NewCorrectnessResolver constructs a repository-backed resolver.
func NewCorrectnessResolver(assessments repository.AssessmentRepository, logger zerolog.Logger) CorrectnessResolver {
	return &correctnessResolver{
		assessments: assessments,
		logger:      logger.With().Str("component", "correctness_resolver").Logger(),
	}
}

func (r *correctnessResolver) Resolve(ctx context.Context, assessmentID string, optionIDs []string) (CorrectnessMap, int, error) {
	questionIDs, err := r.assessments.QuestionIDs(ctx, assessmentID)
	if err != nil {
		return nil, 0, err
	}

	correctness := make(CorrectnessMap)
	options, err := r.assessments.OptionsByQuestionIDs(ctx, questionIDs)
	if err != nil {
		return nil, 0, err
	}
	for _, option := range options {
		correctness[option.ID] = option.IsCorrect
	}

	// A submitted option can be missing from the bulk load when the join
	// lags a recent edit. Fetch those ids directly and merge.
	var missing []string
	for _, id := range optionIDs {
		if _, ok := correctness[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) == 0 {
		return correctness, 0, nil
	}

	fetched, err := r.assessments.OptionsByIDs(ctx, missing)
	if err != nil {
		return nil, 0, err
	}
	for _, option := range fetched {
		correctness[option.ID] = option.IsCorrect
	}

	observability.OptionFallbacks().Add(float64(len(missing)))
	r.logger.Debug().
		Str("assessment_id", assessmentID).
		Int("missing_options", len(missing)).
		Int("recovered", len(fetched)).
		Msg("correctness map required direct option fetch")

	return correctness, len(missing), nil
}
