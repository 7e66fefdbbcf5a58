// Package pipeline wires the ingestion, preprocessing, feature-model and
// scoring stages into one synchronous analysis run.
package pipeline

import (
	"fmt"

	"github.com/google/uuid"

	"prophet-bnb/models"
	"prophet-bnb/services"
	"prophet-bnb/sources"
	"prophet-bnb/utils"
)

// Result is everything one analysis run hands to the display layer.
type Result struct {
	RunID string
	Label string

	Dataset    []models.AugmentedListing
	Resolution *services.Resolution
	Stages     []services.StageResult

	Summary models.MetricsSummary
	Ranked  []models.AugmentedListing

	// Justification explains the top recommendation; empty when the
	// preference filter left nothing to rank.
	Justification string
}

// Pipeline is the single-process, single-request-at-a-time analysis
// pipeline: source → normalize → augment (best-effort) → score →
// summarize → filter → rank.
type Pipeline struct {
	logger     *utils.Logger
	pre        *services.Preprocessor
	engine     *services.Engine
	aggregator *services.Aggregator
}

// New creates a Pipeline.
func New(logger *utils.Logger) *Pipeline {
	return &Pipeline{
		logger:     logger,
		pre:        services.NewPreprocessor(logger),
		engine:     services.NewEngine(logger),
		aggregator: services.NewAggregator(logger),
	}
}

// Run executes one analysis pass. Source and canonicalization failures
// abort the run; feature-model failures are recorded as skipped stages and
// the run continues.
func (p *Pipeline) Run(src sources.DataSource, pf models.PreferenceFilter) (*Result, error) {
	runID := uuid.NewString()
	p.logger.Info("[pipeline] Run %s starting", runID)

	raw, label, err := src.Load()
	if err != nil {
		return nil, fmt.Errorf("load source: %w", err)
	}
	p.logger.Info("[pipeline] Run %s — loaded %d rows from %s", runID, raw.Len(), label)

	canonical, resolution, err := p.pre.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	dataset := models.Augment(canonical)

	_, priceStage := services.AugmentPredictedPrice(dataset, p.logger)
	if priceStage.Skipped {
		p.logger.Warn("[pipeline] Run %s — %s", runID, priceStage)
	}
	_, clusterStage := services.AugmentHostClusters(dataset, p.logger)
	if clusterStage.Skipped {
		p.logger.Warn("[pipeline] Run %s — %s", runID, clusterStage)
	}

	p.engine.Score(dataset, pf)
	summary := p.aggregator.Summarize(dataset, resolution.PriceColumn)

	filtered := p.engine.FilterByPreferences(dataset, pf)
	ranked := p.engine.Rank(filtered, pf)

	result := &Result{
		RunID:      runID,
		Label:      label,
		Dataset:    dataset,
		Resolution: resolution,
		Stages:     []services.StageResult{priceStage, clusterStage},
		Summary:    summary,
		Ranked:     ranked,
	}
	if len(ranked) > 0 {
		result.Justification = p.engine.Justify(ranked[0])
	} else {
		p.logger.Warn("[pipeline] Run %s — preference filter left no listings", runID)
	}

	p.logger.Info("[pipeline] Run %s done — %d listings, %d ranked", runID, len(dataset), len(ranked))
	return result, nil
}
