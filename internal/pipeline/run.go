// Package pipeline provides the high-level orchestration of a search run:
// acquire, extract, classify and persist.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/recycling-locator/internal/acquisition"
	"github.com/jonathan/recycling-locator/internal/classification"
	"github.com/jonathan/recycling-locator/internal/db"
	"github.com/jonathan/recycling-locator/internal/extraction"
	"github.com/jonathan/recycling-locator/internal/observability"
	"github.com/jonathan/recycling-locator/internal/output"
	"github.com/jonathan/recycling-locator/internal/schemas"
	"github.com/jonathan/recycling-locator/internal/types"
)

// Step names reported through ProgressEvent.
const (
	StepAcquire  = "acquire"
	StepExtract  = "extract"
	StepClassify = "classify"
	StepValidate = "validate"
	StepWrite    = "write"
	StepArchive  = "archive"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Acquirer returns the results markup for a query. It never fails.
type Acquirer interface {
	Fetch(ctx context.Context, q types.SearchQuery) acquisition.Document
}

// Extractor turns markup into listings.
type Extractor interface {
	Extract(html string) ([]types.Listing, error)
}

// Classifier assigns a classification to a listing's text. It never fails.
type Classifier interface {
	Classify(ctx context.Context, rawText string) classification.Outcome
}

// Archive stores a completed run. Optional.
type Archive interface {
	SaveRun(ctx context.Context, run db.Run, records types.ResultSet) error
}

// Deps are the collaborators of a Runner. Acquirer is required; the rest
// default to the keyword-only classifier, the default selectors, no archive
// and no printed output.
type Deps struct {
	Acquirer   Acquirer
	Extractor  Extractor
	Classifier Classifier
	Archive    Archive
	Printer    *observability.Printer
	Logger     *zap.Logger
	Now        func() time.Time
}

// RunOptions holds configuration for a single run
type RunOptions struct {
	Query      types.SearchQuery
	OutputPath string
	SearchURL  string // shown in the banner only
	OnProgress ProgressCallback
}

// Report summarizes a completed run.
type Report struct {
	RunID      uuid.UUID
	Query      types.SearchQuery
	Source     acquisition.Source
	Attempts   int
	Records    types.ResultSet
	OutputPath string
	// Fallbacks counts listings classified by the keyword fallback.
	Fallbacks int
}

// Runner executes search runs.
type Runner struct {
	deps Deps
}

// NewRunner fills in defaults for any unset optional dependency.
func NewRunner(deps Deps) (*Runner, error) {
	if deps.Acquirer == nil {
		return nil, fmt.Errorf("pipeline: acquirer is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Extractor == nil {
		deps.Extractor = extraction.NewExtractor(extraction.DefaultSelectors(), deps.Logger)
	}
	if deps.Classifier == nil {
		deps.Classifier = classification.NewEngine(nil, nil, deps.Logger)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Runner{deps: deps}, nil
}

// Run executes one search. Any error is returned before the output file is
// touched; archive failures are logged and do not fail the run.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	if err := opts.Query.Validate(); err != nil {
		return nil, err
	}
	if opts.OutputPath == "" {
		opts.OutputPath = output.DefaultPath
	}

	runID := uuid.New()
	runDate := r.deps.Now()
	logger := r.deps.Logger.With(zap.String("run_id", runID.String()))
	emit := func(step, message string) {
		logger.Debug(message, zap.String("step", step))
		if opts.OnProgress != nil {
			opts.OnProgress(ProgressEvent{Step: step, Message: message, RunID: runID.String()})
		}
	}

	if r.deps.Printer != nil {
		r.deps.Printer.PrintQuery(opts.Query, opts.SearchURL)
	}

	emit(StepAcquire, "Fetching results for "+opts.Query.Material+" near "+opts.Query.PostalCode)
	doc := r.deps.Acquirer.Fetch(ctx, opts.Query)
	if doc.Synthetic() && r.deps.Printer != nil {
		r.deps.Printer.PrintSyntheticNotice(doc.Attempts, doc.Cause)
	}

	emit(StepExtract, "Parsing results")
	listings, err := r.deps.Extractor.Extract(doc.HTML)
	if err != nil {
		return nil, fmt.Errorf("failed to extract listings: %w", err)
	}
	logger.Info("extracted listings", zap.Int("count", len(listings)), zap.String("source", string(doc.Source)))

	emit(StepClassify, fmt.Sprintf("Classifying %d listing(s)", len(listings)))
	records := make(types.ResultSet, 0, len(listings))
	fallbacks := 0
	for _, l := range listings {
		out := r.deps.Classifier.Classify(ctx, l.RawText)
		if out.Degraded {
			fallbacks++
		}
		records = append(records, types.NewFacilityRecord(l, out.Value, runDate))
	}

	emit(StepValidate, "Validating results")
	if err := schemas.ValidateResults(records); err != nil {
		return nil, fmt.Errorf("results failed schema validation: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run cancelled before writing results: %w", err)
	}

	emit(StepWrite, "Writing "+opts.OutputPath)
	if err := output.WriteResults(opts.OutputPath, records); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:      runID,
		Query:      opts.Query,
		Source:     doc.Source,
		Attempts:   doc.Attempts,
		Records:    records,
		OutputPath: opts.OutputPath,
		Fallbacks:  fallbacks,
	}

	if r.deps.Archive != nil {
		emit(StepArchive, "Archiving run")
		run := db.Run{
			ID:         runID,
			Material:   opts.Query.Material,
			PostalCode: opts.Query.PostalCode,
			Source:     string(doc.Source),
			Attempts:   doc.Attempts,
			Fallbacks:  fallbacks,
		}
		if err := r.deps.Archive.SaveRun(ctx, run, records); err != nil {
			logger.Warn("failed to archive run", zap.Error(err))
		}
	}

	if r.deps.Printer != nil {
		r.deps.Printer.PrintSummary(records, opts.OutputPath)
	}
	return report, nil
}
