// Package interaction fills and submits the facility search form using
// ordered, redundant locator strategies, because the target markup is not
// contractually stable.
package interaction

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/recycling-locator/internal/fetch"
	"github.com/jonathan/recycling-locator/internal/types"
)

// Default timeouts for each step of a search attempt.
const (
	DefaultMaterialTimeout = 3000 * time.Millisecond
	DefaultPostalTimeout   = 2000 * time.Millisecond
	DefaultSubmitTimeout   = 2000 * time.Millisecond
	DefaultSettle          = 5000 * time.Millisecond
	DefaultResultsTimeout  = 8000 * time.Millisecond
)

// ResultsSelector matches any known results container; used only as a signal.
const ResultsSelector = ".location-result, .result, .listing, .search-result"

// Options configures the strategy lists and step timeouts.
type Options struct {
	MaterialLocators []fetch.Locator
	PostalLocators   []fetch.Locator
	SubmitLocators   []fetch.Locator

	MaterialTimeout time.Duration
	PostalTimeout   time.Duration
	SubmitTimeout   time.Duration
	Settle          time.Duration
	ResultsTimeout  time.Duration
}

// DefaultMaterialLocators returns the material-field strategies in priority order.
func DefaultMaterialLocators() []fetch.Locator {
	return []fetch.Locator{
		fetch.CSS("input[placeholder*='material' i]"),
		fetch.CSS("input[name*='material' i]"),
		fetch.CSS("input[id*='material' i]"),
		fetch.CSS("input[type='text']:first-of-type"),
		fetch.CSS("#material-search"),
		fetch.CSS(".material-input"),
	}
}

// DefaultPostalLocators returns the postal-field strategies in priority order.
func DefaultPostalLocators() []fetch.Locator {
	return []fetch.Locator{
		fetch.CSS("input[placeholder*='zip' i]"),
		fetch.CSS("input[placeholder*='postal' i]"),
		fetch.CSS("input[name*='zip' i]"),
		fetch.CSS("input[name*='postal' i]"),
		fetch.CSS("input[type='text']:nth-of-type(2)"),
		fetch.CSS("#zip-search"),
	}
}

// DefaultSubmitLocators returns the submit-control strategies in priority order.
func DefaultSubmitLocators() []fetch.Locator {
	return []fetch.Locator{
		fetch.ButtonText("Search"),
		fetch.CSS("input[type='submit']"),
		fetch.CSS("button[type='submit']"),
		fetch.CSS(".search-btn"),
		fetch.CSS(".search-button"),
		fetch.CSS("#search-btn"),
	}
}

// DefaultOptions returns the production strategy lists and timeouts.
func DefaultOptions() *Options {
	return &Options{
		MaterialLocators: DefaultMaterialLocators(),
		PostalLocators:   DefaultPostalLocators(),
		SubmitLocators:   DefaultSubmitLocators(),
		MaterialTimeout:  DefaultMaterialTimeout,
		PostalTimeout:    DefaultPostalTimeout,
		SubmitTimeout:    DefaultSubmitTimeout,
		Settle:           DefaultSettle,
		ResultsTimeout:   DefaultResultsTimeout,
	}
}

// Engine drives the search form on an open session.
type Engine struct {
	opts   *Options
	logger *zap.Logger
}

// NewEngine creates an Engine. A nil opts uses DefaultOptions.
func NewEngine(opts *Options, logger *zap.Logger) *Engine {
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{opts: opts, logger: logger}
}

// AttemptSearch fills the material and postal fields and submits the form.
// It returns true once a submission path was executed, whether or not
// results appear, and false if the form could not be driven at all.
func (e *Engine) AttemptSearch(ctx context.Context, s fetch.Session, q types.SearchQuery) bool {
	log := e.logger.With(zap.String("material", q.Material), zap.String("postal_code", q.PostalCode))

	if loc, ok := e.resolve(ctx, s, e.opts.MaterialLocators, e.opts.MaterialTimeout, log); ok {
		log.Debug("material input found", zap.Stringer("locator", loc))
		if err := s.Fill(ctx, loc, q.Material); err != nil {
			log.Warn("filling material input failed", zap.Error(err))
			return false
		}
	} else {
		log.Info("material input not found, typing without focus")
		if err := s.TypeText(ctx, q.Material); err != nil {
			log.Warn("keyboard input failed", zap.Error(err))
			return false
		}
	}

	if loc, ok := e.resolve(ctx, s, e.opts.PostalLocators, e.opts.PostalTimeout, log); ok {
		log.Debug("postal input found", zap.Stringer("locator", loc))
		if err := s.Fill(ctx, loc, q.PostalCode); err != nil {
			log.Warn("filling postal input failed", zap.Error(err))
			return false
		}
	} else {
		log.Debug("postal input not found, continuing without it")
	}

	if !e.submit(ctx, s, log) {
		return false
	}

	if err := s.Wait(ctx, e.opts.Settle); err != nil {
		log.Warn("waiting for results failed", zap.Error(err))
		return false
	}

	results := fetch.CSS(ResultsSelector)
	if err := s.Locate(ctx, results, e.opts.ResultsTimeout); err != nil {
		log.Info("no result elements detected, proceeding anyway")
	} else {
		log.Info("search results detected")
	}

	return true
}

// resolve returns the first locator that matches an element within timeout.
func (e *Engine) resolve(ctx context.Context, s fetch.Session, locators []fetch.Locator, timeout time.Duration, log *zap.Logger) (fetch.Locator, bool) {
	for _, loc := range locators {
		if ctx.Err() != nil {
			return fetch.Locator{}, false
		}
		if err := s.Locate(ctx, loc, timeout); err != nil {
			log.Debug("locator missed", zap.Stringer("locator", loc))
			continue
		}
		return loc, true
	}
	return fetch.Locator{}, false
}

// submit clicks the first submit control that resolves and clicks, falling
// back to an Enter key press.
func (e *Engine) submit(ctx context.Context, s fetch.Session, log *zap.Logger) bool {
	for _, loc := range e.opts.SubmitLocators {
		if ctx.Err() != nil {
			break
		}
		if err := s.Locate(ctx, loc, e.opts.SubmitTimeout); err != nil {
			log.Debug("locator missed", zap.Stringer("locator", loc))
			continue
		}
		if err := s.Click(ctx, loc); err != nil {
			log.Debug("submit click failed", zap.Stringer("locator", loc), zap.Error(err))
			continue
		}
		log.Info("search submitted", zap.Stringer("locator", loc))
		return true
	}

	log.Info("no submit control clicked, pressing Enter")
	if err := s.PressEnter(ctx); err != nil {
		log.Warn("Enter key fallback failed", zap.Error(err))
		return false
	}
	return true
}
