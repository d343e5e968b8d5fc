// Package acquisition captures the rendered search-results document,
// retrying whole browser sessions and falling back to a synthetic document
// so the pipeline always has input.
package acquisition

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/jonathan/recycling-locator/internal/fallback"
	"github.com/jonathan/recycling-locator/internal/fetch"
	"github.com/jonathan/recycling-locator/internal/types"
)

// DefaultSearchURL is the search entry point.
const DefaultSearchURL = "https://search.earth911.com/"

// Defaults for the retry loop.
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 5 * time.Second
	DefaultStabilize  = 3 * time.Second
)

// Source tells where a Document's markup came from.
type Source string

const (
	// SourceLive means the markup was captured from a browser session.
	SourceLive Source = "live"
	// SourceSynthetic means every attempt failed and the fixed sample was used.
	SourceSynthetic Source = "synthetic"
)

// Document is the raw markup handed to extraction.
type Document struct {
	HTML     string
	Source   Source
	Attempts int
	// Cause is the last live failure when Source is SourceSynthetic.
	Cause error
}

// Synthetic reports whether the document is the fallback sample.
func (d Document) Synthetic() bool {
	return d.Source == SourceSynthetic
}

// Searcher fills and submits the search form on an open session.
type Searcher interface {
	AttemptSearch(ctx context.Context, s fetch.Session, q types.SearchQuery) bool
}

// Options configures the controller.
type Options struct {
	SearchURL  string
	MaxRetries int
	RetryDelay time.Duration
	Stabilize  time.Duration
}

// DefaultOptions returns the production retry settings.
func DefaultOptions() *Options {
	return &Options{
		SearchURL:  DefaultSearchURL,
		MaxRetries: DefaultMaxRetries,
		RetryDelay: DefaultRetryDelay,
		Stabilize:  DefaultStabilize,
	}
}

// Controller runs acquisition attempts, one fresh session per attempt.
type Controller struct {
	launcher fetch.Launcher
	searcher Searcher
	opts     *Options
	logger   *zap.Logger
}

// NewController creates a Controller. A nil opts uses DefaultOptions.
func NewController(launcher fetch.Launcher, searcher Searcher, opts *Options, logger *zap.Logger) *Controller {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.SearchURL == "" {
		opts.SearchURL = DefaultSearchURL
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{launcher: launcher, searcher: searcher, opts: opts, logger: logger}
}

// Fetch returns the rendered results document for q. It never fails: once
// every attempt is exhausted it returns the synthetic document.
func (c *Controller) Fetch(ctx context.Context, q types.SearchQuery) Document {
	attempts := 0
	out := fallback.Resolve(
		func() (Document, error) {
			html, err := c.fetchLive(ctx, q, &attempts)
			return Document{HTML: html, Source: SourceLive}, err
		},
		SyntheticDocument,
	)

	doc := out.Value
	doc.Attempts = attempts
	if out.Degraded {
		doc.Cause = out.Cause
		c.logger.Warn("all acquisition attempts failed, using synthetic document",
			zap.Int("attempts", attempts), zap.Error(out.Cause))
	}
	return doc
}

func (c *Controller) fetchLive(ctx context.Context, q types.SearchQuery, attempts *int) (string, error) {
	maxAttempts := c.opts.MaxRetries
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.opts.RetryDelay), uint64(maxAttempts-1)),
		ctx,
	)

	op := func() (string, error) {
		*attempts++
		html, err := c.attempt(ctx, *attempts, q)
		if err != nil {
			c.logger.Warn("acquisition attempt failed",
				zap.Int("attempt", *attempts), zap.Int("max_attempts", maxAttempts), zap.Error(err))
		}
		return html, err
	}
	notify := func(_ error, wait time.Duration) {
		c.logger.Info("retrying search", zap.Duration("backoff", wait))
	}

	return backoff.RetryNotifyWithData(op, policy, notify)
}

// attempt runs one full browser session. The session is closed on every path.
func (c *Controller) attempt(ctx context.Context, n int, q types.SearchQuery) (string, error) {
	log := c.logger.With(zap.Int("attempt", n))
	log.Info("launching browser")

	session, err := c.launcher.Launch(ctx)
	if err != nil {
		return "", &AttemptError{Attempt: n, Message: "browser launch failed", Cause: err}
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Debug("closing browser session failed", zap.Error(err))
		}
	}()

	log.Info("navigating to search page", zap.String("url", c.opts.SearchURL))
	if err := session.Navigate(ctx, c.opts.SearchURL); err != nil {
		return "", &AttemptError{Attempt: n, Message: "navigation failed", Cause: err}
	}

	if err := session.Wait(ctx, c.opts.Stabilize); err != nil {
		return "", &AttemptError{Attempt: n, Message: "page did not stabilize", Cause: err}
	}

	if !c.searcher.AttemptSearch(ctx, session, q) {
		return "", &AttemptError{Attempt: n, Message: "search form interaction failed", Cause: ErrSearchNotSubmitted}
	}

	html, err := session.HTML(ctx)
	if err != nil {
		return "", &AttemptError{Attempt: n, Message: "capturing markup failed", Cause: err}
	}
	if strings.TrimSpace(html) == "" {
		return "", &AttemptError{Attempt: n, Message: "captured an empty document"}
	}

	log.Info("captured results document", zap.Int("bytes", len(html)))
	return html, nil
}
