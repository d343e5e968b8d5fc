// Package fetch - browser.go implements Session on top of a headless Chrome driven by chromedp.
package fetch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"
)

// ChromeLauncher starts a fresh Chrome process for every Launch call.
type ChromeLauncher struct {
	opts   *Options
	logger *zap.Logger
}

// NewChromeLauncher creates a launcher. A nil opts uses DefaultOptions.
func NewChromeLauncher(opts *Options, logger *zap.Logger) *ChromeLauncher {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromeLauncher{opts: opts, logger: logger}
}

// Launch starts Chrome and opens a tab. The returned session owns the process.
func (l *ChromeLauncher) Launch(ctx context.Context) (Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(l.opts.UserAgent),
	)
	if l.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(l.opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &chromeSession{
		ctx:     tabCtx,
		cancels: []context.CancelFunc{tabCancel, allocCancel},
		timeout: l.opts.Timeout,
		logger:  l.logger,
	}

	// The first Run allocates the browser; it must not carry a deadline or
	// the process dies when the deadline passes.
	if err := chromedp.Run(tabCtx); err != nil {
		_ = s.Close()
		return nil, &Error{Op: "launch", Target: "chrome", Message: "failed to start browser", Cause: err}
	}

	l.logger.Debug("browser session started", zap.Bool("headless", l.opts.Headless))
	return s, nil
}

type chromeSession struct {
	ctx     context.Context
	cancels []context.CancelFunc
	timeout time.Duration
	logger  *zap.Logger

	closeOnce sync.Once
}

// run executes actions on the tab, bounded by timeout and by the caller's ctx.
func (s *chromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return errors.Join(ctx.Err(), err)
	}
	return err
}

func queryOption(loc Locator) chromedp.QueryOption {
	if loc.Kind == ByXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	err := s.run(ctx, s.timeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return &Error{Op: "navigate", Target: url, Message: "page did not load", Cause: err}
	}
	return nil
}

func (s *chromeSession) Wait(ctx context.Context, d time.Duration) error {
	return s.run(ctx, d+s.timeout, chromedp.Sleep(d))
}

func (s *chromeSession) Locate(ctx context.Context, loc Locator, timeout time.Duration) error {
	if err := s.run(ctx, timeout, chromedp.WaitReady(loc.Query, queryOption(loc))); err != nil {
		return &Error{Op: "locate", Target: loc.Query, Message: "element not found", Cause: err}
	}
	return nil
}

func (s *chromeSession) Fill(ctx context.Context, loc Locator, value string) error {
	err := s.run(ctx, s.timeout,
		chromedp.Clear(loc.Query, queryOption(loc)),
		chromedp.SendKeys(loc.Query, value, queryOption(loc)),
	)
	if err != nil {
		return &Error{Op: "fill", Target: loc.Query, Message: "could not set value", Cause: err}
	}
	return nil
}

func (s *chromeSession) TypeText(ctx context.Context, text string) error {
	if err := s.run(ctx, s.timeout, chromedp.KeyEvent(text)); err != nil {
		return &Error{Op: "type", Target: "keyboard", Message: "keystrokes rejected", Cause: err}
	}
	return nil
}

// clickFunction runs with the resolved node as this.
const clickFunction = `function() { this.click(); }`

// Click dispatches a DOM click on the first matching node, which works for
// covered or off-screen controls that a mouse click would miss.
func (s *chromeSession) Click(ctx context.Context, loc Locator) error {
	click := chromedp.QueryAfter(loc.Query,
		func(ctx context.Context, _ runtime.ExecutionContextID, nodes ...*cdp.Node) error {
			if len(nodes) == 0 {
				return errors.New("no nodes matched")
			}
			obj, err := dom.ResolveNode().WithNodeID(nodes[0].NodeID).Do(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()

			_, exception, err := runtime.CallFunctionOn(clickFunction).WithObjectID(obj.ObjectID).Do(ctx)
			if err != nil {
				return err
			}
			if exception != nil {
				return exception
			}
			return nil
		},
		queryOption(loc), chromedp.NodeReady,
	)
	if err := s.run(ctx, s.timeout, click); err != nil {
		return &Error{Op: "click", Target: loc.Query, Message: "click failed", Cause: err}
	}
	return nil
}

func (s *chromeSession) PressEnter(ctx context.Context) error {
	if err := s.run(ctx, s.timeout, chromedp.KeyEvent(kb.Enter)); err != nil {
		return &Error{Op: "press", Target: "Enter", Message: "key press rejected", Cause: err}
	}
	return nil
}

func (s *chromeSession) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, s.timeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", &Error{Op: "capture", Target: "html", Message: "could not read document", Cause: err}
	}
	return html, nil
}

func (s *chromeSession) Close() error {
	s.closeOnce.Do(func() {
		// Cancelling the tab context first lets chromedp close the target cleanly.
		for _, cancel := range s.cancels {
			cancel()
		}
		s.logger.Debug("browser session closed")
	})
	return nil
}
