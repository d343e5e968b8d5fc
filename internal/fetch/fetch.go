// Package fetch provides the browser-automation surface used to drive the
// search form and capture rendered markup.
package fetch

import (
	"context"
	"fmt"
	"time"
)

// DefaultTimeout bounds every browser operation that has no tighter timeout of its own.
const DefaultTimeout = 45 * time.Second

// DefaultUserAgent is a realistic desktop Chrome identity.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Error represents a failed browser operation.
type Error struct {
	Op      string
	Target  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("browser %s %s: %s: %v", e.Op, e.Target, e.Message, e.Cause)
	}
	return fmt.Sprintf("browser %s %s: %s", e.Op, e.Target, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures launched browser sessions.
type Options struct {
	Headless  bool
	Timeout   time.Duration
	UserAgent string
	ExecPath  string // empty means let chromedp find Chrome
}

// DefaultOptions returns sensible defaults for a headless session.
func DefaultOptions() *Options {
	return &Options{
		Headless:  true,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// LocatorKind selects how a Locator's query is interpreted.
type LocatorKind int

const (
	// ByCSS treats the query as a CSS selector.
	ByCSS LocatorKind = iota
	// ByXPath treats the query as an XPath expression.
	ByXPath
)

// Locator is one candidate rule for finding an element on the page.
type Locator struct {
	Query string
	Kind  LocatorKind
}

// CSS returns a CSS selector locator.
func CSS(query string) Locator {
	return Locator{Query: query, Kind: ByCSS}
}

// ButtonText returns a locator for a button whose visible text contains text.
func ButtonText(text string) Locator {
	return Locator{
		Query: fmt.Sprintf(`//button[contains(normalize-space(.), %q)]`, text),
		Kind:  ByXPath,
	}
}

func (l Locator) String() string {
	return l.Query
}

// Session is one isolated browsing session. Implementations must be safe to
// Close more than once.
type Session interface {
	// Navigate loads url and waits for the document body.
	Navigate(ctx context.Context, url string) error
	// Wait pauses for a fixed interval.
	Wait(ctx context.Context, d time.Duration) error
	// Locate waits up to timeout for an element matching loc to exist.
	Locate(ctx context.Context, loc Locator, timeout time.Duration) error
	// Fill clears the element matching loc and types value into it.
	Fill(ctx context.Context, loc Locator, value string) error
	// TypeText sends keystrokes to whatever currently has focus.
	TypeText(ctx context.Context, text string) error
	// Click clicks the element matching loc without waiting for visibility.
	Click(ctx context.Context, loc Locator) error
	// PressEnter sends an Enter key press to the focused element.
	PressEnter(ctx context.Context) error
	// HTML returns the rendered markup of the whole document.
	HTML(ctx context.Context) (string, error)
	// Close releases the session and its browser process.
	Close() error
}

// Launcher opens new sessions.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}
