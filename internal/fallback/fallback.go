// Package fallback provides a two-tier result: a primary computation that may
// fail, backed by a safe computation that cannot.
package fallback

// Outcome is the value produced by Resolve.
type Outcome[T any] struct {
	Value T
	// Degraded is true when Value came from the safe computation.
	Degraded bool
	// Cause is the primary computation's error when Degraded is true.
	Cause error
}

// Resolve runs primary and, if it returns an error, replaces its result with safe().
// safe has no error return, so Resolve always yields a usable value.
func Resolve[T any](primary func() (T, error), safe func() T) Outcome[T] {
	v, err := primary()
	if err == nil {
		return Outcome[T]{Value: v}
	}
	return Outcome[T]{Value: safe(), Degraded: true, Cause: err}
}
