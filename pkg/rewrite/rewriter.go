// Package rewrite produces the admission-justification narrative from a
// normalized note and a summary of the rule findings.
package rewrite

import (
	"context"
	"errors"
	"fmt"
)

// Rewriter returns revised prose for note, guided by the findings summary in
// supporting. Every failure is reported as a *RewriteError.
type Rewriter interface {
	Rewrite(ctx context.Context, note, supporting string) (string, error)
}

type ErrorKind string

const (
	KindConfig    ErrorKind = "config"
	KindTransport ErrorKind = "transport"
	KindStatus    ErrorKind = "status"
	KindDecode    ErrorKind = "decode"
	KindEmpty     ErrorKind = "empty"
	KindUnknown   ErrorKind = "unknown"
)

type RewriteError struct {
	Kind ErrorKind
	Err  error
}

func (e *RewriteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RewriteError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, format string, args ...interface{}) *RewriteError {
	return &RewriteError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// AsRewriteError returns err as a *RewriteError, wrapping errors of any other
// type under KindUnknown. It returns nil for a nil err.
func AsRewriteError(err error) *RewriteError {
	if err == nil {
		return nil
	}
	var re *RewriteError
	if errors.As(err, &re) {
		return re
	}
	return &RewriteError{Kind: KindUnknown, Err: err}
}
