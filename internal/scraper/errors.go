package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind separates transient source failures from extraction defects. Both
// flow through the same retry path; the distinction matters for operators
// reading logs, not for control flow.
type Kind int

const (
	// KindTransient covers timeouts and network failures.
	KindTransient Kind = iota
	// KindExtraction covers a missing value or a known placeholder where
	// a computed amount was expected.
	KindExtraction
)

func (k Kind) String() string {
	if k == KindExtraction {
		return "extraction"
	}
	return "transient"
}

// Error is a classified scrape failure for one operator.
type Error struct {
	Operator string
	Kind     Kind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s failure: %v", e.Operator, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transient wraps err as a transient failure for operator.
func Transient(operator string, err error) error {
	return &Error{Operator: operator, Kind: KindTransient, Err: err}
}

// Extraction wraps err as an extraction failure for operator.
func Extraction(operator string, err error) error {
	return &Error{Operator: operator, Kind: KindExtraction, Err: err}
}

// Extractionf is Extraction with a formatted message.
func Extractionf(operator, format string, args ...any) error {
	return Extraction(operator, fmt.Errorf(format, args...))
}

// ClassifyNetwork wraps err as transient when it looks like a network or
// deadline problem, extraction otherwise.
func ClassifyNetwork(operator string, err error) error {
	var scrapeErr *Error
	if errors.As(err, &scrapeErr) {
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return Transient(operator, err)
	}
	return Extraction(operator, err)
}
