package rng

import "fmt"

// ParseError describes one line pair that could not be interpreted. It is
// recorded and skipped; the rest of the file is still parsed.
type ParseError struct {
	File   string
	Line   int // 1-based line number of the offending line
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s (%q)", e.File, e.Line, e.Reason, e.Text)
}

// ReadError means the file contents could not be decoded as text at all.
// Unlike ParseError it aborts the whole file.
type ReadError struct {
	File string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.File, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
