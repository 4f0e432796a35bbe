package catalog

import (
	"errors"
	"fmt"
)

// Discovery errors. Both are fatal to a batch run.
var (
	ErrRootNotFound = errors.New("rules directory not found")
	ErrRootNotDir   = errors.New("rules path is not a directory")
)

// Record errors. These only ever drop the offending file.
var (
	ErrEmptyDocument = errors.New("empty document")
	ErrNotMapping    = errors.New("top-level value is not a mapping")
)

// RecordError reports a rule file that could not be read or normalized.
type RecordError struct {
	Path string
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
