package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/segrab-cli/segrab/probe"
	"github.com/segrab-cli/segrab/store"
)

var (
	// ErrVideoNotFound is returned when the first segment of the target is absent.
	ErrVideoNotFound = errors.New("video not found")
	// ErrLocked is returned when another run is using the same work directory.
	ErrLocked = store.ErrLocked
)

// FetchFailedError is returned when a segment discovery reported present could not be fetched.
type FetchFailedError struct {
	ID  int
	Err error
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("fetch segment %d: %v", e.ID, e.Err)
}

func (e *FetchFailedError) Unwrap() error {
	return e.Err
}

// ConversionFailedError is returned when the media tool fails to normalize a segment.
type ConversionFailedError struct {
	ID  int
	Err error
}

func (e *ConversionFailedError) Error() string {
	return fmt.Sprintf("convert segment %d: %v", e.ID, e.Err)
}

func (e *ConversionFailedError) Unwrap() error {
	return e.Err
}

// MergeFailedError is returned when the media tool fails to merge the segments.
type MergeFailedError struct {
	Output string
	Err    error
}

func (e *MergeFailedError) Error() string {
	return fmt.Sprintf("merge into %s: %v", e.Output, e.Err)
}

func (e *MergeFailedError) Unwrap() error {
	return e.Err
}

// StorageError is returned when an artifact cannot be persisted.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Resumable reports whether err left completed work on disk that a later run will reuse.
func Resumable(err error) bool {
	var (
		fetch      *FetchFailedError
		conversion *ConversionFailedError
		merge      *MergeFailedError
		storage    *StorageError
		transient  *probe.TransientError
	)

	switch {
	case err == nil, errors.Is(err, ErrVideoNotFound), errors.Is(err, ErrLocked):
		return false
	case errors.As(err, &fetch), errors.As(err, &conversion), errors.As(err, &merge),
		errors.As(err, &storage), errors.As(err, &transient):
		return true
	default:
		return errors.Is(err, context.Canceled)
	}
}
