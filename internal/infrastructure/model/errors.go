package model

import (
	"errors"
	"fmt"
)

// Error definitions for the model lifecycle
var (
	ErrUnsupportedFramework = errors.New("unsupported model framework")
	ErrModelNotLoaded       = errors.New("model not loaded")
	ErrInvalidState         = errors.New("invalid model state")
	ErrLabelMismatch        = errors.New("label count does not match trained class count")
)

// ArtifactLoadError reports a missing, corrupt or inconsistent artifact file.
type ArtifactLoadError struct {
	Path string
	Err  error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("failed to load model artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error {
	return e.Err
}

// IndexOutOfRangeError reports a class index that has no label.
type IndexOutOfRangeError struct {
	Index int
	Size  int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("class index %d out of range [0, %d)", e.Index, e.Size)
}
