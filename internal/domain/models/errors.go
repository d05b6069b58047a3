package models

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable means a quote could not be obtained for an instrument.
	ErrSourceUnavailable = errors.New("quote source unavailable")
	// ErrIconUnavailable means an icon could not be downloaded or decoded.
	ErrIconUnavailable = errors.New("icon unavailable")
	// ErrRenderFailed means the report image could not be composed or encoded.
	ErrRenderFailed = errors.New("render failed")
)

// PublishError is returned when an artifact cannot be made public.
type PublishError struct {
	Op  string
	Err error
}

func (e *PublishError) Error() string {
	if e.Err == nil {
		return "publish " + e.Op + " failed"
	}
	return fmt.Sprintf("publish %s: %v", e.Op, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}
