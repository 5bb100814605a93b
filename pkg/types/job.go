// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// Job is one conversion request as written in a manifest file.
type Job struct {
	Op     Operation `json:"op" yaml:"op"`
	Input  string    `json:"input" yaml:"input"`
	Output string    `json:"output" yaml:"output"`

	// Resolution and Device apply to image jobs. Zero values take the
	// transcoder defaults.
	Resolution int    `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	Device     string `json:"device,omitempty" yaml:"device,omitempty"`

	// FirstPage and PageCount apply to pdf jobs. Both are set or neither.
	FirstPage int `json:"first_page,omitempty" yaml:"first_page,omitempty"`
	PageCount int `json:"page_count,omitempty" yaml:"page_count,omitempty"`
}

// HasPageRange reports whether the job restricts the pages converted.
func (j Job) HasPageRange() bool {
	return j.FirstPage != 0 || j.PageCount != 0
}

// Validate checks the job fields that do not depend on the filesystem.
func (j Job) Validate() error {
	if j.Input == "" {
		return errors.New("input is required")
	}
	if j.Output == "" {
		return errors.New("output is required")
	}
	switch j.Op {
	case OpImage:
		if j.Resolution < 0 {
			return fmt.Errorf("resolution must be positive, got %d", j.Resolution)
		}
		if j.HasPageRange() {
			return errors.New("first_page and page_count apply to pdf jobs only")
		}
	case OpPDF:
		if j.Resolution != 0 || j.Device != "" {
			return errors.New("resolution and device apply to image jobs only")
		}
		if (j.FirstPage == 0) != (j.PageCount == 0) {
			return errors.New("first_page and page_count must be set together")
		}
		if j.FirstPage < 0 || j.PageCount < 0 {
			return fmt.Errorf("page range must be positive, got first_page=%d page_count=%d", j.FirstPage, j.PageCount)
		}
	default:
		return fmt.Errorf("unknown op %q (want %q or %q)", j.Op, OpImage, OpPDF)
	}
	return nil
}
