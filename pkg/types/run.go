// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Operation names a transcoding operation.
type Operation string

const (
	OpImage Operation = "image"
	OpPDF   Operation = "pdf"
)

// RunStatus is the outcome of one recorded Ghostscript run.
type RunStatus string

const (
	RunOK     RunStatus = "ok"
	RunFailed RunStatus = "failed"
)

// Run describes one transcoding call for the history log.
type Run struct {
	ID        int64     `json:"id" yaml:"id"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	Operation Operation `json:"operation" yaml:"operation"`
	Input     string    `json:"input" yaml:"input"`
	Output    string    `json:"output" yaml:"output"`

	// Device and Resolution are set for image runs only.
	Device     string `json:"device,omitempty" yaml:"device,omitempty"`
	Resolution int    `json:"resolution,omitempty" yaml:"resolution,omitempty"`

	// FirstPage and LastPage are set for page-restricted PDF runs only.
	FirstPage int `json:"first_page,omitempty" yaml:"first_page,omitempty"`
	LastPage  int `json:"last_page,omitempty" yaml:"last_page,omitempty"`

	Status   RunStatus     `json:"status" yaml:"status"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}
