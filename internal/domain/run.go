// Package domain holds the records shared by the submit command, the queue,
// the worker, and the run store.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dunamismax/imgbox/internal/command"
)

const (
	RunStatusCreated    = "created"
	RunStatusQueued     = "queued"
	RunStatusProcessing = "processing"
	RunStatusSucceeded  = "succeeded"
	RunStatusFailed     = "failed"
)

// SubmitRequest is a remote run: an input image and the operation tokens
// that follow it on a command line.
type SubmitRequest struct {
	Input      string   `json:"input"`
	Args       []string `json:"args"`
	WebhookURL string   `json:"webhook_url,omitempty"`
}

type Run struct {
	ID         string
	Status     string
	Input      string
	Args       []string
	WebhookURL string
	Outputs    []string
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// StatusUpdate moves a run to Status. Outputs and Error replace the stored
// values when non-empty.
type StatusUpdate struct {
	Status  string
	Outputs []string
	Error   string
}

// Terminal reports whether no further transitions are expected.
func (r Run) Terminal() bool {
	return r.Status == RunStatusSucceeded || r.Status == RunStatusFailed
}

// Validate checks the request shape and runs the token list through the
// operation parser, so malformed commands are rejected before enqueueing.
func (r SubmitRequest) Validate() error {
	if strings.TrimSpace(r.Input) == "" {
		return errors.New("input is required")
	}
	if strings.TrimSpace(r.WebhookURL) != "" &&
		!strings.HasPrefix(r.WebhookURL, "http://") && !strings.HasPrefix(r.WebhookURL, "https://") {
		return fmt.Errorf("webhook_url must be http or https: %s", r.WebhookURL)
	}
	if _, err := command.Parse(r.Args); err != nil {
		return err
	}
	return nil
}
