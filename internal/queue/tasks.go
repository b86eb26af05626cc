package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const TypeRunSequence = "image:sequence"

// RunSequencePayload carries a command line to the worker: the input image
// and the operation tokens that follow it.
type RunSequencePayload struct {
	RunID       string    `json:"run_id"`
	Input       string    `json:"input"`
	Args        []string  `json:"args"`
	WebhookURL  string    `json:"webhook_url,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

func NewRunSequenceTask(payload RunSequencePayload) (*asynq.Task, error) {
	if payload.RunID == "" {
		return nil, errors.New("run_id is required")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal sequence payload: %w", err)
	}
	return asynq.NewTask(TypeRunSequence, body), nil
}

func ParseRunSequencePayload(task *asynq.Task) (RunSequencePayload, error) {
	var payload RunSequencePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RunSequencePayload{}, fmt.Errorf("unmarshal sequence payload: %w", err)
	}
	return payload, nil
}
