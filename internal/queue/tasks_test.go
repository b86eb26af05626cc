package queue

import (
	"testing"
	"time"
)

func TestRunSequenceTaskRoundTrip(t *testing.T) {
	payload := RunSequencePayload{
		RunID:       "run-123",
		Input:       "s3://photos/in.jpg",
		Args:        []string{"--enlarge", "9:16", "--resize", "min", "720", "s3://photos/story.jpg"},
		WebhookURL:  "https://example.com/hooks/imgbox",
		RequestedAt: time.Now().UTC(),
	}

	task, err := NewRunSequenceTask(payload)
	if err != nil {
		t.Fatalf("NewRunSequenceTask returned error: %v", err)
	}
	if task.Type() != TypeRunSequence {
		t.Fatalf("expected task type %q, got %q", TypeRunSequence, task.Type())
	}

	parsed, err := ParseRunSequencePayload(task)
	if err != nil {
		t.Fatalf("ParseRunSequencePayload returned error: %v", err)
	}

	if parsed.RunID != payload.RunID {
		t.Fatalf("expected run_id %q, got %q", payload.RunID, parsed.RunID)
	}
	if len(parsed.Args) != len(payload.Args) || parsed.Args[5] != "s3://photos/story.jpg" {
		t.Fatalf("expected args to survive the round trip, got %v", parsed.Args)
	}
	if !parsed.RequestedAt.Equal(payload.RequestedAt) {
		t.Fatalf("expected requested_at %v, got %v", payload.RequestedAt, parsed.RequestedAt)
	}
}

func TestRunSequenceTaskRequiresRunID(t *testing.T) {
	if _, err := NewRunSequenceTask(RunSequencePayload{Input: "in.png"}); err == nil {
		t.Fatal("expected error for missing run_id")
	}
}
