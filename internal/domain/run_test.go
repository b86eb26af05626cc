package domain

import (
	"errors"
	"testing"

	"github.com/dunamismax/imgbox/internal/command"
)

func TestSubmitRequestValidate(t *testing.T) {
	valid := SubmitRequest{
		Input: "s3://photos/in.jpg",
		Args:  []string{"--crop", "16:9", "-r", "max", "800", "s3://photos/out.jpg"},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid request, got error: %v", err)
	}

	if err := (SubmitRequest{}).Validate(); err == nil {
		t.Fatal("expected validation error for empty request")
	}

	badWebhook := SubmitRequest{Input: "in.png", WebhookURL: "ftp://example.com/hook"}
	if err := badWebhook.Validate(); err == nil {
		t.Fatal("expected validation error for non-http webhook")
	}

	badArgs := SubmitRequest{Input: "in.png", Args: []string{"--dim", "lots"}}
	err := badArgs.Validate()
	if !errors.Is(err, command.ErrInvalidNumericArgument) {
		t.Fatalf("expected invalid numeric argument, got %v", err)
	}
}

func TestRunTerminal(t *testing.T) {
	for status, want := range map[string]bool{
		RunStatusCreated:    false,
		RunStatusQueued:     false,
		RunStatusProcessing: false,
		RunStatusSucceeded:  true,
		RunStatusFailed:     true,
	} {
		if got := (Run{Status: status}).Terminal(); got != want {
			t.Fatalf("status %s: expected terminal=%v, got %v", status, want, got)
		}
	}
}
