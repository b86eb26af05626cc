package store

import (
	"context"
	"errors"

	"github.com/dunamismax/imgbox/internal/domain"
)

var ErrRunNotFound = errors.New("run not found")

type RunStore interface {
	Create(ctx context.Context, run domain.Run) error
	Get(ctx context.Context, id string) (domain.Run, bool, error)
	UpdateStatus(ctx context.Context, id string, update domain.StatusUpdate) (domain.Run, error)
}

func applyUpdate(run *domain.Run, update domain.StatusUpdate) {
	run.Status = update.Status
	if len(update.Outputs) > 0 {
		run.Outputs = append([]string(nil), update.Outputs...)
	}
	if update.Error != "" {
		run.Error = update.Error
	}
}
