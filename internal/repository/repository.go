package repository

import (
	"context"

	"github.com/tahmid/codefix/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// HistoryRepository stores traces of completed executions. History is an
// audit trail, not part of the orchestrator: the runner never sees it.
type HistoryRepository interface {
	Create(ctx context.Context, record *model.RunRecord) error
	List(ctx context.Context, opts ListOptions) ([]model.RunRecord, error)
}
