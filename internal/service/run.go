// Package service contains the business logic layer: request validation,
// orchestration of the runner core, and history recording. Services know
// nothing about HTTP; handlers translate their domain errors to status
// codes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/tahmid/codefix/internal/apperror"
	"github.com/tahmid/codefix/internal/model"
	"github.com/tahmid/codefix/internal/repository"
	"github.com/tahmid/codefix/internal/runner"
)

const (
	// DefaultTimeoutSeconds applies when a request doesn't specify one.
	DefaultTimeoutSeconds = 30
	// MaxTimeoutSeconds caps what a caller can ask for.
	MaxTimeoutSeconds = 120
	// MaxCodeLength bounds the submitted source (~100KB).
	MaxCodeLength = 100000
)

// RunService executes code submissions through the orchestrator and keeps
// the run history. Each call is independent: a fresh workspace per
// request, no shared mutable state.
type RunService struct {
	runner  runner.Runner
	history repository.HistoryRepository
	logger  *slog.Logger
}

// NewRunService creates a RunService. history may be nil, in which case
// runs are not recorded.
func NewRunService(r runner.Runner, history repository.HistoryRepository, logger *slog.Logger) *RunService {
	return &RunService{
		runner:  r,
		history: history,
		logger:  logger,
	}
}

// Run materializes the submitted code in a scoped workspace, dispatches it
// to the orchestrator, and returns the unified result.
//
// Only contract violations (missing language, oversized code) surface as
// errors; everything that goes wrong while executing the code, including
// "we have no toolchain for this", comes back inside the RunResult with
// the reserved return codes 124 (timeout) and 125 (environment failure).
func (s *RunService) Run(ctx context.Context, req model.RunRequest) (*model.RunResult, error) {
	language := strings.TrimSpace(req.Language)
	if language == "" {
		return nil, apperror.ValidationFailed("language", "language is required")
	}
	if len(req.Code) > MaxCodeLength {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}

	timeout := req.TimeoutSeconds
	if timeout <= 0 {
		timeout = DefaultTimeoutSeconds
	}
	if timeout > MaxTimeoutSeconds {
		timeout = MaxTimeoutSeconds
	}

	ws, err := runner.NewWorkspace(req.Code, req.Filename, language)
	if err != nil {
		return nil, fmt.Errorf("allocating workspace: %w", err)
	}
	// The workspace is gone on every exit path; only its path survives in
	// the result for diagnostics.
	defer func() {
		if cerr := ws.Close(); cerr != nil {
			s.logger.Error("failed to clean up workspace",
				slog.String("dir", ws.Dir),
				slog.String("error", cerr.Error()),
			)
		}
	}()

	res := s.runner.Run(ctx, ws.File, language, time.Duration(timeout)*time.Second)

	s.logger.Info("run completed",
		slog.String("language", language),
		slog.String("file", filepath.Base(ws.File)),
		slog.Int("returnCode", res.ReturnCode),
	)

	s.record(ctx, language, filepath.Base(ws.File), res)

	return &model.RunResult{
		Stdout:          res.Stdout,
		Stderr:          res.Stderr,
		ReturnCode:      res.ReturnCode,
		ExecutedCommand: res.Command,
		UsedFilePath:    ws.File,
	}, nil
}

// record persists a trace of the run. Best-effort: a history failure is
// logged and never fails the execution it describes.
func (s *RunService) record(ctx context.Context, language, filename string, res runner.Result) {
	if s.history == nil {
		return
	}

	err := s.history.Create(ctx, &model.RunRecord{
		Language:        language,
		Filename:        filename,
		ReturnCode:      res.ReturnCode,
		ExecutedCommand: res.Command,
		StdoutBytes:     len(res.Stdout),
		StderrBytes:     len(res.Stderr),
	})
	if err != nil {
		s.logger.Error("failed to record run history", slog.String("error", err.Error()))
	}
}

// History lists recorded runs with pagination, newest first. limit is
// clamped to 1..100 (default 20); negative offsets become 0.
func (s *RunService) History(ctx context.Context, limit, offset int) ([]model.RunRecord, error) {
	if s.history == nil {
		return []model.RunRecord{}, nil
	}

	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	records, err := s.history.List(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list run history", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing run history: %w", err)
	}
	return records, nil
}
