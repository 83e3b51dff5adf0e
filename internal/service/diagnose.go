package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/tahmid/codefix/internal/apperror"
	"github.com/tahmid/codefix/internal/model"
)

// maxCodePreview bounds how much source is embedded in the prompt.
const maxCodePreview = 8000

// Completer is the slice of the AI client the diagnose service needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// DiagnoseService turns failed runs into structured diagnoses by prompting
// the remote completion service and normalizing whatever comes back.
type DiagnoseService struct {
	client Completer
	logger *slog.Logger
}

// NewDiagnoseService creates a DiagnoseService. client may be nil when no
// API key is configured; Diagnose then reports the service as unavailable
// instead of failing at startup.
func NewDiagnoseService(client Completer, logger *slog.Logger) *DiagnoseService {
	return &DiagnoseService{
		client: client,
		logger: logger,
	}
}

// Diagnose asks the AI service to analyze the submitted code and stderr.
func (s *DiagnoseService) Diagnose(ctx context.Context, req model.DiagnoseRequest) (*model.Diagnosis, error) {
	if s.client == nil {
		return nil, apperror.Unavailable("diagnosis is not configured on this server")
	}

	raw, err := s.client.Complete(ctx, buildPrompt(req))
	if err != nil {
		s.logger.Error("diagnosis request failed", slog.String("error", err.Error()))
		return nil, apperror.Unavailable("diagnosis service is unavailable")
	}

	return normalizeDiagnosis(raw), nil
}

// buildPrompt renders the diagnose request into the CodeFix prompt shape.
func buildPrompt(req model.DiagnoseRequest) string {
	mode := req.Mode
	if mode == "" {
		mode = "quick"
	}
	persona := req.Persona
	if persona == "" {
		persona = "expert"
	}

	code := req.Code
	if len([]rune(code)) > maxCodePreview {
		code = string([]rune(code)[:maxCodePreview]) + "\n...<truncated>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are CodeFix AI (persona=%s, mode=%s). ", persona, mode)
	b.WriteString("ALWAYS respond with a single valid JSON object with keys: summary, root_cause, fix, patch.\n")
	fmt.Fprintf(&b, "Language: %s\n", req.Language)
	fmt.Fprintf(&b, "Filename: %s\n", req.Filename)
	fmt.Fprintf(&b, "STDERR:\n%s\n\n", req.Stderr)
	fmt.Fprintf(&b, "Code:\n%s\n", code)
	return b.String()
}

// diagnosisWire matches the JSON key names the model is instructed to use.
type diagnosisWire struct {
	Summary   string `json:"summary"`
	RootCause string `json:"root_cause"`
	Fix       string `json:"fix"`
	Patch     string `json:"patch"`
}

var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

// normalizeDiagnosis parses the model's answer into a Diagnosis. Strict
// JSON first; then the largest brace-delimited substring, for models that
// wrap the object in prose; finally the raw text lands in RootCause so
// the user always sees something.
func normalizeDiagnosis(raw string) *model.Diagnosis {
	if d, ok := parseDiagnosis(raw); ok {
		return d
	}
	if m := jsonObjectPattern.FindString(raw); m != "" {
		if d, ok := parseDiagnosis(m); ok {
			return d
		}
	}
	return &model.Diagnosis{RootCause: raw}
}

func parseDiagnosis(s string) (*model.Diagnosis, bool) {
	var wire diagnosisWire
	if err := json.Unmarshal([]byte(s), &wire); err != nil {
		return nil, false
	}
	// An object with none of the expected keys is as useless as prose.
	if wire.Summary == "" && wire.RootCause == "" && wire.Fix == "" && wire.Patch == "" {
		return nil, false
	}
	return &model.Diagnosis{
		Summary:   wire.Summary,
		RootCause: wire.RootCause,
		Fix:       wire.Fix,
		Patch:     wire.Patch,
	}, true
}
