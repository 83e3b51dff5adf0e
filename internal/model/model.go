// Package model defines the data structures exchanged between the HTTP
// layer, the services, and the repository.
package model

import "time"

// RunRequest is a request to execute a piece of source code.
//
// Language is matched case-insensitively against the supported identifiers
// and their synonyms (e.g. "js", "javascript" and "node" are equivalent).
// Filename is optional; when absent the source is written as "main" plus
// the language's canonical extension. TimeoutSeconds defaults to 30.
type RunRequest struct {
	Language       string `json:"language"`
	Filename       string `json:"filename,omitempty"`
	Code           string `json:"code"`
	TimeoutSeconds int    `json:"timeoutSeconds,omitempty"`
}

// RunResult is the outcome of one execution request.
//
// ReturnCode is the target program's own exit status, except for two
// reserved orchestrator codes: 124 means the run timed out, 125 means the
// environment could not execute the program at all (toolchain missing or
// OS-level launch failure). Callers rely on these to tell "your code
// failed" apart from "we could not run it".
type RunResult struct {
	Stdout          string `json:"stdout"`
	Stderr          string `json:"stderr"`
	ReturnCode      int    `json:"returnCode"`
	ExecutedCommand string `json:"executedCommand"`
	UsedFilePath    string `json:"usedFilePath"`
}

// DiagnoseRequest carries a failed run to the AI diagnosis service.
type DiagnoseRequest struct {
	Filename string `json:"filename,omitempty"`
	Language string `json:"language,omitempty"`
	Code     string `json:"code,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
	Mode     string `json:"mode,omitempty"`    // "quick" or "deep"
	Persona  string `json:"persona,omitempty"` // e.g. "teacher", "simple", "expert"
}

// Diagnosis is the structured answer produced by the AI service.
type Diagnosis struct {
	Summary   string `json:"summary"`
	RootCause string `json:"rootCause"`
	Fix       string `json:"fix"`
	Patch     string `json:"patch"`
}

// RunRecord is a persisted trace of a completed execution.
type RunRecord struct {
	ID              string    `json:"id"`
	Language        string    `json:"language"`
	Filename        string    `json:"filename"`
	ReturnCode      int       `json:"returnCode"`
	ExecutedCommand string    `json:"executedCommand"`
	StdoutBytes     int       `json:"stdoutBytes"`
	StderrBytes     int       `json:"stderrBytes"`
	CreatedAt       time.Time `json:"createdAt"`
}
