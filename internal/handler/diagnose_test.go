package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tahmid/codefix/internal/model"
	"github.com/tahmid/codefix/internal/service"
)

type stubCompleter struct {
	response string
	err      error
}

func (s *stubCompleter) Complete(context.Context, string) (string, error) {
	return s.response, s.err
}

func newTestDiagnoseHandler(client service.Completer) *DiagnoseHandler {
	logger := testLogger()
	return NewDiagnoseHandler(service.NewDiagnoseService(client, logger), logger)
}

func TestHandleDiagnose(t *testing.T) {
	t.Run("returns the diagnosis", func(t *testing.T) {
		h := newTestDiagnoseHandler(&stubCompleter{
			response: `{"summary":"undefined name","root_cause":"x is never assigned","fix":"assign x","patch":"x = 1"}`,
		})

		body := `{"language":"python","code":"print(x)","stderr":"NameError"}`
		req := httptest.NewRequest(http.MethodPost, "/api/diagnose", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.HandleDiagnose(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Diagnosis model.Diagnosis `json:"diagnosis"`
		}
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "undefined name", resp.Diagnosis.Summary)
		assert.Equal(t, "x = 1", resp.Diagnosis.Patch)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		h := newTestDiagnoseHandler(&stubCompleter{})

		req := httptest.NewRequest(http.MethodPost, "/api/diagnose", strings.NewReader("nope"))
		rec := httptest.NewRecorder()
		h.HandleDiagnose(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("AI failure maps to 502", func(t *testing.T) {
		h := newTestDiagnoseHandler(&stubCompleter{err: errors.New("rate limited")})

		req := httptest.NewRequest(http.MethodPost, "/api/diagnose", strings.NewReader(`{"language":"python"}`))
		rec := httptest.NewRecorder()
		h.HandleDiagnose(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)

		var resp ErrorResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "unavailable", resp.Error)
	})

	t.Run("unconfigured AI maps to 502", func(t *testing.T) {
		h := newTestDiagnoseHandler(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/diagnose", strings.NewReader(`{"language":"python"}`))
		rec := httptest.NewRecorder()
		h.HandleDiagnose(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}
