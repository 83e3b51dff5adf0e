package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/tahmid/codefix/internal/model"
	"github.com/tahmid/codefix/internal/service"
)

func dialTestWS(t *testing.T, client service.Completer) *websocket.Conn {
	t.Helper()

	logger := testLogger()
	h := NewWSHandler(service.NewDiagnoseService(client, logger), logger)

	srv := httptest.NewServer(http.HandlerFunc(h.HandleDiagnoseWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHandleDiagnoseWS(t *testing.T) {
	t.Run("diagnose round trip", func(t *testing.T) {
		conn := dialTestWS(t, &stubCompleter{
			response: `{"summary":"off by one","fix":"use <="}`,
		})

		err := conn.WriteJSON(wsMessage{
			Type: "diagnose",
			Payload: &model.DiagnoseRequest{
				Language: "python",
				Code:     "for i in range(10): pass",
				Stderr:   "IndexError",
			},
		})
		assert.NoError(t, err)

		var reply wsMessage
		assert.NoError(t, conn.ReadJSON(&reply))
		assert.Equal(t, "diagnosis", reply.Type)
		if assert.NotNil(t, reply.Diagnosis) {
			assert.Equal(t, "off by one", reply.Diagnosis.Summary)
			assert.Equal(t, "use <=", reply.Diagnosis.Fix)
		}
	})

	t.Run("diagnosis failure keeps the socket open", func(t *testing.T) {
		conn := dialTestWS(t, nil) // no AI configured

		assert.NoError(t, conn.WriteJSON(wsMessage{
			Type:    "diagnose",
			Payload: &model.DiagnoseRequest{Language: "python"},
		}))

		var reply wsMessage
		assert.NoError(t, conn.ReadJSON(&reply))
		assert.Equal(t, "diagnosis_error", reply.Type)
		assert.NotEmpty(t, reply.Message)

		// The socket must survive the failure.
		assert.NoError(t, conn.WriteJSON(wsMessage{Type: "ping"}))
		assert.NoError(t, conn.ReadJSON(&reply))
		assert.Equal(t, "pong", reply.Type)
	})

	t.Run("client ping gets a pong", func(t *testing.T) {
		conn := dialTestWS(t, &stubCompleter{})

		assert.NoError(t, conn.WriteJSON(wsMessage{Type: "ping"}))

		var reply wsMessage
		assert.NoError(t, conn.ReadJSON(&reply))
		assert.Equal(t, "pong", reply.Type)
	})

	t.Run("unknown message type reports an error frame", func(t *testing.T) {
		conn := dialTestWS(t, &stubCompleter{})

		assert.NoError(t, conn.WriteJSON(wsMessage{Type: "upload"}))

		var reply wsMessage
		assert.NoError(t, conn.ReadJSON(&reply))
		assert.Equal(t, "diagnosis_error", reply.Type)
	})
}
