package handler

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tahmid/codefix/internal/model"
	"github.com/tahmid/codefix/internal/service"
)

const (
	// pingInterval is how often the server pings an idle diagnosis
	// socket to keep intermediaries from dropping it.
	pingInterval = 20 * time.Second
	writeTimeout = 10 * time.Second
)

// wsMessage is the envelope for every frame on the diagnosis socket,
// in both directions.
type wsMessage struct {
	Type      string                 `json:"type"`
	Payload   *model.DiagnoseRequest `json:"payload,omitempty"`
	Diagnosis *model.Diagnosis       `json:"diagnosis,omitempty"`
	Message   string                 `json:"message,omitempty"`
}

// WSHandler serves the streaming diagnosis endpoint. A client keeps one
// socket open and submits any number of diagnose requests over it; a
// failed diagnosis produces an error frame, never a closed socket.
type WSHandler struct {
	diagnoses *service.DiagnoseService
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

// NewWSHandler creates a WSHandler.
func NewWSHandler(diagnoses *service.DiagnoseService, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		diagnoses: diagnoses,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser origins are already filtered by the CORS layer.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// HandleDiagnoseWS processes GET /ws/diagnose.
func (h *WSHandler) HandleDiagnoseWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// gorilla allows one concurrent writer per connection; the ping
	// loop and the read loop share the socket through this mutex.
	var writeMu sync.Mutex
	send := func(msg wsMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		return conn.WriteJSON(msg)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := send(wsMessage{Type: "ping"}); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("websocket closed unexpectedly", slog.String("error", err.Error()))
			}
			return
		}

		switch msg.Type {
		case "ping":
			if err := send(wsMessage{Type: "pong"}); err != nil {
				return
			}
		case "pong":
			// Client answering our keepalive.
		case "diagnose":
			req := model.DiagnoseRequest{}
			if msg.Payload != nil {
				req = *msg.Payload
			}

			diagnosis, err := h.diagnoses.Diagnose(r.Context(), req)
			if err != nil {
				h.logger.Error("websocket diagnosis failed", slog.String("error", err.Error()))
				if serr := send(wsMessage{Type: "diagnosis_error", Message: "diagnosis failed, try again"}); serr != nil {
					return
				}
				continue
			}

			if err := send(wsMessage{Type: "diagnosis", Diagnosis: diagnosis}); err != nil {
				return
			}
		default:
			if err := send(wsMessage{Type: "diagnosis_error", Message: "unknown message type"}); err != nil {
				return
			}
		}
	}
}
