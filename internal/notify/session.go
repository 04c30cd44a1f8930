package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/freshtrack-app/freshtrack-golang/internal/auth"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Outbound buffer per session. Deliveries beyond this while the writer
	// is stalled are dropped (and the session deregistered).
	sendBufferSize = 16

	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	// The browser client connects from a different origin than the API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// inboundMessage is a structured control frame from the client.
type inboundMessage struct {
	Action string `json:"action"`
	ID     string `json:"id"`
}

// ServeWS runs one notification session: authenticate the access_token
// query parameter, register the connection, send the established ack, then
// relay control frames until the client goes away.
//
// An unauthenticated connection is still upgraded and then closed with a
// policy code, so the client sees a proper close frame instead of a failed
// handshake.
func ServeWS(registry *Registry, logStore NotificationLog, w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("access_token")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	userID, authErr := authenticate(token)
	if authErr != nil {
		closeMsg := websocket.FormatCloseMessage(
			websocket.ClosePolicyViolation, authErr.Error())
		_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeWait))
		return
	}

	// One writer goroutine per session; everything outbound goes through
	// the send channel so deliveries and replies never interleave mid-frame.
	send := make(chan []byte, sendBufferSize)
	done := make(chan struct{})
	go writePump(conn, send, done)

	registry.Register(userID, send)
	defer func() {
		registry.Remove(userID, send)
		close(done)
		log.Printf("notification session closed for user %s", userID)
	}()

	queue(send, map[string]interface{}{
		"type":    "CONNECTION_ESTABLISHED",
		"message": "Notification WebSocket connected",
		"userId":  userID,
	})

	conn.SetReadLimit(maxMessageSize)
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			// Client disconnect or transport error; either way the session
			// is over.
			return
		}
		handleInbound(r, logStore, send, message)
	}
}

func authenticate(token string) (string, error) {
	if token == "" {
		return "", errors.New("Access token required")
	}
	userID, err := auth.ValidateToken(token)
	if err != nil {
		return "", errors.New("Invalid access token")
	}
	return userID, nil
}

// handleInbound processes one frame from the client.
func handleInbound(r *http.Request, logStore NotificationLog, send chan []byte, message []byte) {
	// Bare keepalive literal.
	if string(message) == "PING" {
		queue(send, map[string]interface{}{"type": "pong"})
		return
	}

	var inbound inboundMessage
	if err := json.Unmarshal(message, &inbound); err == nil && inbound.Action == "mark_read" {
		if err := logStore.MarkRead(r.Context(), inbound.ID); err != nil {
			log.Printf("mark_read for notification %s failed: %v", inbound.ID, err)
		}
		queue(send, map[string]interface{}{
			"type": "ack",
			"id":   inbound.ID,
		})
		return
	}

	// Anything else is echoed back, which keeps manual testing with a ws
	// client pleasant.
	queue(send, map[string]interface{}{
		"message": fmt.Sprintf("Notification received: %s", message),
	})
}

// queue enqueues an outbound JSON frame, dropping it if the writer is
// stalled.
func queue(send chan []byte, body interface{}) {
	payload, err := json.Marshal(body)
	if err != nil {
		log.Printf("failed to encode session frame: %v", err)
		return
	}
	select {
	case send <- payload:
	default:
		log.Println("session send buffer full, dropping frame")
	}
}

func writePump(conn *websocket.Conn, send <-chan []byte, done <-chan struct{}) {
	for {
		select {
		case message := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
