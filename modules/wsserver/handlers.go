package wsserver

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"strconv"
	"time"

	"github.com/ghagevaibhav/CanvasFlow/events"
	"github.com/ghagevaibhav/CanvasFlow/modules/store"
	"github.com/gofiber/contrib/websocket"
)

// handleSocket runs one connection. The raw transport is wrapped so all
// writes to it, including broadcasts from other handlers, share one
// writer.
func (m *WSModule) handleSocket(ws *websocket.Conn) {
	m.runSession(newLockedConn(ws), ws, ws.Query("token"))
}

// frameReader is the read side of the transport. *websocket.Conn
// satisfies it; session tests script one.
type frameReader interface {
	ReadMessage() (int, []byte, error)
}

// runSession is one connection's lifetime: handshake auth, frame loop,
// cleanup. Unregistering on return is the only cleanup path; there is no
// idle timeout or heartbeat.
func (m *WSModule) runSession(conn Conn, reader frameReader, token string) {
	userID, err := m.auth.VerifyToken(context.Background(), token)
	if err != nil {
		m.writeJSON(conn, errorFrame{Error: errUnauthorized})
		_ = conn.Close()
		return
	}

	if superseded := m.registry.Register(userID, conn); superseded != nil {
		// A reconnect replaces the old entry; close the orphaned transport
		// so its reader unwinds.
		_ = superseded.Close()
		log.Printf("[wsserver] Superseded connection for %s closed", userID)
	}
	defer func() {
		m.registry.Unregister(userID, conn)
		log.Printf("[wsserver] Connection closed: %s", userID)
	}()

	log.Printf("[wsserver] Connection established: %s", userID)

	for {
		_, data, err := reader.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[wsserver] Read error from %s: %v", userID, err)
			}
			return
		}
		m.dispatch(conn, userID, data)
	}
}

// dispatch parses one frame and routes it. Every failure is reported to the
// sender as an error frame; nothing here terminates the connection.
func (m *WSModule) dispatch(conn Conn, userID string, data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		m.writeJSON(conn, errorFrame{Error: errInvalidFormat})
		return
	}

	switch frame.Type {
	case frameJoinRoom:
		m.handleJoinRoom(conn, userID, frame)
	case frameLeaveRoom:
		m.handleLeaveRoom(conn, userID, frame)
	case frameChat:
		m.handleChat(conn, userID, frame)
	default:
		m.writeJSON(conn, errorFrame{Error: errInvalidType})
	}
}

// handleJoinRoom verifies the room exists, then records the membership.
func (m *WSModule) handleJoinRoom(conn Conn, userID string, frame inboundFrame) {
	roomID, err := parseRoomID(frame.RoomID)
	if err != nil {
		m.writeJSON(conn, errorFrame{Error: errInvalidFormat})
		return
	}
	if roomID == 0 {
		m.writeJSON(conn, errorFrame{Error: errRoomNotFound})
		return
	}

	if _, err := m.store.FindRoom(context.Background(), roomID); err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			m.writeJSON(conn, errorFrame{Error: errRoomNotFound})
		} else {
			log.Printf("[wsserver] Room lookup failed for %s: %v", userID, err)
			m.writeJSON(conn, errorFrame{Error: errJoinFailed})
		}
		return
	}

	// The principal may have disconnected while the lookup was in flight;
	// the membership write then becomes a no-op.
	if !m.registry.JoinRoom(userID, roomID) {
		return
	}

	m.writeJSON(conn, ackFrame{Type: frameJoinSuccess, RoomID: roomID})
	m.publishRoomJoined(userID, roomID)
}

// handleLeaveRoom removes the membership if present. A leave for a room
// that was never joined sends no reply; deployed clients rely on that.
func (m *WSModule) handleLeaveRoom(conn Conn, userID string, frame inboundFrame) {
	roomID, err := parseRoomID(frame.RoomID)
	if err != nil {
		m.writeJSON(conn, errorFrame{Error: errInvalidFormat})
		return
	}

	if !m.registry.LeaveRoom(userID, roomID) {
		return
	}

	m.writeJSON(conn, ackFrame{Type: frameLeaveSuccess, RoomID: roomID})
	m.publishRoomLeft(userID, roomID)
}

// handleChat authorizes, persists, then broadcasts. Persistence failure
// reports a generic error and suppresses the broadcast.
func (m *WSModule) handleChat(conn Conn, userID string, frame inboundFrame) {
	roomID, err := parseRoomID(frame.RoomID)
	if err != nil {
		m.writeJSON(conn, errorFrame{Error: errInvalidFormat})
		return
	}

	if !m.registry.Has(userID) {
		m.writeJSON(conn, errorFrame{Error: errUnauthorized})
		return
	}
	if !m.registry.IsMember(userID, roomID) {
		m.writeJSON(conn, errorFrame{Error: errNotAMember})
		return
	}

	chat, err := m.store.CreateMessage(context.Background(), roomID, userID, frame.Message)
	if err != nil {
		log.Printf("[wsserver] Message persistence failed for %s: %v", userID, err)
		m.writeJSON(conn, errorFrame{Error: errSendFailed})
		return
	}

	payload, err := json.Marshal(chatFrame{
		Type:    frameChat,
		Message: frame.Message,
		Room:    roomID,
		UserID:  userID,
	})
	if err != nil {
		m.writeJSON(conn, errorFrame{Error: errSendFailed})
		return
	}
	m.registry.Broadcast(roomID, payload)

	m.publishMessageSent(chat.ID, roomID, userID, frame.Message)
}

// writeJSON marshals v and writes it as one text frame. Write failures are
// the transport's problem; the read loop notices the close.
func (m *WSModule) writeJSON(conn Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[wsserver] Failed to marshal frame: %v", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("[wsserver] Write failed: %v", err)
	}
}

// Event publication is fire-and-forget observability; a bus failure never
// reaches the client.

func (m *WSModule) publishRoomJoined(userID string, roomID uint) {
	if m.eventBus == nil {
		return
	}
	event := events.RoomJoinedEvent{RoomID: roomID, UserID: userID, Timestamp: time.Now()}
	if err := events.RoomJoinedV1.Publish(m.eventBus, event, nil); err != nil {
		slog.Warn("Failed to publish RoomJoined event", "error", err)
	}
}

func (m *WSModule) publishRoomLeft(userID string, roomID uint) {
	if m.eventBus == nil {
		return
	}
	event := events.RoomLeftEvent{RoomID: roomID, UserID: userID, Timestamp: time.Now()}
	if err := events.RoomLeftV1.Publish(m.eventBus, event, nil); err != nil {
		slog.Warn("Failed to publish RoomLeft event", "error", err)
	}
}

func (m *WSModule) publishMessageSent(chatID, roomID uint, userID, content string) {
	if m.eventBus == nil {
		return
	}
	event := events.MessageSentEvent{
		MessageID: strconv.FormatUint(uint64(chatID), 10),
		RoomID:    roomID,
		UserID:    userID,
		Content:   content,
		Timestamp: time.Now(),
	}
	if err := events.MessageSentV1.Publish(m.eventBus, event, nil); err != nil {
		slog.Warn("Failed to publish MessageSent event", "error", err)
	}
}
