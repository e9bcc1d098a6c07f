package wsserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	canvas "github.com/ghagevaibhav/CanvasFlow/domain/canvas"
	"github.com/ghagevaibhav/CanvasFlow/modules/store"
)

// fakeGateway is an in-memory persistence gateway for protocol tests.
type fakeGateway struct {
	rooms      map[uint]bool
	created    []canvas.Chat
	failCreate bool
}

func (g *fakeGateway) FindRoom(_ context.Context, roomID uint) (*canvas.Room, error) {
	if g.rooms[roomID] {
		return &canvas.Room{ID: roomID}, nil
	}
	return nil, store.ErrRoomNotFound
}

func (g *fakeGateway) CreateMessage(_ context.Context, roomID uint, userID, message string) (*canvas.Chat, error) {
	if g.failCreate {
		return nil, errors.New("datastore unavailable")
	}
	chat := canvas.Chat{
		ID:      uint(len(g.created) + 1),
		RoomID:  roomID,
		UserID:  userID,
		Message: message,
	}
	g.created = append(g.created, chat)
	return &chat, nil
}

func newTestModule(gw *fakeGateway) *WSModule {
	return &WSModule{
		registry: NewRegistry(),
		store:    gw,
	}
}

func decodeFrames(t *testing.T, conn *fakeConn) []map[string]any {
	t.Helper()
	conn.mu.Lock()
	defer conn.mu.Unlock()

	frames := make([]map[string]any, 0, len(conn.frames))
	for _, raw := range conn.frames {
		var frame map[string]any
		if err := json.Unmarshal(raw, &frame); err != nil {
			t.Fatalf("failed to decode frame %s: %v", raw, err)
		}
		frames = append(frames, frame)
	}
	return frames
}

func lastFrame(t *testing.T, conn *fakeConn) map[string]any {
	t.Helper()
	frames := decodeFrames(t, conn)
	if len(frames) == 0 {
		t.Fatal("no frames written")
	}
	return frames[len(frames)-1]
}

func TestDispatch_MalformedFrames(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{name: "invalid json", payload: `{not json`, wantErr: "Invalid message format"},
		{name: "unknown type", payload: `{"type":"draw_circle","roomId":1}`, wantErr: "Invalid message type"},
		{name: "join with non-numeric room id", payload: `{"type":"join_room","roomId":"abc"}`, wantErr: "Invalid message format"},
		{name: "chat with non-numeric room id", payload: `{"type":"chat","roomId":{},"message":"hi"}`, wantErr: "Invalid message format"},
		{name: "leave with non-numeric room id", payload: `{"type":"leave_room","roomId":"xyz"}`, wantErr: "Invalid message format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModule(&fakeGateway{rooms: map[uint]bool{1: true}})
			conn := &fakeConn{}
			m.registry.Register("alice", conn)

			m.dispatch(conn, "alice", []byte(tt.payload))

			frame := lastFrame(t, conn)
			if frame["error"] != tt.wantErr {
				t.Errorf("error = %v, want %q", frame["error"], tt.wantErr)
			}
		})
	}
}

func TestDispatch_JoinRoom(t *testing.T) {
	tests := []struct {
		name       string
		roomID     string
		wantErr    string
		wantMember bool
	}{
		{name: "existing room", roomID: `7`, wantMember: true},
		{name: "existing room as string id", roomID: `"7"`, wantMember: true},
		{name: "nonexistent room", roomID: `99`, wantErr: "Room not found"},
		{name: "non-positive room id", roomID: `0`, wantErr: "Room not found"},
		{name: "negative room id", roomID: `-4`, wantErr: "Room not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModule(&fakeGateway{rooms: map[uint]bool{7: true}})
			conn := &fakeConn{}
			m.registry.Register("alice", conn)

			m.dispatch(conn, "alice", []byte(`{"type":"join_room","roomId":`+tt.roomID+`}`))

			frame := lastFrame(t, conn)
			if tt.wantErr != "" {
				if frame["error"] != tt.wantErr {
					t.Errorf("error = %v, want %q", frame["error"], tt.wantErr)
				}
				if m.registry.IsMember("alice", 7) {
					t.Error("failed join must not mutate the room set")
				}
				return
			}

			if frame["type"] != "join_success" || frame["roomId"] != float64(7) {
				t.Errorf("frame = %v, want join_success for room 7", frame)
			}
			if !m.registry.IsMember("alice", 7) {
				t.Error("IsMember() = false after join_success")
			}
		})
	}
}

func TestDispatch_JoinRoomIsIdempotent(t *testing.T) {
	m := newTestModule(&fakeGateway{rooms: map[uint]bool{7: true}})
	conn := &fakeConn{}
	m.registry.Register("alice", conn)

	join := []byte(`{"type":"join_room","roomId":7}`)
	m.dispatch(conn, "alice", join)
	m.dispatch(conn, "alice", join)

	frames := decodeFrames(t, conn)
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	for _, frame := range frames {
		if frame["type"] != "join_success" {
			t.Errorf("frame = %v, want join_success", frame)
		}
	}
	if !m.registry.IsMember("alice", 7) {
		t.Error("IsMember() = false after duplicate join")
	}
}

func TestDispatch_JoinAfterDisconnectIsSilentNoOp(t *testing.T) {
	m := newTestModule(&fakeGateway{rooms: map[uint]bool{7: true}})
	conn := &fakeConn{}
	m.registry.Register("alice", conn)
	m.registry.Unregister("alice", conn)

	m.dispatch(conn, "alice", []byte(`{"type":"join_room","roomId":7}`))

	if conn.frameCount() != 0 {
		t.Errorf("got %d frames, want 0 for a disconnected principal", conn.frameCount())
	}
}

func TestDispatch_LeaveRoom(t *testing.T) {
	m := newTestModule(&fakeGateway{rooms: map[uint]bool{7: true}})
	conn := &fakeConn{}
	m.registry.Register("alice", conn)
	m.registry.JoinRoom("alice", 7)

	// Leaving a room that was never joined sends nothing back.
	m.dispatch(conn, "alice", []byte(`{"type":"leave_room","roomId":9}`))
	if conn.frameCount() != 0 {
		t.Fatalf("got %d frames for an un-joined leave, want 0", conn.frameCount())
	}

	// Leaving a joined room acknowledges and removes the membership.
	m.dispatch(conn, "alice", []byte(`{"type":"leave_room","roomId":7}`))
	frame := lastFrame(t, conn)
	if frame["type"] != "leave_success" || frame["roomId"] != float64(7) {
		t.Errorf("frame = %v, want leave_success for room 7", frame)
	}
	if m.registry.IsMember("alice", 7) {
		t.Error("IsMember() = true after leave_success")
	}

	// A second leave is silent again.
	m.dispatch(conn, "alice", []byte(`{"type":"leave_room","roomId":7}`))
	if conn.frameCount() != 1 {
		t.Errorf("got %d frames after repeated leave, want 1", conn.frameCount())
	}
}

func TestDispatch_ChatFanOut(t *testing.T) {
	gw := &fakeGateway{rooms: map[uint]bool{7: true}}
	m := newTestModule(gw)
	connA := &fakeConn{}
	connB := &fakeConn{}
	connC := &fakeConn{}
	m.registry.Register("a", connA)
	m.registry.Register("b", connB)
	m.registry.Register("c", connC)

	m.dispatch(connA, "a", []byte(`{"type":"join_room","roomId":7}`))
	m.dispatch(connB, "b", []byte(`{"type":"join_room","roomId":7}`))

	m.dispatch(connA, "a", []byte(`{"type":"chat","roomId":7,"message":"hello"}`))

	if len(gw.created) != 1 {
		t.Fatalf("persisted %d messages, want 1", len(gw.created))
	}
	if gw.created[0].RoomID != 7 || gw.created[0].UserID != "a" || gw.created[0].Message != "hello" {
		t.Errorf("persisted message = %+v", gw.created[0])
	}

	// Sender and the other member both receive the broadcast.
	for name, conn := range map[string]*fakeConn{"a": connA, "b": connB} {
		frame := lastFrame(t, conn)
		if frame["type"] != "chat" || frame["message"] != "hello" ||
			frame["room"] != float64(7) || frame["userId"] != "a" {
			t.Errorf("member %s got frame %v", name, frame)
		}
	}

	// A principal outside the room receives nothing.
	if connC.frameCount() != 0 {
		t.Errorf("non-member received %d frames, want 0", connC.frameCount())
	}
}

func TestDispatch_ChatAuthorization(t *testing.T) {
	tests := []struct {
		name       string
		registered bool
		wantErr    string
	}{
		{name: "not registered", registered: false, wantErr: "Unauthorized"},
		{name: "registered but not a member", registered: true, wantErr: "Not a member of this room"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{rooms: map[uint]bool{9: true}}
			m := newTestModule(gw)
			conn := &fakeConn{}
			if tt.registered {
				m.registry.Register("alice", conn)
			}

			m.dispatch(conn, "alice", []byte(`{"type":"chat","roomId":9,"message":"hi"}`))

			frame := lastFrame(t, conn)
			if frame["error"] != tt.wantErr {
				t.Errorf("error = %v, want %q", frame["error"], tt.wantErr)
			}
			if len(gw.created) != 0 {
				t.Errorf("persisted %d messages, want 0", len(gw.created))
			}
		})
	}
}

func TestDispatch_ChatPersistenceFailureSuppressesBroadcast(t *testing.T) {
	gw := &fakeGateway{rooms: map[uint]bool{7: true}, failCreate: true}
	m := newTestModule(gw)
	connA := &fakeConn{}
	connB := &fakeConn{}
	m.registry.Register("a", connA)
	m.registry.Register("b", connB)
	m.dispatch(connA, "a", []byte(`{"type":"join_room","roomId":7}`))
	m.dispatch(connB, "b", []byte(`{"type":"join_room","roomId":7}`))

	m.dispatch(connA, "a", []byte(`{"type":"chat","roomId":7,"message":"hello"}`))

	frame := lastFrame(t, connA)
	if frame["error"] != "Failed to send message" {
		t.Errorf("error = %v, want %q", frame["error"], "Failed to send message")
	}
	// connB saw its join_success and nothing else.
	if connB.frameCount() != 1 {
		t.Errorf("other member received %d frames, want 1", connB.frameCount())
	}
}

func TestDispatch_DisconnectedMemberIsExcludedFromFanOut(t *testing.T) {
	gw := &fakeGateway{rooms: map[uint]bool{3: true}}
	m := newTestModule(gw)
	connA := &fakeConn{}
	connB := &fakeConn{}
	m.registry.Register("a", connA)
	m.registry.Register("b", connB)
	m.dispatch(connA, "a", []byte(`{"type":"join_room","roomId":3}`))
	m.dispatch(connB, "b", []byte(`{"type":"join_room","roomId":3}`))

	// A disconnects; its entry is gone.
	m.registry.Unregister("a", connA)
	framesBefore := connA.frameCount()

	m.dispatch(connB, "b", []byte(`{"type":"chat","roomId":3,"message":"anyone?"}`))

	if len(gw.created) != 1 {
		t.Fatalf("persisted %d messages, want 1", len(gw.created))
	}
	if connA.frameCount() != framesBefore {
		t.Error("disconnected principal still received a broadcast")
	}
	frame := lastFrame(t, connB)
	if frame["type"] != "chat" || frame["message"] != "anyone?" {
		t.Errorf("remaining member got frame %v", frame)
	}
}

func TestDispatch_ChatPayloadIsOpaque(t *testing.T) {
	gw := &fakeGateway{rooms: map[uint]bool{7: true}}
	m := newTestModule(gw)
	conn := &fakeConn{}
	m.registry.Register("a", conn)
	m.dispatch(conn, "a", []byte(`{"type":"join_room","roomId":7}`))

	// Drawing payloads are serialized JSON inside the message string; the
	// server must pass them through untouched.
	payload := `{"shape":"rect","x":10,"y":20,"w":5,"h":5}`
	frame := map[string]any{"type": "chat", "roomId": 7, "message": payload}
	data, err := json.Marshal(frame)
	if err != nil {
		t.Fatal(err)
	}
	m.dispatch(conn, "a", data)

	if gw.created[0].Message != payload {
		t.Errorf("persisted message = %q, want %q", gw.created[0].Message, payload)
	}
	out := lastFrame(t, conn)
	if out["message"] != payload {
		t.Errorf("broadcast message = %q, want %q", out["message"], payload)
	}
}
