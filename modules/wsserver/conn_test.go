package wsserver

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// overlapConn records any two writers caught inside WriteMessage at the
// same time. Each write is held open briefly so an unserialized caller
// actually overlaps.
type overlapConn struct {
	writing  atomic.Bool
	overlaps atomic.Int32
	writes   atomic.Int32
}

func (c *overlapConn) WriteMessage(_ int, _ []byte) error {
	if !c.writing.CompareAndSwap(false, true) {
		c.overlaps.Add(1)
		return nil
	}
	time.Sleep(50 * time.Microsecond)
	c.writes.Add(1)
	c.writing.Store(false)
	return nil
}

func (c *overlapConn) Close() error { return nil }

func TestLockedConn_SerializesWriters(t *testing.T) {
	raw := &overlapConn{}
	conn := newLockedConn(raw)

	const writers, perWriter = 8, 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				_ = conn.WriteMessage(websocket.TextMessage, []byte("x"))
			}
		}()
	}
	wg.Wait()

	if n := raw.overlaps.Load(); n != 0 {
		t.Errorf("observed %d overlapping writes, want 0", n)
	}
	if n := raw.writes.Load(); n != writers*perWriter {
		t.Errorf("completed %d writes, want %d", n, writers*perWriter)
	}
}

// One member's chats broadcast into another member's conn while that
// member's own handler writes its acks. Both paths must go through the
// conn's single writer.
func TestDispatch_BroadcastAndAcksShareOneWriter(t *testing.T) {
	gw := &fakeGateway{rooms: map[uint]bool{7: true, 8: true}}
	m := newTestModule(gw)
	sink := &overlapConn{}
	connA := newLockedConn(&fakeConn{})
	connB := newLockedConn(sink)
	m.registry.Register("a", connA)
	m.registry.Register("b", connB)
	m.dispatch(connA, "a", []byte(`{"type":"join_room","roomId":7}`))
	m.dispatch(connB, "b", []byte(`{"type":"join_room","roomId":7}`))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			m.dispatch(connA, "a", []byte(`{"type":"chat","roomId":7,"message":"hi"}`))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			m.dispatch(connB, "b", []byte(`{"type":"join_room","roomId":8}`))
			m.dispatch(connB, "b", []byte(`{"type":"leave_room","roomId":8}`))
		}
	}()
	wg.Wait()

	if n := sink.overlaps.Load(); n != 0 {
		t.Errorf("observed %d overlapping writes on a member conn, want 0", n)
	}
}
