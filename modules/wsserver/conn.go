package wsserver

import "sync"

// lockedConn serializes writes to a shared transport. The underlying
// websocket permits only one writer at a time, but a registered conn is
// written to by its own handler goroutine and by any room member's
// broadcast, so every write goes through one mutex.
type lockedConn struct {
	mu   sync.Mutex
	conn Conn
}

func newLockedConn(conn Conn) *lockedConn {
	return &lockedConn{conn: conn}
}

func (c *lockedConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

// Close is not serialized with writes; the transport supports closing
// concurrently with an in-flight write.
func (c *lockedConn) Close() error {
	return c.conn.Close()
}
