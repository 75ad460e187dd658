package dbclient

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is one established channel to the database actor. WriteMessage and
// Ping are called under the gate; ReadMessage only from the reader goroutine.
type Conn interface {
	WriteMessage(ctx context.Context, data []byte) error
	ReadMessage() ([]byte, error)
	Ping(ctx context.Context) error
	Close() error
}

// Dialer opens a Conn to url.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, url string) (Conn, error)

func (f DialerFunc) Dial(ctx context.Context, url string) (Conn, error) { return f(ctx, url) }

// WebSocketDialer dials the actor with gorilla/websocket.
type WebSocketDialer struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
}

func (d WebSocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: d.HandshakeTimeout,
	}
	c, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &wsConn{c: c, writeTimeout: d.WriteTimeout}, nil
}

type wsConn struct {
	c            *websocket.Conn
	writeTimeout time.Duration
}

func (w *wsConn) deadline(ctx context.Context) time.Time {
	var d time.Time
	if w.writeTimeout > 0 {
		d = time.Now().Add(w.writeTimeout)
	}
	if cd, ok := ctx.Deadline(); ok && (d.IsZero() || cd.Before(d)) {
		d = cd
	}
	return d
}

func (w *wsConn) WriteMessage(ctx context.Context, data []byte) error {
	if err := w.c.SetWriteDeadline(w.deadline(ctx)); err != nil {
		return err
	}
	return w.c.WriteMessage(websocket.TextMessage, data)
}

// ReadMessage returns the next text or binary message; control frames are
// handled inside gorilla.
func (w *wsConn) ReadMessage() ([]byte, error) {
	for {
		kind, data, err := w.c.ReadMessage()
		if err != nil {
			return nil, err
		}
		if kind == websocket.TextMessage || kind == websocket.BinaryMessage {
			return data, nil
		}
	}
}

func (w *wsConn) Ping(ctx context.Context) error {
	d := w.deadline(ctx)
	if d.IsZero() {
		d = time.Now().Add(10 * time.Second)
	}
	return w.c.WriteControl(websocket.PingMessage, nil, d)
}

func (w *wsConn) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = w.c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return w.c.Close()
}
