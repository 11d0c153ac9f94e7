package net

import (
	"fmt"
	"net"
	"time"

	"github.com/gorilla/websocket"
)

// frameConn moves whole packets over one transport. TCP carries the
// length-prefixed frame; websocket carries one packet per binary message.
type frameConn interface {
	ReadPacket() ([]byte, error)
	WritePacket(data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	RemoteAddr() string
	Transport() string
	Close() error
}

type tcpConn struct {
	c net.Conn
}

func (t *tcpConn) ReadPacket() ([]byte, error) { return ReadFrame(t.c) }

func (t *tcpConn) WritePacket(data []byte, deadline time.Time) error {
	if err := t.c.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return WriteFrame(t.c, data)
}

func (t *tcpConn) SetReadDeadline(d time.Time) error { return t.c.SetReadDeadline(d) }
func (t *tcpConn) RemoteAddr() string                { return t.c.RemoteAddr().String() }
func (t *tcpConn) Transport() string                 { return "tcp" }
func (t *tcpConn) Close() error                      { return t.c.Close() }

type wsConn struct {
	c *websocket.Conn
}

func newWSConn(c *websocket.Conn) *wsConn {
	c.SetReadLimit(MaxPayload)
	return &wsConn{c: c}
}

func (w *wsConn) ReadPacket() ([]byte, error) {
	for {
		typ, data, err := w.c.ReadMessage()
		if err != nil {
			return nil, err
		}
		switch typ {
		case websocket.BinaryMessage:
			if len(data) == 0 {
				return nil, fmt.Errorf("empty websocket message")
			}
			return data, nil
		case websocket.TextMessage:
			return nil, fmt.Errorf("text frames are not supported")
		}
	}
}

func (w *wsConn) WritePacket(data []byte, deadline time.Time) error {
	if err := w.c.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return w.c.WriteMessage(websocket.BinaryMessage, data)
}

func (w *wsConn) SetReadDeadline(d time.Time) error { return w.c.SetReadDeadline(d) }
func (w *wsConn) RemoteAddr() string                { return w.c.RemoteAddr().String() }
func (w *wsConn) Transport() string                 { return "ws" }

func (w *wsConn) Close() error {
	_ = w.c.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return w.c.Close()
}
