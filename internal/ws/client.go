package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/handiism/wavstream/internal/config"
	"github.com/handiism/wavstream/internal/model"
)

// ErrClosed is returned when writing to or reading from a connection closed locally.
var ErrClosed = errors.New("connection closed")

// Client dials stream connections with the configured buffer sizes and
// limits.
//
// Example usage:
//
//	client := NewClient(settings)
//	conn, err := client.Dial(ctx, settings.Endpoint)
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
//
//	err = conn.Upload(ctx, data, settings.ChunkSize, settings.Terminator, nil)
type Client struct {
	dialer         *websocket.Dialer
	maxMessageSize int64
	userAgent      string
}

// NewClient creates a new stream client.
//
// A zero handshake timeout in the settings means the handshake may take
// as long as the context allows.
func NewClient(settings *config.Settings) *Client {
	return &Client{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: settings.HandshakeTimeout(),
			ReadBufferSize:   settings.ReadBufferSize,
			WriteBufferSize:  settings.WriteBufferSize,
		},
		maxMessageSize: settings.MaxMessageSize,
		userAgent:      "wavstream",
	}
}

// Dial opens one binary duplex connection to endpoint.
func (c *Client) Dial(ctx context.Context, endpoint string) (*Conn, error) {
	header := http.Header{}
	header.Set("User-Agent", c.userAgent)

	conn, resp, err := c.dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: HTTP %d: %w", endpoint, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	if c.maxMessageSize > 0 {
		conn.SetReadLimit(c.maxMessageSize)
	}

	return &Conn{conn: conn}, nil
}

// Conn is one open stream connection.
//
// Upload and Receive may run concurrently, but only one goroutine may call
// Upload at a time.
type Conn struct {
	conn *websocket.Conn

	closeOnce sync.Once
	closeErr  error
	mu        sync.Mutex
	closed    bool
}

// Upload sends data as consecutive binary frames of at most chunkSize
// bytes, in order, followed by terminator as a text frame. onChunk is
// called after every frame with the cumulative bytes sent; pass nil to
// disable it. There is no retry: the first failed write ends the upload.
func (c *Conn) Upload(ctx context.Context, data []byte, chunkSize int, terminator string, onChunk func(sent, total int64)) error {
	total := int64(len(data))
	var sent int64

	for i, chunk := range model.Chunks(data, chunkSize) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.write(websocket.BinaryMessage, chunk); err != nil {
			return fmt.Errorf("send chunk %d: %w", i+1, err)
		}
		sent += int64(len(chunk))
		if onChunk != nil {
			onChunk(sent, total)
		}
	}

	if err := c.write(websocket.TextMessage, []byte(terminator)); err != nil {
		return fmt.Errorf("send terminator: %w", err)
	}
	return nil
}

// Receive reads messages until the connection closes, calling onFragment
// for every binary message in arrival order. Text messages are passed to
// onText when it is non-nil.
//
// A close by the peer, including an abrupt one, returns nil. A cancelled
// context closes the connection and returns the context error.
func (c *Conn) Receive(ctx context.Context, onFragment func(data []byte), onText func(text string)) error {
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if IsPeerClose(err) {
				return nil
			}
			if c.isClosed() {
				return ErrClosed
			}
			return fmt.Errorf("read: %w", err)
		}

		switch msgType {
		case websocket.BinaryMessage:
			onFragment(data)
		case websocket.TextMessage:
			if onText != nil {
				onText(string(data))
			}
		}
	}
}

// Close closes the underlying connection. It is safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *Conn) write(messageType int, data []byte) error {
	if c.isClosed() {
		return ErrClosed
	}
	return c.conn.WriteMessage(messageType, data)
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// IsPeerClose reports whether err ends a read because the server went
// away: a close frame with a normal status, or the TCP stream ending
// without one.
func IsPeerClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
		websocket.CloseAbnormalClosure,
	)
}
