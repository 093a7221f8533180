// Package wire implements the X Protocol frame transport (spec §4.1): a
// synchronous length-prefixed frame reader/writer over a TCP or TLS socket,
// with no protocol semantics of its own.
package wire

import (
	"context"
	"crypto/tls"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"time"

	"github.com/mysqlx-shell/core/xerr"
)

// MaxFrameLen is the implementation-defined safety cap on frame payload
// length (16 MiB), per spec §3 Frame invariant.
const MaxFrameLen = 16 * 1024 * 1024

// Frame is one unit of X Protocol wire traffic.
type Frame struct {
	Kind    byte
	Payload []byte
}

// Conn wraps a net.Conn (plain or TLS) with frame-level read/write.
// Conn is not safe for concurrent use, matching the single-threaded,
// synchronous session model of spec §5.
type Conn struct {
	rwc net.Conn
}

// NewConn wraps an already-established connection.
func NewConn(rwc net.Conn) *Conn {
	return &Conn{rwc: rwc}
}

// Dial opens a connection to addr. network is "tcp" or "unix".
func Dial(ctx context.Context, network, addr string) (*Conn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, xerr.Wrap(xerr.KindTransportLost, err, "wire: dial %s %s", network, addr)
	}
	return &Conn{rwc: c}, nil
}

// UpgradeTLS swaps the underlying transport for a TLS client connection
// using cfg, performing the handshake synchronously. Subsequent frame I/O
// transparently happens over TLS (spec §4.1).
func (c *Conn) UpgradeTLS(cfg *tls.Config) error {
	tc := tls.Client(c.rwc, cfg)
	if err := tc.HandshakeContext(context.Background()); err != nil {
		return xerr.Wrap(xerr.KindTLSHandshakeFailed, err, "wire: tls handshake")
	}
	c.rwc = tc
	return nil
}

// ConnectionState reports the negotiated TLS state, or ok=false if the
// transport is not TLS.
func (c *Conn) ConnectionState() (tls.ConnectionState, bool) {
	if tc, ok := c.rwc.(*tls.Conn); ok {
		return tc.ConnectionState(), true
	}
	return tls.ConnectionState{}, false
}

// Close shuts down the underlying socket.
func (c *Conn) Close() error {
	return c.rwc.Close()
}

// WriteFrame composes the 5-byte header [u32 le length][u8 kind] followed
// by payload and writes it in one call.
func (c *Conn) WriteFrame(kind byte, payload []byte) error {
	length := len(payload) + 1
	if length < 1 || length > MaxFrameLen {
		return xerr.New(xerr.KindMalformed, "wire: frame length %d out of range", length)
	}
	buf := make([]byte, 5+len(payload))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(length))
	buf[4] = kind
	copy(buf[5:], payload)
	if _, err := c.rwc.Write(buf); err != nil {
		return xerr.Wrap(xerr.KindTransportLost, err, "wire: write frame")
	}
	return nil
}

// ReadFrame reads one frame with full-read semantics: it loops until the
// complete 4+1+len bytes have been received.
func (c *Conn) ReadFrame() (Frame, error) {
	return c.readFrame(0)
}

// ReadFrameDeadline reads one frame, cancelling after ms milliseconds with a
// distinguishable timeout error. A ms of 0 disables the deadline.
func (c *Conn) ReadFrameDeadline(ms int) (Frame, error) {
	return c.readFrame(time.Duration(ms) * time.Millisecond)
}

func (c *Conn) readFrame(deadline time.Duration) (Frame, error) {
	if deadline > 0 {
		if err := c.rwc.SetReadDeadline(time.Now().Add(deadline)); err != nil {
			return Frame{}, xerr.Wrap(xerr.KindTransportLost, err, "wire: set read deadline")
		}
		defer func() { _ = c.rwc.SetReadDeadline(time.Time{}) }()
	}

	var hdr [4]byte
	if _, err := io.ReadFull(c.rwc, hdr[:]); err != nil {
		return Frame{}, classifyReadErr(err)
	}
	length := binary.LittleEndian.Uint32(hdr[:])
	if length < 1 || length > MaxFrameLen {
		return Frame{}, xerr.New(xerr.KindMalformed, "wire: declared length %d out of range", length)
	}

	rest := make([]byte, length)
	if _, err := io.ReadFull(c.rwc, rest); err != nil {
		return Frame{}, classifyReadErr(err)
	}

	return Frame{Kind: rest[0], Payload: rest[1:]}, nil
}

func classifyReadErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return xerr.Wrap(xerr.KindTransportLost, err, "wire: peer closed mid-frame")
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return xerr.Wrap(xerr.KindTimeout, err, "wire: read deadline exceeded")
	}
	return xerr.Wrap(xerr.KindTransportLost, err, "wire: read frame")
}
