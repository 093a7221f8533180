package wire_test

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/mysqlx-shell/core/wire"
	"github.com/mysqlx-shell/core/xerr"
)

func TestWriteReadFrameRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	cc := wire.NewConn(client)
	sc := wire.NewConn(server)

	payload := []byte{0x01, 0x02, 0x03}
	go func() {
		if err := cc.WriteFrame(0x07, payload); err != nil {
			t.Errorf("write frame: %v", err)
		}
	}()

	f, err := sc.ReadFrame()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if f.Kind != 0x07 {
		t.Fatalf("kind = %d, want 7", f.Kind)
	}
	if string(f.Payload) != string(payload) {
		t.Fatalf("payload = %v, want %v", f.Payload, payload)
	}
}

func TestReadFrameDeadlineTimesOut(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	sc := wire.NewConn(server)
	_, err := sc.ReadFrameDeadline(20)
	if !xerr.Is(err, xerr.KindTimeout) {
		t.Fatalf("err = %v, want timeout kind", err)
	}
}

func TestReadFramePeerClosed(t *testing.T) {
	client, server := net.Pipe()
	sc := wire.NewConn(server)

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = client.Close()
	}()

	_, err := sc.ReadFrame()
	if !xerr.Is(err, xerr.KindTransportLost) {
		t.Fatalf("err = %v, want transport-lost kind", err)
	}
	var xe *xerr.Error
	if !errors.As(err, &xe) {
		t.Fatalf("expected *xerr.Error")
	}
}

func TestWriteFrameRejectsOversizedPayload(t *testing.T) {
	// length = payload+1 is always >= 1, so only the oversized case is
	// reachable in practice; this guards the invariant directly.
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()
	cc := wire.NewConn(client)

	oversized := make([]byte, wire.MaxFrameLen)
	err := cc.WriteFrame(0x00, oversized)
	if !xerr.Is(err, xerr.KindMalformed) {
		t.Fatalf("err = %v, want malformed kind", err)
	}
}
