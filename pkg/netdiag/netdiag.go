// Package netdiag periodically reads TCP_INFO off a live connection and
// logs it at DEBUG. Purely observational: it never influences control
// flow, so it cannot violate the single-threaded cooperative tick model
// the rest of the client relies on.
package netdiag

import (
	"log/slog"
	"net"
	"time"

	"github.com/mikioh/tcp"
	"github.com/mikioh/tcpinfo"
)

// DefaultInterval matches the supplemented-feature cadence: every 10s
// while connected.
const DefaultInterval = 10 * time.Second

// Monitor polls one connection's kernel TCP_INFO block.
type Monitor struct {
	conn     *tcp.Conn
	log      *slog.Logger
	interval time.Duration
}

// New wraps nc for TCP_INFO polling. nc must be backed by a *net.TCPConn;
// anything else makes New return tcp.NewConn's error.
func New(nc net.Conn, log *slog.Logger, interval time.Duration) (*Monitor, error) {
	tc, err := tcp.NewConn(nc)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{conn: tc, log: log, interval: interval}, nil
}

// Run polls on Monitor's interval until stop is closed.
func (m *Monitor) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

func (m *Monitor) poll() {
	var info tcpinfo.Info
	var buf [256]byte
	opt, err := m.conn.Option(info.Level(), info.Name(), buf[:])
	if err != nil {
		m.log.Debug("tcp_info read failed", "error", err)
		return
	}
	ti, ok := opt.(*tcpinfo.Info)
	if !ok {
		return
	}
	text, err := ti.MarshalText()
	if err != nil {
		m.log.Debug("tcp_info encode failed", "error", err)
		return
	}
	m.log.Debug("tcp_info", "state", ti.State, "info", string(text))
}
