// Package bot owns one client's connection, world cache, entity tracker,
// pathfinder, and motion controller, and routes observed packets to them.
// It is the single writer of a client's state: the connection's read loop
// and the motion ticker both feed one internal select loop, so a packet
// handler and a motion tick never interleave mid-execution.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/StoreStation/vibebot/pkg/config"
	"github.com/StoreStation/vibebot/pkg/entity"
	"github.com/StoreStation/vibebot/pkg/metrics"
	"github.com/StoreStation/vibebot/pkg/motion"
	"github.com/StoreStation/vibebot/pkg/netdiag"
	"github.com/StoreStation/vibebot/pkg/pathfind"
	"github.com/StoreStation/vibebot/pkg/protocol"
	"github.com/StoreStation/vibebot/pkg/srvlookup"
	"github.com/StoreStation/vibebot/pkg/world"
)

const tickRate = 50 * time.Millisecond

// Client is one headless avatar: one TCP socket, one world cache, one
// motion controller. Multiple Clients share nothing and may run
// concurrently in the same process, per the spec's shared-nothing
// multi-client model.
type Client struct {
	serverCfg config.Server
	clientCfg config.Client
	cacheCfg  config.WorldCache
	log       *slog.Logger
	metrics   *metrics.Registry

	conn       *protocol.Conn
	dispatcher *protocol.Dispatcher

	world   *world.Cache
	tracker *entity.Tracker
	motion  *motion.Controller

	outbound  *rate.Limiter
	scheduler *cron.Cron

	entityID    int32
	loadedChunk map[[2]int32]struct{}
	chatFailCt  int

	listeners map[EventType][]Handler

	packets chan *protocol.Inbound
	recvErr chan error
	cmds    chan cmd
	stopCh  chan struct{}
}

type cmd struct {
	fn   func()
	done chan struct{}
}

// New constructs a client for one (server, identity) pair. It does not
// dial; call Connect to open the socket and run the handshake.
func New(serverCfg config.Server, clientCfg config.Client, cacheCfg config.WorldCache, log *slog.Logger, reg *metrics.Registry) *Client {
	if log == nil {
		log = slog.Default()
	}
	c := &Client{
		serverCfg:   serverCfg,
		clientCfg:   clientCfg,
		cacheCfg:    cacheCfg,
		log:         log,
		metrics:     reg,
		world:       world.NewCache(),
		tracker:     entity.NewTracker(),
		outbound:    rate.NewLimiter(rate.Every(tickRate), 4),
		loadedChunk: make(map[[2]int32]struct{}),
		listeners:   make(map[EventType][]Handler),
		packets:     make(chan *protocol.Inbound, 64),
		recvErr:     make(chan error, 1),
		cmds:        make(chan cmd),
		stopCh:      make(chan struct{}),
	}
	go c.run()
	return c
}

// Connect resolves the endpoint, dials, runs the handshake/login/
// configuration sequence synchronously, then starts the background read
// loop feeding the client's cooperative loop (already running since New).
// It returns once the play state is entered, or on the first failure.
func (c *Client) Connect(ctx context.Context) error {
	host, port := c.serverCfg.Host, c.serverCfg.Port
	if c.serverCfg.ResolveSRV {
		target, err := srvlookup.Resolve(host, port)
		if err != nil {
			c.log.Warn("srv lookup failed, using configured endpoint", "error", err)
		} else {
			host, port = target.Host, target.Port
		}
	}

	conn, err := protocol.Dial(host, port)
	if err != nil {
		return fmt.Errorf("bot: dial %s:%d: %w", host, port, err)
	}
	c.conn = conn
	c.dispatcher = protocol.NewDispatcher(c.log)
	c.registerHandlers()

	if err := c.handshakeLoginConfig(); err != nil {
		conn.Close()
		return fmt.Errorf("bot: handshake: %w", err)
	}

	go c.recvLoop()
	c.startChunkSweep()
	c.startNetdiag()
	return nil
}

// startNetdiag attaches a TCP_INFO poller to the live socket. Purely
// observational: a failure to attach (e.g. a non-TCP net.Conn in tests)
// just means no diagnostics, never a connection failure.
func (c *Client) startNetdiag() {
	mon, err := netdiag.New(c.conn.NetConn(), c.log, netdiag.DefaultInterval)
	if err != nil {
		c.log.Debug("tcp_info diagnostics unavailable", "error", err)
		return
	}
	go mon.Run(c.stopCh)
}

// startChunkSweep schedules the periodic ClearDistantChunks sweep described
// in the world cache's eviction policy. A zero SweepInterval leaves the
// cache growing unbounded except for direct ClearDistantChunks calls.
func (c *Client) startChunkSweep() {
	interval := c.cacheCfg.SweepInterval
	if interval <= 0 {
		return
	}
	c.scheduler = cron.New()
	_, err := c.scheduler.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		c.do(c.sweepDistantChunks)
	})
	if err != nil {
		c.log.Warn("chunk sweep not scheduled", "error", err)
		return
	}
	c.scheduler.Start()
}

// sweepDistantChunks runs on the client's cooperative loop (via do), so
// reading motion's current position never races the motion tick.
func (c *Client) sweepDistantChunks() {
	if c.motion == nil {
		return
	}
	pos := c.motion.Position()
	cx, cz := int32(pos.X)>>4, int32(pos.Z)>>4
	keepRange := c.cacheCfg.KeepRange
	c.world.ClearDistantChunks(cx, cz, keepRange)

	for key := range c.loadedChunk {
		if chebyshevChunk(key[0]-cx, key[1]-cz) > keepRange {
			delete(c.loadedChunk, key)
		}
	}
	c.updateChunkGauge()
}

func chebyshevChunk(dx, dz int32) int32 {
	if dx < 0 {
		dx = -dx
	}
	if dz < 0 {
		dz = -dz
	}
	if dx > dz {
		return dx
	}
	return dz
}

// Goto requests navigation to (x, y, z), queued onto the client's single
// state-owning loop so it never races a packet handler or a tick.
func (c *Client) Goto(x, y, z float64) error {
	var result error
	ok := c.do(func() {
		result = c.startGoto(x, y, z)
	})
	if !ok {
		return fmt.Errorf("bot: client is stopped")
	}
	return result
}

// Stop halts any in-progress navigation without disconnecting.
func (c *Client) Stop() {
	c.do(func() {
		if c.motion != nil {
			c.motion.Stop()
		}
	})
}

// Disconnect tears down the socket. Further sends become no-ops; queued
// inbound packets are drained by the dying read loop and discarded.
func (c *Client) Disconnect() {
	select {
	case <-c.stopCh:
		return
	default:
		close(c.stopCh)
	}
	if c.conn != nil {
		c.conn.Close()
	}
	if c.scheduler != nil {
		c.scheduler.Stop()
	}
}

// do enqueues fn to run on the client's loop goroutine and blocks until it
// completes. Reports false if the client has already stopped.
func (c *Client) do(fn func()) bool {
	d := make(chan struct{})
	select {
	case c.cmds <- cmd{fn: fn, done: d}:
	case <-c.stopCh:
		return false
	}
	select {
	case <-d:
		return true
	case <-c.stopCh:
		return false
	}
}

func (c *Client) startGoto(x, y, z float64) error {
	if c.motion == nil {
		return fmt.Errorf("bot: not yet joined the world")
	}
	pos := c.motion.Position()
	start := pathfind.Cell{X: int32(pos.X), Y: int32(pos.Y), Z: int32(pos.Z)}
	goal := pathfind.Cell{X: int32(x), Y: int32(y), Z: int32(z)}
	path, err := pathfind.Find(c.world, start, goal, pathfind.Options{})
	if err != nil {
		return fmt.Errorf("bot: pathfind: %w", err)
	}
	if c.metrics != nil {
		c.metrics.PathNodeExpansions.Observe(float64(len(path)))
	}
	c.motion.SetGoal(goal, path)
	return nil
}

func (c *Client) recvLoop() {
	for {
		pkt, err := c.conn.Recv()
		if err != nil {
			select {
			case c.recvErr <- err:
			case <-c.stopCh:
			}
			return
		}
		if c.metrics != nil {
			c.metrics.PacketsIn.Inc()
		}
		select {
		case c.packets <- pkt:
		case <-c.stopCh:
			return
		}
	}
}

// run is the single cooperative loop: it owns every piece of client
// state, so a packet handler always runs to completion before the next
// tick or command is processed, and vice versa.
func (c *Client) run() {
	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case pkt := <-c.packets:
			c.dispatcher.Dispatch(pkt.ID, pkt.Payload)
		case <-ticker.C:
			c.tick()
		case cm := <-c.cmds:
			cm.fn()
			close(cm.done)
		case err := <-c.recvErr:
			c.log.Error("transport error", "error", err)
			c.emit(Event{Type: EventError, Err: err})
			c.Disconnect()
			return
		}
	}
}

func (c *Client) tick() {
	if c.motion == nil {
		return
	}
	arrival, _, err := c.motion.Tick()
	if err != nil {
		c.log.Warn("motion tick failed", "error", err)
		c.emit(Event{Type: EventError, Err: err})
		return
	}
	if arrival == motion.Arrived {
		c.emit(Event{Type: EventArrived})
	}
}

// send writes a packet and counts it, applying no rate limiting: only the
// motion tick's position packets are throttled, per the domain stack's
// rate-limiting role for golang.org/x/time/rate.
func (c *Client) send(id int32, payload []byte) error {
	if err := c.conn.Send(id, payload); err != nil {
		return err
	}
	if c.metrics != nil {
		c.metrics.PacketsOut.Inc()
	}
	return nil
}

func (c *Client) setChunkLoaded(cx, cz int32) {
	c.loadedChunk[[2]int32{cx, cz}] = struct{}{}
	c.updateChunkGauge()
}

func (c *Client) updateChunkGauge() {
	if c.metrics != nil {
		c.metrics.LoadedChunks.Set(float64(len(c.loadedChunk)))
	}
}

