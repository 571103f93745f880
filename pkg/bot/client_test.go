package bot

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/StoreStation/vibebot/pkg/config"
	"github.com/StoreStation/vibebot/pkg/motion"
	"github.com/StoreStation/vibebot/pkg/varint"
)

// fakeServer plays the server side of the handshake/login/configuration
// sequence over a real loopback socket, uncompressed throughout, so
// Client.Connect exercises its actual wire encoding/decoding rather than
// a mocked transport.
type fakeServer struct {
	t    *testing.T
	conn net.Conn
}

func (s *fakeServer) readPacket() (int32, []byte) {
	s.t.Helper()
	length, _, err := varint.ReadInt32(s.conn)
	if err != nil {
		s.t.Fatalf("fakeServer: read length: %v", err)
	}
	frame := make([]byte, length)
	if _, err := io.ReadFull(s.conn, frame); err != nil {
		s.t.Fatalf("fakeServer: read frame: %v", err)
	}
	id, n, err := varint.ReadInt32(bytes.NewReader(frame))
	if err != nil {
		s.t.Fatalf("fakeServer: read id: %v", err)
	}
	return id, frame[n:]
}

func (s *fakeServer) writePacket(id int32, payload []byte) {
	s.t.Helper()
	var body bytes.Buffer
	varint.WriteInt32(&body, id)
	body.Write(payload)

	var out bytes.Buffer
	varint.WriteInt32(&out, int32(body.Len()))
	out.Write(body.Bytes())

	if _, err := s.conn.Write(out.Bytes()); err != nil {
		s.t.Fatalf("fakeServer: write: %v", err)
	}
}

func varintBytes(v int32) []byte {
	var b bytes.Buffer
	varint.WriteInt32(&b, v)
	return b.Bytes()
}

// runFakeServer drives exactly the sequence handshakeLoginConfig expects,
// then sends a join-game packet, and leaves the connection open for the
// caller's background loop to keep reading from.
func runFakeServer(t *testing.T, conn net.Conn, entityID int32) {
	t.Helper()
	s := &fakeServer{t: t, conn: conn}

	if id, _ := s.readPacket(); id != 0x00 {
		t.Fatalf("expected handshake id 0x00, got %#x", id)
	}
	if id, _ := s.readPacket(); id != 0x00 {
		t.Fatalf("expected login-start id 0x00, got %#x", id)
	}

	id := uuid.New()
	loginSuccess := append(append([]byte{}, id[:]...), varintBytes(4)...)
	loginSuccess = append(loginSuccess, []byte("name")...)
	s.writePacket(0x02, loginSuccess) // login-success

	if id, _ := s.readPacket(); id != 0x03 {
		t.Fatalf("expected login-acknowledged id 0x03, got %#x", id)
	}

	if id, _ := s.readPacket(); id != 0x00 { // client-information
		t.Fatalf("expected client-information id 0x00, got %#x", id)
	}
	if id, _ := s.readPacket(); id != 0x07 { // known-packs
		t.Fatalf("expected known-packs id 0x07, got %#x", id)
	}

	s.writePacket(0x03, nil) // finish-configuration

	if id, _ := s.readPacket(); id != 0x03 {
		t.Fatalf("expected acknowledge-finish id 0x03, got %#x", id)
	}

	var join bytes.Buffer
	binary.Write(&join, binary.BigEndian, entityID) // i32 entity id
	join.WriteByte(0) // hardcore = false
	s.writePacket(0x2B, join.Bytes())
}

func TestConnectCompletesHandshakeAndFiresLogin(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		accepted <- conn
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	portNum, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	port := uint16(portNum)

	serverCfg := config.Server{Host: host, Port: port, ProtocolVersion: 770}
	clientCfg := config.Client{Username: "tester"}
	c := New(serverCfg, clientCfg, config.WorldCache{}, nil, nil)
	defer c.Disconnect()

	loginCh := make(chan Event, 1)
	c.On(EventLogin, func(ev Event) { loginCh <- ev })

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn := <-accepted
		runFakeServer(t, conn, 42)
	}()

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	select {
	case ev := <-loginCh:
		if ev.EntityID != 42 {
			t.Errorf("expected entity id 42, got %d", ev.EntityID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for login event")
	}

	<-serverDone
}

func TestGotoBeforeJoinReturnsError(t *testing.T) {
	c := New(config.Server{Host: "127.0.0.1", Port: 1}, config.Client{Username: "x"}, config.WorldCache{}, nil, nil)
	defer c.Disconnect()
	if err := c.Goto(0, 0, 0); err == nil {
		t.Fatal("expected an error requesting navigation before joining the world")
	}
}

func TestDisconnectIsIdempotent(t *testing.T) {
	c := New(config.Server{Host: "127.0.0.1", Port: 1}, config.Client{Username: "x"}, config.WorldCache{}, nil, nil)
	c.Disconnect()
	c.Disconnect() // must not panic on a second call
}

func TestSweepDistantChunksUnloadsOutOfRangeChunks(t *testing.T) {
	c := New(config.Server{Host: "127.0.0.1", Port: 1}, config.Client{Username: "x"},
		config.WorldCache{KeepRange: 2, SweepInterval: time.Hour}, nil, nil)
	defer c.Disconnect()

	c.motion = motion.New(c.world, positionSender{c: c}, pathRequester{c: c}, motion.Vec3{})
	c.setChunkLoaded(0, 0)
	c.setChunkLoaded(50, 50)

	done := make(chan struct{})
	ok := c.do(func() {
		c.sweepDistantChunks()
		close(done)
	})
	if !ok {
		t.Fatal("do() reported the client stopped")
	}
	<-done

	if _, tracked := c.loadedChunk[[2]int32{0, 0}]; !tracked {
		t.Error("expected the nearby chunk to remain tracked")
	}
	if _, tracked := c.loadedChunk[[2]int32{50, 50}]; tracked {
		t.Error("expected the distant chunk to be dropped from tracking")
	}
}

func TestEmitFiresHandlersInRegistrationOrder(t *testing.T) {
	c := New(config.Server{Host: "127.0.0.1", Port: 1}, config.Client{Username: "x"}, config.WorldCache{}, nil, nil)
	defer c.Disconnect()
	var order []int
	c.On(EventChat, func(Event) { order = append(order, 1) })
	c.On(EventChat, func(Event) { order = append(order, 2) })

	c.emit(Event{Type: EventChat})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("expected handlers to fire in registration order, got %v", order)
	}
}
